package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli"

	"github.com/flipdot/flipdot-studio/internal/db"
	"github.com/flipdot/flipdot-studio/internal/export"
	"github.com/flipdot/flipdot-studio/internal/logging"
	"github.com/flipdot/flipdot-studio/internal/metrics"
	"github.com/flipdot/flipdot-studio/internal/projectfile"
	"github.com/flipdot/flipdot-studio/internal/studio"
	"github.com/flipdot/flipdot-studio/internal/watcher"
)

func exportAction(c *cli.Context) error {
	path, err := getArg(c, "project file")
	if err != nil {
		return err
	}
	outDir := filepath.Clean(c.String("output"))
	if err := export.ValidateOutputDir(outDir); err != nil {
		return err
	}

	out, err := exportProjectFile(path, outDir, "")
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// exportProjectFile encodes the project file at path into outDir. An empty
// filename picks the timestamped default.
func exportProjectFile(path, outDir, filename string) (string, error) {
	pf, err := projectfile.Load(path)
	if err != nil {
		return "", err
	}
	frames, err := pf.ToFrames()
	if err != nil {
		return "", err
	}
	document, err := export.EncodeSettings(pf.Name, frames, pf.Settings())
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	if filename == "" {
		filename = export.Filename(pf.Name, time.Now())
	}
	return export.WriteFile(outDir, filename, document)
}

func exportAllAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := cliLogger(cfg)

	outDir := c.String("output")
	if outDir == "" {
		outDir = cfg.ExportDir()
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("failed to create export dir: %w", err)
		}
	}
	outDir = filepath.Clean(outDir)
	if err := export.ValidateOutputDir(outDir); err != nil {
		return err
	}

	lock, err := db.AcquireLock(cfg.LockPath())
	if errors.Is(err, db.ErrLocked) {
		return fmt.Errorf("the studio server is running on %s; use the tray or the API to export", cfg.DataDir())
	}
	if err != nil {
		return err
	}
	defer lock.Release()

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	svc := studio.NewService(studio.NewRepository(database.Conn()), logger)

	ctx := context.Background()
	total, err := svc.CountProjects(ctx)
	if err != nil {
		return err
	}
	bar := newProgressBar(total, "exporting")

	n, err := exportAll(ctx, svc, outDir, nil, bar)
	_ = bar.Finish()
	fmt.Printf("\nexported %d of %d projects to %s\n", n, total, outDir)
	return err
}

// exportAll writes every stored project into dir and records each export.
// It keeps going past failures and returns them joined.
func exportAll(ctx context.Context, svc studio.StudioService, dir string, m *metrics.Metrics, bar *progressbar.ProgressBar) (int, error) {
	projects, err := svc.ListProjects(ctx)
	if err != nil {
		return 0, err
	}

	var errs []error
	exported := 0
	for _, p := range projects {
		start := time.Now()
		document, err := export.EncodeSettings(p.Name, p.Frames, p.Settings)
		if err == nil {
			filename := export.Filename(p.Name, start)
			var path string
			if path, err = export.WriteFile(dir, filename, document); err == nil {
				err = svc.RecordExport(ctx, &studio.ExportRecord{
					ProjectID:  p.ID,
					Filename:   filename,
					Path:       path,
					FrameCount: len(p.Frames),
					Bytes:      int64(len(document)),
				})
			}
		}

		if err != nil {
			errs = append(errs, fmt.Errorf("project %s: %w", p.ID, err))
			if m != nil {
				m.ObserveExport("batch", metrics.ResultError, time.Since(start), 0)
			}
		} else {
			exported++
			if m != nil {
				m.ObserveExport("batch", metrics.ResultOK, time.Since(start), len(document))
			}
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return exported, errors.Join(errs...)
}

func newProgressBar(max int, desc string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(desc),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func watchAction(c *cli.Context) error {
	dir, err := getArg(c, "directory")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := cliLogger(cfg)

	outDir := c.String("output")
	if outDir == "" {
		outDir = dir
	}
	outDir = filepath.Clean(outDir)
	if err := export.ValidateOutputDir(outDir); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := watcher.NewFSWatcher(logging.WithComponent(logger, "watcher"))
	w.OnChange(func(path string, event watcher.EventType) {
		if event == watcher.EventDelete {
			return
		}
		out, err := exportProjectFile(path, outDir, watchFilename(path))
		if err != nil {
			logger.Warn("re-export failed", "path", path, "error", err)
			return
		}
		logger.Info("re-exported project", "path", path, "event", event.String(), "output", out)
	})

	if err := w.Watch(ctx, dir); err != nil {
		return err
	}
	defer w.Stop()

	logger.Info("watching project files", "dir", dir, "output_dir", outDir)
	<-ctx.Done()
	return nil
}

// watchFilename maps wave.yaml to wave.json so repeated saves overwrite one file.
func watchFilename(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + export.FileExtension
}
