package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/flipdot/flipdot-studio/internal/api"
	"github.com/flipdot/flipdot-studio/internal/config"
	"github.com/flipdot/flipdot-studio/internal/db"
	"github.com/flipdot/flipdot-studio/internal/logging"
	"github.com/flipdot/flipdot-studio/internal/metrics"
	"github.com/flipdot/flipdot-studio/internal/studio"
	"github.com/flipdot/flipdot-studio/internal/ui"
)

func serveAction(c *cli.Context) error {
	startTime := time.Now()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.ExportDir(), 0755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting flipdot studio", "version", config.Version, "data_dir", cfg.DataDir())

	lock, err := db.AcquireLock(cfg.LockPath())
	if err != nil {
		return fmt.Errorf("failed to lock data dir: %w", err)
	}
	defer lock.Release()

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := studio.NewRepository(database.Conn())

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║                 FLIPDOT STUDIO v%-26s║\n", config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Printf("║  Exports:    %-45s ║\n", logging.SanitizePath(cfg.ExportDir()))
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	studioSvc := studio.NewService(repo, logger)
	m := metrics.New()

	apiServer := api.NewServer(api.ServerConfig{
		Port:      cfg.Port(),
		ExportDir: cfg.ExportDir(),
		Studio:    studioSvc,
		Config:    repo,
		Metrics:   m,
		Logger:    logger,
		StartTime: startTime,
		Version:   config.Version,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})
	quit := func() {
		select {
		case <-quitCh:
		default:
			close(quitCh)
		}
	}

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			quit()
		case <-quitCh:
		}
	}()

	var tray *ui.Tray
	if cfg.Tray() {
		tray = ui.NewTray(ui.TrayConfig{
			Studio: studioSvc,
			Logger: logging.WithComponent(logger, "tray"),
			OnExportAll: func() (int, error) {
				return exportAll(context.Background(), studioSvc, cfg.ExportDir(), m, nil)
			},
			OnQuit: quit,
		})
		go tray.Run()
	} else {
		logger.Info("running in headless mode (no system tray)")
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")
	if tray != nil {
		tray.Quit()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func ensureAuthToken(repo studio.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, api.AuthTokenKey)
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, api.AuthTokenKey, token); err != nil {
		return "", err
	}

	return token, nil
}
