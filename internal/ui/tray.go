// Package ui runs the system tray menu of the studio server.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/flipdot/flipdot-studio/internal/studio"
)

const refreshInterval = 30 * time.Second

type Tray struct {
	studioSvc studio.StudioService
	logger    *slog.Logger

	statusItem   *systray.MenuItem
	projectsItem *systray.MenuItem

	mu        sync.Mutex
	exporting bool
	done      chan struct{}

	onExportAll func() (int, error)
	onQuit      func()
}

type TrayConfig struct {
	Studio      studio.StudioService
	Logger      *slog.Logger
	OnExportAll func() (int, error)
	OnQuit      func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		studioSvc:   cfg.Studio,
		logger:      cfg.Logger,
		onExportAll: cfg.OnExportAll,
		onQuit:      cfg.OnQuit,
		done:        make(chan struct{}),
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes())
	systray.SetTitle("Flipdot")
	systray.SetTooltip("Flipdot Studio")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current studio status")
	t.statusItem.Disable()

	t.projectsItem = systray.AddMenuItem("Projects: 0", "Stored projects")
	t.projectsItem.Disable()

	systray.AddSeparator()

	exportItem := systray.AddMenuItem("Export All", "Write every project as a Lottie file")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Flipdot Studio")

	t.refreshProjects()

	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.refreshProjects()
			case <-exportItem.ClickedCh:
				go t.handleExportAll()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			case <-t.done:
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) refreshProjects() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := t.studioSvc.CountProjects(ctx)
	if err != nil {
		t.logger.Warn("failed to count projects", "error", err)
		return
	}
	t.UpdateProjectCount(n)
}

func (t *Tray) handleExportAll() {
	if t.onExportAll == nil {
		return
	}

	t.mu.Lock()
	if t.exporting {
		t.mu.Unlock()
		return
	}
	t.exporting = true
	t.mu.Unlock()

	t.UpdateStatus("Exporting")
	n, err := t.onExportAll()

	t.mu.Lock()
	t.exporting = false
	t.mu.Unlock()

	if err != nil {
		t.logger.Error("export all failed", "error", err)
		t.UpdateStatus("Export failed")
		return
	}
	t.UpdateStatus(fmt.Sprintf("Exported %d", n))
}

func (t *Tray) UpdateStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.statusItem != nil {
		t.statusItem.SetTitle("Status: " + status)
	}
}

func (t *Tray) UpdateProjectCount(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.projectsItem != nil {
		t.projectsItem.SetTitle(fmt.Sprintf("Projects: %d", count))
	}
}

// Quit closes the menu loop and the tray.
func (t *Tray) Quit() {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
	systray.Quit()
}
