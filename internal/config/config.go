// Package config provides configuration management for the studio.
// Values come from an optional config.yaml, then FLIPDOT_* environment
// variables, then defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kkyr/fig"
)

const (
	// Default values
	DefaultDataDir  = ".flipdot"
	DefaultFile     = "config.yaml"
	DefaultPort     = 8787
	DefaultLogLevel = "info"

	// EnvPrefix prefixes every environment override, e.g. FLIPDOT_PORT or FLIPDOT_MQTT_URL.
	EnvPrefix = "FLIPDOT"

	// Database and lock filenames inside the data dir
	DBFilename   = "studio.db"
	LockFilename = "server.lock"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	LockPath() string
	ExportDir() string
	Tray() bool
	MQTT() MQTT
}

// MQTT configures the flip-dot display connection.
type MQTT struct {
	URL      string `fig:"url"`
	Username string `fig:"username"`
	Password string `fig:"password"`
	Topic    string `fig:"topic" default:"flipdot/frames"`
	ClientID string `fig:"client_id" default:"flipdot-studio"`
}

func (m MQTT) Enabled() bool {
	return m.URL != ""
}

type values struct {
	Port      int    `fig:"port" default:"8787"`
	LogLevel  string `fig:"log_level" default:"info"`
	DataDir   string `fig:"data_dir"`
	ExportDir string `fig:"export_dir"`
	Tray      bool   `fig:"tray"`
	Mqtt      MQTT   `fig:"mqtt"`
}

// FileConfig is the loaded configuration.
type FileConfig struct {
	v values
}

// New loads config.yaml from dir (or the working directory and the default
// data dir when dir is empty) and applies environment overrides. A missing
// file is not an error.
func New(dir string) (*FileConfig, error) {
	dirs := []string{dir}
	if dir == "" {
		dirs = []string{".", defaultDataDir()}
	}

	var v values
	err := fig.Load(&v, fig.File(DefaultFile), fig.Dirs(dirs...), fig.UseEnv(EnvPrefix))
	if errors.Is(err, fig.ErrFileNotFound) {
		v = values{}
		err = fig.Load(&v, fig.IgnoreFile(), fig.UseEnv(EnvPrefix))
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if v.Port < 1 || v.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d: port must be between 1 and 65535", v.Port)
	}
	if v.DataDir == "" {
		v.DataDir = defaultDataDir()
	}

	return &FileConfig{v: v}, nil
}

// Port returns the HTTP server port
func (c *FileConfig) Port() int {
	return c.v.Port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *FileConfig) LogLevel() string {
	return c.v.LogLevel
}

// DataDir returns the data directory path
func (c *FileConfig) DataDir() string {
	return c.v.DataDir
}

// DBPath returns the full path to the SQLite database file
func (c *FileConfig) DBPath() string {
	return filepath.Join(c.v.DataDir, DBFilename)
}

func (c *FileConfig) LockPath() string {
	return filepath.Join(c.v.DataDir, LockFilename)
}

// ExportDir is where exports land when a request names no directory.
func (c *FileConfig) ExportDir() string {
	if c.v.ExportDir != "" {
		return c.v.ExportDir
	}
	return filepath.Join(c.v.DataDir, "exports")
}

func (c *FileConfig) Tray() bool {
	return c.v.Tray
}

func (c *FileConfig) MQTT() MQTT {
	return c.v.Mqtt
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
