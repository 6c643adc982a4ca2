package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port() = %d, want %d", cfg.Port(), DefaultPort)
	}
	if cfg.LogLevel() != DefaultLogLevel {
		t.Errorf("LogLevel() = %q, want %q", cfg.LogLevel(), DefaultLogLevel)
	}
	if cfg.MQTT().Enabled() {
		t.Error("MQTT should be disabled without a broker URL")
	}
	if cfg.MQTT().Topic != "flipdot/frames" {
		t.Errorf("MQTT().Topic = %q", cfg.MQTT().Topic)
	}
	if filepath.Base(cfg.DBPath()) != DBFilename {
		t.Errorf("DBPath() = %q", cfg.DBPath())
	}
}

func TestNew_FromFile(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	content := "port: 9000\nlog_level: debug\ndata_dir: " + dataDir + "\nmqtt:\n  url: tcp://localhost:1883\n  topic: wall/frames\n"
	if err := os.WriteFile(filepath.Join(dir, DefaultFile), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 9000 {
		t.Errorf("Port() = %d, want 9000", cfg.Port())
	}
	if cfg.LogLevel() != "debug" {
		t.Errorf("LogLevel() = %q, want debug", cfg.LogLevel())
	}
	if cfg.DataDir() != dataDir {
		t.Errorf("DataDir() = %q, want %q", cfg.DataDir(), dataDir)
	}
	if cfg.ExportDir() != filepath.Join(dataDir, "exports") {
		t.Errorf("ExportDir() = %q", cfg.ExportDir())
	}
	if !cfg.MQTT().Enabled() || cfg.MQTT().Topic != "wall/frames" {
		t.Errorf("MQTT() = %+v", cfg.MQTT())
	}
}

func TestNew_EnvOverride(t *testing.T) {
	t.Setenv("FLIPDOT_PORT", "9100")
	t.Setenv("FLIPDOT_MQTT_URL", "tcp://broker:1883")

	cfg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 9100 {
		t.Errorf("Port() = %d, want 9100", cfg.Port())
	}
	if cfg.MQTT().URL != "tcp://broker:1883" {
		t.Errorf("MQTT().URL = %q", cfg.MQTT().URL)
	}
}

func TestNew_InvalidPort(t *testing.T) {
	t.Setenv("FLIPDOT_PORT", "70000")

	if _, err := New(t.TempDir()); err == nil {
		t.Fatal("expected error for out of range port")
	}
}
