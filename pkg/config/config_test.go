package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/marmos91/fingered/pkg/metrics"
)

// yamlSafePath converts a filesystem path to a YAML-safe representation.
// On Windows, backslashes in double-quoted YAML strings are interpreted as
// escape sequences (e.g. \U -> Unicode escape), causing parse errors.
func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_YAML(t *testing.T) {
	usersFile := yamlSafePath(filepath.Join(t.TempDir(), "users.toml"))
	configPath := writeConfig(t, "config.yaml", `
logging:
  level: debug

server:
  listen: "127.0.0.1:7979"
  users_file: "`+usersFile+`"
  shutdown_timeout: 5s
  max_connections: 64
  watch_users_file: true
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected level normalized to 'DEBUG', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Server.Listen != "127.0.0.1:7979" {
		t.Errorf("Expected listen '127.0.0.1:7979', got %q", cfg.Server.Listen)
	}
	if cfg.Server.UsersFile != usersFile {
		t.Errorf("Expected users_file %q, got %q", usersFile, cfg.Server.UsersFile)
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("Expected shutdown_timeout 5s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.MaxConnections != 64 {
		t.Errorf("Expected max_connections 64, got %d", cfg.Server.MaxConnections)
	}
	if !cfg.Server.WatchUsersFile {
		t.Error("Expected watch_users_file to be true")
	}
	if cfg.Metrics.Port != metrics.DefaultPort {
		t.Errorf("Expected default metrics port %d, got %d", metrics.DefaultPort, cfg.Metrics.Port)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Expected no error when loading default config, got: %v", err)
	}
	if cfg.Server.UsersFile != DefaultUsersFile {
		t.Errorf("Expected default users file %q, got %q", DefaultUsersFile, cfg.Server.UsersFile)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "invalid.yaml", `
logging:
  level: INFO
  invalid yaml here [[[
`)

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected error for invalid YAML")
	}
}

func TestLoad_TOML(t *testing.T) {
	configPath := writeConfig(t, "config.toml", `
[logging]
level = "WARN"
format = "json"

[server]
listen = "/run/fingered.sock"
shutdown_timeout = "1m"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load TOML config: %v", err)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected format 'json', got %q", cfg.Logging.Format)
	}
	if cfg.Server.Listen != "/run/fingered.sock" {
		t.Errorf("Expected unix listen path, got %q", cfg.Server.Listen)
	}
	if cfg.Server.ShutdownTimeout != time.Minute {
		t.Errorf("Expected shutdown_timeout 1m, got %v", cfg.Server.ShutdownTimeout)
	}
}

func TestLoad_InvalidListen(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
server:
  listen: "finger.example.com"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected validation error for host name listen address")
	}
	if !strings.Contains(err.Error(), "server.listen") {
		t.Errorf("Expected error to name server.listen, got: %v", err)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("FINGERED_LOGGING_LEVEL", "ERROR")
	t.Setenv("FINGERED_SERVER_USERS_FILE", "/srv/finger/users.yaml")
	t.Setenv("FINGERED_SERVER_MAX_CONNECTIONS", "8")
	t.Setenv("FINGERED_METRICS_ENABLED", "true")

	configPath := writeConfig(t, "config.yaml", `
logging:
  level: "INFO"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected level 'ERROR' from env var, got %q", cfg.Logging.Level)
	}
	if cfg.Server.UsersFile != "/srv/finger/users.yaml" {
		t.Errorf("Expected users file from env var, got %q", cfg.Server.UsersFile)
	}
	if cfg.Server.MaxConnections != 8 {
		t.Errorf("Expected max_connections 8 from env var, got %d", cfg.Server.MaxConnections)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Expected metrics enabled from env var")
	}
}

func TestLoad_EnvironmentWithoutFile(t *testing.T) {
	t.Setenv("FINGERED_SERVER_SHUTDOWN_TIMEOUT", "2s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Server.ShutdownTimeout != 2*time.Second {
		t.Errorf("Expected shutdown_timeout 2s from env var, got %v", cfg.Server.ShutdownTimeout)
	}
}

func TestMustLoad_MissingExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := MustLoad(path)
	if err == nil {
		t.Fatal("Expected error for missing explicit config file")
	}
	if !strings.Contains(err.Error(), "fingered config init") {
		t.Errorf("Expected instructions in error, got: %v", err)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Server.Listen = "0.0.0.0"
	cfg.Server.MaxConnections = 3

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}
	if loaded.Server.Listen != "0.0.0.0" || loaded.Server.MaxConnections != 3 {
		t.Errorf("Saved values not preserved: %+v", loaded.Server)
	}
	if loaded.Server.ShutdownTimeout != cfg.Server.ShutdownTimeout {
		t.Errorf("Expected shutdown_timeout %v, got %v", cfg.Server.ShutdownTimeout, loaded.Server.ShutdownTimeout)
	}
}

func TestGetConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dir := GetConfigDir()
	if filepath.Base(dir) != "fingered" {
		t.Errorf("Expected directory name 'fingered', got %q", filepath.Base(dir))
	}
	if GetDefaultConfigPath() != filepath.Join(dir, "config.yaml") {
		t.Errorf("Unexpected default config path %q", GetDefaultConfigPath())
	}
	if DefaultConfigExists() {
		t.Error("Expected no config in a fresh XDG_CONFIG_HOME")
	}
}
