package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadParsesFileAndAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[connection]
type = "network"
network_addr = "127.0.0.1:9000"
allowlist = ["10.0.0.0/8", "localhost"]

[logging]
verbose = true
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Connection.Type != "network" || cfg.Connection.NetworkAddr != "127.0.0.1:9000" {
		t.Fatalf("unexpected connection config: %+v", cfg.Connection)
	}
	if !cfg.Logging.Verbose {
		t.Fatalf("expected verbose true")
	}
	if cfg.Connection.SocketPath != defaultSocketPath() {
		t.Fatalf("expected default socket path %q for a field the file leaves unset, got %q", defaultSocketPath(), cfg.Connection.SocketPath)
	}
}

func TestLoadWithNoFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	os.Chdir(dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Connection.Type != "unix" {
		t.Fatalf("expected default unix connection type, got %q", cfg.Connection.Type)
	}
}

func TestLoadDiscoversConfigInCurrentDirectoryWhenNoExplicitPath(t *testing.T) {
	dir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}

	if err := os.MkdirAll("climonitor", 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	contents := "[connection]\ntype = \"unix\"\nsocket_path = \"/from/discovered/file.sock\"\n"
	if err := os.WriteFile(filepath.Join("climonitor", "config.toml"), []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Connection.SocketPath != "/from/discovered/file.sock" {
		t.Fatalf("expected config discovered in current directory to be used, got %+v", cfg.Connection)
	}
}

func TestEnvOverridesTakePrecedenceOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	os.WriteFile(path, []byte("[connection]\ntype = \"unix\"\nsocket_path = \"/from/file.sock\"\n"), 0o644)

	t.Setenv("CLIMONITOR_SOCKET_PATH", "/from/env.sock")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Connection.SocketPath != "/from/env.sock" {
		t.Fatalf("expected env override, got %q", cfg.Connection.SocketPath)
	}
}
