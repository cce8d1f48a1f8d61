// Package config loads launcher configuration from defaults, a TOML
// file, and environment variables, in that increasing priority
// (command-line flags, handled by the caller, take precedence over all
// of this).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the structured document described in spec.md §6.
type Config struct {
	Connection Connection `toml:"connection"`
	Logging    Logging    `toml:"logging"`
}

// Connection describes how the launcher reaches the aggregator.
type Connection struct {
	Type        string   `toml:"type"` // "unix" or "network"
	SocketPath  string   `toml:"socket_path"`
	NetworkAddr string   `toml:"network_addr"`
	Allowlist   []string `toml:"allowlist"`
}

// Logging controls trace verbosity and the PTY byte-copy log file.
type Logging struct {
	Verbose bool   `toml:"verbose"`
	LogFile string `toml:"log_file"`
}

// Default returns the configuration used when no file, environment
// variable, or flag overrides a field.
func Default() Config {
	return Config{
		Connection: Connection{
			Type:       "unix",
			SocketPath: defaultSocketPath(),
		},
	}
}

// discoveryPaths are tried in priority order; the first that exists
// wins. Relative to the current directory, then the user's home.
func discoveryPaths() []string {
	paths := []string{filepath.Join("climonitor", "config.toml")}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".climonitor", "config.toml"),
			filepath.Join(home, ".config", "climonitor", "config.toml"),
		)
	}
	return paths
}

// Load builds the effective configuration: defaults, then the first
// discovered config file (or explicitPath if non-empty), then
// environment variable overrides. Command-line flag overrides are the
// caller's responsibility, applied after Load returns.
func Load(explicitPath string) (Config, error) {
	cfg := Default()

	path := explicitPath
	if path == "" {
		for _, candidate := range discoveryPaths() {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CLIMONITOR_SOCKET_PATH"); v != "" {
		cfg.Connection.Type = "unix"
		cfg.Connection.SocketPath = v
	}
	if v := os.Getenv("CLIMONITOR_GRPC_ADDR"); v != "" {
		cfg.Connection.Type = "network"
		cfg.Connection.NetworkAddr = v
	}
	if v := os.Getenv("CLIMONITOR_VERBOSE"); isTruthy(v) {
		cfg.Logging.Verbose = true
	}
	if v := os.Getenv("CLIMONITOR_LOG_FILE"); v != "" {
		cfg.Logging.LogFile = v
	}
}

func isTruthy(v string) bool {
	switch v {
	case "1", "true", "True", "TRUE", "yes", "on":
		return true
	default:
		return false
	}
}

func defaultSocketPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".climonitor", "climonitor.sock")
	}
	return "climonitor.sock"
}
