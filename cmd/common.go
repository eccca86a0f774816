package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/teemow/calboard/internal/config"
	"github.com/teemow/calboard/internal/logging"
)

// configPathEnv names a config file when --config is not given.
const configPathEnv = "CALBOARD_CONFIG"

// resolveConfigPath returns the flag value, falling back to CALBOARD_CONFIG.
func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(configPathEnv)
}

// loadConfig reads the config file (if any) and the environment.
func loadConfig(flagValue string) (*config.Config, error) {
	cfg, err := config.Load(resolveConfigPath(flagValue))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. stdout carries JSON output and the
// MCP stdio protocol, so callers pass stderr.
func newLogger(w io.Writer, debug bool, format string) (*slog.Logger, error) {
	level := os.Getenv("LOG_LEVEL")
	if debug {
		level = "debug"
	}
	if level == "" {
		level = "info"
	}
	if format == "" {
		format = os.Getenv("LOG_FORMAT")
	}
	return logging.New(w, level, format)
}
