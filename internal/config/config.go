// Package config loads the optional schemasketch.toml configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds the full TOML-driven configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Output OutputConfig `toml:"output"`
	Spec   SpecConfig   `toml:"spec"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	Mode         string `toml:"mode"`           // debug|release|test
	MaxBodyBytes int64  `toml:"max_body_bytes"` // request body limit
}

// OutputConfig sets CLI output defaults.
type OutputConfig struct {
	Format string `toml:"format"`
	Schema string `toml:"schema"` // PostgreSQL schema used by the ddl format
}

// SpecConfig sets how spec documents are decoded.
type SpecConfig struct {
	Format string `toml:"format"` // auto|json|yaml
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `toml:"level"`  // debug|info|warn|error
	Format string `toml:"format"` // text|json
}

var (
	outputFormats = []string{"text", "markdown", "mermaid", "ddl", "svg", "json"}
	specFormats   = []string{"auto", "json", "yaml"}
	logLevels     = []string{"debug", "info", "warn", "error"}
	logFormats    = []string{"text", "json"}
	serverModes   = []string{"debug", "release", "test"}
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			Mode:         "release",
			MaxBodyBytes: 1 << 20,
		},
		Output: OutputConfig{Format: "text"},
		Spec:   SpecConfig{Format: "auto"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a TOML config file and returns a Config with defaults and
// environment overrides applied. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		if unknown := md.Undecoded(); len(unknown) > 0 {
			keys := make([]string, len(unknown))
			for i, k := range unknown {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotenv loads .env from the working directory when present.
func LoadDotenv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load .env", "error", err)
	}
}

func applyEnv(cfg *Config) {
	if addr := os.Getenv("SCHEMASKETCH_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	} else if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		cfg.Server.Mode = mode
	}
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	if err := oneOf("output.format", c.Output.Format, outputFormats); err != nil {
		return err
	}
	if err := oneOf("spec.format", c.Spec.Format, specFormats); err != nil {
		return err
	}
	if err := oneOf("log.level", c.Log.Level, logLevels); err != nil {
		return err
	}
	if err := oneOf("log.format", c.Log.Format, logFormats); err != nil {
		return err
	}
	if err := oneOf("server.mode", c.Server.Mode, serverModes); err != nil {
		return err
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	return nil
}

// SlogLevel maps Log.Level onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger writing to stderr.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func oneOf(key, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of: %s", key, strings.Join(allowed, ", "))
}
