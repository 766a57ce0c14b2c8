package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string

	HTTPPort    int
	GRPCPort    int
	GRPCEnabled bool

	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	MaxBodyBytes      int64

	LogLevel slog.Level
}

type configFile struct {
	Service struct {
		ID          string `yaml:"id"`
		HTTPPort    *int   `yaml:"http_port"`
		GRPCPort    *int   `yaml:"grpc_port"`
		GRPCEnabled *bool  `yaml:"grpc_enabled"`
	} `yaml:"service"`
	HTTP struct {
		ReadHeaderTimeoutSeconds int   `yaml:"read_header_timeout_seconds"`
		ShutdownTimeoutSeconds   int   `yaml:"shutdown_timeout_seconds"`
		MaxBodyBytes             int64 `yaml:"max_body_bytes"`
	} `yaml:"http"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

func DefaultConfig() Config {
	return Config{
		ServiceID:         "beehive-mapper",
		HTTPPort:          8080,
		GRPCPort:          9090,
		GRPCEnabled:       true,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		MaxBodyBytes:      1 << 20,
		LogLevel:          slog.LevelInfo,
	}
}

// LoadConfig reads the YAML file at path, if present, and applies
// environment overrides on top of it.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	level := ""

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort != nil {
			cfg.HTTPPort = *f.Service.HTTPPort
		}
		if f.Service.GRPCPort != nil {
			cfg.GRPCPort = *f.Service.GRPCPort
		}
		if f.Service.GRPCEnabled != nil {
			cfg.GRPCEnabled = *f.Service.GRPCEnabled
		}
		if f.HTTP.ReadHeaderTimeoutSeconds > 0 {
			cfg.ReadHeaderTimeout = time.Duration(f.HTTP.ReadHeaderTimeoutSeconds) * time.Second
		}
		if f.HTTP.ShutdownTimeoutSeconds > 0 {
			cfg.ShutdownTimeout = time.Duration(f.HTTP.ShutdownTimeoutSeconds) * time.Second
		}
		if f.HTTP.MaxBodyBytes != 0 {
			cfg.MaxBodyBytes = f.HTTP.MaxBodyBytes
		}
		level = f.Logging.Level
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	env := envReader{}
	cfg.ServiceID = envOrDefault("SERVICE_ID", cfg.ServiceID)
	cfg.HTTPPort = env.Int("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = env.Int("GRPC_PORT", cfg.GRPCPort)
	cfg.GRPCEnabled = env.Bool("GRPC_ENABLED", cfg.GRPCEnabled)
	cfg.ReadHeaderTimeout = time.Duration(env.Int("READ_HEADER_TIMEOUT_SECONDS", int(cfg.ReadHeaderTimeout.Seconds()))) * time.Second
	cfg.ShutdownTimeout = time.Duration(env.Int("SHUTDOWN_TIMEOUT_SECONDS", int(cfg.ShutdownTimeout.Seconds()))) * time.Second
	cfg.MaxBodyBytes = int64(env.Int("MAX_BODY_BYTES", int(cfg.MaxBodyBytes)))
	level = envOrDefault("LOG_LEVEL", level)
	if err := errors.Join(env.errs...); err != nil {
		return Config{}, err
	}

	if level != "" {
		parsed, err := parseLogLevel(level)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = parsed
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port %d", c.HTTPPort)
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port %d", c.GRPCPort)
	}
	if c.GRPCEnabled && c.HTTPPort != 0 && c.HTTPPort == c.GRPCPort {
		return fmt.Errorf("http and grpc ports must differ, both are %d", c.HTTPPort)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", raw)
	}
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envReader collects malformed values instead of silently falling back.
type envReader struct {
	errs []error
}

func (e *envReader) Int(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s %q: expected integer", name, raw))
		return fallback
	}
	return v
}

func (e *envReader) Bool(name string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		e.errs = append(e.errs, fmt.Errorf("invalid %s %q: expected boolean", name, raw))
		return fallback
	}
}
