package bootstrap

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	want := DefaultConfig()
	if cfg != want {
		t.Fatalf("unexpected defaults: got=%+v want=%+v", cfg, want)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
service:
  id: mapper-test
  http_port: 18080
  grpc_port: 19090
  grpc_enabled: false
http:
  read_header_timeout_seconds: 2
  shutdown_timeout_seconds: 3
  max_body_bytes: 4096
logging:
  level: debug
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceID != "mapper-test" || cfg.HTTPPort != 18080 || cfg.GRPCPort != 19090 || cfg.GRPCEnabled {
		t.Fatalf("unexpected service section: %+v", cfg)
	}
	if cfg.ReadHeaderTimeout != 2*time.Second || cfg.ShutdownTimeout != 3*time.Second || cfg.MaxBodyBytes != 4096 {
		t.Fatalf("unexpected http section: %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("unexpected log level: %v", cfg.LogLevel)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
service:
  http_port: 18080
logging:
  level: debug
`)
	t.Setenv("HTTP_PORT", "28080")
	t.Setenv("GRPC_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("MAX_BODY_BYTES", "2048")
	t.Setenv("SERVICE_ID", "mapper-env")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != 28080 || cfg.GRPCEnabled || cfg.MaxBodyBytes != 2048 || cfg.ServiceID != "mapper-env" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelWarn {
		t.Fatalf("unexpected log level: %v", cfg.LogLevel)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"malformed yaml": "service: [unterminated",
		"unknown level":  "logging:\n  level: chatty\n",
		"same ports":     "service:\n  http_port: 9000\n  grpc_port: 9000\n",
		"port range":     "service:\n  http_port: 70000\n",
		"negative body":  "http:\n  max_body_bytes: -1\n",
	}
	for name, body := range cases {
		if _, err := LoadConfig(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected config error", name)
		}
	}
}

func TestLoadConfigAllowsSharedPortWhenGRPCDisabled(t *testing.T) {
	path := writeConfig(t, "service:\n  http_port: 9000\n  grpc_port: 9000\n  grpc_enabled: false\n")
	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}
}

func TestLoadConfigKeepsExplicitZeroPorts(t *testing.T) {
	path := writeConfig(t, "service:\n  http_port: 0\n  grpc_port: 0\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != 0 || cfg.GRPCPort != 0 {
		t.Fatalf("expected ephemeral ports, got http=%d grpc=%d", cfg.HTTPPort, cfg.GRPCPort)
	}
}

func TestLoadConfigRejectsMalformedEnv(t *testing.T) {
	cases := map[string][2]string{
		"http port":    {"HTTP_PORT", "abc"},
		"grpc port":    {"GRPC_PORT", "9o90"},
		"grpc enabled": {"GRPC_ENABLED", "maybe"},
		"body size":    {"MAX_BODY_BYTES", "1MiB"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
			if err == nil {
				t.Fatalf("expected error for %s=%s", kv[0], kv[1])
			}
			if !strings.Contains(err.Error(), kv[0]) {
				t.Fatalf("expected error to name %s, got %v", kv[0], err)
			}
		})
	}
}
