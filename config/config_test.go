package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, `
http:
  port: 9090
  timeout: 5s
model:
  dir: /srv/models
log:
  level: debug
history:
  enabled: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Http.Port != 9090 || cfg.Http.Timeout != 5*time.Second {
		t.Fatalf("unexpected http config: %+v", cfg.Http)
	}
	if cfg.Model.Dir != "/srv/models" || cfg.Model.Prefix != "airbnb" {
		t.Fatalf("unexpected model config: %+v", cfg.Model)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
	if cfg.History.Enabled {
		t.Fatal("expected history to be disabled")
	}
	if cfg.Http.MaxBodyBytes != 64<<10 {
		t.Fatalf("expected default body limit, got %d", cfg.Http.MaxBodyBytes)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Http.Port != 8080 {
		t.Fatalf("expected default port, got %d", cfg.Http.Port)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PRICER_HTTP_PORT", "7000")
	t.Setenv("PRICER_MODEL_DIR", "/tmp/bundles")
	t.Setenv("PRICER_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Http.Port != 7000 || cfg.Model.Dir != "/tmp/bundles" || cfg.Log.Level != "warn" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}

	t.Setenv("PRICER_HTTP_PORT", "eighty")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-numeric port")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "port", mutate: func(c *Config) { c.Http.Port = 0 }},
		{name: "timeout", mutate: func(c *Config) { c.Http.Timeout = 0 }},
		{name: "body limit", mutate: func(c *Config) { c.Http.MaxBodyBytes = -1 }},
		{name: "rate limit", mutate: func(c *Config) { c.Http.RateLimit.Burst = 0 }},
		{name: "model dir", mutate: func(c *Config) { c.Model.Dir = "" }},
		{name: "history path", mutate: func(c *Config) { c.History.Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "log:\n  level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, zap.NewNop(), func(cfg *Config) { changes <- cfg })
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case cfg := <-changes:
			if cfg.Log.Level != "debug" {
				continue
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			return
		case <-tick.C:
			// The watcher may not be registered yet; keep rewriting until a change lands.
			writeConfig(t, path, "log:\n  level: debug\n")
		case <-deadline:
			t.Fatal("config change not observed")
		}
	}
}
