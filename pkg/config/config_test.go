package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := ValidateConfig(CreateDefaultConfig()); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFilename)

	cfg := CreateDefaultConfig()
	cfg.Target.URL = "http://victim.local/app"
	cfg.Timing.PayloadDelay = 250 * time.Millisecond
	cfg.Schedule.Spec = "@every 10m"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Target.URL != cfg.Target.URL {
		t.Fatalf("url: got %q", loaded.Target.URL)
	}
	if loaded.Timing.PayloadDelay != 250*time.Millisecond {
		t.Fatalf("payload delay: got %v", loaded.Timing.PayloadDelay)
	}
	if loaded.Schedule.Spec != "@every 10m" {
		t.Fatalf("schedule: got %q", loaded.Schedule.Spec)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := "target:\n  url: https://lab.example/\n  vulnerable_param: q\ntiming:\n  final_delay: 1s\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Target.VulnerableParam != "q" || cfg.Timing.FinalDelay != time.Second {
		t.Fatalf("file values not applied: %+v %+v", cfg.Target, cfg.Timing)
	}
	if cfg.Timing.InitialDelay != 3*time.Second || cfg.Engine.Backend != "http" {
		t.Fatalf("defaults lost: %+v %+v", cfg.Timing, cfg.Engine)
	}
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	if _, err := LoadConfig(missing); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}

	cfg, err := LoadConfigOrCreateDefault(missing)
	if err != nil {
		t.Fatalf("LoadConfigOrCreateDefault: %v", err)
	}
	if cfg.Target.URL == "" {
		t.Fatal("expected defaults")
	}
}

func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no url", func(c *Config) { c.Target.URL = "" }, "target configuration error"},
		{"relative url", func(c *Config) { c.Target.URL = "/app" }, "must be absolute"},
		{"bad backend", func(c *Config) { c.Engine.Backend = "curl" }, "invalid backend"},
		{"negative delay", func(c *Config) { c.Timing.PayloadDelay = -time.Second }, "payload_delay"},
		{"sqlite without path", func(c *Config) { c.Storage.Driver = "sqlite" }, "sqlite path"},
		{"bad format", func(c *Config) { c.Reports.Formats = []string{"pdf"} }, "invalid report format"},
		{"bad cron", func(c *Config) { c.Schedule.Spec = "every tuesday" }, "invalid cron spec"},
		{"bad auth", func(c *Config) { c.Target.Auth.Type = "hmac" }, "invalid auth type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := CreateDefaultConfig()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSettingsConversion(t *testing.T) {
	cfg := CreateDefaultConfig()
	cfg.Target.URL = "https://lab.example/app/"
	cfg.Channels.SocketPath = "ws"

	s := cfg.Settings()
	if s.TargetURL != "https://lab.example/app/" || s.VulnerableParam != "data" {
		t.Fatalf("unexpected settings: %+v", s)
	}
	if s.SocketEndpoint != "wss://lab.example/app/ws" {
		t.Fatalf("unexpected socket endpoint %q", s.SocketEndpoint)
	}
	if s.InitialDelay != 3*time.Second || s.FinalDelay != 15*time.Second {
		t.Fatalf("unexpected delays: %+v", s)
	}

	cfg.Channels.Socket = false
	if got := cfg.Settings().SocketEndpoint; got != "" {
		t.Fatalf("socket disabled should leave endpoint empty, got %q", got)
	}
}

func TestApplyOverrides(t *testing.T) {
	v := viper.New()
	v.Set("target.url", "http://override.local/")
	v.Set("engine.backend", "browser")
	v.Set("timing.payload_delay", "0s")
	v.Set("output.colors", false)
	v.Set("output.show_banner", false)

	cfg := CreateDefaultConfig()
	ApplyOverrides(cfg, v)

	if cfg.Target.URL != "http://override.local/" || cfg.Engine.Backend != "browser" {
		t.Fatalf("overrides not applied: %+v %+v", cfg.Target, cfg.Engine)
	}
	if cfg.Timing.PayloadDelay != 0 {
		t.Fatalf("payload delay not overridden: %v", cfg.Timing.PayloadDelay)
	}
	if cfg.Output.Colors {
		t.Fatal("colors should be disabled")
	}
	if cfg.Output.ShowBanner {
		t.Fatal("banner should be disabled")
	}
	if cfg.Target.VulnerableParam != "data" {
		t.Fatal("unset keys must keep their value")
	}
}

func TestLoadUsesViperFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	if err := os.WriteFile(path, []byte("target:\n  url: https://file.example/\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}
	v.Set("target.vulnerable_param", "q")

	cfg, err := Load("", v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Target.URL != "https://file.example/" || cfg.Target.VulnerableParam != "q" {
		t.Fatalf("unexpected target: %+v", cfg.Target)
	}
}

func TestLoadRejectsInvalidOverride(t *testing.T) {
	v := viper.New()
	v.Set("engine.backend", "telnet")
	if _, err := Load("", v); err == nil {
		t.Fatal("expected validation error")
	}
}
