package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/ajkula/jsonraven/pkg/delivery"
)

const DefaultConfigFilename = "jsonraven.yaml"

const configHeader = `# jsonraven configuration
# Durations use Go syntax (500ms, 3s, 1m). Use only against targets you are authorized to test.
`

// LoadConfig loads configuration from a YAML file.
// Keys missing from the file keep their default values.
func LoadConfig(filename string) (*Config, error) {
	if filename == "" {
		filename = DefaultConfigFilename
	}

	yamlData, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("configuration file not found: %s: %w", filename, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := CreateDefaultConfig()
	if err := yaml.Unmarshal(yamlData, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadConfigOrCreateDefault loads config from file or returns default if not found
func LoadConfigOrCreateDefault(filename string) (*Config, error) {
	cfg, err := LoadConfig(filename)
	if err == nil {
		return cfg, nil
	}

	// If file doesn't exist, return default config
	if errors.Is(err, fs.ErrNotExist) {
		return CreateDefaultConfig(), nil
	}

	// Other errors (parsing, validation) should be reported
	return nil, err
}

// ValidateConfig validates the configuration for correctness
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if err := validateTargetConfig(&cfg.Target); err != nil {
		return fmt.Errorf("target configuration error: %w", err)
	}

	if err := validateEngineConfig(&cfg.Engine); err != nil {
		return fmt.Errorf("engine configuration error: %w", err)
	}

	if err := validateTimingConfig(&cfg.Timing); err != nil {
		return fmt.Errorf("timing configuration error: %w", err)
	}

	if err := validateStorageConfig(cfg); err != nil {
		return fmt.Errorf("storage configuration error: %w", err)
	}

	if err := validateReportsConfig(&cfg.Reports); err != nil {
		return fmt.Errorf("reports configuration error: %w", err)
	}

	if err := validateScheduleConfig(&cfg.Schedule); err != nil {
		return fmt.Errorf("schedule configuration error: %w", err)
	}

	return nil
}

// validateTargetConfig validates target-specific configuration
func validateTargetConfig(target *TargetConfig) error {
	if target.URL == "" {
		return fmt.Errorf("target URL is required")
	}

	u, err := url.Parse(target.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("target URL must be absolute: %s", target.URL)
	}

	if target.VulnerableParam == "" {
		return fmt.Errorf("vulnerable parameter is required")
	}

	switch target.Auth.Type {
	case "", "none", "basic", "bearer", "custom":
	default:
		return fmt.Errorf("invalid auth type: %s", target.Auth.Type)
	}

	return nil
}

// validateEngineConfig validates engine-specific configuration
func validateEngineConfig(engine *EngineConfig) error {
	if engine.Backend != "http" && engine.Backend != "browser" {
		return fmt.Errorf("invalid backend: %s (expected http or browser)", engine.Backend)
	}

	if engine.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %v", engine.Timeout)
	}

	if engine.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative, got: %d", engine.RateLimit)
	}

	if engine.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative, got: %d", engine.MaxRetries)
	}

	if engine.RetryDelay < 0 {
		return fmt.Errorf("retry delay cannot be negative, got: %v", engine.RetryDelay)
	}

	return nil
}

func validateTimingConfig(timing *TimingConfig) error {
	delays := map[string]int64{
		"initial_delay":     int64(timing.InitialDelay),
		"payload_delay":     int64(timing.PayloadDelay),
		"final_delay":       int64(timing.FinalDelay),
		"form_submit_delay": int64(timing.FormSubmitDelay),
	}
	for name, d := range delays {
		if d < 0 {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}
	return nil
}

func validateStorageConfig(cfg *Config) error {
	switch strings.ToLower(cfg.Storage.Driver) {
	case "", "memory":
	case "sqlite", "sqlite3":
		if cfg.Storage.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	default:
		return fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
	return nil
}

// validateReportsConfig validates reports-specific configuration
func validateReportsConfig(reports *ReportsConfig) error {
	if reports.OutputDir == "" {
		return fmt.Errorf("reports output directory is required")
	}

	validFormats := map[string]bool{
		"json": true,
		"html": true,
		"txt":  true,
	}

	for _, format := range reports.Formats {
		if !validFormats[format] {
			return fmt.Errorf("invalid report format: %s", format)
		}
	}

	return nil
}

func validateScheduleConfig(schedule *ScheduleConfig) error {
	if schedule.Spec == "" {
		return nil
	}
	if _, err := cron.ParseStandard(schedule.Spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", schedule.Spec, err)
	}
	if schedule.MaxRuns < 0 {
		return fmt.Errorf("max runs cannot be negative, got: %d", schedule.MaxRuns)
	}
	return nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(cfg *Config, filename string) error {
	if filename == "" {
		filename = DefaultConfigFilename
	}

	if err := ValidateConfig(cfg); err != nil {
		return fmt.Errorf("cannot save invalid configuration: %w", err)
	}

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize configuration: %w", err)
	}

	if err := os.WriteFile(filename, append([]byte(configHeader), yamlData...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Settings converts the configuration into the read-only settings of one run
func (c *Config) Settings() delivery.Settings {
	s := delivery.Settings{
		TargetURL:         c.Target.URL,
		TargetName:        c.Target.WindowName,
		VulnerableParam:   c.Target.VulnerableParam,
		InitialDelay:      c.Timing.InitialDelay,
		PayloadDelay:      c.Timing.PayloadDelay,
		FinalDelay:        c.Timing.FinalDelay,
		FormSubmitDelay:   c.Timing.FormSubmitDelay,
		BackgroundTimeout: c.Timing.BackgroundTimeout,
		TargetOrigin:      c.Channels.TargetOrigin,
		StorageKey:        c.Channels.StorageKey,
		SocketEndpoint:    c.Channels.SocketEndpoint,
	}

	if s.SocketEndpoint == "" && c.Channels.Socket {
		// best-effort; an empty endpoint skips the socket channel
		s.SocketEndpoint, _ = delivery.DeriveSocketEndpoint(c.Target.URL, c.Channels.SocketPath)
	}

	return s
}
