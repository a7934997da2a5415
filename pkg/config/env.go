package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load reads path, or the file viper located when path is empty, and applies overrides.
// With no file at all the defaults are used.
func Load(path string, v *viper.Viper) (*Config, error) {
	if path == "" && v != nil {
		path = v.ConfigFileUsed()
	}

	cfg := CreateDefaultConfig()
	if path != "" {
		loaded, err := LoadConfigOrCreateDefault(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	ApplyOverrides(cfg, v)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyOverrides copies keys set through viper (environment or flags) onto cfg.
// Only the keys a run commonly needs to override are bound.
func ApplyOverrides(cfg *Config, v *viper.Viper) {
	if v == nil {
		return
	}

	str := func(key string, dst *string) {
		if v.IsSet(key) && v.GetString(key) != "" {
			*dst = v.GetString(key)
		}
	}
	boolean := func(key string, dst *bool) {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}

	str("engine.backend", &cfg.Engine.Backend)
	str("target.url", &cfg.Target.URL)
	str("target.vulnerable_param", &cfg.Target.VulnerableParam)
	str("target.window_name", &cfg.Target.WindowName)
	str("target.auth.token", &cfg.Target.Auth.Token)
	str("channels.socket_endpoint", &cfg.Channels.SocketEndpoint)
	str("browser.control_url", &cfg.Browser.ControlURL)
	str("browser.bin", &cfg.Browser.Bin)
	str("storage.driver", &cfg.Storage.Driver)
	str("storage.path", &cfg.Storage.Path)
	str("reports.output_dir", &cfg.Reports.OutputDir)
	str("logging.level", &cfg.Logging.Level)
	str("logging.output_file", &cfg.Logging.OutputFile)
	str("schedule.spec", &cfg.Schedule.Spec)

	boolean("browser.headless", &cfg.Browser.Headless)
	boolean("output.colors", &cfg.Output.Colors)
	boolean("output.show_banner", &cfg.Output.ShowBanner)

	if v.IsSet("timing.initial_delay") {
		cfg.Timing.InitialDelay = v.GetDuration("timing.initial_delay")
	}
	if v.IsSet("timing.payload_delay") {
		cfg.Timing.PayloadDelay = v.GetDuration("timing.payload_delay")
	}
	if v.IsSet("timing.final_delay") {
		cfg.Timing.FinalDelay = v.GetDuration("timing.final_delay")
	}
}
