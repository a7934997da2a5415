package run

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajkula/jsonraven/pkg/config"
)

// LoadConfig resolves the configuration for a command: file, environment, then flags
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")

	cfg, err := config.Load(path, viper.GetViper())
	if err != nil {
		return nil, err
	}

	applyFlagOverrides(cmd, cfg)

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyFlagOverrides copies the command's explicitly set flags onto cfg
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("target") {
		target, _ := flags.GetString("target")
		ApplyTargetOverride(cfg, target)
	}
	if flags.Changed("param") {
		cfg.Target.VulnerableParam, _ = flags.GetString("param")
	}
	if flags.Changed("backend") {
		cfg.Engine.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("output") {
		cfg.Reports.OutputDir, _ = flags.GetString("output")
	}
	if flags.Changed("schedule") {
		cfg.Schedule.Spec, _ = flags.GetString("schedule")
	}
	if flags.Changed("max-runs") {
		cfg.Schedule.MaxRuns, _ = flags.GetInt("max-runs")
	}
	if flags.Changed("payload-delay") {
		cfg.Timing.PayloadDelay, _ = flags.GetDuration("payload-delay")
	}

	if noColor, _ := cmd.Root().PersistentFlags().GetBool("no-color"); noColor {
		cfg.Output.Colors = false
	}
	if verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose"); verbose {
		cfg.Logging.Level = "debug"
	}
	if quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet"); quiet {
		cfg.Logging.Level = "error"
	}
}

// ApplyTargetOverride points the run at targetURL
func ApplyTargetOverride(cfg *config.Config, targetURL string) {
	if targetURL == "" {
		return
	}
	cfg.Target.URL = targetURL
	cfg.Target.Name = fmt.Sprintf("CLI Target: %s", targetURL)
	// a configured endpoint belonged to the previous target
	cfg.Channels.SocketEndpoint = ""
}
