package run

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ajkula/jsonraven/pkg/config"
	"github.com/ajkula/jsonraven/pkg/delivery"
	"github.com/ajkula/jsonraven/pkg/logx"
	"github.com/ajkula/jsonraven/pkg/payloads"
)

// Execute runs the delivery suite with the resolved configuration, once or on a schedule
func Execute(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return execute(cmd.Context(), cfg, (*RunOrchestrator).RunOnce)
}

// ExecuteQuick runs the suite against the URL given as first argument.
// An optional second argument names the vulnerable parameter.
func ExecuteQuick(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	targetURL, param := args[0], ""
	if len(args) > 1 {
		param = args[1]
	}

	ApplyTargetOverride(cfg, targetURL)
	if param != "" {
		cfg.Target.VulnerableParam = param
	}
	// quick runs are one-shot
	cfg.Schedule = config.ScheduleConfig{}

	if err := config.ValidateConfig(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return execute(cmd.Context(), cfg, func(ro *RunOrchestrator, ctx context.Context) (*delivery.RunSummary, error) {
		return ro.RunQuick(ctx, targetURL, param)
	})
}

// ExecutePayloads lists the payload catalog without delivering anything
func ExecutePayloads(cmd *cobra.Command, args []string) error {
	param, _ := cmd.Flags().GetString("param")
	full, _ := cmd.Flags().GetBool("full")

	if namesOnly, _ := cmd.Flags().GetBool("names"); namesOnly {
		for _, name := range payloads.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	cases := payloads.Generate(payloads.Config{VulnerableParam: param})

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tEXPECTED\tPAYLOAD")
	for i, c := range cases {
		payload := c.Payload
		if !full {
			payload = payloads.Truncate(payload, payloads.PreviewLength)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, c.Name, c.ExpectedResult, payload)
	}
	return w.Flush()
}

// runFunc performs one run with a prepared orchestrator
type runFunc func(ro *RunOrchestrator, ctx context.Context) (*delivery.RunSummary, error)

func execute(ctx context.Context, cfg *config.Config, runOnce runFunc) error {
	if ctx == nil {
		ctx = context.Background()
	}
	noColor := !cfg.Output.Colors

	log, closer, err := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		NoColor: noColor,
		File:    cfg.Logging.OutputFile,
	})
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer closer.Close()

	printTarget(cfg.Target, cfg.Engine.Backend, noColor)
	printWarning("Use only on authorized targets!", noColor)

	orchestrator := NewRunOrchestrator(cfg, log)
	printInfo(fmt.Sprintf("Channels: %s", channelList(orchestrator.enabledChannels())), noColor)

	if cfg.Schedule.Spec != "" {
		printInfo(fmt.Sprintf("Scheduled runs: %s", cfg.Schedule.Spec), noColor)
		err := runSchedule(ctx, cfg.Schedule.Spec, cfg.Schedule.MaxRuns, func(ctx context.Context) error {
			summary, err := runOnce(orchestrator, ctx)
			orchestrator.printSummary(summary)
			return err
		}, log)
		if errors.Is(err, context.Canceled) {
			printInfo("Scheduler stopped", noColor)
			return nil
		}
		return err
	}

	start := time.Now()
	summary, err := runOnce(orchestrator, ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			printWarning("Run interrupted", noColor)
			return nil
		}
		return fmt.Errorf("delivery run failed: %w", err)
	}

	orchestrator.printSummary(summary)
	printInfo(fmt.Sprintf("Completed in %s", time.Since(start).Round(time.Millisecond)), noColor)
	return nil
}
