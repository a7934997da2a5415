package run

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ajkula/jsonraven/pkg/config"
	"github.com/ajkula/jsonraven/pkg/delivery"
	"github.com/ajkula/jsonraven/pkg/reporting"
)

// RunOrchestrator drives one or more delivery runs from a resolved configuration
type RunOrchestrator struct {
	config  *config.Config
	log     zerolog.Logger
	noColor bool

	// Console output of the report; os.Stdout when nil
	out io.Writer
}

// NewRunOrchestrator creates a new orchestrator
func NewRunOrchestrator(cfg *config.Config, log zerolog.Logger) *RunOrchestrator {
	return &RunOrchestrator{
		config:  cfg,
		log:     log,
		noColor: !cfg.Output.Colors,
		out:     os.Stdout,
	}
}

// RunOnce builds the backend, executes the whole suite once and releases the backend
func (ro *RunOrchestrator) RunOnce(ctx context.Context) (*delivery.RunSummary, error) {
	return ro.withBackend(ctx, func(deps delivery.Dependencies) (*delivery.RunSummary, error) {
		tester, err := delivery.NewTester(ro.config.Settings(), deps)
		if err != nil {
			return nil, fmt.Errorf("failed to create tester: %w", err)
		}
		// background form and socket tasks must finish before the backend goes away
		defer tester.Close()

		ro.logStart(tester)
		return tester.Run(ctx)
	})
}

// RunQuick starts the suite for targetURL and param through delivery.QuickTest.
// Window name, delays and socket endpoint still come from the configuration.
func (ro *RunOrchestrator) RunQuick(ctx context.Context, targetURL, param string) (*delivery.RunSummary, error) {
	settings := ro.config.Settings()

	return ro.withBackend(ctx, func(deps delivery.Dependencies) (*delivery.RunSummary, error) {
		tester, err := delivery.QuickTest(ctx, targetURL, param, deps,
			delivery.WithTargetName(settings.TargetName),
			delivery.WithDelays(settings.InitialDelay, settings.PayloadDelay, settings.FinalDelay),
			delivery.WithSocketEndpoint(settings.SocketEndpoint),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to start quick test: %w", err)
		}
		defer tester.Close()

		ro.logStart(tester)
		return tester.Wait()
	})
}

// withBackend prepares the backend and reporter for one run and releases them afterwards
func (ro *RunOrchestrator) withBackend(ctx context.Context, fn func(deps delivery.Dependencies) (*delivery.RunSummary, error)) (*delivery.RunSummary, error) {
	b, err := buildBackend(ctx, ro.config, ro.log)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare %s backend: %w", ro.config.Engine.Backend, err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			ro.log.Warn().Err(err).Msg("Failed to release backend")
		}
	}()

	reporter, err := ro.reporter()
	if err != nil {
		return nil, err
	}

	deps := b.deps
	deps.Reporter = reporter
	deps.Logger = &ro.log

	return fn(deps)
}

func (ro *RunOrchestrator) logStart(tester *delivery.Tester) {
	ro.log.Info().
		Str("run_id", tester.RunID()).
		Str("backend", ro.config.Engine.Backend).
		Strs("channels", ro.enabledChannels()).
		Msg("Starting delivery run")
}

// reporter chains the console table with the file exporter
func (ro *RunOrchestrator) reporter() (delivery.Reporter, error) {
	console := reporting.NewConsole(ro.out, ro.config.Output.Colors)
	if !ro.config.Reports.AutoExport {
		return reporting.Chain(console), nil
	}

	generator, err := reporting.NewReportGenerator(&ro.config.Reports)
	if err != nil {
		return nil, fmt.Errorf("failed to create report generator: %w", err)
	}
	exporter := reporting.NewExporter(generator, ro.config.Reports.OutputDir)
	exporter.Written = func(paths []string) {
		for _, p := range paths {
			printSuccess(fmt.Sprintf("Report saved to: %s", p), ro.noColor)
		}
	}

	return reporting.Chain(console, exporter), nil
}

func (ro *RunOrchestrator) enabledChannels() []string {
	channels := []string{delivery.ChannelMessaging}
	if ro.config.Channels.Storage {
		channels = append(channels, delivery.ChannelStorage)
	}
	if ro.config.Channels.Form {
		channels = append(channels, delivery.ChannelForm)
	}
	if ro.config.Channels.Socket {
		channels = append(channels, delivery.ChannelSocket)
	}
	return channels
}

// printSummary prints a one-line outcome after a run
func (ro *RunOrchestrator) printSummary(summary *delivery.RunSummary) {
	if summary == nil {
		return
	}
	sent, failed := summary.Counts()
	msg := fmt.Sprintf("Run %s finished: %d sent, %d errors", summary.RunID, sent, failed)
	if failed > 0 {
		printWarning(msg, ro.noColor)
		return
	}
	printSuccess(msg, ro.noColor)
}

func channelList(channels []string) string {
	return strings.Join(channels, ", ")
}
