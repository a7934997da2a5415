package report

import (
	"context"
	"fmt"

	"github.com/ajkula/jsonraven/pkg/config"
	"github.com/ajkula/jsonraven/pkg/delivery"
	"github.com/ajkula/jsonraven/pkg/reporting"
)

// ReportOrchestrator coordinates the report generation process
type ReportOrchestrator struct {
	loader    *RunSummaryLoader
	validator *RunSummaryValidator
	display   *ConsoleDisplay
	formatter *ConsoleFormatter
}

// NewReportOrchestrator creates a new report orchestrator
func NewReportOrchestrator(
	loader *RunSummaryLoader,
	validator *RunSummaryValidator,
	display *ConsoleDisplay,
	formatter *ConsoleFormatter,
) *ReportOrchestrator {
	return &ReportOrchestrator{
		loader:    loader,
		validator: validator,
		display:   display,
		formatter: formatter,
	}
}

// GenerateReports orchestrates the complete report generation process.
// With console set, each run is also printed as a result table.
func (o *ReportOrchestrator) GenerateReports(
	ctx context.Context,
	inputPath string,
	reportsConfig *config.ReportsConfig,
	console bool,
	verbose bool,
) error {
	o.formatter.PrintInfo("Loading run results...")
	summaries, err := o.loader.LoadRunSummaries(inputPath)
	if err != nil {
		return fmt.Errorf("failed to load run results: %w", err)
	}

	if verbose {
		o.formatter.PrintInfo(fmt.Sprintf("Loaded %d run(s)", len(summaries)))
	}

	if err := o.validator.ValidateRunSummaries(summaries); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	generator, err := reporting.NewReportGenerator(reportsConfig)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	generated := 0
	for i, summary := range summaries {
		o.display.DisplayGenerationProgress(summary.RunID, i+1, len(summaries))

		if console {
			table := reporting.NewConsole(o.formatter.Writer(), o.formatter.Colors())
			if err := table.Report(ctx, summary); err != nil {
				o.formatter.PrintWarning(fmt.Sprintf("Failed to print run %s: %v", summary.RunID, err))
			}
		}

		paths, err := o.generateSingleReport(generator, summary, reportsConfig.OutputDir, verbose)
		if err != nil {
			o.display.DisplayGenerationError(summary.RunID, err)
			continue
		}

		generated++
		o.display.DisplayGenerationSuccess(summary.RunID, paths)
	}

	o.display.DisplaySummary(generated, len(summaries), reportsConfig.OutputDir, reportsConfig.Formats)

	if generated == 0 {
		return fmt.Errorf("no report could be generated")
	}
	return nil
}

// generateSingleReport exports one run in every requested format
func (o *ReportOrchestrator) generateSingleReport(
	generator *reporting.ReportGenerator,
	summary delivery.RunSummary,
	outputDir string,
	verbose bool,
) ([]string, error) {
	reportData := generator.GenerateReport(summary)

	if verbose {
		o.display.DisplayReportSummary(reportData)
		o.formatter.PrintInfo("Exporting report files...")
	}

	paths, err := generator.ExportReport(reportData, outputDir)
	if err != nil {
		return paths, fmt.Errorf("failed to export report: %w", err)
	}

	return paths, nil
}

// CreateReportsConfig creates reports configuration from CLI parameters
func (o *ReportOrchestrator) CreateReportsConfig(formats []string, outputDir string) *config.ReportsConfig {
	return &config.ReportsConfig{
		Formats:   formats,
		OutputDir: outputDir,
	}
}
