package report

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the report generation command (CLI entry point)
func Execute(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputDir, _ := cmd.Flags().GetString("output")
	formats, _ := cmd.Flags().GetStringSlice("format")
	console, _ := cmd.Flags().GetBool("console")
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	noColor, _ := cmd.Root().PersistentFlags().GetBool("no-color")

	if inputPath == "" {
		return fmt.Errorf("input file or directory is required")
	}

	formatter := NewConsoleFormatter(cmd.OutOrStdout(), cmd.ErrOrStderr(), noColor)
	loader := NewRunSummaryLoader(formatter)
	validator := NewRunSummaryValidator()
	display := NewConsoleDisplay(formatter)
	orchestrator := NewReportOrchestrator(loader, validator, display, formatter)

	reportsConfig := orchestrator.CreateReportsConfig(formats, outputDir)

	return orchestrator.GenerateReports(cmd.Context(), inputPath, reportsConfig, console, verbose)
}
