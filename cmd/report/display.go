package report

import (
	"fmt"
	"strings"

	"github.com/ajkula/jsonraven/pkg/payloads"
	"github.com/ajkula/jsonraven/pkg/reporting"
)

// ConsoleDisplay handles all console display operations
type ConsoleDisplay struct {
	formatter *ConsoleFormatter
}

// NewConsoleDisplay creates a new console display handler
func NewConsoleDisplay(formatter *ConsoleFormatter) *ConsoleDisplay {
	return &ConsoleDisplay{
		formatter: formatter,
	}
}

// DisplayReportSummary shows a summary of the generated report
func (d *ConsoleDisplay) DisplayReportSummary(reportData *reporting.ReportData) {
	out := d.formatter.Writer()
	s := reportData.Summary

	fmt.Fprintln(out)
	d.formatter.PrintSectionHeader("RUN SUMMARY")

	fmt.Fprintf(out, "Target: %s\n", s.Target)
	if s.TargetName != "" {
		fmt.Fprintf(out, "Window: %s\n", s.TargetName)
	}
	if s.Param != "" {
		fmt.Fprintf(out, "Parameter: %s\n", s.Param)
	}
	fmt.Fprintf(out, "Cases: %d (sent %d, errors %d)\n", len(s.Results), reportData.Sent, reportData.Failed)
	if reportData.Duration > 0 {
		fmt.Fprintf(out, "Duration: %s\n", reportData.Duration)
	}

	for _, r := range s.Results {
		if r.Error == "" {
			continue
		}
		d.formatter.PrintWarning(fmt.Sprintf("  %s: %s", r.Name, payloads.Truncate(r.Error, payloads.PreviewLength)))
	}

	fmt.Fprintf(out, "Verification steps: %d\n", len(reportData.VerificationSteps))
	fmt.Fprintln(out)
}

// DisplayGenerationProgress shows progress information during report generation
func (d *ConsoleDisplay) DisplayGenerationProgress(runID string, current, total int) {
	d.formatter.PrintInfo(fmt.Sprintf("Generating report for run %s (%d/%d)...",
		runID, current, total))
}

// DisplayGenerationSuccess shows successful report generation
func (d *ConsoleDisplay) DisplayGenerationSuccess(runID string, paths []string) {
	d.formatter.PrintSuccess(fmt.Sprintf("Report generated for run %s", runID))
	for _, p := range paths {
		fmt.Fprintf(d.formatter.Writer(), "  %s\n", p)
	}
}

// DisplayGenerationError shows report generation error
func (d *ConsoleDisplay) DisplayGenerationError(runID string, err error) {
	d.formatter.PrintError(fmt.Sprintf("Failed to generate report for run %s: %v",
		runID, err))
}

// DisplaySummary displays the final summary of report generation
func (d *ConsoleDisplay) DisplaySummary(generated, total int, outputDir string, formats []string) {
	out := d.formatter.Writer()
	d.formatter.PrintSectionHeader("REPORT GENERATION SUMMARY")
	fmt.Fprintf(out, "Runs processed: %d/%d\n", generated, total)
	fmt.Fprintf(out, "Output directory: %s\n", outputDir)
	fmt.Fprintf(out, "Formats generated: %s\n", strings.Join(formats, ", "))
	if generated < total {
		d.formatter.PrintWarning("Some reports could not be generated")
		return
	}
	d.formatter.PrintSuccess("Report generation completed successfully!")
}
