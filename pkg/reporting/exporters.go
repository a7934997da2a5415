package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// reportFilename returns jsonraven_report_<runID>.<ext>
func reportFilename(runID, ext string) string {
	return fmt.Sprintf("jsonraven_report_%s.%s", runID, ext)
}

// exportJSON exports the report as a JSON file
func (rg *ReportGenerator) exportJSON(reportData *ReportData, outputDir, runID string) (string, error) {
	path := filepath.Join(outputDir, reportFilename(runID, "json"))

	jsonData, err := json.MarshalIndent(reportData, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report data: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return path, nil
}

// exportHTML exports the report as an HTML file.
// A failed render or flush removes the partial file.
func (rg *ReportGenerator) exportHTML(reportData *ReportData, outputDir, runID string) (_ string, err error) {
	path := filepath.Join(outputDir, reportFilename(runID, "html"))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create HTML file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to write HTML file: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := rg.template.Execute(file, reportData); err != nil {
		return "", fmt.Errorf("failed to execute HTML template: %w", err)
	}

	return path, nil
}

// exportText exports the report as a plain text file
func (rg *ReportGenerator) exportText(reportData *ReportData, outputDir, runID string) (string, error) {
	path := filepath.Join(outputDir, reportFilename(runID, "txt"))

	if err := os.WriteFile(path, []byte(rg.generateTextReport(reportData)), 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// generateTextReport creates a formatted text report
func (rg *ReportGenerator) generateTextReport(reportData *ReportData) string {
	var sb strings.Builder
	summary := reportData.Summary

	// Header
	sb.WriteString("═══════════════════════════════════════════════════════════════════\n")
	sb.WriteString("                            JSONRAVEN                              \n")
	sb.WriteString("                   JSON INJECTION DELIVERY REPORT                  \n")
	sb.WriteString("═══════════════════════════════════════════════════════════════════\n\n")

	sb.WriteString(fmt.Sprintf("Generated: %s\n", reportData.GeneratedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Run ID: %s\n", summary.RunID))
	sb.WriteString(fmt.Sprintf("Target: %s (%s)\n", summary.Target, summary.TargetName))
	sb.WriteString(fmt.Sprintf("Parameter: %s\n", summary.Param))
	sb.WriteString(fmt.Sprintf("Duration: %v\n", reportData.Duration.Round(time.Millisecond)))
	sb.WriteString("\n")

	sb.WriteString("TEST SUMMARY\n")
	sb.WriteString("────────────\n")
	sb.WriteString(fmt.Sprintf("Payloads Delivered: %d\n", reportData.Sent))
	sb.WriteString(fmt.Sprintf("Delivery Errors: %d\n", reportData.Failed))
	sb.WriteString("\n")

	if len(summary.Results) > 0 {
		sb.WriteString("RESULTS\n")
		sb.WriteString("───────\n")
		for i, r := range summary.Results {
			sb.WriteString(fmt.Sprintf("%d. %s [%s]\n", i+1, r.Name, strings.ToUpper(string(r.Status))))
			sb.WriteString(fmt.Sprintf("   Timestamp: %s\n", r.Timestamp))
			sb.WriteString(fmt.Sprintf("   Payload: %s\n", r.Payload))
			if r.Error != "" {
				sb.WriteString(fmt.Sprintf("   Error: %s\n", r.Error))
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("MANUAL VERIFICATION STEPS\n")
	sb.WriteString("─────────────────────────\n")
	for i, step := range reportData.VerificationSteps {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
	}
	sb.WriteString("\n")

	sb.WriteString("REMEDIATION RECOMMENDATIONS\n")
	sb.WriteString("───────────────────────────\n")
	for _, rec := range reportData.Recommendations {
		sb.WriteString(fmt.Sprintf("  • %s\n", rec))
	}
	sb.WriteString("\n")

	// Footer
	sb.WriteString("═══════════════════════════════════════════════════════════════════\n")
	sb.WriteString(fmt.Sprintf("Report generated by jsonraven v%s - Use only on authorized targets\n", reportData.JSONRavenVersion))
	sb.WriteString("═══════════════════════════════════════════════════════════════════\n")

	return sb.String()
}
