// Package reporting presents and exports the results of jsonraven runs
package reporting

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	"github.com/ajkula/jsonraven/pkg/config"
	"github.com/ajkula/jsonraven/pkg/delivery"
)

// Version is stamped on every exported report
const Version = "1.0.0"

// ReportGenerator handles the generation of run reports
type ReportGenerator struct {
	config   *config.ReportsConfig
	template *template.Template
}

// ReportData represents the data structure for report generation
type ReportData struct {
	// Meta information
	GeneratedAt      time.Time `json:"generated_at"`
	JSONRavenVersion string    `json:"jsonraven_version"`

	// Run data
	Summary  delivery.RunSummary `json:"summary"`
	Sent     int                 `json:"sent"`
	Failed   int                 `json:"failed"`
	Duration time.Duration       `json:"duration"`

	// Manual follow-up
	VerificationSteps []string `json:"verification_steps"`
	Recommendations   []string `json:"recommendations"`
}

// NewReportGenerator creates a new report generator instance
func NewReportGenerator(reportsConfig *config.ReportsConfig) (*ReportGenerator, error) {
	generator := &ReportGenerator{
		config: reportsConfig,
	}

	if err := generator.initializeTemplate(); err != nil {
		return nil, fmt.Errorf("failed to initialize template: %w", err)
	}

	return generator, nil
}

// GenerateReport builds the report for one run
func (rg *ReportGenerator) GenerateReport(summary delivery.RunSummary) *ReportData {
	sent, failed := summary.Counts()
	return &ReportData{
		GeneratedAt:       time.Now(),
		JSONRavenVersion:  Version,
		Summary:           summary,
		Sent:              sent,
		Failed:            failed,
		Duration:          summary.FinishedAt.Sub(summary.StartedAt),
		VerificationSteps: VerificationSteps,
		Recommendations:   Recommendations,
	}
}

// ExportReport exports the report in the configured formats and returns the written paths
func (rg *ReportGenerator) ExportReport(reportData *ReportData, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	runID := reportData.Summary.RunID
	var written []string

	for _, format := range rg.config.Formats {
		var path string
		var err error

		switch strings.ToLower(format) {
		case "json":
			path, err = rg.exportJSON(reportData, outputDir, runID)
		case "html":
			path, err = rg.exportHTML(reportData, outputDir, runID)
		case "txt":
			path, err = rg.exportText(reportData, outputDir, runID)
		default:
			return written, fmt.Errorf("unsupported export format: %s", format)
		}
		if err != nil {
			return written, fmt.Errorf("failed to export %s: %w", format, err)
		}
		written = append(written, path)
	}

	return written, nil
}

// Exporter is a delivery.Reporter that writes the configured report files
type Exporter struct {
	generator *ReportGenerator
	outputDir string

	// Written receives the exported paths of each run
	Written func(paths []string)
}

// NewExporter creates an exporter writing into outputDir
func NewExporter(generator *ReportGenerator, outputDir string) *Exporter {
	return &Exporter{generator: generator, outputDir: outputDir}
}

// Report implements delivery.Reporter
func (e *Exporter) Report(_ context.Context, summary delivery.RunSummary) error {
	paths, err := e.generator.ExportReport(e.generator.GenerateReport(summary), e.outputDir)
	if e.Written != nil && len(paths) > 0 {
		e.Written(paths)
	}
	return err
}

// Chain reports to every reporter in order, attempting all of them
func Chain(reporters ...delivery.Reporter) delivery.Reporter {
	return chain(reporters)
}

type chain []delivery.Reporter

func (c chain) Report(ctx context.Context, summary delivery.RunSummary) error {
	var errs []error
	for _, r := range c {
		if r == nil {
			continue
		}
		if err := r.Report(ctx, summary); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
