package reporting

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ajkula/jsonraven/pkg/config"
	"github.com/ajkula/jsonraven/pkg/delivery"
)

func sampleSummary() delivery.RunSummary {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return delivery.RunSummary{
		RunID:      "run-1",
		Target:     "https://test.lab/",
		TargetName: "jsonInjectionTarget",
		Param:      "data",
		StartedAt:  start,
		FinishedAt: start.Add(36 * time.Second),
		Results: []delivery.DeliveryResult{
			{Name: "JSON Structure Break", Payload: `{"data": "valid"}`, Timestamp: "2024-05-01T12:00:03.000Z", Status: delivery.StatusSent},
			{Name: "Prototype Pollution", Payload: `{"__proto__": {"isHacked": true}}`, Timestamp: "2024-05-01T12:00:06.000Z", Status: delivery.StatusError, Error: "target window is closed"},
		},
	}
}

func TestConsoleReport(t *testing.T) {
	var buf bytes.Buffer
	if err := NewConsole(&buf, false).Report(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("Report: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"JSON Injection Test Complete!",
		"Prototype Pollution",
		"target window is closed",
		"Sent: 1  Errors: 1",
		"4. Check for prototype pollution: Object.prototype.isHacked",
		"• Avoid eval() and Function() constructors",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("console output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Fatal("colors disabled but escape codes found")
	}
}

func TestGuidanceHasFiveEntries(t *testing.T) {
	if len(VerificationSteps) != 5 || len(Recommendations) != 5 {
		t.Fatalf("expected 5 steps and 5 recommendations, got %d/%d", len(VerificationSteps), len(Recommendations))
	}
}

func TestExportAndLoad(t *testing.T) {
	dir := t.TempDir()
	gen, err := NewReportGenerator(&config.ReportsConfig{Formats: []string{"json", "txt", "html"}, OutputDir: dir})
	if err != nil {
		t.Fatalf("NewReportGenerator: %v", err)
	}

	data := gen.GenerateReport(sampleSummary())
	if data.Sent != 1 || data.Failed != 1 || data.Duration != 36*time.Second {
		t.Fatalf("unexpected report data: %+v", data)
	}

	paths, err := gen.ExportReport(data, dir)
	if err != nil {
		t.Fatalf("ExportReport: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 files, got %v", paths)
	}
	for _, ext := range []string{"json", "txt", "html"} {
		if _, err := os.Stat(filepath.Join(dir, "jsonraven_report_run-1."+ext)); err != nil {
			t.Fatalf("missing %s export: %v", ext, err)
		}
	}

	html, _ := os.ReadFile(filepath.Join(dir, "jsonraven_report_run-1.html"))
	if !strings.Contains(string(html), "status-error") || !strings.Contains(string(html), "__proto__") {
		t.Fatal("html report is missing results")
	}

	summaries, err := LoadSummaries(dir)
	if err != nil {
		t.Fatalf("LoadSummaries: %v", err)
	}
	if len(summaries) != 1 || summaries[0].RunID != "run-1" || len(summaries[0].Results) != 2 {
		t.Fatalf("unexpected summaries: %+v", summaries)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	gen, err := NewReportGenerator(&config.ReportsConfig{Formats: []string{"pdf"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := gen.ExportReport(gen.GenerateReport(sampleSummary()), t.TempDir()); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestFailedHTMLExportLeavesNoFile(t *testing.T) {
	gen, err := NewReportGenerator(&config.ReportsConfig{Formats: []string{"html"}})
	if err != nil {
		t.Fatal(err)
	}
	gen.template = template.Must(template.New("broken").Parse(`<p>{{.Missing}}</p>`))

	dir := t.TempDir()
	paths, err := gen.ExportReport(gen.GenerateReport(sampleSummary()), dir)
	if err == nil {
		t.Fatal("expected template error")
	}
	if len(paths) != 0 {
		t.Fatalf("no path may be reported for a failed export: %v", paths)
	}
	if _, err := os.Stat(filepath.Join(dir, "jsonraven_report_run-1.html")); !os.IsNotExist(err) {
		t.Fatalf("partial HTML file left behind: %v", err)
	}
}

func TestLoadBareSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	data := `{"run_id":"bare","target":"https://test.lab/","results":[{"name":"x","payload":"y","timestamp":"t","status":"sent"}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	summaries, err := LoadSummaries(path)
	if err != nil {
		t.Fatalf("LoadSummaries: %v", err)
	}
	if summaries[0].RunID != "bare" || summaries[0].Results[0].Status != delivery.StatusSent {
		t.Fatalf("unexpected summary: %+v", summaries[0])
	}
}

func TestLoadRejectsForeignJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.json")
	if err := os.WriteFile(path, []byte(`{"hello":"world"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSummaries(path); err == nil {
		t.Fatal("expected error for non-run JSON")
	}
}

type failingReporter struct{ calls int }

func (f *failingReporter) Report(context.Context, delivery.RunSummary) error {
	f.calls++
	return errors.New("boom")
}

func TestChainAttemptsAllReporters(t *testing.T) {
	first, second := &failingReporter{}, &failingReporter{}
	err := Chain(first, nil, second).Report(context.Background(), sampleSummary())
	if err == nil {
		t.Fatal("expected joined error")
	}
	if first.calls != 1 || second.calls != 1 {
		t.Fatalf("every reporter should run: %d %d", first.calls, second.calls)
	}
}

func TestExporterReportsWrittenPaths(t *testing.T) {
	dir := t.TempDir()
	gen, err := NewReportGenerator(&config.ReportsConfig{Formats: []string{"json"}, OutputDir: dir})
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	exp := NewExporter(gen, dir)
	exp.Written = func(paths []string) { got = paths }

	if err := exp.Report(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(got) != 1 || !strings.HasSuffix(got[0], "jsonraven_report_run-1.json") {
		t.Fatalf("unexpected written paths %v", got)
	}
}
