package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ajkula/jsonraven/pkg/delivery"
)

// SummaryFiles resolves path to the files holding saved runs: the file itself,
// or every *.json file of a directory in lexical order.
func SummaryFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	files, err := filepath.Glob(filepath.Join(path, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no JSON results found in %s", path)
	}
	sort.Strings(files)
	return files, nil
}

// LoadSummaries reads saved runs from a JSON file or from every *.json file in a directory.
// Any unreadable file fails the whole load.
func LoadSummaries(path string) ([]delivery.RunSummary, error) {
	files, err := SummaryFiles(path)
	if err != nil {
		return nil, err
	}

	summaries := make([]delivery.RunSummary, 0, len(files))
	for _, f := range files {
		s, err := LoadSummary(f)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// LoadSummary reads one saved run. Both exported reports and bare run summaries are accepted.
func LoadSummary(path string) (delivery.RunSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return delivery.RunSummary{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var report ReportData
	if err := json.Unmarshal(data, &report); err != nil {
		return delivery.RunSummary{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if report.Summary.RunID != "" {
		return report.Summary, nil
	}

	var summary delivery.RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return delivery.RunSummary{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if summary.RunID == "" {
		return delivery.RunSummary{}, fmt.Errorf("%s does not contain a jsonraven run", path)
	}
	return summary, nil
}
