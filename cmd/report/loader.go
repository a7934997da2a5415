package report

import (
	"fmt"

	"github.com/ajkula/jsonraven/pkg/delivery"
	"github.com/ajkula/jsonraven/pkg/reporting"
)

// RunSummaryLoader handles loading saved runs from files
type RunSummaryLoader struct {
	formatter *ConsoleFormatter
}

// NewRunSummaryLoader creates a new run summary loader
func NewRunSummaryLoader(formatter *ConsoleFormatter) *RunSummaryLoader {
	return &RunSummaryLoader{
		formatter: formatter,
	}
}

// LoadRunSummaries loads runs from a file or directory.
// Inside a directory, unreadable files are skipped with a warning.
func (l *RunSummaryLoader) LoadRunSummaries(inputPath string) ([]delivery.RunSummary, error) {
	files, err := reporting.SummaryFiles(inputPath)
	if err != nil {
		return nil, err
	}

	// a single explicit file must load
	if len(files) == 1 && files[0] == inputPath {
		return reporting.LoadSummaries(inputPath)
	}

	var summaries []delivery.RunSummary
	for _, file := range files {
		summary, err := reporting.LoadSummary(file)
		if err != nil {
			l.formatter.PrintWarning(fmt.Sprintf("Skipping %s: %v", file, err))
			continue
		}
		summaries = append(summaries, summary)
	}

	if len(summaries) == 0 {
		return nil, fmt.Errorf("no valid run results found in %s", inputPath)
	}

	return summaries, nil
}
