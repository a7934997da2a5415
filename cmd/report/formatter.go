package report

import (
	"fmt"
	"io"
)

// Colors for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

// ConsoleFormatter handles all terminal output formatting
type ConsoleFormatter struct {
	noColor bool
	out     io.Writer
	errOut  io.Writer
}

// NewConsoleFormatter creates a formatter; errors go to errOut
func NewConsoleFormatter(out, errOut io.Writer, noColor bool) *ConsoleFormatter {
	return &ConsoleFormatter{noColor: noColor, out: out, errOut: errOut}
}

// Writer returns the standard output destination
func (f *ConsoleFormatter) Writer() io.Writer { return f.out }

// Colors reports whether ANSI colors are enabled
func (f *ConsoleFormatter) Colors() bool { return !f.noColor }

// PrintSectionHeader prints a formatted section header
func (f *ConsoleFormatter) PrintSectionHeader(title string) {
	if f.noColor {
		fmt.Fprintf(f.out, "\n=== %s ===\n\n", title)
	} else {
		fmt.Fprintf(f.out, "\n%s%s=== %s ===%s\n\n", ColorCyan, ColorBold, title, ColorReset)
	}
}

// PrintError prints an error message with formatting
func (f *ConsoleFormatter) PrintError(message string) {
	f.print(f.errOut, ColorRed+ColorBold, "ERROR", message)
}

// PrintSuccess prints a success message with formatting
func (f *ConsoleFormatter) PrintSuccess(message string) {
	f.print(f.out, ColorGreen+ColorBold, "SUCCESS", message)
}

// PrintInfo prints an info message with formatting
func (f *ConsoleFormatter) PrintInfo(message string) {
	f.print(f.out, ColorBlue, "INFO", message)
}

// PrintWarning prints a warning message with formatting
func (f *ConsoleFormatter) PrintWarning(message string) {
	f.print(f.out, ColorYellow+ColorBold, "WARNING", message)
}

func (f *ConsoleFormatter) print(w io.Writer, color, tag, message string) {
	if f.noColor {
		fmt.Fprintf(w, "[%s] %s\n", tag, message)
		return
	}
	fmt.Fprintf(w, "%s[%s] %s%s\n", color, tag, message, ColorReset)
}
