package reporting

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ajkula/jsonraven/pkg/delivery"
	"github.com/ajkula/jsonraven/pkg/payloads"
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

// errorColumnWidth bounds the error column of the results table
const errorColumnWidth = 60

// Console prints the result table followed by the verification checklist
type Console struct {
	out    io.Writer
	colors bool
}

// NewConsole creates a console reporter; a nil writer means stdout
func NewConsole(out io.Writer, colors bool) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out, colors: colors}
}

// Report implements delivery.Reporter
func (c *Console) Report(_ context.Context, summary delivery.RunSummary) error {
	var sb strings.Builder

	sb.WriteString(c.paint(ColorGreen+ColorBold, "JSON Injection Test Complete!") + "\n\n")
	sb.WriteString(c.paint(ColorBlue+ColorBold, "Test Summary:") + "\n")

	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tSTATUS\tTIMESTAMP\tERROR")
	for i, r := range summary.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i, r.Name, c.status(r.Status), r.Timestamp,
			payloads.Truncate(r.Error, errorColumnWidth))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	sent, failed := summary.Counts()
	fmt.Fprintf(&sb, "\nSent: %d  Errors: %d  Run: %s\n\n", sent, failed, summary.RunID)

	sb.WriteString(c.paint(ColorYellow+ColorBold, "Manual Verification Steps:") + "\n")
	for i, step := range VerificationSteps {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
	}
	sb.WriteString("\n")

	sb.WriteString(c.paint(ColorBlue+ColorBold, "Remediation Recommendations:") + "\n")
	for _, rec := range Recommendations {
		fmt.Fprintf(&sb, "• %s\n", rec)
	}

	_, err := io.WriteString(c.out, sb.String())
	return err
}

func (c *Console) status(s delivery.Status) string {
	if !c.colors {
		return string(s)
	}
	// tabwriter counts escape bytes, so both colors must have the same width
	if s == delivery.StatusError {
		return ColorRed + string(s) + ColorReset
	}
	return ColorGreen + string(s) + ColorReset
}

func (c *Console) paint(color, text string) string {
	if !c.colors {
		return text
	}
	return color + text + ColorReset
}
