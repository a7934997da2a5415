package run

import (
	"fmt"

	"github.com/ajkula/jsonraven/pkg/config"
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

func printSectionHeader(title string, noColor bool) {
	if noColor {
		fmt.Printf("\n=== %s ===\n\n", title)
	} else {
		fmt.Printf("\n%s%s=== %s ===%s\n\n", ColorCyan, ColorBold, title, ColorReset)
	}
}

func printTarget(target config.TargetConfig, backend string, noColor bool) {
	printSectionHeader("TARGET", noColor)
	fmt.Printf("Name: %s\n", target.Name)
	fmt.Printf("URL: %s\n", target.URL)
	fmt.Printf("Window: %s\n", target.WindowName)
	fmt.Printf("Parameter: %s\n", target.VulnerableParam)
	fmt.Printf("Backend: %s\n", backend)
	fmt.Println()
}

func printSuccess(message string, noColor bool) {
	color := ""
	if !noColor {
		color = ColorGreen + ColorBold
	}
	fmt.Printf("%s[SUCCESS] %s%s\n", color, message, ColorReset)
}

func printInfo(message string, noColor bool) {
	color := ""
	if !noColor {
		color = ColorBlue
	}
	fmt.Printf("%s[INFO] %s%s\n", color, message, ColorReset)
}

func printWarning(message string, noColor bool) {
	color := ""
	if !noColor {
		color = ColorYellow
	}
	fmt.Printf("%s[WARNING] %s%s\n", color, message, ColorReset)
}
