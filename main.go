package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajkula/jsonraven/cmd/report"
	"github.com/ajkula/jsonraven/cmd/run"
	"github.com/ajkula/jsonraven/pkg/config"
	"github.com/ajkula/jsonraven/pkg/delivery"
)

var (
	// Version information
	Version   = "1.0.0"
	BuildTime = "development"
	GitCommit = "unknown"

	// Global flags
	configFile string
	verbose    bool
	quiet      bool
	noColor    bool
	noBanner   bool
)

const banner = `
     _ ____   ___  _   _ ____      ___     _______ _   _
    | / ___| / _ \| \ | |  _ \    / \ \   / / ____| \ | |
 _  | \___ \| | | |  \| | |_) |  / _ \ \ / /|  _| |  \| |
| |_| |___) | |_| | |\  |  _ <  / ___ \ V / | |___| |\  |
 \___/|____/ \___/|_| \_|_| \_\/_/   \_\_/  |_____|_| \_|

          JSON Injection Payload Delivery Harness
                 Version %s | Build %s
`

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

// configAnnotation marks commands that run without reading a configuration file
const configAnnotation = "config"

// printBanner displays the jsonraven banner
func printBanner() {
	color := ""
	if !noColor {
		color = ColorCyan + ColorBold
	}

	fmt.Printf(color+banner+ColorReset+"\n\n", Version, BuildTime)
}

// printError prints error messages with proper formatting
func printError(err error) {
	color := ""
	if !noColor {
		color = ColorRed + ColorBold
	}
	fmt.Fprintf(os.Stderr, color+"[ERROR] %v"+ColorReset+"\n", err)
}

// printSuccess prints success messages with proper formatting
func printSuccess(message string) {
	color := ""
	if !noColor {
		color = ColorGreen + ColorBold
	}
	fmt.Printf(color+"[SUCCESS] %s"+ColorReset+"\n", message)
}

// printInfo prints info messages with proper formatting
func printInfo(message string) {
	if quiet {
		return
	}
	color := ""
	if !noColor {
		color = ColorBlue
	}
	fmt.Printf(color+"[INFO] %s"+ColorReset+"\n", message)
}

// printWarning prints warning messages with proper formatting
func printWarning(message string) {
	color := ""
	if !noColor {
		color = ColorYellow + ColorBold
	}
	fmt.Printf(color+"[WARNING] %s"+ColorReset+"\n", message)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jsonraven",
	Short: "JSON injection payload delivery harness",
	Long: `jsonraven delivers a fixed catalog of JSON injection payloads to a target
web application through several channels at once and records what was sent.

Channels:
• Cross-window messaging (primary, failures are recorded per case)
• Local storage under a fixed key
• Hidden form POST of the vulnerable parameter
• Short-lived WebSocket message {param: payload}

The tool only delivers payloads. Whether one executed must be verified
manually in the target: console errors, alerts, modified prototypes, network
requests. Use only against applications you are authorized to test.`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if initCfg, _ := cmd.Flags().GetBool("init-config"); initCfg {
			return createDefaultConfig()
		}

		if !needsConfig(cmd) {
			return nil
		}

		used, err := initConfig()
		if err != nil {
			return err
		}

		if bannerEnabled() {
			printBanner()
		}
		if used == "" {
			printWarning("No configuration file found, using defaults")
		} else {
			printInfo(fmt.Sprintf("Using config file: %s", used))
		}
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		if initCfg, _ := cmd.Flags().GetBool("init-config"); initCfg {
			return nil
		}
		return cmd.Help()
	},
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Deliver the payload catalog to the configured target",
	Long: `Run the complete delivery suite against the target from the configuration:
open the target, wait for it to settle, deliver every payload in catalog order
with a fixed pause between cases, wait for late reactions, then report.

With --schedule the suite is repeated on a cron spec until interrupted or
until --max-runs runs have completed.

Example usage:
  jsonraven run --target https://app.lab.local/ --param q
  jsonraven run --backend browser --payload-delay 2s
  jsonraven run --schedule "@every 30m" --max-runs 4`,

	RunE: run.Execute,
}

// quickCmd represents the quick command
var quickCmd = &cobra.Command{
	Use:   "quick <url> [param]",
	Short: "Run the suite once against a URL with default settings",
	Long: `Run the suite once against the given URL. The optional second argument
names the vulnerable parameter (default "data").`,
	Args: cobra.RangeArgs(1, 2),

	RunE: run.ExecuteQuick,
}

// payloadsCmd represents the payloads command
var payloadsCmd = &cobra.Command{
	Use:   "payloads",
	Short: "List the payload catalog",
	Long:  `Print the payload catalog in delivery order without contacting any target.`,

	Annotations: map[string]string{configAnnotation: "none"},

	RunE: run.ExecutePayloads,
}

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate reports from saved runs",
	Long: `Generate reports from previously exported runs.

Supported formats:
• JSON: Machine-readable format for automation
• HTML: Web page with the result table and verification steps
• TXT: Plain text for command-line review`,

	RunE: report.Execute,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Long:  `Display detailed version and build information for jsonraven.`,

	Annotations: map[string]string{configAnnotation: "none"},

	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("jsonraven JSON Injection Harness\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		fmt.Printf("Built with %s\n", runtime.Version())
	},
}

// needsConfig reports whether cmd reads the configuration before running
func needsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[configAnnotation] == "none" {
			return false
		}
		if c.Name() == "help" || c.Name() == "completion" {
			return false
		}
	}
	return true
}

// bannerEnabled combines the banner flags with output.show_banner
func bannerEnabled() bool {
	if noBanner || quiet {
		return false
	}
	return !viper.IsSet("output.show_banner") || viper.GetBool("output.show_banner")
}

// initConfig reads in config file and ENV variables if set.
// It returns the path of the file in use, empty when none was found.
func initConfig() (string, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("jsonraven")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("$HOME/.jsonraven")
	}

	// JSONRAVEN_TARGET_URL overrides target.url
	viper.SetEnvPrefix("JSONRAVEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return "", nil
		}
		return "", fmt.Errorf("error reading config file: %w", err)
	}
	return viper.ConfigFileUsed(), nil
}

// setupCommands configures all CLI commands and flags
func setupCommands() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(quickCmd)
	rootCmd.AddCommand(payloadsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file (default is ./jsonraven.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"quiet output (errors only)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noBanner, "no-banner", false,
		"disable banner display")
	rootCmd.PersistentFlags().Bool("init-config", false,
		"create default configuration file (jsonraven.yaml)")

	// Run command specific flags
	runCmd.Flags().StringP("target", "t", "",
		"target URL")
	runCmd.Flags().StringP("param", "p", "",
		"vulnerable parameter name")
	runCmd.Flags().StringP("backend", "b", "",
		"delivery backend (http, browser)")
	runCmd.Flags().StringP("output", "o", "",
		"output directory for reports")
	runCmd.Flags().DurationP("payload-delay", "d", delivery.DefaultPayloadDelay,
		"pause between payloads")
	runCmd.Flags().StringP("schedule", "s", "",
		"cron spec or descriptor for repeated runs")
	runCmd.Flags().Int("max-runs", 0,
		"stop a scheduled run after this many runs (0 = until interrupted)")

	// Quick command specific flags
	quickCmd.Flags().StringP("backend", "b", "",
		"delivery backend (http, browser)")
	quickCmd.Flags().StringP("output", "o", "",
		"output directory for reports")

	// Payloads command specific flags
	payloadsCmd.Flags().StringP("param", "p", delivery.DefaultVulnerableParam,
		"vulnerable parameter name")
	payloadsCmd.Flags().Bool("full", false,
		"print complete payloads instead of previews")
	payloadsCmd.Flags().Bool("names", false,
		"print payload names only")

	// Report command specific flags
	reportCmd.Flags().StringP("input", "i", "",
		"input file or directory with exported runs")
	reportCmd.Flags().StringP("output", "o", "./reports",
		"output directory for reports")
	reportCmd.Flags().StringSliceP("format", "f", []string{"html"},
		"report formats (json,html,txt)")
	reportCmd.Flags().Bool("console", false,
		"also print each run as a table")
}

// main is the entry point for jsonraven
func main() {
	setupCommands()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		stop()
		os.Exit(1)
	}
}

// createDefaultConfig writes the default configuration file
func createDefaultConfig() error {
	filename := configFile
	if filename == "" {
		filename = config.DefaultConfigFilename
	}

	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("%s already exists", filename)
	}

	if err := config.SaveConfig(config.CreateDefaultConfig(), filename); err != nil {
		return err
	}

	printSuccess(fmt.Sprintf("Default configuration file created: %s", filename))
	printInfo(fmt.Sprintf("Default target: %s", delivery.DefaultTargetURL))
	printInfo("Run 'jsonraven run' to start delivering with defaults")
	printInfo("Or 'jsonraven run --target YOUR_TARGET_URL' for a custom target")

	return nil
}
