package config

import (
	"time"

	"github.com/ajkula/jsonraven/pkg/storage"
)

// Config represents the main jsonraven configuration
type Config struct {
	// Core engine settings
	Engine EngineConfig `yaml:"engine" json:"engine"`

	// Target configuration
	Target TargetConfig `yaml:"target" json:"target"`

	// Run pacing
	Timing TimingConfig `yaml:"timing" json:"timing"`

	// Delivery channels
	Channels ChannelsConfig `yaml:"channels" json:"channels"`

	// Browser backend
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Headless local storage sink
	Storage storage.Config `yaml:"storage" json:"storage"`

	// Reporting configuration
	Reports ReportsConfig `yaml:"reports" json:"reports"`

	// Output and UI configuration
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Repeated runs
	Schedule ScheduleConfig `yaml:"schedule" json:"schedule"`
}

// EngineConfig defines the core engine behavior
type EngineConfig struct {
	// Delivery backend (http, browser)
	Backend string `yaml:"backend" json:"backend"`

	// Timeout for individual HTTP operations
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// Request rate limiting (requests per second, 0 = unlimited)
	RateLimit int `yaml:"rate_limit" json:"rate_limit"`

	// Retry configuration
	MaxRetries int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay" json:"retry_delay"`
}

// TargetConfig defines the target system configuration
type TargetConfig struct {
	// Target identification
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`

	// Connection details
	URL     string            `yaml:"url" json:"url"`
	Headers map[string]string `yaml:"headers" json:"headers"`

	// Name of the browsing context opened on the target
	WindowName string `yaml:"window_name" json:"window_name"`

	// JSON key / form field under test
	VulnerableParam string `yaml:"vulnerable_param" json:"vulnerable_param"`

	// Authentication
	Auth AuthConfig `yaml:"auth" json:"auth"`

	// TLS configuration
	TLS TLSConfig `yaml:"tls" json:"tls"`
}

// AuthConfig defines authentication parameters
type AuthConfig struct {
	// Authentication type (none, basic, bearer, custom)
	Type string `yaml:"type" json:"type"`

	// Credentials for basic auth
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`

	// Token for bearer auth
	Token string `yaml:"token" json:"token"`

	// Custom authentication headers
	CustomHeaders map[string]string `yaml:"custom_headers" json:"custom_headers"`
}

// TLSConfig defines TLS client parameters
type TLSConfig struct {
	// Skip certificate verification for lab targets
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" json:"insecure_skip_verify"`
}

// TimingConfig defines the fixed delays of a run
type TimingConfig struct {
	InitialDelay      time.Duration `yaml:"initial_delay" json:"initial_delay"`
	PayloadDelay      time.Duration `yaml:"payload_delay" json:"payload_delay"`
	FinalDelay        time.Duration `yaml:"final_delay" json:"final_delay"`
	FormSubmitDelay   time.Duration `yaml:"form_submit_delay" json:"form_submit_delay"`
	BackgroundTimeout time.Duration `yaml:"background_timeout" json:"background_timeout"`
}

// ChannelsConfig toggles and parameterizes the best-effort channels.
// The messaging channel is always on.
type ChannelsConfig struct {
	TargetOrigin string `yaml:"target_origin" json:"target_origin"`

	Storage    bool   `yaml:"storage" json:"storage"`
	StorageKey string `yaml:"storage_key" json:"storage_key"`

	Form bool `yaml:"form" json:"form"`

	Socket         bool   `yaml:"socket" json:"socket"`
	SocketEndpoint string `yaml:"socket_endpoint" json:"socket_endpoint"` // empty = derived from target URL
	SocketPath     string `yaml:"socket_path" json:"socket_path"`
}

// BrowserConfig defines the go-rod backend
type BrowserConfig struct {
	// Existing DevTools endpoint; a local browser is launched when empty
	ControlURL string `yaml:"control_url" json:"control_url"`

	// Browser binary, auto-detected when empty
	Bin string `yaml:"bin" json:"bin"`

	Headless  bool `yaml:"headless" json:"headless"`
	NoSandbox bool `yaml:"no_sandbox" json:"no_sandbox"`

	// Page hosting the harness; window.open and forms originate here.
	// Empty means the target's origin.
	OriginURL string `yaml:"origin_url" json:"origin_url"`
}

// ReportsConfig defines reporting configuration
type ReportsConfig struct {
	// Output formats to generate (json, html, txt)
	Formats []string `yaml:"formats" json:"formats"`

	// Output directory for reports
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// Export after every run
	AutoExport bool `yaml:"auto_export" json:"auto_export"`
}

// OutputConfig defines output and UI configuration
type OutputConfig struct {
	// Enable colored output
	Colors bool `yaml:"colors" json:"colors"`

	// Show ASCII art banner
	ShowBanner bool `yaml:"show_banner" json:"show_banner"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level"`

	// Log output file (JSON lines)
	OutputFile string `yaml:"output_file" json:"output_file"`
}

// ScheduleConfig repeats runs on a cron spec
type ScheduleConfig struct {
	// Cron spec with seconds omitted, or a descriptor like "@every 10m"
	Spec string `yaml:"spec" json:"spec"`

	// Stop after this many runs (0 = until interrupted)
	MaxRuns int `yaml:"max_runs" json:"max_runs"`
}
