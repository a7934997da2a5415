package config

import (
	"time"

	"github.com/ajkula/jsonraven/pkg/delivery"
	"github.com/ajkula/jsonraven/pkg/payloads"
	"github.com/ajkula/jsonraven/pkg/storage"
)

// CreateDefaultConfig creates the complete default configuration
func CreateDefaultConfig() *Config {
	return &Config{
		Engine:   createDefaultEngineConfig(),
		Target:   createDefaultTargetConfig(),
		Timing:   createDefaultTimingConfig(),
		Channels: createDefaultChannelsConfig(),
		Browser:  createDefaultBrowserConfig(),
		Storage:  storage.Config{Driver: "memory"},
		Reports:  createDefaultReportsConfig(),
		Output:   createDefaultOutputConfig(),
		Logging:  createDefaultLoggingConfig(),
	}
}

func createDefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Backend:    "http",
		Timeout:    10 * time.Second,
		RateLimit:  0,
		MaxRetries: 0,
		RetryDelay: 1 * time.Second,
	}
}

func createDefaultTargetConfig() TargetConfig {
	return TargetConfig{
		Name:            "Lab Target",
		Description:     "Authorized JSON injection test target",
		URL:             delivery.DefaultTargetURL,
		WindowName:      delivery.DefaultTargetName,
		VulnerableParam: payloads.DefaultParam,
		Headers:         make(map[string]string),
		Auth: AuthConfig{
			Type: "none",
		},
		TLS: TLSConfig{
			InsecureSkipVerify: true,
		},
	}
}

func createDefaultTimingConfig() TimingConfig {
	return TimingConfig{
		InitialDelay:      delivery.DefaultInitialDelay,
		PayloadDelay:      delivery.DefaultPayloadDelay,
		FinalDelay:        delivery.DefaultFinalDelay,
		FormSubmitDelay:   delivery.DefaultFormSubmitDelay,
		BackgroundTimeout: delivery.DefaultBackgroundTimeout,
	}
}

func createDefaultChannelsConfig() ChannelsConfig {
	return ChannelsConfig{
		TargetOrigin: delivery.DefaultTargetOrigin,
		Storage:      true,
		StorageKey:   delivery.DefaultStorageKey,
		Form:         true,
		Socket:       true,
		SocketPath:   delivery.DefaultSocketPath,
	}
}

func createDefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless: true,
	}
}

func createDefaultReportsConfig() ReportsConfig {
	return ReportsConfig{
		Formats:    []string{"json", "txt"},
		OutputDir:  "./reports",
		AutoExport: true,
	}
}

func createDefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Colors:     true,
		ShowBanner: true,
	}
}

func createDefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level: "info",
	}
}
