package delivery

import (
	"time"
)

// TimestampLayout renders result timestamps as ISO-8601 with millisecond precision
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Defaults of a run
const (
	DefaultTargetURL         = "https://test.lab/"
	DefaultTargetName        = "jsonInjectionTarget"
	DefaultVulnerableParam   = "data"
	DefaultInitialDelay      = 3 * time.Second
	DefaultPayloadDelay      = 3 * time.Second
	DefaultFinalDelay        = 15 * time.Second
	DefaultFormSubmitDelay   = 500 * time.Millisecond
	DefaultTargetOrigin      = "*"
	DefaultStorageKey        = "test_json_injection"
	DefaultSocketPath        = "websocket"
	DefaultBackgroundTimeout = 10 * time.Second
)

// Settings is the read-only configuration of a single run
type Settings struct {
	// Target identification
	TargetURL       string `json:"target_url"`
	TargetName      string `json:"target_name"`
	VulnerableParam string `json:"vulnerable_param"`

	// Fixed pacing
	InitialDelay time.Duration `json:"initial_delay"`
	PayloadDelay time.Duration `json:"payload_delay"`
	FinalDelay   time.Duration `json:"final_delay"`

	// Channel parameters
	FormSubmitDelay   time.Duration `json:"form_submit_delay"`
	TargetOrigin      string        `json:"target_origin"`
	StorageKey        string        `json:"storage_key"`
	SocketEndpoint    string        `json:"socket_endpoint"`
	BackgroundTimeout time.Duration `json:"background_timeout"`
}

// DefaultSettings returns the settings used when nothing is overridden
func DefaultSettings() Settings {
	return Settings{
		TargetURL:         DefaultTargetURL,
		TargetName:        DefaultTargetName,
		VulnerableParam:   DefaultVulnerableParam,
		InitialDelay:      DefaultInitialDelay,
		PayloadDelay:      DefaultPayloadDelay,
		FinalDelay:        DefaultFinalDelay,
		FormSubmitDelay:   DefaultFormSubmitDelay,
		TargetOrigin:      DefaultTargetOrigin,
		StorageKey:        DefaultStorageKey,
		BackgroundTimeout: DefaultBackgroundTimeout,
	}
}

// Option overrides a field of Settings before a run starts
type Option func(*Settings)

// WithTargetName sets the name of the target browsing context
func WithTargetName(name string) Option {
	return func(s *Settings) { s.TargetName = name }
}

// WithDelays sets the three fixed run delays
func WithDelays(initial, payload, final time.Duration) Option {
	return func(s *Settings) {
		s.InitialDelay = initial
		s.PayloadDelay = payload
		s.FinalDelay = final
	}
}

// WithSocketEndpoint overrides the derived socket endpoint
func WithSocketEndpoint(endpoint string) Option {
	return func(s *Settings) { s.SocketEndpoint = endpoint }
}

// Status of a delivery attempt
type Status string

const (
	StatusSent  Status = "sent"
	StatusError Status = "error"
)

// DeliveryResult records the outcome of one catalog case
type DeliveryResult struct {
	Name      string `json:"name"`
	Payload   string `json:"payload"`
	Timestamp string `json:"timestamp"`
	Status    Status `json:"status"`
	Error     string `json:"error,omitempty"`
}

// RunSummary is handed to the reporter once dispatch has finished
type RunSummary struct {
	RunID      string           `json:"run_id"`
	Target     string           `json:"target"`
	TargetName string           `json:"target_name"`
	Param      string           `json:"vulnerable_param"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Results    []DeliveryResult `json:"results"`
}

// Counts returns the number of sent and errored results
func (s *RunSummary) Counts() (sent, failed int) {
	for _, r := range s.Results {
		if r.Status == StatusError {
			failed++
		} else {
			sent++
		}
	}
	return sent, failed
}

// HiddenForm describes the form built by the form channel
type HiddenForm struct {
	Method string
	Action string
	Target string
	Field  string
	Value  string
}

// State of the orchestrator
type State int

const (
	StateIdle State = iota
	StateInitializing
	StateAwaitingSettle
	StateDispatching
	StateAwaitingFinal
	StateReporting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateAwaitingSettle:
		return "awaiting_settle"
	case StateDispatching:
		return "dispatching"
	case StateAwaitingFinal:
		return "awaiting_final"
	case StateReporting:
		return "reporting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
