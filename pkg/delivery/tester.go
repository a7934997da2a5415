// Package delivery sequences the payload catalog across every delivery channel
package delivery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ajkula/jsonraven/pkg/payloads"
)

// Dependencies are the external collaborators of a run.
// Only Windows is required; missing best-effort sinks disable their channel.
type Dependencies struct {
	Windows  WindowProvider
	Storage  Storage
	Document Document
	Sockets  SocketDialer
	Reporter Reporter
	Clock    Clock
	Logger   *zerolog.Logger
	RunID    string
}

// Tester runs the JSON injection suite against a single target
type Tester struct {
	settings Settings
	deps     Dependencies
	clock    Clock
	log      zerolog.Logger
	runID    string
	channels []Channel

	// Results tracking
	mu          sync.RWMutex
	state       State
	transitions []State
	cursor      int
	results     []DeliveryResult

	background sync.WaitGroup

	done    chan struct{}
	summary *RunSummary
	err     error
}

// NewTester creates a tester for the given settings
func NewTester(settings Settings, deps Dependencies) (*Tester, error) {
	if deps.Windows == nil {
		return nil, fmt.Errorf("window provider is required")
	}
	if settings.TargetURL == "" {
		return nil, fmt.Errorf("target URL is required")
	}
	if settings.TargetName == "" {
		settings.TargetName = DefaultTargetName
	}
	if settings.VulnerableParam == "" {
		settings.VulnerableParam = DefaultVulnerableParam
	}
	if settings.StorageKey == "" {
		settings.StorageKey = DefaultStorageKey
	}
	if settings.TargetOrigin == "" {
		settings.TargetOrigin = DefaultTargetOrigin
	}
	if settings.BackgroundTimeout <= 0 {
		settings.BackgroundTimeout = DefaultBackgroundTimeout
	}
	if settings.SocketEndpoint == "" && deps.Sockets != nil {
		// an underivable endpoint only disables the socket channel
		settings.SocketEndpoint, _ = DeriveSocketEndpoint(settings.TargetURL, DefaultSocketPath)
	}

	clock := deps.Clock
	if clock == nil {
		clock = SystemClock()
	}
	log := zerolog.Nop()
	if deps.Logger != nil {
		log = *deps.Logger
	}
	runID := deps.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	return &Tester{
		settings:    settings,
		deps:        deps,
		clock:       clock,
		log:         log.With().Str("run_id", runID).Logger(),
		runID:       runID,
		state:       StateIdle,
		transitions: []State{StateIdle},
		done:        make(chan struct{}),
	}, nil
}

// QuickTest builds default settings for targetURL and param and starts a run immediately.
// Use Wait to collect the outcome.
func QuickTest(ctx context.Context, targetURL, param string, deps Dependencies, opts ...Option) (*Tester, error) {
	settings := DefaultSettings()
	if targetURL != "" {
		settings.TargetURL = targetURL
	}
	if param != "" {
		settings.VulnerableParam = param
	}
	for _, opt := range opts {
		opt(&settings)
	}

	t, err := NewTester(settings, deps)
	if err != nil {
		return nil, err
	}
	t.Start(ctx)
	return t, nil
}

// Settings returns the settings of this run
func (t *Tester) Settings() Settings { return t.settings }

// RunID returns the identifier stamped on the summary
func (t *Tester) RunID() string { return t.runID }

// Start runs the suite in its own goroutine
func (t *Tester) Start(ctx context.Context) {
	go func() {
		summary, err := t.Run(ctx)
		t.mu.Lock()
		t.summary, t.err = summary, err
		t.mu.Unlock()
		close(t.done)
	}()
}

// Wait blocks until a run started with Start or QuickTest has finished
func (t *Tester) Wait() (*RunSummary, error) {
	<-t.done
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.summary, t.err
}

// Run executes the complete suite: acquire the target, wait for it to settle,
// dispatch every case in order, wait the final delay, then report.
func (t *Tester) Run(ctx context.Context) (*RunSummary, error) {
	startedAt := t.clock.Now()

	t.setState(StateInitializing)
	t.log.Info().Msg("JSON Injection Testing Tool - Starting")
	t.log.Info().Str("target", t.settings.TargetURL).Msg("Target")
	t.log.Info().Str("param", t.settings.VulnerableParam).Msg("Testing parameter")
	t.log.Warn().Msg("Use only on authorized targets!")

	handle, err := t.acquire(ctx)
	if err != nil {
		t.setState(StateFailed)
		t.log.Error().Err(err).Msg("Failed to open target window. Check popup blockers.")
		return t.summarize(startedAt), err
	}
	t.channels = t.buildChannels(handle)

	t.setState(StateAwaitingSettle)
	t.log.Info().Dur("delay", t.settings.InitialDelay).Msg("Waiting for target to load...")
	if err := t.clock.Sleep(ctx, t.settings.InitialDelay); err != nil {
		return t.interrupted(startedAt, err)
	}

	cases := payloads.Generate(payloads.Config{
		VulnerableParam: t.settings.VulnerableParam,
		Now:             t.clock.Now,
	})
	t.log.Info().Int("count", len(cases)).Msg("Generated test payloads")

	t.setState(StateDispatching)
	for i, pc := range cases {
		t.setCursor(i)
		t.executeCase(ctx, i, pc)

		if i < len(cases)-1 {
			if err := t.clock.Sleep(ctx, t.settings.PayloadDelay); err != nil {
				return t.interrupted(startedAt, err)
			}
		}
	}

	t.setState(StateAwaitingFinal)
	if err := t.clock.Sleep(ctx, t.settings.FinalDelay); err != nil {
		return t.interrupted(startedAt, err)
	}

	t.setState(StateReporting)
	summary := t.summarize(startedAt)
	t.log.Info().Msg("JSON Injection Test Complete!")
	if t.deps.Reporter != nil {
		if err := t.deps.Reporter.Report(ctx, *summary); err != nil {
			t.log.Warn().Err(err).Msg("Failed to emit report")
		}
	}

	t.setState(StateDone)
	return summary, nil
}

// Close waits for fire-and-forget channel tasks still in flight
func (t *Tester) Close() {
	t.background.Wait()
}

// interrupted ends a run whose context was cancelled during a delay.
// No report is emitted.
func (t *Tester) interrupted(startedAt time.Time, err error) (*RunSummary, error) {
	t.setState(StateFailed)
	t.log.Warn().Err(err).Int("delivered", len(t.Results())).Msg("Run interrupted")
	return t.summarize(startedAt), err
}

// acquire opens the target handle
func (t *Tester) acquire(ctx context.Context) (TargetHandle, error) {
	handle, err := t.deps.Windows.Open(ctx, t.settings.TargetURL, t.settings.TargetName)
	if err != nil {
		return nil, &AcquisitionError{URL: t.settings.TargetURL, Name: t.settings.TargetName, Err: err}
	}
	if handle == nil {
		return nil, &AcquisitionError{URL: t.settings.TargetURL, Name: t.settings.TargetName, Err: ErrTargetUnavailable}
	}
	return handle, nil
}

// executeCase delivers one case through every channel and appends exactly one result
func (t *Tester) executeCase(ctx context.Context, index int, pc payloads.Case) {
	t.log.Info().
		Int("case", index+1).
		Str("description", pc.Description).
		Str("expected", pc.ExpectedResult).
		Str("payload", payloads.Truncate(pc.Payload, payloads.PreviewLength)).
		Msgf("Testing: %s", pc.Name)

	var primaryErr error
	for _, ch := range t.channels {
		err := t.deliver(ctx, ch, index, pc)
		if err == nil {
			continue
		}
		if ch.Primary() {
			if primaryErr == nil {
				primaryErr = err
			}
			continue
		}
		t.log.Debug().Err(err).Str("channel", ch.Name()).Int("case", index+1).Msg("Best-effort channel failed")
	}

	result := DeliveryResult{
		Name:      pc.Name,
		Payload:   pc.Payload,
		Timestamp: t.clock.Now().UTC().Format(TimestampLayout),
		Status:    StatusSent,
	}
	if primaryErr != nil {
		result.Status = StatusError
		result.Error = errorMessage(primaryErr)
		t.log.Error().Int("case", index+1).Err(primaryErr).Msg("Error executing payload")
	}
	t.recordResult(result)
}

// deliver invokes a channel, converting panics and failures into a ChannelError
func (t *Tester) deliver(ctx context.Context, ch Channel, index int, pc payloads.Case) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			err = &ChannelError{Channel: ch.Name(), Case: index, Err: err}
		}
	}()
	return ch.Deliver(ctx, index, pc)
}

// spawn starts a fire-and-forget task. The dispatch loop never waits for it.
func (t *Tester) spawn(ctx context.Context, channel string, index int, fn func(ctx context.Context) error) {
	t.background.Add(1)
	go func() {
		defer t.background.Done()
		defer func() {
			if r := recover(); r != nil {
				t.log.Debug().Str("channel", channel).Int("case", index+1).Msgf("Background task panicked: %v", r)
			}
		}()

		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.settings.BackgroundTimeout)
		defer cancel()

		if err := fn(bctx); err != nil {
			t.log.Debug().Err(err).Str("channel", channel).Int("case", index+1).Msg("Background delivery failed")
		}
	}()
}

// summarize snapshots the run into a RunSummary
func (t *Tester) summarize(startedAt time.Time) *RunSummary {
	return &RunSummary{
		RunID:      t.runID,
		Target:     t.settings.TargetURL,
		TargetName: t.settings.TargetName,
		Param:      t.settings.VulnerableParam,
		StartedAt:  startedAt,
		FinishedAt: t.clock.Now(),
		Results:    t.Results(),
	}
}
