package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ajkula/jsonraven/pkg/payloads"
)

// ---- fakes ----

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return ctx.Err()
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

type fakeHandle struct {
	mu       sync.Mutex
	messages []string
	origins  []string
	failOn   map[int]error
	panicOn  map[int]bool
	onPost   func(i int)
}

func (h *fakeHandle) PostMessage(_ context.Context, message, origin string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	i := len(h.messages)
	h.messages = append(h.messages, message)
	h.origins = append(h.origins, origin)
	if h.onPost != nil {
		h.onPost(i)
	}
	if h.panicOn[i] {
		panic("handle went away")
	}
	return h.failOn[i]
}

type fakeWindows struct {
	handle TargetHandle
	err    error
	calls  int
	url    string
	name   string
}

func (w *fakeWindows) Open(_ context.Context, url, name string) (TargetHandle, error) {
	w.calls++
	w.url, w.name = url, name
	return w.handle, w.err
}

type fakeStorage struct {
	mu     sync.Mutex
	writes []string
	key    string
	err    error
}

func (s *fakeStorage) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
	s.writes = append(s.writes, value)
	return s.err
}

type fakeForm struct {
	mu        sync.Mutex
	spec      HiddenForm
	submitted bool
	removed   bool
	submitErr error
}

func (f *fakeForm) Submit(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = true
	return f.submitErr
}

func (f *fakeForm) Remove(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = true
	return nil
}

type fakeDocument struct {
	mu        sync.Mutex
	forms     []*fakeForm
	createErr error
	submitErr error
}

func (d *fakeDocument) CreateForm(_ context.Context, spec HiddenForm) (Form, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.createErr != nil {
		return nil, d.createErr
	}
	f := &fakeForm{spec: spec, submitErr: d.submitErr}
	d.forms = append(d.forms, f)
	return f, nil
}

type fakeConn struct {
	d *fakeDialer
}

func (c *fakeConn) Send(_ context.Context, data []byte) error {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	c.d.sent = append(c.d.sent, string(data))
	return nil
}

func (c *fakeConn) Close() error {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	c.d.closed++
	return nil
}

type fakeDialer struct {
	mu        sync.Mutex
	endpoints []string
	sent      []string
	closed    int
	err       error
}

func (d *fakeDialer) Dial(_ context.Context, endpoint string) (SocketConn, error) {
	d.mu.Lock()
	d.endpoints = append(d.endpoints, endpoint)
	err := d.err
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &fakeConn{d: d}, nil
}

type fakeReporter struct {
	calls   int
	summary RunSummary
	err     error
}

func (r *fakeReporter) Report(_ context.Context, s RunSummary) error {
	r.calls++
	r.summary = s
	return r.err
}

type harness struct {
	handle   *fakeHandle
	windows  *fakeWindows
	storage  *fakeStorage
	document *fakeDocument
	dialer   *fakeDialer
	reporter *fakeReporter
	clock    *fakeClock
}

func newHarness() *harness {
	h := &fakeHandle{}
	return &harness{
		handle:   h,
		windows:  &fakeWindows{handle: h},
		storage:  &fakeStorage{},
		document: &fakeDocument{},
		dialer:   &fakeDialer{},
		reporter: &fakeReporter{},
		clock:    newFakeClock(),
	}
}

func (h *harness) deps() Dependencies {
	return Dependencies{
		Windows:  h.windows,
		Storage:  h.storage,
		Document: h.document,
		Sockets:  h.dialer,
		Reporter: h.reporter,
		Clock:    h.clock,
		RunID:    "test-run",
	}
}

func newTestTester(t *testing.T, h *harness, opts ...Option) *Tester {
	t.Helper()
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	tester, err := NewTester(settings, h.deps())
	if err != nil {
		t.Fatalf("NewTester: %v", err)
	}
	t.Cleanup(tester.Close)
	return tester
}

// ---- tests ----

func TestRunDeliversEveryCaseInOrder(t *testing.T) {
	h := newHarness()
	tester := newTestTester(t, h)

	summary, err := tester.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	tester.Close()

	names := payloads.Names()
	if len(summary.Results) != len(names) {
		t.Fatalf("expected %d results, got %d", len(names), len(summary.Results))
	}
	for i, r := range summary.Results {
		if r.Name != names[i] {
			t.Fatalf("result %d: expected %q, got %q", i, names[i], r.Name)
		}
		if r.Status != StatusSent {
			t.Fatalf("result %d: expected sent, got %s (%s)", i, r.Status, r.Error)
		}
		if r.Error != "" {
			t.Fatalf("result %d: unexpected error %q", i, r.Error)
		}
		if r.Payload != h.handle.messages[i] {
			t.Fatalf("result %d: payload mismatch with posted message", i)
		}
		if _, err := time.Parse(TimestampLayout, r.Timestamp); err != nil {
			t.Fatalf("result %d: bad timestamp %q: %v", i, r.Timestamp, err)
		}
	}

	for i, origin := range h.handle.origins {
		if origin != DefaultTargetOrigin {
			t.Fatalf("message %d posted with origin %q", i, origin)
		}
	}
	if h.windows.url != DefaultTargetURL || h.windows.name != DefaultTargetName {
		t.Fatalf("window opened with %q/%q", h.windows.url, h.windows.name)
	}
	if h.reporter.calls != 1 {
		t.Fatalf("expected reporter to be called once, got %d", h.reporter.calls)
	}
	if h.reporter.summary.RunID != "test-run" {
		t.Fatalf("unexpected run id %q", h.reporter.summary.RunID)
	}
	if state, _ := tester.State(); state != StateDone {
		t.Fatalf("expected done, got %s", state)
	}
}

func TestRunPacing(t *testing.T) {
	h := newHarness()
	tester := newTestTester(t, h, WithDelays(time.Second, 2*time.Second, 5*time.Second))

	if _, err := tester.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	tester.Close()

	// background form submits also sleep on the clock, keep only the run pacing
	var pacing []time.Duration
	for _, d := range h.clock.Sleeps() {
		if d != DefaultFormSubmitDelay {
			pacing = append(pacing, d)
		}
	}

	n := len(payloads.Names())
	want := []time.Duration{time.Second}
	for i := 0; i < n-1; i++ {
		want = append(want, 2*time.Second)
	}
	want = append(want, 5*time.Second)

	if len(pacing) != len(want) {
		t.Fatalf("expected %d pacing sleeps, got %d: %v", len(want), len(pacing), pacing)
	}
	for i := range want {
		if pacing[i] != want[i] {
			t.Fatalf("sleep %d: expected %v, got %v", i, want[i], pacing[i])
		}
	}
}

func TestRunStateTransitions(t *testing.T) {
	h := newHarness()
	tester := newTestTester(t, h)

	if _, err := tester.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []State{StateIdle, StateInitializing, StateAwaitingSettle, StateDispatching, StateAwaitingFinal, StateReporting, StateDone}
	got := tester.Transitions()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("transition %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestAcquisitionFailureDispatchesNothing(t *testing.T) {
	cases := map[string]*fakeWindows{
		"nil handle": {handle: nil},
		"open error": {err: errors.New("popup blocked")},
	}

	for name, windows := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness()
			h.windows = windows
			tester := newTestTester(t, h)

			summary, err := tester.Run(context.Background())
			if err == nil {
				t.Fatal("expected acquisition error")
			}
			var acqErr *AcquisitionError
			if !errors.As(err, &acqErr) {
				t.Fatalf("expected AcquisitionError, got %T", err)
			}
			if windows.handle == nil && windows.err == nil && !errors.Is(err, ErrTargetUnavailable) {
				t.Fatalf("expected ErrTargetUnavailable, got %v", err)
			}
			if len(summary.Results) != 0 {
				t.Fatalf("expected no results, got %d", len(summary.Results))
			}
			if len(h.storage.writes) != 0 || len(h.document.forms) != 0 || len(h.dialer.endpoints) != 0 {
				t.Fatal("no channel should have been invoked")
			}
			if h.reporter.calls != 0 {
				t.Fatal("reporter should not run after acquisition failure")
			}
			if len(h.clock.Sleeps()) != 0 {
				t.Fatal("no delay should elapse after acquisition failure")
			}
			if state, _ := tester.State(); state != StateFailed {
				t.Fatalf("expected failed state, got %s", state)
			}
		})
	}
}

func TestPrimaryFailureAffectsOnlyThatCase(t *testing.T) {
	h := newHarness()
	h.handle.failOn = map[int]error{2: errors.New("cross-origin denied")}
	tester := newTestTester(t, h)

	summary, err := tester.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i, r := range summary.Results {
		if i == 2 {
			if r.Status != StatusError {
				t.Fatalf("case 2 should be error, got %s", r.Status)
			}
			if r.Error != "cross-origin denied" {
				t.Fatalf("unexpected error message %q", r.Error)
			}
			continue
		}
		if r.Status != StatusSent {
			t.Fatalf("case %d should be sent, got %s", i, r.Status)
		}
	}
	if len(h.handle.messages) != len(payloads.Names()) {
		t.Fatal("dispatch should continue after a failure")
	}
}

func TestPrimaryPanicIsContained(t *testing.T) {
	h := newHarness()
	h.handle.panicOn = map[int]bool{0: true}
	tester := newTestTester(t, h)

	summary, err := tester.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Results[0].Status != StatusError {
		t.Fatalf("expected case 0 to error, got %s", summary.Results[0].Status)
	}
	if !strings.Contains(summary.Results[0].Error, "handle went away") {
		t.Fatalf("unexpected error %q", summary.Results[0].Error)
	}
	if summary.Results[1].Status != StatusSent {
		t.Fatal("later cases should still be delivered")
	}
}

func TestBestEffortFailuresNeverAffectStatus(t *testing.T) {
	h := newHarness()
	h.storage.err = errors.New("quota exceeded")
	h.document.createErr = errors.New("no body")
	h.dialer.err = errors.New("connection refused")
	tester := newTestTester(t, h)

	summary, err := tester.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	tester.Close()

	for i, r := range summary.Results {
		if r.Status != StatusSent || r.Error != "" {
			t.Fatalf("case %d: best-effort failure leaked into result: %+v", i, r)
		}
	}
	if len(h.storage.writes) != len(payloads.Names()) {
		t.Fatalf("storage should be attempted for every case, got %d", len(h.storage.writes))
	}
}

func TestStorageOverwritesFixedKey(t *testing.T) {
	h := newHarness()
	tester := newTestTester(t, h)

	summary, err := tester.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.storage.key != DefaultStorageKey {
		t.Fatalf("unexpected key %q", h.storage.key)
	}
	last := summary.Results[len(summary.Results)-1].Payload
	if h.storage.writes[len(h.storage.writes)-1] != last {
		t.Fatal("last stored value should be the last payload")
	}
}

func TestFormsAreSubmittedAndRemoved(t *testing.T) {
	h := newHarness()
	h.document.submitErr = errors.New("navigation blocked")
	tester := newTestTester(t, h)

	if _, err := tester.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	tester.Close()

	if len(h.document.forms) != len(payloads.Names()) {
		t.Fatalf("expected one form per case, got %d", len(h.document.forms))
	}
	for i, f := range h.document.forms {
		if f.spec.Method != "POST" || f.spec.Action != DefaultTargetURL || f.spec.Target != DefaultTargetName {
			t.Fatalf("form %d misconfigured: %+v", i, f.spec)
		}
		if f.spec.Field != DefaultVulnerableParam {
			t.Fatalf("form %d field %q", i, f.spec.Field)
		}
		if !f.submitted || !f.removed {
			t.Fatalf("form %d: submitted=%v removed=%v", i, f.submitted, f.removed)
		}
	}
}

func TestSocketSendsParamObject(t *testing.T) {
	h := newHarness()
	tester := newTestTester(t, h)

	summary, err := tester.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	tester.Close()

	if len(h.dialer.sent) != len(summary.Results) {
		t.Fatalf("expected %d socket messages, got %d", len(summary.Results), len(h.dialer.sent))
	}
	if h.dialer.closed != len(h.dialer.sent) {
		t.Fatalf("every connection should be closed: %d/%d", h.dialer.closed, len(h.dialer.sent))
	}
	for _, ep := range h.dialer.endpoints {
		if ep != "wss://test.lab/websocket" {
			t.Fatalf("unexpected endpoint %q", ep)
		}
	}

	// connections run in the background, so match by content rather than order
	want := map[string]bool{}
	for _, r := range summary.Results {
		want[r.Payload] = true
	}
	for _, raw := range h.dialer.sent {
		var msg map[string]string
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			t.Fatalf("socket message is not JSON: %v", err)
		}
		if len(msg) != 1 {
			t.Fatalf("expected a single key, got %v", msg)
		}
		if !want[msg[DefaultVulnerableParam]] {
			t.Fatalf("socket message carries an unknown payload: %q", raw)
		}
	}
}

func TestZeroPayloadDelayKeepsOrder(t *testing.T) {
	h := newHarness()
	tester := newTestTester(t, h, WithDelays(0, 0, 0))

	summary, err := tester.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	names := payloads.Names()
	for i, r := range summary.Results {
		if r.Name != names[i] {
			t.Fatalf("result %d out of order: %q", i, r.Name)
		}
	}
}

func TestOptionalSinksCanBeOmitted(t *testing.T) {
	h := newHarness()
	tester, err := NewTester(DefaultSettings(), Dependencies{Windows: h.windows, Clock: h.clock})
	if err != nil {
		t.Fatalf("NewTester: %v", err)
	}

	summary, err := tester.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Results) != len(payloads.Names()) {
		t.Fatalf("expected full result log, got %d", len(summary.Results))
	}
	if summary.RunID == "" {
		t.Fatal("a run id should be generated")
	}
}

func TestReporterFailureDoesNotFailRun(t *testing.T) {
	h := newHarness()
	h.reporter.err = errors.New("disk full")
	tester := newTestTester(t, h)

	if _, err := tester.Run(context.Background()); err != nil {
		t.Fatalf("reporter errors should be absorbed, got %v", err)
	}
	if state, _ := tester.State(); state != StateDone {
		t.Fatalf("expected done, got %s", state)
	}
}

func TestCancelledRunStopsWithoutReporting(t *testing.T) {
	h := newHarness()
	tester := newTestTester(t, h)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tester.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if h.reporter.calls != 0 {
		t.Fatal("reporter should not run after cancellation")
	}
	if state, _ := tester.State(); state != StateFailed {
		t.Fatalf("cancelled run should end in %s, got %s", StateFailed, state)
	}
}

func TestCancelDuringDispatchEndsRun(t *testing.T) {
	h := newHarness()
	tester := newTestTester(t, h)

	ctx, cancel := context.WithCancel(context.Background())
	h.handle.onPost = func(i int) {
		if i == 1 {
			cancel()
		}
	}

	summary, err := tester.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(summary.Results) != 2 {
		t.Fatalf("expected the two dispatched cases only, got %d", len(summary.Results))
	}
	got := tester.Transitions()
	if got[len(got)-1] != StateFailed {
		t.Fatalf("last transition = %s, want %s", got[len(got)-1], StateFailed)
	}
}

func TestCaseDetailsAreLoggedAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	h := newHarness()
	deps := h.deps()
	deps.Logger = &logger
	tester, err := NewTester(DefaultSettings(), deps)
	if err != nil {
		t.Fatalf("NewTester: %v", err)
	}
	defer tester.Close()

	if _, err := tester.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"prototype_pollution_success",
		"Tests for prototype chain manipulation",
		"JavaScript execution or parsing error",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("info log is missing %q", want)
		}
	}
}

func TestQuickTest(t *testing.T) {
	h := newHarness()
	tester, err := QuickTest(context.Background(), "http://victim.local/app", "q", h.deps())
	if err != nil {
		t.Fatalf("QuickTest: %v", err)
	}
	defer tester.Close()

	summary, err := tester.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if summary.Target != "http://victim.local/app" || summary.Param != "q" {
		t.Fatalf("unexpected summary target/param: %s %s", summary.Target, summary.Param)
	}
	if tester.Settings().SocketEndpoint != "ws://victim.local/app/websocket" {
		t.Fatalf("unexpected socket endpoint %q", tester.Settings().SocketEndpoint)
	}
	if !strings.Contains(summary.Results[0].Payload, `{"q": "valid"}`) {
		t.Fatalf("payload should use the custom param: %s", summary.Results[0].Payload)
	}
}

func TestNewTesterRequiresWindows(t *testing.T) {
	if _, err := NewTester(DefaultSettings(), Dependencies{}); err == nil {
		t.Fatal("expected error without a window provider")
	}
}

func TestErrorMessageNeverEmpty(t *testing.T) {
	err := &ChannelError{Channel: ChannelMessaging, Err: errors.New("")}
	if got := errorMessage(err); got != "delivery failed" {
		t.Fatalf("expected fallback message, got %q", got)
	}
}
