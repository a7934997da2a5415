package delivery

// Thread-safe state management methods

// setState moves the tester to a new state
func (t *Tester) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.transitions = append(t.transitions, s)
	t.mu.Unlock()
	t.log.Debug().Str("state", s.String()).Msg("State transition")
}

// setCursor records the catalog index being dispatched
func (t *Tester) setCursor(i int) {
	t.mu.Lock()
	t.cursor = i
	t.mu.Unlock()
}

// recordResult appends to the result log
func (t *Tester) recordResult(r DeliveryResult) {
	t.mu.Lock()
	t.results = append(t.results, r)
	t.mu.Unlock()
}

// State returns the current state and, while dispatching, the catalog index
func (t *Tester) State() (State, int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state, t.cursor
}

// Transitions returns every state entered so far, starting with Idle
func (t *Tester) Transitions() []State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]State, len(t.transitions))
	copy(out, t.transitions)
	return out
}

// Results returns a copy of the result log
func (t *Tester) Results() []DeliveryResult {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]DeliveryResult, len(t.results))
	copy(out, t.results)
	return out
}
