// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package idle

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// =============================================================================
// TEST FAKES
// =============================================================================

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeAuth struct {
	mu          sync.Mutex
	authed      bool
	logoutCalls int
	logoutErr   error
}

func (a *fakeAuth) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.authed
}

func (a *fakeAuth) Logout() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logoutCalls++
	a.authed = false
	return a.logoutErr
}

func (a *fakeAuth) LogoutCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.logoutCalls
}

type fakeNotifier struct {
	mu        sync.Mutex
	errors    []string
	successes []string
}

func (n *fakeNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *fakeNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

type fakeNav struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeNav) Redirect(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
}

// newTestMonitor builds a started monitor with a 15m timeout, 30s
// warning lead and all fakes wired in.
func newTestMonitor(t *testing.T, cfg Config) (*Monitor, *fakeClock, *fakeAuth, *fakeNotifier, *fakeNav) {
	t.Helper()

	clock := newFakeClock()
	auth := &fakeAuth{authed: true}
	notifier := &fakeNotifier{}
	nav := &fakeNav{}

	// Huge tick interval keeps the internal ticker quiet; tests drive
	// evaluation through Check directly.
	if cfg.TickInterval == 0 {
		cfg.TickInterval = time.Hour
	}

	m := NewMonitor(auth, cfg,
		WithClock(clock.Now),
		WithNotifier(notifier),
		WithNavigator(nav),
	)
	t.Cleanup(m.Stop)
	return m, clock, auth, notifier, nav
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.IdleTimeout != 15*time.Minute {
		t.Errorf("IdleTimeout = %v, want 15m", cfg.IdleTimeout)
	}
	if cfg.WarningLead != 30*time.Second {
		t.Errorf("WarningLead = %v, want 30s", cfg.WarningLead)
	}
	if !cfg.Enabled {
		t.Error("default config should be enabled")
	}
}

func TestConfig_WarningLeadClamped(t *testing.T) {
	cfg := Config{
		Enabled:     true,
		IdleTimeout: 15 * time.Minute,
		WarningLead: 20 * time.Minute, // invalid: exceeds timeout
	}
	m, clock, _, _, _ := newTestMonitor(t, cfg)
	m.Start()

	clock.Advance(time.Second)
	m.Check()

	// The clamped lead puts the monitor in warning immediately, but the
	// countdown must never be negative.
	if m.RemainingSeconds() < 0 {
		t.Errorf("RemainingSeconds = %d, want >= 0", m.RemainingSeconds())
	}
	if m.State() == StateExpired {
		t.Error("misconfigured lead must not expire the session outright")
	}
}

// =============================================================================
// NO-OP PRECONDITION TESTS
// =============================================================================

func TestMonitor_DisabledIsNoOp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	m, clock, auth, _, _ := newTestMonitor(t, cfg)
	m.Start()

	if m.Started() {
		t.Fatal("disabled monitor should not start")
	}

	clock.Advance(20 * time.Minute)
	m.Check()

	if auth.LogoutCalls() != 0 {
		t.Errorf("logout calls = %d, want 0", auth.LogoutCalls())
	}
	if m.ShowWarning() {
		t.Error("disabled monitor should never show warning")
	}
	if m.RemainingSeconds() != 0 {
		t.Errorf("RemainingSeconds = %d, want 0", m.RemainingSeconds())
	}
}

func TestMonitor_UnauthenticatedIsNoOp(t *testing.T) {
	m, clock, auth, _, _ := newTestMonitor(t, DefaultConfig())
	auth.authed = false
	m.Start()

	if m.Started() {
		t.Fatal("monitor should not start without an authenticated user")
	}

	clock.Advance(time.Hour)
	m.Check()

	if auth.LogoutCalls() != 0 {
		t.Errorf("logout calls = %d, want 0", auth.LogoutCalls())
	}
}

// =============================================================================
// WARNING THRESHOLD TESTS
// =============================================================================

func TestMonitor_WarningAtExactThreshold(t *testing.T) {
	m, clock, _, _, _ := newTestMonitor(t, DefaultConfig())
	m.Start()

	// 14m30s idle with a 15m timeout and 30s lead: warning begins.
	clock.Advance(14*time.Minute + 30*time.Second)
	m.Check()

	if !m.ShowWarning() {
		t.Fatal("ShowWarning = false, want true at warning threshold")
	}
	if m.RemainingSeconds() != 30 {
		t.Errorf("RemainingSeconds = %d, want 30", m.RemainingSeconds())
	}
	if m.State() != StateWarning {
		t.Errorf("State = %v, want WARNING", m.State())
	}
}

func TestMonitor_NoWarningBeforeThreshold(t *testing.T) {
	m, clock, _, _, _ := newTestMonitor(t, DefaultConfig())
	m.Start()

	clock.Advance(14 * time.Minute)
	m.Check()

	if m.ShowWarning() {
		t.Error("warning shown 60s before the lead threshold")
	}
	if m.State() != StateActive {
		t.Errorf("State = %v, want ACTIVE", m.State())
	}
}

func TestMonitor_OnWarningFiredPerCountdownChange(t *testing.T) {
	var got []int
	cfg := DefaultConfig()
	cfg.OnWarning = func(rem int) { got = append(got, rem) }

	m, clock, _, _, _ := newTestMonitor(t, cfg)
	m.Start()

	clock.Advance(14*time.Minute + 30*time.Second)
	m.Check()
	// Same instant again: countdown unchanged, no duplicate callback.
	m.Check()
	clock.Advance(time.Second)
	m.Check()

	want := []int{30, 29}
	if len(got) != len(want) {
		t.Fatalf("OnWarning calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("OnWarning[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestMonitor_CountdownStrictlyDecreases(t *testing.T) {
	m, clock, _, _, _ := newTestMonitor(t, DefaultConfig())
	m.Start()

	clock.Advance(14*time.Minute + 30*time.Second)
	m.Check()

	prev := m.RemainingSeconds()
	for i := 0; i < 29; i++ {
		clock.Advance(time.Second)
		m.Check()
		rem := m.RemainingSeconds()
		if rem != prev-1 {
			t.Fatalf("tick %d: RemainingSeconds = %d, want %d", i, rem, prev-1)
		}
		prev = rem
	}
}

// =============================================================================
// EXPIRY TESTS
// =============================================================================

func TestMonitor_ExpiresExactlyOnce(t *testing.T) {
	timeouts := 0
	cfg := DefaultConfig()
	cfg.OnTimeout = func() { timeouts++ }

	m, clock, auth, notifier, nav := newTestMonitor(t, cfg)
	m.Start()

	clock.Advance(15 * time.Minute)
	m.Check()
	m.Check()
	clock.Advance(time.Minute)
	m.Check()

	if m.State() != StateExpired {
		t.Fatalf("State = %v, want EXPIRED", m.State())
	}
	if auth.LogoutCalls() != 1 {
		t.Errorf("logout calls = %d, want 1", auth.LogoutCalls())
	}
	if timeouts != 1 {
		t.Errorf("OnTimeout calls = %d, want 1", timeouts)
	}
	if len(notifier.errors) != 1 || notifier.errors[0] != ExpiredMessage {
		t.Errorf("error toasts = %v, want one %q", notifier.errors, ExpiredMessage)
	}
	if len(nav.paths) != 1 || nav.paths[0] != LoginPath {
		t.Errorf("redirects = %v, want one %q", nav.paths, LoginPath)
	}
}

func TestMonitor_LogoutFailureStillExpires(t *testing.T) {
	m, clock, auth, notifier, nav := newTestMonitor(t, DefaultConfig())
	auth.logoutErr = errors.New("network down")
	m.Start()

	clock.Advance(15 * time.Minute)
	m.Check()

	if m.State() != StateExpired {
		t.Fatalf("State = %v, want EXPIRED despite logout failure", m.State())
	}
	if len(notifier.errors) != 1 {
		t.Errorf("error toasts = %d, want 1", len(notifier.errors))
	}
	if len(nav.paths) != 1 {
		t.Errorf("redirects = %d, want 1", len(nav.paths))
	}
	// Failure is reported, not retried: no further logout attempts.
	m.Check()
	if auth.LogoutCalls() != 1 {
		t.Errorf("logout calls = %d, want 1", auth.LogoutCalls())
	}
}

// =============================================================================
// ACTIVITY RESET TESTS
// =============================================================================

func TestMonitor_ActivityExtendsBudget(t *testing.T) {
	m, clock, auth, _, _ := newTestMonitor(t, DefaultConfig())
	m.Start()

	// Activity at t=10m restarts the budget from there.
	clock.Advance(10 * time.Minute)
	m.RecordActivity()

	clock.Advance(14*time.Minute + 59*time.Second)
	m.Check()
	if m.State() == StateExpired {
		t.Fatal("expired before a full idle budget from the reset")
	}

	clock.Advance(time.Second) // total 25m from start, 15m from reset
	m.Check()
	if m.State() != StateExpired {
		t.Fatalf("State = %v, want EXPIRED 15m after the reset", m.State())
	}
	if auth.LogoutCalls() != 1 {
		t.Errorf("logout calls = %d, want 1", auth.LogoutCalls())
	}
}

func TestMonitor_ActivityDuringWarningClearsIt(t *testing.T) {
	clearedCalls := 0
	cfg := DefaultConfig()
	cfg.OnWarningCleared = func() { clearedCalls++ }

	m, clock, _, _, _ := newTestMonitor(t, cfg)
	m.Start()

	clock.Advance(14*time.Minute + 40*time.Second)
	m.Check()
	if !m.ShowWarning() {
		t.Fatal("expected warning before activity")
	}

	m.RecordActivity()

	if m.ShowWarning() {
		t.Error("ShowWarning = true after activity, want false")
	}
	if m.RemainingSeconds() != 0 {
		t.Errorf("RemainingSeconds = %d, want 0", m.RemainingSeconds())
	}
	if m.State() != StateActive {
		t.Errorf("State = %v, want ACTIVE", m.State())
	}
	if clearedCalls != 1 {
		t.Errorf("OnWarningCleared calls = %d, want 1", clearedCalls)
	}
}

func TestMonitor_ContinueSession(t *testing.T) {
	m, clock, _, notifier, _ := newTestMonitor(t, DefaultConfig())
	m.Start()

	clock.Advance(14*time.Minute + 45*time.Second)
	m.Check()
	if !m.ShowWarning() {
		t.Fatal("expected warning before ContinueSession")
	}

	m.ContinueSession()

	if m.ShowWarning() {
		t.Error("ShowWarning = true after ContinueSession, want false")
	}
	if m.RemainingSeconds() != 0 {
		t.Errorf("RemainingSeconds = %d, want 0", m.RemainingSeconds())
	}
	if len(notifier.successes) != 1 || notifier.successes[0] != ExtendedMessage {
		t.Errorf("success toasts = %v, want one %q", notifier.successes, ExtendedMessage)
	}

	// Idle time is measured fresh from the acknowledgment.
	clock.Advance(14 * time.Minute)
	m.Check()
	if m.State() != StateActive {
		t.Errorf("State = %v, want ACTIVE 14m after ContinueSession", m.State())
	}
	clock.Advance(time.Minute)
	m.Check()
	if m.State() != StateExpired {
		t.Errorf("State = %v, want EXPIRED 15m after ContinueSession", m.State())
	}
}

// =============================================================================
// THROTTLING TESTS
// =============================================================================

func TestMonitor_ThrottleCoalescesBurst(t *testing.T) {
	m, clock, _, _, _ := newTestMonitor(t, DefaultConfig())
	m.Start()

	clock.Advance(5 * time.Minute)

	// Burst of 10 events inside one throttle window: exactly one
	// effective reset (the first), the rest coalesce.
	m.RecordActivity()
	first := m.LastActivity()

	for i := 0; i < 9; i++ {
		clock.Advance(50 * time.Millisecond)
		m.RecordActivity()
	}
	if !m.LastActivity().Equal(first) {
		t.Errorf("burst produced extra resets: LastActivity moved by %v",
			m.LastActivity().Sub(first))
	}

	// Once the window elapses the deferred latest reset is applied, so
	// the trailing activity is not silently dropped.
	lastEvent := clock.Now()
	clock.Advance(time.Second)
	m.Check()
	if !m.LastActivity().Equal(lastEvent) {
		t.Errorf("deferred reset not applied: LastActivity = %v, want %v",
			m.LastActivity(), lastEvent)
	}
}

func TestMonitor_ActivityAfterWindowAlwaysRegisters(t *testing.T) {
	m, clock, _, _, _ := newTestMonitor(t, DefaultConfig())
	m.Start()

	clock.Advance(time.Minute)
	m.RecordActivity()

	clock.Advance(2 * time.Second) // past the throttle window
	m.RecordActivity()

	if !m.LastActivity().Equal(clock.Now()) {
		t.Errorf("post-window activity did not register: LastActivity = %v, now = %v",
			m.LastActivity(), clock.Now())
	}
}

// =============================================================================
// LIFECYCLE TESTS
// =============================================================================

func TestMonitor_StopIsIdempotent(t *testing.T) {
	m, clock, auth, _, _ := newTestMonitor(t, DefaultConfig())
	m.Start()

	m.Stop()
	m.Stop()

	clock.Advance(time.Hour)
	m.Check()

	if auth.LogoutCalls() != 0 {
		t.Errorf("logout calls after stop = %d, want 0", auth.LogoutCalls())
	}
	if m.Started() {
		t.Error("monitor still started after Stop")
	}
}

func TestMonitor_RestartKeepsSingleSubscription(t *testing.T) {
	hub := NewHub()
	clock := newFakeClock()
	auth := &fakeAuth{authed: true}
	m := NewMonitor(auth, Config{
		Enabled:      true,
		IdleTimeout:  15 * time.Minute,
		WarningLead:  30 * time.Second,
		TickInterval: time.Hour,
	}, WithClock(clock.Now), WithActivitySource(hub))
	defer m.Stop()

	// Repeated re-initialization (re-renders) must never stack timers
	// or subscriptions.
	m.Start()
	m.Start()
	m.Start()

	if n := hub.SubscriberCount(); n != 1 {
		t.Fatalf("subscriptions after 3 starts = %d, want 1", n)
	}

	clock.Advance(15 * time.Minute)
	m.Check()
	m.Check()

	if auth.LogoutCalls() != 1 {
		t.Errorf("logout calls = %d, want 1", auth.LogoutCalls())
	}
	if n := hub.SubscriberCount(); n != 0 {
		t.Errorf("subscriptions after expiry = %d, want 0", n)
	}
}

func TestMonitor_HubDeliversActivity(t *testing.T) {
	hub := NewHub()
	clock := newFakeClock()
	auth := &fakeAuth{authed: true}
	m := NewMonitor(auth, Config{
		Enabled:      true,
		IdleTimeout:  15 * time.Minute,
		WarningLead:  30 * time.Second,
		TickInterval: time.Hour,
	}, WithClock(clock.Now), WithActivitySource(hub))
	defer m.Stop()
	m.Start()

	clock.Advance(10 * time.Minute)
	hub.Emit(EventKeyPress)

	if !m.LastActivity().Equal(clock.Now()) {
		t.Errorf("key press did not reset the idle clock: LastActivity = %v",
			m.LastActivity())
	}
}

// =============================================================================
// STATE STRING TESTS
// =============================================================================

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateActive, "ACTIVE"},
		{StateWarning, "WARNING"},
		{StateExpired, "EXPIRED"},
		{State(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
