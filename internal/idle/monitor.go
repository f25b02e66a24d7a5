// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package idle

import (
	"log"
	"sync"
	"time"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultIdleTimeout is the total inactivity budget: 15 minutes.
	DefaultIdleTimeout = 15 * time.Minute

	// DefaultWarningLead is how long before timeout the warning appears.
	DefaultWarningLead = 30 * time.Second

	// DefaultTickInterval gives second-granularity countdown feedback.
	DefaultTickInterval = time.Second

	// DefaultThrottleWindow is the minimum spacing between effective
	// activity-driven resets.
	DefaultThrottleWindow = time.Second

	// LoginPath is the redirect destination after a forced logout.
	LoginPath = "/login"

	// ExpiredMessage is shown when the session times out.
	ExpiredMessage = "Your session has expired due to inactivity. Please log in again."

	// ExtendedMessage is shown when the user extends their session.
	ExtendedMessage = "Session extended"
)

// =============================================================================
// STATE
// =============================================================================

// State represents the monitor's lifecycle phase.
type State int

const (
	// StateActive indicates normal activity.
	StateActive State = iota
	// StateWarning indicates the pre-expiry countdown is running.
	StateWarning
	// StateExpired indicates the session has been forcibly ended.
	StateExpired
)

// String returns a string representation of the State.
func (s State) String() string {
	switch s {
	case StateActive:
		return "ACTIVE"
	case StateWarning:
		return "WARNING"
	case StateExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// =============================================================================
// CONFIG
// =============================================================================

// Config holds monitor configuration.
type Config struct {
	// Enabled is the master on/off switch. When false, Start is a no-op.
	Enabled bool

	// IdleTimeout is the total inactivity budget (default: 15 minutes).
	IdleTimeout time.Duration

	// WarningLead is how long before timeout the warning appears
	// (default: 30 seconds). Must be less than IdleTimeout; invalid
	// values are clamped rather than producing a negative countdown.
	WarningLead time.Duration

	// TickInterval is the cadence of internal re-evaluation (default: 1s).
	TickInterval time.Duration

	// ThrottleWindow is the minimum spacing between effective activity
	// resets (default: 1s).
	ThrottleWindow time.Duration

	// OnTimeout is an optional hook invoked alongside the forced logout.
	OnTimeout func()

	// OnWarning is an optional hook invoked on each change of the
	// countdown value while in the warning phase.
	OnWarning func(remainingSeconds int)

	// OnWarningCleared is an optional hook invoked when activity or an
	// explicit continue dismisses the warning.
	OnWarningCleared func()
}

// DefaultConfig returns the default monitor configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		IdleTimeout:    DefaultIdleTimeout,
		WarningLead:    DefaultWarningLead,
		TickInterval:   DefaultTickInterval,
		ThrottleWindow: DefaultThrottleWindow,
	}
}

// normalized fills zero durations with defaults and clamps WarningLead
// below IdleTimeout so the countdown can never start negative.
func (c Config) normalized() Config {
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.ThrottleWindow <= 0 {
		c.ThrottleWindow = DefaultThrottleWindow
	}
	if c.WarningLead < 0 {
		c.WarningLead = 0
	}
	if c.WarningLead >= c.IdleTimeout {
		lead := c.IdleTimeout - time.Second
		if lead < 0 {
			lead = 0
		}
		log.Printf("IDLE_CONFIG: warning lead %v >= idle timeout %v, clamped to %v",
			c.WarningLead, c.IdleTimeout, lead)
		c.WarningLead = lead
	}
	return c
}

// =============================================================================
// MONITOR
// =============================================================================

// Monitor is the session idle monitor. A fresh logical instance is
// created on each enable transition: Start tears down any prior timer
// and subscription before arming new ones, so duplicate timers can
// never coexist across re-initialization.
type Monitor struct {
	mu sync.Mutex

	cfg      Config
	auth     AuthService
	notifier Notifier
	nav      Navigator
	source   ActivitySource
	now      func() time.Time

	// lifecycle
	started     bool
	done        chan struct{}
	unsubscribe func()

	// state machine
	state            State
	lastActivity     time.Time
	remainingSeconds int
	showWarning      bool

	// throttled reset bookkeeping
	lastThrottleFlush time.Time
	pendingReset      bool
	pendingResetAt    time.Time
}

// Snapshot is the monitor's observable state.
type Snapshot struct {
	State            State
	ShowWarning      bool
	RemainingSeconds int
	LastActivity     time.Time
}

// NewMonitor creates a monitor for the given auth service. The monitor
// does nothing until Start is called.
func NewMonitor(auth AuthService, cfg Config, opts ...Option) *Monitor {
	m := &Monitor{
		cfg:   cfg.normalized(),
		auth:  auth,
		now:   time.Now,
		state: StateActive,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start begins observation. It is a no-op unless the config is enabled
// and the auth service reports an authenticated user. Calling Start on
// a running monitor tears the previous instance down first.
func (m *Monitor) Start() {
	m.mu.Lock()

	if m.started {
		m.stopLocked()
	}

	if !m.cfg.Enabled || m.auth == nil || !m.auth.IsAuthenticated() {
		m.state = StateActive
		m.showWarning = false
		m.remainingSeconds = 0
		m.mu.Unlock()
		return
	}

	now := m.now()
	m.started = true
	m.state = StateActive
	m.lastActivity = now
	m.showWarning = false
	m.remainingSeconds = 0
	m.lastThrottleFlush = time.Time{}
	m.pendingReset = false

	if m.source != nil {
		m.unsubscribe = m.source.Subscribe(DefaultEventKinds(), m.RecordActivity)
	}

	done := make(chan struct{})
	m.done = done
	interval := m.cfg.TickInterval
	m.mu.Unlock()

	logIdleEvent("MONITOR_START", "timeout="+m.cfg.IdleTimeout.String())
	go m.loop(done, interval)
}

// loop is the internal tick driver. Each tick is a discrete,
// non-overlapping evaluation of elapsed idle time.
func (m *Monitor) loop(done chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if !m.Check() {
				return
			}
		}
	}
}

// Stop cancels the tick timer and detaches the activity subscription.
// Safe to call multiple times.
func (m *Monitor) Stop() {
	m.mu.Lock()
	stopped := m.started
	m.stopLocked()
	m.mu.Unlock()

	if stopped {
		logIdleEvent("MONITOR_STOP", "")
	}
}

// stopLocked releases the timer and subscription exactly once.
// Callers must hold m.mu.
func (m *Monitor) stopLocked() {
	if !m.started {
		return
	}
	m.started = false
	if m.done != nil {
		close(m.done)
		m.done = nil
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.showWarning = false
	m.remainingSeconds = 0
	m.pendingReset = false
}

// =============================================================================
// ACTIVITY HANDLING
// =============================================================================

// RecordActivity handles a qualifying interaction event. Resets inside
// the throttle window are coalesced into a single deferred reset that
// is applied when the window elapses; they are never dropped outright.
func (m *Monitor) RecordActivity() {
	m.mu.Lock()
	if !m.started || m.state == StateExpired {
		m.mu.Unlock()
		return
	}

	now := m.now()
	if !m.lastThrottleFlush.IsZero() && now.Sub(m.lastThrottleFlush) < m.cfg.ThrottleWindow {
		m.pendingReset = true
		m.pendingResetAt = now
		m.mu.Unlock()
		return
	}

	cleared := m.applyResetLocked(now, now)
	m.mu.Unlock()

	if cleared {
		m.fireWarningCleared()
	}
}

// ResetTimer is a public manual reset, equivalent to an activity event.
// Useful for callers outside the tracked event set (e.g. after a
// successful API call).
func (m *Monitor) ResetTimer() {
	m.RecordActivity()
}

// ContinueSession is the explicit user acknowledgment during the
// warning phase. It bypasses the throttle, returns the monitor to
// Active and surfaces a success toast.
func (m *Monitor) ContinueSession() {
	m.mu.Lock()
	if !m.started || m.state == StateExpired {
		m.mu.Unlock()
		return
	}
	now := m.now()
	cleared := m.applyResetLocked(now, now)
	m.mu.Unlock()

	if cleared {
		m.fireWarningCleared()
	}
	if m.notifier != nil {
		m.notifier.Success(ExtendedMessage)
	}
	logIdleEvent("SESSION_EXTENDED", "")
}

// applyResetLocked moves the idle clock to activityAt and opens a new
// throttle window at flushAt. Returns true if the reset dismissed an
// in-progress warning. Callers must hold m.mu.
func (m *Monitor) applyResetLocked(activityAt, flushAt time.Time) bool {
	m.lastActivity = activityAt
	m.lastThrottleFlush = flushAt
	m.pendingReset = false

	if m.state == StateWarning {
		m.state = StateActive
		m.showWarning = false
		m.remainingSeconds = 0
		return true
	}
	return false
}

func (m *Monitor) fireWarningCleared() {
	if fn := m.cfg.OnWarningCleared; fn != nil {
		fn()
	}
}

// =============================================================================
// TICK EVALUATION
// =============================================================================

// Check evaluates elapsed idle time against the warning and timeout
// thresholds. Elapsed time is recomputed from wall-clock timestamps on
// every call rather than counted in ticks, so the monitor stays correct
// across suspension or tick throttling. Returns false once the session
// has expired.
func (m *Monitor) Check() bool {
	m.mu.Lock()
	if m.state == StateExpired {
		m.mu.Unlock()
		return false
	}
	if !m.started {
		m.mu.Unlock()
		return true
	}

	now := m.now()

	// Apply a deferred throttled reset once its window has elapsed.
	cleared := false
	if m.pendingReset && now.Sub(m.lastThrottleFlush) >= m.cfg.ThrottleWindow {
		cleared = m.applyResetLocked(m.pendingResetAt, now)
	}

	elapsed := now.Sub(m.lastActivity)

	// Timeout threshold: one-shot per instance.
	if elapsed >= m.cfg.IdleTimeout {
		m.state = StateExpired
		m.showWarning = false
		m.remainingSeconds = 0
		m.stopLocked()
		m.mu.Unlock()

		logIdleEvent("SESSION_EXPIRED", "idle="+elapsed.String())
		m.fireExpired()
		return false
	}

	// Warning threshold.
	remaining := m.cfg.IdleTimeout - elapsed
	if remaining <= m.cfg.WarningLead {
		rem := ceilSeconds(remaining)
		changed := m.state != StateWarning || rem != m.remainingSeconds
		if m.state != StateWarning {
			logIdleEvent("SESSION_WARNING", "remaining="+remaining.String())
		}
		m.state = StateWarning
		m.showWarning = true
		m.remainingSeconds = rem
		onWarning := m.cfg.OnWarning
		m.mu.Unlock()

		if changed && onWarning != nil {
			onWarning(rem)
		}
		return true
	}

	// Back to (or still) active.
	if m.state == StateWarning {
		m.state = StateActive
		m.showWarning = false
		m.remainingSeconds = 0
		cleared = true
	}
	m.mu.Unlock()

	if cleared {
		m.fireWarningCleared()
	}
	return true
}

// fireExpired runs the expiry side effects. A logout failure is
// reported, not retried; the monitor stays Expired either way.
func (m *Monitor) fireExpired() {
	if fn := m.cfg.OnTimeout; fn != nil {
		fn()
	}
	if m.notifier != nil {
		m.notifier.Error(ExpiredMessage)
	}
	if m.auth != nil {
		if err := m.auth.Logout(); err != nil {
			logIdleEvent("LOGOUT_FAILED", "error="+err.Error())
		}
	}
	if m.nav != nil {
		m.nav.Redirect(LoginPath)
	}
}

// =============================================================================
// OBSERVABLE STATE
// =============================================================================

// Snapshot returns the monitor's observable state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		State:            m.state,
		ShowWarning:      m.showWarning,
		RemainingSeconds: m.remainingSeconds,
		LastActivity:     m.lastActivity,
	}
}

// State returns the current lifecycle phase.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ShowWarning reports whether the countdown warning should be visible.
func (m *Monitor) ShowWarning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.showWarning
}

// RemainingSeconds returns the countdown value. Only meaningful while
// the warning is showing.
func (m *Monitor) RemainingSeconds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remainingSeconds
}

// LastActivity returns the timestamp of the last effective reset.
func (m *Monitor) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity
}

// Started reports whether the monitor is currently observing.
func (m *Monitor) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// =============================================================================
// HELPERS
// =============================================================================

// ceilSeconds converts a duration to whole seconds, rounding up.
func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// logIdleEvent logs a session lifecycle event in the audit line format.
func logIdleEvent(eventType, details string) {
	timestamp := time.Now().UTC().Format("2006-01-02 15:04:05 UTC")
	log.Printf("%s | %s | %s", timestamp, eventType, details)
}
