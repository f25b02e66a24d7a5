// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides local account authentication for Soul Sense.
//
// Accounts live in the SQLite store with bcrypt password hashes.
// Failed logins are tracked per username: too many consecutive
// failures lock the account for a fixed period, and a token-bucket
// limiter bounds the attempt rate regardless of outcome.
package auth

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/soulsense/soulsense-tui/internal/store"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// MinUsernameLength is the minimum username length.
	MinUsernameLength = 3

	// MinPasswordLength is the minimum password length.
	MinPasswordLength = 8

	// DefaultMaxAttempts is the number of consecutive failed logins
	// before lockout.
	DefaultMaxAttempts = 3

	// DefaultLockoutDuration is how long an account stays locked.
	DefaultLockoutDuration = 15 * time.Minute

	// loginRate and loginBurst bound raw attempt frequency per username.
	loginRate  = rate.Limit(1)
	loginBurst = 5
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrUsernameTooShort   = fmt.Errorf("username must be at least %d characters", MinUsernameLength)
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrLockedOut          = errors.New("account temporarily locked after too many failed attempts")
	ErrRateLimited        = errors.New("too many login attempts, please slow down")
	ErrNotAuthenticated   = errors.New("no user is signed in")
)

// =============================================================================
// MANAGER
// =============================================================================

// attemptRecord tracks consecutive failed logins for one username.
type attemptRecord struct {
	count       int
	lockedUntil time.Time
}

// Manager authenticates local users. It satisfies the idle monitor's
// AuthService interface. All methods are safe for concurrent use.
type Manager struct {
	mu sync.Mutex

	store   *store.Store
	current *store.User

	attempts map[string]*attemptRecord
	limiters map[string]*rate.Limiter
	otp      map[string]*otpState

	maxAttempts     int
	lockoutDuration time.Duration
	now             func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxAttempts overrides the failed-login limit before lockout.
func WithMaxAttempts(n int) Option {
	return func(m *Manager) { m.maxAttempts = n }
}

// WithLockoutDuration overrides how long a lockout lasts.
func WithLockoutDuration(d time.Duration) Option {
	return func(m *Manager) { m.lockoutDuration = d }
}

// WithClock overrides the manager's clock for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates an authentication manager backed by st.
func NewManager(st *store.Store, opts ...Option) *Manager {
	m := &Manager{
		store:           st,
		attempts:        make(map[string]*attemptRecord),
		limiters:        make(map[string]*rate.Limiter),
		otp:             make(map[string]*otpState),
		maxAttempts:     DefaultMaxAttempts,
		lockoutDuration: DefaultLockoutDuration,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// =============================================================================
// REGISTRATION & LOGIN
// =============================================================================

// Register creates a new account.
func (m *Manager) Register(username, password string) error {
	if len(username) < MinUsernameLength {
		return ErrUsernameTooShort
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if _, err := m.store.CreateUser(username, string(hash)); err != nil {
		return err
	}
	logAuthEvent("USER_REGISTERED", username, "")
	return nil
}

// Login verifies credentials and signs the user in. Consecutive
// failures lock the account; the limiter rejects rapid attempts
// outright.
func (m *Manager) Login(username, password string) error {
	m.mu.Lock()

	if rec, ok := m.attempts[username]; ok && m.now().Before(rec.lockedUntil) {
		remaining := rec.lockedUntil.Sub(m.now())
		m.mu.Unlock()
		logAuthEvent("LOGIN_DENIED", username, "reason=locked remaining="+remaining.Round(time.Second).String())
		return ErrLockedOut
	}

	if !m.limiterLocked(username).Allow() {
		m.mu.Unlock()
		logAuthEvent("LOGIN_DENIED", username, "reason=rate_limited")
		return ErrRateLimited
	}
	m.mu.Unlock()

	user, err := m.store.GetUser(username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Unknown usernames count as failures so enumeration
			// attempts hit the same lockout.
			m.recordFailure(username)
			return ErrInvalidCredentials
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		m.recordFailure(username)
		return ErrInvalidCredentials
	}

	now := m.now()
	if err := m.store.UpdateLastLogin(username, now); err != nil {
		return err
	}
	user.LastLogin = now

	m.mu.Lock()
	delete(m.attempts, username)
	m.current = user
	m.mu.Unlock()

	logAuthEvent("LOGIN_SUCCESS", username, "")
	return nil
}

// Logout clears the signed-in user. Always succeeds for a local
// session; the error return satisfies the idle monitor's AuthService.
func (m *Manager) Logout() error {
	m.mu.Lock()
	user := m.current
	m.current = nil
	m.mu.Unlock()

	if user != nil {
		logAuthEvent("LOGOUT", user.Username, "")
	}
	return nil
}

// IsAuthenticated reports whether a user is signed in.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

// CurrentUser returns the signed-in user.
func (m *Manager) CurrentUser() (*store.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, false
	}
	u := *m.current
	return &u, true
}

// =============================================================================
// LOCKOUT TRACKING
// =============================================================================

// IsLocked reports whether a username is currently locked out.
func (m *Manager) IsLocked(username string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.attempts[username]
	return ok && m.now().Before(rec.lockedUntil)
}

func (m *Manager) recordFailure(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.attempts[username]
	if !ok {
		rec = &attemptRecord{}
		m.attempts[username] = rec
	}
	rec.count++
	logAuthEvent("LOGIN_FAILED", username, fmt.Sprintf("attempt=%d", rec.count))

	if rec.count >= m.maxAttempts {
		rec.lockedUntil = m.now().Add(m.lockoutDuration)
		rec.count = 0
		logAuthEvent("ACCOUNT_LOCKED", username, "duration="+m.lockoutDuration.String())
	}
}

// limiterLocked returns the per-username attempt limiter.
// Callers must hold m.mu.
func (m *Manager) limiterLocked(username string) *rate.Limiter {
	l, ok := m.limiters[username]
	if !ok {
		l = rate.NewLimiter(loginRate, loginBurst)
		m.limiters[username] = l
	}
	return l
}

// =============================================================================
// HELPERS
// =============================================================================

// logAuthEvent logs an authentication event for the audit trail.
func logAuthEvent(eventType, username, details string) {
	timestamp := time.Now().UTC().Format("2006-01-02 15:04:05 UTC")
	log.Printf("%s | %s | user=%s %s", timestamp, eventType, username, details)
}
