// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"errors"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/soulsense/soulsense-tui/internal/store"
)

// =============================================================================
// TOTP ENROLLMENT & VERIFICATION
// =============================================================================

const (
	// otpIssuer appears in authenticator apps.
	otpIssuer = "Soul Sense"

	// otpRequestInterval is the minimum spacing between enrollment
	// requests for one user.
	otpRequestInterval = 60 * time.Second

	// maxOTPVerifyAttempts caps failed verifications before the user
	// must wait out the request interval.
	maxOTPVerifyAttempts = 3
)

var (
	ErrOTPRateLimited     = errors.New("please wait before requesting a new code")
	ErrOTPNotEnrolled     = errors.New("two-factor authentication is not set up for this account")
	ErrOTPTooManyAttempts = errors.New("too many incorrect codes, please wait and try again")
	ErrOTPInvalid         = errors.New("incorrect verification code")
)

// otpState tracks per-user OTP throttling and attempt counts.
type otpState struct {
	lastRequest  time.Time
	attempts     int
	lastFailedAt time.Time
}

// EnrollTOTP generates a fresh TOTP secret for the user and stores it.
// Returns the secret and the provisioning URL for authenticator apps.
func (m *Manager) EnrollTOTP(username string) (secret, url string, err error) {
	m.mu.Lock()
	st, ok := m.otp[username]
	if !ok {
		st = &otpState{}
		m.otp[username] = st
	}
	now := m.now()
	if !st.lastRequest.IsZero() && now.Sub(st.lastRequest) < otpRequestInterval {
		m.mu.Unlock()
		return "", "", ErrOTPRateLimited
	}
	st.lastRequest = now
	st.attempts = 0
	m.mu.Unlock()

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      otpIssuer,
		AccountName: username,
	})
	if err != nil {
		return "", "", err
	}

	if err := m.store.SetTOTPSecret(username, key.Secret()); err != nil {
		return "", "", err
	}

	logAuthEvent("OTP_ENROLLED", username, "")
	return key.Secret(), key.URL(), nil
}

// VerifyTOTP checks a code against the user's enrolled secret. After
// maxOTPVerifyAttempts consecutive failures the user must wait out the
// request interval before trying again.
func (m *Manager) VerifyTOTP(username, code string) error {
	user, err := m.store.GetUser(username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrOTPNotEnrolled
		}
		return err
	}
	if user.TOTPSecret == "" {
		return ErrOTPNotEnrolled
	}

	m.mu.Lock()
	st, ok := m.otp[username]
	if !ok {
		st = &otpState{}
		m.otp[username] = st
	}
	now := m.now()
	if st.attempts >= maxOTPVerifyAttempts {
		if now.Sub(st.lastFailedAt) < otpRequestInterval {
			m.mu.Unlock()
			return ErrOTPTooManyAttempts
		}
		st.attempts = 0
	}
	m.mu.Unlock()

	if totp.Validate(code, user.TOTPSecret) {
		m.mu.Lock()
		st.attempts = 0
		m.mu.Unlock()
		logAuthEvent("OTP_VERIFIED", username, "")
		return nil
	}

	m.mu.Lock()
	st.attempts++
	st.lastFailedAt = now
	m.mu.Unlock()
	logAuthEvent("OTP_FAILED", username, "")
	return ErrOTPInvalid
}

// IsTOTPEnrolled reports whether the user has a stored TOTP secret.
func (m *Manager) IsTOTPEnrolled(username string) bool {
	user, err := m.store.GetUser(username)
	return err == nil && user.TOTPSecret != ""
}
