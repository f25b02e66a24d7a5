// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollTOTP(t *testing.T) {
	m, clock := newTestManager(t)
	require.NoError(t, m.Register("alex", "correct horse battery"))

	secret, url, err := m.EnrollTOTP("alex")
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.True(t, strings.Contains(url, "Soul%20Sense") || strings.Contains(url, "Soul+Sense"),
		"provisioning URL should carry the issuer: %s", url)
	assert.True(t, m.IsTOTPEnrolled("alex"))

	// A second request inside the interval is rejected.
	_, _, err = m.EnrollTOTP("alex")
	assert.ErrorIs(t, err, ErrOTPRateLimited)

	// And allowed again once the interval passes.
	clock.Advance(otpRequestInterval + time.Second)
	_, _, err = m.EnrollTOTP("alex")
	assert.NoError(t, err)
}

func TestVerifyTOTP(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Register("alex", "correct horse battery"))

	assert.ErrorIs(t, m.VerifyTOTP("alex", "000000"), ErrOTPNotEnrolled)
	assert.ErrorIs(t, m.VerifyTOTP("ghost", "000000"), ErrOTPNotEnrolled)

	secret, _, err := m.EnrollTOTP("alex")
	require.NoError(t, err)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	assert.NoError(t, m.VerifyTOTP("alex", code))

	assert.ErrorIs(t, m.VerifyTOTP("alex", "000000"), ErrOTPInvalid)
}

func TestVerifyTOTP_AttemptCap(t *testing.T) {
	m, clock := newTestManager(t)
	require.NoError(t, m.Register("alex", "correct horse battery"))

	secret, _, err := m.EnrollTOTP("alex")
	require.NoError(t, err)

	for i := 0; i < maxOTPVerifyAttempts; i++ {
		assert.ErrorIs(t, m.VerifyTOTP("alex", "000000"), ErrOTPInvalid)
	}
	assert.ErrorIs(t, m.VerifyTOTP("alex", "000000"), ErrOTPTooManyAttempts)

	// The cap releases after the request interval, and a good code
	// clears the counter.
	clock.Advance(otpRequestInterval + time.Second)
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	assert.NoError(t, m.VerifyTOTP("alex", code))
}
