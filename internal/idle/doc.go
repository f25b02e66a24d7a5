// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package idle implements the session idle monitor for Soul Sense.
//
// The monitor watches user-interaction events, keeps a rolling
// last-activity timestamp, and walks a small state machine:
//
//	Active -> Warning -> Expired
//
// Crossing the warning threshold surfaces a countdown; crossing the
// idle timeout forces a logout and a redirect to the login screen.
// Activity resets are throttled so high-frequency input (continuous
// pointer movement) cannot churn the timer, and a reset arriving
// inside the throttle window is deferred rather than dropped.
//
// All collaborators (auth service, notifier, navigator, activity
// source, clock) are injected, so the state machine is testable
// without any UI framework.
package idle
