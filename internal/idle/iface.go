// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package idle

// AuthService is the authentication collaborator consumed by the
// monitor. The monitor never reaches into a process-wide singleton;
// the service is passed at construction so tests can substitute fakes.
type AuthService interface {
	// IsAuthenticated reports whether a user is currently signed in.
	IsAuthenticated() bool

	// Logout forcibly ends the current session.
	Logout() error
}

// Notifier surfaces user-visible messages (toasts).
type Notifier interface {
	Error(msg string)
	Success(msg string)
}

// Navigator triggers navigation after a forced logout.
type Navigator interface {
	Redirect(path string)
}
