// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package idle

import "time"

// Option configures a Monitor.
type Option func(*Monitor)

// WithNotifier sets the notifier used for expiry and extension toasts.
func WithNotifier(n Notifier) Option {
	return func(m *Monitor) { m.notifier = n }
}

// WithNavigator sets the navigation primitive invoked after a forced logout.
func WithNavigator(n Navigator) Option {
	return func(m *Monitor) { m.nav = n }
}

// WithActivitySource sets the interaction event source the monitor
// subscribes to on Start.
func WithActivitySource(s ActivitySource) Option {
	return func(m *Monitor) { m.source = s }
}

// WithClock overrides the monitor's clock. Used by tests to drive the
// state machine deterministically.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}
