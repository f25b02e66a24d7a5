// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Non-blocking toast notifications. Toasts stack in the bottom-right
// corner and auto-dismiss, so errors and confirmations never interrupt
// a check-in in progress.
package components

import (
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/soulsense/soulsense-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastKindStatus is an informational toast
	ToastKindStatus ToastKind = iota
	// ToastKindError is an error toast
	ToastKindError
	// ToastKindSuccess is a success toast
	ToastKindSuccess
)

// DefaultToastDuration is the auto-dismiss duration for status and
// success toasts.
const DefaultToastDuration = 4 * time.Second

// ErrorToastDuration is the auto-dismiss duration for error toasts
// (longer so they can be read).
const ErrorToastDuration = 8 * time.Second

// Toast is a single notification.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true once the toast should be dismissed.
func (t *Toast) IsExpired(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager holds the visible toasts, newest first. Its Error and
// Success methods satisfy the idle monitor's Notifier interface.
type ToastManager struct {
	mu        sync.Mutex
	toasts    []Toast
	nextID    int
	maxToasts int
	now       func() time.Time
}

// NewToastManager creates an empty manager showing at most five toasts.
func NewToastManager() *ToastManager {
	return &ToastManager{
		nextID:    1,
		maxToasts: 5,
		now:       time.Now,
	}
}

func (m *ToastManager) add(kind ToastKind, message string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := Toast{
		ID:        m.nextID,
		Message:   message,
		Kind:      kind,
		CreatedAt: m.now(),
		Duration:  d,
	}
	m.nextID++

	m.toasts = append([]Toast{t}, m.toasts...)
	if len(m.toasts) > m.maxToasts {
		m.toasts = m.toasts[:m.maxToasts]
	}
}

// Error shows an error toast.
func (m *ToastManager) Error(message string) {
	m.add(ToastKindError, message, ErrorToastDuration)
}

// Success shows a success toast.
func (m *ToastManager) Success(message string) {
	m.add(ToastKindSuccess, message, DefaultToastDuration)
}

// Status shows an informational toast.
func (m *ToastManager) Status(message string) {
	m.add(ToastKindStatus, message, DefaultToastDuration)
}

// Prune drops expired toasts and reports whether any remain visible.
func (m *ToastManager) Prune() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.IsExpired(now) {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
	return len(m.toasts) > 0
}

// Toasts returns a snapshot of the visible toasts, newest first.
func (m *ToastManager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Toast, len(m.toasts))
	copy(out, m.toasts)
	return out
}

// Clear dismisses all toasts.
func (m *ToastManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = nil
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the toast stack for the bottom-right corner. Returns an
// empty string when no toasts are visible.
func (m *ToastManager) View(maxWidth int) string {
	toasts := m.Toasts()
	if len(toasts) == 0 {
		return ""
	}
	if maxWidth < 20 {
		maxWidth = 20
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, renderToast(t, maxWidth))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

func renderToast(t Toast, maxWidth int) string {
	var border lipgloss.AdaptiveColor
	var label string

	switch t.Kind {
	case ToastKindError:
		border = styles.Rose
		label = styles.StatusIndicators.Error
	case ToastKindSuccess:
		border = styles.Emerald
		label = styles.StatusIndicators.Success
	default:
		border = styles.Primary
		label = styles.StatusIndicators.Info
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Foreground(styles.TextPrimary).
		Padding(0, 1).
		MaxWidth(maxWidth).
		Render(label + " " + t.Message)
}
