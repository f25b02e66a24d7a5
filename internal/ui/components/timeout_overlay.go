// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the Soul Sense TUI.
package components

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/soulsense/soulsense-tui/internal/idle"
	"github.com/soulsense/soulsense-tui/internal/ui/styles"
)

// =============================================================================
// SESSION TIMEOUT OVERLAY
// =============================================================================

// TimeoutOverlay displays the idle warning countdown and, once the
// session expires, the expiry notice.
type TimeoutOverlay struct {
	visible          bool
	remainingSeconds int
	expired          bool

	width  int
	height int
}

// NewTimeoutOverlay creates a hidden overlay.
func NewTimeoutOverlay() TimeoutOverlay {
	return TimeoutOverlay{}
}

// =============================================================================
// STATE MANAGEMENT
// =============================================================================

// SetSize sets the overlay dimensions.
func (o *TimeoutOverlay) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// ShowWarning displays the countdown with the given seconds remaining.
func (o *TimeoutOverlay) ShowWarning(remainingSeconds int) {
	o.visible = true
	o.expired = false
	o.remainingSeconds = remainingSeconds
}

// ShowExpired switches the overlay to the expired notice.
func (o *TimeoutOverlay) ShowExpired() {
	o.visible = true
	o.expired = true
	o.remainingSeconds = 0
}

// Hide dismisses the overlay.
func (o *TimeoutOverlay) Hide() {
	o.visible = false
	o.expired = false
}

// IsVisible returns whether the overlay is currently shown.
func (o *TimeoutOverlay) IsVisible() bool {
	return o.visible
}

// IsExpired returns whether the overlay is showing the expiry notice.
func (o *TimeoutOverlay) IsExpired() bool {
	return o.expired
}

// RemainingSeconds returns the displayed countdown value.
func (o *TimeoutOverlay) RemainingSeconds() int {
	return o.remainingSeconds
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// SessionExtendedMsg signals the user kept their session alive from the
// warning overlay.
type SessionExtendedMsg struct{}

// Update handles messages for the overlay. Any key press while the
// warning is visible extends the session; the expired notice only
// reacts to the parent model's navigation.
func (o TimeoutOverlay) Update(msg tea.Msg) (TimeoutOverlay, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		o.width = msg.Width
		o.height = msg.Height

	case tea.KeyMsg:
		if o.visible && !o.expired {
			o.Hide()
			return o, func() tea.Msg {
				return SessionExtendedMsg{}
			}
		}
	}

	return o, nil
}

// View renders the overlay, or an empty string while hidden.
func (o TimeoutOverlay) View() string {
	if !o.visible {
		return ""
	}
	if o.expired {
		return o.viewExpired()
	}
	return o.viewWarning()
}

// =============================================================================
// RENDER METHODS
// =============================================================================

func (o TimeoutOverlay) viewWarning() string {
	width, height, maxWidth := o.frame()

	timeStr := FormatCountdown(o.remainingSeconds)

	var parts []string

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.Amber).
		Bold(true)
	parts = append(parts, titleStyle.Render(styles.StatusIndicators.Warning+" Still there?"))

	parts = append(parts, "")

	timeStyle := lipgloss.NewStyle().
		Foreground(styles.Amber).
		Bold(true)
	msgStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(maxWidth - 4).
		Align(lipgloss.Center)
	parts = append(parts, msgStyle.Render(
		"Your session will expire in "+timeStyle.Render(timeStr)))

	parts = append(parts, "")

	hintStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Italic(true).
		Align(lipgloss.Center)
	parts = append(parts, hintStyle.Render("Press any key to continue your session"))

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)

	boxStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.Amber).
		Padding(1, 3).
		Width(maxWidth).
		Align(lipgloss.Center)

	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Render(content),
		lipgloss.WithWhitespaceBackground(styles.SurfaceDim),
	)
}

func (o TimeoutOverlay) viewExpired() string {
	width, height, maxWidth := o.frame()

	var parts []string

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.Rose).
		Bold(true)
	parts = append(parts, titleStyle.Render(styles.StatusIndicators.Error+" Session Expired"))

	parts = append(parts, "")

	msgStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(maxWidth - 4).
		Align(lipgloss.Center)
	parts = append(parts, msgStyle.Render(idle.ExpiredMessage))

	parts = append(parts, "")

	hintStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Align(lipgloss.Center)
	parts = append(parts, hintStyle.Render("Returning to the login screen."))

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)

	boxStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.Rose).
		Padding(1, 3).
		Width(maxWidth).
		Align(lipgloss.Center)

	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Render(content),
		lipgloss.WithWhitespaceBackground(styles.SurfaceDim),
	)
}

// frame resolves render dimensions, defaulting to an 80x24 terminal.
func (o TimeoutOverlay) frame() (width, height, maxWidth int) {
	width = o.width
	if width == 0 {
		width = 80
	}
	height = o.height
	if height == 0 {
		height = 24
	}

	maxWidth = width - 8
	if maxWidth < 40 {
		maxWidth = 40
	}
	if maxWidth > 60 {
		maxWidth = 60
	}
	return width, height, maxWidth
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// FormatCountdown formats seconds as M:SS for the countdown display.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
