// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/soulsense/soulsense-tui/internal/idle"
	"github.com/soulsense/soulsense-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar renders the single-line footer: signed-in user, check-in
// streak, and the session state.
type StatusBar struct {
	width int

	username   string
	streakDays int
	session    idle.Snapshot
}

// NewStatusBar creates an empty status bar.
func NewStatusBar() StatusBar {
	return StatusBar{}
}

// SetWidth sets the render width.
func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

// SetUser sets the signed-in username (empty while logged out).
func (s *StatusBar) SetUser(username string) {
	s.username = username
}

// SetStreak sets the displayed check-in streak.
func (s *StatusBar) SetStreak(days int) {
	s.streakDays = days
}

// SetSession updates the session segment from a monitor snapshot.
func (s *StatusBar) SetSession(snap idle.Snapshot) {
	s.session = snap
}

// View renders the bar, truncated to the configured width.
func (s StatusBar) View() string {
	width := s.width
	if width == 0 {
		width = 80
	}

	left := s.leftSegment()
	right := s.rightSegment()

	// Truncate with runewidth so wide characters in usernames cannot
	// push the bar past the terminal edge.
	gap := width - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if gap < 1 {
		left = runewidth.Truncate(left, width-runewidth.StringWidth(right)-1, "…")
		gap = 1
	}

	line := left + lipgloss.NewStyle().Render(padding(gap)) + right

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Width(width).
		Render(line)
}

func (s StatusBar) leftSegment() string {
	if s.username == "" {
		return " Soul Sense"
	}
	seg := fmt.Sprintf(" %s %s", styles.StatusIndicators.Active, s.username)
	if s.streakDays > 0 {
		seg += fmt.Sprintf("  streak %dd", s.streakDays)
	}
	return seg
}

func (s StatusBar) rightSegment() string {
	switch s.session.State {
	case idle.StateWarning:
		return fmt.Sprintf("%s expires in %s ", styles.StatusIndicators.Warning,
			FormatCountdown(s.session.RemainingSeconds))
	case idle.StateExpired:
		return styles.StatusIndicators.Error + " expired "
	default:
		if s.username == "" {
			return ""
		}
		return styles.StatusIndicators.Success + " active "
	}
}

func padding(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
