// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mood implements the Soul Sense mood journal: check-ins on a
// 1-10 scale with notes and tags, plus lightweight analytics (rolling
// average, daily streak, dominant mood).
package mood

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soulsense/soulsense-tui/internal/store"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// MinScore and MaxScore bound the mood scale.
	MinScore = 1
	MaxScore = 10

	// MaxNoteLength caps free-text notes.
	MaxNoteLength = 500

	// statsWindow is the rolling window for averages and dominant mood.
	statsWindow = 7 * 24 * time.Hour

	// streakLookback bounds how far back the streak scan goes.
	streakLookback = 365 * 24 * time.Hour
)

var (
	ErrScoreOutOfRange = errors.New("mood score must be between 1 and 10")
	ErrNoteTooLong     = errors.New("note is too long")
)

// =============================================================================
// JOURNAL
// =============================================================================

// Journal records and summarizes mood check-ins.
type Journal struct {
	store *store.Store
	now   func() time.Time
}

// Option configures a Journal.
type Option func(*Journal)

// WithClock overrides the journal's clock for tests.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) { j.now = now }
}

// NewJournal creates a journal backed by st.
func NewJournal(st *store.Store, opts ...Option) *Journal {
	j := &Journal{store: st, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Add validates and persists a check-in.
func (j *Journal) Add(userID int64, score int, note string, tags []string) (*store.MoodEntry, error) {
	if score < MinScore || score > MaxScore {
		return nil, ErrScoreOutOfRange
	}
	note = strings.TrimSpace(note)
	if len(note) > MaxNoteLength {
		return nil, ErrNoteTooLong
	}

	clean := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.ToLower(tag))
		if tag != "" {
			clean = append(clean, tag)
		}
	}

	entry := &store.MoodEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Score:     score,
		Note:      note,
		Tags:      clean,
		CreatedAt: j.now(),
	}
	if err := j.store.InsertMoodEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Recent returns the user's check-ins from the past n days, newest first.
func (j *Journal) Recent(userID int64, days int) ([]store.MoodEntry, error) {
	since := j.now().Add(-time.Duration(days) * 24 * time.Hour)
	return j.store.ListMoodEntries(userID, since)
}

// Delete removes one of the user's check-ins.
func (j *Journal) Delete(userID int64, id string) error {
	return j.store.DeleteMoodEntry(userID, id)
}

// =============================================================================
// ANALYTICS
// =============================================================================

// Stats summarizes recent check-ins.
type Stats struct {
	// WeeklyAverage is the mean score over the 7-day window.
	WeeklyAverage float64

	// EntryCount is the number of check-ins in the window.
	EntryCount int

	// StreakDays is the current run of consecutive days with at least
	// one check-in, ending today (or yesterday if today is empty).
	StreakDays int

	// Dominant is the most frequent mood label in the window.
	Dominant string
}

// Stats computes the user's current summary.
func (j *Journal) Stats(userID int64) (Stats, error) {
	now := j.now()

	recent, err := j.store.ListMoodEntries(userID, now.Add(-statsWindow))
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	stats.EntryCount = len(recent)

	if len(recent) > 0 {
		total := 0
		counts := make(map[string]int)
		for _, e := range recent {
			total += e.Score
			counts[Label(e.Score)]++
		}
		stats.WeeklyAverage = float64(total) / float64(len(recent))

		best := 0
		for label, n := range counts {
			if n > best || (n == best && label < stats.Dominant) {
				best = n
				stats.Dominant = label
			}
		}
	}

	streak, err := j.streak(userID, now)
	if err != nil {
		return Stats{}, err
	}
	stats.StreakDays = streak
	return stats, nil
}

// streak counts consecutive days with a check-in, scanning backwards
// from today. A missing today does not break a run that ended yesterday.
func (j *Journal) streak(userID int64, now time.Time) (int, error) {
	entries, err := j.store.ListMoodEntries(userID, now.Add(-streakLookback))
	if err != nil {
		return 0, err
	}

	days := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		days[e.CreatedAt.UTC().Format("2006-01-02")] = struct{}{}
	}

	day := now.UTC()
	if _, ok := days[day.Format("2006-01-02")]; !ok {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for {
		if _, ok := days[day.Format("2006-01-02")]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}

// Label maps a score to its mood label.
func Label(score int) string {
	switch {
	case score <= 2:
		return "struggling"
	case score <= 4:
		return "low"
	case score <= 6:
		return "steady"
	case score <= 8:
		return "good"
	default:
		return "thriving"
	}
}
