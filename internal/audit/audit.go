// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audit provides an append-only event log for Soul Sense
// session and authentication activity.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// DefaultMaxFileSize is the max log size before rotation (5MB).
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

// =============================================================================
// EVENT
// =============================================================================

// Event is a single audit log entry.
type Event struct {
	Timestamp time.Time
	EventType string
	User      string
	Metadata  map[string]string
}

// ToLogLine formats the event as a single pipe-delimited log line.
// Metadata keys are sorted so lines are stable.
func (e *Event) ToLogLine() string {
	timestamp := e.Timestamp.UTC().Format("2006-01-02 15:04:05")

	keys := make([]string, 0, len(e.Metadata))
	for k := range e.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+e.Metadata[k])
	}

	return fmt.Sprintf("%s | %s | user=%s | %s",
		timestamp, e.EventType, e.User, strings.Join(pairs, " "))
}

// =============================================================================
// LOGGER
// =============================================================================

// Logger appends events to a file, rotating when it grows past the
// size limit. All methods are safe for concurrent use.
type Logger struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	maxSize int64
	enabled bool
	now     func() time.Time
}

// NewLogger opens (creating if needed) the audit log at path.
func NewLogger(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &Logger{
		path:    path,
		file:    f,
		maxSize: DefaultMaxFileSize,
		enabled: true,
		now:     time.Now,
	}, nil
}

// Log appends one event. Disabled loggers drop events silently.
func (l *Logger) Log(eventType, user string, metadata map[string]string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || l.file == nil {
		return nil
	}

	e := Event{
		Timestamp: l.now(),
		EventType: eventType,
		User:      user,
		Metadata:  metadata,
	}
	if _, err := l.file.WriteString(e.ToLogLine() + "\n"); err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return l.checkRotationLocked()
}

// checkRotationLocked rotates the file once it exceeds the size limit.
// Callers must hold l.mu.
func (l *Logger) checkRotationLocked() error {
	info, err := l.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < l.maxSize {
		return nil
	}
	return l.rotateLocked()
}

// rotateLocked renames the current file to .old (replacing any prior
// rotation) and starts a fresh one. Callers must hold l.mu.
func (l *Logger) rotateLocked() error {
	if err := l.file.Close(); err != nil {
		return err
	}
	if err := os.Rename(l.path, l.path+".old"); err != nil {
		return fmt.Errorf("rotate audit log: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("reopen audit log: %w", err)
	}
	l.file = f
	return nil
}

// SetMaxSize overrides the rotation threshold.
func (l *Logger) SetMaxSize(size int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maxSize = size
}

// SetEnabled toggles event recording.
func (l *Logger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

// Path returns the log file location.
func (l *Logger) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// Close flushes and closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
