// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/soulsense/soulsense-tui/internal/idle"
)

func newTestToastManager() (*ToastManager, *time.Time) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	m := NewToastManager()
	m.now = func() time.Time { return now }
	return m, &now
}

func TestToastManager_ImplementsNotifier(t *testing.T) {
	var _ idle.Notifier = NewToastManager()
}

func TestToastManager_NewestFirst(t *testing.T) {
	m, _ := newTestToastManager()

	m.Error("first")
	m.Success("second")

	toasts := m.Toasts()
	if len(toasts) != 2 {
		t.Fatalf("toasts = %d, want 2", len(toasts))
	}
	if toasts[0].Message != "second" || toasts[1].Message != "first" {
		t.Errorf("order = [%s %s], want newest first", toasts[0].Message, toasts[1].Message)
	}
	if toasts[0].Kind != ToastKindSuccess || toasts[1].Kind != ToastKindError {
		t.Error("toast kinds not preserved")
	}
}

func TestToastManager_CapsVisibleToasts(t *testing.T) {
	m, _ := newTestToastManager()

	for i := 0; i < 8; i++ {
		m.Status(fmt.Sprintf("toast %d", i))
	}
	if got := len(m.Toasts()); got != 5 {
		t.Errorf("visible toasts = %d, want 5", got)
	}
}

func TestToastManager_PruneExpired(t *testing.T) {
	m, now := newTestToastManager()

	m.Success("short")
	m.Error("long")

	*now = now.Add(DefaultToastDuration + time.Second)
	if !m.Prune() {
		t.Fatal("error toast should still be visible")
	}
	toasts := m.Toasts()
	if len(toasts) != 1 || toasts[0].Message != "long" {
		t.Errorf("toasts = %v, want only the error toast", toasts)
	}

	*now = now.Add(ErrorToastDuration)
	if m.Prune() {
		t.Error("all toasts should have expired")
	}
}

func TestToastManager_View(t *testing.T) {
	m, _ := newTestToastManager()

	if m.View(40) != "" {
		t.Error("empty manager should render nothing")
	}

	m.Error("something broke")
	view := m.View(40)
	if !strings.Contains(view, "something broke") {
		t.Error("view missing toast message")
	}

	m.Clear()
	if m.View(40) != "" {
		t.Error("cleared manager should render nothing")
	}
}
