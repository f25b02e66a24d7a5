// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"errors"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_CreateAndGetUser(t *testing.T) {
	s := openTestStore(t)

	id, err := s.CreateUser("alex", "hash123")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero user ID")
	}

	u, err := s.GetUser("alex")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if u.Username != "alex" || u.PasswordHash != "hash123" {
		t.Errorf("got user %+v", u)
	}
	if u.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if !u.LastLogin.IsZero() {
		t.Error("LastLogin should be zero before first login")
	}
}

func TestStore_DuplicateUsername(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.CreateUser("alex", "h1"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	_, err := s.CreateUser("alex", "h2")
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("err = %v, want ErrUserExists", err)
	}
}

func TestStore_GetUserNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetUser("ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestStore_UpdateLastLogin(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.CreateUser("alex", "h"); err != nil {
		t.Fatal(err)
	}

	at := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	if err := s.UpdateLastLogin("alex", at); err != nil {
		t.Fatalf("UpdateLastLogin failed: %v", err)
	}

	u, err := s.GetUser("alex")
	if err != nil {
		t.Fatal(err)
	}
	if !u.LastLogin.Equal(at) {
		t.Errorf("LastLogin = %v, want %v", u.LastLogin, at)
	}

	if err := s.UpdateLastLogin("ghost", at); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestStore_TOTPSecret(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.CreateUser("alex", "h"); err != nil {
		t.Fatal(err)
	}

	if err := s.SetTOTPSecret("alex", "SECRET"); err != nil {
		t.Fatalf("SetTOTPSecret failed: %v", err)
	}
	u, err := s.GetUser("alex")
	if err != nil {
		t.Fatal(err)
	}
	if u.TOTPSecret != "SECRET" {
		t.Errorf("TOTPSecret = %q, want SECRET", u.TOTPSecret)
	}
}

func TestStore_MoodEntries(t *testing.T) {
	s := openTestStore(t)
	uid, err := s.CreateUser("alex", "h")
	if err != nil {
		t.Fatal(err)
	}

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for i, score := range []int{4, 7, 9} {
		e := &MoodEntry{
			ID:        string(rune('a' + i)),
			UserID:    uid,
			Score:     score,
			Note:      "note",
			Tags:      []string{"work", "sleep"},
			CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		}
		if err := s.InsertMoodEntry(e); err != nil {
			t.Fatalf("InsertMoodEntry failed: %v", err)
		}
	}

	entries, err := s.ListMoodEntries(uid, base)
	if err != nil {
		t.Fatalf("ListMoodEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	// Newest first.
	if entries[0].Score != 9 {
		t.Errorf("first entry score = %d, want 9", entries[0].Score)
	}
	if len(entries[0].Tags) != 2 || entries[0].Tags[0] != "work" {
		t.Errorf("tags = %v, want [work sleep]", entries[0].Tags)
	}

	// Since filter trims older entries.
	entries, err = s.ListMoodEntries(uid, base.Add(36*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("filtered entries = %d, want 1", len(entries))
	}
}

func TestStore_DeleteMoodEntry(t *testing.T) {
	s := openTestStore(t)
	uid, err := s.CreateUser("alex", "h")
	if err != nil {
		t.Fatal(err)
	}

	e := &MoodEntry{ID: "x", UserID: uid, Score: 5, CreatedAt: time.Now()}
	if err := s.InsertMoodEntry(e); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteMoodEntry(uid, "x"); err != nil {
		t.Fatalf("DeleteMoodEntry failed: %v", err)
	}
	if err := s.DeleteMoodEntry(uid, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	// Wrong owner must not delete.
	if err := s.InsertMoodEntry(e); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteMoodEntry(uid+1, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-user delete err = %v, want ErrNotFound", err)
	}
}
