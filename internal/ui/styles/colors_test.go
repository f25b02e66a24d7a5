// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestMoodColor(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{1, MoodStruggling.Dark},
		{2, MoodStruggling.Dark},
		{3, MoodLow.Dark},
		{5, MoodSteady.Dark},
		{7, MoodGood.Dark},
		{9, MoodThriving.Dark},
		{10, MoodThriving.Dark},
	}
	for _, tt := range tests {
		if got := MoodColor(tt.score); got.Dark != tt.want {
			t.Errorf("MoodColor(%d).Dark = %s, want %s", tt.score, got.Dark, tt.want)
		}
	}
}

func TestRenderHelpersIncludeIndicators(t *testing.T) {
	if !strings.Contains(RenderSuccess("saved"), StatusIndicators.Success) {
		t.Error("RenderSuccess missing indicator")
	}
	if !strings.Contains(RenderError("failed"), StatusIndicators.Error) {
		t.Error("RenderError missing indicator")
	}
	if !strings.Contains(RenderWarning("careful"), StatusIndicators.Warning) {
		t.Error("RenderWarning missing indicator")
	}
	if !strings.Contains(RenderInfo("note"), StatusIndicators.Info) {
		t.Error("RenderInfo missing indicator")
	}
	if !strings.Contains(RenderSuccess("saved"), "saved") {
		t.Error("RenderSuccess missing message")
	}
}
