// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "testing"

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exactly at limit", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 8, "hello..."},
		{"tiny limit skips ellipsis", "hello", 2, "he"},
		{"zero limit", "hello", 0, ""},
		{"multibyte not split", "héllo wörld", 8, "héllo..."},
		{"emoji not split", "🦔🦔🦔🦔🦔", 4, "🦔..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.input, tt.maxRunes); got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.input, tt.maxRunes, got, tt.want)
			}
		})
	}
}

func TestTruncateWidthDoubleWidth(t *testing.T) {
	// Each CJK rune is 2 columns wide.
	got := TruncateWidth("日本語テスト", 7)
	if StringWidth(got) > 7 {
		t.Errorf("Truncated string is %d columns, want <= 7: %q", StringWidth(got), got)
	}
	if got == "日本語テスト" {
		t.Error("Expected truncation for a 12-column string at width 7")
	}
}

func TestTruncateWidthFits(t *testing.T) {
	if got := TruncateWidth("short", 20); got != "short" {
		t.Errorf("Expected no truncation, got %q", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("PadRight = %q, want %q", got, "ab   ")
	}
	if got := PadRight("toolong", 4); StringWidth(got) != 4 {
		t.Errorf("PadRight over-wide input = %q (%d cols), want 4 cols", got, StringWidth(got))
	}
}
