// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestCharacterColorKnownTokens(t *testing.T) {
	for _, token := range ColorTokens() {
		c := CharacterColor(token)
		if c.Light == "" || c.Dark == "" {
			t.Errorf("Token %q resolves to an incomplete color: %+v", token, c)
		}
		if !IsColorToken(token) {
			t.Errorf("ColorTokens lists %q but IsColorToken rejects it", token)
		}
	}
}

func TestCharacterColorUnknownFallsBack(t *testing.T) {
	got := CharacterColor("chartreuse")
	if got != TextSecondary {
		t.Errorf("Unknown token must fall back to TextSecondary, got %+v", got)
	}
	if IsColorToken("chartreuse") {
		t.Error("IsColorToken must reject unknown tokens")
	}
}

func TestBuiltinCastColorsResolve(t *testing.T) {
	// Every color used by the shipped roster must be a real token.
	used := []string{"blue", "yellow", "red", "pink", "crimson", "purple", "fuchsia", "cyan", "gray", "sky", "gold"}
	for _, token := range used {
		if !IsColorToken(token) {
			t.Errorf("Roster color %q is not a known token", token)
		}
	}
}
