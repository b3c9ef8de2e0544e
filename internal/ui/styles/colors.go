// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the castaway TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// SurfaceDim - Slightly darker/lighter surface for headers/footers
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}

// Overlay - Borders, separators, subtle backgrounds
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextSecondary - Labels, less prominent text
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

// TextMuted - Hints, timestamps, system events
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// TextInverse - Text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Accent - Selections, the focused channel, the input cursor line
var Accent = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Rose - Errors and failed sends
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Emerald - The "online" presence dot and success notices
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// =============================================================================
// CHARACTER COLORS
// =============================================================================

// characterColors maps a profile's named color token to its terminal color.
// Tokens are stable identifiers saved with custom characters, so renaming one
// breaks persisted rosters.
var characterColors = map[string]lipgloss.AdaptiveColor{
	"blue":    {Light: "#2563EB", Dark: "#60A5FA"},
	"yellow":  {Light: "#CA8A04", Dark: "#FACC15"},
	"red":     {Light: "#DC2626", Dark: "#F87171"},
	"pink":    {Light: "#DB2777", Dark: "#F472B6"},
	"crimson": {Light: "#B91C1C", Dark: "#EF4444"},
	"purple":  {Light: "#7C3AED", Dark: "#A78BFA"},
	"fuchsia": {Light: "#C026D3", Dark: "#E879F9"},
	"cyan":    {Light: "#0891B2", Dark: "#22D3EE"},
	"gray":    {Light: "#6B7280", Dark: "#9CA3AF"},
	"sky":     {Light: "#0284C7", Dark: "#38BDF8"},
	"gold":    {Light: "#B45309", Dark: "#FBBF24"},
	"green":   {Light: "#059669", Dark: "#34D399"},
	"orange":  {Light: "#EA580C", Dark: "#FB923C"},
}

// CharacterColor resolves a profile color token to a terminal color. Unknown
// tokens fall back to the secondary text color rather than failing.
func CharacterColor(token string) lipgloss.AdaptiveColor {
	if c, ok := characterColors[token]; ok {
		return c
	}
	return TextSecondary
}

// ColorTokens returns the valid color token names for custom character
// creation, in a stable order.
func ColorTokens() []string {
	return []string{
		"blue", "yellow", "red", "pink", "crimson", "purple",
		"fuchsia", "cyan", "gray", "sky", "gold", "green", "orange",
	}
}

// IsColorToken reports whether token names a known character color.
func IsColorToken(token string) bool {
	_, ok := characterColors[token]
	return ok
}
