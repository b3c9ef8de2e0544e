// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// SHARED STYLES
// =============================================================================

// Header bar across the top of the chat view.
var Header = lipgloss.NewStyle().
	Background(SurfaceDim).
	Foreground(TextPrimary).
	Bold(true).
	Padding(0, 1)

// HeaderStatus renders the member/presence summary inside the header.
var HeaderStatus = lipgloss.NewStyle().
	Foreground(TextMuted)

// Sidebar hosts the channel list.
var Sidebar = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderRight(true).
	BorderForeground(Overlay).
	Padding(0, 1)

// SidebarItem is an unselected channel row.
var SidebarItem = lipgloss.NewStyle().
	Foreground(TextSecondary)

// SidebarActive is the selected channel row.
var SidebarActive = lipgloss.NewStyle().
	Foreground(Accent).
	Bold(true)

// SidebarUnread marks channels with unseen activity.
var SidebarUnread = lipgloss.NewStyle().
	Foreground(Emerald).
	Bold(true)

// MessageAuthor renders a speaker's handle; the caller supplies the
// character color.
func MessageAuthor(color lipgloss.AdaptiveColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(color).Bold(true)
}

// MessageBody is the dialogue text itself.
var MessageBody = lipgloss.NewStyle().
	Foreground(TextPrimary)

// MessageTime renders the timestamp gutter.
var MessageTime = lipgloss.NewStyle().
	Foreground(TextMuted)

// SystemEvent renders "*... has joined the chat*" style lines.
var SystemEvent = lipgloss.NewStyle().
	Foreground(TextMuted).
	Italic(true)

// ErrorNotice is the inline failure banner (bad API key, dropped stream).
var ErrorNotice = lipgloss.NewStyle().
	Foreground(Rose).
	Bold(true)

// InputBox frames the message composer.
var InputBox = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(Overlay).
	Padding(0, 1)

// InputBoxFocused is the composer with keyboard focus.
var InputBoxFocused = InputBox.
	BorderForeground(Accent)

// TypingIndicator shows "someone is typing..." while a stream is live.
var TypingIndicator = lipgloss.NewStyle().
	Foreground(TextMuted).
	Italic(true)

// Avatar renders a two-letter avatar badge on the character's color.
func Avatar(color lipgloss.AdaptiveColor) lipgloss.Style {
	return lipgloss.NewStyle().
		Background(color).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)
}

// Title is used on the character select and create screens.
var Title = lipgloss.NewStyle().
	Foreground(Accent).
	Bold(true).
	Padding(1, 0)

// Subtle is de-emphasized helper text under prompts.
var Subtle = lipgloss.NewStyle().
	Foreground(TextMuted)
