// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/muesli/termenv"

	"github.com/castaway-chat/castaway-tui/internal/util"
)

// notificationBodyWidth caps how much dialogue goes into a notification.
const notificationBodyWidth = 120

// =============================================================================
// TERMINAL NOTIFICATIONS
// =============================================================================

// TermNotifier raises desktop notifications through the terminal's OSC 777
// escape. It fires only while notifications are enabled AND the terminal is
// unfocused; a focused user is already looking at the message.
type TermNotifier struct {
	output  *termenv.Output
	enabled func() bool
	focused func() bool
}

// NewTermNotifier creates a notifier writing to the default terminal output.
func NewTermNotifier(enabled, focused func() bool) *TermNotifier {
	return &TermNotifier{
		output:  termenv.DefaultOutput(),
		enabled: enabled,
		focused: focused,
	}
}

// Fire implements demux.Notifier. Reports whether a notification was raised.
func (n *TermNotifier) Fire(author, content string) bool {
	if !n.enabled() || n.focused() {
		return false
	}
	n.output.Notify(author, util.TruncateWidth(content, notificationBodyWidth))
	return true
}
