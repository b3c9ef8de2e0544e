// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines all Bubble Tea message types used by the chat interface.
// Messages are organized into the following categories:
//   - Streaming: Lines arriving from the demultiplexer, completion, errors
//   - Proactive: The idle scheduler's fire signal
//   - Persistence: Best-effort save results
//
// All message types follow Bubble Tea conventions and are immutable.
package chat

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// LinesAppendedMsg signals that new messages were appended to a chat's log.
// Sent by the conversation store's append observer, which runs on stream
// consumption goroutines.
type LinesAppendedMsg struct {
	ChatID string
}

// StreamDoneMsg signals that a response stream was fully consumed.
type StreamDoneMsg struct {
	ChatID string
}

// StreamErrMsg signals that a response stream failed mid-flight. Messages
// appended before the failure stay in the log.
type StreamErrMsg struct {
	ChatID string
	Err    error
}

// =============================================================================
// PROACTIVE MESSAGES
// =============================================================================

// ProactiveFireMsg signals that the idle timer elapsed and the cast should
// speak up unprompted. Delivered through the event channel because the timer
// fires off the update loop.
type ProactiveFireMsg struct{}

// =============================================================================
// PERSISTENCE MESSAGES
// =============================================================================

// SaveFailedMsg reports a failed background save. The session keeps running;
// the failure surfaces as a dismissible notice.
type SaveFailedMsg struct {
	Err error
}
