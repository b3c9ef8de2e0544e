// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"strings"
)

// =============================================================================
// STATEFUL CHAT SESSION
// =============================================================================

// Session is a stateful multi-turn chat against one model with a fixed system
// instruction. Turns are committed to history only after their response
// stream completes successfully, so a failed send leaves history untouched.
//
// Sessions are not safe for concurrent sends; callers serialize sends (the UI
// enforces a single in-flight request).
type Session struct {
	client  *Client
	model   string
	system  string
	history []Content
}

// NewSession creates a chat session seeded with prior history.
func NewSession(client *Client, model, systemInstruction string, priorHistory []Content) *Session {
	history := make([]Content, len(priorHistory))
	copy(history, priorHistory)
	return &Session{
		client:  client,
		model:   model,
		system:  systemInstruction,
		history: history,
	}
}

// SendStreaming sends one user turn and returns the response stream. When the
// stream is drained to completion, the user turn and the accumulated model
// turn are appended to the session history.
func (s *Session) SendStreaming(ctx context.Context, text string) (*Stream, error) {
	contents := make([]Content, 0, len(s.history)+1)
	contents = append(contents, s.history...)
	contents = append(contents, NewContent(RoleUser, text))

	stream, err := s.client.GenerateStreaming(ctx, s.model, s.system, contents)
	if err != nil {
		return nil, err
	}

	stream.onDone = func(full string) {
		s.history = append(s.history, NewContent(RoleUser, text))
		if full != "" {
			s.history = append(s.history, NewContent(RoleModel, full))
		}
	}
	return stream, nil
}

// HistoryLen returns the number of committed turns.
func (s *Session) HistoryLen() int {
	return len(s.history)
}

// =============================================================================
// HISTORY SEEDING
// =============================================================================

// HistoryTurn is one attributed line used to seed a session from a persisted
// chat log.
type HistoryTurn struct {
	Author  string
	Content string
	IsUser  bool // true when the author is the acting user
}

// BuildHistory collapses attributed chat lines into alternating user/model
// turns. Consecutive lines that map to the same role merge into a single turn
// whose text is one "author: content" line per message.
func BuildHistory(turns []HistoryTurn) []Content {
	var history []Content
	var run []string
	var runIsUser bool

	flush := func() {
		if len(run) == 0 {
			return
		}
		role := RoleModel
		if runIsUser {
			role = RoleUser
		}
		history = append(history, NewContent(role, strings.Join(run, "\n")))
		run = nil
	}

	for _, t := range turns {
		if len(run) > 0 && t.IsUser != runIsUser {
			flush()
		}
		runIsUser = t.IsUser
		run = append(run, t.Author+": "+t.Content)
	}
	flush()
	return history
}
