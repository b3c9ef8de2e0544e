// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// MESSAGE KIND
// =============================================================================

// Kind classifies a message as dialogue or a chat event.
type Kind string

const (
	// KindCharacter is a line of dialogue attributed to a character handle.
	KindCharacter Kind = "character"

	// KindSystem is a chat event or notice ("*Dark has left the chat*",
	// connection errors, synthesized join events).
	KindSystem Kind = "system"
)

// SystemAuthor is the author recorded on every system message.
const SystemAuthor = "System"

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single line in a chat log. Messages are immutable after
// creation; ordering is the order of appearance in their owning log.
type Message struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"` // SystemAuthor or a character handle
	Content   string    `json:"content"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCharacterMessage creates a dialogue message attributed to a handle.
func NewCharacterMessage(author, content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Author:    author,
		Content:   content,
		Kind:      KindCharacter,
		Timestamp: time.Now(),
	}
}

// NewSystemMessage creates a system event message.
func NewSystemMessage(content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Author:    SystemAuthor,
		Content:   content,
		Kind:      KindSystem,
		Timestamp: time.Now(),
	}
}

// IsSystem reports whether the message is a chat event rather than dialogue.
func (m *Message) IsSystem() bool {
	return m.Kind == KindSystem
}

// WordCount returns the number of whitespace-separated words in the content.
// Used by the proactivity scheduler to estimate reading time.
func (m *Message) WordCount() int {
	if m == nil {
		return 0
	}
	n := 0
	inWord := false
	for _, r := range m.Content {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}

// Excerpt returns the content truncated to maxLen runes.
func (m *Message) Excerpt(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	return string(runes[:maxLen])
}
