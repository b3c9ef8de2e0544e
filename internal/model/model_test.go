// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewCharacterMessage(t *testing.T) {
	msg := NewCharacterMessage("Knux", "hey there")

	if msg.Author != "Knux" {
		t.Errorf("Expected author 'Knux', got '%s'", msg.Author)
	}
	if msg.Kind != KindCharacter {
		t.Errorf("Expected character kind, got '%s'", msg.Kind)
	}
	if msg.ID == "" {
		t.Error("Expected a generated message ID")
	}
}

func TestNewSystemMessage(t *testing.T) {
	msg := NewSystemMessage("*Dark has left the chat*")

	if msg.Author != SystemAuthor {
		t.Errorf("Expected author '%s', got '%s'", SystemAuthor, msg.Author)
	}
	if !msg.IsSystem() {
		t.Error("Expected system message")
	}
}

func TestMessageWordCount(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"hey guts you like my group chat", 7},
		{"  spaced   out \n words ", 3},
	}

	for _, tt := range tests {
		msg := NewCharacterMessage("GottaGoFast", tt.content)
		if got := msg.WordCount(); got != tt.want {
			t.Errorf("WordCount(%q) = %d, want %d", tt.content, got, tt.want)
		}
	}

	var nilMsg *Message
	if nilMsg.WordCount() != 0 {
		t.Error("nil message should have zero words")
	}
}

func TestMessageExcerpt(t *testing.T) {
	msg := NewCharacterMessage("Batty", "a secret worth keeping")
	if got := msg.Excerpt(8); got != "a secret" {
		t.Errorf("Excerpt(8) = %q", got)
	}
	if got := msg.Excerpt(100); got != msg.Content {
		t.Errorf("Excerpt(100) should return full content, got %q", got)
	}
}

// =============================================================================
// CONVERSATION STORE TESTS
// =============================================================================

func TestAppendPreservesOrder(t *testing.T) {
	store := NewConversationStore()

	store.Append(GroupChatID, NewCharacterMessage("Knux", "first"))
	store.Append(GroupChatID,
		NewSystemMessage("*Knux has joined the chat*"),
		NewCharacterMessage("Knux", "second"),
	)

	log := store.Get(GroupChatID)
	if len(log) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(log))
	}
	if log[0].Content != "first" || log[1].Content != "*Knux has joined the chat*" || log[2].Content != "second" {
		t.Errorf("Append order not preserved: %v, %v, %v", log[0].Content, log[1].Content, log[2].Content)
	}
}

func TestGetUnknownChatIsEmpty(t *testing.T) {
	store := NewConversationStore()
	if log := store.Get("nope"); len(log) != 0 {
		t.Errorf("Expected empty log for unknown chat, got %d messages", len(log))
	}
}

func TestAppendNotifiesObserver(t *testing.T) {
	store := NewConversationStore()

	var notified []string
	store.SetOnAppend(func(chatID string) {
		notified = append(notified, chatID)
	})

	store.Append(GroupChatID, NewCharacterMessage("Ames", "hi!!"))
	if len(notified) != 1 || notified[0] != GroupChatID {
		t.Errorf("Expected one observer call for %q, got %v", GroupChatID, notified)
	}
}

func TestTailFiltersAndOrders(t *testing.T) {
	store := NewConversationStore()
	store.Append(GroupChatID,
		NewCharacterMessage("Knux", "one"),
		NewSystemMessage("*event*"),
		NewCharacterMessage("Ames", "two"),
		NewCharacterMessage("Dark", "three"),
	)

	tail := store.Tail(GroupChatID, KindCharacter, 2)
	if len(tail) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(tail))
	}
	if tail[0].Content != "two" || tail[1].Content != "three" {
		t.Errorf("Tail should be oldest-first: got %q, %q", tail[0].Content, tail[1].Content)
	}
}

func TestLastByKind(t *testing.T) {
	store := NewConversationStore()
	store.Append(GroupChatID,
		NewCharacterMessage("Knux", "dialogue"),
		NewSystemMessage("*event*"),
	)

	last := store.Last(GroupChatID, KindCharacter)
	if last == nil || last.Content != "dialogue" {
		t.Errorf("Expected last character message 'dialogue', got %v", last)
	}
	if store.Last("empty", KindCharacter) != nil {
		t.Error("Expected nil for empty chat")
	}
}

// =============================================================================
// DM CHANNEL TESTS
// =============================================================================

func TestDmChannelIDDeterministic(t *testing.T) {
	a := DmChannelID("Knux", "Batty")
	b := DmChannelID("Knux", "Batty")
	if a != b {
		t.Errorf("Same pair must derive the same id: %s vs %s", a, b)
	}
	if DmChannelID("Batty", "Knux") == a {
		t.Error("User and partner are not interchangeable in the derivation")
	}
}

func TestCreateDmChannelIdempotent(t *testing.T) {
	store := NewConversationStore()

	first := store.CreateDmChannel("Batty", "Knux")
	store.Append(first.ID, NewCharacterMessage("Knux", "hey"))

	second := store.CreateDmChannel("Batty", "Knux")
	if first.ID != second.ID {
		t.Errorf("Expected the same channel id, got %s and %s", first.ID, second.ID)
	}
	if len(store.Channels()) != 1 {
		t.Errorf("Expected one channel, got %d", len(store.Channels()))
	}
	if len(store.Get(first.ID)) != 1 {
		t.Error("Re-creating a channel must not reset its log")
	}
}

// =============================================================================
// SPOKEN SET TESTS
// =============================================================================

func TestSpokenSetRebuild(t *testing.T) {
	set := NewSpokenSet()
	set.Add("Stale")

	set.Rebuild([]*Message{
		NewCharacterMessage("Knux", "hi"),
		NewSystemMessage("*Knux has joined the chat*"),
		NewCharacterMessage("Ames", "hello"),
		NewCharacterMessage("Knux", "again"),
	})

	if !set.Has("Knux") || !set.Has("Ames") {
		t.Error("Rebuild should include every character author")
	}
	if set.Has("Stale") {
		t.Error("Rebuild should discard prior state")
	}
	if set.Has("System") {
		t.Error("System events do not count as speaking")
	}
	if set.Len() != 2 {
		t.Errorf("Expected 2 speakers, got %d", set.Len())
	}
}
