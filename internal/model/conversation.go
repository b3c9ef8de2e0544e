// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sync"

	"github.com/google/uuid"
)

// GroupChatID is the well-known identifier of the single group chat.
const GroupChatID = "group"

// dmNamespace seeds the deterministic DM channel ids. Fixed so that the same
// (user, partner) pair maps to the same channel across restarts.
var dmNamespace = uuid.MustParse("8a0ff0d2-3f44-45b1-9b8f-2e1f5b7a6c03")

// =============================================================================
// DM CHANNELS
// =============================================================================

// DmChannel is a one-on-one conversation with a single partner handle.
type DmChannel struct {
	ID      string `json:"id"`
	Partner string `json:"partner"`
}

// DmChannelID derives the channel id for a (user, partner) pair. The
// derivation is deterministic, so at most one channel can exist per pair.
func DmChannelID(userHandle, partnerHandle string) string {
	return "dm_" + uuid.NewSHA1(dmNamespace, []byte(userHandle+"|"+partnerHandle)).String()
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore maps chat ids to append-only message logs and tracks the
// set of open DM channels.
//
// The store is mutated both from the Bubble Tea update loop and from stream
// consumption goroutines, so all access goes through a mutex. A multi-message
// Append is atomic: observers never see the first message without the second.
type ConversationStore struct {
	mu       sync.RWMutex
	logs     map[string][]*Message
	channels []DmChannel

	// onAppend, when set, is invoked (outside the lock) after every append so
	// the UI can refresh. It must not call back into the store synchronously
	// from the same goroutine while holding other locks.
	onAppend func(chatID string)
}

// NewConversationStore creates an empty store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		logs: make(map[string][]*Message),
	}
}

// SetOnAppend registers the append observer. Call before any streaming starts.
func (s *ConversationStore) SetOnAppend(fn func(chatID string)) {
	s.mu.Lock()
	s.onAppend = fn
	s.mu.Unlock()
}

// Get returns a snapshot of the chat's log, empty if the chat is unknown.
func (s *ConversationStore) Get(chatID string) []*Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.logs[chatID]
	out := make([]*Message, len(log))
	copy(out, log)
	return out
}

// Len returns the number of messages in a chat without copying.
func (s *ConversationStore) Len(chatID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs[chatID])
}

// Last returns the most recent message of the given kind, or nil.
func (s *ConversationStore) Last(chatID string, kind Kind) *Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.logs[chatID]
	for i := len(log) - 1; i >= 0; i-- {
		if log[i].Kind == kind {
			return log[i]
		}
	}
	return nil
}

// Tail returns up to n most recent messages of the given kind, oldest first.
func (s *ConversationStore) Tail(chatID string, kind Kind, n int) []*Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.logs[chatID]
	out := make([]*Message, 0, n)
	for i := len(log) - 1; i >= 0 && len(out) < n; i-- {
		if log[i].Kind == kind {
			out = append(out, log[i])
		}
	}
	// collected newest-first; reverse to oldest-first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Append adds one or more messages to a chat's log, creating the log on first
// use. Prior order is always preserved; the batch becomes visible atomically.
func (s *ConversationStore) Append(chatID string, msgs ...*Message) {
	if len(msgs) == 0 {
		return
	}
	s.mu.Lock()
	s.logs[chatID] = append(s.logs[chatID], msgs...)
	fn := s.onAppend
	s.mu.Unlock()

	if fn != nil {
		fn(chatID)
	}
}

// Replace swaps in a complete log for a chat. Used when loading persisted
// state at startup.
func (s *ConversationStore) Replace(chatID string, msgs []*Message) {
	s.mu.Lock()
	s.logs[chatID] = msgs
	s.mu.Unlock()
}

// =============================================================================
// DM CHANNEL MANAGEMENT
// =============================================================================

// CreateDmChannel returns the DM channel for (user, partner), creating it and
// an empty log if none exists. Idempotent per pair.
func (s *ConversationStore) CreateDmChannel(partnerHandle, userHandle string) DmChannel {
	id := DmChannelID(userHandle, partnerHandle)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.channels {
		if ch.ID == id {
			return ch
		}
	}

	ch := DmChannel{ID: id, Partner: partnerHandle}
	s.channels = append(s.channels, ch)
	if _, ok := s.logs[id]; !ok {
		s.logs[id] = make([]*Message, 0)
	}
	return ch
}

// Channels returns the open DM channels in creation order.
func (s *ConversationStore) Channels() []DmChannel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]DmChannel, len(s.channels))
	copy(out, s.channels)
	return out
}

// SetChannels replaces the channel list. Used when loading persisted state.
func (s *ConversationStore) SetChannels(channels []DmChannel) {
	s.mu.Lock()
	s.channels = channels
	s.mu.Unlock()
}

// Channel looks up a DM channel by chat id.
func (s *ConversationStore) Channel(chatID string) (DmChannel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.channels {
		if ch.ID == chatID {
			return ch, true
		}
	}
	return DmChannel{}, false
}

// Snapshot returns a copy of every log keyed by chat id, for persistence.
func (s *ConversationStore) Snapshot() map[string][]*Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]*Message, len(s.logs))
	for id, log := range s.logs {
		cp := make([]*Message, len(log))
		copy(cp, log)
		out[id] = cp
	}
	return out
}
