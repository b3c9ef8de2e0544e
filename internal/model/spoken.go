// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "sync"

// =============================================================================
// SPOKEN SET
// =============================================================================

// SpokenSet tracks which character handles have produced at least one
// character message in the group chat during this session. The stream
// demultiplexer consults it to decide whether a "has joined the chat" event
// must be synthesized before a character's first line.
//
// The set is always derivable from the group log (Rebuild); it is kept
// incrementally between rebuilds as a cache.
type SpokenSet struct {
	mu      sync.Mutex
	handles map[string]struct{}
}

// NewSpokenSet creates an empty set.
func NewSpokenSet() *SpokenSet {
	return &SpokenSet{handles: make(map[string]struct{})}
}

// Has reports whether the handle has already spoken.
func (s *SpokenSet) Has(handle string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.handles[handle]
	return ok
}

// Add marks a handle as having spoken.
func (s *SpokenSet) Add(handle string) {
	s.mu.Lock()
	s.handles[handle] = struct{}{}
	s.mu.Unlock()
}

// Rebuild recomputes the set from a group chat log, discarding prior state.
func (s *SpokenSet) Rebuild(log []*Message) {
	fresh := make(map[string]struct{})
	for _, msg := range log {
		if msg.Kind == KindCharacter {
			fresh[msg.Author] = struct{}{}
		}
	}
	s.mu.Lock()
	s.handles = fresh
	s.mu.Unlock()
}

// Len returns the number of distinct handles that have spoken.
func (s *SpokenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}
