// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package roster holds the cast of characters available in the chat.
//
// The built-in cast ships with the binary; user-created characters are merged
// into the same registry and become immediately visible to the line
// classifier and the prompt builders.
package roster

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicateHandle is returned by Add when the handle is already taken.
// Handle comparison is case-sensitive and exact.
var ErrDuplicateHandle = errors.New("handle already exists")

// =============================================================================
// CHARACTER PROFILE
// =============================================================================

// CharacterProfile describes a single chat identity. Profiles are immutable
// once registered.
type CharacterProfile struct {
	// Handle is the unique, stable chat nickname ("Knux", "omega bot").
	Handle string `json:"handle"`

	// Color is an opaque style token resolved by the styles package.
	Color string `json:"color"`

	// Avatar is the short glyph shown in the avatar badge, at most two chars.
	Avatar string `json:"avatar"`

	// Personality is free text describing custom characters. Empty for the
	// built-in cast, whose personalities live in the fixed lore block.
	Personality string `json:"personality,omitempty"`
}

// =============================================================================
// BUILT-IN CAST
// =============================================================================

// BuiltinCast is the fixed roster the simulation ships with.
var BuiltinCast = []CharacterProfile{
	{Handle: "GottaGoFast", Color: "blue", Avatar: "GF"},
	{Handle: "TheFinalBraincell", Color: "yellow", Avatar: "TB"},
	{Handle: "Knux", Color: "red", Avatar: "KN"},
	{Handle: "Ames", Color: "pink", Avatar: "AM"},
	{Handle: "TheUltimateLifeform", Color: "crimson", Avatar: "UL"},
	{Handle: "Dark", Color: "crimson", Avatar: "DA"},
	{Handle: "Batty", Color: "purple", Avatar: "BA"},
	{Handle: "firegrl", Color: "fuchsia", Avatar: "FG"},
	{Handle: "muffinknife", Color: "cyan", Avatar: "MK"},
	{Handle: "omega bot", Color: "gray", Avatar: "OB"},
	{Handle: "Faker", Color: "sky", Avatar: "FK"},
	{Handle: "Maria", Color: "gold", Avatar: "MA"},
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry is the ordered catalog of all known characters.
type Registry struct {
	mu       sync.RWMutex
	profiles []CharacterProfile
	byHandle map[string]int
	builtin  map[string]bool
}

// NewRegistry creates a registry seeded with the built-in cast.
func NewRegistry() *Registry {
	r := &Registry{
		byHandle: make(map[string]int),
		builtin:  make(map[string]bool),
	}
	for _, p := range BuiltinCast {
		r.byHandle[p.Handle] = len(r.profiles)
		r.profiles = append(r.profiles, p)
		r.builtin[p.Handle] = true
	}
	return r
}

// ListAll returns every profile in registration order.
func (r *Registry) ListAll() []CharacterProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CharacterProfile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// Lookup returns the profile for a handle, if registered.
func (r *Registry) Lookup(handle string) (CharacterProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byHandle[handle]
	if !ok {
		return CharacterProfile{}, false
	}
	return r.profiles[idx], true
}

// Has reports whether a handle is registered.
func (r *Registry) Has(handle string) bool {
	_, ok := r.Lookup(handle)
	return ok
}

// Add registers a new profile. Fails with ErrDuplicateHandle if the handle is
// already taken; the registry is unchanged on failure. There is no removal.
func (r *Registry) Add(profile CharacterProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byHandle[profile.Handle]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHandle, profile.Handle)
	}
	r.byHandle[profile.Handle] = len(r.profiles)
	r.profiles = append(r.profiles, profile)
	return nil
}

// IsBuiltin reports whether the handle belongs to the shipped cast.
func (r *Registry) IsBuiltin(handle string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.builtin[handle]
}

// Custom returns the user-created profiles in registration order.
func (r *Registry) Custom() []CharacterProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []CharacterProfile
	for _, p := range r.profiles {
		if !r.builtin[p.Handle] {
			out = append(out, p)
		}
	}
	return out
}
