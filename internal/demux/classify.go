// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package demux

import (
	"regexp"
	"strings"
)

// =============================================================================
// LINE CLASSIFICATION
// =============================================================================

// LineKind tags the classification result of one complete line.
type LineKind int

const (
	// LineNoise is anything unrecognized. Dropped silently: the model drifts
	// in and out of the requested format and that is tolerated, not an error.
	LineNoise LineKind = iota

	// LineEvent is an asterisk-delimited chat event ("*Dark has left the chat*").
	LineEvent

	// LineAttributed is a dialogue line attributed to a registered handle.
	LineAttributed
)

// Line is the classification of one complete line.
type Line struct {
	Kind    LineKind
	Author  string // registered handle, LineAttributed only
	Content string // event: full line with asterisks; attributed: rest after "handle: "
}

var (
	// eventPattern matches a whole line wrapped in asterisks. No reliance on
	// the internal structure of the event text.
	eventPattern = regexp.MustCompile(`^\*(.*)\*$`)

	// attributedPattern matches "handle: rest" where the candidate handle is
	// letters, digits, spaces, and underscores. The rest may contain colons.
	attributedPattern = regexp.MustCompile(`(?s)^([A-Za-z0-9_ ]+): (.*)$`)
)

// Classify applies the classification rules to one complete line. Rules are
// checked in order and the first match wins:
//
//  1. blank / whitespace-only       -> noise
//  2. "*...*" full-line event       -> event
//  3. "handle: rest", handle known  -> attributed
//  4. anything else                 -> noise
//
// The event-before-attributed tie-break is a contract: a line like
// "*omega bot: BEEP*" is an event, never dialogue.
func Classify(line string, known func(handle string) bool) Line {
	if strings.TrimSpace(line) == "" {
		return Line{Kind: LineNoise}
	}

	if eventPattern.MatchString(line) {
		return Line{Kind: LineEvent, Content: line}
	}

	if m := attributedPattern.FindStringSubmatch(line); m != nil && known(m[1]) {
		return Line{Kind: LineAttributed, Author: m[1], Content: m[2]}
	}

	return Line{Kind: LineNoise}
}
