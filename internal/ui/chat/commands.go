// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
)

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// CommandKind identifies a parsed slash command.
type CommandKind int

const (
	// CmdNone means the input is a plain chat message.
	CmdNone CommandKind = iota
	// CmdDM opens (or switches to) a direct message channel: /dm <handle>
	CmdDM
	// CmdGroup switches back to the group chat: /group
	CmdGroup
	// CmdCreate opens the custom character form: /create
	CmdCreate
	// CmdQuit exits the application: /quit
	CmdQuit
	// CmdUnknown is a slash command we do not recognize.
	CmdUnknown
)

// Command is one parsed input line.
type Command struct {
	Kind CommandKind
	// Arg carries the handle for /dm, or the unrecognized name for CmdUnknown.
	Arg string
}

// ParseCommand interprets an input line. Lines not starting with "/" are
// plain messages; "/" followed by an unknown word is surfaced as unknown so
// typos do not leak into the chat.
func ParseCommand(input string) Command {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") {
		return Command{Kind: CmdNone}
	}

	fields := strings.Fields(trimmed)
	name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))

	switch name {
	case "dm":
		arg := ""
		if len(fields) > 1 {
			// Handles may contain spaces ("omega bot").
			arg = strings.Join(fields[1:], " ")
		}
		return Command{Kind: CmdDM, Arg: arg}
	case "group", "g":
		return Command{Kind: CmdGroup}
	case "create", "new":
		return Command{Kind: CmdCreate}
	case "quit", "q", "exit":
		return Command{Kind: CmdQuit}
	default:
		return Command{Kind: CmdUnknown, Arg: name}
	}
}
