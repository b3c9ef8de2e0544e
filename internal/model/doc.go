// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chats and messages.
//
// A ChatID names an append-only message log inside the ConversationStore.
// There is exactly one group chat (GroupChatID); every other log belongs to
// a direct-message channel keyed deterministically by (user, partner).
package model
