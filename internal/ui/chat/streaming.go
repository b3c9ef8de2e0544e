// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/castaway-chat/castaway-tui/internal/gemini"
	"github.com/castaway-chat/castaway-tui/internal/model"
	"github.com/castaway-chat/castaway-tui/internal/prompt"
)

// =============================================================================
// SEND PATHS
// =============================================================================

// sendGroup posts the user's message to the group chat and starts the model
// response stream. One request is in flight at a time; the busy flag is set
// by the caller's update path before the command runs.
func (m *Model) sendGroup(text string) tea.Cmd {
	if m.session == nil {
		m.notice = "You are offline; messages cannot be sent."
		return nil
	}

	m.store.Append(model.GroupChatID, model.NewCharacterMessage(m.userHandle, text))

	ctx, cancel := context.WithCancel(context.Background())
	m.busy = true
	m.stop = cancel
	m.recomputeProactive() // busy: cancels the idle timer

	session, dmx, handle := m.session, m.dmx, m.userHandle
	return func() tea.Msg {
		stream, err := session.SendStreaming(ctx, handle+": "+text)
		if err != nil {
			return StreamErrMsg{ChatID: model.GroupChatID, Err: err}
		}
		if err := dmx.Consume(ctx, stream, model.GroupChatID, ""); err != nil {
			return StreamErrMsg{ChatID: model.GroupChatID, Err: err}
		}
		return StreamDoneMsg{ChatID: model.GroupChatID}
	}
}

// sendDM posts the user's message to a DM channel. DMs are stateless
// one-shot requests: the system prompt carries the partner's persona plus a
// window of group context, and the request history is rebuilt from the DM log.
func (m *Model) sendDM(chatID, partner, text string) tea.Cmd {
	if m.client == nil {
		m.notice = "You are offline; messages cannot be sent."
		return nil
	}

	m.store.Append(chatID, model.NewCharacterMessage(m.userHandle, text))

	ctx, cancel := context.WithCancel(context.Background())
	m.busy = true
	m.stop = cancel

	system := prompt.BuildDMSystemPrompt(partner, m.userHandle, m.store.Get(model.GroupChatID))
	contents := buildDMContents(m, chatID)
	client, dmx, cfgModel := m.client, m.dmx, m.cfg.Gemini.Model

	return func() tea.Msg {
		stream, err := client.GenerateStreaming(ctx, cfgModel, system, contents)
		if err != nil {
			return StreamErrMsg{ChatID: chatID, Err: err}
		}
		if err := dmx.Consume(ctx, stream, chatID, partner); err != nil {
			return StreamErrMsg{ChatID: chatID, Err: err}
		}
		return StreamDoneMsg{ChatID: chatID}
	}
}

// sendProactive injects a director's note into the group session so the cast
// talks among themselves. Nothing user-visible is appended for the note
// itself; only the streamed response shows up.
func (m *Model) sendProactive() tea.Cmd {
	if !m.proactiveReady() {
		return nil
	}

	recent := m.store.Tail(model.GroupChatID, model.KindCharacter, 10)
	directive := prompt.BuildProactivePrompt(recent, m.reg, m.userHandle, m.rng)

	ctx, cancel := context.WithCancel(context.Background())
	m.busy = true
	m.stop = cancel

	session, dmx := m.session, m.dmx
	return func() tea.Msg {
		stream, err := session.SendStreaming(ctx, directive)
		if err != nil {
			return StreamErrMsg{ChatID: model.GroupChatID, Err: err}
		}
		if err := dmx.Consume(ctx, stream, model.GroupChatID, ""); err != nil {
			return StreamErrMsg{ChatID: model.GroupChatID, Err: err}
		}
		return StreamDoneMsg{ChatID: model.GroupChatID}
	}
}

// buildDMContents rebuilds the request history from the DM log. The log ends
// with the user message just appended, which becomes the request's final turn.
func buildDMContents(m *Model, chatID string) []gemini.Content {
	return gemini.BuildHistory(m.historyTurns(chatID))
}

// cancelStream aborts the in-flight response, if any. Already-appended lines
// stay in the log.
func (m *Model) cancelStream() {
	if m.stop != nil {
		m.stop()
	}
}

// persist saves the current conversations, channels, and roster in the
// background. Failures surface as a notice but never interrupt the chat.
func (m *Model) persist() tea.Cmd {
	if m.db == nil {
		return nil
	}
	db := m.db
	logs := m.store.Snapshot()
	channels := m.store.Channels()
	profiles := m.reg.ListAll()
	return func() tea.Msg {
		if err := db.SaveConversations(logs); err != nil {
			return SaveFailedMsg{Err: err}
		}
		if err := db.SaveDmChannels(channels); err != nil {
			return SaveFailedMsg{Err: err}
		}
		if err := db.SaveRoster(profiles); err != nil {
			return SaveFailedMsg{Err: err}
		}
		return nil
	}
}
