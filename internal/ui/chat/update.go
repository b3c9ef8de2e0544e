// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/castaway-chat/castaway-tui/internal/gemini"
	"github.com/castaway-chat/castaway-tui/internal/model"
	"github.com/castaway-chat/castaway-tui/internal/roster"
	"github.com/castaway-chat/castaway-tui/internal/ui/styles"
	"github.com/castaway-chat/castaway-tui/internal/util"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutViewport()
		m.refreshViewport(true)
		return m, nil

	case tea.FocusMsg:
		m.focused = true
		return m, nil

	case tea.BlurMsg:
		m.focused = false
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case LinesAppendedMsg:
		if msg.ChatID == m.activeChat {
			m.refreshViewport(true)
		} else {
			m.unread[msg.ChatID] = true
		}
		if msg.ChatID == model.GroupChatID {
			m.recomputeProactive()
		}
		return m, m.listen()

	case StreamDoneMsg:
		m.busy = false
		m.stop = nil
		m.recomputeProactive()
		return m, m.persist()

	case StreamErrMsg:
		m.busy = false
		m.stop = nil
		if text := describeStreamError(msg.Err); text != "" {
			m.notice = text
			// The failure lands in the conversation that was being sent to.
			m.store.Append(msg.ChatID, model.NewSystemMessage("*Something went wrong. "+text+"*"))
		}
		m.recomputeProactive()
		return m, m.persist()

	case ProactiveFireMsg:
		return m, tea.Batch(m.sendProactive(), m.listen())

	case SaveFailedMsg:
		m.notice = "Saving failed: " + msg.Err.Error()
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m, nil
}

// updateKeys routes keyboard input by screen.
func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.sched.Cancel()
		m.cancelStream()
		return m, tea.Quit
	}

	switch m.state {
	case statePickHandle:
		return m.updatePickHandle(msg)
	case stateCreateCharacter:
		return m.updateCreateCharacter(msg)
	default:
		return m.updateChat(msg)
	}
}

// =============================================================================
// HANDLE PICK SCREEN
// =============================================================================

func (m *Model) updatePickHandle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) {
		handle := strings.TrimSpace(m.input.Value())
		if handle == "" {
			return m, nil
		}
		if m.reg.Has(handle) {
			m.notice = "That handle belongs to a character; pick another."
			return m, nil
		}
		m.userHandle = handle
		m.state = stateChat
		m.input.Reset()
		m.input.Placeholder = "Message the island..."
		m.notice = ""
		m.initSession()
		m.refreshViewport(true)
		m.recomputeProactive()

		if m.db != nil {
			db := m.db
			return m, func() tea.Msg {
				if err := db.SaveUser(handle); err != nil {
					return SaveFailedMsg{Err: err}
				}
				return nil
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// CHARACTER CREATE SCREEN
// =============================================================================

func (m *Model) updateCreateCharacter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateChat
		m.form.errText = ""
		return m, nil

	case "tab", "down":
		m.form.focus = (m.form.focus + 1) % 3
		m.syncFormFocus()
		return m, nil

	case "shift+tab", "up":
		m.form.focus = (m.form.focus + 2) % 3
		m.syncFormFocus()
		return m, nil

	case "left":
		if m.form.focus == 2 {
			tokens := styles.ColorTokens()
			m.form.colorIdx = (m.form.colorIdx + len(tokens) - 1) % len(tokens)
			return m, nil
		}

	case "right":
		if m.form.focus == 2 {
			m.form.colorIdx = (m.form.colorIdx + 1) % len(styles.ColorTokens())
			return m, nil
		}

	case "enter":
		return m.submitCreateForm()
	}

	var cmd tea.Cmd
	switch m.form.focus {
	case 0:
		m.form.handle, cmd = m.form.handle.Update(msg)
	case 1:
		m.form.personality, cmd = m.form.personality.Update(msg)
	}
	return m, cmd
}

func (m *Model) syncFormFocus() {
	m.form.handle.Blur()
	m.form.personality.Blur()
	switch m.form.focus {
	case 0:
		m.form.handle.Focus()
	case 1:
		m.form.personality.Focus()
	}
}

func (m *Model) submitCreateForm() (tea.Model, tea.Cmd) {
	handle := strings.TrimSpace(m.form.handle.Value())
	personality := strings.TrimSpace(m.form.personality.Value())
	if handle == "" || personality == "" {
		m.form.errText = "Handle and personality are both required."
		return m, nil
	}
	if handle == m.userHandle {
		m.form.errText = "That one's taken: it's you."
		return m, nil
	}

	profile := roster.CharacterProfile{
		Handle:      handle,
		Color:       styles.ColorTokens()[m.form.colorIdx],
		Avatar:      avatarFor(handle),
		Personality: personality,
	}
	if err := m.reg.Add(profile); err != nil {
		if errors.Is(err, roster.ErrDuplicateHandle) {
			m.form.errText = "A character with that handle already exists."
		} else {
			m.form.errText = err.Error()
		}
		return m, nil
	}

	// The group system prompt embeds every personality, so the session must
	// be rebuilt. Committed history is re-seeded from the stored log.
	m.initSession()

	m.form = newCreateForm()
	m.state = stateChat
	m.store.Append(model.GroupChatID, model.NewSystemMessage("*"+handle+" washed ashore and joined the island*"))
	return m, m.persist()
}

// avatarFor derives a two-character avatar badge from a handle.
func avatarFor(handle string) string {
	runes := []rune(strings.ToUpper(handle))
	if len(runes) >= 2 {
		return string(runes[:2])
	}
	return string(runes) + "?"
}

// =============================================================================
// CHAT SCREEN
// =============================================================================

func (m *Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submitInput()

	case key.Matches(msg, m.keys.Cancel):
		if m.busy {
			m.cancelStream()
		} else {
			m.notice = ""
		}
		return m, nil

	case key.Matches(msg, m.keys.NextChannel):
		m.cycleChannel(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevChannel):
		m.cycleChannel(-1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.vp.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.vp.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.vp.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitInput handles Enter on the composer: slash commands first, otherwise
// a chat message for the active channel.
func (m *Model) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	cmd := ParseCommand(text)
	switch cmd.Kind {
	case CmdDM:
		m.input.Reset()
		return m.openDM(cmd.Arg)

	case CmdGroup:
		m.input.Reset()
		m.switchChat(model.GroupChatID)
		return m, nil

	case CmdCreate:
		m.input.Reset()
		m.state = stateCreateCharacter
		m.form = newCreateForm()
		m.syncFormFocus()
		return m, nil

	case CmdQuit:
		m.sched.Cancel()
		m.cancelStream()
		return m, tea.Quit

	case CmdUnknown:
		m.notice = "Unknown command: /" + cmd.Arg
		return m, nil
	}

	if m.busy {
		m.notice = "Hold on, someone is still typing..."
		return m, nil
	}

	m.input.Reset()
	m.notice = ""

	if m.activeChat == model.GroupChatID {
		return m, m.sendGroup(text)
	}
	ch, ok := m.store.Channel(m.activeChat)
	if !ok {
		// The active chat vanished from under us; fall back to the group.
		m.switchChat(model.GroupChatID)
		return m, nil
	}
	return m, m.sendDM(ch.ID, ch.Partner, text)
}

// openDM creates (or reuses) the DM channel with the named character and
// switches to it.
func (m *Model) openDM(handle string) (tea.Model, tea.Cmd) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		m.notice = "Usage: /dm <handle>"
		return m, nil
	}
	profile, ok := m.reg.Lookup(handle)
	if !ok {
		m.notice = "No character named " + util.TruncateRunes(handle, 40)
		return m, nil
	}

	ch := m.store.CreateDmChannel(profile.Handle, m.userHandle)
	m.switchChat(ch.ID)
	return m, m.persist()
}

// describeStreamError maps transport failures to user-facing notices.
func describeStreamError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return ""
	case errors.Is(err, gemini.ErrAuthFailed):
		return "The API rejected your key. Check GEMINI_API_KEY."
	case errors.Is(err, gemini.ErrRateLimited):
		return "Rate limited by the API. Give it a moment."
	default:
		return "Connection lost: " + err.Error()
	}
}
