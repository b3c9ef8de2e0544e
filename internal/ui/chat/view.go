// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/castaway-chat/castaway-tui/internal/model"
	"github.com/castaway-chat/castaway-tui/internal/ui/styles"
	"github.com/castaway-chat/castaway-tui/internal/util"
)

const sidebarWidth = 22

// View implements tea.Model.
func (m *Model) View() string {
	switch m.state {
	case statePickHandle:
		return m.viewPickHandle()
	case stateCreateCharacter:
		return m.viewCreateCharacter()
	default:
		return m.viewChat()
	}
}

// =============================================================================
// HANDLE PICK SCREEN
// =============================================================================

func (m *Model) viewPickHandle() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Welcome to the island"))
	b.WriteString("\n")
	b.WriteString(styles.Subtle.Render("Choose the handle the cast will know you by."))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	if m.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.ErrorNotice.Render(m.notice))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// =============================================================================
// CHARACTER CREATE SCREEN
// =============================================================================

func (m *Model) viewCreateCharacter() string {
	tokens := styles.ColorTokens()
	token := tokens[m.form.colorIdx]

	colorLine := "Color: "
	swatch := styles.Avatar(styles.CharacterColor(token)).Render(token)
	if m.form.focus == 2 {
		colorLine = styles.SidebarActive.Render("Color: ") + swatch + styles.Subtle.Render("  (left/right to change)")
	} else {
		colorLine += swatch
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render("New castaway"))
	b.WriteString("\n")
	b.WriteString(m.form.handle.View())
	b.WriteString("\n")
	b.WriteString(m.form.personality.View())
	b.WriteString("\n")
	b.WriteString(colorLine)
	b.WriteString("\n\n")
	b.WriteString(styles.Subtle.Render("Tab to move between fields. Enter to add them to the chat. Esc to go back."))
	if m.form.errText != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorNotice.Render(m.form.errText))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// =============================================================================
// CHAT SCREEN
// =============================================================================

func (m *Model) viewChat() string {
	if !m.sized {
		return "loading..."
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, m.vp.View())
	footer := m.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) renderHeader() string {
	title := "# team sonic :3"
	if ch, ok := m.store.Channel(m.activeChat); ok {
		title = "@ " + ch.Partner
	}
	online := len(m.reg.ListAll())
	status := styles.HeaderStatus.Render(util.TruncateWidth(m.chatStatus(online), m.width/2))

	left := styles.Header.Render(title)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + status
}

func (m *Model) chatStatus(online int) string {
	if m.activeChat != model.GroupChatID {
		return "private chat"
	}
	if m.session == nil {
		return "offline"
	}
	return plural(online, "member") + " online"
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

func (m *Model) renderSidebar() string {
	var rows []string
	rows = append(rows, styles.Subtle.Render("CHANNELS"))

	for _, id := range m.channelOrder() {
		label := "# group"
		if ch, ok := m.store.Channel(id); ok {
			label = "@ " + ch.Partner
		}
		label = util.TruncateWidth(label, sidebarWidth-4)

		style := styles.SidebarItem
		if id == m.activeChat {
			style = styles.SidebarActive
		}
		row := style.Render(label)
		if m.unread[id] {
			row += " " + styles.SidebarUnread.Render("*")
		}
		rows = append(rows, row)
	}

	rows = append(rows, "", styles.Subtle.Render("MEMBERS"))
	for _, p := range m.reg.ListAll() {
		badge := styles.Avatar(styles.CharacterColor(p.Color)).Render(util.TruncateWidth(p.Avatar, 2))
		name := styles.SidebarItem.Render(util.TruncateWidth(p.Handle, sidebarWidth-8))
		rows = append(rows, badge+" "+name)
	}

	content := strings.Join(rows, "\n")
	return styles.Sidebar.
		Width(sidebarWidth).
		Height(m.vp.Height).
		Render(content)
}

func (m *Model) renderFooter() string {
	var top string
	switch {
	case m.notice != "":
		top = styles.ErrorNotice.Render(m.notice)
	case m.busy:
		top = m.spin.View() + styles.TypingIndicator.Render(" someone is typing")
	}

	input := styles.InputBoxFocused.Width(m.width - 2).Render(m.input.View())

	hints := make([]string, 0, 4)
	for _, b := range m.keys.ShortHelp() {
		hints = append(hints, b.Help().Key+" "+b.Help().Desc)
	}
	help := styles.Subtle.Render(strings.Join(hints, "  ·  "))

	if top == "" {
		return lipgloss.JoinVertical(lipgloss.Left, input, help)
	}
	return lipgloss.JoinVertical(lipgloss.Left, top, input, help)
}

// =============================================================================
// VIEWPORT
// =============================================================================

// layoutViewport resizes the message viewport after a terminal resize.
func (m *Model) layoutViewport() {
	headerH := 1
	footerH := 4
	h := m.height - headerH - footerH
	if h < 3 {
		h = 3
	}
	w := m.width - sidebarWidth
	if w < 20 {
		w = 20
	}

	if !m.sized {
		m.vp = viewport.New(w, h)
		m.sized = true
	} else {
		m.vp.Width = w
		m.vp.Height = h
	}
}

// refreshViewport re-renders the active chat's log. When follow is true the
// viewport snaps to the newest message.
func (m *Model) refreshViewport(follow bool) {
	if !m.sized {
		return
	}
	m.vp.SetContent(m.renderLog())
	if follow {
		m.vp.GotoBottom()
	}
}

// renderLog renders every message of the active chat.
func (m *Model) renderLog() string {
	log := m.store.Get(m.activeChat)
	if len(log) == 0 {
		return styles.Subtle.Render("No messages yet. Say something!")
	}

	wrap := lipgloss.NewStyle().Width(m.vp.Width - 2)
	var b strings.Builder
	for i, msg := range log {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(wrap.Render(m.renderMessage(msg)))
	}
	return b.String()
}

// renderMessage renders one chat line: system events as muted italics,
// dialogue as a colored author tag followed by the text.
func (m *Model) renderMessage(msg *model.Message) string {
	ts := styles.MessageTime.Render(msg.Timestamp.Format("15:04"))

	if msg.IsSystem() {
		return ts + " " + styles.SystemEvent.Render(msg.Content)
	}

	color := styles.TextSecondary
	if profile, ok := m.reg.Lookup(msg.Author); ok {
		color = styles.CharacterColor(profile.Color)
	} else if msg.Author == m.userHandle {
		color = styles.Accent
	}
	author := styles.MessageAuthor(color).Render(msg.Author)
	return ts + " " + author + " " + styles.MessageBody.Render(msg.Content)
}
