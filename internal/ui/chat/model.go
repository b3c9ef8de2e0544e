// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/castaway-chat/castaway-tui/internal/config"
	"github.com/castaway-chat/castaway-tui/internal/demux"
	"github.com/castaway-chat/castaway-tui/internal/gemini"
	"github.com/castaway-chat/castaway-tui/internal/model"
	"github.com/castaway-chat/castaway-tui/internal/proactive"
	"github.com/castaway-chat/castaway-tui/internal/prompt"
	"github.com/castaway-chat/castaway-tui/internal/roster"
	"github.com/castaway-chat/castaway-tui/internal/storage"
	"github.com/castaway-chat/castaway-tui/internal/ui/styles"
)

// state identifies which screen the UI is on.
type state int

const (
	// statePickHandle asks the user to choose their chat handle.
	statePickHandle state = iota
	// stateCreateCharacter is the custom character form.
	stateCreateCharacter
	// stateChat is the main conversation view.
	stateChat
)

// offlineNotice is appended once when no API key is configured.
const offlineNotice = "*You are offline. Set GEMINI_API_KEY (or gemini.api_key in ~/.castaway/config.toml) and restart to join the chat.*"

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the whole application.
type Model struct {
	cfg    *config.Config
	client *gemini.Client // nil when no API key is configured
	db     *storage.Store // nil when persistence is unavailable
	store  *model.ConversationStore
	reg    *roster.Registry
	spoken *model.SpokenSet
	dmx    *demux.Demux
	sched  *proactive.Scheduler
	rng    *rand.Rand

	// session is the long-lived group chat session. Rebuilt when the roster
	// changes so the system prompt picks up new personalities.
	session *gemini.Session

	userHandle string
	activeChat string
	state      state

	focused bool
	busy    bool // one in-flight model request at a time
	stop    func()

	// events carries messages produced off the update loop: store appends,
	// stream completions, and proactive timer fires.
	events chan tea.Msg

	keys  KeyMap
	input textinput.Model
	vp    viewport.Model
	spin  spinner.Model
	form  createForm

	unread         map[string]bool
	notice         string
	offlineNoticed bool

	width, height int
	sized         bool
}

// createForm holds the custom character creation inputs.
type createForm struct {
	handle      textinput.Model
	personality textinput.Model
	colorIdx    int
	focus       int // 0 = handle, 1 = personality, 2 = color
	errText     string
}

// New assembles the application model. userHandle is empty on first run, in
// which case the handle pick screen is shown before the chat.
func New(cfg *config.Config, client *gemini.Client, db *storage.Store, store *model.ConversationStore, reg *roster.Registry, spoken *model.SpokenSet, userHandle string) *Model {
	input := textinput.New()
	input.Placeholder = "Message the island..."
	input.CharLimit = 2000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.TypingIndicator

	m := &Model{
		cfg:        cfg,
		client:     client,
		db:         db,
		store:      store,
		reg:        reg,
		spoken:     spoken,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		userHandle: userHandle,
		activeChat: model.GroupChatID,
		focused:    true,
		events:     make(chan tea.Msg, 256),
		keys:       DefaultKeyMap(),
		input:      input,
		spin:       sp,
		form:       newCreateForm(),
		unread:     make(map[string]bool),
	}

	notifier := NewTermNotifier(
		func() bool { return cfg.Notifications },
		func() bool { return m.focused },
	)
	m.dmx = demux.New(store, reg.Has, spoken, notifier)
	m.sched = proactive.New(
		func() bool { return m.focused },
		func() { m.events <- ProactiveFireMsg{} },
	)
	if d := cfg.MaxProactiveDelay(); d > 0 {
		m.sched.SetMaxDelay(d)
	}
	store.SetOnAppend(func(chatID string) {
		m.events <- LinesAppendedMsg{ChatID: chatID}
	})

	if userHandle == "" {
		m.state = statePickHandle
		m.input.Placeholder = "Pick a handle..."
	} else {
		m.state = stateChat
		m.initSession()
	}
	return m
}

func newCreateForm() createForm {
	handle := textinput.New()
	handle.Placeholder = "Handle (e.g. ChaoKeeper)"
	handle.CharLimit = 40
	handle.Focus()

	personality := textinput.New()
	personality.Placeholder = "Personality, in a sentence or two"
	personality.CharLimit = 400

	return createForm{handle: handle, personality: personality}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.listen(), m.spin.Tick, textinput.Blink)
}

// listen pumps one message from the event channel into the update loop. The
// returned command is re-issued after every delivery.
func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// initSession builds the group chat session from the current roster and the
// persisted group log. With no API key configured, the chat degrades to a
// read-only view behind a single system notice.
func (m *Model) initSession() {
	if m.client == nil {
		if !m.offlineNoticed {
			m.offlineNoticed = true
			m.store.Append(model.GroupChatID, model.NewSystemMessage(offlineNotice))
		}
		return
	}
	system := prompt.BuildGroupSystemPrompt(m.reg, m.userHandle)
	history := gemini.BuildHistory(m.historyTurns(model.GroupChatID))
	m.session = gemini.NewSession(m.client, m.cfg.Gemini.Model, system, history)
}

// historyTurns converts a chat's dialogue lines into session seed turns.
// System events are presentation only and never reach the model.
func (m *Model) historyTurns(chatID string) []gemini.HistoryTurn {
	log := m.store.Get(chatID)
	turns := make([]gemini.HistoryTurn, 0, len(log))
	for _, msg := range log {
		if msg.Kind != model.KindCharacter {
			continue
		}
		turns = append(turns, gemini.HistoryTurn{
			Author:  msg.Author,
			Content: msg.Content,
			IsUser:  msg.Author == m.userHandle,
		})
	}
	return turns
}

// proactiveReady reports whether the idle scheduler may arm a timer.
func (m *Model) proactiveReady() bool {
	return m.cfg.Proactive.Enabled &&
		m.state == stateChat &&
		m.session != nil &&
		m.activeChat == model.GroupChatID &&
		!m.busy
}

// recomputeProactive re-arms (or cancels) the idle timer after any change
// that affects the group conversation.
func (m *Model) recomputeProactive() {
	m.sched.Recompute(m.store.Last(model.GroupChatID, model.KindCharacter), m.proactiveReady())
}

// switchChat makes chatID the active conversation. Switching away from the
// group chat stops the idle timer; in-flight streams keep running and land in
// their own logs.
func (m *Model) switchChat(chatID string) {
	m.activeChat = chatID
	delete(m.unread, chatID)
	m.refreshViewport(true)
	if chatID == model.GroupChatID {
		m.recomputeProactive()
	} else {
		m.sched.Cancel()
	}
}

// channelOrder returns the navigable chat ids: the group first, then DM
// channels in creation order.
func (m *Model) channelOrder() []string {
	ids := []string{model.GroupChatID}
	for _, ch := range m.store.Channels() {
		ids = append(ids, ch.ID)
	}
	return ids
}

// cycleChannel moves the active chat forward or backward through the list.
func (m *Model) cycleChannel(delta int) {
	ids := m.channelOrder()
	cur := 0
	for i, id := range ids {
		if id == m.activeChat {
			cur = i
			break
		}
	}
	next := (cur + delta + len(ids)) % len(ids)
	m.switchChat(ids[next])
}
