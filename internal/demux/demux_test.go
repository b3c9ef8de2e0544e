// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package demux

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castaway-chat/castaway-tui/internal/model"
	"github.com/castaway-chat/castaway-tui/internal/roster"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// sliceSource replays a fixed fragment sequence, then an optional error.
type sliceSource struct {
	frags []string
	err   error // returned after the fragments; io.EOF if nil
	pos   int
}

func (s *sliceSource) Recv(ctx context.Context) (string, error) {
	if s.pos >= len(s.frags) {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	frag := s.frags[s.pos]
	s.pos++
	return frag, nil
}

// recordingNotifier records notification attempts and fires when armed.
type recordingNotifier struct {
	armed bool
	fired []string
}

func (n *recordingNotifier) Fire(author, content string) bool {
	if !n.armed {
		return false
	}
	n.fired = append(n.fired, author+": "+content)
	return true
}

type harness struct {
	store  *model.ConversationStore
	spoken *model.SpokenSet
	demux  *Demux
}

func newHarness(notifier Notifier) *harness {
	reg := roster.NewRegistry()
	store := model.NewConversationStore()
	spoken := model.NewSpokenSet()
	return &harness{
		store:  store,
		spoken: spoken,
		demux:  New(store, reg.Has, spoken, notifier),
	}
}

func (h *harness) consumeGroup(t *testing.T, frags ...string) []*model.Message {
	t.Helper()
	err := h.demux.Consume(context.Background(), &sliceSource{frags: frags}, model.GroupChatID, "")
	require.NoError(t, err)
	return h.store.Get(model.GroupChatID)
}

// =============================================================================
// CLASSIFIER TESTS
// =============================================================================

func TestClassifyTieBreakOrder(t *testing.T) {
	known := roster.NewRegistry().Has

	tests := []struct {
		line string
		want LineKind
	}{
		{"", LineNoise},
		{"   \t", LineNoise},
		{"*Dark has left the chat*", LineEvent},
		{"*Knux: this is an event, not dialogue*", LineEvent},
		{"Knux: the emerald is MINE", LineAttributed},
		{"omega bot: TARGET ACQUIRED", LineAttributed},
		{"Eggman: hello", LineNoise},  // unregistered handle
		{"Knux says hello", LineNoise}, // no colon form
		{"*unterminated event", LineNoise},
		{"*", LineNoise}, // a lone asterisk is not an event
	}

	for _, tt := range tests {
		got := Classify(tt.line, known)
		assert.Equalf(t, tt.want, got.Kind, "line %q", tt.line)
	}
}

func TestClassifyEventKeepsAsterisks(t *testing.T) {
	got := Classify("*TheUltimateLifeform changed their name to Dark*", roster.NewRegistry().Has)
	assert.Equal(t, LineEvent, got.Kind)
	assert.Equal(t, "*TheUltimateLifeform changed their name to Dark*", got.Content)
}

func TestClassifyAttributedKeepsColonsInRest(t *testing.T) {
	got := Classify("Batty: secret: don't tell Knux", roster.NewRegistry().Has)
	assert.Equal(t, LineAttributed, got.Kind)
	assert.Equal(t, "Batty", got.Author)
	assert.Equal(t, "secret: don't tell Knux", got.Content)
}

// =============================================================================
// DEMUX TESTS
// =============================================================================

// TestInterleavedDialogueAndEvents is the canonical case: an unseen speaker
// gets a join event, an already-seen speaker does not, and ordering follows
// line completion order.
func TestInterleavedDialogueAndEvents(t *testing.T) {
	h := newHarness(nil)
	h.spoken.Add("Dark")

	log := h.consumeGroup(t, "Knux: hey ", "there\n*Dark has left", " the chat*\n")

	require.Len(t, log, 3)
	assert.Equal(t, "*Knux has joined the chat*", log[0].Content)
	assert.Equal(t, model.KindSystem, log[0].Kind)
	assert.Equal(t, "Knux", log[1].Author)
	assert.Equal(t, "hey there", log[1].Content)
	assert.Equal(t, model.KindCharacter, log[1].Kind)
	assert.Equal(t, "*Dark has left the chat*", log[2].Content)
	assert.Equal(t, model.KindSystem, log[2].Kind)
}

func TestFragmentationInvariance(t *testing.T) {
	text := "Knux: hey there\n*Dark has left the chat*\nAmes: sonic!! where\nnoise line\nEggman: dropped\nomega bot: BEEP"

	fragmentations := map[string][]string{
		"whole":    {text},
		"bytewise": nil, // filled below
		"uneven":   {text[:7], text[7:8], text[8:30], text[30:]},
		"lines":    {"Knux: hey there\n", "*Dark has left the chat*\n", "Ames: sonic!! where\n", "noise line\n", "Eggman: dropped\n", "omega bot: BEEP"},
	}
	for _, r := range text {
		fragmentations["bytewise"] = append(fragmentations["bytewise"], string(r))
	}

	type flat struct {
		Author  string
		Content string
		Kind    model.Kind
	}
	var want []flat

	for name, frags := range fragmentations {
		h := newHarness(nil)
		log := h.consumeGroup(t, frags...)

		var got []flat
		for _, m := range log {
			got = append(got, flat{m.Author, m.Content, m.Kind})
		}

		if want == nil {
			want = got
			continue
		}
		assert.Equalf(t, want, got, "fragmentation %q diverged", name)
	}

	// Sanity: joins for Knux, Ames, omega bot + their lines + the event.
	require.Len(t, want, 7)
}

func TestJoinSynthesizedOncePerSession(t *testing.T) {
	h := newHarness(nil)

	log := h.consumeGroup(t, "Knux: first\nKnux: second\n")
	require.Len(t, log, 3)
	assert.Equal(t, "*Knux has joined the chat*", log[0].Content)
	assert.Equal(t, "first", log[1].Content)
	assert.Equal(t, "second", log[2].Content)

	// A later stream in the same session must not re-join.
	log = h.consumeGroup(t, "Knux: third\n")
	require.Len(t, log, 4)
	assert.Equal(t, "third", log[3].Content)
}

func TestUnknownHandleDropped(t *testing.T) {
	h := newHarness(nil)
	log := h.consumeGroup(t, "Eggman: my plans are flawless\n")
	assert.Empty(t, log)
}

func TestEventNeverBecomesDialogue(t *testing.T) {
	h := newHarness(nil)
	log := h.consumeGroup(t, "*gottagofast has timed out for 3hrs*\n")
	require.Len(t, log, 1)
	assert.Equal(t, model.KindSystem, log[0].Kind)
	assert.Equal(t, model.SystemAuthor, log[0].Author)
	assert.Equal(t, "*gottagofast has timed out for 3hrs*", log[0].Content)
}

func TestTrailingUnterminatedLineProcessed(t *testing.T) {
	h := newHarness(nil)
	log := h.consumeGroup(t, "Knux: no newline at end")
	require.Len(t, log, 2)
	assert.Equal(t, "no newline at end", log[1].Content)
}

func TestBlankAndNoiseLinesDropped(t *testing.T) {
	h := newHarness(nil)
	log := h.consumeGroup(t, "\n   \nrandom prose the model emitted\n\n")
	assert.Empty(t, log)
}

func TestDirectMessageModeVerbatim(t *testing.T) {
	h := newHarness(nil)
	chatID := model.DmChannelID("GottaGoFast", "Batty")

	// In DM mode even "handle: text" and "*event*" shapes are plain dialogue.
	err := h.demux.Consume(context.Background(),
		&sliceSource{frags: []string{"well well well\nKnux: is gullible\n*waves*\n"}},
		chatID, "Batty")
	require.NoError(t, err)

	log := h.store.Get(chatID)
	require.Len(t, log, 3)
	for _, m := range log {
		assert.Equal(t, "Batty", m.Author)
		assert.Equal(t, model.KindCharacter, m.Kind)
	}
	assert.Equal(t, "Knux: is gullible", log[1].Content)
	assert.Equal(t, "*waves*", log[2].Content)

	// DM dialogue never synthesizes join events.
	assert.False(t, h.spoken.Has("Batty"))
}

func TestSourceErrorAbortsKeepingPartialOutput(t *testing.T) {
	h := newHarness(nil)
	boom := errors.New("connection reset")

	err := h.demux.Consume(context.Background(),
		&sliceSource{frags: []string{"Knux: made it\n", "Ames: half a li"}, err: boom},
		model.GroupChatID, "")
	require.ErrorIs(t, err, boom)

	log := h.store.Get(model.GroupChatID)
	// The completed line (and its join) survive; the partial line is lost.
	require.Len(t, log, 2)
	assert.Equal(t, "made it", log[1].Content)
}

func TestContextCancellationStopsConsumption(t *testing.T) {
	h := newHarness(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &ctxSource{}
	err := h.demux.Consume(ctx, src, model.GroupChatID, "")
	require.ErrorIs(t, err, context.Canceled)
}

// ctxSource fails with the context's error, as a real stream would.
type ctxSource struct{}

func (s *ctxSource) Recv(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// =============================================================================
// NOTIFICATION TESTS
// =============================================================================

func TestAtMostOneNotificationPerStream(t *testing.T) {
	n := &recordingNotifier{armed: true}
	h := newHarness(n)

	h.consumeGroup(t, "Knux: one\nAmes: two\n*Dark has left the chat*\n")
	require.Len(t, n.fired, 1)
	// First visible message of the stream wins: the synthesized join event.
	assert.Equal(t, "System: *Knux has joined the chat*", n.fired[0])
}

func TestNotifierDeclinesKeepTrying(t *testing.T) {
	n := &recordingNotifier{armed: false}
	h := newHarness(n)

	h.consumeGroup(t, "Knux: one\n")
	assert.Empty(t, n.fired)

	// Notifier becomes eligible mid-stream (e.g. terminal lost focus): the
	// next visible line may still fire.
	n.armed = true
	h.consumeGroup(t, "Ames: two\n")
	require.Len(t, n.fired, 1)
}
