// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package demux splits a model's streamed response into discrete chat lines
// and routes each one into the conversation store.
//
// The response arrives as arbitrary text fragments with no line alignment.
// The demultiplexer accumulates fragments, processes every completed line in
// arrival order, classifies it (event, attributed dialogue, or noise), and
// appends the resulting messages to the target chat. In group mode it also
// synthesizes a one-time "has joined the chat" event before a character's
// first line of the session.
//
// The output is invariant under fragmentation: any chunking of the same text
// yields the same appended message sequence.
package demux

import (
	"context"
	"io"
	"strings"

	"github.com/castaway-chat/castaway-tui/internal/model"
)

// Source yields successive text fragments of one model response. Recv blocks
// until a fragment is available, returns io.EOF when the response is
// exhausted, or any other error if the response fails mid-stream.
type Source interface {
	Recv(ctx context.Context) (string, error)
}

// Notifier raises at most one user-facing notification per consumed stream.
// Fire reports whether the notification actually fired; the demultiplexer
// stops asking after the first success.
type Notifier interface {
	Fire(author, content string) bool
}

// =============================================================================
// DEMULTIPLEXER
// =============================================================================

// Demux routes classified stream lines into a conversation store.
type Demux struct {
	store    *model.ConversationStore
	known    func(handle string) bool
	spoken   *model.SpokenSet
	notifier Notifier // optional
}

// New creates a demultiplexer. spoken tracks session speakers for the group
// chat; notifier may be nil to disable notifications.
func New(store *model.ConversationStore, known func(string) bool, spoken *model.SpokenSet, notifier Notifier) *Demux {
	return &Demux{
		store:    store,
		known:    known,
		spoken:   spoken,
		notifier: notifier,
	}
}

// Consume drains src to completion, appending messages to chatID in the
// order their source lines completed.
//
// dmPartner selects direct-message mode: when non-empty, every line is taken
// verbatim as dialogue from that partner and no classification is applied.
//
// A source error aborts consumption and is returned; messages already
// appended stay (no rollback). The caller owns the user-visible failure
// notice.
func (d *Demux) Consume(ctx context.Context, src Source, chatID string, dmPartner string) error {
	var acc string
	notified := false

	for {
		frag, err := src.Recv(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		acc += frag
		lines := strings.Split(acc, "\n")
		for _, line := range lines[:len(lines)-1] {
			d.processLine(line, chatID, dmPartner, &notified)
		}
		acc = lines[len(lines)-1]
	}

	// A final unterminated line still counts.
	if strings.TrimSpace(acc) != "" {
		d.processLine(acc, chatID, dmPartner, &notified)
	}
	return nil
}

// processLine classifies one complete line and appends the messages it
// produces. Join events are appended in the same batch as the line that
// triggered them, so both become visible atomically.
func (d *Demux) processLine(line, chatID, dmPartner string, notified *bool) {
	if dmPartner != "" {
		if strings.TrimSpace(line) == "" {
			return
		}
		msg := model.NewCharacterMessage(dmPartner, line)
		d.store.Append(chatID, msg)
		d.notify(notified, msg)
		return
	}

	classified := Classify(line, d.known)
	switch classified.Kind {
	case LineEvent:
		msg := model.NewSystemMessage(classified.Content)
		d.store.Append(chatID, msg)
		d.notify(notified, msg)

	case LineAttributed:
		msg := model.NewCharacterMessage(classified.Author, classified.Content)
		if d.spoken != nil && !d.spoken.Has(classified.Author) {
			join := model.NewSystemMessage("*" + classified.Author + " has joined the chat*")
			d.spoken.Add(classified.Author)
			d.store.Append(chatID, join, msg)
			d.notify(notified, join)
		} else {
			d.store.Append(chatID, msg)
		}
		d.notify(notified, msg)

	case LineNoise:
		// Dropped silently.
	}
}

// notify raises the stream's single notification on the first visible line.
func (d *Demux) notify(notified *bool, msg *model.Message) {
	if *notified || d.notifier == nil {
		return
	}
	if d.notifier.Fire(msg.Author, msg.Content) {
		*notified = true
	}
}
