// castaway TUI - A terminal group chat with the island's cast.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/castaway-chat/castaway-tui/internal/config"
	"github.com/castaway-chat/castaway-tui/internal/gemini"
	"github.com/castaway-chat/castaway-tui/internal/model"
	"github.com/castaway-chat/castaway-tui/internal/roster"
	"github.com/castaway-chat/castaway-tui/internal/storage"
	"github.com/castaway-chat/castaway-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("castaway %s (%s)\n", Version, GitCommit)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "castaway: %v\n", err)
		os.Exit(1)
	}

	// A missing API key is not fatal: the UI starts read-only with a notice.
	var client *gemini.Client
	if cfg.Gemini.BaseURL != "" {
		client, err = gemini.NewClientWithBaseURL(cfg.Gemini.APIKey, cfg.Gemini.BaseURL)
	} else {
		client, err = gemini.NewClient(cfg.Gemini.APIKey)
	}
	if err != nil && !errors.Is(err, gemini.ErrNotConfigured) {
		fmt.Fprintf(os.Stderr, "castaway: %v\n", err)
		os.Exit(1)
	}

	// Persistence is best-effort: a broken data dir degrades to an
	// in-memory session instead of refusing to start.
	db, err := storage.Open(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "castaway: state storage unavailable: %v\n", err)
		db = nil
	} else {
		defer db.Close()
	}

	store := model.NewConversationStore()
	reg := roster.NewRegistry()
	spoken := model.NewSpokenSet()
	userHandle := ""

	if db != nil {
		userHandle = loadState(db, store, reg)
	}
	spoken.Rebuild(store.Get(model.GroupChatID))

	m := chat.New(cfg, client, db, store, reg, spoken, userHandle)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "castaway: %v\n", err)
		os.Exit(1)
	}
}

// loadState restores the previous session from storage. Each piece loads
// independently; a corrupt value loses that piece, not the whole session.
func loadState(db *storage.Store, store *model.ConversationStore, reg *roster.Registry) string {
	userHandle, err := db.LoadUser()
	if err != nil {
		fmt.Fprintf(os.Stderr, "castaway: could not restore user: %v\n", err)
	}

	if profiles, err := db.LoadRoster(); err != nil {
		fmt.Fprintf(os.Stderr, "castaway: could not restore roster: %v\n", err)
	} else {
		for _, p := range profiles {
			if !reg.Has(p.Handle) {
				if err := reg.Add(p); err != nil {
					fmt.Fprintf(os.Stderr, "castaway: skipping character %q: %v\n", p.Handle, err)
				}
			}
		}
	}

	if logs, err := db.LoadConversations(); err != nil {
		fmt.Fprintf(os.Stderr, "castaway: could not restore conversations: %v\n", err)
	} else {
		for chatID, log := range logs {
			store.Replace(chatID, log)
		}
	}

	if channels, err := db.LoadDmChannels(); err != nil {
		fmt.Fprintf(os.Stderr, "castaway: could not restore channels: %v\n", err)
	} else if len(channels) > 0 {
		store.SetChannels(channels)
	}

	return userHandle
}
