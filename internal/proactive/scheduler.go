// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package proactive schedules the idle nudges that keep the simulated chat
// alive when the user stops typing.
//
// The scheduler decides only WHEN to nudge; the directive text comes from the
// prompt package and the send itself is a callback into the UI's normal send
// path. Timers and randomness are injectable so tests can advance time
// deterministically.
package proactive

import (
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/castaway-chat/castaway-tui/internal/model"
)

// Delay model constants.
const (
	// readingWordsPerMinute converts the last message's length into the time
	// a user plausibly spends reading it.
	readingWordsPerMinute = 225

	// minBuffer..maxBuffer is the randomized thinking/typing allowance added
	// on top of reading time.
	minBuffer = 8 * time.Second
	maxBuffer = 15 * time.Second

	// maxDelay caps the total idle delay.
	maxDelay = 60 * time.Second

	// minFireInterval rate-limits proactive sends regardless of timer math,
	// protecting the quota-billed API from rapid-fire rescheduling.
	minFireInterval = 30 * time.Second
)

// Timer is a cancellable one-shot deferred task.
type Timer interface {
	Stop() bool
}

// TimerFactory schedules fn to run once after d. The default factory wraps
// time.AfterFunc; tests substitute a manual clock.
type TimerFactory func(d time.Duration, fn func()) Timer

// =============================================================================
// SCHEDULER
// =============================================================================

// Scheduler owns the single pending idle timer. At most one timer is armed at
// any moment; every Recompute replaces it.
type Scheduler struct {
	mu      sync.Mutex
	pending Timer

	newTimer TimerFactory
	rng      *rand.Rand
	limiter  *rate.Limiter
	ceiling  time.Duration

	focused func() bool
	fire    func()
}

// New creates a scheduler. focused reports whether the terminal currently has
// focus; fire invokes the proactive send path.
func New(focused func() bool, fire func()) *Scheduler {
	return &Scheduler{
		newTimer: func(d time.Duration, fn func()) Timer { return time.AfterFunc(d, fn) },
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		limiter:  rate.NewLimiter(rate.Every(minFireInterval), 1),
		ceiling:  maxDelay,
		focused:  focused,
		fire:     fire,
	}
}

// SetMaxDelay overrides the idle delay ceiling. Values at or below the
// randomized buffer floor are ignored to keep the delay model sane.
func (s *Scheduler) SetMaxDelay(d time.Duration) {
	if d <= maxBuffer {
		return
	}
	s.mu.Lock()
	s.ceiling = d
	s.mu.Unlock()
}

// SetTimerFactory replaces the timer implementation. Test hook.
func (s *Scheduler) SetTimerFactory(f TimerFactory) {
	s.mu.Lock()
	s.newTimer = f
	s.mu.Unlock()
}

// SetRand replaces the randomness source. Test hook.
func (s *Scheduler) SetRand(rng *rand.Rand) {
	s.mu.Lock()
	s.rng = rng
	s.mu.Unlock()
}

// Delay computes the idle delay for the given last character message (nil
// when the chat has no dialogue yet):
//
//	delay = min(words/225wpm + uniform[8s,15s], 60s)
func (s *Scheduler) Delay(last *model.Message) time.Duration {
	s.mu.Lock()
	buffer := minBuffer + time.Duration(s.rng.Int63n(int64(maxBuffer-minBuffer)+1))
	ceiling := s.ceiling
	s.mu.Unlock()

	words := last.WordCount()
	reading := time.Duration(words) * time.Minute / readingWordsPerMinute

	delay := reading + buffer
	if delay > ceiling {
		delay = ceiling
	}
	return delay
}

// Recompute cancels any pending timer and, when ready, arms a fresh one.
// ready is the conjunction of the caller's preconditions: a chosen user
// identity, a live group session, and the group chat being active.
func (s *Scheduler) Recompute(last *model.Message, ready bool) {
	s.mu.Lock()
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	if !ready {
		s.mu.Unlock()
		return
	}
	factory := s.newTimer
	s.mu.Unlock()

	delay := s.Delay(last)

	s.mu.Lock()
	s.pending = factory(delay, s.onFire)
	s.mu.Unlock()
}

// Cancel drops the pending timer, if any. Called when the user switches away
// from the group chat or the UI shuts down.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.mu.Unlock()
}

// onFire runs when the idle timer elapses. A tick with the terminal
// unfocused is dropped, not rescheduled: the next conversation change
// recomputes naturally.
func (s *Scheduler) onFire() {
	if !s.focused() {
		return
	}
	if !s.limiter.Allow() {
		return
	}
	s.fire()
}
