// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// sseHandler writes each payload as one SSE data line.
func sseHandler(t *testing.T, payloads ...string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") != "sse" {
			t.Errorf("Expected alt=sse, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, p := range payloads {
			_, _ = w.Write([]byte("data: " + p + "\n\n"))
		}
	}
}

// chunkJSON builds one streaming chunk. The text is marshalled so newlines
// arrive escaped inside the JSON string, as the real API sends them.
func chunkJSON(text string) string {
	quoted, _ := json.Marshal(text)
	return `{"candidates":[{"content":{"role":"model","parts":[{"text":` + string(quoted) + `}]}}]}`
}

func drain(t *testing.T, s *Stream) []string {
	t.Helper()
	var frags []string
	for {
		frag, err := s.Recv(context.Background())
		if err == io.EOF {
			return frags
		}
		if err != nil {
			t.Fatalf("Recv failed: %v", err)
		}
		frags = append(frags, frag)
	}
}

// =============================================================================
// CLIENT TESTS
// =============================================================================

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(""); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestGenerateStreamingDeliversFragmentsInOrder(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, chunkJSON("Knux: hey "), chunkJSON("there\n"), chunkJSON("*Dark has left the chat*")))
	defer srv.Close()

	c, err := NewClientWithBaseURL("test-key", srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	stream, err := c.GenerateStreaming(context.Background(), DefaultModel, "sys", []Content{NewContent(RoleUser, "hi")})
	if err != nil {
		t.Fatalf("GenerateStreaming failed: %v", err)
	}

	frags := drain(t, stream)
	if len(frags) != 3 {
		t.Fatalf("Expected 3 fragments, got %d: %v", len(frags), frags)
	}
	if frags[0] != "Knux: hey " || frags[1] != "there\n" || frags[2] != "*Dark has left the chat*" {
		t.Errorf("Fragments out of order: %v", frags)
	}
	if stream.Accumulated() != "Knux: hey there\n*Dark has left the chat*" {
		t.Errorf("Accumulated mismatch: %q", stream.Accumulated())
	}
}

func TestStreamSkipsKeepAlivesAndMalformedChunks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(": keep-alive\n\n"))
		_, _ = w.Write([]byte("data: not json\n\n"))
		_, _ = w.Write([]byte("data: " + chunkJSON("ok") + "\n\n"))
	}))
	defer srv.Close()

	c, _ := NewClientWithBaseURL("test-key", srv.URL)
	stream, err := c.GenerateStreaming(context.Background(), DefaultModel, "", nil)
	if err != nil {
		t.Fatal(err)
	}

	frags := drain(t, stream)
	if len(frags) != 1 || frags[0] != "ok" {
		t.Errorf("Expected single 'ok' fragment, got %v", frags)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusForbidden, ErrAuthFailed},
		{http.StatusUnauthorized, ErrAuthFailed},
		{http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"denied","status":"PERMISSION_DENIED"}}`))
		}))

		c, _ := NewClientWithBaseURL("bad-key", srv.URL)
		_, err := c.GenerateStreaming(context.Background(), DefaultModel, "", nil)
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: expected %v, got %v", tt.status, tt.want, err)
		}
		srv.Close()
	}
}

func TestServerErrorIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`))
	}))
	defer srv.Close()

	c, _ := NewClientWithBaseURL("key", srv.URL)
	_, err := c.GenerateStreaming(context.Background(), DefaultModel, "", nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusInternalServerError || apiErr.Message != "boom" {
		t.Errorf("Unexpected APIError: %+v", apiErr)
	}
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestSessionCommitsHistoryOnCompletion(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, chunkJSON("Knux: hello")))
	defer srv.Close()

	c, _ := NewClientWithBaseURL("key", srv.URL)
	sess := NewSession(c, DefaultModel, "sys", nil)

	stream, err := sess.SendStreaming(context.Background(), "GottaGoFast: hi all")
	if err != nil {
		t.Fatal(err)
	}
	if sess.HistoryLen() != 0 {
		t.Error("History must not be committed before the stream completes")
	}

	drain(t, stream)
	if sess.HistoryLen() != 2 {
		t.Errorf("Expected user+model turns committed, got %d", sess.HistoryLen())
	}
}

func TestSessionFailedSendLeavesHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota"}}`))
	}))
	defer srv.Close()

	c, _ := NewClientWithBaseURL("key", srv.URL)
	sess := NewSession(c, DefaultModel, "sys", nil)

	if _, err := sess.SendStreaming(context.Background(), "hi"); err == nil {
		t.Fatal("Expected an error")
	}
	if sess.HistoryLen() != 0 {
		t.Error("Failed send must not touch history")
	}
}

// =============================================================================
// HISTORY SEEDING TESTS
// =============================================================================

func TestBuildHistoryCollapsesRuns(t *testing.T) {
	history := BuildHistory([]HistoryTurn{
		{Author: "GottaGoFast", Content: "hey guts", IsUser: true},
		{Author: "Knux", Content: "what now", IsUser: false},
		{Author: "Ames", Content: "hi sonic!!", IsUser: false},
		{Author: "GottaGoFast", Content: "brecky time", IsUser: true},
	})

	if len(history) != 3 {
		t.Fatalf("Expected 3 collapsed turns, got %d", len(history))
	}
	if history[0].Role != RoleUser || history[0].Text() != "GottaGoFast: hey guts" {
		t.Errorf("Turn 0 wrong: %+v", history[0])
	}
	if history[1].Role != RoleModel || history[1].Text() != "Knux: what now\nAmes: hi sonic!!" {
		t.Errorf("Turn 1 should merge consecutive model-side lines: %+v", history[1])
	}
	if history[2].Role != RoleUser || history[2].Text() != "GottaGoFast: brecky time" {
		t.Errorf("Turn 2 wrong: %+v", history[2])
	}
}

func TestBuildHistoryEmpty(t *testing.T) {
	if h := BuildHistory(nil); len(h) != 0 {
		t.Errorf("Expected empty history, got %d turns", len(h))
	}
}
