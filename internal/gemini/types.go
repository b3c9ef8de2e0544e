// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the HTTP client for the Gemini generative language
// API, used as the chat simulation backend.
//
// Only the streaming generateContent surface is implemented: the simulation
// consumes every response incrementally, one text fragment at a time.
package gemini

import "fmt"

// Role constants for conversation turns. The API accepts exactly these two.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Part is a single piece of turn content. Only text parts are used here.
type Part struct {
	Text string `json:"text"`
}

// Content is one conversation turn.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// NewContent creates a single-part text turn.
func NewContent(role, text string) Content {
	return Content{Role: role, Parts: []Part{{Text: text}}}
}

// Text concatenates the text of all parts.
func (c Content) Text() string {
	switch len(c.Parts) {
	case 0:
		return ""
	case 1:
		return c.Parts[0].Text
	}
	var out string
	for _, p := range c.Parts {
		out += p.Text
	}
	return out
}

// generateRequest is the streamGenerateContent request body.
type generateRequest struct {
	SystemInstruction *Content  `json:"systemInstruction,omitempty"`
	Contents          []Content `json:"contents"`
}

// generateChunk is one SSE data payload of a streaming response.
type generateChunk struct {
	Candidates []struct {
		Content      Content `json:"content"`
		FinishReason string  `json:"finishReason,omitempty"`
	} `json:"candidates"`
}

// text returns the chunk's first-candidate text, empty if absent.
func (g *generateChunk) text() string {
	if len(g.Candidates) == 0 {
		return ""
	}
	return g.Candidates[0].Content.Text()
}

// apiErrorBody is the JSON error envelope the API returns on failure.
type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// APIError is a non-2xx response from the Gemini API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gemini error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini error (HTTP %d): %s", e.Status, e.Message)
}
