// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Configuration constants for the Gemini API.
const (
	// DefaultBaseURL is the generative language API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is used when the config does not name one.
	DefaultModel = "gemini-2.5-flash"

	// connectTimeout bounds connection establishment; streaming reads are
	// bounded by the caller's context instead of a whole-request timeout.
	connectTimeout = 10 * time.Second

	// MaxErrorBodySize caps how much of an error response body is read.
	MaxErrorBodySize = 64 * 1024
)

// sharedStreamingClient is used for all streaming requests. No client-level
// timeout: lifetime is controlled via context.
var sharedStreamingClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: connectTimeout,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// Error variables for common API failures.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("gemini API key not configured")

	// ErrAuthFailed indicates the API key was rejected.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates quota exhaustion or too many requests.
	ErrRateLimited = errors.New("rate limited")
)

// =============================================================================
// CLIENT
// =============================================================================

// Client is a minimal Gemini API client for streaming generation.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client for the given API key.
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	return &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: sharedStreamingClient,
	}, nil
}

// NewClientWithBaseURL creates a client against a custom endpoint. Used by
// tests to point at an httptest server.
func NewClientWithBaseURL(apiKey, baseURL string) (*Client, error) {
	c, err := NewClient(apiKey)
	if err != nil {
		return nil, err
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	c.baseURL = baseURL
	return c, nil
}

// GenerateStreaming issues a one-shot streaming generation request and
// returns the response stream. The caller must drain the stream to
// completion or cancel the context.
//
// Fragments arriving on the stream are arbitrary slices of the response
// text: they carry no line structure and must be concatenated by the
// consumer.
func (c *Client) GenerateStreaming(ctx context.Context, model, systemInstruction string, contents []Content) (*Stream, error) {
	reqBody := generateRequest{Contents: contents}
	if systemInstruction != "" {
		reqBody.SystemInstruction = &Content{Parts: []Part{{Text: systemInstruction}}}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := c.baseURL + "/models/" + url.PathEscape(model) + ":streamGenerateContent?alt=sse"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseErrorResponse(resp)
	}

	return newStream(resp.Body), nil
}

// parseErrorResponse maps a non-200 response to a typed error.
func parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBodySize))

	var envelope apiErrorBody
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Code = envelope.Error.Status
		apiErr.Message = envelope.Error.Message
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrAuthFailed, apiErr.Message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
	}
	return apiErr
}
