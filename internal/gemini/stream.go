// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
)

// =============================================================================
// STREAM READER
// =============================================================================

// Stream is a single-consume pull reader over an SSE generation response.
// Fragments are returned in arrival order; the stream is not restartable.
type Stream struct {
	body     io.ReadCloser
	reader   *bufio.Reader
	acc      strings.Builder
	finished bool

	// onDone, when set, is invoked once with the full accumulated text after
	// the final fragment has been delivered. Used by Session to commit the
	// model turn into history.
	onDone func(full string)
}

// newStream wraps a response body in a Stream.
func newStream(body io.ReadCloser) *Stream {
	return &Stream{
		body:   body,
		reader: bufio.NewReader(body),
	}
}

// Recv returns the next text fragment. It blocks until a fragment is
// available, the stream ends (io.EOF), the context is cancelled, or the
// underlying read fails. After any non-nil error the stream is closed.
func (s *Stream) Recv(ctx context.Context) (string, error) {
	if s.finished {
		return "", io.EOF
	}

	for {
		if err := ctx.Err(); err != nil {
			s.close()
			return "", err
		}

		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// Trailing data line without newline still counts.
				if frag, ok := s.parseDataLine(line); ok && frag != "" {
					s.finish()
					return frag, nil
				}
				s.finish()
				return "", io.EOF
			}
			s.close()
			return "", err
		}

		frag, ok := s.parseDataLine(line)
		if !ok || frag == "" {
			// Comments, blank keep-alive lines, empty candidates.
			continue
		}
		return frag, nil
	}
}

// parseDataLine extracts the text of one "data: {...}" SSE line. Returns
// ok=false for non-data lines and malformed payloads.
func (s *Stream) parseDataLine(line string) (string, bool) {
	line = strings.TrimRight(line, "\r\n")
	payload, isData := strings.CutPrefix(line, "data: ")
	if !isData {
		return "", false
	}

	var chunk generateChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		// Skip malformed chunks rather than killing the stream.
		return "", false
	}

	frag := chunk.text()
	s.acc.WriteString(frag)
	return frag, true
}

// Accumulated returns all text received so far.
func (s *Stream) Accumulated() string {
	return s.acc.String()
}

// finish marks successful exhaustion and fires the completion hook.
func (s *Stream) finish() {
	s.close()
	if s.onDone != nil {
		s.onDone(s.acc.String())
		s.onDone = nil
	}
}

// close releases the response body.
func (s *Stream) close() {
	if !s.finished {
		s.finished = true
		s.body.Close()
	}
}
