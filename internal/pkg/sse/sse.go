// Package sse encodes a logical event sequence as a server-sent event stream.
//
// Framing: each event is a single "data: " line holding one JSON object,
// followed by a blank line. Events never span multiple lines, and every
// event is flushed as soon as it is written so intermediaries cannot batch
// chunks.
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var ErrStreamingUnsupported = errors.New("streaming unsupported by response writer")

// Writer frames and flushes events onto an HTTP response
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter prepares the response for event streaming. The headers disable
// caching and proxy buffering so chunks reach the client as produced.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	return &Writer{w: w, flusher: flusher}, nil
}

// Send writes one event and flushes it. json.Marshal emits no newlines, so
// the one-object-per-line framing rule holds for any payload.
func (w *Writer) Send(event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w.w, "data: %s\n\n", data); err != nil {
		return err
	}
	w.flusher.Flush()

	return nil
}
