// Package sse provides Server-Sent Events support for streaming responses.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// EventError is the event name used for stream errors.
const EventError = "error"

// Writer writes Server-Sent Events to an HTTP response.
type Writer struct {
	writer  http.ResponseWriter
	flusher http.Flusher
}

// NewWriter creates a new SSE writer.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &Writer{
		writer:  w,
		flusher: flusher,
	}, nil
}

// WriteEvent writes an SSE event with the given name and data.
func (w *Writer) WriteEvent(event string, data string) error {
	_, err := fmt.Fprintf(w.writer, "event: %s\ndata: %s\n\n", event, data)
	if err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	w.flusher.Flush()
	return nil
}

// WriteEventWithID writes an SSE event with an ID.
func (w *Writer) WriteEventWithID(event string, id string, data string) error {
	_, err := fmt.Fprintf(w.writer, "id: %s\nevent: %s\ndata: %s\n\n", id, event, data)
	if err != nil {
		return fmt.Errorf("failed to write event with id: %w", err)
	}
	w.flusher.Flush()
	return nil
}

// WriteJSON writes an SSE event with JSON-encoded data.
func (w *Writer) WriteJSON(event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	return w.WriteEvent(event, string(jsonData))
}

// WriteJSONWithID writes an SSE event with an ID and JSON-encoded data.
func (w *Writer) WriteJSONWithID(event string, id string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	return w.WriteEventWithID(event, id, string(jsonData))
}

// WriteComment writes a comment line, used as a keep-alive.
func (w *Writer) WriteComment(text string) error {
	_, err := fmt.Fprintf(w.writer, ": %s\n\n", text)
	if err != nil {
		return fmt.Errorf("failed to write comment: %w", err)
	}
	w.flusher.Flush()
	return nil
}

// ErrorEvent represents an error event.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// WriteError writes an error event.
func (w *Writer) WriteError(code, message string, details string) error {
	return w.WriteJSON(EventError, &ErrorEvent{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// Flush flushes the response writer.
func (w *Writer) Flush() {
	w.flusher.Flush()
}
