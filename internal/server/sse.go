package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/jonathan/resume-extractor/internal/pipeline"
	"github.com/jonathan/resume-extractor/internal/types"
)

// SSE event names sent by /analyze/stream.
const (
	eventStage    = "stage"
	eventResult   = "result"
	eventError    = "error"
	eventComplete = "complete"
)

// SSEWriter writes Server-Sent Events with increasing ids. Writes are serialized.
type SSEWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
}

// NewSSEWriter sets the stream headers; it fails when w cannot flush.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w, flusher: flusher, nextID: 1}, nil
}

// WriteEvent sends one event with data encoded as JSON.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload); err != nil {
		return err
	}
	s.nextID++
	s.flusher.Flush()
	return nil
}

// WriteStage sends a pipeline progress event.
func (s *SSEWriter) WriteStage(event pipeline.ProgressEvent) error {
	return s.WriteEvent(eventStage, event)
}

// WriteResult sends the finished record.
func (s *SSEWriter) WriteResult(record *types.ResumeRecord) error {
	return s.WriteEvent(eventResult, record)
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent(eventError, map[string]string{"error": message}) //nolint:errcheck
}

// WriteComplete sends the final event of a stream.
func (s *SSEWriter) WriteComplete(resumeID, status string) {
	s.WriteEvent(eventComplete, map[string]string{ //nolint:errcheck
		"resume_id": resumeID,
		"status":    status,
	})
}
