package server

import (
	"encoding/json"
	"net/http"

	"github.com/boardstack/boardstack/pkg/errors"
)

// doneMarker terminates every SSE stream so clients know the response
// completed rather than dropped.
const doneMarker = "[DONE]"

// sseStream writes server-sent events, flushing after each one.
type sseStream struct {
	w http.ResponseWriter
	f http.Flusher
}

// newSSEStream prepares the response for event streaming. Returns an error
// if the underlying writer cannot flush.
func newSSEStream(w http.ResponseWriter) (*sseStream, error) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New(errors.ErrCodeInternal, "response writer does not support streaming")
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	return &sseStream{w: w, f: f}, nil
}

// send writes one JSON event.
func (s *sseStream) send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.raw(string(data))
}

// delta writes one streamed text chunk.
func (s *sseStream) delta(text string) error {
	return s.send(map[string]string{"type": "delta", "content": text})
}

// fail reports a mid-stream error. The HTTP status is already written, so
// errors travel in-band.
func (s *sseStream) fail(err error) {
	_ = s.send(map[string]string{"type": "error", "error": err.Error()})
}

// done terminates the stream.
func (s *sseStream) done() {
	_ = s.raw(doneMarker)
}

func (s *sseStream) raw(data string) error {
	if _, err := s.w.Write([]byte("data: " + data + "\n\n")); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}
