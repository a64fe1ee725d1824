package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/boardstack/boardstack/pkg/cache"
	"github.com/boardstack/boardstack/pkg/errors"
	"github.com/boardstack/boardstack/pkg/notes"
	"github.com/boardstack/boardstack/pkg/storage"
)

type videoRoomRequest struct {
	RoomID string `json:"roomId"`
}

// handleVideoRoom provisions (or finds) the canvas's video room and mints
// a fresh owner token.
func (s *Server) handleVideoRoom(w http.ResponseWriter, r *http.Request) {
	if s.rooms == nil {
		s.respondError(w, errors.New(errors.ErrCodeNotEnabled, "video is not configured"))
		return
	}

	var req videoRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if req.RoomID == "" {
		req.RoomID = notes.DefaultRoomID
	}

	access, err := s.rooms.EnsureRoom(r.Context(), req.RoomID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, access)
}

type summaryRequest struct {
	RoomID     string `json:"roomId"`
	Transcript string `json:"transcript"`
}

// summaryCacheTTL bounds how long a rendered summary is replayed for an
// identical transcript before the LLM is asked again.
const summaryCacheTTL = 24 * time.Hour

// handleGenerateSummary streams a meeting summary over SSE and persists
// the completed summary afterwards. Persistence happens in the background
// so a slow write cannot stall the stream teardown.
func (s *Server) handleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	if s.assistant == nil {
		s.respondError(w, errors.New(errors.ErrCodeNotEnabled, "assistant is not configured"))
		return
	}

	var req summaryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if req.RoomID == "" {
		req.RoomID = notes.DefaultRoomID
	}

	stream, err := newSSEStream(w)
	if err != nil {
		s.respondError(w, err)
		return
	}
	defer stream.done()

	// The client reads the response as an event stream, so even the empty
	// transcript error travels in-band with a 200.
	if strings.TrimSpace(req.Transcript) == "" {
		stream.fail(errors.New(errors.ErrCodeEmptyTranscript, "transcript is required"))
		return
	}

	// Metadata first, then content deltas.
	_ = stream.send(map[string]any{"metadata": map[string]any{
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
		"transcriptLength": len(strings.Fields(req.Transcript)),
	}})

	key := s.keyer.SummaryKey(req.RoomID, cache.TranscriptHash(req.Transcript))
	if s.cache != nil {
		if data, hit, _ := s.cache.Get(r.Context(), key); hit {
			_ = stream.delta(string(data))
			return
		}
	}

	var sb strings.Builder
	err = s.assistant.StreamSummary(r.Context(), req.Transcript, func(delta string) error {
		sb.WriteString(delta)
		return stream.delta(delta)
	})
	if err != nil {
		s.logger.Error("summary stream failed", "err", err)
		stream.fail(err)
		return
	}

	if s.cache != nil && sb.Len() > 0 {
		_ = s.cache.Set(r.Context(), key, []byte(sb.String()), summaryCacheTTL)
	}

	if s.store != nil && sb.Len() > 0 {
		summary := storage.MeetingSummary{
			ID:         uuid.NewString(),
			RoomID:     req.RoomID,
			Transcript: req.Transcript,
			Summary:    sb.String(),
			CreatedAt:  time.Now().UTC(),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.store.InsertSummary(ctx, summary); err != nil {
				s.logger.Error("persisting summary", "room", summary.RoomID, "err", err)
			}
		}()
	}
}
