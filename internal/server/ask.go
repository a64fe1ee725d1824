package server

import (
	"net/http"
	"strings"

	"github.com/boardstack/boardstack/pkg/errors"
	"github.com/boardstack/boardstack/pkg/llm"
)

type askRequest struct {
	Prompt           string   `json:"prompt"`
	Context          string   `json:"context,omitempty"`
	SelectedShapeIDs []string `json:"selectedShapeIds,omitempty"`
}

// handleAsk streams an assistant response over SSE. When shapes are
// selected, their canvas context is assembled first and announced as a
// context event before the deltas.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "prompt is required"))
		return
	}
	if s.assistant == nil {
		s.respondError(w, errors.New(errors.ErrCodeNotEnabled, "assistant is not configured"))
		return
	}

	ctx := r.Context()
	var selectionContext string
	if s.selection != nil && len(req.SelectedShapeIDs) > 0 {
		built, err := s.selection.Build(ctx, req.Prompt, req.SelectedShapeIDs)
		if err != nil {
			// Selection context is best-effort; the question still gets answered.
			s.logger.Warn("building selection context", "err", err)
		} else {
			selectionContext = built
		}
	}

	stream, err := newSSEStream(w)
	if err != nil {
		s.respondError(w, err)
		return
	}
	defer stream.done()

	if selectionContext != "" {
		if err := stream.send(map[string]string{"type": "context", "content": selectionContext}); err != nil {
			return
		}
	}

	err = s.assistant.Stream(ctx, llm.ChatRequest{
		Prompt:           req.Prompt,
		Context:          req.Context,
		SelectionContext: selectionContext,
	}, stream.delta)
	if err != nil {
		s.logger.Error("assistant stream failed", "err", err)
		stream.fail(err)
	}
}
