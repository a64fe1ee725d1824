package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/boardstack/boardstack/pkg/errors"
	"github.com/boardstack/boardstack/pkg/geom"
	"github.com/boardstack/boardstack/pkg/notes"
)

// maxHandwritingUpload bounds handwriting frame images.
const maxHandwritingUpload = 10 << 20 // 10 MB

// handleHandwritingUpload accepts a captured handwriting frame image,
// stores it, and kicks off transcription in the background. The response
// reports the note as processing; clients poll or refresh to see it ready.
func (s *Server) handleHandwritingUpload(w http.ResponseWriter, r *http.Request) {
	if s.notes == nil {
		s.respondError(w, errors.New(errors.ErrCodeNotEnabled, "handwriting is not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxHandwritingUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, errors.Wrap(err, errors.ErrCodeInvalidInput, "reading upload"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, errors.Wrap(err, errors.ErrCodeInvalidInput, "reading upload"))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" && len(data) > 0 {
		mimeType = http.DetectContentType(data)
	}

	upload := notes.HandwritingUpload{
		FrameID:   r.FormValue("frameId"),
		RoomID:    r.FormValue("roomId"),
		Timestamp: r.FormValue("timestamp"),
		GroupID:   r.FormValue("groupId"),
		Bounds:    parseBounds(r.FormValue("bounds")),
		StrokeIDs: parseStringList(r.FormValue("handwritingShapeIds")),
		Image:     data,
		MimeType:  mimeType,
	}

	result, err := s.notes.SaveHandwriting(r.Context(), upload)
	if err != nil {
		s.respondError(w, err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.processTimeout)
		defer cancel()
		if err := s.notes.ProcessHandwriting(ctx, result.NoteID, result.FrameID, data, mimeType); err != nil {
			s.logger.Error("handwriting processing failed", "note", result.NoteID, "err", err)
		}
	}()

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"note_id":      result.NoteID,
		"frameId":      result.FrameID,
		"storage_path": result.StoragePath,
		"public_url":   result.PublicURL,
		"status":       result.Status,
	})
}

// handleTypedNote syncs a typed note frame's text shapes into the index.
func (s *Server) handleTypedNote(w http.ResponseWriter, r *http.Request) {
	if s.notes == nil {
		s.respondError(w, errors.New(errors.ErrCodeNotEnabled, "notes are not configured"))
		return
	}

	var req notes.TypedNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	result, err := s.notes.SyncTypedNote(r.Context(), req)
	if err != nil {
		s.respondError(w, err)
		return
	}

	resp := map[string]any{
		"success":     true,
		"note_id":     result.NoteID,
		"frameId":     result.FrameID,
		"chunk_count": result.ChunkCount,
	}
	if result.Warning != "" {
		resp["warning"] = result.Warning
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// parseBounds decodes the bounds form field. Malformed bounds are dropped
// rather than failing the upload.
func parseBounds(raw string) *geom.Rect {
	if raw == "" {
		return nil
	}
	var rect geom.Rect
	if err := json.Unmarshal([]byte(raw), &rect); err != nil {
		return nil
	}
	return &rect
}

// parseStringList decodes a JSON string array form field.
func parseStringList(raw string) []string {
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	return list
}
