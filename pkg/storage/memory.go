package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/boardstack/boardstack/pkg/errors"
)

// MemoryStore is an in-memory [Store] for tests and single-process use.
type MemoryStore struct {
	mu          sync.RWMutex
	documents   map[string]PDFDocument
	links       map[string]CanvasLink
	handwriting map[string]HandwritingNote
	typed       map[string]TypedNote // keyed by frame ID
	summaries   []MeetingSummary
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents:   make(map[string]PDFDocument),
		links:       make(map[string]CanvasLink),
		handwriting: make(map[string]HandwritingNote),
		typed:       make(map[string]TypedNote),
	}
}

func (s *MemoryStore) Close(context.Context) error { return nil }

func (s *MemoryStore) InsertDocument(_ context.Context, doc PDFDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = doc
	return nil
}

func (s *MemoryStore) GetDocument(_ context.Context, id string) (PDFDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return PDFDocument{}, errors.New(errors.ErrCodeDocumentNotFound, "document not found: "+id)
	}
	return doc, nil
}

func (s *MemoryStore) ListDocuments(_ context.Context, limit, offset int) ([]PDFDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]PDFDocument, 0, len(s.documents))
	for _, doc := range s.documents {
		all = append(all, doc)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if offset >= len(all) {
		return []PDFDocument{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *MemoryStore) UpsertCanvasLink(_ context.Context, link CanvasLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[link.ShapeID] = link
	return nil
}

func (s *MemoryStore) LinksForShapes(_ context.Context, shapeIDs []string) ([]CanvasLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var links []CanvasLink
	for _, id := range shapeIDs {
		if link, ok := s.links[id]; ok {
			links = append(links, link)
		}
	}
	return links, nil
}

func (s *MemoryStore) DeleteCanvasLink(_ context.Context, shapeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.links[shapeID]; !ok {
		return errors.New(errors.ErrCodeShapeNotFound, "no link for shape: "+shapeID)
	}
	delete(s.links, shapeID)
	return nil
}

func (s *MemoryStore) InsertHandwritingNote(_ context.Context, note HandwritingNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handwriting[note.ID] = note
	return nil
}

func (s *MemoryStore) SetHandwritingResult(_ context.Context, id, status, transcript string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	note, ok := s.handwriting[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "handwriting note not found: "+id)
	}
	note.Status = status
	note.Transcript = transcript
	note.UpdatedAt = time.Now().UTC()
	s.handwriting[id] = note
	return nil
}

func (s *MemoryStore) HandwritingNotesForFrames(_ context.Context, frameIDs []string) ([]HandwritingNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[string]bool, len(frameIDs))
	for _, id := range frameIDs {
		wanted[id] = true
	}
	var notes []HandwritingNote
	for _, note := range s.handwriting {
		if wanted[note.FrameID] {
			notes = append(notes, note)
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].ID < notes[j].ID })
	return notes, nil
}

func (s *MemoryStore) UpsertTypedNote(_ context.Context, note TypedNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.typed[note.FrameID]; ok {
		note.ID = existing.ID
		note.CreatedAt = existing.CreatedAt
	}
	s.typed[note.FrameID] = note
	return nil
}

func (s *MemoryStore) TypedNotesForFrames(_ context.Context, frameIDs []string) ([]TypedNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var notes []TypedNote
	for _, id := range frameIDs {
		if note, ok := s.typed[id]; ok {
			notes = append(notes, note)
		}
	}
	return notes, nil
}

func (s *MemoryStore) InsertSummary(_ context.Context, summary MeetingSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append(s.summaries, summary)
	return nil
}

func (s *MemoryStore) SummariesForRoom(_ context.Context, roomID string) ([]MeetingSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []MeetingSummary
	for _, summary := range s.summaries {
		if summary.RoomID == roomID {
			out = append(out, summary)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
