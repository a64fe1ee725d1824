// Package notes implements the canvas note features: syncing typed note
// frames into searchable chunks, and the handwriting capture lifecycle
// (store image, transcribe, chunk, mark ready).
package notes

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/boardstack/boardstack/pkg/errors"
	"github.com/boardstack/boardstack/pkg/geom"
	"github.com/boardstack/boardstack/pkg/rag"
	"github.com/boardstack/boardstack/pkg/richtext"
	"github.com/boardstack/boardstack/pkg/storage"
	"github.com/boardstack/boardstack/pkg/vectorstore"
)

// DefaultRoomID is used when a sync or upload does not name a room.
const DefaultRoomID = "default"

// Transcriber turns a handwriting frame image into text. Satisfied by
// [llm.Chat].
type Transcriber interface {
	TranscribeImage(ctx context.Context, data []byte, mimeType string) (string, error)
}

// NoteIngestor chunks and embeds note text. Satisfied by [rag.Processor].
type NoteIngestor interface {
	ProcessNote(ctx context.Context, sourceType, frameID, text string) (int, error)
}

// ChunkDeleter removes previously stored chunks so a re-sync can replace
// them. Satisfied by [vectorstore.Service].
type ChunkDeleter interface {
	DeleteByFilter(ctx context.Context, filters map[string]interface{}) error
}

// Service runs note syncing and handwriting processing.
type Service struct {
	store       storage.Store
	blobs       *storage.BlobStore
	ingestor    NoteIngestor
	deleter     ChunkDeleter
	transcriber Transcriber
	logger      *log.Logger
}

// NewService creates a note Service. deleter and transcriber may be nil;
// without a deleter re-syncs append rather than replace, and without a
// transcriber handwriting notes fail processing.
func NewService(store storage.Store, blobs *storage.BlobStore, ingestor NoteIngestor,
	deleter ChunkDeleter, transcriber Transcriber, logger *log.Logger) *Service {
	return &Service{
		store:       store,
		blobs:       blobs,
		ingestor:    ingestor,
		deleter:     deleter,
		transcriber: transcriber,
		logger:      logger,
	}
}

// TextShapeInput is one text shape from a typed note frame as the canvas
// sends it. RichText, when present, wins over Text.
type TextShapeInput struct {
	ShapeID  string          `json:"shapeId"`
	RichText json.RawMessage `json:"richText,omitempty"`
	Text     string          `json:"text,omitempty"`
	Order    int             `json:"order"`
}

// TypedNoteRequest is a typed note frame sync.
type TypedNoteRequest struct {
	FrameID    string           `json:"frameId"`
	RoomID     string           `json:"roomId,omitempty"`
	Bounds     *geom.Rect       `json:"bounds,omitempty"`
	TextShapes []TextShapeInput `json:"textShapes"`
}

// TypedNoteResult reports a completed sync. Warning is set when the frame
// contained no embeddable text; existing chunks are left untouched then.
type TypedNoteResult struct {
	NoteID     string
	FrameID    string
	ChunkCount int
	Warning    string
}

// SyncTypedNote persists the frame's current text shapes and replaces the
// frame's chunks in the vector store. Shapes are processed in their canvas
// order. Idempotent per frame.
func (s *Service) SyncTypedNote(ctx context.Context, req TypedNoteRequest) (*TypedNoteResult, error) {
	if req.FrameID == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "frameId is required")
	}
	if len(req.TextShapes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no text shapes in frame")
	}
	roomID := req.RoomID
	if roomID == "" {
		roomID = DefaultRoomID
	}

	shapes := make([]TextShapeInput, len(req.TextShapes))
	copy(shapes, req.TextShapes)
	sort.SliceStable(shapes, func(i, j int) bool { return shapes[i].Order < shapes[j].Order })

	var parts []string
	stored := make([]storage.TextShape, 0, len(shapes))
	for _, shape := range shapes {
		text := shapeText(shape)
		stored = append(stored, storage.TextShape{
			ShapeID: shape.ShapeID,
			Text:    text,
			Order:   shape.Order,
		})
		if text != "" {
			parts = append(parts, text)
		}
	}
	combined := strings.Join(parts, "\n\n")

	now := time.Now().UTC()
	noteID := uuid.NewString()
	note := storage.TypedNote{
		ID:         noteID,
		FrameID:    req.FrameID,
		RoomID:     roomID,
		Bounds:     req.Bounds,
		TextShapes: stored,
		Status:     storage.StatusReady,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.UpsertTypedNote(ctx, note); err != nil {
		return nil, err
	}

	if strings.TrimSpace(combined) == "" {
		if s.logger != nil {
			s.logger.Warn("typed note has no embeddable text", "frame", req.FrameID)
		}
		return &TypedNoteResult{
			NoteID:  noteID,
			FrameID: req.FrameID,
			Warning: "no embeddable text in frame; existing chunks preserved",
		}, nil
	}

	if s.deleter != nil {
		err := s.deleter.DeleteByFilter(ctx, map[string]interface{}{
			vectorstore.MetaFrameID:    req.FrameID,
			vectorstore.MetaSourceType: vectorstore.SourceTyped,
		})
		if err != nil && s.logger != nil {
			s.logger.Warn("replacing typed note chunks", "frame", req.FrameID, "err", err)
		}
	}

	count, err := s.ingestor.ProcessNote(ctx, vectorstore.SourceTyped, req.FrameID, combined)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("synced typed note", "frame", req.FrameID, "shapes", len(shapes), "chunks", count)
	}
	return &TypedNoteResult{NoteID: noteID, FrameID: req.FrameID, ChunkCount: count}, nil
}

// shapeText resolves a shape's text: rich text wins, plain text is the
// fallback. Unparseable rich text falls back too rather than failing the
// whole sync.
func shapeText(shape TextShapeInput) string {
	if len(shape.RichText) > 0 {
		if text, err := richtext.ExtractJSON(shape.RichText); err == nil && text != "" {
			return text
		}
	}
	return strings.TrimSpace(shape.Text)
}

// HandwritingUpload is a captured handwriting frame image.
type HandwritingUpload struct {
	FrameID   string
	RoomID    string
	Timestamp string
	Bounds    *geom.Rect
	StrokeIDs []string
	GroupID   string
	Image     []byte
	MimeType  string
}

// HandwritingResult reports an accepted upload. Status starts at
// processing; transcription happens afterwards via ProcessHandwriting.
type HandwritingResult struct {
	NoteID      string
	FrameID     string
	StoragePath string
	PublicURL   string
	Status      string
}

// SaveHandwriting stores the frame image and records the note as
// processing. The caller is expected to run ProcessHandwriting afterwards,
// typically in the background.
func (s *Service) SaveHandwriting(ctx context.Context, upload HandwritingUpload) (*HandwritingResult, error) {
	if upload.FrameID == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "frameId is required")
	}
	if len(upload.Image) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty image")
	}

	var ext string
	switch upload.MimeType {
	case "image/png":
		ext = ".png"
	case "image/jpeg":
		ext = ".jpg"
	default:
		return nil, errors.New(errors.ErrCodeInvalidFile, "image must be PNG or JPEG")
	}
	roomID := upload.RoomID
	if roomID == "" {
		roomID = DefaultRoomID
	}

	// The frame ID comes straight from the client; sanitize it before it
	// becomes a filename.
	path, err := s.blobs.Save(storage.BlobHandwriting, rag.SanitizeFilename(upload.FrameID)+ext, upload.Image)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	note := storage.HandwritingNote{
		ID:          uuid.NewString(),
		FrameID:     upload.FrameID,
		RoomID:      roomID,
		StoragePath: path,
		StrokeIDs:   upload.StrokeIDs,
		Bounds:      upload.Bounds,
		GroupID:     upload.GroupID,
		Status:      storage.StatusProcessing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertHandwritingNote(ctx, note); err != nil {
		return nil, err
	}

	return &HandwritingResult{
		NoteID:      note.ID,
		FrameID:     note.FrameID,
		StoragePath: path,
		PublicURL:   s.blobs.PublicURL(path),
		Status:      storage.StatusProcessing,
	}, nil
}

// ProcessHandwriting transcribes a stored handwriting note and indexes the
// result, moving the note to ready. Any failure moves it to failed; the
// image and record stay for a retry.
func (s *Service) ProcessHandwriting(ctx context.Context, noteID, frameID string, image []byte, mimeType string) error {
	if s.transcriber == nil {
		return s.fail(ctx, noteID, errors.New(errors.ErrCodeNotEnabled, "no transcriber configured"))
	}

	transcript, err := s.transcriber.TranscribeImage(ctx, image, mimeType)
	if err != nil {
		return s.fail(ctx, noteID, err)
	}

	if transcript != "" {
		if s.deleter != nil {
			err := s.deleter.DeleteByFilter(ctx, map[string]interface{}{
				vectorstore.MetaFrameID:    frameID,
				vectorstore.MetaSourceType: vectorstore.SourceHandwriting,
			})
			if err != nil && s.logger != nil {
				s.logger.Warn("replacing handwriting chunks", "frame", frameID, "err", err)
			}
		}
		if _, err := s.ingestor.ProcessNote(ctx, vectorstore.SourceHandwriting, frameID, transcript); err != nil {
			return s.fail(ctx, noteID, err)
		}
	}

	if err := s.store.SetHandwritingResult(ctx, noteID, storage.StatusReady, transcript); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Info("processed handwriting note", "note", noteID, "frame", frameID,
			"chars", len(transcript))
	}
	return nil
}

func (s *Service) fail(ctx context.Context, noteID string, cause error) error {
	if s.logger != nil {
		s.logger.Error("handwriting processing failed", "note", noteID, "err", cause)
	}
	if err := s.store.SetHandwritingResult(ctx, noteID, storage.StatusFailed, ""); err != nil {
		return err
	}
	return cause
}
