// Package storage persists the metadata behind canvas knowledge features:
// ingested PDF documents, handwriting and typed notes, shape-to-document
// links, and meeting summaries. Chunk vectors live in the vector store;
// this package holds everything else.
//
// [Store] is the interface the rest of the system programs against.
// [MongoStore] is the production backend; [MemoryStore] backs tests and
// single-process CLI usage.
package storage

import (
	"context"
	"time"

	"github.com/boardstack/boardstack/pkg/geom"
)

// Note statuses. Handwriting notes start processing and move to ready or
// failed when transcription finishes; typed notes are ready on insert.
const (
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusFailed     = "failed"
)

// PDFDocument is the metadata record of one ingested PDF.
type PDFDocument struct {
	ID          string    `bson:"_id" json:"id"`
	Filename    string    `bson:"filename" json:"filename"`
	StoragePath string    `bson:"storage_path" json:"storage_path"`
	SizeBytes   int64     `bson:"size_bytes" json:"size_bytes"`
	PageCount   int       `bson:"page_count" json:"page_count"`
	ChunkCount  int       `bson:"chunk_count" json:"chunk_count"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// CanvasLink ties a canvas PDF shape to a stored document so selection
// context can resolve shapes back to their content.
type CanvasLink struct {
	ShapeID    string    `bson:"_id" json:"shape_id"`
	DocumentID string    `bson:"document_id" json:"document_id"`
	RoomID     string    `bson:"room_id,omitempty" json:"room_id,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// HandwritingNote is a captured handwriting frame awaiting or holding its
// transcription.
type HandwritingNote struct {
	ID          string     `bson:"_id" json:"id"`
	FrameID     string     `bson:"frame_id" json:"frame_id"`
	RoomID      string     `bson:"room_id" json:"room_id"`
	StoragePath string     `bson:"storage_path" json:"storage_path"`
	StrokeIDs   []string   `bson:"stroke_ids,omitempty" json:"stroke_ids,omitempty"`
	Bounds      *geom.Rect `bson:"bounds,omitempty" json:"bounds,omitempty"`
	GroupID     string     `bson:"group_id,omitempty" json:"group_id,omitempty"`
	Status      string     `bson:"status" json:"status"`
	Transcript  string     `bson:"transcript,omitempty" json:"transcript,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// TextShape is one text shape inside a typed note frame.
type TextShape struct {
	ShapeID string `bson:"shape_id" json:"shape_id"`
	Text    string `bson:"text" json:"text"`
	Order   int    `bson:"order" json:"order"`
}

// TypedNote is the synced state of a typed note frame. Syncs are
// idempotent per frame: a new sync replaces the previous one.
type TypedNote struct {
	ID         string      `bson:"_id" json:"id"`
	FrameID    string      `bson:"frame_id" json:"frame_id"`
	RoomID     string      `bson:"room_id" json:"room_id"`
	Bounds     *geom.Rect  `bson:"bounds,omitempty" json:"bounds,omitempty"`
	TextShapes []TextShape `bson:"text_shapes" json:"text_shapes"`
	Status     string      `bson:"status" json:"status"`
	CreatedAt  time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `bson:"updated_at" json:"updated_at"`
}

// MeetingSummary is a persisted call summary.
type MeetingSummary struct {
	ID         string    `bson:"_id" json:"id"`
	RoomID     string    `bson:"room_id" json:"room_id"`
	Transcript string    `bson:"transcript" json:"transcript"`
	Summary    string    `bson:"summary" json:"summary"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// Store persists canvas knowledge metadata.
type Store interface {
	InsertDocument(ctx context.Context, doc PDFDocument) error
	GetDocument(ctx context.Context, id string) (PDFDocument, error)
	ListDocuments(ctx context.Context, limit, offset int) ([]PDFDocument, error)

	UpsertCanvasLink(ctx context.Context, link CanvasLink) error
	LinksForShapes(ctx context.Context, shapeIDs []string) ([]CanvasLink, error)
	DeleteCanvasLink(ctx context.Context, shapeID string) error

	InsertHandwritingNote(ctx context.Context, note HandwritingNote) error
	SetHandwritingResult(ctx context.Context, id, status, transcript string) error
	HandwritingNotesForFrames(ctx context.Context, frameIDs []string) ([]HandwritingNote, error)

	UpsertTypedNote(ctx context.Context, note TypedNote) error
	TypedNotesForFrames(ctx context.Context, frameIDs []string) ([]TypedNote, error)

	InsertSummary(ctx context.Context, summary MeetingSummary) error
	SummariesForRoom(ctx context.Context, roomID string) ([]MeetingSummary, error)

	Close(ctx context.Context) error
}
