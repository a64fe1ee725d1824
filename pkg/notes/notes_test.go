package notes

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/boardstack/boardstack/pkg/errors"
	"github.com/boardstack/boardstack/pkg/storage"
	"github.com/boardstack/boardstack/pkg/vectorstore"
)

type fakeIngestor struct {
	calls []ingestCall
	count int
	err   error
}

type ingestCall struct {
	sourceType string
	frameID    string
	text       string
}

func (f *fakeIngestor) ProcessNote(_ context.Context, sourceType, frameID, text string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.calls = append(f.calls, ingestCall{sourceType, frameID, text})
	return f.count, nil
}

type fakeDeleter struct {
	filters []map[string]interface{}
}

func (f *fakeDeleter) DeleteByFilter(_ context.Context, filters map[string]interface{}) error {
	f.filters = append(f.filters, filters)
	return nil
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) TranscribeImage(context.Context, []byte, string) (string, error) {
	return f.text, f.err
}

func newTestService(t *testing.T, ingestor *fakeIngestor, deleter *fakeDeleter, transcriber *fakeTranscriber) (*Service, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	blobs, err := storage.NewBlobStore(t.TempDir(), "/files")
	if err != nil {
		t.Fatalf("NewBlobStore: %v", err)
	}
	var d ChunkDeleter
	if deleter != nil {
		d = deleter
	}
	var tr Transcriber
	if transcriber != nil {
		tr = transcriber
	}
	return NewService(store, blobs, ingestor, d, tr, nil), store
}

func TestSyncTypedNote(t *testing.T) {
	ingestor := &fakeIngestor{count: 3}
	deleter := &fakeDeleter{}
	svc, store := newTestService(t, ingestor, deleter, nil)

	rich, _ := json.Marshal(map[string]interface{}{
		"type": "doc",
		"content": []map[string]interface{}{
			{"type": "paragraph", "content": []map[string]interface{}{
				{"type": "text", "text": "rich text wins"},
			}},
		},
	})

	res, err := svc.SyncTypedNote(context.Background(), TypedNoteRequest{
		FrameID: "frame-1",
		TextShapes: []TextShapeInput{
			{ShapeID: "shape:b", Text: "second", Order: 2},
			{ShapeID: "shape:a", RichText: rich, Text: "ignored", Order: 1},
		},
	})
	if err != nil {
		t.Fatalf("SyncTypedNote: %v", err)
	}
	if res.ChunkCount != 3 || res.Warning != "" {
		t.Errorf("result = %+v", res)
	}

	// Shapes combined in canvas order, rich text preferred over plain.
	if len(ingestor.calls) != 1 {
		t.Fatalf("ingested %d times", len(ingestor.calls))
	}
	call := ingestor.calls[0]
	if call.sourceType != vectorstore.SourceTyped || call.frameID != "frame-1" {
		t.Errorf("call = %+v", call)
	}
	if call.text != "rich text wins\n\nsecond" {
		t.Errorf("combined text = %q", call.text)
	}

	// Old chunks replaced before ingest.
	if len(deleter.filters) != 1 || deleter.filters[0][vectorstore.MetaFrameID] != "frame-1" {
		t.Errorf("delete filters = %+v", deleter.filters)
	}

	notes, _ := store.TypedNotesForFrames(context.Background(), []string{"frame-1"})
	if len(notes) != 1 || notes[0].Status != storage.StatusReady {
		t.Fatalf("stored notes = %+v", notes)
	}
	if notes[0].RoomID != DefaultRoomID {
		t.Errorf("room defaulted to %q", notes[0].RoomID)
	}
	if notes[0].TextShapes[0].ShapeID != "shape:a" {
		t.Errorf("shapes not sorted by order: %+v", notes[0].TextShapes)
	}
}

func TestSyncTypedNoteNoShapes(t *testing.T) {
	svc, _ := newTestService(t, &fakeIngestor{}, nil, nil)

	_, err := svc.SyncTypedNote(context.Background(), TypedNoteRequest{FrameID: "frame-1"})
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("error code = %v", errors.GetCode(err))
	}
}

func TestSyncTypedNoteNoEmbeddableText(t *testing.T) {
	ingestor := &fakeIngestor{}
	deleter := &fakeDeleter{}
	svc, store := newTestService(t, ingestor, deleter, nil)

	res, err := svc.SyncTypedNote(context.Background(), TypedNoteRequest{
		FrameID:    "frame-1",
		TextShapes: []TextShapeInput{{ShapeID: "shape:a", Text: "   "}},
	})
	if err != nil {
		t.Fatalf("SyncTypedNote: %v", err)
	}
	if res.Warning == "" || res.ChunkCount != 0 {
		t.Errorf("result = %+v", res)
	}
	// Existing chunks must be preserved: no delete, no ingest.
	if len(deleter.filters) != 0 || len(ingestor.calls) != 0 {
		t.Error("empty sync touched the vector store")
	}
	// The note record itself still syncs.
	notes, _ := store.TypedNotesForFrames(context.Background(), []string{"frame-1"})
	if len(notes) != 1 {
		t.Errorf("stored notes = %+v", notes)
	}
}

func TestSaveHandwriting(t *testing.T) {
	svc, store := newTestService(t, &fakeIngestor{}, nil, nil)

	res, err := svc.SaveHandwriting(context.Background(), HandwritingUpload{
		FrameID:   "frame-7",
		StrokeIDs: []string{"shape:s1", "shape:s2"},
		Image:     []byte{0x89, 'P', 'N', 'G'},
		MimeType:  "image/png",
	})
	if err != nil {
		t.Fatalf("SaveHandwriting: %v", err)
	}
	if res.Status != storage.StatusProcessing {
		t.Errorf("status = %q", res.Status)
	}
	if res.StoragePath != "handwriting/frame-7.png" {
		t.Errorf("storage path = %q", res.StoragePath)
	}
	if res.PublicURL != "/files/handwriting/frame-7.png" {
		t.Errorf("public URL = %q", res.PublicURL)
	}

	notes, _ := store.HandwritingNotesForFrames(context.Background(), []string{"frame-7"})
	if len(notes) != 1 || notes[0].Status != storage.StatusProcessing {
		t.Fatalf("stored notes = %+v", notes)
	}
	if notes[0].RoomID != DefaultRoomID || len(notes[0].StrokeIDs) != 2 {
		t.Errorf("note = %+v", notes[0])
	}
}

func TestSaveHandwritingTraversalFrameID(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "blobs")
	blobs, err := storage.NewBlobStore(root, "/files")
	if err != nil {
		t.Fatalf("NewBlobStore: %v", err)
	}
	svc := NewService(storage.NewMemoryStore(), blobs, &fakeIngestor{}, nil, nil, nil)

	res, err := svc.SaveHandwriting(context.Background(), HandwritingUpload{
		FrameID:  "../../outside/evil",
		Image:    []byte{0x89, 'P', 'N', 'G'},
		MimeType: "image/png",
	})
	if err != nil {
		t.Fatalf("SaveHandwriting: %v", err)
	}
	if res.StoragePath != "handwriting/outside_evil.png" {
		t.Errorf("storage path = %q", res.StoragePath)
	}
	if _, err := os.Stat(filepath.Join(root, "handwriting", "outside_evil.png")); err != nil {
		t.Errorf("sanitized blob not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(parent, "outside")); !os.IsNotExist(err) {
		t.Error("image written outside the blob root")
	}
}

func TestSaveHandwritingRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t, &fakeIngestor{}, nil, nil)
	ctx := context.Background()

	_, err := svc.SaveHandwriting(ctx, HandwritingUpload{
		FrameID: "f", Image: []byte{1}, MimeType: "image/gif",
	})
	if errors.GetCode(err) != errors.ErrCodeInvalidFile {
		t.Errorf("gif error code = %v", errors.GetCode(err))
	}

	_, err = svc.SaveHandwriting(ctx, HandwritingUpload{
		FrameID: "f", MimeType: "image/png",
	})
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("empty image error code = %v", errors.GetCode(err))
	}
}

func TestProcessHandwriting(t *testing.T) {
	ingestor := &fakeIngestor{count: 2}
	svc, store := newTestService(t, ingestor, &fakeDeleter{}, &fakeTranscriber{text: "meeting agenda"})

	ctx := context.Background()
	res, err := svc.SaveHandwriting(ctx, HandwritingUpload{
		FrameID: "frame-1", Image: []byte{1}, MimeType: "image/png",
	})
	if err != nil {
		t.Fatalf("SaveHandwriting: %v", err)
	}

	if err := svc.ProcessHandwriting(ctx, res.NoteID, "frame-1", []byte{1}, "image/png"); err != nil {
		t.Fatalf("ProcessHandwriting: %v", err)
	}

	notes, _ := store.HandwritingNotesForFrames(ctx, []string{"frame-1"})
	if notes[0].Status != storage.StatusReady || notes[0].Transcript != "meeting agenda" {
		t.Errorf("note = %+v", notes[0])
	}
	if len(ingestor.calls) != 1 || ingestor.calls[0].sourceType != vectorstore.SourceHandwriting {
		t.Errorf("ingest calls = %+v", ingestor.calls)
	}
}

func TestProcessHandwritingFailureMarksFailed(t *testing.T) {
	transcriber := &fakeTranscriber{err: errors.New(errors.ErrCodeUpstream, "model down")}
	svc, store := newTestService(t, &fakeIngestor{}, nil, transcriber)

	ctx := context.Background()
	res, err := svc.SaveHandwriting(ctx, HandwritingUpload{
		FrameID: "frame-1", Image: []byte{1}, MimeType: "image/png",
	})
	if err != nil {
		t.Fatalf("SaveHandwriting: %v", err)
	}

	if err := svc.ProcessHandwriting(ctx, res.NoteID, "frame-1", []byte{1}, "image/png"); err == nil {
		t.Fatal("expected error")
	}

	notes, _ := store.HandwritingNotesForFrames(ctx, []string{"frame-1"})
	if notes[0].Status != storage.StatusFailed {
		t.Errorf("status = %q", notes[0].Status)
	}
}

func TestProcessHandwritingEmptyTranscript(t *testing.T) {
	ingestor := &fakeIngestor{}
	svc, store := newTestService(t, ingestor, nil, &fakeTranscriber{text: ""})

	ctx := context.Background()
	res, _ := svc.SaveHandwriting(ctx, HandwritingUpload{
		FrameID: "frame-1", Image: []byte{1}, MimeType: "image/png",
	})

	if err := svc.ProcessHandwriting(ctx, res.NoteID, "frame-1", []byte{1}, "image/png"); err != nil {
		t.Fatalf("ProcessHandwriting: %v", err)
	}

	// A blank frame still completes, it just indexes nothing.
	notes, _ := store.HandwritingNotesForFrames(ctx, []string{"frame-1"})
	if notes[0].Status != storage.StatusReady {
		t.Errorf("status = %q", notes[0].Status)
	}
	if len(ingestor.calls) != 0 {
		t.Errorf("ingest calls = %+v", ingestor.calls)
	}
}

type fakeSearcher struct {
	byDocument map[string][]vectorstore.SearchResult
	byFrame    map[string][]vectorstore.SearchResult
}

func (f *fakeSearcher) SearchDocument(_ context.Context, _, documentID string, _ int, _ float32) ([]vectorstore.SearchResult, error) {
	return f.byDocument[documentID], nil
}

func (f *fakeSearcher) SearchWithFilters(_ context.Context, _ string, _ int, _ float32, filters map[string]interface{}) ([]vectorstore.SearchResult, error) {
	frameID, _ := filters[vectorstore.MetaFrameID].(string)
	sourceType, _ := filters[vectorstore.MetaSourceType].(string)
	return f.byFrame[sourceType+"/"+frameID], nil
}

func TestContextBuilder(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	store.UpsertCanvasLink(ctx, storage.CanvasLink{ShapeID: "shape:pdf", DocumentID: "doc-1"})
	store.InsertHandwritingNote(ctx, storage.HandwritingNote{
		ID: "n1", FrameID: "frame-hw", Status: storage.StatusReady,
	})
	store.InsertHandwritingNote(ctx, storage.HandwritingNote{
		ID: "n2", FrameID: "frame-pending", Status: storage.StatusProcessing,
	})
	store.UpsertTypedNote(ctx, storage.TypedNote{
		ID: "n3", FrameID: "frame-typed", Status: storage.StatusReady,
	})

	search := &fakeSearcher{
		byDocument: map[string][]vectorstore.SearchResult{
			"doc-1": {{Content: "from the pdf", Score: 0.9, Metadata: map[string]interface{}{
				vectorstore.MetaSourceType: vectorstore.SourcePDF,
				vectorstore.MetaFilename:   "paper.pdf",
			}}},
		},
		byFrame: map[string][]vectorstore.SearchResult{
			vectorstore.SourceHandwriting + "/frame-hw": {{Content: "from handwriting", Score: 0.5}},
			vectorstore.SourceTyped + "/frame-typed":    {{Content: "from typed note", Score: 0.4}},
			// Must never be queried: the note is still processing.
			vectorstore.SourceHandwriting + "/frame-pending": {{Content: "UNREADY", Score: 0.9}},
		},
	}

	builder := NewContextBuilder(store, search, nil)
	got, err := builder.Build(ctx, "what does it say",
		[]string{"shape:pdf", "frame-hw", "frame-pending", "frame-typed"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, want := range []string{"from the pdf", "from handwriting", "from typed note"} {
		if !strings.Contains(got, want) {
			t.Errorf("context missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "UNREADY") {
		t.Error("context includes unprocessed handwriting frame")
	}
}

func TestContextBuilderEmptySelection(t *testing.T) {
	builder := NewContextBuilder(storage.NewMemoryStore(), &fakeSearcher{}, nil)

	got, err := builder.Build(context.Background(), "query", nil)
	if err != nil || got != "" {
		t.Errorf("Build = %q, %v", got, err)
	}
}
