package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/boardstack/boardstack/pkg/vectorstore"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean name untouched", "report-2024.pdf", "report-2024.pdf"},
		{"spaces become underscores", "my file.pdf", "my_file.pdf"},
		{"unsafe chars replaced", "a/b\\c:d.pdf", "a_b_c_d.pdf"},
		{"consecutive underscores collapse", "a   b.pdf", "a_b.pdf"},
		{"non-ascii dropped", "résumé.pdf", "rsum.pdf"},
		{"leading dots trimmed", "..hidden.pdf", "hidden.pdf"},
		{"empty falls back", "", "unnamed_file"},
		{"only unsafe falls back", "///", "unnamed_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestChunkerOverlap(t *testing.T) {
	c := Chunker{Size: 100, Overlap: 20}
	text := strings.Repeat("abcdefghij", 30) // 300 chars

	chunks := c.Chunk(text, 1)
	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}

	// Windows advance by size-overlap.
	for i, chunk := range chunks {
		wantStart := i * 80
		if chunk.CharStart != wantStart {
			t.Errorf("chunk %d CharStart = %d, want %d", i, chunk.CharStart, wantStart)
		}
		if chunk.PageNumber != 1 {
			t.Errorf("chunk %d PageNumber = %d", i, chunk.PageNumber)
		}
		if chunk.Index != i {
			t.Errorf("chunk %d Index = %d", i, chunk.Index)
		}
	}

	// Consecutive chunks share the overlap region.
	if len(chunks) >= 2 {
		first, second := chunks[0], chunks[1]
		if !strings.HasSuffix(first.Text, second.Text[:20]) {
			t.Error("chunks do not overlap by 20 chars")
		}
	}
}

func TestChunkerDropsShortWindows(t *testing.T) {
	c := NewNoteChunker()

	if got := c.Chunk("too short", 0); got != nil {
		t.Errorf("short text produced %d chunks", len(got))
	}
	if got := c.Chunk(strings.Repeat(" ", 500), 0); got != nil {
		t.Errorf("whitespace text produced %d chunks", len(got))
	}

	long := strings.Repeat("meaningful content here ", 30)
	if got := c.Chunk(long, 0); len(got) == 0 {
		t.Error("long text produced no chunks")
	}
}

func TestChunkerDegenerateConfig(t *testing.T) {
	// Overlap >= size would loop forever; must bail instead.
	c := Chunker{Size: 50, Overlap: 50}
	if got := c.Chunk(strings.Repeat("x", 500), 0); got != nil {
		t.Errorf("degenerate chunker produced %d chunks", len(got))
	}
}

func TestChunkingProfiles(t *testing.T) {
	if c := NewPDFChunker(); c.Size != 1000 || c.Overlap != 200 {
		t.Errorf("PDF profile = %+v", c)
	}
	if c := NewNoteChunker(); c.Size != 400 || c.Overlap != 80 {
		t.Errorf("note profile = %+v", c)
	}
}

func TestCleanText(t *testing.T) {
	in := "  hello\x00 world\n\n\tagain�  "
	if got := cleanText(in); got != "hello world again" {
		t.Errorf("cleanText = %q", got)
	}
}

type fakeChunkStore struct {
	docs []vectorstore.Document
	err  error
}

func (f *fakeChunkStore) AddDocuments(ctx context.Context, docs []vectorstore.Document) error {
	if f.err != nil {
		return f.err
	}
	f.docs = append(f.docs, docs...)
	return nil
}

func TestProcessNote(t *testing.T) {
	store := &fakeChunkStore{}
	p := NewProcessor(store, nil)

	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 20)
	n, err := p.ProcessNote(context.Background(), vectorstore.SourceHandwriting, "frame-1", text)
	if err != nil {
		t.Fatalf("ProcessNote: %v", err)
	}
	if n == 0 || n != len(store.docs) {
		t.Fatalf("stored %d chunks, reported %d", len(store.docs), n)
	}

	for _, doc := range store.docs {
		if doc.ID == "" {
			t.Error("chunk without ID")
		}
		if doc.Metadata[vectorstore.MetaSourceType] != vectorstore.SourceHandwriting {
			t.Errorf("source_type = %v", doc.Metadata[vectorstore.MetaSourceType])
		}
		if doc.Metadata[vectorstore.MetaFrameID] != "frame-1" {
			t.Errorf("frame_id = %v", doc.Metadata[vectorstore.MetaFrameID])
		}
	}
}

func TestProcessNoteEmptyText(t *testing.T) {
	store := &fakeChunkStore{}
	p := NewProcessor(store, nil)

	n, err := p.ProcessNote(context.Background(), vectorstore.SourceTyped, "frame-2", "")
	if err != nil {
		t.Fatalf("ProcessNote: %v", err)
	}
	if n != 0 || len(store.docs) != 0 {
		t.Errorf("empty note stored %d chunks", len(store.docs))
	}
}

func TestProcessPDFSizeLimit(t *testing.T) {
	p := NewProcessor(&fakeChunkStore{}, nil)

	oversized := make([]byte, MaxPDFSize+1)
	if _, err := p.ProcessPDF(context.Background(), "doc-1", "big.pdf", oversized); err == nil {
		t.Error("oversized PDF accepted")
	}
}

func TestProcessPDFRejectsGarbage(t *testing.T) {
	p := NewProcessor(&fakeChunkStore{}, nil)

	if _, err := p.ProcessPDF(context.Background(), "doc-1", "fake.pdf", []byte("not a pdf")); err == nil {
		t.Error("garbage bytes accepted as PDF")
	}
}
