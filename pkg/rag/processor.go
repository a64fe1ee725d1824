// Package rag implements the ingestion pipeline that turns canvas content
// (PDF uploads, handwriting transcriptions, typed notes) into embedded,
// searchable chunks: extract, chunk, embed, upsert.
package rag

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/boardstack/boardstack/pkg/errors"
	"github.com/boardstack/boardstack/pkg/observability"
	"github.com/boardstack/boardstack/pkg/vectorstore"
)

// ChunkStore receives embedded chunks. Satisfied by [vectorstore.Service].
type ChunkStore interface {
	AddDocuments(ctx context.Context, docs []vectorstore.Document) error
}

// Processor runs the ingestion pipeline.
type Processor struct {
	store       ChunkStore
	pdfChunker  Chunker
	noteChunker Chunker
	logger      *log.Logger
}

// NewProcessor creates a Processor with the standard chunking profiles.
func NewProcessor(store ChunkStore, logger *log.Logger) *Processor {
	return &Processor{
		store:       store,
		pdfChunker:  NewPDFChunker(),
		noteChunker: NewNoteChunker(),
		logger:      logger,
	}
}

// PDFResult summarizes one ingested PDF.
type PDFResult struct {
	DocumentID string
	Filename   string
	PageCount  int
	ChunkCount int
}

// ProcessPDF extracts, chunks, and stores a PDF. filename is sanitized
// before it lands in chunk metadata. Documents whose pages produce no
// chunks (e.g. fully scanned PDFs) succeed with ChunkCount zero.
func (p *Processor) ProcessPDF(ctx context.Context, documentID string, filename string, data []byte) (*PDFResult, error) {
	if len(data) > MaxPDFSize {
		return nil, errors.New(errors.ErrCodeFileTooLarge, "PDF exceeds %d MB limit", MaxPDFSize>>20)
	}
	filename = SanitizeFilename(filename)

	observability.Ingest().OnExtractStart(ctx, documentID, filename)
	start := time.Now()
	pages, err := ExtractPages(data)
	observability.Ingest().OnExtractComplete(ctx, documentID, len(pages), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	var docs []vectorstore.Document
	for _, page := range pages {
		for _, chunk := range p.pdfChunker.Chunk(page.Text, page.Number) {
			docs = append(docs, vectorstore.Document{
				ID:      uuid.NewString(),
				Content: chunk.Text,
				Metadata: map[string]interface{}{
					vectorstore.MetaSourceType: vectorstore.SourcePDF,
					vectorstore.MetaDocumentID: documentID,
					vectorstore.MetaFilename:   filename,
					vectorstore.MetaPageNumber: chunk.PageNumber,
					"chunk_index":              chunk.Index,
				},
			})
		}
	}
	observability.Ingest().OnChunkComplete(ctx, documentID, len(docs))

	if err := p.storeChunks(ctx, documentID, docs); err != nil {
		return nil, err
	}

	if p.logger != nil {
		p.logger.Info("ingested PDF", "document", documentID, "file", filename,
			"pages", len(pages), "chunks", len(docs))
	}
	return &PDFResult{
		DocumentID: documentID,
		Filename:   filename,
		PageCount:  len(pages),
		ChunkCount: len(docs),
	}, nil
}

// ProcessNote chunks and stores note text (handwriting transcription or
// typed note content). sourceType is [vectorstore.SourceHandwriting] or
// [vectorstore.SourceTyped]; frameID attributes the chunks to their canvas
// frame. Returns the number of stored chunks.
func (p *Processor) ProcessNote(ctx context.Context, sourceType, frameID, text string) (int, error) {
	chunks := p.noteChunker.Chunk(text, 0)

	docs := make([]vectorstore.Document, 0, len(chunks))
	for _, chunk := range chunks {
		docs = append(docs, vectorstore.Document{
			ID:      uuid.NewString(),
			Content: chunk.Text,
			Metadata: map[string]interface{}{
				vectorstore.MetaSourceType: sourceType,
				vectorstore.MetaFrameID:    frameID,
				"chunk_index":              chunk.Index,
			},
		})
	}
	observability.Ingest().OnChunkComplete(ctx, frameID, len(docs))

	if err := p.storeChunks(ctx, frameID, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}

func (p *Processor) storeChunks(ctx context.Context, sourceID string, docs []vectorstore.Document) error {
	if len(docs) == 0 {
		return nil
	}

	observability.Ingest().OnEmbedStart(ctx, sourceID, len(docs))
	start := time.Now()
	err := p.store.AddDocuments(ctx, docs)
	observability.Ingest().OnEmbedComplete(ctx, sourceID, time.Since(start), err)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "storing chunks")
	}
	return nil
}
