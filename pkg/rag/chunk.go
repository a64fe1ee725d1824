package rag

import "strings"

// minChunkChars filters out chunks too short to carry meaning. Chunks of
// this many stripped characters or fewer are dropped.
const minChunkChars = 50

// Chunk is one overlapping text segment ready for embedding.
type Chunk struct {
	Text       string
	PageNumber int
	Index      int
	CharStart  int
	CharEnd    int
}

// Chunker splits text into fixed-size overlapping windows.
type Chunker struct {
	Size    int
	Overlap int
}

// NewPDFChunker returns the chunking profile for PDF pages.
func NewPDFChunker() Chunker {
	return Chunker{Size: 1000, Overlap: 200}
}

// NewNoteChunker returns the smaller profile used for handwriting
// transcriptions and typed notes, which are much shorter than PDF pages.
func NewNoteChunker() Chunker {
	return Chunker{Size: 400, Overlap: 80}
}

// Chunk splits text into overlapping windows, skipping windows whose
// stripped content is minChunkChars or shorter. Index counts only the
// kept chunks. page is recorded on every chunk; pass 0 for non-paged
// sources.
func (c Chunker) Chunk(text string, page int) []Chunk {
	step := c.Size - c.Overlap
	if step <= 0 || c.Size <= 0 {
		return nil
	}

	var chunks []Chunk
	index := 0
	for start := 0; start < len(text); start += step {
		end := start + c.Size
		if end > len(text) {
			end = len(text)
		}
		window := text[start:end]
		if len(strings.TrimSpace(window)) > minChunkChars {
			chunks = append(chunks, Chunk{
				Text:       window,
				PageNumber: page,
				Index:      index,
				CharStart:  start,
				CharEnd:    start + c.Size,
			})
			index++
		}
	}
	return chunks
}
