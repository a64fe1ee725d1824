package vectorstore

// Source types stored in chunk metadata. Every embedded chunk records
// where on the canvas it came from so search results can be attributed.
const (
	SourcePDF         = "pdf"
	SourceHandwriting = "handwriting"
	SourceTyped       = "typed"
)

// Metadata keys used on stored chunks.
const (
	MetaID         = "id"
	MetaSourceType = "source_type"
	MetaDocumentID = "document_id"
	MetaFrameID    = "frame_id"
	MetaShapeID    = "shape_id"
	MetaPageNumber = "page_number"
	MetaFilename   = "filename"
)

// Document is a chunk of text to embed and store.
type Document struct {
	// ID uniquely identifies the chunk.
	ID string

	// Content is the chunk text.
	Content string

	// Metadata carries source attribution (see the Meta* keys).
	Metadata map[string]interface{}
}

// SearchResult is one similarity search hit.
type SearchResult struct {
	// ID is the chunk ID.
	ID string

	// Content is the chunk text.
	Content string

	// Metadata is the chunk's stored metadata.
	Metadata map[string]interface{}

	// Score is the similarity score (higher is more similar).
	Score float32
}

// SourceType returns the result's source type metadata, or "" if absent.
func (r SearchResult) SourceType() string {
	s, _ := r.Metadata[MetaSourceType].(string)
	return s
}

// MetaString returns a string metadata value, or "" if absent.
func (r SearchResult) MetaString(key string) string {
	s, _ := r.Metadata[key].(string)
	return s
}
