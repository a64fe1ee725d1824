// Package vectorstore provides vector storage via langchaingo.
//
// This package wraps langchaingo's Qdrant vector store to persist and
// search embedded canvas content. Each chunk carries source metadata
// (PDF document, handwriting frame, typed note) so selection-scoped
// search can filter down to the shapes the user actually selected.
//
// Example usage:
//
//	config := vectorstore.Config{
//	    URL:            "http://localhost:6333",
//	    CollectionName: "boardstack",
//	    Embedder:       embeddingService,
//	}
//	service, err := vectorstore.NewService(config)
//
//	err = service.AddDocuments(ctx, docs)
//	results, err := service.Search(ctx, "transformer architecture", 10, 0.3)
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
	"github.com/tmc/langchaingo/vectorstores/qdrant"

	"github.com/boardstack/boardstack/pkg/observability"
)

var (
	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyDocuments indicates empty or nil documents
	ErrEmptyDocuments = errors.New("empty or nil documents")
)

// Config holds configuration for the vector store service.
type Config struct {
	// URL is the Qdrant server URL (e.g., http://localhost:6333)
	URL string

	// CollectionName is the Qdrant collection name
	CollectionName string

	// Embedder is the embeddings service for generating vectors
	Embedder embeddings.Embedder
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("%w: URL required", ErrInvalidConfig)
	}
	if c.CollectionName == "" {
		return fmt.Errorf("%w: collection name required", ErrInvalidConfig)
	}
	return nil
}

// Service provides vector store functionality.
type Service struct {
	store  vectorstores.VectorStore
	config Config
}

// NewService creates a new vector store service with the given configuration.
//
// The service uses langchaingo's Qdrant vector store implementation.
// Returns an error if the configuration is invalid or the connection fails.
func NewService(config Config) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	qdrantURL, err := url.Parse(config.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing Qdrant URL: %w", err)
	}

	opts := []qdrant.Option{
		qdrant.WithURL(*qdrantURL),
		qdrant.WithCollectionName(config.CollectionName),
	}
	if config.Embedder != nil {
		opts = append(opts, qdrant.WithEmbedder(config.Embedder))
	}

	store, err := qdrant.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Qdrant store: %w", err)
	}

	return &Service{store: store, config: config}, nil
}

// AddDocuments embeds and stores chunks. The chunk ID is stored in
// metadata under [MetaID].
//
// Returns ErrEmptyDocuments if docs is empty or nil.
func (s *Service) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return fmt.Errorf("%w: documents cannot be empty", ErrEmptyDocuments)
	}

	schemaDocs := make([]schema.Document, len(docs))
	for i, doc := range docs {
		schemaDocs[i] = schema.Document{
			PageContent: doc.Content,
			Metadata:    doc.Metadata,
		}
		if schemaDocs[i].Metadata == nil {
			schemaDocs[i].Metadata = make(map[string]interface{})
		}
		schemaDocs[i].Metadata[MetaID] = doc.ID
	}

	if _, err := s.store.AddDocuments(ctx, schemaDocs); err != nil {
		return fmt.Errorf("adding documents to store: %w", err)
	}
	return nil
}

// Search performs similarity search, dropping results scoring below
// threshold. A threshold of 0 keeps everything.
func (s *Service) Search(ctx context.Context, query string, k int, threshold float32) ([]SearchResult, error) {
	return s.search(ctx, query, k, threshold)
}

// SearchWithFilters performs similarity search restricted to documents
// whose metadata matches ALL filter conditions.
func (s *Service) SearchWithFilters(ctx context.Context, query string, k int, threshold float32, filters map[string]interface{}) ([]SearchResult, error) {
	return s.search(ctx, query, k, threshold, vectorstores.WithFilters(qdrantFilter(filters)))
}

// SearchDocument restricts search to chunks of one ingested PDF document.
func (s *Service) SearchDocument(ctx context.Context, query, documentID string, k int, threshold float32) ([]SearchResult, error) {
	return s.SearchWithFilters(ctx, query, k, threshold, map[string]interface{}{MetaDocumentID: documentID})
}

func (s *Service) search(ctx context.Context, query string, k int, threshold float32, opts ...vectorstores.Option) ([]SearchResult, error) {
	if query == "" {
		return nil, errors.New("query cannot be empty")
	}
	if k <= 0 {
		return nil, errors.New("k must be positive")
	}

	start := time.Now()
	docs, err := s.store.SimilaritySearch(ctx, query, k, opts...)
	observability.Search().OnSearch(ctx, query, len(docs), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	results := make([]SearchResult, 0, len(docs))
	for _, doc := range docs {
		if threshold > 0 && doc.Score < threshold {
			continue
		}
		result := SearchResult{
			Content:  doc.PageContent,
			Metadata: doc.Metadata,
			Score:    doc.Score,
		}
		if id, ok := doc.Metadata[MetaID].(string); ok {
			result.ID = id
		}
		results = append(results, result)
	}
	return results, nil
}

// DeleteByFilter removes all points whose metadata matches the filter
// conditions. Used to replace a note's chunks on re-sync. langchaingo's
// store wrapper has no delete, so this talks to Qdrant's points API
// directly.
func (s *Service) DeleteByFilter(ctx context.Context, filters map[string]interface{}) error {
	filter := qdrantFilter(filters)
	if filter == nil {
		return errors.New("filters cannot be empty")
	}

	payload, err := json.Marshal(map[string]interface{}{"filter": filter})
	if err != nil {
		return fmt.Errorf("encoding delete filter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/collections/%s/points/delete",
		s.config.URL, s.config.CollectionName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building delete request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("deleting points: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deleting points: qdrant returned status %d", resp.StatusCode)
	}
	return nil
}

// qdrantFilter converts flat key=value conditions into Qdrant's filter
// payload format (must-match on metadata keys).
func qdrantFilter(filters map[string]interface{}) map[string]interface{} {
	if len(filters) == 0 {
		return nil
	}
	must := make([]map[string]interface{}, 0, len(filters))
	for key, value := range filters {
		must = append(must, map[string]interface{}{
			"key":   key,
			"match": map[string]interface{}{"value": value},
		})
	}
	return map[string]interface{}{"must": must}
}
