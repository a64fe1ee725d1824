// Package embeddings provides embedding generation via langchaingo.
//
// This package wraps langchaingo's embedding functionality to generate
// vector embeddings for chunked canvas content (PDF text, handwriting
// transcriptions, typed notes). It talks to any OpenAI-compatible
// embedding API, including local TEI (Text Embeddings Inference) servers.
//
// Example usage:
//
//	config := embeddings.Config{
//	    BaseURL: "https://api.openai.com/v1",
//	    Model:   "text-embedding-3-small",
//	    APIKey:  os.Getenv("OPENAI_API_KEY"),
//	}
//	service, err := embeddings.NewService(config)
//	vectors, err := service.EmbedDocuments(ctx, []string{"chunk one", "chunk two"})
//
// Service implements langchaingo's embeddings.Embedder, so it plugs
// directly into the vector store; the cache stays in front of every call.
package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/boardstack/boardstack/pkg/cache"
	"github.com/boardstack/boardstack/pkg/observability"
)

var (
	// ErrEmptyInput indicates empty or nil input texts
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds configuration for the embedding service.
type Config struct {
	// BaseURL is the base URL for the embedding API
	// For OpenAI: https://api.openai.com/v1
	// For TEI: http://localhost:8080/v1
	BaseURL string

	// Model is the embedding model to use
	// For OpenAI: text-embedding-3-small, text-embedding-3-large
	// For TEI: BAAI/bge-small-en-v1.5
	Model string

	// APIKey is the API key (required for OpenAI, optional for TEI)
	APIKey string

	// Cache, when set, memoizes per-text vectors so re-ingesting an
	// unchanged document costs no API calls. Optional.
	Cache cache.Cache
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	return nil
}

// Service provides embedding generation functionality.
type Service struct {
	embedder *embeddings.EmbedderImpl
	config   Config
	keyer    cache.Keyer
}

// NewService creates a new embedding service with the given configuration.
//
// The service uses langchaingo's embeddings abstraction so any
// OpenAI-compatible provider works. Returns an error if the configuration
// is invalid.
func NewService(config Config) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	apiKey := config.APIKey
	if apiKey == "" {
		// langchaingo requires a token, use placeholder for TEI
		apiKey = "placeholder"
	}

	llm, err := openai.New(
		openai.WithBaseURL(config.BaseURL),
		openai.WithModel(config.Model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	return &Service{
		embedder: embedder,
		config:   config,
		keyer:    cache.NewDefaultKeyer(),
	}, nil
}

// EmbedDocuments generates embeddings for the given texts, one vector per
// text. Cached vectors are reused; only uncached texts hit the provider.
//
// Returns ErrEmptyInput if texts is empty or nil.
func (s *Service) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}

	vectors := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int

	for i, text := range texts {
		if v, ok := s.cachedVector(ctx, text); ok {
			vectors[i] = v
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) > 0 {
		fresh, err := s.embedder.EmbedDocuments(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("embedding documents: %w", err)
		}
		if len(fresh) != len(missing) {
			return nil, fmt.Errorf("embedding provider returned %d vectors for %d texts", len(fresh), len(missing))
		}
		for j, v := range fresh {
			vectors[missingIdx[j]] = v
			s.storeVector(ctx, missing[j], v)
		}
	}

	return vectors, nil
}

// EmbedQuery generates a single embedding for a search query.
func (s *Service) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := s.EmbedDocuments(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Service is passed to the vector store as its embedder so every vector,
// including search queries, goes through the cache.
var _ embeddings.Embedder = (*Service)(nil)

func (s *Service) cachedVector(ctx context.Context, text string) ([]float32, bool) {
	if s.config.Cache == nil {
		return nil, false
	}
	key := s.keyer.EmbeddingKey(s.config.Model, text)
	data, hit, err := s.config.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "embedding")
		return nil, false
	}
	var v []float32
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "embedding")
	return v, true
}

func (s *Service) storeVector(ctx context.Context, text string, v []float32) {
	if s.config.Cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	key := s.keyer.EmbeddingKey(s.config.Model, text)
	_ = s.config.Cache.Set(ctx, key, data, 0)
	observability.Cache().OnCacheSet(ctx, "embedding", len(data))
}
