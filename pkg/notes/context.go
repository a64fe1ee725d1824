package notes

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/boardstack/boardstack/pkg/storage"
	"github.com/boardstack/boardstack/pkg/vectorstore"
)

// Selection-scoped search parameters. The threshold is deliberately loose:
// the user explicitly selected these shapes, so weak matches still beat no
// context.
const (
	selectionLimitPerSource = 5
	selectionThreshold      = 0.1
)

// SelectionSearcher runs filtered similarity searches. Satisfied by
// [vectorstore.Service].
type SelectionSearcher interface {
	SearchWithFilters(ctx context.Context, query string, k int, threshold float32, filters map[string]interface{}) ([]vectorstore.SearchResult, error)
	SearchDocument(ctx context.Context, query, documentID string, k int, threshold float32) ([]vectorstore.SearchResult, error)
}

// ContextBuilder assembles assistant context from the user's selected
// shapes: linked PDF documents plus handwriting and typed note frames.
type ContextBuilder struct {
	store  storage.Store
	search SelectionSearcher
	logger *log.Logger
}

// NewContextBuilder creates a ContextBuilder.
func NewContextBuilder(store storage.Store, search SelectionSearcher, logger *log.Logger) *ContextBuilder {
	return &ContextBuilder{store: store, search: search, logger: logger}
}

// Build resolves the selected shape IDs to their content sources and runs
// a query-scoped search against each. Returns the formatted context block,
// or empty when the selection yields nothing. Failures against a single
// source are logged and skipped so one bad source cannot sink the whole
// assistant turn.
func (b *ContextBuilder) Build(ctx context.Context, query string, shapeIDs []string) (string, error) {
	if len(shapeIDs) == 0 || query == "" {
		return "", nil
	}

	var results []vectorstore.SearchResult

	links, err := b.store.LinksForShapes(ctx, shapeIDs)
	if err != nil {
		return "", err
	}
	seen := make(map[string]bool)
	for _, link := range links {
		if seen[link.DocumentID] {
			continue
		}
		seen[link.DocumentID] = true
		hits, err := b.search.SearchDocument(ctx, query, link.DocumentID,
			selectionLimitPerSource, selectionThreshold)
		if err != nil {
			b.warn("document search failed", "document", link.DocumentID, err)
			continue
		}
		results = append(results, hits...)
	}

	handwriting, err := b.store.HandwritingNotesForFrames(ctx, shapeIDs)
	if err != nil {
		return "", err
	}
	for _, note := range handwriting {
		if note.Status != storage.StatusReady {
			continue
		}
		hits, err := b.search.SearchWithFilters(ctx, query,
			selectionLimitPerSource, selectionThreshold, map[string]interface{}{
				vectorstore.MetaFrameID:    note.FrameID,
				vectorstore.MetaSourceType: vectorstore.SourceHandwriting,
			})
		if err != nil {
			b.warn("handwriting search failed", "frame", note.FrameID, err)
			continue
		}
		results = append(results, hits...)
	}

	typed, err := b.store.TypedNotesForFrames(ctx, shapeIDs)
	if err != nil {
		return "", err
	}
	for _, note := range typed {
		hits, err := b.search.SearchWithFilters(ctx, query,
			selectionLimitPerSource, selectionThreshold, map[string]interface{}{
				vectorstore.MetaFrameID:    note.FrameID,
				vectorstore.MetaSourceType: vectorstore.SourceTyped,
			})
		if err != nil {
			b.warn("typed note search failed", "frame", note.FrameID, err)
			continue
		}
		results = append(results, hits...)
	}

	if len(results) == 0 {
		return "", nil
	}
	return vectorstore.FormatContext(results), nil
}

func (b *ContextBuilder) warn(msg, key, val string, err error) {
	if b.logger != nil {
		b.logger.Warn(msg, key, val, "err", err)
	}
}
