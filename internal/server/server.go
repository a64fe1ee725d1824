// Package server exposes boardstack's HTTP API: the assistant (SSE), video
// rooms and meeting summaries, PDF ingestion and search, handwriting and
// typed note sync, and embed shape resolution.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/boardstack/boardstack/pkg/buildinfo"
	"github.com/boardstack/boardstack/pkg/cache"
	"github.com/boardstack/boardstack/pkg/errors"
	"github.com/boardstack/boardstack/pkg/integrations"
	"github.com/boardstack/boardstack/pkg/integrations/daily"
	"github.com/boardstack/boardstack/pkg/integrations/googleembed"
	"github.com/boardstack/boardstack/pkg/llm"
	"github.com/boardstack/boardstack/pkg/notes"
	"github.com/boardstack/boardstack/pkg/rag"
	"github.com/boardstack/boardstack/pkg/storage"
	"github.com/boardstack/boardstack/pkg/vectorstore"
)

// Assistant generates chat responses and meeting summaries. Satisfied by
// [llm.Chat].
type Assistant interface {
	Stream(ctx context.Context, req llm.ChatRequest, onDelta func(string) error) error
	StreamSummary(ctx context.Context, transcript string, onDelta func(string) error) error
}

// SelectionContext assembles canvas context for selected shapes. Satisfied
// by [notes.ContextBuilder].
type SelectionContext interface {
	Build(ctx context.Context, query string, shapeIDs []string) (string, error)
}

// RoomProvider provisions video rooms. Satisfied by [daily.Client].
type RoomProvider interface {
	EnsureRoom(ctx context.Context, canvasRoomID string) (*daily.RoomAccess, error)
}

// EmbedResolver resolves embed shape requests. Satisfied by
// [googleembed.Client].
type EmbedResolver interface {
	MapsEmbed(query string, lat, lng *float64) (*googleembed.Embed, error)
	YouTubeEmbed(ctx context.Context, query string) *googleembed.Embed
}

// PDFIngestor runs PDF ingestion. Satisfied by [rag.Processor].
type PDFIngestor interface {
	ProcessPDF(ctx context.Context, documentID, filename string, data []byte) (*rag.PDFResult, error)
}

// Searcher runs similarity searches. Satisfied by [vectorstore.Service].
type Searcher interface {
	Search(ctx context.Context, query string, k int, threshold float32) ([]vectorstore.SearchResult, error)
	SearchDocument(ctx context.Context, query, documentID string, k int, threshold float32) ([]vectorstore.SearchResult, error)
}

// NoteService handles typed note syncs and handwriting uploads. Satisfied
// by [notes.Service].
type NoteService interface {
	SyncTypedNote(ctx context.Context, req notes.TypedNoteRequest) (*notes.TypedNoteResult, error)
	SaveHandwriting(ctx context.Context, upload notes.HandwritingUpload) (*notes.HandwritingResult, error)
	ProcessHandwriting(ctx context.Context, noteID, frameID string, image []byte, mimeType string) error
}

// Options wires a Server. Nil feature dependencies disable their routes'
// functionality: the route stays up and reports the feature as unavailable.
type Options struct {
	Logger    *log.Logger
	Assistant Assistant
	Selection SelectionContext
	Rooms     RoomProvider
	Embeds    EmbedResolver
	Ingestor  PDFIngestor
	Search    Searcher
	Notes     NoteService
	Store     storage.Store
	Blobs     *storage.BlobStore

	// Cache, when set, memoizes rendered meeting summaries so repeated
	// requests for the same transcript skip the LLM.
	Cache cache.Cache

	// AllowedOrigins are CORS origins; "*" allows any.
	AllowedOrigins []string

	// ProcessTimeout bounds background handwriting processing.
	ProcessTimeout time.Duration
}

// Server is the boardstack HTTP API.
type Server struct {
	logger         *log.Logger
	assistant      Assistant
	selection      SelectionContext
	rooms          RoomProvider
	embeds         EmbedResolver
	ingestor       PDFIngestor
	search         Searcher
	notes          NoteService
	store          storage.Store
	blobs          *storage.BlobStore
	cache          cache.Cache
	keyer          cache.Keyer
	allowedOrigins []string
	processTimeout time.Duration
}

// New creates a Server from its wired dependencies.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	timeout := opts.ProcessTimeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	return &Server{
		logger:         logger,
		assistant:      opts.Assistant,
		selection:      opts.Selection,
		rooms:          opts.Rooms,
		embeds:         opts.Embeds,
		ingestor:       opts.Ingestor,
		search:         opts.Search,
		notes:          opts.Notes,
		store:          opts.Store,
		blobs:          opts.Blobs,
		cache:          opts.Cache,
		keyer:          cache.NewDefaultKeyer(),
		allowedOrigins: opts.AllowedOrigins,
		processTimeout: timeout,
	}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.cors)
	r.Use(s.requestLogger)

	r.Get("/", s.handleRoot)
	r.Get("/api/health", s.handleHealth)

	r.Post("/api/ask", s.handleAsk)
	r.Post("/api/video/room", s.handleVideoRoom)
	r.Post("/api/video/generate-summary", s.handleGenerateSummary)
	r.Post("/api/create-embed", s.handleCreateEmbed)

	r.Route("/api/pdf", func(r chi.Router) {
		r.Post("/upload", s.handlePDFUpload)
		r.Get("/documents", s.handleListDocuments)
		r.Post("/search", s.handlePDFSearch)
		r.Post("/canvas-link", s.handleCanvasLink)
		r.Get("/{documentID}", s.handleGetDocument)
	})

	r.Post("/api/handwriting-upload", s.handleHandwritingUpload)
	r.Post("/api/typed-note", s.handleTypedNote)

	if s.blobs != nil {
		fileServer := http.StripPrefix("/files/", http.FileServer(http.Dir(s.blobs.Root())))
		r.Get("/files/*", fileServer.ServeHTTP)
	}

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"service": "boardstack",
		"version": buildinfo.Version,
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	if len(s.allowedOrigins) == 0 {
		return true
	}
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "err", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.respondJSON(w, status, map[string]string{"error": err.Error()})
}

// statusForError maps boardstack error codes to HTTP statuses.
func statusForError(err error) int {
	if stderrors.Is(err, integrations.ErrNotConfigured) {
		return http.StatusServiceUnavailable
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFile, errors.ErrCodeInvalidEmbed,
		errors.ErrCodeFileTooLarge, errors.ErrCodeEmptyTranscript:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeDocumentNotFound, errors.ErrCodeShapeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNotEnabled:
		return http.StatusServiceUnavailable
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeUpstream, errors.ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes a request body, rejecting malformed payloads with an
// invalid-input error.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "decoding request body")
	}
	return nil
}
