package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/boardstack/boardstack/pkg/errors"
	"github.com/boardstack/boardstack/pkg/rag"
	"github.com/boardstack/boardstack/pkg/storage"
	"github.com/boardstack/boardstack/pkg/vectorstore"
)

// PDF search defaults, used when the request leaves them unset.
const (
	defaultSearchLimit     = 10
	defaultSearchThreshold = 0.7
)

// handlePDFUpload ingests an uploaded PDF: store the raw bytes, extract
// and index the text, record the document metadata.
func (s *Server) handlePDFUpload(w http.ResponseWriter, r *http.Request) {
	if s.ingestor == nil || s.store == nil || s.blobs == nil {
		s.respondError(w, errors.New(errors.ErrCodeNotEnabled, "PDF ingestion is not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rag.MaxPDFSize+1)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, errors.Wrap(err, errors.ErrCodeInvalidInput, "reading upload"))
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		s.respondError(w, errors.New(errors.ErrCodeInvalidFile, "only PDF files are accepted"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, errors.Wrap(err, errors.ErrCodeInvalidInput, "reading upload"))
		return
	}
	if len(data) > rag.MaxPDFSize {
		s.respondError(w, errors.New(errors.ErrCodeFileTooLarge, "PDF exceeds %d MB limit", rag.MaxPDFSize>>20))
		return
	}

	documentID := uuid.NewString()
	filename := rag.SanitizeFilename(header.Filename)

	path, err := s.blobs.Save(storage.BlobPDF, documentID+"_"+filename, data)
	if err != nil {
		s.respondError(w, err)
		return
	}

	result, err := s.ingestor.ProcessPDF(r.Context(), documentID, filename, data)
	if err != nil {
		s.respondError(w, err)
		return
	}

	doc := storage.PDFDocument{
		ID:          documentID,
		Filename:    result.Filename,
		StoragePath: path,
		SizeBytes:   int64(len(data)),
		PageCount:   result.PageCount,
		ChunkCount:  result.ChunkCount,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.InsertDocument(r.Context(), doc); err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"document_id": documentID,
		"filename":    result.Filename,
		"page_count":  result.PageCount,
		"chunk_count": result.ChunkCount,
		"public_url":  s.blobs.PublicURL(path),
	})
}

// handleListDocuments lists ingested documents, newest first.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, errors.New(errors.ErrCodeNotEnabled, "document store is not configured"))
		return
	}

	limit := queryInt(r, "limit", defaultSearchLimit)
	offset := queryInt(r, "offset", 0)

	docs, err := s.store.ListDocuments(r.Context(), limit, offset)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"documents": docs,
		"count":     len(docs),
		"limit":     limit,
		"offset":    offset,
	})
}

// handleGetDocument returns one document's metadata plus the URL its raw
// bytes are served under.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, errors.New(errors.ErrCodeNotEnabled, "document store is not configured"))
		return
	}

	doc, err := s.store.GetDocument(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	resp := map[string]any{"document": doc}
	if s.blobs != nil && doc.StoragePath != "" {
		resp["public_url"] = s.blobs.PublicURL(doc.StoragePath)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type pdfSearchRequest struct {
	Query      string   `json:"query"`
	Limit      int      `json:"limit,omitempty"`
	Threshold  *float32 `json:"threshold,omitempty"`
	DocumentID string   `json:"document_id,omitempty"`
}

// handlePDFSearch runs a similarity search over indexed PDF content,
// optionally scoped to one document.
func (s *Server) handlePDFSearch(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		s.respondError(w, errors.New(errors.ErrCodeNotEnabled, "search is not configured"))
		return
	}

	var req pdfSearchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "query is required"))
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultSearchLimit
	}
	threshold := float32(defaultSearchThreshold)
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	var (
		results []vectorstore.SearchResult
		err     error
	)
	if req.DocumentID != "" {
		results, err = s.search.SearchDocument(r.Context(), req.Query, req.DocumentID, req.Limit, threshold)
	} else {
		results, err = s.search.Search(r.Context(), req.Query, req.Limit, threshold)
	}
	if err != nil {
		s.respondError(w, errors.Wrap(err, errors.ErrCodeUpstream, "searching documents"))
		return
	}

	items := make([]map[string]any, 0, len(results))
	for _, res := range results {
		items = append(items, map[string]any{
			"id":       res.ID,
			"content":  res.Content,
			"metadata": res.Metadata,
			"score":    res.Score,
		})
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"query":   req.Query,
		"results": items,
		"count":   len(items),
	})
}

type canvasLinkRequest struct {
	ShapeID    string `json:"shapeId"`
	DocumentID string `json:"documentId"`
	RoomID     string `json:"roomId,omitempty"`
}

// handleCanvasLink ties a canvas shape to an ingested document. The
// document must exist; re-linking a shape replaces its target.
func (s *Server) handleCanvasLink(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, errors.New(errors.ErrCodeNotEnabled, "document store is not configured"))
		return
	}

	var req canvasLinkRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if req.ShapeID == "" || req.DocumentID == "" {
		s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "shapeId and documentId are required"))
		return
	}

	if _, err := s.store.GetDocument(r.Context(), req.DocumentID); err != nil {
		s.respondError(w, err)
		return
	}

	link := storage.CanvasLink{
		ShapeID:    req.ShapeID,
		DocumentID: req.DocumentID,
		RoomID:     req.RoomID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.UpsertCanvasLink(r.Context(), link); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "link": link})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}
