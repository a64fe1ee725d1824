package server

import (
	"net/http"
	"strings"

	"github.com/boardstack/boardstack/pkg/errors"
)

type createEmbedRequest struct {
	Type  string   `json:"type"`
	Query string   `json:"query"`
	Lat   *float64 `json:"lat,omitempty"`
	Lng   *float64 `json:"lng,omitempty"`
}

// handleCreateEmbed resolves an embed shape request to a concrete embed
// URL. Maps embeds require a configured key; YouTube embeds always resolve
// to something, degrading to a search-style URL.
func (s *Server) handleCreateEmbed(w http.ResponseWriter, r *http.Request) {
	if s.embeds == nil {
		s.respondError(w, errors.New(errors.ErrCodeNotEnabled, "embeds are not configured"))
		return
	}

	var req createEmbedRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "query is required"))
		return
	}

	switch req.Type {
	case "google_maps":
		embed, err := s.embeds.MapsEmbed(req.Query, req.Lat, req.Lng)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]any{
			"embedUrl": embed.URL,
			"service":  embed.Kind,
			"query":    req.Query,
		})

	case "youtube":
		embed := s.embeds.YouTubeEmbed(r.Context(), req.Query)
		resp := map[string]any{
			"embedUrl": embed.URL,
			"service":  embed.Kind,
			"query":    req.Query,
		}
		if id, ok := videoIDFromEmbedURL(embed.URL); ok {
			resp["videoId"] = id
		} else {
			resp["isSearchEmbed"] = true
		}
		s.respondJSON(w, http.StatusOK, resp)

	default:
		s.respondError(w, errors.New(errors.ErrCodeInvalidEmbed, "unsupported embed type %q", req.Type))
	}
}

// videoIDFromEmbedURL extracts the video ID from a direct embed URL.
// Search-fallback URLs ("/embed?q=...") have no video ID.
func videoIDFromEmbedURL(url string) (string, bool) {
	const marker = "/embed/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return "", false
	}
	id := url[idx+len(marker):]
	if id == "" || strings.ContainsAny(id, "?/") {
		return "", false
	}
	return id, true
}
