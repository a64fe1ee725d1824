package googleembed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/boardstack/boardstack/pkg/httputil"
	"github.com/boardstack/boardstack/pkg/integrations"
)

func testClient(t *testing.T, searchURL, mapsKey, youtubeKey string) *Client {
	t.Helper()
	cache, err := httputil.NewCache(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	return &Client{
		Client:     integrations.NewClient(cache, nil),
		searchURL:  searchURL,
		mapsKey:    mapsKey,
		youtubeKey: youtubeKey,
	}
}

func TestMapsEmbed(t *testing.T) {
	c := testClient(t, "", "maps-key", "")

	embed, err := c.MapsEmbed("pizza near me", nil, nil)
	if err != nil {
		t.Fatalf("MapsEmbed: %v", err)
	}
	if embed.Kind != "google_maps" {
		t.Errorf("Kind = %s", embed.Kind)
	}
	if !strings.Contains(embed.URL, "q=pizza+near+me") {
		t.Errorf("URL missing query: %s", embed.URL)
	}
	if strings.Contains(embed.URL, "center=") {
		t.Errorf("URL has center without coordinates: %s", embed.URL)
	}

	lat, lng := 37.77, -122.42
	embed, err = c.MapsEmbed("coffee", &lat, &lng)
	if err != nil {
		t.Fatalf("MapsEmbed with center: %v", err)
	}
	if !strings.Contains(embed.URL, "center=37.77%2C-122.42") || !strings.Contains(embed.URL, "zoom=14") {
		t.Errorf("URL missing center/zoom: %s", embed.URL)
	}
}

func TestMapsEmbedRequiresKey(t *testing.T) {
	c := testClient(t, "", "", "")
	if _, err := c.MapsEmbed("anything", nil, nil); !errors.Is(err, integrations.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestYouTubeEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("type") != "video" || q.Get("maxResults") != "1" {
			t.Errorf("unexpected query: %v", q)
		}
		var resp youtubeSearchResponse
		resp.Items = make([]struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet struct {
				Title string `json:"title"`
			} `json:"snippet"`
		}, 1)
		resp.Items[0].ID.VideoID = "dQw4w9WgXcQ"
		resp.Items[0].Snippet.Title = "a video"
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	embed := testClient(t, server.URL, "", "yt-key").YouTubeEmbed(context.Background(), "how to cook")
	if embed.URL != "https://www.youtube.com/embed/dQw4w9WgXcQ" {
		t.Errorf("URL = %s", embed.URL)
	}
	if embed.Kind != "youtube" {
		t.Errorf("Kind = %s", embed.Kind)
	}
}

func TestYouTubeEmbedFallsBackOnAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	embed := testClient(t, server.URL, "", "yt-key").YouTubeEmbed(context.Background(), "orange chicken")
	if !strings.Contains(embed.URL, "youtube.com/embed?q=orange+chicken") {
		t.Errorf("fallback URL = %s", embed.URL)
	}
}

func TestYouTubeEmbedFallsBackWithoutKey(t *testing.T) {
	embed := testClient(t, "", "", "").YouTubeEmbed(context.Background(), "some query")
	if !strings.Contains(embed.URL, "youtube.com/embed?q=some+query") {
		t.Errorf("fallback URL = %s", embed.URL)
	}
}
