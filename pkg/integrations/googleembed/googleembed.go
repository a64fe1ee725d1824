// Package googleembed builds embeddable Google Maps and YouTube URLs for
// canvas embed shapes.
//
// Maps embeds are plain URL construction against the Maps Embed API.
// YouTube embeds first resolve the query to a concrete video via the
// YouTube Data API; when the API is unavailable or returns nothing, the
// client falls back to a search-style embed URL so the shape still renders
// something useful.
package googleembed

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/boardstack/boardstack/pkg/integrations"
)

const youtubeSearchURL = "https://www.googleapis.com/youtube/v3/search"

// Embed is a resolved embed shape payload.
type Embed struct {
	Kind string `json:"kind"` // "google_maps" or "youtube"
	URL  string `json:"url"`
}

// Client resolves embed requests.
type Client struct {
	*integrations.Client
	searchURL  string
	mapsKey    string
	youtubeKey string
	logger     *log.Logger
}

// NewClient creates an embed client. Either key may be empty; the
// corresponding embed kind is then disabled (maps) or degraded to the
// search fallback (youtube).
func NewClient(mapsKey, youtubeKey string, cacheTTL time.Duration, logger *log.Logger) (*Client, error) {
	cache, err := integrations.NewCache(cacheTTL)
	if err != nil {
		return nil, err
	}
	return &Client{
		Client:     integrations.NewClient(cache.Namespace("embed:"), nil),
		searchURL:  youtubeSearchURL,
		mapsKey:    mapsKey,
		youtubeKey: youtubeKey,
		logger:     logger,
	}, nil
}

// MapsEmbed builds a Maps Embed API search URL. lat/lng, when both are
// non-nil, center the map at zoom 14. Returns
// [integrations.ErrNotConfigured] without a Maps API key.
func (c *Client) MapsEmbed(query string, lat, lng *float64) (*Embed, error) {
	if c.mapsKey == "" {
		return nil, integrations.ErrNotConfigured
	}

	params := url.Values{}
	params.Set("key", c.mapsKey)
	params.Set("q", query)
	if lat != nil && lng != nil {
		params.Set("center", fmt.Sprintf("%v,%v", *lat, *lng))
		params.Set("zoom", "14")
	}

	return &Embed{
		Kind: "google_maps",
		URL:  "https://www.google.com/maps/embed/v1/search?" + params.Encode(),
	}, nil
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

// YouTubeEmbed resolves a query to a video embed URL. Any Data API failure
// degrades to the search fallback URL rather than surfacing an error; an
// embed shape with approximate content beats a broken shape.
func (c *Client) YouTubeEmbed(ctx context.Context, query string) *Embed {
	if c.youtubeKey == "" {
		return c.searchFallback(query)
	}

	params := url.Values{}
	params.Set("key", c.youtubeKey)
	params.Set("q", query)
	params.Set("part", "id,snippet")
	params.Set("maxResults", "1")
	params.Set("type", "video")
	params.Set("order", "relevance")
	params.Set("safeSearch", "moderate")

	var result youtubeSearchResponse
	key := "youtube:" + query
	err := c.Cached(ctx, key, false, &result, func() error {
		return c.Get(ctx, c.searchURL+"?"+params.Encode(), &result)
	})
	if err != nil || len(result.Items) == 0 || result.Items[0].ID.VideoID == "" {
		if c.logger != nil {
			c.logger.Warn("youtube lookup failed, using search fallback", "query", query, "err", err)
		}
		return c.searchFallback(query)
	}

	return &Embed{
		Kind: "youtube",
		URL:  "https://www.youtube.com/embed/" + result.Items[0].ID.VideoID,
	}
}

// searchFallback builds a query-style embed URL. Search pages cannot be
// embedded properly, so this renders related content at best.
func (c *Client) searchFallback(query string) *Embed {
	return &Embed{
		Kind: "youtube",
		URL:  "https://www.youtube.com/embed?q=" + url.QueryEscape(query),
	}
}
