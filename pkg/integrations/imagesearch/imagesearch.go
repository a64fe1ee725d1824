// Package imagesearch finds images via the Google Custom Search API. The
// assistant exposes it as the getImageSrc tool, so chat responses can embed
// real image URLs instead of placeholders.
package imagesearch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/boardstack/boardstack/pkg/integrations"
)

const defaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// ToolName is the function name the LLM calls to request an image.
const ToolName = "getImageSrc"

// ToolDescription is shown to the LLM so it knows when to call the tool.
const ToolDescription = "Get the image URL for the given search query/alt text. " +
	"Use this to find relevant images to enhance your responses."

// Client searches Google Custom Search for images.
type Client struct {
	*integrations.Client
	baseURL string
	apiKey  string
	cseID   string
}

// NewClient creates an image search client. Both apiKey and cseID are
// required; with either missing the client is disabled and Search returns
// [integrations.ErrNotConfigured].
func NewClient(apiKey, cseID string, cacheTTL time.Duration) (*Client, error) {
	cache, err := integrations.NewCache(cacheTTL)
	if err != nil {
		return nil, err
	}
	return &Client{
		Client:  integrations.NewClient(cache.Namespace("imagesearch:"), nil),
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		cseID:   cseID,
	}, nil
}

// Enabled reports whether the client has the credentials it needs.
func (c *Client) Enabled() bool {
	return c.apiKey != "" && c.cseID != ""
}

type searchResponse struct {
	Items []struct {
		Link string `json:"link"`
	} `json:"items"`
}

// Search returns the URL of the first image matching the query. size is a
// Custom Search image size hint (HUGE, XXLARGE, XLARGE, LARGE, MEDIUM,
// SMALL, ICON); an empty size defaults to HUGE. Returns
// [integrations.ErrNotFound] when no image matches.
func (c *Client) Search(ctx context.Context, query, size string) (string, error) {
	if !c.Enabled() {
		return "", integrations.ErrNotConfigured
	}
	if size == "" {
		size = "HUGE"
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.cseID)
	params.Set("q", query)
	params.Set("searchType", "image")
	params.Set("imgSize", strings.ToUpper(size))
	params.Set("num", "1")
	params.Set("safe", "active")

	var result searchResponse
	key := "search:" + strings.ToUpper(size) + ":" + query
	err := c.Cached(ctx, key, false, &result, func() error {
		return c.Get(ctx, c.baseURL+"?"+params.Encode(), &result)
	})
	if err != nil {
		return "", fmt.Errorf("searching image for %q: %w", query, err)
	}
	if len(result.Items) == 0 {
		return "", fmt.Errorf("%w: no image for %q", integrations.ErrNotFound, query)
	}
	return result.Items[0].Link, nil
}
