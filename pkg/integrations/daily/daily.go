// Package daily wraps the Daily.co REST API for canvas video calls.
//
// Each canvas maps to one persistent Daily.co room named "canvas-<roomID>".
// Rooms are created lazily on first join; every join also mints a fresh
// owner meeting token so the client can start transcription.
package daily

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boardstack/boardstack/pkg/httputil"
	"github.com/boardstack/boardstack/pkg/integrations"
)

const defaultBaseURL = "https://api.daily.co/v1"

// RoomAccess is everything a client needs to join a canvas call.
type RoomAccess struct {
	URL      string `json:"url"`
	Token    string `json:"token"`
	RoomName string `json:"room_name"`
}

// Client talks to the Daily.co API.
type Client struct {
	*integrations.Client
	baseURL string
	enabled bool
}

// NewClient creates a Daily.co client. An empty apiKey produces a disabled
// client whose calls return [integrations.ErrNotConfigured].
func NewClient(apiKey string, cacheTTL time.Duration) (*Client, error) {
	cache, err := integrations.NewCache(cacheTTL)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{"Authorization": "Bearer " + apiKey}
	return &Client{
		Client:  integrations.NewClient(cache.Namespace("daily:"), headers),
		baseURL: defaultBaseURL,
		enabled: apiKey != "",
	}, nil
}

// RoomName returns the Daily.co room name for a canvas room ID.
func RoomName(canvasRoomID string) string {
	return "canvas-" + canvasRoomID
}

type roomResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// EnsureRoom returns access to the canvas's video room, creating the room
// if it does not exist yet. A fresh owner token is minted on every call;
// tokens are never cached.
func (c *Client) EnsureRoom(ctx context.Context, canvasRoomID string) (*RoomAccess, error) {
	if !c.enabled {
		return nil, integrations.ErrNotConfigured
	}

	name := RoomName(canvasRoomID)

	var room roomResponse
	err := c.Get(ctx, c.baseURL+"/rooms/"+name, &room)
	if errors.Is(err, integrations.ErrNotFound) {
		room, err = c.createRoom(ctx, name)
	}
	if err != nil {
		return nil, fmt.Errorf("ensuring room %s: %w", name, err)
	}

	token, err := c.createOwnerToken(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("minting token for room %s: %w", name, err)
	}

	return &RoomAccess{URL: room.URL, Token: token, RoomName: name}, nil
}

func (c *Client) createRoom(ctx context.Context, name string) (roomResponse, error) {
	payload := map[string]any{
		"name": name,
		"properties": map[string]any{
			"enable_screenshare": true,
			"enable_chat":        true,
			"start_video_off":    false,
			"start_audio_off":    false,
			"enable_recording":   "cloud",
		},
	}

	var room roomResponse
	err := httputil.RetryWithBackoff(ctx, func() error {
		return c.PostJSON(ctx, c.baseURL+"/rooms", payload, &room)
	})
	return room, err
}

// createOwnerToken mints a meeting token with owner privileges, which the
// client needs to start transcription.
func (c *Client) createOwnerToken(ctx context.Context, roomName string) (string, error) {
	payload := map[string]any{
		"properties": map[string]any{
			"room_name": roomName,
			"is_owner":  true,
			"user_name": "Canvas User",
		},
	}

	var tok tokenResponse
	err := httputil.RetryWithBackoff(ctx, func() error {
		return c.PostJSON(ctx, c.baseURL+"/meeting-tokens", payload, &tok)
	})
	if err != nil {
		return "", err
	}
	return tok.Token, nil
}
