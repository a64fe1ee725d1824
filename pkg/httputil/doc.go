// Package httputil provides HTTP utilities for upstream API clients.
//
// # Overview
//
// This package provides infrastructure used by all upstream service
// clients (Daily.co, Google Custom Search, YouTube, LLM providers):
//
//   - [Cache]: File-based HTTP response caching
//   - [Retry]: Automatic retry with exponential backoff
//
// # Caching
//
// [Cache] stores HTTP responses in the filesystem (~/.cache/boardstack/)
// with configurable TTL. This speeds up repeated operations and reduces
// load on rate-limited upstream APIs.
//
// Usage:
//
//	cache, err := httputil.NewCache("", 24*time.Hour)
//	ok, _ := cache.Get("daily:room:canvas-abc", &room)
//	if !ok {
//	    room = fetchFromAPI()
//	    cache.Set("daily:room:canvas-abc", room)
//	}
//
// Cache keys should be namespaced by service to avoid collisions.
//
// # Retry
//
// [Retry] wraps HTTP requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// It uses exponential backoff starting at 1 second with 3 attempts by
// default. Only errors wrapped in [RetryableError] trigger retries; 4xx
// client errors fail immediately.
package httputil
