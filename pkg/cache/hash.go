package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Keyer generates cache keys for the things boardstack caches.
type Keyer interface {
	// HTTPKey generates a key for an upstream HTTP response.
	HTTPKey(namespace, key string) string

	// EmbeddingKey generates a key for a text embedding under a model name.
	EmbeddingKey(model, text string) string

	// SummaryKey generates a key for a rendered meeting summary.
	SummaryKey(roomID, transcriptHash string) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// EmbeddingKey hashes the text so arbitrary chunk content makes a safe key.
func (k *DefaultKeyer) EmbeddingKey(model, text string) string {
	return hashKey("embed", model, text)
}

// SummaryKey generates a key for a meeting summary. Pair with
// [TranscriptHash] for the transcript component.
func (k *DefaultKeyer) SummaryKey(roomID, transcriptHash string) string {
	return hashKey("summary", roomID, transcriptHash)
}

// TranscriptHash hashes a meeting transcript for use in summary keys.
// Whitespace runs are collapsed first so a trivially reflowed transcript
// hits the same cached summary.
func TranscriptHash(transcript string) string {
	return Hash([]byte(strings.Join(strings.Fields(transcript), " ")))
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	// Use full SHA-256 hash (64 hex chars / 256 bits) to prevent collisions
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
