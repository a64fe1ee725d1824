// Package config loads boardstack server configuration: a TOML file for
// topology (addresses, collection names, directories) with environment
// variables layered on top for secrets and deploy-time overrides.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/boardstack/boardstack/pkg/errors"
)

// Config is the full server configuration.
type Config struct {
	Server     Server     `toml:"server"`
	Mongo      Mongo      `toml:"mongo"`
	Redis      Redis      `toml:"redis"`
	Qdrant     Qdrant     `toml:"qdrant"`
	Chat       Chat       `toml:"chat"`
	Embeddings Embeddings `toml:"embeddings"`
	Daily      Daily      `toml:"daily"`
	Google     Google     `toml:"google"`
	Cache      Cache      `toml:"cache"`
}

// Server configures the HTTP listener and blob serving.
type Server struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
	BlobDir        string   `toml:"blob_dir"`
	PublicBase     string   `toml:"public_base"`
}

// Mongo configures the metadata store.
type Mongo struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Redis configures the shared cache. Empty Addr disables it; callers fall
// back to the file cache.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Qdrant configures the vector store.
type Qdrant struct {
	URL        string `toml:"url"`
	Collection string `toml:"collection"`
}

// Chat configures the assistant chat model.
type Chat struct {
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
	APIKey  string `toml:"-"`
}

// Embeddings configures the embedding model.
type Embeddings struct {
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
	APIKey  string `toml:"-"`
}

// Daily configures video room provisioning. Empty APIKey disables video
// features.
type Daily struct {
	APIKey string `toml:"-"`
}

// Google configures image search and embed generation. Each feature
// degrades independently when its key is missing.
type Google struct {
	APIKey        string `toml:"-"`
	CSEID         string `toml:"cse_id"`
	MapsAPIKey    string `toml:"-"`
	YouTubeAPIKey string `toml:"-"`
}

// Cache configures the local response cache.
type Cache struct {
	Dir string        `toml:"dir"`
	TTL time.Duration `toml:"ttl"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: Server{
			Addr:       ":8000",
			BlobDir:    "data/blobs",
			PublicBase: "/files",
		},
		Mongo: Mongo{
			URI:      "mongodb://localhost:27017",
			Database: "boardstack",
		},
		Qdrant: Qdrant{
			URL:        "http://localhost:6333",
			Collection: "boardstack",
		},
		Chat: Chat{
			Model: "gpt-4o",
		},
		Embeddings: Embeddings{
			BaseURL: "https://api.openai.com/v1",
			Model:   "text-embedding-3-small",
		},
		Cache: Cache{
			TTL: 24 * time.Hour,
		},
	}
}

// Load reads a TOML config file over the defaults and applies environment
// overrides. path may be empty to use defaults plus environment only.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, errors.Wrap(err, errors.ErrCodeInvalidInput, "parsing config file")
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv layers environment variables over the file values. Secrets are
// env-only; addresses can be overridden for container deployments.
func (c *Config) applyEnv() {
	setIfPresent(&c.Server.Addr, "BOARDSTACK_ADDR")
	setIfPresent(&c.Mongo.URI, "MONGODB_URI")
	setIfPresent(&c.Mongo.Database, "MONGODB_DATABASE")
	setIfPresent(&c.Redis.Addr, "REDIS_ADDR")
	setIfPresent(&c.Redis.Password, "REDIS_PASSWORD")
	setIfPresent(&c.Qdrant.URL, "QDRANT_URL")
	setIfPresent(&c.Qdrant.Collection, "QDRANT_COLLECTION")

	setIfPresent(&c.Chat.APIKey, "OPENAI_API_KEY")
	setIfPresent(&c.Chat.BaseURL, "CHAT_BASE_URL")
	setIfPresent(&c.Chat.Model, "CHAT_MODEL")
	c.Embeddings.APIKey = c.Chat.APIKey
	setIfPresent(&c.Embeddings.APIKey, "EMBEDDINGS_API_KEY")
	setIfPresent(&c.Embeddings.BaseURL, "EMBEDDINGS_BASE_URL")
	setIfPresent(&c.Embeddings.Model, "EMBEDDINGS_MODEL")

	setIfPresent(&c.Daily.APIKey, "DAILY_API_KEY")
	setIfPresent(&c.Google.APIKey, "GOOGLE_API_KEY")
	setIfPresent(&c.Google.CSEID, "GOOGLE_CSE_ID")
	setIfPresent(&c.Google.MapsAPIKey, "GOOGLE_MAPS_API_KEY")
	setIfPresent(&c.Google.YouTubeAPIKey, "YOUTUBE_API_KEY")
}

func setIfPresent(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks the fields the server cannot start without. Feature keys
// are optional: missing ones disable their feature.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "server addr is required")
	}
	if c.Mongo.URI == "" || c.Mongo.Database == "" {
		return errors.New(errors.ErrCodeInvalidInput, "mongo uri and database are required")
	}
	if c.Qdrant.URL == "" || c.Qdrant.Collection == "" {
		return errors.New(errors.ErrCodeInvalidInput, "qdrant url and collection are required")
	}
	return nil
}
