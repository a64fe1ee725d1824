package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Qdrant.Collection != "boardstack" {
		t.Errorf("Collection = %q", cfg.Qdrant.Collection)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `
[server]
addr = ":9999"
allowed_origins = ["http://localhost:3000"]

[mongo]
database = "boards_test"

[google]
cse_id = "abc123"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if len(cfg.Server.AllowedOrigins) != 1 {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Google.CSEID != "abc123" {
		t.Errorf("CSEID = %q", cfg.Google.CSEID)
	}
	// Unset sections keep their defaults.
	if cfg.Mongo.URI != "mongodb://localhost:27017" {
		t.Errorf("URI = %q", cfg.Mongo.URI)
	}
	if cfg.Mongo.Database != "boards_test" {
		t.Errorf("Database = %q", cfg.Mongo.Database)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BOARDSTACK_ADDR", ":7777")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DAILY_API_KEY", "daily-test")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":7777" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Chat.APIKey != "sk-test" {
		t.Errorf("Chat.APIKey = %q", cfg.Chat.APIKey)
	}
	// Embeddings share the chat key unless given their own.
	if cfg.Embeddings.APIKey != "sk-test" {
		t.Errorf("Embeddings.APIKey = %q", cfg.Embeddings.APIKey)
	}
	if cfg.Daily.APIKey != "daily-test" {
		t.Errorf("Daily.APIKey = %q", cfg.Daily.APIKey)
	}
}

func TestEmbeddingsKeyOverride(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-chat")
	t.Setenv("EMBEDDINGS_API_KEY", "sk-embed")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Chat.APIKey != "sk-chat" || cfg.Embeddings.APIKey != "sk-embed" {
		t.Errorf("keys = %q / %q", cfg.Chat.APIKey, cfg.Embeddings.APIKey)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Qdrant.URL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing qdrant URL validated")
	}

	cfg = Default()
	cfg.Mongo.Database = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing mongo database validated")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("missing file loaded")
	}
}
