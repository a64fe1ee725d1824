package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/boardstack/boardstack/internal/config"
	"github.com/boardstack/boardstack/internal/server"
	"github.com/boardstack/boardstack/pkg/cache"
	"github.com/boardstack/boardstack/pkg/embeddings"
	"github.com/boardstack/boardstack/pkg/integrations/daily"
	"github.com/boardstack/boardstack/pkg/integrations/googleembed"
	"github.com/boardstack/boardstack/pkg/integrations/imagesearch"
	"github.com/boardstack/boardstack/pkg/llm"
	"github.com/boardstack/boardstack/pkg/notes"
	"github.com/boardstack/boardstack/pkg/rag"
	"github.com/boardstack/boardstack/pkg/storage"
	"github.com/boardstack/boardstack/pkg/vectorstore"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command, which wires every backend
// dependency and runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the boardstack HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func (c *CLI) runServer(ctx context.Context, cfg config.Config) error {
	shared := c.newSharedCache(ctx, cfg)
	defer shared.Close()

	store, err := storage.NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	blobs, err := storage.NewBlobStore(cfg.Server.BlobDir, cfg.Server.PublicBase)
	if err != nil {
		return err
	}

	embedSvc, err := embeddings.NewService(embeddings.Config{
		BaseURL: cfg.Embeddings.BaseURL,
		Model:   cfg.Embeddings.Model,
		APIKey:  cfg.Embeddings.APIKey,
		Cache:   shared,
	})
	if err != nil {
		return err
	}

	vectors, err := vectorstore.NewService(vectorstore.Config{
		URL:            cfg.Qdrant.URL,
		CollectionName: cfg.Qdrant.Collection,
		Embedder:       embedSvc,
	})
	if err != nil {
		return err
	}

	chat, err := c.newChat(cfg)
	if err != nil {
		return err
	}

	rooms, err := daily.NewClient(cfg.Daily.APIKey, cfg.Cache.TTL)
	if err != nil {
		return err
	}
	embeds, err := googleembed.NewClient(cfg.Google.MapsAPIKey, cfg.Google.YouTubeAPIKey, cfg.Cache.TTL, c.Logger)
	if err != nil {
		return err
	}

	processor := rag.NewProcessor(vectors, c.Logger)
	noteSvc := notes.NewService(store, blobs, processor, vectors, chat, c.Logger)
	selection := notes.NewContextBuilder(store, vectors, c.Logger)

	srv := server.New(server.Options{
		Logger:         c.Logger,
		Assistant:      chat,
		Selection:      selection,
		Rooms:          rooms,
		Embeds:         embeds,
		Ingestor:       processor,
		Search:         vectors,
		Notes:          noteSvc,
		Store:          store,
		Blobs:          blobs,
		Cache:          shared,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// newSharedCache prefers Redis when configured so multiple server
// instances share embeddings; otherwise it falls back to the file cache.
func (c *CLI) newSharedCache(ctx context.Context, cfg config.Config) cache.Cache {
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err == nil {
			return redisCache
		}
		c.Logger.Warn("redis unavailable, using file cache", "addr", cfg.Redis.Addr, "err", err)
	}
	fileCache, err := newCache(false)
	if err != nil {
		return cache.NewNullCache()
	}
	return fileCache
}

// newChat builds the assistant chat client against any OpenAI-compatible
// endpoint.
func (c *CLI) newChat(cfg config.Config) (*llm.Chat, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.Chat.Model),
	}
	apiKey := cfg.Chat.APIKey
	if apiKey == "" {
		// langchaingo requires a token even for keyless local endpoints.
		apiKey = "placeholder"
	}
	opts = append(opts, openai.WithToken(apiKey))
	if cfg.Chat.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.Chat.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}

	images, err := imagesearch.NewClient(cfg.Google.APIKey, cfg.Google.CSEID, cfg.Cache.TTL)
	if err != nil {
		return nil, err
	}
	return llm.NewChat(model, images, c.Logger), nil
}
