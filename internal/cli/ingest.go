package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/boardstack/boardstack/internal/config"
	"github.com/boardstack/boardstack/pkg/embeddings"
	"github.com/boardstack/boardstack/pkg/rag"
	"github.com/boardstack/boardstack/pkg/vectorstore"
)

// ingestCommand creates the ingest command for indexing local PDFs.
func (c *CLI) ingestCommand() *cobra.Command {
	var (
		dryRun  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <file.pdf> [file.pdf...]",
		Short: "Extract, chunk, and index local PDF files",
		Long: `Ingest extracts text from local PDF files, chunks it, and indexes the
chunks into the vector store. With --dry-run it stops after chunking and
reports what would be indexed, without touching the embedding API or the
vector store.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				return c.runDryIngest(args)
			}

			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			processor, err := c.newIngestProcessor(cfg, noCache)
			if err != nil {
				return err
			}

			for _, path := range args {
				if err := c.ingestFile(cmd, processor, path); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "extract and chunk only, do not index")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the embedding cache")
	return cmd
}

func (c *CLI) newIngestProcessor(cfg config.Config, noCache bool) (*rag.Processor, error) {
	shared, err := newCache(noCache)
	if err != nil {
		return nil, err
	}

	embedSvc, err := embeddings.NewService(embeddings.Config{
		BaseURL: cfg.Embeddings.BaseURL,
		Model:   cfg.Embeddings.Model,
		APIKey:  cfg.Embeddings.APIKey,
		Cache:   shared,
	})
	if err != nil {
		return nil, err
	}

	vectors, err := vectorstore.NewService(vectorstore.Config{
		URL:            cfg.Qdrant.URL,
		CollectionName: cfg.Qdrant.Collection,
		Embedder:       embedSvc,
	})
	if err != nil {
		return nil, err
	}

	return rag.NewProcessor(vectors, c.Logger), nil
}

func (c *CLI) ingestFile(cmd *cobra.Command, processor *rag.Processor, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	spinner := newSpinnerWithContext(cmd.Context(), "Indexing "+filepath.Base(path))
	spinner.Start()

	p := newProgress(c.Logger)
	result, err := processor.ProcessPDF(cmd.Context(), uuid.NewString(), filepath.Base(path), data)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Failed to ingest %s: %v", path, err))
		return err
	}
	spinner.Stop()
	p.done(fmt.Sprintf("Indexed %s", result.Filename))

	printSuccess("%s", result.Filename)
	printKeyValue("document", result.DocumentID)
	printKeyValue("pages", fmt.Sprintf("%d", result.PageCount))
	printKeyValue("chunks", fmt.Sprintf("%d", result.ChunkCount))
	if result.ChunkCount == 0 {
		printWarning("no extractable text, document is not searchable")
	}
	printNewline()
	return nil
}

// runDryIngest extracts and chunks without embedding or storing.
func (c *CLI) runDryIngest(paths []string) error {
	chunker := rag.NewPDFChunker()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		pages, err := rag.ExtractPages(data)
		if err != nil {
			printError("%s: %v", path, err)
			continue
		}

		chunks := 0
		emptyPages := 0
		for _, page := range pages {
			n := len(chunker.Chunk(page.Text, page.Number))
			chunks += n
			if n == 0 {
				emptyPages++
			}
		}

		printInfo("%s", filepath.Base(path))
		printDetail("%d pages, %d chunks, %d pages without chunks", len(pages), chunks, emptyPages)
	}
	return nil
}
