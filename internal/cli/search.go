package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/boardstack/boardstack/internal/config"
	"github.com/boardstack/boardstack/pkg/embeddings"
	"github.com/boardstack/boardstack/pkg/vectorstore"
)

// searchCommand creates the search command for querying the index.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		limit      int
		threshold  float32
		documentID string
		pick       bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed canvas content",
		Long: `Search runs a similarity search over everything indexed from the canvas:
PDF chunks, handwriting transcriptions, and typed notes. Use --document to
scope the search to one ingested PDF, and --pick to browse the results
interactively.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]

			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			vectors, err := c.newSearchService(cfg)
			if err != nil {
				return err
			}

			spinner := newSpinnerWithContext(cmd.Context(), "Searching")
			spinner.Start()

			var results []vectorstore.SearchResult
			if documentID != "" {
				results, err = vectors.SearchDocument(cmd.Context(), query, documentID, limit, threshold)
			} else {
				results, err = vectors.Search(cmd.Context(), query, limit, threshold)
			}
			spinner.Stop()
			if err != nil {
				return err
			}

			if len(results) == 0 {
				printInfo("No results for %q", query)
				return nil
			}

			if pick {
				return pickResult(results)
			}
			printResults(query, results)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results")
	cmd.Flags().Float32Var(&threshold, "threshold", 0.3, "minimum similarity score (0 disables)")
	cmd.Flags().StringVar(&documentID, "document", "", "restrict search to one document ID")
	cmd.Flags().BoolVar(&pick, "pick", false, "browse results interactively")
	return cmd
}

func (c *CLI) newSearchService(cfg config.Config) (*vectorstore.Service, error) {
	shared, err := newCache(false)
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

	return vectorstore.NewService(vectorstore.Config{
		URL:            cfg.Qdrant.URL,
		CollectionName: cfg.Qdrant.Collection,
		Embedder:       embedSvc,
	})
}

func printResults(query string, results []vectorstore.SearchResult) {
	fmt.Println(StyleTitle.Render(fmt.Sprintf("Results for %q", query)))
	printNewline()

	for i, res := range results {
		score := styleScore.Render(fmt.Sprintf("%.2f", res.Score))
		fmt.Printf("%s %s %s\n",
			StyleNumber.Render(fmt.Sprintf("%2d.", i+1)),
			score,
			StyleDim.Render(resultSource(res)))
		printDetail("%s", snippet(res.Content, 160))
	}
}

// pickResult opens the interactive result browser and prints the chosen
// chunk in full.
func pickResult(results []vectorstore.SearchResult) error {
	model := NewResultListModel(results)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return err
	}

	m, ok := final.(ResultListModel)
	if !ok || m.Selected == nil {
		return nil
	}

	printNewline()
	fmt.Println(StyleTitle.Render(resultSource(*m.Selected)))
	printKeyValue("score", fmt.Sprintf("%.2f", m.Selected.Score))
	printNewline()
	fmt.Println(m.Selected.Content)
	return nil
}

// resultSource describes where a chunk came from.
func resultSource(res vectorstore.SearchResult) string {
	switch res.SourceType() {
	case vectorstore.SourcePDF:
		name := res.MetaString(vectorstore.MetaFilename)
		if page, ok := res.Metadata[vectorstore.MetaPageNumber]; ok {
			return fmt.Sprintf("%s (page %v)", name, page)
		}
		return name
	case vectorstore.SourceHandwriting:
		return "handwriting " + res.MetaString(vectorstore.MetaFrameID)
	case vectorstore.SourceTyped:
		return "note " + res.MetaString(vectorstore.MetaFrameID)
	default:
		return "unknown source"
	}
}

func snippet(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
