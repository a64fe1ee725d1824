package vectorstore

import (
	"fmt"
	"strings"
)

// FormatContext renders search results as the canvas-context block fed to
// the chat model ahead of the user's question. Each entry is labeled by
// its source so the model can attribute what it quotes.
func FormatContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	lines := make([]string, 0, len(results))
	for i, r := range results {
		snippet := strings.Join(strings.Fields(r.Content), " ")

		var label string
		switch r.SourceType() {
		case SourceHandwriting:
			label = "Handwriting frame " + r.MetaString(MetaFrameID)
		case SourcePDF:
			doc := r.MetaString(MetaFilename)
			if doc == "" {
				doc = r.MetaString(MetaDocumentID)
			}
			label = "PDF " + doc
			if page, ok := r.Metadata[MetaPageNumber]; ok {
				label += fmt.Sprintf(" (page %v)", page)
			}
		case SourceTyped:
			label = "Typed note " + r.MetaString(MetaFrameID)
		default:
			label = "Context"
		}

		lines = append(lines, fmt.Sprintf("%d. %s [similarity %.2f]: %s", i+1, label, r.Score, snippet))
	}
	return "Use the following canvas context when answering:\n" + strings.Join(lines, "\n")
}
