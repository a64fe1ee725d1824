// Package richtext extracts plain text from rich-text documents as produced
// by the canvas note editor (a ProseMirror-style node tree).
package richtext

import (
	"encoding/json"
	"strings"

	"github.com/boardstack/boardstack/pkg/errors"
)

// Node is a rich-text document node. A document is a tree: the root holds
// block nodes (paragraphs, headings, list items), whose content holds
// inline nodes carrying the actual text.
type Node struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Content []Node `json:"content,omitempty"`
}

// blockTypes are node types that end a line when flattening to plain text.
var blockTypes = map[string]bool{
	"paragraph":  true,
	"heading":    true,
	"blockquote": true,
	"listItem":   true,
	"codeBlock":  true,
}

// Extract flattens a rich-text document into plain text. Inline text is
// concatenated in document order; block-level nodes are separated by
// newlines. Empty blocks are dropped.
func Extract(doc Node) string {
	var blocks []string
	var current strings.Builder

	var walk func(n Node)
	walk = func(n Node) {
		if n.Text != "" {
			current.WriteString(n.Text)
		}
		for _, child := range n.Content {
			walk(child)
		}
		if blockTypes[n.Type] {
			if s := strings.TrimSpace(current.String()); s != "" {
				blocks = append(blocks, s)
			}
			current.Reset()
		}
	}
	walk(doc)

	if s := strings.TrimSpace(current.String()); s != "" {
		blocks = append(blocks, s)
	}
	return strings.Join(blocks, "\n")
}

// ExtractJSON parses a serialized rich-text document and flattens it.
func ExtractJSON(data []byte) (string, error) {
	var doc Node
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInvalidInput, "parsing rich text document")
	}
	return Extract(doc), nil
}
