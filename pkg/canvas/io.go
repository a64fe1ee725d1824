package canvas

import (
	"encoding/json"
	"io"
	"os"

	"github.com/boardstack/boardstack/pkg/errors"
	"github.com/boardstack/boardstack/pkg/geom"
)

// Board is the serialized form of a document: the viewport plus every
// shape in insertion order.
type Board struct {
	Viewport geom.Rect `json:"viewport"`
	Shapes   []Shape   `json:"shapes"`
}

// Export snapshots the document into a Board.
func (d *Document) Export() Board {
	return Board{
		Viewport: d.ViewportBounds(),
		Shapes:   d.Shapes(),
	}
}

// ImportBoard builds a document from a serialized board.
func ImportBoard(b Board) *Document {
	doc := NewDocument(b.Viewport)
	for _, s := range b.Shapes {
		doc.CreateShape(s)
	}
	return doc
}

// ReadBoard decodes a board from JSON.
func ReadBoard(r io.Reader) (Board, error) {
	var b Board
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return Board{}, errors.Wrap(err, errors.ErrCodeInvalidFile, "decoding board JSON")
	}
	return b, nil
}

// WriteBoard encodes a board as indented JSON.
func WriteBoard(w io.Writer, b Board) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "encoding board JSON")
	}
	return nil
}

// LoadBoardFile reads a board from a JSON file on disk.
func LoadBoardFile(path string) (Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return Board{}, errors.Wrap(err, errors.ErrCodeInvalidFile, "opening board file")
	}
	defer f.Close()
	return ReadBoard(f)
}

// SaveBoardFile writes a board to a JSON file on disk.
func SaveBoardFile(path string, b Board) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "creating board file")
	}
	defer f.Close()
	return WriteBoard(f, b)
}
