package rag

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/boardstack/boardstack/pkg/errors"
)

// MaxPDFSize is the upload size limit for PDF ingestion.
const MaxPDFSize = 20 << 20 // 20 MB

// Page is the extracted text of one PDF page. Numbers are 1-based.
type Page struct {
	Number int
	Text   string
}

// ExtractPages extracts per-page plain text from a PDF. Pages that fail
// text extraction come back empty rather than failing the whole document;
// scanned pages without a text layer simply yield no chunks.
func ExtractPages(data []byte) ([]Page, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidFile, "opening PDF")
	}

	total := reader.NumPage()
	pages := make([]Page, 0, total)
	for i := 1; i <= total; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			pages = append(pages, Page{Number: i})
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			text = ""
		}
		pages = append(pages, Page{Number: i, Text: cleanText(text)})
	}
	return pages, nil
}

// cleanText collapses whitespace and strips control/replacement characters
// that PDF extraction tends to leave behind.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.ReplaceAll(text, "�", "")
	return strings.Join(strings.Fields(text), " ")
}
