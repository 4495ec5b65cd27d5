// Package textextract pulls the text layer out of PDF documents.
package textextract

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

type ExtractedText struct {
	Content string
	Pages   int
}

// ExtractPDF concatenates the text layer page by page, in order, joining
// pages with a paragraph break. Scanned or image-only PDFs come back with
// empty Content rather than an error; the caller decides what "too little
// text" means.
func ExtractPDF(data io.ReaderAt, size int64) (*ExtractedText, error) {
	reader, err := pdf.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	var pages []string
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if t := strings.TrimSpace(text); t != "" {
			pages = append(pages, t)
		}
	}

	return &ExtractedText{
		Content: strings.Join(pages, "\n\n"),
		Pages:   numPages,
	}, nil
}
