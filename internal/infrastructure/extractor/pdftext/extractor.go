package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
)

// Extractor reads page text with ledongthuc/pdf. A page that fails is kept as
// an empty string with a diagnostic; a document that cannot be opened or
// breaks the parser part way returns the pages read so far.
type Extractor struct {
	maxPages int
}

func NewExtractor(maxPages int) *Extractor {
	if maxPages < 0 {
		maxPages = 0
	}
	return &Extractor{maxPages: maxPages}
}

func (e *Extractor) ExtractPages(ctx context.Context, upload domain.Upload) (extraction domain.Extraction, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			extraction.Complete = false
			err = domain.WrapError(domain.ErrExtractionFailed, "extract pdf", fmt.Errorf("parser panic: %v", rec))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(upload.Body), int64(len(upload.Body)))
	if err != nil {
		return domain.Extraction{}, domain.WrapError(domain.ErrExtractionFailed, "open pdf", err)
	}

	total := reader.NumPage()
	limit := total
	if e.maxPages > 0 && e.maxPages < total {
		limit = e.maxPages
	}

	extraction.Pages = make([]string, 0, limit)
	for index := 1; index <= limit; index++ {
		if err := ctx.Err(); err != nil {
			return extraction, err
		}
		text, pageErr := pageText(reader, index)
		if pageErr != nil {
			extraction.Diagnostics = append(extraction.Diagnostics, fmt.Sprintf("page %d: %v", index, pageErr))
		}
		extraction.Pages = append(extraction.Pages, text)
	}
	if limit < total {
		extraction.Diagnostics = append(extraction.Diagnostics, fmt.Sprintf("stopped after %d of %d pages", limit, total))
	}

	extraction.Complete = len(extraction.Diagnostics) == 0
	return extraction, nil
}

// pageText is 1-indexed like the underlying reader.
func pageText(reader *pdf.Reader, index int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("parser panic: %v", rec)
		}
	}()

	page := reader.Page(index)
	if page.V.IsNull() {
		return "", nil
	}
	raw, err := page.GetPlainText(nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}
