package plaintext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
)

// PageBreak separates pages in text exports of paginated documents.
const PageBreak = "\f"

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) ExtractPages(ctx context.Context, upload domain.Upload) (domain.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return domain.Extraction{}, err
	}
	if !utf8.Valid(upload.Body) {
		return domain.Extraction{}, domain.WrapError(
			domain.ErrExtractionFailed,
			"extract plain text",
			fmt.Errorf("unsupported binary content: %s", upload.Filename),
		)
	}

	raw := strings.TrimSuffix(string(upload.Body), PageBreak)
	if raw == "" {
		return domain.Extraction{Pages: []string{}, Complete: true}, nil
	}

	pages := strings.Split(raw, PageBreak)
	for i := range pages {
		pages[i] = strings.TrimSpace(pages[i])
	}
	return domain.Extraction{Pages: pages, Complete: true}, nil
}
