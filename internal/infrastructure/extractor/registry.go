// Package extractor picks a page text extractor for an upload.
package extractor

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
	"github.com/kirillkom/pdf-digest/internal/core/ports"
)

type Registry struct {
	byMediaType map[string]ports.PageTextExtractor
	byExtension map[string]ports.PageTextExtractor
}

func NewRegistry() *Registry {
	return &Registry{
		byMediaType: make(map[string]ports.PageTextExtractor),
		byExtension: make(map[string]ports.PageTextExtractor),
	}
}

// Register binds an extractor to a file extension (with leading dot) and any
// number of media types.
func (r *Registry) Register(extension string, mediaTypes []string, extractor ports.PageTextExtractor) *Registry {
	if ext := strings.ToLower(strings.TrimSpace(extension)); ext != "" {
		r.byExtension[ext] = extractor
	}
	for _, mediaType := range mediaTypes {
		r.byMediaType[normalizeMediaType(mediaType)] = extractor
	}
	return r
}

func (r *Registry) ExtractPages(ctx context.Context, upload domain.Upload) (domain.Extraction, error) {
	extractor, ok := r.resolve(upload)
	if !ok {
		return domain.Extraction{}, domain.WrapError(
			domain.ErrInvalidInput,
			"select extractor",
			fmt.Errorf("unsupported document type %q (%s)", upload.MimeType, upload.Filename),
		)
	}
	return extractor.ExtractPages(ctx, upload)
}

// resolve tries the declared media type, then the file extension, then
// content sniffing.
func (r *Registry) resolve(upload domain.Upload) (ports.PageTextExtractor, bool) {
	declared := normalizeMediaType(upload.MimeType)
	if declared != "" && declared != "application/octet-stream" {
		if extractor, ok := r.byMediaType[declared]; ok {
			return extractor, true
		}
	}
	if ext := strings.ToLower(filepath.Ext(upload.Filename)); ext != "" {
		if extractor, ok := r.byExtension[ext]; ok {
			return extractor, true
		}
	}
	if len(upload.Body) > 0 {
		sniffed := normalizeMediaType(http.DetectContentType(upload.Body))
		if extractor, ok := r.byMediaType[sniffed]; ok {
			return extractor, true
		}
	}
	return nil, false
}

func normalizeMediaType(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return strings.ToLower(value)
	}
	return mediaType
}
