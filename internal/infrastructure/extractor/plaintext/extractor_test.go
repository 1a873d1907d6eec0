package plaintext

import (
	"context"
	"testing"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
)

func TestExtractPagesSplitsOnFormFeed(t *testing.T) {
	extraction, err := NewExtractor().ExtractPages(context.Background(), domain.Upload{
		Filename: "notes.txt",
		Body:     []byte("First page.\n\fSecond page.\f"),
	})
	if err != nil {
		t.Fatalf("ExtractPages() error = %v", err)
	}
	if len(extraction.Pages) != 2 || extraction.Pages[0] != "First page." || extraction.Pages[1] != "Second page." {
		t.Fatalf("unexpected pages %q", extraction.Pages)
	}
	if !extraction.Complete {
		t.Fatalf("expected complete extraction")
	}
}

func TestExtractPagesEmptyBody(t *testing.T) {
	extraction, err := NewExtractor().ExtractPages(context.Background(), domain.Upload{Filename: "empty.txt"})
	if err != nil {
		t.Fatalf("ExtractPages() error = %v", err)
	}
	if len(extraction.Pages) != 0 || !extraction.Complete {
		t.Fatalf("expected zero pages, got %+v", extraction)
	}
}

func TestExtractPagesRejectsBinary(t *testing.T) {
	_, err := NewExtractor().ExtractPages(context.Background(), domain.Upload{
		Filename: "blob.bin",
		Body:     []byte{0xff, 0xfe, 0x00, 0x81},
	})
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected extraction failure, got %v", err)
	}
}
