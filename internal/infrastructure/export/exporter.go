// Package export renders a session's blocks and summary as downloadable files.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatText Format = "txt"
)

type Exporter interface {
	ContentType() string
	Extension() string
	Write(w io.Writer, session *domain.Session) error
}

// ForFormat resolves an exporter by its query name. An empty name selects
// plain text.
func ForFormat(name string) (Exporter, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatText, "":
		return TextExporter{}, nil
	case FormatXLSX:
		return XLSXExporter{}, nil
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "select export format", fmt.Errorf("unsupported format %q", name))
	}
}

// Filename derives the download name from the source document.
func Filename(session *domain.Session, exporter Exporter) string {
	base := strings.TrimSpace(session.Document.Filename)
	if dot := strings.LastIndex(base, "."); dot > 0 {
		base = base[:dot]
	}
	if base == "" {
		base = session.ID
	}
	return base + "-digest." + exporter.Extension()
}
