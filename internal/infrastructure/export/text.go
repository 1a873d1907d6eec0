package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
)

type TextExporter struct{}

func (TextExporter) ContentType() string { return "text/plain; charset=utf-8" }

func (TextExporter) Extension() string { return string(FormatText) }

func (TextExporter) Write(w io.Writer, session *domain.Session) error {
	out := bufio.NewWriter(w)
	doc := session.Document

	fmt.Fprintf(out, "Document: %s\n", doc.Filename)
	fmt.Fprintf(out, "Pages: %d\n", doc.PageCount)
	fmt.Fprintf(out, "Words: %d\n", doc.WordCount())
	fmt.Fprintf(out, "Blocks: %d\n", len(doc.Blocks))
	if !doc.Complete {
		fmt.Fprintf(out, "Extraction incomplete: %d diagnostic(s)\n", len(doc.Diagnostics))
	}

	fmt.Fprint(out, "\n== Summary ==\n")
	if session.Summary == nil {
		fmt.Fprint(out, "(none)\n")
	} else {
		fmt.Fprintf(out, "%s\n(%d words, target %d)\n", session.Summary.Text, session.Summary.WordCount(), session.Summary.TargetLength)
	}

	fmt.Fprint(out, "\n== Blocks ==\n")
	for idx, block := range doc.Blocks {
		fmt.Fprintf(out, "%d. %s\n", idx+1, block)
	}

	if err := out.Flush(); err != nil {
		return fmt.Errorf("write text export: %w", err)
	}
	return nil
}
