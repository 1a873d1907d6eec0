package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
)

func sampleSession() *domain.Session {
	session := &domain.Session{
		ID: "s1",
		Document: domain.DocumentDigest{
			ID:        "d1",
			Filename:  "report.pdf",
			PageCount: 2,
			Text:      "First. Second. Third",
			Blocks:    []string{"First", "Second.", "Third."},
			Complete:  true,
		},
		State: domain.SummaryStateHasSummary,
	}
	session.Summary = &domain.SummaryResult{DocumentID: "d1", Text: "Three short parts.", TargetLength: 300}
	return session
}

func TestForFormat(t *testing.T) {
	if exporter, err := ForFormat(""); err != nil || exporter.Extension() != "txt" {
		t.Fatalf("expected text default, got %v %v", exporter, err)
	}
	if exporter, err := ForFormat("XLSX"); err != nil || exporter.Extension() != "xlsx" {
		t.Fatalf("expected xlsx exporter, got %v %v", exporter, err)
	}
	if _, err := ForFormat("pdf"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(sampleSession(), XLSXExporter{}); got != "report-digest.xlsx" {
		t.Fatalf("unexpected filename %q", got)
	}
	session := sampleSession()
	session.Document.Filename = ""
	if got := Filename(session, TextExporter{}); got != "s1-digest.txt" {
		t.Fatalf("unexpected fallback filename %q", got)
	}
}

func TestTextExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (TextExporter{}).Write(&buf, sampleSession()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Document: report.pdf", "Blocks: 3", "Three short parts.", "1. First\n", "3. Third.\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("export missing %q:\n%s", want, out)
		}
	}
}

func TestTextExporterWithoutSummary(t *testing.T) {
	session := sampleSession()
	session.Summary = nil
	session.State = domain.SummaryStateEmpty

	var buf bytes.Buffer
	if err := (TextExporter{}).Write(&buf, session); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), "(none)") {
		t.Fatalf("expected empty summary marker:\n%s", buf.String())
	}
}

func TestXLSXExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (XLSXExporter{}).Write(&buf, sampleSession()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	book, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer book.Close()

	block, err := book.GetCellValue(blocksSheet, "B3")
	if err != nil || block != "Second." {
		t.Fatalf("expected second block in B3, got %q (%v)", block, err)
	}
	words, _ := book.GetCellValue(blocksSheet, "C2")
	if words != "1" {
		t.Fatalf("expected word count 1, got %q", words)
	}
	summary, _ := book.GetCellValue(summarySheet, "B8")
	if summary != "Three short parts." {
		t.Fatalf("expected summary text in B8, got %q", summary)
	}
}

func TestXLSXExporterKeepsOversizedBlockWhole(t *testing.T) {
	long := strings.Repeat("word ", 8000)
	session := sampleSession()
	session.Document.Blocks = []string{long, "Tail."}

	var buf bytes.Buffer
	if err := (XLSXExporter{}).Write(&buf, session); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	book, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer book.Close()

	first, _ := book.GetCellValue(blocksSheet, "B2")
	second, _ := book.GetCellValue(blocksSheet, "B3")
	if len(first) != excelize.TotalCellChars || first+second != long {
		t.Fatalf("block not preserved across rows: %d + %d chars, want %d", len(first), len(second), len(long))
	}
	for cell, want := range map[string]string{"A3": "1", "D2": "1/2", "D3": "2/2", "A4": "2", "B4": "Tail.", "D4": ""} {
		if got, _ := book.GetCellValue(blocksSheet, cell); got != want {
			t.Fatalf("%s = %q, want %q", cell, got, want)
		}
	}
}

func TestSplitCell(t *testing.T) {
	if parts := splitCell("short"); len(parts) != 1 || parts[0] != "short" {
		t.Fatalf("unexpected parts %q", parts)
	}
	text := strings.Repeat("é", 2*excelize.TotalCellChars+1)
	parts := splitCell(text)
	if len(parts) != 3 || strings.Join(parts, "") != text {
		t.Fatalf("expected 3 parts covering the text, got %d", len(parts))
	}
	if got := len([]rune(parts[2])); got != 1 {
		t.Fatalf("expected 1 rune in last part, got %d", got)
	}
}
