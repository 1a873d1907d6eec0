package export

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
)

const (
	blocksSheet  = "Blocks"
	summarySheet = "Summary"
)

// XLSXExporter writes one row per block and a separate summary sheet. Text
// longer than a cell can hold continues on the following rows.
type XLSXExporter struct{}

func (XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (XLSXExporter) Extension() string { return string(FormatXLSX) }

func (XLSXExporter) Write(w io.Writer, session *domain.Session) error {
	book := excelize.NewFile()
	defer func() {
		_ = book.Close()
	}()

	if err := book.SetSheetName("Sheet1", blocksSheet); err != nil {
		return fmt.Errorf("rename blocks sheet: %w", err)
	}
	if err := writeRow(book, blocksSheet, 1, "#", "Block", "Words", "Part"); err != nil {
		return err
	}
	row := 2
	for idx, block := range session.Document.Blocks {
		parts := splitCell(block)
		for n, part := range parts {
			values := []any{idx + 1, part, domain.CountWords(part)}
			if len(parts) > 1 {
				values = append(values, fmt.Sprintf("%d/%d", n+1, len(parts)))
			}
			if err := writeRow(book, blocksSheet, row, values...); err != nil {
				return err
			}
			row++
		}
	}
	if err := book.SetColWidth(blocksSheet, "B", "B", 100); err != nil {
		return fmt.Errorf("set block column width: %w", err)
	}

	if _, err := book.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	rows := [][]any{
		{"Document", session.Document.Filename},
		{"Pages", session.Document.PageCount},
		{"Blocks", len(session.Document.Blocks)},
		{"Complete extraction", session.Document.Complete},
		{"State", string(session.State)},
	}
	if session.Summary != nil {
		rows = append(rows,
			[]any{"Target length", session.Summary.TargetLength},
			[]any{"Summary words", session.Summary.WordCount()},
		)
		for n, part := range splitCell(session.Summary.Text) {
			label := "Summary"
			if n > 0 {
				label = "Summary (cont.)"
			}
			rows = append(rows, []any{label, part})
		}
	}
	for idx, row := range rows {
		if err := writeRow(book, summarySheet, idx+1, row...); err != nil {
			return err
		}
	}
	if err := book.SetColWidth(summarySheet, "B", "B", 100); err != nil {
		return fmt.Errorf("set summary column width: %w", err)
	}

	if err := book.Write(w); err != nil {
		return fmt.Errorf("write xlsx export: %w", err)
	}
	return nil
}

func writeRow(book *excelize.File, sheet string, row int, values ...any) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := book.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

// splitCell cuts s into pieces excelize stores without truncation.
func splitCell(s string) []string {
	if utf8.RuneCountInString(s) <= excelize.TotalCellChars {
		return []string{s}
	}
	runes := []rune(s)
	parts := make([]string, 0, len(runes)/excelize.TotalCellChars+1)
	for len(runes) > excelize.TotalCellChars {
		parts = append(parts, string(runes[:excelize.TotalCellChars]))
		runes = runes[excelize.TotalCellChars:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
