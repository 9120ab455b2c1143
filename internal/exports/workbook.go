package exports

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/elameta/quoteregistry/internal/listing"
)

const sheetName = "Positions"

// ListingWorkbook renders rows as an xlsx sheet with one column per visible
// listing column. Labels follow lang ("lt" or "en").
func ListingWorkbook(rows []listing.Row, cols []listing.Column, lang string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, c := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, ColumnLabel(c, lang)); err != nil {
			return nil, fmt.Errorf("write header %s: %w", c.Key, err)
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, name, name, columnWidth(c)); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", name, err)
		}
	}
	if len(cols) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(cols), 1)
		if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
			return nil, fmt.Errorf("style header: %w", err)
		}
		if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, Split: false, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return nil, fmt.Errorf("freeze header: %w", err)
		}
	}

	for r, row := range rows {
		values := make([]any, len(cols))
		for i, c := range cols {
			values[i] = SanitizeCell(c.Value(row))
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// ColumnLabel picks the column caption for lang.
func ColumnLabel(c listing.Column, lang string) string {
	if strings.HasPrefix(strings.ToLower(lang), "en") {
		return c.Label
	}
	return c.LabelLT
}

// SanitizeCell prefixes values a spreadsheet would evaluate as a formula with a
// single quote.
func SanitizeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		if isPlainNumber(s) {
			return s
		}
		return "'" + s
	}
	return s
}

// isPlainNumber lets negative numbers through untouched.
func isPlainNumber(s string) bool {
	if len(s) < 2 || (s[0] != '-' && s[0] != '+') {
		return false
	}
	dot := false
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return true
}

func columnWidth(c listing.Column) float64 {
	switch c.Type {
	case listing.ColumnBool:
		return 8
	case listing.ColumnNumber:
		return 14
	case listing.ColumnDate:
		return 17
	}
	if c.Key == "notes" || c.Key == "quality_tests" || c.Key == "packaging" {
		return 40
	}
	return 22
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
