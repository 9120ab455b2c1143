package imports

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ErrorReport renders row errors as a downloadable xlsx sheet.
func ErrorReport(errs []RowError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Errors"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &[]any{"Row #", "Field", "Error"}); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "C1", headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	_ = f.SetColWidth(sheet, "A", "A", 8)
	_ = f.SetColWidth(sheet, "B", "B", 28)
	_ = f.SetColWidth(sheet, "C", "C", 60)

	for i, e := range errs {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &[]any{e.Row, e.Field, e.Message}); err != nil {
			return nil, fmt.Errorf("write error row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}
