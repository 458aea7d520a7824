package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"partpulse/internal"
)

// ExportRowsToXLSX writes stored observations to a workbook, one row per
// ProductRow in ProductColumns order.
func ExportRowsToXLSX(rows []internal.ProductRow, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range internal.ProductColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		for col, value := range row.Values() {
			cell, _ := excelize.CoordinatesToCellName(col+1, r)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
