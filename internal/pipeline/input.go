package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"partpulse/internal"
)

const (
	colPartNumber     = "Part_Number"
	colCategories     = "Categories"
	colSubCategories  = "Sub_Categories"
	colSubCategories2 = "Sub_Categories2"
)

var ErrInput = errors.New("input source")

// ReadPartRequests loads the part list from an .xlsx workbook (sheet, or the
// first sheet when sheet is empty) or from a .csv file.
func ReadPartRequests(path, sheet string, log *slog.Logger) ([]internal.PartRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}
	defer f.Close()

	var rows [][]string
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		rows, err = readCSVRows(f)
	} else {
		rows, err = readXLSXRows(f, sheet)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInput, path, err)
	}

	requests, skipped, err := requestsFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInput, path, err)
	}
	if skipped > 0 && log != nil {
		log.Warn("skipped input rows without part number", "path", path, "skipped", skipped)
	}
	return requests, nil
}

func readXLSXRows(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.TrimSpace(sheet) == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	return f.GetRows(sheet)
}

func readCSVRows(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}

func requestsFromRows(rows [][]string) ([]internal.PartRequest, int, error) {
	if len(rows) == 0 {
		return nil, 0, errors.New("missing header row")
	}

	index := map[string]int{}
	for i, h := range rows[0] {
		index[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{colPartNumber, colCategories, colSubCategories, colSubCategories2} {
		if _, ok := index[col]; !ok {
			return nil, 0, fmt.Errorf("missing required column %q", col)
		}
	}

	out := make([]internal.PartRequest, 0, len(rows)-1)
	skipped := 0
	for _, row := range rows[1:] {
		req := internal.PartRequest{
			PartNumber:     pickCell(row, index[colPartNumber]),
			Categories:     pickCell(row, index[colCategories]),
			SubCategories:  pickCell(row, index[colSubCategories]),
			SubCategories2: pickCell(row, index[colSubCategories2]),
		}
		if req.PartNumber == "" {
			if !blankRow(row) {
				skipped++
			}
			continue
		}
		out = append(out, req)
	}
	return out, skipped, nil
}

func pickCell(cells []string, idx int) string {
	if idx >= 0 && idx < len(cells) {
		return strings.TrimSpace(cells[idx])
	}
	return ""
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
