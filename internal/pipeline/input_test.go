package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeXLSX(t *testing.T, path, sheet string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "" && sheet != f.GetSheetName(0) {
		if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
			t.Fatal(err)
		}
	}
	name := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(name, cell, v)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func TestReadPartRequestsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parts.xlsx")
	writeXLSX(t, path, "Sheet1", [][]any{
		{" Part_Number ", "Categories", "Sub_Categories ", "Sub_Categories2", "Notes"},
		{"LM317", "Power", "Regulators", "Linear", "x"},
		{"", "Power", "", "", ""},
		{12345, "Passive", "Resistors"},
	})

	reqs, err := ReadPartRequests(path, "Sheet1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(reqs) != 2 {
		t.Fatalf("len=%d %+v", len(reqs), reqs)
	}
	if reqs[0].PartNumber != "LM317" || reqs[0].SubCategories != "Regulators" || reqs[0].SubCategories2 != "Linear" {
		t.Fatalf("req0=%+v", reqs[0])
	}
	if reqs[1].PartNumber != "12345" || reqs[1].SubCategories2 != "" {
		t.Fatalf("req1=%+v", reqs[1])
	}
}

func TestReadPartRequestsMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parts.xlsx")
	writeXLSX(t, path, "Sheet1", [][]any{{"Part_Number", "Categories"}, {"LM317", "Power"}})

	_, err := ReadPartRequests(path, "Sheet1", nil)
	if err == nil || !strings.Contains(err.Error(), "Sub_Categories") {
		t.Fatalf("err=%v", err)
	}
}

func TestReadPartRequestsUnknownSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parts.xlsx")
	writeXLSX(t, path, "Parts", [][]any{{"Part_Number", "Categories", "Sub_Categories", "Sub_Categories2"}})

	if _, err := ReadPartRequests(path, "Sheet1", nil); err == nil {
		t.Fatal("expected error for missing sheet")
	}
	reqs, err := ReadPartRequests(path, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(reqs) != 0 {
		t.Fatalf("len=%d", len(reqs))
	}
}

func TestReadPartRequestsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parts.csv")
	content := "Part_Number,Categories,Sub_Categories,Sub_Categories2\nNE555,Timers,Analog,\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	reqs, err := ReadPartRequests(path, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(reqs) != 1 || reqs[0].PartNumber != "NE555" || reqs[0].Categories != "Timers" {
		t.Fatalf("reqs=%+v", reqs)
	}
}
