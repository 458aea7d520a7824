package pipeline

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"partpulse/internal"
)

func TestExportRowsToXLSX(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "report.xlsx")
	rows := []internal.ProductRow{
		{PartNumber: "LM317", Manufacturer: "texas instruments", UnitPriceEUR: 0.5, NewLeadTime: 21, DataPulledTime: time.Now()},
	}
	if err := ExportRowsToXLSX(rows, out); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("rows=%d", len(got))
	}
	if got[0][3] != "Part_Number" || got[1][3] != "LM317" || got[1][4] != "texas instruments" {
		t.Fatalf("got=%v", got)
	}
}
