package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// WriteCSV writes rows as a UTF-8 CSV file in dir and returns its path.
// A leading byte order mark is written when bom is true.
func WriteCSV(t *testing.T, dir, name string, rows [][]string, bom bool) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create csv fixture: %v", err)
	}
	defer f.Close()

	if bom {
		if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			t.Fatalf("write bom: %v", err)
		}
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write csv fixture: %v", err)
	}
	return path
}

// WriteXLSX writes rows into the first sheet of a new workbook in dir and
// returns its path. Empty strings leave the cell blank.
func WriteXLSX(t *testing.T, dir, name string, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	for r, row := range rows {
		for c, value := range row {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("set cell %s: %v", cell, err)
			}
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save xlsx fixture: %v", err)
	}
	return path
}
