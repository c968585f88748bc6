package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads a CSV or XLSX file into a string table based on its extension.
func Load(path string) Table {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".xlsx", ".xlsm":
		return LoadXLSX(path)
	default:
		return Table{Err: fmt.Errorf("load %s: %w", filepath.Base(path), ErrUnsupportedFormat)}
	}
}

// LoadCSV reads a UTF-8 CSV file. A leading byte order mark is skipped and
// ragged rows are accepted.
func LoadCSV(path string) Table {
	f, err := os.Open(path)
	if err != nil {
		return Table{Err: fmt.Errorf("load csv: %w", err)}
	}
	defer f.Close()

	t := ReadCSV(f)
	if t.Err != nil {
		t.Err = fmt.Errorf("load csv %s: %w", filepath.Base(path), t.Err)
	}
	return t
}

// ReadCSV reads CSV records from r into a string table.
func ReadCSV(r io.Reader) Table {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{Err: err}
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return Table{Err: fmt.Errorf("parse csv: %w", err)}
	}
	return FromRecords(dropBlankRows(records))
}

// LoadXLSX reads the first worksheet of a workbook. Cells are read as their
// stored values, not their display format.
func LoadXLSX(path string) Table {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Table{Err: fmt.Errorf("load xlsx: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{Err: fmt.Errorf("load xlsx %s: workbook has no sheets", filepath.Base(path))}
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return Table{Err: fmt.Errorf("load xlsx %s: read sheet %q: %w", filepath.Base(path), sheets[0], err)}
	}

	t := FromRecords(trimBlankRows(rows))
	if t.Err != nil {
		t.Err = fmt.Errorf("load xlsx %s: %w", filepath.Base(path), t.Err)
	}
	return t
}

// dropBlankRows removes rows with no content.
func dropBlankRows(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if !isBlankRow(row) {
			out = append(out, row)
		}
	}
	return out
}

// trimBlankRows removes blank rows before the header and after the last
// data row. Blank rows between data rows stay as rows of missing cells so
// row counts match the sheet.
func trimBlankRows(rows [][]string) [][]string {
	start, end := 0, len(rows)
	for start < end && isBlankRow(rows[start]) {
		start++
	}
	for end > start && isBlankRow(rows[end-1]) {
		end--
	}
	return rows[start:end]
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
