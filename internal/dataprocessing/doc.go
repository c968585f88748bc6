// Package dataprocessing loads the dashboard's source files into tables and
// provides the reshaping operations the chart routines are built from.
//
// # Tables
//
// Table wraps a gota DataFrame. Every loaded cell is text; empty cells and
// NA markers are missing. Numeric columns only appear after CoerceNumeric,
// which strips thousands separators and turns unparsable text into missing
// values rather than failing.
//
// Operations never modify their receiver. They carry the first error along
// the chain the way gota does, so a pipeline is checked once:
//
//	t := dataprocessing.LoadCSV(path).
//	    Rename(map[string]string{"2011": "백분율"}).
//	    FilterEq("구분별(1)", "서울시").
//	    Exclude("종류별", "소계", "기타").
//	    CoerceNumeric("백분율")
//	if t.Err != nil {
//	    return err
//	}
//
// # Loading
//
// CSV files are read as UTF-8 with an optional byte order mark. XLSX files
// are read from their first worksheet using stored cell values. Rows
// shorter than the header are padded with missing cells and blank rows are
// skipped.
//
// # Reshaping
//
// Melt produces rows value column major (all rows of the first value column,
// then the second). Transpose turns the header into the first column and
// returns a string table, so callers coerce the columns they need.
package dataprocessing
