package dataprocessing

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrColumnNotFound is returned when an operation names a missing column.
var ErrColumnNotFound = errors.New("column not found")

// Table is a gota DataFrame with the operations the chart routines need.
// Like DataFrame it carries its error: once Err is set every operation
// returns the table unchanged, so pipelines check Err once at the end.
type Table struct {
	df  dataframe.DataFrame
	Err error
}

// FromRecords builds a string table from a header row followed by data
// rows. Rows shorter than the header are padded with missing cells; empty
// cells and NA markers are missing.
func FromRecords(records [][]string) Table {
	if len(records) == 0 {
		return Table{Err: fmt.Errorf("load records: no header row")}
	}

	header := normalizeHeader(records[0])
	if len(header) == 0 {
		return Table{Err: fmt.Errorf("load records: empty header row")}
	}

	columns := make([][]string, len(header))
	for i := range columns {
		columns[i] = make([]string, 0, len(records)-1)
	}
	for _, row := range records[1:] {
		for i := range header {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			columns[i] = append(columns[i], normalizeCell(cell))
		}
	}

	cols := make([]series.Series, len(header))
	for i, name := range header {
		cols[i] = series.New(columns[i], series.String, name)
	}
	return fromSeries(cols)
}

// fromSeries builds a table from equally long columns.
func fromSeries(cols []series.Series) Table {
	df := dataframe.New(cols...)
	if df.Err != nil {
		return Table{Err: fmt.Errorf("build table: %w", df.Err)}
	}
	return Table{df: df}
}

func normalizeHeader(row []string) []string {
	// Trailing empty header cells are excel formatting residue
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}
	header := make([]string, end)
	for i := 0; i < end; i++ {
		header[i] = strings.TrimSpace(strings.TrimPrefix(row[i], "\uFEFF"))
	}
	return header
}

var missingMarkers = map[string]bool{"": true, "NA": true, "NaN": true, "nan": true, "<nil>": true}

func normalizeCell(cell string) string {
	if missingMarkers[strings.TrimSpace(cell)] {
		return "NaN"
	}
	return cell
}

// DataFrame exposes the underlying gota frame.
func (t Table) DataFrame() dataframe.DataFrame {
	return t.df
}

// Names returns the column names in order.
func (t Table) Names() []string {
	if t.Err != nil {
		return nil
	}
	return t.df.Names()
}

// Nrow returns the number of rows.
func (t Table) Nrow() int {
	if t.Err != nil {
		return 0
	}
	return t.df.Nrow()
}

// Ncol returns the number of columns.
func (t Table) Ncol() int {
	if t.Err != nil {
		return 0
	}
	return t.df.Ncol()
}

// HasColumn reports whether the table has a column named col.
func (t Table) HasColumn(col string) bool {
	for _, name := range t.Names() {
		if name == col {
			return true
		}
	}
	return false
}

func (t Table) column(col string) (series.Series, error) {
	if !t.HasColumn(col) {
		return series.Series{}, fmt.Errorf("%w: %s", ErrColumnNotFound, col)
	}
	return t.df.Col(col), nil
}

func (t Table) fail(op string, err error) Table {
	return Table{df: t.df, Err: fmt.Errorf("%s: %w", op, err)}
}

// subset keeps the rows at idx in order. An empty idx yields an empty table
// with the same columns.
func (t Table) subset(idx []int) Table {
	if len(idx) == 0 {
		cols := make([]series.Series, t.df.Ncol())
		for i, name := range t.df.Names() {
			cols[i] = series.New([]string{}, t.df.Col(name).Type(), name)
		}
		return fromSeries(cols)
	}
	df := t.df.Subset(idx)
	if df.Err != nil {
		return t.fail("subset", df.Err)
	}
	return Table{df: df}
}

// filter keeps rows for which keep returns true on the value of col.
func (t Table) filter(op, col string, keep func(value string, missing bool) bool) Table {
	if t.Err != nil {
		return t
	}
	s, err := t.column(col)
	if err != nil {
		return t.fail(op, err)
	}

	var idx []int
	for i := 0; i < s.Len(); i++ {
		el := s.Elem(i)
		if keep(el.String(), el.IsNA()) {
			idx = append(idx, i)
		}
	}
	return t.subset(idx)
}

// FilterEq keeps rows whose col equals v. Missing values never match.
func (t Table) FilterEq(col, v string) Table {
	return t.filter("filter", col, func(value string, missing bool) bool {
		return !missing && value == v
	})
}

// Exclude drops rows whose col is any of vs. Rows with a missing col are kept.
func (t Table) Exclude(col string, vs ...string) Table {
	drop := make(map[string]bool, len(vs))
	for _, v := range vs {
		drop[v] = true
	}
	return t.filter("exclude", col, func(value string, missing bool) bool {
		return missing || !drop[value]
	})
}

// Rename renames columns old to new. Pairs are applied in sorted order of
// the old names so the result never depends on map iteration.
func (t Table) Rename(names map[string]string) Table {
	if t.Err != nil {
		return t
	}

	olds := make([]string, 0, len(names))
	for old := range names {
		olds = append(olds, old)
	}
	sort.Strings(olds)

	df := t.df
	for _, old := range olds {
		if !t.HasColumn(old) {
			return t.fail("rename", fmt.Errorf("%w: %s", ErrColumnNotFound, old))
		}
		df = df.Rename(names[old], old)
		if df.Err != nil {
			return t.fail("rename", df.Err)
		}
	}
	return Table{df: df}
}

// Drop removes the named columns.
func (t Table) Drop(cols ...string) Table {
	if t.Err != nil || len(cols) == 0 {
		return t
	}
	for _, col := range cols {
		if !t.HasColumn(col) {
			return t.fail("drop", fmt.Errorf("%w: %s", ErrColumnNotFound, col))
		}
	}
	if len(cols) == t.df.Ncol() {
		return t.fail("drop", errors.New("cannot drop every column"))
	}
	df := t.df.Drop(cols)
	if df.Err != nil {
		return t.fail("drop", df.Err)
	}
	return Table{df: df}
}

// Select keeps only the named columns, in the given order.
func (t Table) Select(cols ...string) Table {
	if t.Err != nil {
		return t
	}
	for _, col := range cols {
		if !t.HasColumn(col) {
			return t.fail("select", fmt.Errorf("%w: %s", ErrColumnNotFound, col))
		}
	}
	df := t.df.Select(cols)
	if df.Err != nil {
		return t.fail("select", df.Err)
	}
	return Table{df: df}
}

// Head keeps the first n rows, or all rows when there are fewer.
func (t Table) Head(n int) Table {
	if t.Err != nil || n >= t.df.Nrow() {
		return t
	}
	if n < 0 {
		n = 0
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return t.subset(idx)
}

// Replace substitutes new for every cell of col exactly equal to old.
func (t Table) Replace(col, old, new string) Table {
	if t.Err != nil {
		return t
	}
	s, err := t.column(col)
	if err != nil {
		return t.fail("replace", err)
	}

	values := cellStrings(s)
	for i, v := range values {
		if v == old {
			values[i] = new
		}
	}
	return t.mutate("replace", series.New(values, s.Type(), col))
}

// CoerceNumeric converts col to a float column. Thousands separators and
// surrounding spaces are stripped; anything unparsable becomes missing.
func (t Table) CoerceNumeric(col string) Table {
	if t.Err != nil {
		return t
	}
	s, err := t.column(col)
	if err != nil {
		return t.fail("coerce", err)
	}
	if s.Type() == series.Float {
		return t
	}

	values := make([]string, s.Len())
	for i := range values {
		el := s.Elem(i)
		if el.IsNA() {
			values[i] = "NaN"
			continue
		}
		if f, ok := ParseNumber(el.String()); ok {
			values[i] = strconv.FormatFloat(f, 'f', -1, 64)
		} else {
			values[i] = "NaN"
		}
	}
	return t.mutate("coerce", series.New(values, series.Float, col))
}

// ParseNumber parses text such as " 1,234.5 " as a float. Infinite and NaN
// spellings are rejected.
func ParseNumber(text string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FillNA replaces missing values in every column with v. Float columns
// take v only when it parses as a number.
func (t Table) FillNA(v string) Table {
	if t.Err != nil {
		return t
	}

	out := t
	for _, name := range t.df.Names() {
		s := t.df.Col(name)
		values := cellStrings(s)
		changed := false
		for i := range values {
			if s.Elem(i).IsNA() {
				if s.Type() == series.Float {
					if _, ok := ParseNumber(v); !ok {
						continue
					}
				}
				values[i] = v
				changed = true
			}
		}
		if changed {
			out = out.mutate("fillna", series.New(values, s.Type(), name))
		}
	}
	return out
}

// Melt reshapes wide to long. Rows come out value column major, then source
// row: every row for valueCols[0] first, then valueCols[1], and so on.
func (t Table) Melt(idCol string, valueCols []string, varName, valueName string) Table {
	if t.Err != nil {
		return t
	}
	ids, err := t.column(idCol)
	if err != nil {
		return t.fail("melt", err)
	}

	idValues := cellStrings(ids)
	n := len(idValues) * len(valueCols)
	outIDs := make([]string, 0, n)
	outVars := make([]string, 0, n)
	outValues := make([]string, 0, n)

	for _, vc := range valueCols {
		s, err := t.column(vc)
		if err != nil {
			return t.fail("melt", err)
		}
		values := cellStrings(s)
		for i := range values {
			outIDs = append(outIDs, naToken(idValues[i], ids.Elem(i).IsNA()))
			outVars = append(outVars, vc)
			outValues = append(outValues, naToken(values[i], s.Elem(i).IsNA()))
		}
	}

	return fromSeries([]series.Series{
		series.New(outIDs, series.String, idCol),
		series.New(outVars, series.String, varName),
		series.New(outValues, series.String, valueName),
	})
}

// Transpose swaps rows and columns. The former header becomes the first
// column, named headerName; former rows become columns named "0", "1", ...
// The result is a string table.
func (t Table) Transpose(headerName string) Table {
	if t.Err != nil {
		return t
	}

	names := t.df.Names()
	nrow := t.df.Nrow()

	cols := make([]series.Series, 0, nrow+1)
	cols = append(cols, series.New(names, series.String, headerName))

	for r := 0; r < nrow; r++ {
		values := make([]string, len(names))
		for c, name := range names {
			el := t.df.Col(name).Elem(r)
			values[c] = naToken(elementString(el, t.df.Col(name).Type()), el.IsNA())
		}
		cols = append(cols, series.New(values, series.String, strconv.Itoa(r)))
	}
	return fromSeries(cols)
}

// SortBy stably sorts rows by the float column col. Missing values go last.
func (t Table) SortBy(col string, ascending bool) Table {
	if t.Err != nil {
		return t
	}
	s, err := t.column(col)
	if err != nil {
		return t.fail("sort", err)
	}
	if s.Type() != series.Float {
		return t.fail("sort", fmt.Errorf("column %s is not numeric", col))
	}

	values := s.Float()
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := values[idx[a]], values[idx[b]]
		if math.IsNaN(va) || math.IsNaN(vb) {
			return !math.IsNaN(va) && math.IsNaN(vb)
		}
		if ascending {
			return va < vb
		}
		return va > vb
	})
	return t.subset(idx)
}

// Strings returns the cells of col as text; missing cells are "".
func (t Table) Strings(col string) ([]string, error) {
	if t.Err != nil {
		return nil, t.Err
	}
	s, err := t.column(col)
	if err != nil {
		return nil, err
	}
	values := cellStrings(s)
	for i := range values {
		if s.Elem(i).IsNA() {
			values[i] = ""
		}
	}
	return values, nil
}

// Floats returns col as floats; missing or non-numeric cells are NaN.
func (t Table) Floats(col string) ([]float64, error) {
	if t.Err != nil {
		return nil, t.Err
	}
	s, err := t.column(col)
	if err != nil {
		return nil, err
	}
	if s.Type() == series.Float {
		return s.Float(), nil
	}

	out := make([]float64, s.Len())
	for i := range out {
		el := s.Elem(i)
		f, ok := ParseNumber(el.String())
		if el.IsNA() || !ok {
			f = math.NaN()
		}
		out[i] = f
	}
	return out, nil
}

// Records returns the header followed by every row as text. Floats use the
// shortest exact form and missing cells are "".
func (t Table) Records() [][]string {
	if t.Err != nil {
		return nil
	}
	names := t.df.Names()
	out := make([][]string, 0, t.df.Nrow()+1)
	out = append(out, append([]string(nil), names...))

	cols := make([][]string, len(names))
	for c, name := range names {
		s := t.df.Col(name)
		cols[c] = cellStrings(s)
		for r := range cols[c] {
			if s.Elem(r).IsNA() {
				cols[c][r] = ""
			}
		}
	}
	for r := 0; r < t.df.Nrow(); r++ {
		row := make([]string, len(names))
		for c := range names {
			row[c] = cols[c][r]
		}
		out = append(out, row)
	}
	return out
}

func (t Table) mutate(op string, s series.Series) Table {
	if t.Err != nil {
		return t
	}
	df := t.df.Mutate(s)
	if df.Err != nil {
		return t.fail(op, df.Err)
	}
	return Table{df: df}
}

// cellStrings renders every element of s as text that series.New parses
// back to the same value.
func cellStrings(s series.Series) []string {
	out := make([]string, s.Len())
	for i := range out {
		el := s.Elem(i)
		if el.IsNA() {
			out[i] = "NaN"
			continue
		}
		out[i] = elementString(el, s.Type())
	}
	return out
}

func elementString(el series.Element, typ series.Type) string {
	if typ == series.Float {
		f := el.Float()
		if math.IsNaN(f) {
			return "NaN"
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return el.String()
}

func naToken(v string, missing bool) string {
	if missing {
		return "NaN"
	}
	return v
}
