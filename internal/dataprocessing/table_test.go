package dataprocessing

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return FromRecords([][]string{
		{"구분별(1)", "종류별(2)", "2011"},
		{"서울시", "소계", "100"},
		{"서울시", "자녀 양육의 경제적 부담", "1,234"},
		{"서울시", "기타", "3"},
		{"부산시", "일자리", "12.5"},
		{"서울시", "일자리", "n/a"},
		{"서울시", "", "7"},
	})
}

func TestFromRecords(t *testing.T) {
	tests := []struct {
		name     string
		records  [][]string
		wantErr  bool
		wantCols []string
		wantRows int
	}{
		{
			name:     "pads ragged rows",
			records:  [][]string{{"a", "b", "c"}, {"1"}, {"2", "3", "4"}},
			wantCols: []string{"a", "b", "c"},
			wantRows: 2,
		},
		{
			name:     "trims header and drops trailing blank header cells",
			records:  [][]string{{" a ", "\uFEFFb", ""}, {"1", "2", "x"}},
			wantCols: []string{"a", "b"},
			wantRows: 1,
		},
		{
			name:     "header only",
			records:  [][]string{{"a", "b"}},
			wantCols: []string{"a", "b"},
			wantRows: 0,
		},
		{
			name:    "no records",
			records: nil,
			wantErr: true,
		},
		{
			name:    "blank header",
			records: [][]string{{"", ""}, {"1", "2"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := FromRecords(tt.records)
			if tt.wantErr {
				assert.Error(t, tbl.Err)
				return
			}
			require.NoError(t, tbl.Err)
			assert.Equal(t, tt.wantCols, tbl.Names())
			assert.Equal(t, tt.wantRows, tbl.Nrow())
		})
	}
}

func TestMissingCells(t *testing.T) {
	tbl := FromRecords([][]string{{"a", "b"}, {"", "NA"}, {"x", "NaN"}})
	require.NoError(t, tbl.Err)

	a, err := tbl.Strings("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"", "x"}, a)

	b, err := tbl.Strings("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"", ""}, b)
}

func TestFilterEqAndExclude(t *testing.T) {
	tbl := sampleTable().
		FilterEq("구분별(1)", "서울시").
		Exclude("종류별(2)", "소계", "기타")
	require.NoError(t, tbl.Err)

	kinds, err := tbl.Strings("종류별(2)")
	require.NoError(t, err)
	// The missing kind survives Exclude
	assert.Equal(t, []string{"자녀 양육의 경제적 부담", "일자리", ""}, kinds)
}

func TestFilterEqNoMatch(t *testing.T) {
	tbl := sampleTable().FilterEq("구분별(1)", "대구시")
	require.NoError(t, tbl.Err)
	assert.Equal(t, 0, tbl.Nrow())
	assert.Equal(t, []string{"구분별(1)", "종류별(2)", "2011"}, tbl.Names())
}

func TestUnknownColumn(t *testing.T) {
	ops := map[string]func(Table) Table{
		"filter":  func(t Table) Table { return t.FilterEq("nope", "x") },
		"exclude": func(t Table) Table { return t.Exclude("nope", "x") },
		"rename":  func(t Table) Table { return t.Rename(map[string]string{"nope": "x"}) },
		"drop":    func(t Table) Table { return t.Drop("nope") },
		"coerce":  func(t Table) Table { return t.CoerceNumeric("nope") },
		"replace": func(t Table) Table { return t.Replace("nope", "a", "b") },
		"melt":    func(t Table) Table { return t.Melt("nope", []string{"2011"}, "v", "n") },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			tbl := op(sampleTable())
			require.Error(t, tbl.Err)
			assert.ErrorIs(t, tbl.Err, ErrColumnNotFound)
			assert.Contains(t, tbl.Err.Error(), "nope")
		})
	}
}

func TestErrorShortCircuits(t *testing.T) {
	tbl := sampleTable().Drop("nope").FilterEq("구분별(1)", "서울시").Head(1)
	require.Error(t, tbl.Err)
	assert.True(t, strings.HasPrefix(tbl.Err.Error(), "drop:"))
	assert.Equal(t, 0, tbl.Nrow())
	assert.Nil(t, tbl.Names())
}

func TestRenameAndDrop(t *testing.T) {
	tbl := sampleTable().
		Rename(map[string]string{"2011": "백분율", "종류별(2)": "종류별"}).
		Drop("구분별(1)")
	require.NoError(t, tbl.Err)
	assert.Equal(t, []string{"종류별", "백분율"}, tbl.Names())
}

func TestDropEveryColumn(t *testing.T) {
	tbl := FromRecords([][]string{{"a"}, {"1"}}).Drop("a")
	assert.Error(t, tbl.Err)
}

func TestSelect(t *testing.T) {
	tbl := sampleTable().Select("2011", "구분별(1)")
	require.NoError(t, tbl.Err)
	assert.Equal(t, []string{"2011", "구분별(1)"}, tbl.Names())
}

func TestHead(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{n: 2, want: 2},
		{n: 6, want: 6},
		{n: 60, want: 6},
		{n: 0, want: 0},
		{n: -1, want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sampleTable().Head(tt.n).Nrow(), "head(%d)", tt.n)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"1,234", 1234, true},
		{" 12.5 ", 12.5, true},
		{"1,234,567.25", 1234567.25, true},
		{"-0.3", -0.3, true},
		{"n/a", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"12%", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCoerceNumeric(t *testing.T) {
	tbl := sampleTable().CoerceNumeric("2011")
	require.NoError(t, tbl.Err)

	values, err := tbl.Floats("2011")
	require.NoError(t, err)
	require.Len(t, values, 6)
	assert.Equal(t, 100.0, values[0])
	assert.Equal(t, 1234.0, values[1])
	assert.Equal(t, 12.5, values[3])
	assert.True(t, math.IsNaN(values[4]), "invalid text becomes missing")

	// Coercing twice is a no-op
	again := tbl.CoerceNumeric("2011")
	require.NoError(t, again.Err)
	assert.Equal(t, tbl.Records(), again.Records())
}

func TestReplace(t *testing.T) {
	tbl := sampleTable().Replace("종류별(2)", "자녀 양육의 경제적 부담", "경제적부담")
	require.NoError(t, tbl.Err)

	kinds, err := tbl.Strings("종류별(2)")
	require.NoError(t, err)
	assert.Equal(t, "경제적부담", kinds[1])
	assert.Equal(t, "", kinds[5], "missing stays missing")
}

func TestFillNA(t *testing.T) {
	tbl := FromRecords([][]string{
		{"월급 분류", "2020", "2021"},
		{"200만원 미만", "10", ""},
		{"", "20", "30"},
	}).CoerceNumeric("2020").FillNA("0")
	require.NoError(t, tbl.Err)

	assert.Equal(t, [][]string{
		{"월급 분류", "2020", "2021"},
		{"200만원 미만", "10", "0"},
		{"0", "20", "30"},
	}, tbl.Records())
}

func TestMelt(t *testing.T) {
	tbl := FromRecords([][]string{
		{"월급 분류", "2021", "2020", "비고"},
		{"A", "1", "2", "x"},
		{"B", "3", "", "y"},
	}).Melt("월급 분류", []string{"2020", "2021"}, "년도", "금액")
	require.NoError(t, tbl.Err)

	assert.Equal(t, [][]string{
		{"월급 분류", "년도", "금액"},
		{"A", "2020", "2"},
		{"B", "2020", ""},
		{"A", "2021", "1"},
		{"B", "2021", "3"},
	}, tbl.Records())
}

func TestTranspose(t *testing.T) {
	tbl := FromRecords([][]string{
		{"인구구조", "2020", "2021", "2022"},
		{"총인구(명)", "51,836,239", "51,744,876", ""},
	}).Transpose("년도")
	require.NoError(t, tbl.Err)

	assert.Equal(t, [][]string{
		{"년도", "0"},
		{"인구구조", "총인구(명)"},
		{"2020", "51,836,239"},
		{"2021", "51,744,876"},
		{"2022", ""},
	}, tbl.Records())
}

func TestTransposeFloatColumn(t *testing.T) {
	tbl := FromRecords([][]string{{"k", "v"}, {"a", "1.5"}}).CoerceNumeric("v").Transpose("h")
	require.NoError(t, tbl.Err)
	assert.Equal(t, [][]string{{"h", "0"}, {"k", "a"}, {"v", "1.5"}}, tbl.Records())
}

func TestSortBy(t *testing.T) {
	tbl := FromRecords([][]string{
		{"k", "v"},
		{"a", "3"},
		{"b", "x"},
		{"c", "1"},
		{"d", "3"},
		{"e", "2"},
	}).CoerceNumeric("v")

	asc := tbl.SortBy("v", true)
	require.NoError(t, asc.Err)
	keys, _ := asc.Strings("k")
	assert.Equal(t, []string{"c", "e", "a", "d", "b"}, keys)

	desc := tbl.SortBy("v", false)
	require.NoError(t, desc.Err)
	keys, _ = desc.Strings("k")
	assert.Equal(t, []string{"a", "d", "e", "c", "b"}, keys)

	assert.Error(t, FromRecords([][]string{{"k"}, {"a"}}).SortBy("k", true).Err)
}

func TestFloatsOnTextColumn(t *testing.T) {
	values, err := sampleTable().Floats("2011")
	require.NoError(t, err)
	assert.Equal(t, 1234.0, values[1])
	assert.True(t, math.IsNaN(values[4]))
}

func TestOperationsDoNotMutateReceiver(t *testing.T) {
	base := sampleTable()
	before := base.Records()

	_ = base.Replace("종류별(2)", "기타", "other").CoerceNumeric("2011").FillNA("0").Drop("구분별(1)")

	assert.Equal(t, before, base.Records())
}
