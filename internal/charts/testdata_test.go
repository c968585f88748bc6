package charts

import (
	"fmt"
	"log/slog"
	"testing"

	"popdash/internal/shared/testutil"
)

func reasonsRecords() [][]string {
	return [][]string{
		{"종류별(1)", "종류별(2)", "구분별(1)", "구분별(2)", "2011"},
		{"출산 포기", "소계", "서울시", "소계", "100"},
		{"출산 포기", "자녀 양육의 경제적 부담", "서울시", "소계", "1,234"},
		{"출산 포기", "일과 가정 양립 곤란", "서울시", "소계", "20.5"},
		{"출산 포기", "기타", "서울시", "소계", "3"},
		{"출산 포기", "건강", "서울시", "소계", "-"},
		{"출산 포기", "일과 가정 양립 곤란", "부산시", "소계", "31"},
	}
}

// birthRateRecords returns a unit row, a repeated header row and years
// data rows starting at 1970.
func birthRateRecords(years int) [][]string {
	records := [][]string{
		{"통계표명:", "합계출산율"},
		{"단위:", "명"},
		{"통계표명:", "합계출산율"},
	}
	for i := 0; i < years; i++ {
		records = append(records, []string{fmt.Sprint(1970 + i), fmt.Sprintf("%.2f", 4.5-float64(i)*0.06)})
	}
	return records
}

func seniorRecords(years int) [][]string {
	records := [][]string{{"년도", "노인인구 비율(%)", "노인인구(명)"}}
	for i := 0; i < years; i++ {
		records = append(records, []string{fmt.Sprint(2000 + i), fmt.Sprintf("%.1f", 7.2+float64(i)*0.5), "1000"})
	}
	return records
}

func ageRecords() [][]string {
	return [][]string{
		{"인구 구분", "2070년 예상 비율"},
		{"어린이", "7.5"},
		{"청년", "46.1"},
		{"노인 인구", "46.4"},
	}
}

func tutoringRecords(years ...string) [][]string {
	header := append([]string{"월급 분류"}, years...)
	rows := [][]string{header}
	for i, income := range []string{"200만원 미만", "200~300만원", "800만원 이상"} {
		row := []string{income}
		for j := range years {
			row = append(row, fmt.Sprint(10*(i+1)+j))
		}
		rows = append(rows, row)
	}
	return rows
}

func populationRecords() [][]string {
	return [][]string{
		{"가정별", "인구구조,부양비별", "2020", "2021", "2022", "2023"},
		{"중위", "총인구(명)", "51,836,239", "51,744,876", "51,672,400", "51,712,619"},
		{"중위", "0-14세(명)", "6,306,054", "6,087,386", "5,869,588", "5,622,564"},
		{"중위", "성비(여자1백명당)", "100.4", "100.3", "100.2", "100.2"},
	}
}

func writeCSV(t *testing.T, records [][]string) string {
	t.Helper()
	return testutil.WriteCSV(t, t.TempDir(), "source.csv", records, true)
}

func writeXLSX(t *testing.T, records [][]string) string {
	t.Helper()
	return testutil.WriteXLSX(t, t.TempDir(), "source.xlsx", records)
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return logger
}
