package testutil

import (
	"fmt"
	"os"
	"testing"

	"popdash/internal/config"
)

// SourceSet writes a small, valid copy of every dashboard source file
// under dir/data and returns the resolved paths.
func SourceSet(t *testing.T, dir string) *config.Paths {
	t.Helper()

	cfg := config.Default().Paths
	cfg.BaseDir = dir
	paths, err := config.ResolvePaths(cfg)
	if err != nil {
		t.Fatalf("resolve fixture paths: %v", err)
	}
	if err := os.MkdirAll(paths.DataDir, 0755); err != nil {
		t.Fatalf("create data dir: %v", err)
	}

	WriteCSV(t, paths.DataDir, cfg.ReasonsCSV, [][]string{
		{"종류별(1)", "종류별(2)", "구분별(1)", "구분별(2)", "2011"},
		{"출산 포기", "소계", "서울시", "소계", "100"},
		{"출산 포기", "자녀 양육의 경제적 부담", "서울시", "소계", "1,234"},
		{"출산 포기", "일과 가정 양립 곤란", "서울시", "소계", "20.5"},
		{"출산 포기", "기타", "서울시", "소계", "3"},
	}, true)

	birthRate := [][]string{
		{"통계표명:", "합계출산율"},
		{"단위:", "명"},
	}
	for i := 0; i < 10; i++ {
		birthRate = append(birthRate, []string{fmt.Sprint(2010 + i), fmt.Sprintf("%.2f", 1.3-float64(i)*0.05)})
	}
	WriteXLSX(t, paths.DataDir, cfg.BirthRateXLSX, birthRate)

	senior := [][]string{{"년도", "노인인구 비율(%)"}}
	for i := 0; i < 5; i++ {
		senior = append(senior, []string{fmt.Sprint(2015 + i), fmt.Sprintf("%.1f", 13.0+float64(i)*0.6)})
	}
	WriteXLSX(t, paths.DataDir, cfg.SeniorRatioXLSX, senior)

	WriteXLSX(t, paths.DataDir, cfg.AgeCompositionXLSX, [][]string{
		{"인구 구분", "2070년 예상 비율"},
		{"어린이", "7.5"},
		{"청년", "46.1"},
		{"노인 인구", "46.4"},
	})

	WriteXLSX(t, paths.DataDir, cfg.TutoringCostXLSX, [][]string{
		{"월급 분류", "2020", "2021", "2022"},
		{"200만원 미만", "10", "11", "12"},
		{"800만원 이상", "50", "55", "60"},
	})

	WriteCSV(t, paths.DataDir, cfg.PopulationCSV, [][]string{
		{"가정별", "인구구조,부양비별", "2020", "2021", "2022"},
		{"중위", "총인구(명)", "51,836,239", "51,744,876", "51,672,400"},
		{"중위", "성비(여자1백명당)", "100.4", "100.3", "100.2"},
	}, true)

	return paths
}
