package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths(t *testing.T) {
	base := t.TempDir()

	t.Run("relative names resolve under data dir", func(t *testing.T) {
		cfg := Default().Paths
		cfg.BaseDir = base

		paths, err := ResolvePaths(cfg)
		require.NoError(t, err)

		assert.Equal(t, base, paths.BaseDir)
		assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
		assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir)
		assert.Equal(t, filepath.Join(base, "data", "저출산_문제.csv"), paths.ReasonsCSV)
		assert.Equal(t, filepath.Join(base, "data", "연령구분비율.xlsx"), paths.AgeCompositionXLSX)
	})

	t.Run("absolute data dir and file are kept", func(t *testing.T) {
		cfg := Default().Paths
		cfg.BaseDir = base
		cfg.DataDir = filepath.Join(base, "elsewhere")
		cfg.PopulationCSV = filepath.Join(base, "pop.csv")

		paths, err := ResolvePaths(cfg)
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(base, "elsewhere"), paths.DataDir)
		assert.Equal(t, filepath.Join(base, "pop.csv"), paths.PopulationCSV)
		assert.Equal(t, filepath.Join(base, "elsewhere", "합계출산율.xlsx"), paths.BirthRateXLSX)
	})

	t.Run("empty base dir uses working directory", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)

		paths, err := ResolvePaths(Default().Paths)
		require.NoError(t, err)
		assert.Equal(t, wd, paths.BaseDir)
	})
}

func TestSourceFilesOrder(t *testing.T) {
	cfg := Default().Paths
	cfg.BaseDir = t.TempDir()
	paths, err := ResolvePaths(cfg)
	require.NoError(t, err)

	var names []string
	for _, src := range paths.SourceFiles() {
		names = append(names, src.Name)
	}

	assert.Equal(t, []string{
		"저출산_문제.csv",
		"합계출산율.xlsx",
		"우리나라_노인인구.xlsx",
		"연령구분비율.xlsx",
		"월급과연도별_사교육비용_추이.xlsx",
		"주요_인구지표_성비_인구성장률_인구구조_부양비_등_전국.csv",
	}, names)
}

func TestEnsureDirectoriesAndValidate(t *testing.T) {
	cfg := Default().Paths
	cfg.BaseDir = t.TempDir()
	paths, err := ResolvePaths(cfg)
	require.NoError(t, err)

	require.NoError(t, paths.EnsureDirectories())
	assert.DirExists(t, paths.DataDir)
	assert.DirExists(t, paths.LogsDir)

	err = paths.ValidateSourceFiles()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "저출산_문제.csv")

	for _, src := range paths.SourceFiles() {
		require.NoError(t, os.WriteFile(src.Path, []byte("x"), 0644))
	}
	assert.NoError(t, paths.ValidateSourceFiles())
	assert.True(t, FileExists(paths.ReasonsCSV))
	assert.False(t, FileExists(paths.DataDir))
}
