package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// SourceFile is one named input file of the dashboard.
type SourceFile struct {
	Name string
	Path string
}

// Paths contains the resolved, absolute application paths.
type Paths struct {
	BaseDir string
	DataDir string
	LogsDir string

	ReasonsCSV         string
	BirthRateXLSX      string
	SeniorRatioXLSX    string
	AgeCompositionXLSX string
	TutoringCostXLSX   string
	PopulationCSV      string
}

// ResolvePaths turns the configured names into absolute paths. Source file
// names are joined to the data directory unless already absolute.
func ResolvePaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(base, dataDir)
	}

	source := func(name string) string {
		if filepath.IsAbs(name) {
			return filepath.Clean(name)
		}
		return filepath.Join(dataDir, name)
	}

	return &Paths{
		BaseDir:            base,
		DataDir:            dataDir,
		LogsDir:            filepath.Join(base, DefaultLogsDir),
		ReasonsCSV:         source(cfg.ReasonsCSV),
		BirthRateXLSX:      source(cfg.BirthRateXLSX),
		SeniorRatioXLSX:    source(cfg.SeniorRatioXLSX),
		AgeCompositionXLSX: source(cfg.AgeCompositionXLSX),
		TutoringCostXLSX:   source(cfg.TutoringCostXLSX),
		PopulationCSV:      source(cfg.PopulationCSV),
	}, nil
}

// SourceFiles lists the six input files in dashboard order.
func (p *Paths) SourceFiles() []SourceFile {
	return []SourceFile{
		{Name: filepath.Base(p.ReasonsCSV), Path: p.ReasonsCSV},
		{Name: filepath.Base(p.BirthRateXLSX), Path: p.BirthRateXLSX},
		{Name: filepath.Base(p.SeniorRatioXLSX), Path: p.SeniorRatioXLSX},
		{Name: filepath.Base(p.AgeCompositionXLSX), Path: p.AgeCompositionXLSX},
		{Name: filepath.Base(p.TutoringCostXLSX), Path: p.TutoringCostXLSX},
		{Name: filepath.Base(p.PopulationCSV), Path: p.PopulationCSV},
	}
}

// EnsureDirectories creates the data and log directories if missing.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// LogPathResolution logs the resolved paths for debugging.
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	attrs := make([]any, 0, 6)
	for _, src := range p.SourceFiles() {
		attrs = append(attrs, slog.Bool(src.Name, FileExists(src.Path)))
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("sources_present", attrs...))
}

// ValidateSourceFiles returns an error naming every missing source file.
func (p *Paths) ValidateSourceFiles() error {
	var missing []string
	for _, src := range p.SourceFiles() {
		if !FileExists(src.Path) {
			missing = append(missing, src.Path)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%s: %s", ErrMsgSourceNotFound, strings.Join(missing, ", "))
	}

	return nil
}
