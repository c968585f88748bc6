package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"popdash/internal/charts"
)

// Export formats
const (
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatCSV  = "csv"
)

// FileOptions selects what Files.Export writes
type FileOptions struct {
	PNG    bool
	CSV    bool
	Width  int
	Height int
}

// Files writes built charts into an output directory as <id>.json and,
// when enabled, <id>.png and <id>.csv.
type Files struct {
	outDir   string
	csv      *CSVWriter
	renderer *PNGRenderer
	logger   *slog.Logger
}

// NewFiles creates a file exporter writing into outDir
func NewFiles(outDir string, logger *slog.Logger) *Files {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "exporter"))
	return &Files{
		outDir:   outDir,
		csv:      NewCSVWriter(outDir, logger),
		renderer: NewPNGRenderer(logger),
		logger:   logger,
	}
}

// Export writes result for chart id and returns the written paths
func (f *Files) Export(ctx context.Context, id string, result *charts.Result, opts FileOptions) ([]string, error) {
	if result == nil || result.Figure == nil {
		return nil, fmt.Errorf("export %s: no figure", id)
	}
	if opts.PNG {
		if err := ValidateSize(opts.Width, opts.Height); err != nil {
			return nil, err
		}
	}

	var written []string

	data, err := result.Figure.JSON()
	if err != nil {
		return written, err
	}
	jsonPath := f.path(id, FormatJSON)
	if err := writeFileAtomic(jsonPath, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}); err != nil {
		return written, fmt.Errorf("write %s: %w", jsonPath, err)
	}
	written = append(written, jsonPath)

	if opts.PNG {
		pngPath := f.path(id, FormatPNG)
		if err := writeFileAtomic(pngPath, func(w io.Writer) error {
			return f.renderer.Render(ctx, w, result.Figure, opts.Width, opts.Height)
		}); err != nil {
			return written, fmt.Errorf("write %s: %w", pngPath, err)
		}
		written = append(written, pngPath)
	}

	if opts.CSV && result.Table != nil {
		csvPath := f.path(id, FormatCSV)
		if err := f.csv.WriteTable(csvPath, result.Table.Records()); err != nil {
			return written, fmt.Errorf("write %s: %w", csvPath, err)
		}
		written = append(written, csvPath)
	}

	f.logger.InfoContext(ctx, "chart exported",
		slog.String("chart", id),
		slog.Any("files", written))
	return written, nil
}

func (f *Files) path(id, format string) string {
	return filepath.Join(f.outDir, id+"."+format)
}
