package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync/atomic"
	"syscall"

	"golang.org/x/sync/errgroup"

	"popdash/internal/charts"
	"popdash/internal/config"
	apperrors "popdash/internal/errors"
	"popdash/internal/exporter"
	"popdash/internal/infrastructure"
	"popdash/internal/services"
	"popdash/internal/validation"
)

// options are the command line flags
type options struct {
	Charts     []string
	OutDir     string
	PNG        bool
	CSV        bool
	Width      int
	Height     int
	ConfigFile string
}

func main() {
	chartList := flag.String("chart", "", "comma separated chart ids to render (defaults to every chart)")
	outDir := flag.String("out", "output", "output directory for figure, PNG and CSV files")
	withPNG := flag.Bool("png", true, "also render <id>.png")
	withCSV := flag.Bool("csv", true, "also write the chart table as <id>.csv")
	width := flag.Int("width", 0, "PNG width in pixels (defaults to charts.image_width)")
	height := flag.Int("height", 0, "PNG height in pixels (defaults to charts.image_height)")
	configFile := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	opts := options{
		Charts:     splitList(*chartList),
		OutDir:     *outDir,
		PNG:        *withPNG,
		CSV:        *withCSV,
		Width:      *width,
		Height:     *height,
		ConfigFile: *configFile,
	}

	cfg, err := loadConfig(opts.ConfigFile)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, logger); err != nil {
		logger.Error("Render failed", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

func loadConfig(file string) (*config.Config, error) {
	if file == "" {
		return config.Load()
	}
	return config.LoadFrom(file)
}

// run builds the selected charts and writes them into opts.OutDir. Charts
// that carry a notice or have no rows are logged and skipped; any other
// failure makes run return an error after every chart was tried.
func run(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger) error {
	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return fmt.Errorf("resolve paths: %w", err)
	}

	validator := validation.NewFileValidator(logger)
	if _, err := validator.ValidateDataDirectory(paths.DataDir); err != nil {
		return err
	}
	if err := validator.ValidateOutputDirectory(opts.OutDir); err != nil {
		return err
	}

	if opts.Width == 0 {
		opts.Width = cfg.Charts.ImageWidth
	}
	if opts.Height == 0 {
		opts.Height = cfg.Charts.ImageHeight
	}
	if opts.PNG {
		if err := exporter.ValidateSize(opts.Width, opts.Height); err != nil {
			return err
		}
	}

	registry := charts.NewDefaultRegistry(paths, cfg.Charts, logger)
	ids := opts.Charts
	if len(ids) == 0 {
		ids = registry.IDs()
	}
	for _, id := range ids {
		if _, ok := registry.Get(id); !ok {
			return fmt.Errorf("unknown chart %q (known: %s)", id, strings.Join(registry.IDs(), ", "))
		}
	}

	service := services.NewChartService(registry, nil, nil, logger)
	files := exporter.NewFiles(opts.OutDir, logger)
	fileOpts := exporter.FileOptions{PNG: opts.PNG, CSV: opts.CSV, Width: opts.Width, Height: opts.Height}

	var failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, id := range ids {
		g.Go(func() error {
			if err := renderChart(gctx, service, files, id, fileOpts, logger); err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failed.Add(1)
				logger.ErrorContext(gctx, "Chart failed",
					slog.String("chart", id),
					slog.String("error", err.Error()))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d charts failed", n, len(ids))
	}
	logger.InfoContext(ctx, "Render complete",
		slog.Int("charts", len(ids)),
		slog.String("out", opts.OutDir))
	return nil
}

// renderChart builds and exports one chart. Notices, empty tables and
// figures the PNG renderer cannot draw are not failures.
func renderChart(ctx context.Context, service *services.ChartService, files *exporter.Files, id string, opts exporter.FileOptions, logger *slog.Logger) error {
	log := infrastructure.WithChart(logger, id)

	result, err := service.Build(ctx, id)
	var notice apperrors.Notice
	switch {
	case errors.As(err, &notice):
		log.WarnContext(ctx, "Chart skipped", slog.String("notice", notice.Notice()))
		return nil
	case errors.Is(err, charts.ErrEmptyTable):
		log.WarnContext(ctx, "Chart skipped, no rows")
		return nil
	case err != nil:
		return err
	}

	written, err := files.Export(ctx, id, result, opts)
	if errors.Is(err, exporter.ErrUnsupportedFigure) {
		log.WarnContext(ctx, "PNG not rendered for this figure", slog.Any("files", written))
		if opts.CSV {
			opts.PNG = false
			_, err = files.Export(ctx, id, result, opts)
		} else {
			err = nil
		}
	}
	return err
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
