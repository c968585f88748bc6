package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"popdash/internal/charts"
	"popdash/internal/config"
	api "popdash/pkg/contracts/api/v1"
)

// SourceService reports the state of the dashboard source files
type SourceService struct {
	paths    *config.Paths
	registry *charts.Registry
	logger   *slog.Logger
}

// NewSourceService creates a source service
func NewSourceService(paths *config.Paths, registry *charts.Registry, logger *slog.Logger) *SourceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceService{
		paths:    paths,
		registry: registry,
		logger:   logger.With(slog.String("component", "source_service")),
	}
}

// List returns every source file in dashboard order
func (s *SourceService) List(ctx context.Context) (api.SourceListResponse, error) {
	files := s.paths.SourceFiles()
	resp := api.SourceListResponse{Sources: make([]api.SourceInfo, 0, len(files))}

	for _, src := range files {
		if err := ctx.Err(); err != nil {
			return api.SourceListResponse{}, err
		}
		info, err := s.describe(src)
		if err != nil {
			return api.SourceListResponse{}, err
		}
		if !info.Present {
			resp.Missing++
		}
		resp.Sources = append(resp.Sources, info)
	}

	if resp.Missing > 0 {
		s.logger.WarnContext(ctx, "source files missing", slog.Int("missing", resp.Missing))
	}
	return resp, nil
}

// Get returns one source file by base name
func (s *SourceService) Get(ctx context.Context, name string) (api.SourceInfo, error) {
	for _, src := range s.paths.SourceFiles() {
		if src.Name == name {
			return s.describe(src)
		}
	}
	return api.SourceInfo{}, fmt.Errorf("%w: %s", ErrSourceNotFound, name)
}

func (s *SourceService) describe(src config.SourceFile) (api.SourceInfo, error) {
	info := api.SourceInfo{
		Name:   src.Name,
		Path:   src.Path,
		Charts: s.chartsFor(src.Path),
	}

	stat, err := os.Stat(src.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return info, nil
	case err != nil:
		return info, fmt.Errorf("stat %s: %w", src.Name, err)
	case stat.IsDir():
		return info, nil
	}

	modified := stat.ModTime().UTC()
	info.Present = true
	info.Size = stat.Size()
	info.Modified = &modified
	return info, nil
}

func (s *SourceService) chartsFor(path string) []string {
	ids := []string{}
	if s.registry == nil {
		return ids
	}
	for _, r := range s.registry.BySource(filepath.Clean(path)) {
		ids = append(ids, r.ID())
	}
	return ids
}
