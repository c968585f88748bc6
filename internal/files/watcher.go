package files

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"popdash/internal/infrastructure"
)

// DefaultPollInterval is used when the configured interval is not positive.
const DefaultPollInterval = 5 * time.Second

// ChangeFunc is called once per changed file, on the watcher goroutine.
type ChangeFunc func(ctx context.Context, change FileInfo)

// Watcher polls source files and reports changes of presence, size or
// modification time.
type Watcher struct {
	paths    []string
	interval time.Duration
	onChange ChangeFunc
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger

	mu    sync.Mutex
	state map[string]FileInfo
}

// NewWatcher creates a watcher over paths. metrics may be nil.
func NewWatcher(paths []string, interval time.Duration, onChange ChangeFunc, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	clean := make([]string, len(paths))
	for i, p := range paths {
		clean[i] = filepath.Clean(p)
	}
	return &Watcher{
		paths:    clean,
		interval: interval,
		onChange: onChange,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "file_watcher")),
	}
}

// Snapshot records the current state of every path without reporting
// changes. Poll compares against the last snapshot.
func (w *Watcher) Snapshot() []FileInfo {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.state = make(map[string]FileInfo, len(w.paths))
	out := make([]FileInfo, 0, len(w.paths))
	for _, p := range w.paths {
		info, err := Stat(p)
		if err != nil {
			w.logger.Warn("stat failed", slog.String("path", p), slog.String("error", err.Error()))
		}
		w.state[p] = info
		out = append(out, info)
	}
	return out
}

// Poll checks every path once and returns the files that changed since the
// previous Poll or Snapshot. onChange is called for each of them.
func (w *Watcher) Poll(ctx context.Context) []FileInfo {
	w.mu.Lock()
	if w.state == nil {
		w.mu.Unlock()
		w.Snapshot()
		return nil
	}

	var changed []FileInfo
	for _, p := range w.paths {
		info, err := Stat(p)
		if err != nil {
			w.logger.WarnContext(ctx, "stat failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		if info.Changed(w.state[p]) {
			changed = append(changed, info)
		}
		w.state[p] = info
	}
	w.mu.Unlock()

	for _, info := range changed {
		w.logger.InfoContext(ctx, "source file changed",
			slog.String("path", info.Path),
			slog.Bool("present", info.Present),
			slog.Int64("size", info.Size))
		infrastructure.RecordSourceChange(ctx, w.metrics, info.Name)
		if w.onChange != nil {
			w.onChange(ctx, info)
		}
	}
	return changed
}

// Run polls until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	files := w.Snapshot()
	attrs := []any{
		slog.Int("files", len(files)),
		slog.Duration("interval", w.interval),
	}
	if latest, ok := GetLatestFile(files); ok && latest.Present {
		attrs = append(attrs, slog.String("latest", latest.Name), slog.Time("latest_modified", latest.ModTime))
	}
	w.logger.InfoContext(ctx, "file watcher started", attrs...)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("file watcher stopped")
			return ctx.Err()
		case <-ticker.C:
			w.Poll(ctx)
		}
	}
}
