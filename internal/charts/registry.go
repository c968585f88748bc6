package charts

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"popdash/internal/config"
)

// Registry holds routines in registration order.
type Registry struct {
	mu       sync.RWMutex
	routines []Routine
	byID     map[string]Routine
}

// NewRegistry creates a registry with the given routines.
func NewRegistry(routines ...Routine) (*Registry, error) {
	r := &Registry{byID: make(map[string]Routine)}
	for _, routine := range routines {
		if err := r.Register(routine); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a routine. IDs must be unique.
func (r *Registry) Register(routine Routine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[routine.ID()]; exists {
		return fmt.Errorf("chart %s already registered", routine.ID())
	}
	r.byID[routine.ID()] = routine
	r.routines = append(r.routines, routine)
	return nil
}

// Get returns the routine with the given id.
func (r *Registry) Get(id string) (Routine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	routine, ok := r.byID[id]
	return routine, ok
}

// List returns the routines in registration order.
func (r *Registry) List() []Routine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Routine(nil), r.routines...)
}

// IDs returns the routine ids in registration order.
func (r *Registry) IDs() []string {
	routines := r.List()
	ids := make([]string, len(routines))
	for i, routine := range routines {
		ids[i] = routine.ID()
	}
	return ids
}

// BySource returns the routines that read path.
func (r *Registry) BySource(path string) []Routine {
	clean := filepath.Clean(path)
	var out []Routine
	for _, routine := range r.List() {
		if filepath.Clean(routine.Source()) == clean {
			out = append(out, routine)
		}
	}
	return out
}

// NewDefaultRegistry registers the six dashboard routines in panel order.
func NewDefaultRegistry(paths *config.Paths, opts config.ChartsConfig, logger *slog.Logger) *Registry {
	r, err := NewRegistry(
		NewBirthReasons(paths.ReasonsCSV, logger),
		NewBirthRate(paths.BirthRateXLSX, logger),
		NewSeniorRatio(paths.SeniorRatioXLSX, logger),
		NewAgeComposition(paths.AgeCompositionXLSX, logger),
		NewTutoringCost(paths.TutoringCostXLSX, TutoringOptions{
			YearMin:       opts.TutoringYearMin,
			YearMax:       opts.TutoringYearMax,
			FrameDuration: opts.FrameDuration,
		}, logger),
		NewPopulationOutlook(paths.PopulationCSV, logger),
	)
	if err != nil {
		// ids are constants
		panic(err)
	}
	return r
}
