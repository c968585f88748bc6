package charts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"popdash/internal/chartspec"
	"popdash/internal/dataprocessing"
	apperrors "popdash/internal/errors"
	"popdash/internal/infrastructure"
)

// ErrEmptyTable is returned when a routine has nothing to draw and the
// panel should stay empty.
var ErrEmptyTable = errors.New("chart table is empty")

// ErrNoMatchingRows is returned when a required filter leaves no rows.
var ErrNoMatchingRows = errors.New("no matching rows")

// NoticeError carries a message shown to the dashboard user in place of
// a chart.
type NoticeError struct {
	Chart   string
	Message string
}

func (e *NoticeError) Error() string {
	return fmt.Sprintf("chart %s: %s", e.Chart, e.Message)
}

// Notice returns the user facing message.
func (e *NoticeError) Notice() string {
	return e.Message
}

// Result is a built chart and the table it was drawn from.
type Result struct {
	Figure *chartspec.Figure
	Table  *dataprocessing.Table
}

// Rows returns the number of rows in the result table.
func (r *Result) Rows() int {
	if r == nil || r.Table == nil {
		return 0
	}
	return r.Table.Nrow()
}

// Routine loads one source file and turns it into one figure.
type Routine interface {
	ID() string
	Title() string
	Source() string
	Build(ctx context.Context) (*Result, error)
}

// base holds what every routine shares.
type base struct {
	id     string
	title  string
	source string
	logger *slog.Logger
}

func newBase(id, title, source string, logger *slog.Logger) base {
	if logger == nil {
		logger = slog.Default()
	}
	return base{
		id:     id,
		title:  title,
		source: source,
		logger: infrastructure.WithChart(logger.With(slog.String("component", "charts")), id),
	}
}

func (b base) ID() string     { return b.id }
func (b base) Title() string  { return b.title }
func (b base) Source() string { return b.source }

// load reads the source file.
func (b base) load(ctx context.Context) (dataprocessing.Table, error) {
	if err := ctx.Err(); err != nil {
		return dataprocessing.Table{}, err
	}
	t := dataprocessing.Load(b.source)
	if t.Err != nil {
		return t, apperrors.NewStorageError(fmt.Sprintf("load %s source", b.id), t.Err)
	}
	b.logger.DebugContext(ctx, "source loaded",
		slog.String("source", b.source),
		slog.Int("rows", t.Nrow()),
		slog.Int("columns", t.Ncol()))
	return t, nil
}

// transformed checks the result of a pipeline.
func (b base) transformed(ctx context.Context, t dataprocessing.Table) error {
	if t.Err != nil {
		return apperrors.NewParsingError(fmt.Sprintf("transform %s table", b.id), t.Err)
	}
	b.logger.DebugContext(ctx, "table transformed",
		slog.Int("rows", t.Nrow()),
		slog.Any("columns", t.Names()))
	return nil
}

func (b base) result(fig *chartspec.Figure, t dataprocessing.Table) *Result {
	return &Result{Figure: fig, Table: &t}
}

// columns reads a label column and a numeric column from t.
func columns(t dataprocessing.Table, labelCol, valueCol string) (chartspec.Labels, chartspec.Numbers, error) {
	labels, err := t.Strings(labelCol)
	if err != nil {
		return nil, nil, err
	}
	values, err := t.Floats(valueCol)
	if err != nil {
		return nil, nil, err
	}
	return chartspec.Labels(labels), chartspec.NumberSlice(values), nil
}
