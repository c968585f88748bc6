// Package charts implements the six dashboard chart routines.
//
// Each routine reads one source file, runs a fixed dataprocessing pipeline
// and draws one chartspec.Figure. Routines share no state and can be built
// concurrently. Every routine exposes its steps separately (Transform and
// Figure) so tests can feed tables directly.
//
// Build returns:
//
//   - ErrEmptyTable when the routine chooses not to draw
//   - *NoticeError when the dashboard should show a message instead
//   - an *errors.AppError wrapping load or pipeline failures
//
// Registry keeps the routines in dashboard panel order.
package charts
