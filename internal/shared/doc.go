// Package shared holds code used by several packages that belongs to no
// single layer.
//
// The testutil subpackage provides:
//
//	- BufferedSlogHandler, a slog.Handler that captures records for assertions
//	- WriteCSV and WriteXLSX, which build source file fixtures in t.TempDir()
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    path := testutil.WriteXLSX(t, t.TempDir(), "in.xlsx", rows)
//	    ...
//	    testutil.AssertLogContains(t, logs, slog.LevelWarn, "guard")
//	}
package shared
