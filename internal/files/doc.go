// Package files finds the dashboard source files and watches them.
//
// Discovery lists the CSV and XLSX files of the data directory. Watcher
// polls a fixed set of paths and calls back when a file appears,
// disappears or is rewritten, so cached charts can be rebuilt and open
// dashboards told to refresh. Polling compares size and modification
// time only; file contents are never hashed.
package files
