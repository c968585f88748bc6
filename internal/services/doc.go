// Package services sits between the HTTP handlers and the chart routines.
//
// ChartService builds figures on demand, caches their JSON until the
// source file changes and records a span and metrics per build.
// SourceService reports the state of the six source files and
// HealthService answers the health, readiness and version endpoints.
//
// Handlers depend on the concrete services; tests construct them with a
// charts.Registry of fake routines or with testutil.SourceSet fixtures.
package services
