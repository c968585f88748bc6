// Package app provides application initialization and lifecycle management
// for the population dashboard. It wires configuration, logging, telemetry,
// the chart services, the live update hub and the HTTP router together.
//
// # Initialization Flow
//
//	1. Load configuration from environment and file
//	2. Initialize logging and OpenTelemetry
//	3. Resolve the data directory and the six source files
//	4. Build the chart registry and the services around it
//	5. Set up middleware, API routes, /ws, /metrics and the dashboard page
//	6. Create the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication(frontendFS)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Background Work
//
// Start launches the WebSocket hub, the source file watcher and one warm-up
// build of every chart. A changed source drops the cached charts that read it
// and broadcasts a data_update message for each, so open dashboards re-fetch
// only the affected panels.
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM. Stop drains active requests, stops the
// watcher, closes WebSocket connections and flushes telemetry. The package
// never calls os.Exit; errors are returned to main.
package app
