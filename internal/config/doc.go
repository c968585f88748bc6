// Package config provides configuration loading for the dashboard server and
// the render CLI.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file
//	3. Default values from struct tags (lowest priority)
//
// # Environment Variables
//
// Environment variables use the POPDASH_ prefix followed by the section name:
//
//	POPDASH_SERVER_PORT=8080
//	POPDASH_LOGGING_LEVEL=debug
//	POPDASH_PATHS_DATA_DIR=/srv/popdash/data
//	POPDASH_CHARTS_TUTORING_YEAR_MAX=2025
//	POPDASH_WATCH_INTERVAL=10s
//
// The config file location may be given with POPDASH_CONFIG; otherwise
// config.yaml and configs/config.yaml are tried.
//
// # Path Management
//
// ResolvePaths turns the configured data directory and source file names into
// absolute paths. Relative names resolve under the data directory, which in
// turn resolves under the base directory (the working directory by default):
//
//	paths, err := config.ResolvePaths(cfg.Paths)
//	for _, src := range paths.SourceFiles() {
//	    fmt.Println(src.Name, src.Path)
//	}
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
