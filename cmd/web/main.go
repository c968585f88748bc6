package main

import (
	"embed"
	"io/fs"
	"log/slog"
	"os"

	"popdash/internal/app"
)

// Embedded dashboard page
//
//go:embed frontend
var frontendFiles embed.FS

func main() {
	frontendFS, err := frontend(frontendFiles)
	if err != nil {
		slog.Warn("Frontend embedding failed, serving the API only", slog.String("error", err.Error()))
	}

	application, err := app.NewApplication(frontendFS)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// frontend roots the embedded files at the frontend directory
func frontend(files fs.FS) (fs.FS, error) {
	sub, err := fs.Sub(files, "frontend")
	if err != nil {
		return nil, err
	}
	if _, err := fs.Stat(sub, "index.html"); err != nil {
		return nil, err
	}
	return sub, nil
}
