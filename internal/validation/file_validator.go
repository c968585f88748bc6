package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Source file validation errors
var (
	ErrNotSourceFile = errors.New("not a csv or xlsx file")
	ErrTempFile      = errors.New("temporary office file")
)

// FileValidator provides common file validation functions for all executables
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateDataDirectory checks that dir exists and returns how many source
// files it holds. An empty directory is not an error.
func (v *FileValidator) ValidateDataDirectory(dir string) (int, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		v.logger.Error("Data directory does not exist",
			slog.String("directory", dir))
		return 0, fmt.Errorf("data directory %s does not exist: %w", dir, err)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Data path is not a directory",
			slog.String("path", dir))
		return 0, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if checkSourceName(e.Name()) == nil {
			count++
		}
	}

	if count == 0 {
		v.logger.Warn("No source files found", slog.String("directory", dir))
	} else {
		v.logger.Info("Data directory validated",
			slog.String("directory", dir),
			slog.Int("files_found", count))
	}
	return count, nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	_ = file.Close()
	_ = os.Remove(testFile)

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		v.logger.Warn("File does not exist", slog.String("file", path))
		return fmt.Errorf("file %s does not exist: %w", path, err)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	_ = file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateSourceFile checks that path is a readable csv or xlsx workbook.
// Office lock files ("~$name.xlsx") are rejected.
func (v *FileValidator) ValidateSourceFile(path string) error {
	if err := checkSourceName(filepath.Base(path)); err != nil {
		v.logger.Warn("Rejected source file",
			slog.String("file", path),
			slog.String("reason", err.Error()))
		return fmt.Errorf("%s: %w", path, err)
	}
	return v.ValidateFile(path)
}

// ValidateSourceFiles checks every path and returns the joined failures
func (v *FileValidator) ValidateSourceFiles(paths ...string) error {
	var errs []error
	for _, p := range paths {
		if err := v.ValidateSourceFile(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func checkSourceName(name string) error {
	if strings.HasPrefix(name, "~$") {
		return ErrTempFile
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return nil
	}
	return ErrNotSourceFile
}
