package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	Present bool
}

// Changed reports whether f differs from prev in presence, size or
// modification time.
func (f FileInfo) Changed(prev FileInfo) bool {
	return f.Present != prev.Present ||
		f.Size != prev.Size ||
		!f.ModTime.Equal(prev.ModTime)
}

// Discovery finds and inspects source files in a data directory
type Discovery struct {
	dataDir string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(dataDir string) *Discovery {
	return &Discovery{dataDir: dataDir}
}

// sourceExtensions are the formats the loader reads.
var sourceExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// FindSourceFiles lists every CSV and XLSX file in the data directory,
// sorted by name. Spreadsheet lock files (~$name.xlsx) are skipped.
func (d *Discovery) FindSourceFiles() ([]FileInfo, error) {
	entries, err := os.ReadDir(d.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", d.dataDir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "~$") {
			continue
		}
		if !sourceExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(d.dataDir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Present: true,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// Stat describes path. A missing file is reported with Present false and
// no error.
func Stat(path string) (FileInfo, error) {
	info := FileInfo{Path: path, Name: filepath.Base(path)}

	st, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return info, nil
	}
	if err != nil {
		return info, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		return info, nil
	}

	info.Size = st.Size()
	info.ModTime = st.ModTime()
	info.Present = true
	return info, nil
}

// Unused returns the files in found whose paths are not in known
func Unused(found []FileInfo, known []string) []FileInfo {
	set := make(map[string]bool, len(known))
	for _, k := range known {
		set[filepath.Clean(k)] = true
	}

	var out []FileInfo
	for _, f := range found {
		if !set[filepath.Clean(f.Path)] {
			out = append(out, f)
		}
	}
	return out
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}

	return latest, true
}
