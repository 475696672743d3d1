package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths anchors relative file paths. BaseDir is the directory of the
// loaded config file, or the working directory when no file was used.
type Paths struct {
	BaseDir string
}

// NewPaths returns paths rooted at baseDir. An empty baseDir means the
// current working directory.
func NewPaths(baseDir string) (*Paths, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %v", err)
		}
		baseDir = wd
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %v", baseDir, err)
	}
	return &Paths{BaseDir: abs}, nil
}

// Resolve returns p joined to BaseDir unless it is empty or absolute.
func (p *Paths) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.BaseDir, path)
}

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %v", dir, err)
	}
	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
