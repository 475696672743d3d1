// Package validation checks file arguments given to the command line
// before any input is read.
package validation

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "nominacli/internal/errors"
)

// ErrEmptyFile is returned for zero-length input files.
var ErrEmptyFile = errors.New("file is empty")

// FileValidator checks CLI input and output paths before a run starts, so a
// typo fails fast instead of surfacing as a unit failure.
type FileValidator struct {
	maxFileBytes int64
	logger       *slog.Logger
}

// NewFileValidator creates a validator. maxFileBytes <= 0 disables the size
// check.
func NewFileValidator(maxFileBytes int64, logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &FileValidator{
		maxFileBytes: maxFileBytes,
		logger:       logger,
	}
}

// ValidateInputFile checks that path is a readable, non-empty regular file
// within the size cap.
func (v *FileValidator) ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Input file does not exist", slog.String("file", path))
		return apperrors.NewLoadError(path, fmt.Errorf("file %s does not exist", path))
	}
	if err != nil {
		return apperrors.NewLoadError(path, fmt.Errorf("failed to stat file: %w", err))
	}
	if info.IsDir() {
		v.logger.Error("Input path is a directory", slog.String("path", path))
		return apperrors.NewLoadError(path, fmt.Errorf("%s is a directory, not a file", path))
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return apperrors.NewLoadError(path, fmt.Errorf("%s is an editor lock file", path))
	}
	if info.Size() == 0 {
		return apperrors.NewLoadError(path, ErrEmptyFile)
	}
	if v.maxFileBytes > 0 && info.Size() > v.maxFileBytes {
		v.logger.Error("Input file exceeds size limit",
			slog.String("file", path),
			slog.Int64("size", info.Size()),
			slog.Int64("limit", v.maxFileBytes))
		return apperrors.NewSizeLimitError("input file", info.Size(), v.maxFileBytes).
			WithContext("file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return apperrors.NewLoadError(path, fmt.Errorf("file is not readable: %w", err))
	}
	file.Close()

	v.logger.Debug("Input file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateInputFiles validates every path and joins the failures.
func (v *FileValidator) ValidateInputFiles(paths []string) error {
	var errs []error
	for _, p := range paths {
		if err := v.ValidateInputFile(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ValidateOutputFile ensures the parent directory of path exists and is
// writable, creating it when missing. path itself must not be a directory.
func (v *FileValidator) ValidateOutputFile(path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("output path %s is a directory", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	tmp.Close()
	os.Remove(tmp.Name())

	v.logger.Debug("Output path validated", slog.String("file", path))
	return nil
}
