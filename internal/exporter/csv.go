package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"nominacli/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	return &CSVWriter{logger: componentLogger(logger, "csv_writer")}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteTable writes t to w
func (c *CSVWriter) WriteTable(w io.Writer, t Table, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(t.Headers) > 0 {
		if err := writer.Write(t.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteRecords writes the record table with a BOM
func (c *CSVWriter) WriteRecords(w io.Writer, records []domain.EmployeeRecord) error {
	return c.WriteTable(w, RecordTable(records), WriteOptions{BOMPrefix: true})
}

// WriteStatistics writes the statistics table with a BOM
func (c *CSVWriter) WriteStatistics(w io.Writer, report domain.StatisticsReport) error {
	return c.WriteTable(w, StatisticsTable(report), WriteOptions{BOMPrefix: true})
}

// WriteFile creates path, including parent directories, and fills it with
// write.
func (c *CSVWriter) WriteFile(path string, write func(io.Writer) error) error {
	c.logger.Info("writing CSV file", slog.String("file_path", path))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
