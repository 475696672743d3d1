package exporter

import (
	"io"
	"log/slog"
	"strings"

	apperrors "nominacli/internal/errors"
	"nominacli/pkg/contracts/domain"
)

// Format is an export file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat parses a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatXLSX, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", apperrors.UnsupportedFormatError(s)
	}
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "application/json"
	}
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Exporter dispatches to the writer for each format.
type Exporter struct {
	excel  *ExcelExporter
	csv    *CSVWriter
	logger *slog.Logger
}

// New creates an Exporter.
func New(excel ExcelOptions, logger *slog.Logger) *Exporter {
	return &Exporter{
		excel:  NewExcelExporter(excel, logger),
		csv:    NewCSVWriter(logger),
		logger: componentLogger(logger, "exporter"),
	}
}

// Export writes records and report to w in format. CSV carries the
// records only, see WriteStatisticsFile for the statistics.
func (e *Exporter) Export(w io.Writer, format Format, records []domain.EmployeeRecord, report domain.StatisticsReport) error {
	var err error
	switch format {
	case FormatXLSX:
		err = e.excel.Write(w, records, report)
	case FormatCSV:
		err = e.csv.WriteRecords(w, records)
	case FormatJSON:
		err = WriteJSON(w, records, report)
	default:
		_, err = ParseFormat(string(format))
		return err
	}
	if err != nil {
		e.logger.Error("export failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return apperrors.NewExportError(string(format), err)
	}

	e.logger.Info("export written",
		slog.String("format", string(format)),
		slog.Int("records", len(records)))
	return nil
}

// StatisticsPath names the statistics CSV written next to a CSV export.
func StatisticsPath(out string) string {
	return out + ".stats.csv"
}

// WriteStatisticsFile writes report as a CSV table to path.
func (e *Exporter) WriteStatisticsFile(path string, report domain.StatisticsReport) error {
	err := e.csv.WriteFile(path, func(w io.Writer) error {
		return e.csv.WriteStatistics(w, report)
	})
	if err != nil {
		e.logger.Error("statistics export failed",
			slog.String("file_path", path),
			slog.String("error", err.Error()))
		return apperrors.NewExportError(string(FormatCSV), err)
	}
	return nil
}

func componentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger.With(slog.String("component", component))
}
