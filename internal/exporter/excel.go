package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"nominacli/pkg/contracts/domain"
)

// ExcelOptions controls workbook layout.
type ExcelOptions struct {
	SheetName      string
	StatsSheetName string
	HeaderColor    string // hex fill color of the header row, e.g. #06752E
	MaxColumnWidth int
}

// DefaultExcelOptions returns the stock workbook layout.
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		SheetName:      "Base_Empleados",
		StatsSheetName: "Estadisticas",
		HeaderColor:    "#06752E",
		MaxColumnWidth: 50,
	}
}

func (o ExcelOptions) withDefaults() ExcelOptions {
	d := DefaultExcelOptions()
	if o.SheetName == "" {
		o.SheetName = d.SheetName
	}
	if o.StatsSheetName == "" {
		o.StatsSheetName = d.StatsSheetName
	}
	if o.HeaderColor == "" {
		o.HeaderColor = d.HeaderColor
	}
	if o.MaxColumnWidth <= 0 {
		o.MaxColumnWidth = d.MaxColumnWidth
	}
	return o
}

// ExcelExporter writes xlsx workbooks.
type ExcelExporter struct {
	options ExcelOptions
	logger  *slog.Logger
}

// NewExcelExporter creates an exporter with options; zero fields fall back
// to DefaultExcelOptions.
func NewExcelExporter(options ExcelOptions, logger *slog.Logger) *ExcelExporter {
	return &ExcelExporter{
		options: options.withDefaults(),
		logger:  componentLogger(logger, "excel_exporter"),
	}
}

// Write renders the records sheet and the statistics sheet to w.
func (e *ExcelExporter) Write(w io.Writer, records []domain.EmployeeRecord, report domain.StatisticsReport) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{e.options.HeaderColor}},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border: []excelize.Border{
			{Type: "left", Color: "#000000", Style: 1},
			{Type: "top", Color: "#000000", Style: 1},
			{Type: "right", Color: "#000000", Style: 1},
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	// NewFile starts with Sheet1; rename it rather than leaving it empty.
	if err := f.SetSheetName(f.GetSheetName(0), e.options.SheetName); err != nil {
		return fmt.Errorf("failed to name records sheet: %w", err)
	}
	if err := e.writeSheet(f, e.options.SheetName, RecordTable(records), headerStyle); err != nil {
		return err
	}

	if _, err := f.NewSheet(e.options.StatsSheetName); err != nil {
		return fmt.Errorf("failed to create statistics sheet: %w", err)
	}
	if err := e.writeSheet(f, e.options.StatsSheetName, StatisticsTable(report), headerStyle); err != nil {
		return err
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Debug("workbook written",
		slog.Int("records", len(records)),
		slog.Int("employers", len(report.ByEmployer)))
	return nil
}

func (e *ExcelExporter) writeSheet(f *excelize.File, sheet string, t Table, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &t.Headers); err != nil {
		return fmt.Errorf("failed to write headers on %s: %w", sheet, err)
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d on %s: %w", i+1, sheet, err)
		}
	}

	if len(t.Headers) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(t.Headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style headers on %s: %w", sheet, err)
	}

	for col, width := range columnWidths(t, e.options.MaxColumnWidth) {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, float64(width)); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", name, err)
		}
	}
	return nil
}

// columnWidths sizes each column to its longest cell plus two, capped at max.
func columnWidths(t Table, max int) []int {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				if n := utf8.RuneCountInString(cell); n > widths[i] {
					widths[i] = n
				}
			}
		}
	}
	for i := range widths {
		widths[i] += 2
		if widths[i] > max {
			widths[i] = max
		}
	}
	return widths
}
