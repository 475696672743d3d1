package exporter

import (
	"encoding/json"
	"fmt"
	"io"

	"nominacli/pkg/contracts/domain"
)

type jsonDocument struct {
	Records    []domain.EmployeeRecord `json:"records"`
	Statistics domain.StatisticsReport `json:"statistics"`
}

// WriteJSON writes records and report as one indented document.
func WriteJSON(w io.Writer, records []domain.EmployeeRecord, report domain.StatisticsReport) error {
	if records == nil {
		records = []domain.EmployeeRecord{}
	}
	if report.ByEmployer == nil {
		report.ByEmployer = []domain.EmployerStatistics{}
	}
	if report.ByPeriod == nil {
		report.ByPeriod = []domain.PeriodStatistics{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonDocument{Records: records, Statistics: report}); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}
