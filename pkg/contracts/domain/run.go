package domain

import "time"

// InputUnit is one submitted input: a single XML document or a zip archive.
type InputUnit struct {
	Name    string
	Content []byte
}

// UnitFailure reports an input unit that could not be processed at all.
type UnitFailure struct {
	Unit    string `json:"unit"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// DocumentFailure reports a document that could not be parsed.
type DocumentFailure struct {
	Source  string `json:"source"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// RecordRejection reports a payroll node that failed validation. Fields lists
// the offending canonical attribute names.
type RecordRejection struct {
	Source  string   `json:"source"`
	Ordinal int      `json:"ordinal"`
	Fields  []string `json:"fields"`
	Message string   `json:"message"`
}

// RunSummary counts every outcome of a run. Nothing is dropped without
// being reflected in one of these counters.
type RunSummary struct {
	UnitsSubmitted      int `json:"units_submitted"`
	UnitsFailed         int `json:"units_failed"`
	DocumentsLoaded     int `json:"documents_loaded"`
	DocumentsFailed     int `json:"documents_failed"`
	DocumentsSkipped    int `json:"documents_skipped"`
	DocumentsNonPayroll int `json:"documents_non_payroll"`
	RecordsExtracted    int `json:"records_extracted"`
	RecordsRejected     int `json:"records_rejected"`
	RecordsWithWarnings int `json:"records_with_warnings"`
	DuplicatesCollapsed int `json:"duplicates_collapsed"`
	RecordsOutput       int `json:"records_output"`
}

// RunResult is the complete outcome of one batch run.
type RunResult struct {
	RunID            string            `json:"run_id"`
	StartedAt        time.Time         `json:"started_at"`
	Duration         time.Duration     `json:"duration_ns"`
	Records          []EmployeeRecord  `json:"records"`
	Statistics       StatisticsReport  `json:"statistics"`
	Summary          RunSummary        `json:"summary"`
	UnitFailures     []UnitFailure     `json:"unit_failures"`
	DocumentFailures []DocumentFailure `json:"document_failures"`
	Rejections       []RecordRejection `json:"rejections"`
	Absorptions      []Absorption      `json:"absorptions"`
}
