package services

import "errors"

// Payroll service errors
var (
	ErrNoInputs   = errors.New("no input files provided")
	ErrRunTimeout = errors.New("run exceeded its time budget")

	// General errors
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
