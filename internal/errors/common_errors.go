package errors

import (
	"errors"
	"fmt"
	"sort"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeLoad marks an input unit that could not be opened at all.
	ErrTypeLoad ErrorType = "LOAD"
	// ErrTypeParsing marks a single document that is not well-formed XML.
	ErrTypeParsing ErrorType = "PARSING"
	// ErrTypeValidation marks a single record draft with missing or invalid fields.
	ErrTypeValidation ErrorType = "VALIDATION"
	// ErrTypeSizeLimit marks an input that exceeded a configured cap.
	ErrTypeSizeLimit ErrorType = "SIZE_LIMIT"
	ErrTypeConfig    ErrorType = "CONFIG"
	ErrTypeExport    ErrorType = "EXPORT"
	ErrTypeNotFound  ErrorType = "NOT_FOUND"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Fields returns the offending field names of a validation error, sorted.
func (e *AppError) Fields() []string {
	fields, _ := e.Context["fields"].([]string)
	out := append([]string(nil), fields...)
	sort.Strings(out)
	return out
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewLoadError creates an error for an input unit that cannot be read.
func NewLoadError(unit string, cause error) *AppError {
	return NewAppError(ErrTypeLoad, fmt.Sprintf("cannot load input %q", unit), cause).
		WithContext("unit", unit)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewFieldValidationError creates a record validation error naming the
// fields that failed.
func NewFieldValidationError(message string, fields ...string) *AppError {
	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)
	return NewAppError(ErrTypeValidation, message, nil).WithContext("fields", sorted)
}

// NewSizeLimitError reports that what exceeded limit.
func NewSizeLimitError(what string, actual, limit int64) *AppError {
	return NewAppError(ErrTypeSizeLimit, fmt.Sprintf("%s exceeds limit: %d > %d", what, actual, limit), nil).
		WithContext("limit", limit).
		WithContext("actual", actual)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewExportError creates an error raised while serializing results.
func NewExportError(message string, cause error) *AppError {
	return NewAppError(ErrTypeExport, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// IsType reports whether any AppError in err's chain has the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	for err != nil {
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Type == errType {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// TypeOf returns the type of the outermost AppError in err's chain, or "".
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}
