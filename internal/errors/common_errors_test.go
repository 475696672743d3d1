package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    NewAppError(ErrTypeValidation, "record rejected", nil),
			wantMessage: "[VALIDATION] record rejected",
		},
		{
			name:        "error with cause",
			appError:    NewParsingError("malformed document", fmt.Errorf("unexpected EOF")),
			wantMessage: "[PARSING] malformed document: unexpected EOF",
		},
		{
			name:        "load error names the unit",
			appError:    NewLoadError("batch.zip", fmt.Errorf("zip: not a valid zip file")),
			wantMessage: `[LOAD] cannot load input "batch.zip": zip: not a valid zip file`,
		},
		{
			name:        "size limit error",
			appError:    NewSizeLimitError("archive entry count", 12, 10),
			wantMessage: "[SIZE_LIMIT] archive entry count exceeds limit: 12 > 10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewLoadError("x.zip", cause)

	assert.True(t, errors.Is(err, cause))

	var appErr *AppError
	wrapped := fmt.Errorf("outer: %w", err)
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeLoad, appErr.Type)
	assert.Equal(t, "x.zip", appErr.Context["unit"])
}

func TestNewFieldValidationError_SortsFields(t *testing.T) {
	err := NewFieldValidationError("missing fields", "PayPeriodStart", "EmployeeID")

	assert.Equal(t, ErrTypeValidation, err.Type)
	assert.Equal(t, []string{"EmployeeID", "PayPeriodStart"}, err.Fields())

	// Callers get a copy.
	fields := err.Fields()
	fields[0] = "mutated"
	assert.Equal(t, "EmployeeID", err.Fields()[0])
}

func TestNewSizeLimitError_Context(t *testing.T) {
	err := NewSizeLimitError("batch size", 2048, 1024)

	assert.Equal(t, int64(2048), err.Context["actual"])
	assert.Equal(t, int64(1024), err.Context["limit"])
}

func TestIsType(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		errType ErrorType
		want    bool
	}{
		{"nil error", nil, ErrTypeLoad, false},
		{"plain error", errors.New("boom"), ErrTypeLoad, false},
		{"direct match", NewSizeLimitError("unit", 2, 1), ErrTypeSizeLimit, true},
		{"wrapped match", fmt.Errorf("ctx: %w", NewParsingError("bad", nil)), ErrTypeParsing, true},
		{"mismatch", NewParsingError("bad", nil), ErrTypeLoad, false},
		{
			name:    "nested cause match",
			err:     NewLoadError("a.zip", NewSizeLimitError("entry", 5, 1)),
			errType: ErrTypeSizeLimit,
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsType(tt.err, tt.errType))
		})
	}
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrTypeExport, TypeOf(NewExportError("write failed", nil)))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
}
