package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
)

type problemMapping struct {
	status      int
	problemType string
}

// appErrorProblems maps the pipeline taxonomy onto HTTP. Input problems are
// 422 because the request itself was well-formed.
var appErrorProblems = map[ErrorType]problemMapping{
	ErrTypeSizeLimit:  {http.StatusRequestEntityTooLarge, TypeInputTooLarge},
	ErrTypeLoad:       {http.StatusUnprocessableEntity, TypeLoadFailed},
	ErrTypeParsing:    {http.StatusUnprocessableEntity, TypeParseFailed},
	ErrTypeValidation: {http.StatusUnprocessableEntity, TypeValidation},
	ErrTypeNotFound:   {http.StatusNotFound, TypeNotFound},
	ErrTypeExport:     {http.StatusInternalServerError, TypeExportFailed},
}

var apiErrorTypes = map[string]string{
	CodeInvalidRequest:    TypeBadRequest,
	CodeNoFiles:           TypeBadRequest,
	CodeUnsupportedFormat: TypeBadRequest,
	CodePayloadTooLarge:   TypePayloadTooLarge,
	CodeRateLimited:       TypeRateLimit,
	CodeNotFound:          TypeNotFound,
}

const internalDetail = "An unexpected error occurred while processing your request"

// ErrorHandler renders errors as RFC 7807 problems and logs them.
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates an error handler. includeStack adds a goroutine
// stack to every problem and is meant for development only.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	problem := h.ErrorToProblem(err, r)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", problem.TraceID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if h.includeStack {
		problem.Stack = stackTrace()
	}
	problem.Write(w, r)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details. Context
// errors are checked first so a timeout wrapped in an AppError still reads
// as a timeout.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblem(http.StatusGatewayTimeout, TypeTimeout,
			"The request took too long to process and was cancelled", r)
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		p := NewProblem(http.StatusRequestEntityTooLarge, TypePayloadTooLarge,
			fmt.Sprintf("The request body exceeds the maximum allowed size of %d bytes", maxBytesErr.Limit), r)
		p.ErrorCode = CodePayloadTooLarge
		return p
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		problemType, ok := apiErrorTypes[apiErr.ErrorCode]
		if !ok {
			problemType = TypeInternal
		}
		p := NewProblem(apiErr.StatusCode, problemType, apiErr.Message, r)
		p.ErrorCode = apiErr.ErrorCode
		p.Details = apiErr.Details
		return p
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		m, ok := appErrorProblems[appErr.Type]
		if !ok {
			p := NewProblem(http.StatusInternalServerError, TypeInternal, internalDetail, r)
			p.ErrorType = appErr.Type
			return p
		}
		p := NewProblem(m.status, m.problemType, appErr.Message, r)
		p.ErrorType = appErr.Type
		p.Fields = appErr.Fields()
		return p
	}

	return NewProblem(http.StatusInternalServerError, TypeInternal, internalDetail, r)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	NewProblem(http.StatusNotFound, TypeNotFound, "The requested resource was not found", r).Write(w, r)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	NewProblem(http.StatusMethodNotAllowed, TypeMethodNotAllowed,
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method), r).Write(w, r)
}

func stackTrace() string {
	buf := make([]byte, 8<<10)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
