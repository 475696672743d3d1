package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "nominacli/internal/errors"
	"nominacli/internal/exporter"
	"nominacli/pkg/contracts/domain"
)

// FilesField is the multipart field carrying input units.
const FilesField = "files"

// PayrollServiceInterface defines the payroll operations the handler needs
type PayrollServiceInterface interface {
	Run(ctx context.Context, units []domain.InputUnit) (domain.RunResult, error)
	Export(ctx context.Context, w io.Writer, format exporter.Format, result domain.RunResult) error
}

// PayrollHandler accepts uploaded payroll files and returns run results.
type PayrollHandler struct {
	service        PayrollServiceInterface
	maxUploadBytes int64
	defaultFormat  exporter.Format
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewPayrollHandler creates a payroll handler. maxUploadBytes caps the
// whole request body.
func NewPayrollHandler(service PayrollServiceInterface, maxUploadBytes int64, defaultFormat exporter.Format, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PayrollHandler {
	return &PayrollHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		defaultFormat:  defaultFormat,
		logger:         logger.With(slog.String("component", "payroll_handler")),
		errorHandler:   errorHandler,
	}
}

// Routes returns the run routes
func (h *PayrollHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateRun)
	r.Post("/export", h.ExportRun)
	return r
}

// CreateRun handles POST /api/v1/runs
func (h *PayrollHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	units, err := h.readUnits(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Run(r.Context(), units)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("X-Run-ID", result.RunID)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, result)
}

// ExportRun handles POST /api/v1/runs/export?format=xlsx|csv|json
func (h *PayrollHandler) ExportRun(w http.ResponseWriter, r *http.Request) {
	format := h.defaultFormat
	if q := r.URL.Query().Get("format"); q != "" {
		parsed, err := exporter.ParseFormat(q)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		format = parsed
	}

	units, err := h.readUnits(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Run(r.Context(), units)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// Buffer the export so a failure can still be reported as a problem.
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf, format, result); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(result.RunID, format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Run-ID", result.RunID)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write export response",
			slog.String("run_id", result.RunID),
			slog.String("error", err.Error()))
	}
}

// readUnits reads every file of the multipart "files" field into memory.
// The whole body is capped at maxUploadBytes.
func (h *PayrollHandler) readUnits(w http.ResponseWriter, r *http.Request) ([]domain.InputUnit, error) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, apierrors.InvalidRequestWithError(err)
	}

	var units []domain.InputUnit
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, uploadError(err)
		}

		if part.FormName() != FilesField {
			part.Close()
			continue
		}

		content, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, uploadError(err)
		}

		name := part.FileName()
		if name == "" {
			name = fmt.Sprintf("upload-%d", len(units)+1)
		}
		units = append(units, domain.InputUnit{Name: name, Content: content})
	}

	if len(units) == 0 {
		return nil, apierrors.ErrNoFiles
	}

	h.logger.DebugContext(r.Context(), "upload received", slog.Int("units", len(units)))
	return units, nil
}

// uploadError keeps the MaxBytesError visible to the error handler so it
// maps to 413.
func uploadError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return err
	}
	return apierrors.InvalidRequestWithError(err)
}

func exportFilename(runID string, format exporter.Format) string {
	id := runID
	if len(id) > 8 {
		id = id[:8]
	}
	if id == "" {
		return "nomina" + format.Extension()
	}
	return "nomina-" + id + format.Extension()
}
