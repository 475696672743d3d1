package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	apperrors "nominacli/internal/errors"
	"nominacli/internal/exporter"
	"nominacli/pkg/contracts/domain"
)

// Runner executes one batch run.
type Runner interface {
	Run(ctx context.Context, units []domain.InputUnit) (domain.RunResult, error)
}

// Exporter renders a run's records and statistics in a file format.
type Exporter interface {
	Export(w io.Writer, format exporter.Format, records []domain.EmployeeRecord, report domain.StatisticsReport) error
}

// PayrollService runs payroll batches and exports their results.
type PayrollService struct {
	runner     Runner
	exporter   Exporter
	runTimeout time.Duration
	logger     *slog.Logger
}

// NewPayrollService creates the service. A zero runTimeout leaves runs
// bounded only by the caller's context.
func NewPayrollService(runner Runner, exp Exporter, runTimeout time.Duration, logger *slog.Logger) *PayrollService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollService{
		runner:     runner,
		exporter:   exp,
		runTimeout: runTimeout,
		logger:     logger.With(slog.String("component", "payroll_service")),
	}
}

// Run processes units as one batch.
func (s *PayrollService) Run(ctx context.Context, units []domain.InputUnit) (domain.RunResult, error) {
	if len(units) == 0 {
		return domain.RunResult{}, ErrNoInputs
	}

	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	s.logger.InfoContext(ctx, "run requested", slog.Int("units", len(units)))

	result, err := s.runner.Run(ctx, units)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.WarnContext(ctx, "run timed out",
				slog.String("run_id", result.RunID),
				slog.Duration("timeout", s.runTimeout))
			return result, fmt.Errorf("%w: %w", ErrRunTimeout, err)
		}
		s.logger.WarnContext(ctx, "run aborted",
			slog.String("run_id", result.RunID),
			slog.String("error", err.Error()),
			slog.String("error_type", string(apperrors.TypeOf(err))))
		return result, err
	}
	return result, nil
}

// Export writes the records and statistics of result to w.
func (s *PayrollService) Export(ctx context.Context, w io.Writer, format exporter.Format, result domain.RunResult) error {
	if err := s.exporter.Export(w, format, result.Records, result.Statistics); err != nil {
		s.logger.ErrorContext(ctx, "export failed",
			slog.String("run_id", result.RunID),
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}
