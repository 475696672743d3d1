// Package pipeline runs one batch of payroll inputs end to end: loading,
// concurrent extraction, deduplication and aggregation.
//
// A run is a pure function of its input units and the Options the Pipeline
// was built with. Nothing is shared between runs, so a single Pipeline may
// serve concurrent callers.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"nominacli/internal/aggregate"
	"nominacli/internal/dedup"
	apperrors "nominacli/internal/errors"
	"nominacli/internal/extractor"
	"nominacli/internal/loader"
	"nominacli/pkg/contracts/domain"
)

// Limits bounds a run. Unit limits make a single unit fail; exceeding
// MaxBatchBytes aborts the whole run.
type Limits struct {
	Unit          loader.Limits
	MaxBatchBytes int64
}

// Options configures a Pipeline.
type Options struct {
	// Workers bounds concurrent document extraction. Zero means one worker
	// per CPU.
	Workers int

	// Strategies names the extraction strategies in the order they are
	// tried. Empty means the default order.
	Strategies []string

	// Tolerance is passed to the extractor; nil uses its default.
	Tolerance *decimal.Decimal
	Catalog   extractor.Describer
	Limits    Limits

	Logger *slog.Logger
	Meter  metric.Meter
	Tracer trace.Tracer
}

// Pipeline executes batch runs.
type Pipeline struct {
	loader    *loader.Loader
	extractor *extractor.Extractor
	workers   int
	limits    Limits
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *runMetrics
}

// New builds a pipeline. It fails on unknown strategy names.
func New(opts Options) (*Pipeline, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	strategies, err := extractor.Lookup(opts.Strategies)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid strategy order", err)
	}

	metrics, err := newRunMetrics(opts.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer("nominacli")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Pipeline{
		loader: loader.New(opts.Limits.Unit, logger),
		extractor: extractor.New(extractor.Options{
			Strategies: strategies,
			Tolerance:  opts.Tolerance,
			Catalog:    opts.Catalog,
			Logger:     logger,
		}),
		workers: workers,
		limits:  opts.Limits,
		logger:  logger.With(slog.String("component", "pipeline")),
		tracer:  tracer,
		metrics: metrics,
	}, nil
}

// Workers reports the effective extraction concurrency.
func (p *Pipeline) Workers() int {
	return p.workers
}

// docResult is the extraction outcome of the document at the same index.
type docResult struct {
	outcome extractor.Outcome
	err     error
}

// Run processes units as one batch. Unit, document and record problems are
// reported inside the result; the returned error is either a SIZE_LIMIT
// AppError for a batch over Limits.MaxBatchBytes or the context error when
// ctx ends before extraction completes.
func (p *Pipeline) Run(ctx context.Context, units []domain.InputUnit) (domain.RunResult, error) {
	started := time.Now()
	result := domain.RunResult{
		RunID:            uuid.NewString(),
		StartedAt:        started.UTC(),
		Records:          []domain.EmployeeRecord{},
		Statistics:       domain.EmptyStatisticsReport(),
		UnitFailures:     []domain.UnitFailure{},
		DocumentFailures: []domain.DocumentFailure{},
		Rejections:       []domain.RecordRejection{},
		Absorptions:      []domain.Absorption{},
	}
	result.Summary.UnitsSubmitted = len(units)

	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("run.id", result.RunID),
		attribute.Int("run.units", len(units)),
	))
	defer span.End()

	logger := p.logger.With(slog.String("run_id", result.RunID))

	finish := func(status string, err error) (domain.RunResult, error) {
		result.Duration = time.Since(started)
		p.metrics.record(ctx, result.Summary, result.Duration, status)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return result, err
	}

	if err := p.checkBatch(units); err != nil {
		logger.WarnContext(ctx, "batch rejected", slog.String("error", err.Error()))
		return finish("rejected", err)
	}

	docs, err := p.load(ctx, units, &result)
	if err != nil {
		logger.WarnContext(ctx, "run cancelled during load", slog.String("error", err.Error()))
		return finish("cancelled", err)
	}

	results, err := p.extract(ctx, docs)
	if err != nil {
		logger.WarnContext(ctx, "run cancelled during extraction", slog.String("error", err.Error()))
		return finish("cancelled", err)
	}

	records := p.join(docs, results, &result)

	_, dedupSpan := p.tracer.Start(ctx, "pipeline.dedup")
	deduped := dedup.Deduplicate(records)
	dedupSpan.End()

	_, aggSpan := p.tracer.Start(ctx, "pipeline.aggregate")
	result.Statistics = aggregate.Compute(deduped.Records)
	aggSpan.End()

	result.Records = deduped.Records
	result.Absorptions = deduped.Absorptions
	result.Summary.DuplicatesCollapsed = deduped.Collapsed
	result.Summary.RecordsOutput = len(deduped.Records)

	s := result.Summary
	logger.InfoContext(ctx, "run completed",
		slog.Int("units", s.UnitsSubmitted),
		slog.Int("units_failed", s.UnitsFailed),
		slog.Int("documents_loaded", s.DocumentsLoaded),
		slog.Int("documents_failed", s.DocumentsFailed),
		slog.Int("documents_skipped", s.DocumentsSkipped),
		slog.Int("documents_non_payroll", s.DocumentsNonPayroll),
		slog.Int("records_extracted", s.RecordsExtracted),
		slog.Int("records_rejected", s.RecordsRejected),
		slog.Int("duplicates_collapsed", s.DuplicatesCollapsed),
		slog.Int("records_output", s.RecordsOutput),
		slog.Duration("elapsed", time.Since(started)))

	span.SetAttributes(
		attribute.Int("run.records_output", s.RecordsOutput),
		attribute.Int("run.documents_failed", s.DocumentsFailed),
	)
	return finish("completed", nil)
}

// checkBatch enforces the batch-wide byte cap over submitted content.
func (p *Pipeline) checkBatch(units []domain.InputUnit) error {
	if p.limits.MaxBatchBytes <= 0 {
		return nil
	}
	var total int64
	for _, u := range units {
		total += int64(len(u.Content))
	}
	if total > p.limits.MaxBatchBytes {
		return apperrors.NewSizeLimitError("batch", total, p.limits.MaxBatchBytes)
	}
	return nil
}

// load reads every unit into memory. A failing unit contributes no
// documents and is reported as a UnitFailure.
func (p *Pipeline) load(ctx context.Context, units []domain.InputUnit, result *domain.RunResult) ([]domain.RawDocument, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.load")
	defer span.End()

	var docs []domain.RawDocument
	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		unitDocs, skipped, err := p.loadUnit(unit)
		if err != nil {
			result.Summary.UnitsFailed++
			result.UnitFailures = append(result.UnitFailures, domain.UnitFailure{
				Unit:    unit.Name,
				Kind:    string(apperrors.TypeOf(err)),
				Message: err.Error(),
			})
			p.logger.WarnContext(ctx, "input unit failed",
				slog.String("unit", unit.Name),
				slog.String("error", err.Error()))
			continue
		}
		result.Summary.DocumentsSkipped += skipped
		docs = append(docs, unitDocs...)
	}

	result.Summary.DocumentsLoaded = len(docs)
	span.SetAttributes(attribute.Int("documents", len(docs)))
	return docs, nil
}

func (p *Pipeline) loadUnit(unit domain.InputUnit) ([]domain.RawDocument, int, error) {
	stream, err := p.loader.Open(unit)
	if err != nil {
		return nil, 0, err
	}
	docs, err := loader.Collect(stream)
	if err != nil {
		return nil, 0, err
	}
	return docs, stream.Skipped(), nil
}

// extract runs the extractor over docs on the bounded worker pool. Results
// land at the index of their document, so completion order is irrelevant.
func (p *Pipeline) extract(ctx context.Context, docs []domain.RawDocument) ([]docResult, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.extract", trace.WithAttributes(
		attribute.Int("workers", p.workers),
	))
	defer span.End()

	results := make([]docResult, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, doc := range docs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := p.extractor.Extract(doc)
			results[i] = docResult{outcome: out, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// join folds per-document results into the run in document order and
// returns the validated records.
func (p *Pipeline) join(docs []domain.RawDocument, results []docResult, result *domain.RunResult) []domain.EmployeeRecord {
	records := make([]domain.EmployeeRecord, 0, len(docs))
	for i, r := range results {
		source := docs[i].Source
		switch {
		case r.err != nil:
			result.Summary.DocumentsFailed++
			result.DocumentFailures = append(result.DocumentFailures, domain.DocumentFailure{
				Source:  source,
				Kind:    string(apperrors.TypeOf(r.err)),
				Message: r.err.Error(),
			})
		case !r.outcome.Recognized:
			result.Summary.DocumentsNonPayroll++
		default:
			for _, rej := range r.outcome.Rejections {
				result.Rejections = append(result.Rejections, domain.RecordRejection{
					Source:  source,
					Ordinal: rej.Ordinal,
					Fields:  rej.Err.Fields(),
					Message: rej.Err.Message,
				})
			}
			result.Summary.RecordsRejected += len(r.outcome.Rejections)
			records = append(records, r.outcome.Records...)
		}
	}

	result.Summary.RecordsExtracted = len(records)
	for _, rec := range records {
		if rec.ConsistencyWarning {
			result.Summary.RecordsWithWarnings++
		}
	}
	return records
}
