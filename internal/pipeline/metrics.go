package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"nominacli/pkg/contracts/domain"
)

// runMetrics holds the instruments updated once per run.
type runMetrics struct {
	documentsLoaded     metric.Int64Counter
	documentsFailed     metric.Int64Counter
	recordsExtracted    metric.Int64Counter
	recordsRejected     metric.Int64Counter
	duplicatesCollapsed metric.Int64Counter
	unitsFailed         metric.Int64Counter
	runDuration         metric.Float64Histogram
}

func newRunMetrics(meter metric.Meter) (*runMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("nominacli")
	}

	var (
		m   runMetrics
		err error
	)
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.documentsLoaded, "nomina_documents_loaded_total", "XML documents produced by the loader"},
		{&m.documentsFailed, "nomina_documents_failed_total", "XML documents that could not be parsed"},
		{&m.recordsExtracted, "nomina_records_extracted_total", "Validated payroll records before deduplication"},
		{&m.recordsRejected, "nomina_records_rejected_total", "Payroll nodes rejected by validation"},
		{&m.duplicatesCollapsed, "nomina_duplicates_collapsed_total", "Records discarded as duplicates"},
		{&m.unitsFailed, "nomina_units_failed_total", "Input units that could not be loaded"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, err
		}
	}

	m.runDuration, err = meter.Float64Histogram(
		"nomina_run_duration_seconds",
		metric.WithDescription("Pipeline run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *runMetrics) record(ctx context.Context, s domain.RunSummary, elapsed time.Duration, status string) {
	m.documentsLoaded.Add(ctx, int64(s.DocumentsLoaded))
	m.documentsFailed.Add(ctx, int64(s.DocumentsFailed))
	m.recordsExtracted.Add(ctx, int64(s.RecordsExtracted))
	m.recordsRejected.Add(ctx, int64(s.RecordsRejected))
	m.duplicatesCollapsed.Add(ctx, int64(s.DuplicatesCollapsed))
	m.unitsFailed.Add(ctx, int64(s.UnitsFailed))
	m.runDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}
