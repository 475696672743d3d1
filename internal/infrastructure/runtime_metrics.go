package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeSample is one reading of the Go runtime.
type RuntimeSample struct {
	Goroutines int
	HeapAlloc  uint64
	Sys        uint64
	NumGC      uint32
	Uptime     time.Duration
}

// SampleRuntime reads the runtime counters. since is the process start.
func SampleRuntime(since time.Time) RuntimeSample {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return RuntimeSample{
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		Sys:        mem.Sys,
		NumGC:      mem.NumGC,
		Uptime:     time.Since(since),
	}
}

// RegisterRuntimeMetrics exposes the runtime as observable gauges. The
// runtime is sampled once per collection, so a Prometheus scrape always
// sees fresh values. Unregister the returned registration on shutdown.
func RegisterRuntimeMetrics(meter metric.Meter, started time.Time) (metric.Registration, error) {
	goroutines, err := meter.Int64ObservableGauge("system_goroutines",
		metric.WithDescription("Live goroutines"))
	if err != nil {
		return nil, fmt.Errorf("goroutines gauge: %w", err)
	}
	heap, err := meter.Int64ObservableGauge("system_memory_allocated_bytes",
		metric.WithDescription("Heap bytes allocated"), metric.WithUnit("By"))
	if err != nil {
		return nil, fmt.Errorf("heap gauge: %w", err)
	}
	sys, err := meter.Int64ObservableGauge("system_memory_system_bytes",
		metric.WithDescription("Bytes obtained from the OS"), metric.WithUnit("By"))
	if err != nil {
		return nil, fmt.Errorf("sys gauge: %w", err)
	}
	gc, err := meter.Int64ObservableCounter("system_gc_count",
		metric.WithDescription("Completed GC cycles"))
	if err != nil {
		return nil, fmt.Errorf("gc counter: %w", err)
	}
	uptime, err := meter.Float64ObservableGauge("system_process_uptime_seconds",
		metric.WithDescription("Seconds since start"), metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("uptime gauge: %w", err)
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := SampleRuntime(started)
		o.ObserveInt64(goroutines, int64(s.Goroutines))
		o.ObserveInt64(heap, int64(s.HeapAlloc))
		o.ObserveInt64(sys, int64(s.Sys))
		o.ObserveInt64(gc, int64(s.NumGC))
		o.ObserveFloat64(uptime, s.Uptime.Seconds())
		return nil
	}, goroutines, heap, sys, gc, uptime)
}
