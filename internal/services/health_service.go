package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"nominacli/internal/infrastructure"
	"nominacli/pkg/contracts"
)

// Health states.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	CheckReady     = "ready"
	CheckNotReady  = "not_ready"
)

// CatalogInfo reports which code catalogs are loaded.
type CatalogInfo interface {
	Names() []string
}

// CheckResult is the outcome of one readiness check.
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// RuntimeStats is a snapshot of the process.
type RuntimeStats struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	Goroutines    int     `json:"goroutines"`
	HeapBytes     uint64  `json:"heap_bytes"`
}

// HealthStatus is the /healthz body. Status is degraded as soon as one
// check is not ready.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   RuntimeStats           `json:"runtime"`
	Checks    map[string]CheckResult `json:"checks"`
}

// VersionInfo is the /api/v1/version body.
type VersionInfo struct {
	contracts.BuildInfo
	Strategies []string  `json:"strategies"`
	StartedAt  time.Time `json:"started_at"`
}

// HealthService reports readiness of the extraction pipeline.
type HealthService struct {
	build      contracts.BuildInfo
	strategies []string
	catalog    CatalogInfo
	started    time.Time
	logger     *slog.Logger
}

// NewHealthService creates a health service for the configured strategy
// order and catalog. catalog may be nil, which reports not ready.
func NewHealthService(build contracts.BuildInfo, strategies []string, catalog CatalogInfo, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		build:      build,
		strategies: append([]string(nil), strategies...),
		catalog:    catalog,
		started:    time.Now(),
		logger:     logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck runs the readiness checks.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	rt := infrastructure.SampleRuntime(hs.started)
	status := HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now().UTC(),
		Version:   hs.build.Version,
		Runtime: RuntimeStats{
			UptimeSeconds: rt.Uptime.Seconds(),
			Goroutines:    rt.Goroutines,
			HeapBytes:     rt.HeapAlloc,
		},
		Checks: map[string]CheckResult{
			"pipeline": hs.checkPipeline(),
			"catalog":  hs.checkCatalog(),
		},
	}
	for _, c := range status.Checks {
		if c.Status != CheckReady {
			status.Status = StatusDegraded
			break
		}
	}

	hs.logger.DebugContext(ctx, "health check completed", slog.String("status", status.Status))
	return status
}

// Version describes the running binary and its strategy order.
func (hs *HealthService) Version() VersionInfo {
	return VersionInfo{
		BuildInfo:  hs.build,
		Strategies: append([]string(nil), hs.strategies...),
		StartedAt:  hs.started.UTC(),
	}
}

func (hs *HealthService) checkPipeline() CheckResult {
	if len(hs.strategies) == 0 {
		return CheckResult{Status: CheckNotReady, Message: "no extraction strategies configured"}
	}
	return CheckResult{Status: CheckReady, Message: "strategies: " + strings.Join(hs.strategies, ", ")}
}

func (hs *HealthService) checkCatalog() CheckResult {
	if hs.catalog == nil {
		return CheckResult{Status: CheckNotReady, Message: "catalog not loaded"}
	}
	names := hs.catalog.Names()
	if len(names) == 0 {
		return CheckResult{Status: CheckNotReady, Message: "catalog is empty"}
	}
	return CheckResult{Status: CheckReady, Message: "catalogs: " + strings.Join(names, ", ")}
}
