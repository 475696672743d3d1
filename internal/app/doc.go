// Package app wires nominacli together and manages the server lifecycle.
//
// # Initialization Flow
//
//	1. config.Load and infrastructure.InitializeLogger (done by the caller)
//	2. OpenTelemetry providers from the telemetry section
//	3. BuildCore: catalog (built-in or workbook), pipeline, exporter
//	4. PayrollService and HealthService
//	5. chi router with RequestID → RealIP → OTel → Logger → Recoverer
//	6. http.Server with the configured timeouts
//
// BuildCore is also used by the CLI's extract command, so a batch run from
// the command line behaves exactly like one submitted over HTTP.
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM. In-flight requests get
// Server.ShutdownTimeout to finish, and telemetry providers are flushed.
// The package never calls os.Exit.
package app
