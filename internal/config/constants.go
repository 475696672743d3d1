package config

// Application constants
const (
	// Application Info
	AppName   = "nominacli"
	AppVendor = "nominacli"

	// EnvPrefix namespaces every environment variable, e.g. NOMINA_SERVER_PORT.
	EnvPrefix = "NOMINA"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Pipeline caps
	DefaultTolerance                = "0.01"
	DefaultMaxUnitBytes             = 64 << 20
	DefaultMaxDocumentsPerUnit      = 50000
	DefaultMaxEntryBytes            = 16 << 20
	DefaultMaxUnitUncompressedBytes = 512 << 20
	DefaultMaxBatchBytes            = 1 << 30
	DefaultMaxUploadBytes           = 256 << 20

	// Export layout
	DefaultRecordsSheet    = "Base_Empleados"
	DefaultStatisticsSheet = "Estadisticas"
	DefaultHeaderColor     = "#06752E"
	DefaultMaxColumnWidth  = 50
)

// API Endpoints
const (
	APIBasePath     = "/api/v1"
	RunsEndpoint    = "/api/v1/runs"
	ExportEndpoint  = "/api/v1/runs/export"
	HealthEndpoint  = "/healthz"
	MetricsEndpoint = "/metrics"
)
