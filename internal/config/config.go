package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	apperrors "nominacli/internal/errors"
	"nominacli/internal/loader"
	"nominacli/internal/pipeline"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Catalog   CatalogConfig   `yaml:"catalog" envconfig:"CATALOG"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"60s" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"120s" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int             `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	MaxUploadBytes  int64           `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"268435456" validate:"gt=0"`
	RunTimeout      time.Duration   `yaml:"run_timeout" envconfig:"RUN_TIMEOUT" default:"5m" validate:"gt=0"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig bounds run submissions per client
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"5" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"10" validate:"min=1"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/nominacli.log"`
}

// PipelineConfig contains the batch run settings and resource caps
type PipelineConfig struct {
	Workers                  int      `yaml:"workers" envconfig:"WORKERS" default:"0" validate:"min=0"`
	Strategies               []string `yaml:"strategies" envconfig:"STRATEGIES" default:"cfdi-nomina12,nomina-legacy" validate:"min=1,dive,required"`
	Tolerance                string   `yaml:"tolerance" envconfig:"TOLERANCE" default:"0.01" validate:"required,numeric"`
	MaxUnitBytes             int64    `yaml:"max_unit_bytes" envconfig:"MAX_UNIT_BYTES" default:"67108864" validate:"min=0"`
	MaxDocumentsPerUnit      int      `yaml:"max_documents_per_unit" envconfig:"MAX_DOCUMENTS_PER_UNIT" default:"50000" validate:"min=0"`
	MaxEntryBytes            int64    `yaml:"max_entry_bytes" envconfig:"MAX_ENTRY_BYTES" default:"16777216" validate:"min=0"`
	MaxUnitUncompressedBytes int64    `yaml:"max_unit_uncompressed_bytes" envconfig:"MAX_UNIT_UNCOMPRESSED_BYTES" default:"536870912" validate:"min=0"`
	MaxBatchBytes            int64    `yaml:"max_batch_bytes" envconfig:"MAX_BATCH_BYTES" default:"1073741824" validate:"min=0"`
}

// ExportConfig controls the spreadsheet and file exports
type ExportConfig struct {
	DefaultFormat  string `yaml:"default_format" envconfig:"DEFAULT_FORMAT" default:"xlsx" validate:"oneof=xlsx csv json"`
	SheetName      string `yaml:"sheet_name" envconfig:"SHEET_NAME" default:"Base_Empleados" validate:"required,max=31"`
	StatsSheetName string `yaml:"stats_sheet_name" envconfig:"STATS_SHEET_NAME" default:"Estadisticas" validate:"required,max=31"`
	HeaderColor    string `yaml:"header_color" envconfig:"HEADER_COLOR" default:"#06752E" validate:"hexcolor"`
	MaxColumnWidth int    `yaml:"max_column_width" envconfig:"MAX_COLUMN_WIDTH" default:"50" validate:"min=8,max=255"`
}

// CatalogConfig points at an optional SAT catalog workbook
type CatalogConfig struct {
	WorkbookPath string `yaml:"workbook_path" envconfig:"WORKBOOK_PATH"`
}

// TelemetryConfig contains OpenTelemetry settings
type TelemetryConfig struct {
	Enabled        bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME" default:"nominacli" validate:"required"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" default:"prometheus" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1" validate:"min=0,max=1"`
	MetricsPath    string  `yaml:"metrics_path" envconfig:"METRICS_PATH" default:"/metrics" validate:"startswith=/"`
}

// Limits converts the caps into the pipeline's limits.
func (p PipelineConfig) Limits() pipeline.Limits {
	return pipeline.Limits{
		Unit: loader.Limits{
			MaxUnitBytes:  p.MaxUnitBytes,
			MaxDocuments:  p.MaxDocumentsPerUnit,
			MaxEntryBytes: p.MaxEntryBytes,
			MaxTotalBytes: p.MaxUnitUncompressedBytes,
		},
		MaxBatchBytes: p.MaxBatchBytes,
	}
}

// Options builds pipeline options from the configuration. Logger, meter,
// tracer and catalog are left for the caller.
func (p PipelineConfig) Options() (pipeline.Options, error) {
	tolerance, err := decimal.NewFromString(strings.TrimSpace(p.Tolerance))
	if err != nil {
		return pipeline.Options{}, apperrors.NewConfigError("invalid tolerance", err)
	}
	return pipeline.Options{
		Workers:    p.Workers,
		Strategies: append([]string(nil), p.Strategies...),
		Tolerance:  &tolerance,
		Limits:     p.Limits(),
	}, nil
}

// Load loads configuration from defaults, an optional YAML file and
// NOMINA_* environment variables, in increasing order of precedence.
// An empty path falls back to NOMINA_CONFIG and then to the usual
// locations.
func Load(path string) (*Config, error) {
	var envCfg Config
	if err := envconfig.Process(EnvPrefix, &envCfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path == "" {
		path = getConfigFilePath()
	}

	cfg := envCfg
	baseDir := ""
	if path != "" {
		fileCfg, err := loadFromFile(path)
		if err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("failed to load config file %s", path), err)
		}
		cfg = mergeConfigs(*fileCfg, envCfg)
		baseDir = filepath.Dir(path)
	}

	paths, err := NewPaths(baseDir)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to resolve paths", err)
	}
	cfg.resolvePaths(paths)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadFromFile loads configuration from YAML file. Keys absent from the
// file keep their default values.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeConfigs merges file config with env config. envconfig fills every
// unset variable from its default tag, so an env value only wins when it
// differs from the default.
func mergeConfigs(fileConfig, envConfig Config) Config {
	merged := fileConfig
	mergeValue(
		reflect.ValueOf(&merged).Elem(),
		reflect.ValueOf(envConfig),
		reflect.ValueOf(*Default()),
	)
	return merged
}

func mergeValue(dst, env, def reflect.Value) {
	if dst.Kind() == reflect.Struct {
		for i := 0; i < dst.NumField(); i++ {
			mergeValue(dst.Field(i), env.Field(i), def.Field(i))
		}
		return
	}
	if !reflect.DeepEqual(env.Interface(), def.Interface()) {
		dst.Set(env)
	}
}

// resolvePaths anchors relative file paths at the config file directory.
func (c *Config) resolvePaths(p *Paths) {
	c.Logging.FilePath = p.Resolve(c.Logging.FilePath)
	c.Catalog.WorkbookPath = p.Resolve(c.Catalog.WorkbookPath)
}

// Validate checks the configuration against its validate tags.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fe.Namespace())
			}
		}
		return apperrors.NewConfigError("config validation failed", err).
			WithContext("fields", fields)
	}
	if _, err := decimal.NewFromString(c.Pipeline.Tolerance); err != nil {
		return apperrors.NewConfigError("invalid tolerance", err)
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"nominacli.yaml",
		"configs/nominacli.yaml",
		"../configs/nominacli.yaml",
	}

	for _, location := range locations {
		if FileExists(location) {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     60 * time.Second,
			WriteTimeout:    120 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			MaxUploadBytes:  DefaultMaxUploadBytes,
			RunTimeout:      5 * time.Minute,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     5,
				Burst:   10,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: "logs/nominacli.log",
		},
		Pipeline: PipelineConfig{
			Workers:                  0,
			Strategies:               []string{"cfdi-nomina12", "nomina-legacy"},
			Tolerance:                DefaultTolerance,
			MaxUnitBytes:             DefaultMaxUnitBytes,
			MaxDocumentsPerUnit:      DefaultMaxDocumentsPerUnit,
			MaxEntryBytes:            DefaultMaxEntryBytes,
			MaxUnitUncompressedBytes: DefaultMaxUnitUncompressedBytes,
			MaxBatchBytes:            DefaultMaxBatchBytes,
		},
		Export: ExportConfig{
			DefaultFormat:  "xlsx",
			SheetName:      DefaultRecordsSheet,
			StatsSheetName: DefaultStatisticsSheet,
			HeaderColor:    DefaultHeaderColor,
			MaxColumnWidth: DefaultMaxColumnWidth,
		},
		Telemetry: TelemetryConfig{
			Enabled:        true,
			ServiceName:    "nominacli",
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1,
			MetricsPath:    MetricsEndpoint,
		},
	}
}
