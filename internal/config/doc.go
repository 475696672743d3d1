// Package config provides centralized configuration management for nominacli.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern NOMINA_<SECTION>_<KEY>:
//
//	NOMINA_SERVER_PORT=8080
//	NOMINA_PIPELINE_WORKERS=4
//	NOMINA_PIPELINE_STRATEGIES=cfdi-nomina12,nomina-legacy
//	NOMINA_PIPELINE_TOLERANCE=0.01
//	NOMINA_CATALOG_WORKBOOK_PATH=catalogos.xlsx
//	NOMINA_CONFIG=/etc/nominacli/nominacli.yaml
//
// # Configuration File
//
// The file uses the yaml tags of Config:
//
//	pipeline:
//	  workers: 4
//	  max_batch_bytes: 536870912
//	export:
//	  default_format: csv
//
// Relative paths in the file (log file, catalog workbook) are resolved
// against the file's directory.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	opts, err := cfg.Pipeline.Options()
package config
