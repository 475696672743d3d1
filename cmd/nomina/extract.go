package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"nominacli/internal/app"
	apperrors "nominacli/internal/errors"
	"nominacli/internal/exporter"
	"nominacli/internal/infrastructure"
	"nominacli/internal/validation"
	"nominacli/pkg/contracts/domain"
)

type extractOptions struct {
	out     string
	format  string
	workers int
}

func newExtractCmd(root *rootOptions) *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract <file>...",
		Short: "Extract payroll records from XML files and zip archives",
		Long: `Reads the named XML receipts and zip archives, extracts every payroll
record, collapses duplicates and writes the records together with the
statistics report. Without --out the export is written to stdout. A csv
export file gets its statistics in a sibling <out>.stats.csv.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "export format: xlsx, csv or json (default from config or --out extension)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "extraction workers (0 uses the config value)")
	return cmd
}

func runExtract(cmd *cobra.Command, root *rootOptions, opts *extractOptions, args []string) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if opts.workers < 0 {
		return fmt.Errorf("--workers must not be negative, got %d", opts.workers)
	}
	if opts.workers > 0 {
		cfg.Pipeline.Workers = opts.workers
	}

	logger, err := cliLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	core, err := app.BuildCore(cfg, logger, nil, nil)
	if err != nil {
		return err
	}

	format, err := resolveFormat(opts.format, opts.out, core.DefaultFormat)
	if err != nil {
		return err
	}

	v := validation.NewFileValidator(cfg.Pipeline.MaxBatchBytes, logger)
	if err := v.ValidateInputFiles(args); err != nil {
		return err
	}
	if opts.out != "" && opts.out != "-" {
		if err := v.ValidateOutputFile(opts.out); err != nil {
			return err
		}
	}

	units, err := readUnits(args)
	if err != nil {
		return err
	}

	ctx := infrastructure.EnsureTraceID(cmd.Context())
	result, err := core.Pipeline.Run(ctx, units)
	if err != nil {
		return err
	}

	if err := writeExport(cmd.OutOrStdout(), opts.out, func(w io.Writer) error {
		return core.Exporter.Export(w, format, result.Records, result.Statistics)
	}); err != nil {
		return err
	}
	if format == exporter.FormatCSV && opts.out != "" && opts.out != "-" {
		if err := core.Exporter.WriteStatisticsFile(exporter.StatisticsPath(opts.out), result.Statistics); err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "extract completed",
		slog.String("run_id", result.RunID),
		slog.String("format", string(format)),
		slog.String("out", opts.out))
	printSummary(cmd.ErrOrStderr(), result)
	return nil
}

// resolveFormat prefers the flag, then the output file extension, then the
// configured default.
func resolveFormat(flag, out string, fallback exporter.Format) (exporter.Format, error) {
	if flag != "" {
		return exporter.ParseFormat(flag)
	}
	if ext := strings.TrimPrefix(filepath.Ext(out), "."); ext != "" {
		if f, err := exporter.ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	return fallback, nil
}

func readUnits(paths []string) ([]domain.InputUnit, error) {
	units := make([]domain.InputUnit, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, apperrors.NewLoadError(p, err)
		}
		units = append(units, domain.InputUnit{Name: filepath.Base(p), Content: content})
	}
	return units, nil
}

func writeExport(stdout io.Writer, out string, write func(io.Writer) error) error {
	if out == "" || out == "-" {
		return write(stdout)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(w io.Writer, result domain.RunResult) {
	s := result.Summary
	fmt.Fprintf(w, "run %s\n", result.RunID)
	fmt.Fprintf(w, "  units:     %d submitted, %d failed\n", s.UnitsSubmitted, s.UnitsFailed)
	fmt.Fprintf(w, "  documents: %d loaded, %d failed, %d skipped, %d non-payroll\n",
		s.DocumentsLoaded, s.DocumentsFailed, s.DocumentsSkipped, s.DocumentsNonPayroll)
	fmt.Fprintf(w, "  records:   %d extracted, %d rejected, %d duplicates collapsed, %d written\n",
		s.RecordsExtracted, s.RecordsRejected, s.DuplicatesCollapsed, s.RecordsOutput)
	if s.RecordsWithWarnings > 0 {
		fmt.Fprintf(w, "  warnings:  %d records with consistency warnings\n", s.RecordsWithWarnings)
	}
	for _, f := range result.UnitFailures {
		fmt.Fprintf(w, "  failed unit %s: %s\n", f.Unit, f.Message)
	}
	for _, f := range result.DocumentFailures {
		fmt.Fprintf(w, "  failed document %s: %s\n", f.Source, f.Message)
	}
}
