// Package exporter renders deduplicated payroll records and their
// statistics as downloadable files.
//
// Three formats share one tabular layout (see RecordTable and
// StatisticsTable):
//
//   - xlsx: a workbook with a records sheet and a statistics sheet, styled
//     header row and capped column widths
//   - csv: the record table with a UTF-8 BOM so spreadsheet tools detect
//     the encoding
//   - json: an indented {"records", "statistics"} document
//
// Money is always written with exactly two decimal places and dates as
// YYYY-MM-DD. Output depends only on the records and report passed in, so
// exporting the same run twice yields identical bytes for csv and json.
//
// Example usage:
//
//	exp := exporter.New(exporter.DefaultExcelOptions(), logger)
//	format, err := exporter.ParseFormat("xlsx")
//	err = exp.Export(w, format, result.Records, result.Statistics)
package exporter
