package exporter

import (
	"sort"

	"nominacli/pkg/contracts/domain"
)

// Table is a header row plus data rows, shared by every tabular format.
type Table struct {
	Headers []string
	Rows    [][]string
}

// RecordColumns are the canonical record columns. Extras follow them in
// sorted key order.
var RecordColumns = []string{
	"employee_id",
	"employer_id",
	"pay_period_start",
	"pay_period_end",
	"gross_amount",
	"deductions_total",
	"net_amount",
	"consistency_warning",
	"consistency_delta",
	"strategy",
	"document_source",
	"fingerprint",
}

// StatisticsColumns lay out the statistics table.
var StatisticsColumns = []string{
	"scope",
	"employer_id",
	"pay_period_start",
	"pay_period_end",
	"records",
	"employees",
	"warning_records",
	"gross_amount",
	"deductions_total",
	"net_amount",
	"with_curp",
	"with_nss",
	"with_start_date",
	"with_salary",
	"complete_data",
	"average_daily_salary",
}

// Statistics scopes
const (
	ScopeTotal    = "total"
	ScopeEmployer = "employer"
	ScopePeriod   = "period"
)

// RecordTable lays records out as rows in their given order. Records
// lacking an extra get an empty cell.
func RecordTable(records []domain.EmployeeRecord) Table {
	seen := make(map[string]struct{})
	var extraKeys []string
	for _, r := range records {
		for _, k := range r.ExtraKeys() {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				extraKeys = append(extraKeys, k)
			}
		}
	}
	sort.Strings(extraKeys)

	headers := make([]string, 0, len(RecordColumns)+len(extraKeys))
	headers = append(headers, RecordColumns...)
	headers = append(headers, extraKeys...)

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := []string{
			r.EmployeeID,
			r.EmployerID,
			formatDate(r.PayPeriodStart),
			formatDate(r.PayPeriodEnd),
			formatMoney(r.GrossAmount),
			formatMoney(r.DeductionsTotal),
			formatMoney(r.NetAmount),
			formatBool(r.ConsistencyWarning),
			formatMoney(r.ConsistencyDelta),
			r.Strategy,
			r.DocumentSource,
			r.Fingerprint(),
		}
		for _, k := range extraKeys {
			v, _ := r.Extra(k)
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return Table{Headers: headers, Rows: rows}
}

// StatisticsTable flattens a report: one total row, then one row per
// employer, then one row per period. Data quality columns are filled on the
// total row only.
func StatisticsTable(report domain.StatisticsReport) Table {
	rows := make([][]string, 0, 1+len(report.ByEmployer)+len(report.ByPeriod))
	rows = append(rows, []string{
		ScopeTotal, "", "", "",
		formatInt(report.TotalRecords),
		formatInt(report.DistinctEmployees),
		formatInt(report.WarningRecords),
		formatMoney(report.Totals.Gross),
		formatMoney(report.Totals.Deductions),
		formatMoney(report.Totals.Net),
		formatInt(report.DataQuality.WithCURP),
		formatInt(report.DataQuality.WithNSS),
		formatInt(report.DataQuality.WithStartDate),
		formatInt(report.DataQuality.WithSalary),
		formatInt(report.DataQuality.Complete),
		formatMoney(report.DataQuality.AverageDailySalary),
	})
	for _, e := range report.ByEmployer {
		rows = append(rows, []string{
			ScopeEmployer, e.EmployerID, "", "",
			formatInt(e.Records),
			formatInt(e.Employees),
			"",
			formatMoney(e.Totals.Gross),
			formatMoney(e.Totals.Deductions),
			formatMoney(e.Totals.Net),
			"", "", "", "", "", "",
		})
	}
	for _, p := range report.ByPeriod {
		rows = append(rows, []string{
			ScopePeriod, "", formatDate(p.PeriodStart), formatDate(p.PeriodEnd),
			formatInt(p.Records),
			formatInt(p.Employees),
			"",
			formatMoney(p.Totals.Gross),
			formatMoney(p.Totals.Deductions),
			formatMoney(p.Totals.Net),
			"", "", "", "", "", "",
		})
	}
	return Table{Headers: append([]string(nil), StatisticsColumns...), Rows: rows}
}
