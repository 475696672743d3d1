package domain

import "github.com/shopspring/decimal"

// MoneyTotals holds the three monetary sums tracked for any record subset.
type MoneyTotals struct {
	Gross      decimal.Decimal `json:"gross"`
	Net        decimal.Decimal `json:"net"`
	Deductions decimal.Decimal `json:"deductions"`
}

// Add returns t with the amounts of r added.
func (t MoneyTotals) Add(r EmployeeRecord) MoneyTotals {
	return MoneyTotals{
		Gross:      t.Gross.Add(r.GrossAmount),
		Net:        t.Net.Add(r.NetAmount),
		Deductions: t.Deductions.Add(r.DeductionsTotal),
	}
}

// EmployerStatistics aggregates the records of one employer.
type EmployerStatistics struct {
	EmployerID string      `json:"employer_id"`
	Records    int         `json:"records"`
	Employees  int         `json:"employees"`
	Totals     MoneyTotals `json:"totals"`
}

// PeriodStatistics aggregates the records of one pay period.
type PeriodStatistics struct {
	PeriodStart Date        `json:"pay_period_start"`
	PeriodEnd   Date        `json:"pay_period_end"`
	Records     int         `json:"records"`
	Employees   int         `json:"employees"`
	Totals      MoneyTotals `json:"totals"`
}

// DataQuality counts records carrying the worker attributes HR relies on.
// Complete means CURP, NSS and labor start date are all present.
// AverageDailySalary is the mean SalarioDiarioIntegrado over the records
// that carry a numeric one, rounded to cents; zero when none does.
type DataQuality struct {
	WithCURP           int             `json:"with_curp"`
	WithNSS            int             `json:"with_nss"`
	WithStartDate      int             `json:"with_start_date"`
	WithSalary         int             `json:"with_salary"`
	Complete           int             `json:"complete"`
	AverageDailySalary decimal.Decimal `json:"average_daily_salary"`
}

// StatisticsReport is the derived, read-only summary of a deduplicated
// record set. Slices are never nil so that empty reports serialize as [].
type StatisticsReport struct {
	TotalRecords      int                  `json:"total_records"`
	WarningRecords    int                  `json:"warning_records"`
	DistinctEmployees int                  `json:"distinct_employees"`
	DistinctEmployers int                  `json:"distinct_employers"`
	Totals            MoneyTotals          `json:"totals"`
	DataQuality       DataQuality          `json:"data_quality"`
	ByEmployer        []EmployerStatistics `json:"by_employer"`
	ByPeriod          []PeriodStatistics   `json:"by_period"`
}

// EmptyStatisticsReport returns the all-zero report.
func EmptyStatisticsReport() StatisticsReport {
	return StatisticsReport{
		ByEmployer: []EmployerStatistics{},
		ByPeriod:   []PeriodStatistics{},
	}
}
