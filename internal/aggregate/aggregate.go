// Package aggregate derives the statistics report of a deduplicated record
// set. Compute is a pure function; it never fails.
package aggregate

import (
	"sort"

	"nominacli/pkg/contracts/domain"
)

type periodKey struct {
	start, end domain.Date
}

type bucket struct {
	records   int
	employees map[string]struct{}
	totals    domain.MoneyTotals
}

func (b *bucket) add(r domain.EmployeeRecord) {
	b.records++
	b.employees[r.EmployeeID] = struct{}{}
	b.totals = b.totals.Add(r)
}

func newBucket() *bucket {
	return &bucket{employees: make(map[string]struct{})}
}

// Compute summarizes records. Employers are listed by id and periods by
// start then end. An empty input yields domain.EmptyStatisticsReport.
func Compute(records []domain.EmployeeRecord) domain.StatisticsReport {
	report := domain.EmptyStatisticsReport()
	if len(records) == 0 {
		return report
	}

	employees := make(map[string]struct{})
	employers := make(map[string]*bucket)
	periods := make(map[periodKey]*bucket)
	var quality qualityCounter

	for _, r := range records {
		report.TotalRecords++
		if r.ConsistencyWarning {
			report.WarningRecords++
		}
		report.Totals = report.Totals.Add(r)
		employees[r.EmployeeID] = struct{}{}
		quality.add(r)

		eb, ok := employers[r.EmployerID]
		if !ok {
			eb = newBucket()
			employers[r.EmployerID] = eb
		}
		eb.add(r)

		pk := periodKey{r.PayPeriodStart, r.PayPeriodEnd}
		pb, ok := periods[pk]
		if !ok {
			pb = newBucket()
			periods[pk] = pb
		}
		pb.add(r)
	}

	report.DistinctEmployees = len(employees)
	report.DistinctEmployers = len(employers)
	report.DataQuality = quality.result()

	for id, b := range employers {
		report.ByEmployer = append(report.ByEmployer, domain.EmployerStatistics{
			EmployerID: id,
			Records:    b.records,
			Employees:  len(b.employees),
			Totals:     b.totals,
		})
	}
	sort.Slice(report.ByEmployer, func(i, j int) bool {
		return report.ByEmployer[i].EmployerID < report.ByEmployer[j].EmployerID
	})

	for k, b := range periods {
		report.ByPeriod = append(report.ByPeriod, domain.PeriodStatistics{
			PeriodStart: k.start,
			PeriodEnd:   k.end,
			Records:     b.records,
			Employees:   len(b.employees),
			Totals:      b.totals,
		})
	}
	sort.Slice(report.ByPeriod, func(i, j int) bool {
		a, b := report.ByPeriod[i], report.ByPeriod[j]
		if c := a.PeriodStart.Compare(b.PeriodStart); c != 0 {
			return c < 0
		}
		return a.PeriodEnd.Before(b.PeriodEnd)
	})

	return report
}
