package aggregate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nominacli/pkg/contracts/domain"
)

func rec(employee, employer string, month int, gross, deductions string, warning bool) domain.EmployeeRecord {
	g := decimal.RequireFromString(gross)
	d := decimal.RequireFromString(deductions)
	return domain.EmployeeRecord{
		EmployeeID:         employee,
		EmployerID:         employer,
		PayPeriodStart:     domain.NewDate(2024, time.Month(month), 1),
		PayPeriodEnd:       domain.NewDate(2024, time.Month(month), 15),
		GrossAmount:        g,
		DeductionsTotal:    d,
		NetAmount:          g.Sub(d),
		ConsistencyWarning: warning,
	}
}

func TestCompute_Empty(t *testing.T) {
	for _, in := range [][]domain.EmployeeRecord{nil, {}} {
		report := Compute(in)

		assert.Zero(t, report.TotalRecords)
		assert.Zero(t, report.DistinctEmployees)
		assert.True(t, report.Totals.Gross.IsZero())
		assert.NotNil(t, report.ByEmployer)
		assert.NotNil(t, report.ByPeriod)

		data, err := json.Marshal(report)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"by_employer":[]`)
	}
}

func TestCompute_Totals(t *testing.T) {
	records := []domain.EmployeeRecord{
		rec("E1", "X", 1, "1000.00", "150.00", false),
		rec("E2", "X", 1, "2000.50", "300.25", true),
		rec("E1", "X", 2, "1000.00", "150.00", false),
		rec("E1", "Y", 1, "500", "0", false),
	}

	report := Compute(records)

	assert.Equal(t, 4, report.TotalRecords)
	assert.Equal(t, 1, report.WarningRecords)
	assert.Equal(t, 2, report.DistinctEmployees)
	assert.Equal(t, 2, report.DistinctEmployers)
	assert.Equal(t, "4500.5", report.Totals.Gross.String())
	assert.Equal(t, "600.25", report.Totals.Deductions.String())
	assert.Equal(t, "3900.25", report.Totals.Net.String())

	require.Len(t, report.ByEmployer, 2)
	x := report.ByEmployer[0]
	assert.Equal(t, "X", x.EmployerID)
	assert.Equal(t, 3, x.Records)
	assert.Equal(t, 2, x.Employees)
	assert.Equal(t, "4000.5", x.Totals.Gross.String())
	assert.Equal(t, "Y", report.ByEmployer[1].EmployerID)
	assert.Equal(t, 1, report.ByEmployer[1].Employees)

	require.Len(t, report.ByPeriod, 2)
	jan := report.ByPeriod[0]
	assert.Equal(t, domain.NewDate(2024, 1, 1), jan.PeriodStart)
	assert.Equal(t, 3, jan.Records)
	assert.Equal(t, 2, jan.Employees)
	assert.Equal(t, "3500.5", jan.Totals.Gross.String())
	assert.Equal(t, domain.NewDate(2024, 2, 1), report.ByPeriod[1].PeriodStart)
}

func TestCompute_OrderIndependent(t *testing.T) {
	a := rec("E1", "X", 1, "10", "1", false)
	b := rec("E2", "Z", 3, "20", "2", false)
	c := rec("E3", "Y", 2, "30", "3", true)

	first, err := json.Marshal(Compute([]domain.EmployeeRecord{a, b, c}))
	require.NoError(t, err)
	second, err := json.Marshal(Compute([]domain.EmployeeRecord{c, a, b}))
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
}

func TestCompute_PeriodsWithSameStart(t *testing.T) {
	monthly := rec("E1", "X", 1, "10", "0", false)
	monthly.PayPeriodEnd = domain.NewDate(2024, 1, 31)
	biweekly := rec("E2", "X", 1, "10", "0", false)

	report := Compute([]domain.EmployeeRecord{monthly, biweekly})

	require.Len(t, report.ByPeriod, 2)
	assert.Equal(t, domain.NewDate(2024, 1, 15), report.ByPeriod[0].PeriodEnd)
	assert.Equal(t, domain.NewDate(2024, 1, 31), report.ByPeriod[1].PeriodEnd)
}

func TestCompute_DataQuality(t *testing.T) {
	records := []domain.EmployeeRecord{
		// Nómina 1.2: worker attributes on the receptor.
		rec("E1", "X", 1, "1000", "0", false).WithExtras(map[string]string{
			"Empleado.Curp":                   "PEXJ800101HDFRRN09",
			"Empleado.NumSeguridadSocial":     "12345678901",
			"Empleado.FechaInicioRelLaboral":  "2020-01-01",
			"Empleado.SalarioDiarioIntegrado": "500.00",
		}),
		// Nómina 1.1: on the Nomina node, different casing.
		rec("E2", "X", 1, "1000", "0", false).WithExtras(map[string]string{
			"Nomina.CURP":                   "GOMA900202MDFRRN01",
			"Nomina.SalarioDiarioIntegrado": "525.005",
		}),
		rec("E3", "X", 1, "1000", "0", false).WithExtras(map[string]string{
			"Empleado.Curp":                   "  ",
			"Empleado.NumSeguridadSocial":     "99999999999",
			"Empleado.SalarioDiarioIntegrado": "n/a",
			"Receptor.Curp":                   "not a worker attribute",
		}),
		rec("E4", "X", 1, "1000", "0", false),
	}

	q := Compute(records).DataQuality

	assert.Equal(t, 2, q.WithCURP, "blank values do not count")
	assert.Equal(t, 2, q.WithNSS)
	assert.Equal(t, 1, q.WithStartDate)
	assert.Equal(t, 1, q.Complete)
	assert.Equal(t, 2, q.WithSalary, "non-numeric salary is ignored")
	assert.Equal(t, "512.5", q.AverageDailySalary.String())
}

func TestCompute_DataQualityWithoutSalary(t *testing.T) {
	q := Compute([]domain.EmployeeRecord{rec("E1", "X", 1, "1", "0", false)}).DataQuality
	assert.Equal(t, domain.DataQuality{}, q)
	assert.True(t, q.AverageDailySalary.IsZero())
}
