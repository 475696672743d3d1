package aggregate

import (
	"strings"

	"github.com/shopspring/decimal"

	"nominacli/pkg/contracts/domain"
)

// Nómina 1.2 carries worker attributes on the Receptor (Empleado.*), Nómina
// 1.1 on the Nomina node itself, and casing differs between versions.
var workerPrefixes = []string{"Empleado.", "Nomina."}

const (
	attrCURP      = "Curp"
	attrNSS       = "NumSeguridadSocial"
	attrStartDate = "FechaInicioRelLaboral"
	attrSalary    = "SalarioDiarioIntegrado"
)

// workerAttr returns the first non-blank worker attribute named attr.
func workerAttr(r domain.EmployeeRecord, attr string) string {
	keys := r.ExtraKeys()
	for _, prefix := range workerPrefixes {
		for _, k := range keys {
			if len(k) != len(prefix)+len(attr) || !strings.HasPrefix(k, prefix) ||
				!strings.EqualFold(k[len(prefix):], attr) {
				continue
			}
			if v, _ := r.Extra(k); strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

type qualityCounter struct {
	q          domain.DataQuality
	salarySum  decimal.Decimal
	salaryRecs int64
}

func (c *qualityCounter) add(r domain.EmployeeRecord) {
	curp := workerAttr(r, attrCURP) != ""
	nss := workerAttr(r, attrNSS) != ""
	start := workerAttr(r, attrStartDate) != ""

	if curp {
		c.q.WithCURP++
	}
	if nss {
		c.q.WithNSS++
	}
	if start {
		c.q.WithStartDate++
	}
	if curp && nss && start {
		c.q.Complete++
	}
	if s, err := decimal.NewFromString(workerAttr(r, attrSalary)); err == nil {
		c.q.WithSalary++
		c.salarySum = c.salarySum.Add(s)
		c.salaryRecs++
	}
}

func (c *qualityCounter) result() domain.DataQuality {
	q := c.q
	if c.salaryRecs > 0 {
		q.AverageDailySalary = c.salarySum.DivRound(decimal.NewFromInt(c.salaryRecs), 2)
	}
	return q
}
