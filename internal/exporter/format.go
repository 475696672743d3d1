package exporter

import (
	"strconv"

	"github.com/shopspring/decimal"

	"nominacli/pkg/contracts/domain"
)

// formatMoney formats an amount with exactly 2 decimal places, so 13.4
// appears as 13.40.
func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// formatDate formats a civil date as 2006-01-02; the zero date is empty.
func formatDate(d domain.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

// formatInt formats a count
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
