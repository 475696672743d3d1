package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() EmployeeRecord {
	return EmployeeRecord{
		EmployeeID:      "XAXX010101000",
		EmployerID:      "EMP010101AAA",
		PayPeriodStart:  NewDate(2024, time.January, 1),
		PayPeriodEnd:    NewDate(2024, time.January, 15),
		GrossAmount:     decimal.RequireFromString("1000.00"),
		NetAmount:       decimal.RequireFromString("850.00"),
		DeductionsTotal: decimal.RequireFromString("150.00"),
		DocumentSource:  "a.xml",
		Strategy:        "cfdi-nomina12",
	}.WithExtras(map[string]string{"Receptor.Nombre": "JUAN PEREZ"})
}

func TestEmployeeRecord_ExtrasAreCopied(t *testing.T) {
	src := map[string]string{"Empleado.Curp": "C1"}
	rec := EmployeeRecord{}.WithExtras(src)
	src["Empleado.Curp"] = "changed"

	v, ok := rec.Extra("Empleado.Curp")
	require.True(t, ok)
	assert.Equal(t, "C1", v)

	out := rec.Extras()
	out["Empleado.Curp"] = "changed"
	v, _ = rec.Extra("Empleado.Curp")
	assert.Equal(t, "C1", v)
}

func TestEmployeeRecord_Fingerprint(t *testing.T) {
	base := sampleRecord()

	same := sampleRecord()
	same.GrossAmount = decimal.RequireFromString("1000")
	assert.Equal(t, base.Fingerprint(), same.Fingerprint(), "decimal scale does not matter")

	tests := []struct {
		name   string
		mutate func(EmployeeRecord) EmployeeRecord
	}{
		{"net", func(r EmployeeRecord) EmployeeRecord { r.NetAmount = decimal.NewFromInt(1); return r }},
		{"source", func(r EmployeeRecord) EmployeeRecord { r.DocumentSource = "b.xml"; return r }},
		{"extras", func(r EmployeeRecord) EmployeeRecord {
			return r.WithExtras(map[string]string{"Receptor.Nombre": "OTRO"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base.Fingerprint(), tt.mutate(base).Fingerprint())
		})
	}
	assert.Len(t, base.Fingerprint(), 16)
}

func TestDuplicateKey_Compare(t *testing.T) {
	k := sampleRecord().Key()

	later := k
	later.PeriodStart = NewDate(2024, time.January, 16)
	otherEmployer := k
	otherEmployer.EmployerID = "AAA010101AAA"
	otherEmployee := k
	otherEmployee.EmployeeID = "ZZZZ010101000"

	assert.Equal(t, 0, k.Compare(k))
	assert.Equal(t, -1, k.Compare(later))
	assert.Equal(t, 1, k.Compare(otherEmployer), "employer orders first")
	assert.Equal(t, -1, k.Compare(otherEmployee))
	assert.Equal(t, "EMP010101AAA/XAXX010101000/2024-01-01..2024-01-15", k.String())
}

func TestEmployeeRecord_MarshalJSON(t *testing.T) {
	rec := sampleRecord()
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "XAXX010101000", out["employee_id"])
	assert.Equal(t, "2024-01-01", out["pay_period_start"])
	assert.Equal(t, "1000", out["gross_amount"])
	assert.Equal(t, rec.Fingerprint(), out["fingerprint"])
	assert.Equal(t, map[string]any{"Receptor.Nombre": "JUAN PEREZ"}, out["raw_field_extras"])
}

func TestMoneyTotals_Add(t *testing.T) {
	totals := MoneyTotals{}.Add(sampleRecord()).Add(sampleRecord())
	assert.Equal(t, "2000.00", totals.Gross.StringFixed(2))
	assert.Equal(t, "1700.00", totals.Net.StringFixed(2))
	assert.Equal(t, "300.00", totals.Deductions.StringFixed(2))
}
