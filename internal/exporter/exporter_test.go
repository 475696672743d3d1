package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "nominacli/internal/errors"
	"nominacli/pkg/contracts/domain"
)

func sampleRecord(employee string, net string, extras map[string]string) domain.EmployeeRecord {
	n := decimal.RequireFromString(net)
	return domain.EmployeeRecord{
		EmployeeID:      employee,
		EmployerID:      "EMP010101AAA",
		PayPeriodStart:  domain.NewDate(2024, time.January, 1),
		PayPeriodEnd:    domain.NewDate(2024, time.January, 15),
		GrossAmount:     n.Add(decimal.RequireFromString("100.6")),
		DeductionsTotal: decimal.RequireFromString("100.6"),
		NetAmount:       n,
		Strategy:        "cfdi-nomina12",
		DocumentSource:  "lote.zip!" + employee + ".xml",
	}.WithExtras(extras)
}

func sampleReport() domain.StatisticsReport {
	totals := domain.MoneyTotals{
		Gross:      decimal.RequireFromString("2101.2"),
		Net:        decimal.RequireFromString("1900"),
		Deductions: decimal.RequireFromString("201.2"),
	}
	return domain.StatisticsReport{
		TotalRecords:      2,
		DistinctEmployees: 2,
		DistinctEmployers: 1,
		Totals:            totals,
		ByEmployer:        []domain.EmployerStatistics{{EmployerID: "EMP010101AAA", Records: 2, Employees: 2, Totals: totals}},
		ByPeriod: []domain.PeriodStatistics{{
			PeriodStart: domain.NewDate(2024, time.January, 1),
			PeriodEnd:   domain.NewDate(2024, time.January, 15),
			Records:     2,
			Employees:   2,
			Totals:      totals,
		}},
		DataQuality: domain.DataQuality{
			WithCURP:           2,
			WithNSS:            1,
			WithStartDate:      1,
			WithSalary:         1,
			Complete:           1,
			AverageDailySalary: decimal.RequireFromString("512.5"),
		},
	}
}

func TestRecordTable(t *testing.T) {
	records := []domain.EmployeeRecord{
		sampleRecord("E1", "1000", map[string]string{"Receptor.Puesto": "Chofer"}),
		sampleRecord("E2", "900.5", map[string]string{"Emisor.Nombre": "ACME", "Receptor.Puesto": "Gerente"}),
	}

	table := RecordTable(records)

	assert.Equal(t, append(append([]string(nil), RecordColumns...), "Emisor.Nombre", "Receptor.Puesto"), table.Headers)
	require.Len(t, table.Rows, 2)

	first := table.Rows[0]
	assert.Equal(t, "E1", first[0])
	assert.Equal(t, "2024-01-01", first[2])
	assert.Equal(t, "1100.60", first[4])
	assert.Equal(t, "100.60", first[5])
	assert.Equal(t, "1000.00", first[6])
	assert.Equal(t, "false", first[7])
	assert.Equal(t, "0.00", first[8])
	assert.Equal(t, records[0].Fingerprint(), first[11])
	assert.Equal(t, "", first[12], "missing extra is an empty cell")
	assert.Equal(t, "Chofer", first[13])

	assert.Equal(t, "900.50", table.Rows[1][6])
	assert.Equal(t, "ACME", table.Rows[1][12])
}

func TestStatisticsTable(t *testing.T) {
	table := StatisticsTable(sampleReport())

	assert.Equal(t, StatisticsColumns, table.Headers)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, []string{
		ScopeTotal, "", "", "", "2", "2", "0", "2101.20", "201.20", "1900.00",
		"2", "1", "1", "1", "1", "512.50",
	}, table.Rows[0])
	for _, row := range table.Rows {
		assert.Len(t, row, len(StatisticsColumns))
	}
	assert.Empty(t, table.Rows[1][len(StatisticsColumns)-1], "quality is reported on the total row only")
	assert.Equal(t, ScopeEmployer, table.Rows[1][0])
	assert.Equal(t, "EMP010101AAA", table.Rows[1][1])
	assert.Equal(t, []string{ScopePeriod, "", "2024-01-01", "2024-01-15"}, table.Rows[2][:4])
}

func TestStatisticsTable_Empty(t *testing.T) {
	table := StatisticsTable(domain.EmptyStatisticsReport())
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "0.00", table.Rows[0][7])
	assert.Equal(t, "0.00", table.Rows[0][len(StatisticsColumns)-1])
}

func TestCSVWriter_WriteRecords(t *testing.T) {
	var buf bytes.Buffer
	records := []domain.EmployeeRecord{sampleRecord("E1", "1000", nil)}

	require.NoError(t, NewCSVWriter(nil).WriteRecords(&buf, records))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, utf8BOM))

	rows, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, RecordColumns, rows[0])
	assert.Equal(t, "1000.00", rows[1][6])
}

func TestExporter_WriteStatisticsFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out", "nomina.csv")
	path := StatisticsPath(out)
	assert.Equal(t, out+".stats.csv", path)

	require.NoError(t, New(ExcelOptions{}, nil).WriteStatisticsFile(path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, utf8BOM))

	rows, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, StatisticsColumns, rows[0])
	assert.Contains(t, rows[0], "with_curp")
	assert.Equal(t, "512.50", rows[1][len(StatisticsColumns)-1])
}

func TestExporter_WriteStatisticsFile_Failure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := New(ExcelOptions{}, nil).WriteStatisticsFile(filepath.Join(blocker, "s.csv"), sampleReport())
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeExport))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil, domain.StatisticsReport{}))

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.JSONEq(t, `[]`, string(doc["records"]))
	assert.Contains(t, string(doc["statistics"]), `"by_employer": []`)
}

func TestExcelExporter_Write(t *testing.T) {
	var buf bytes.Buffer
	records := []domain.EmployeeRecord{
		sampleRecord("E1", "1000", map[string]string{"Receptor.Puesto": "Responsable de almacen y distribucion regional zona norte"}),
		sampleRecord("E2", "900", nil),
	}

	exp := NewExcelExporter(ExcelOptions{}, nil)
	require.NoError(t, exp.Write(&buf, records, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Base_Empleados", "Estadisticas"}, f.GetSheetList())

	rows, err := f.GetRows("Base_Empleados")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "employee_id", rows[0][0])
	assert.Equal(t, "E2", rows[2][0])
	assert.Equal(t, "900.00", rows[2][6])

	width, err := f.GetColWidth("Base_Empleados", "A")
	require.NoError(t, err)
	assert.Equal(t, float64(len("employee_id")+2), width)

	extraCol, err := excelize.ColumnNumberToName(len(RecordColumns) + 1)
	require.NoError(t, err)
	width, err = f.GetColWidth("Base_Empleados", extraCol)
	require.NoError(t, err)
	assert.Equal(t, float64(50), width, "long cells are capped")

	stats, err := f.GetRows("Estadisticas")
	require.NoError(t, err)
	require.Len(t, stats, 4)
	assert.Equal(t, "total", stats[1][0])
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"xlsx", FormatXLSX, false},
		{" CSV ", FormatCSV, false},
		{"Json", FormatJSON, false},
		{"pdf", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				var apiErr *apperrors.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "UNSUPPORTED_FORMAT", apiErr.ErrorCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_Metadata(t *testing.T) {
	assert.Equal(t, ".xlsx", FormatXLSX.Extension())
	assert.Contains(t, FormatCSV.ContentType(), "text/csv")
	assert.Equal(t, "application/json", FormatJSON.ContentType())
}

func TestExporter_Export(t *testing.T) {
	exp := New(DefaultExcelOptions(), nil)
	records := []domain.EmployeeRecord{sampleRecord("E1", "1000", nil)}

	for _, format := range []Format{FormatXLSX, FormatCSV, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			var first, second bytes.Buffer
			require.NoError(t, exp.Export(&first, format, records, sampleReport()))
			assert.NotZero(t, first.Len())
			if format == FormatXLSX {
				return
			}
			require.NoError(t, exp.Export(&second, format, records, sampleReport()))
			assert.Equal(t, first.String(), second.String())
		})
	}

	err := exp.Export(&bytes.Buffer{}, Format("pdf"), records, sampleReport())
	require.Error(t, err)
}
