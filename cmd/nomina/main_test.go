package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"nominacli/internal/exporter"
	"nominacli/internal/shared/testutil"
	"nominacli/pkg/contracts"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeInputs(t *testing.T) (xmlPath, zipPath string) {
	t.Helper()
	dir := t.TempDir()

	second := testutil.DefaultReceipt()
	second.EmployeeRFC = "MOLA900202BBB"
	second.Curp = "MOLA900202MDFRRN01"
	second.EmployeeName = "ANA MORALES"
	second.UUID = "6F0C4A2E-1111-4A3B-9C55-000000000002"

	xmlPath = filepath.Join(dir, "recibo.xml")
	require.NoError(t, os.WriteFile(xmlPath, testutil.CFDI40(testutil.DefaultReceipt()), 0644))

	zipPath = filepath.Join(dir, "lote.zip")
	require.NoError(t, os.WriteFile(zipPath, testutil.BuildZip(t,
		testutil.ZipEntry{Name: "b.xml", Content: testutil.CFDI40(second)},
		testutil.ZipEntry{Name: "roto.xml", Content: testutil.Malformed()},
	), 0644))
	return xmlPath, zipPath
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestVersionCmd(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "nominacli v"+contracts.Version)

	stdout, _, err = execute(t, "version", "--full")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(commit ")
}

func TestExtractCmd_JSONToStdout(t *testing.T) {
	xmlPath, zipPath := writeInputs(t)

	stdout, stderr, err := execute(t, "extract", xmlPath, zipPath, "--format", "json", "--workers", "2")
	require.NoError(t, err)

	var doc struct {
		Records []struct {
			EmployeeID     string `json:"employee_id"`
			DocumentSource string `json:"document_source"`
		} `json:"records"`
		Statistics map[string]any `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	require.Len(t, doc.Records, 2)

	sources := []string{doc.Records[0].DocumentSource, doc.Records[1].DocumentSource}
	assert.ElementsMatch(t, []string{"recibo.xml", "lote.zip!b.xml"}, sources)
	assert.NotEmpty(t, doc.Statistics)

	assert.Contains(t, stderr, "2 written")
	assert.Contains(t, stderr, "failed document lote.zip!roto.xml")
}

func TestExtractCmd_OutFile(t *testing.T) {
	xmlPath, zipPath := writeInputs(t)
	outDir := filepath.Join(t.TempDir(), "reportes")

	tests := []struct {
		name  string
		file  string
		flags []string
		check func(t *testing.T, path string)
	}{
		{
			name: "format from extension",
			file: "nomina.csv",
			check: func(t *testing.T, path string) {
				data, err := os.ReadFile(path)
				require.NoError(t, err)
				rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))).ReadAll()
				require.NoError(t, err)
				require.Len(t, rows, 3)
				assert.Equal(t, exporter.RecordColumns, rows[0][:len(exporter.RecordColumns)])

				stats := readCSV(t, exporter.StatisticsPath(path))
				require.GreaterOrEqual(t, len(stats), 2)
				assert.Equal(t, exporter.StatisticsColumns, stats[0])
				col := map[string]int{}
				for i, name := range stats[0] {
					col[name] = i
				}
				assert.Equal(t, "2", stats[1][col["with_curp"]])
				assert.Equal(t, "2", stats[1][col["with_nss"]])
				assert.Equal(t, "0", stats[1][col["complete_data"]])
			},
		},
		{
			name: "default xlsx",
			file: "nomina.out",
			check: func(t *testing.T, path string) {
				f, err := excelize.OpenFile(path)
				require.NoError(t, err)
				defer f.Close()
				assert.Equal(t, []string{"Base_Empleados", "Estadisticas"}, f.GetSheetList())
			},
		},
		{
			name:  "flag wins over extension",
			file:  "nomina.csv",
			flags: []string{"--format", "json"},
			check: func(t *testing.T, path string) {
				data, err := os.ReadFile(path)
				require.NoError(t, err)
				assert.True(t, json.Valid(data))
				assert.NoFileExists(t, exporter.StatisticsPath(path))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(outDir, tt.name, tt.file)
			args := append([]string{"extract", xmlPath, zipPath, "--out", out}, tt.flags...)
			stdout, _, err := execute(t, args...)
			require.NoError(t, err)
			assert.Empty(t, stdout)
			tt.check(t, out)
		})
	}
}

func TestExtractCmd_Errors(t *testing.T) {
	xmlPath, _ := writeInputs(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no files", []string{"extract"}},
		{"missing file", []string{"extract", filepath.Join(t.TempDir(), "nada.xml")}},
		{"unsupported format", []string{"extract", xmlPath, "--format", "pdf"}},
		{"negative workers", []string{"extract", xmlPath, "--workers", "-1"}},
		{"missing config", []string{"extract", xmlPath, "--config", filepath.Join(t.TempDir(), "nope.yaml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		flag, out string
		want      exporter.Format
	}{
		{"", "", exporter.FormatXLSX},
		{"csv", "", exporter.FormatCSV},
		{"", "x/y.JSON", exporter.FormatJSON},
		{"", "x/y.txt", exporter.FormatXLSX},
		{"xlsx", "y.csv", exporter.FormatXLSX},
	}
	for _, tt := range tests {
		got, err := resolveFormat(tt.flag, tt.out, exporter.FormatXLSX)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "flag=%q out=%q", tt.flag, tt.out)
	}
}
