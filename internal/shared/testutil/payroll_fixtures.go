package testutil

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// Receipt describes one CFDI payroll receipt for fixture generation.
// Empty monetary fields are omitted from the generated XML.
type Receipt struct {
	EmployerRFC  string
	EmployeeRFC  string
	EmployeeName string
	Start        string
	End          string
	Perceptions  string
	OtherPay     string
	Deductions   string
	Total        string
	Curp         string
	ContractType string
	UUID         string
}

// DefaultReceipt returns a consistent receipt: 1000 + 0 - 150 = 850.
func DefaultReceipt() Receipt {
	return Receipt{
		EmployerRFC:  "EMP010101AAA",
		EmployeeRFC:  "XAXX010101000",
		EmployeeName: "JUAN PEREZ",
		Start:        "2024-01-01",
		End:          "2024-01-15",
		Perceptions:  "1000.00",
		Deductions:   "150.00",
		Total:        "850.00",
		Curp:         "PEXJ800101HDFRRN09",
		ContractType: "01",
		UUID:         "6F0C4A2E-1111-4A3B-9C55-000000000001",
	}
}

func attr(name, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf(` %s="%s"`, name, value)
}

// CFDI40 renders receipts as a CFDI 4.0 document. The comprobante Total
// comes from the first receipt; one nomina12:Nomina is emitted per receipt.
func CFDI40(receipts ...Receipt) []byte {
	var b strings.Builder
	first := receipts[0]
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4" xmlns:nomina12="http://www.sat.gob.mx/nomina12" xmlns:tfd="http://www.sat.gob.mx/TimbreFiscalDigital"`)
	b.WriteString(` Version="4.0" Fecha="` + first.End + `T12:00:00" Folio="100" TipoDeComprobante="N"` + attr("Total", first.Total) + `>`)
	b.WriteString(`<cfdi:Emisor Rfc="` + first.EmployerRFC + `" Nombre="EMPRESA SA DE CV" RegimenFiscal="601"/>`)
	b.WriteString(`<cfdi:Receptor Rfc="` + first.EmployeeRFC + `"` + attr("Nombre", first.EmployeeName) + ` UsoCFDI="CN01"/>`)
	b.WriteString(`<cfdi:Complemento>`)
	for _, r := range receipts {
		b.WriteString(`<nomina12:Nomina Version="1.2" TipoNomina="O" FechaPago="` + r.End + `"`)
		b.WriteString(attr("FechaInicialPago", r.Start) + attr("FechaFinalPago", r.End) + ` NumDiasPagados="15"`)
		b.WriteString(attr("TotalPercepciones", r.Perceptions) + attr("TotalDeducciones", r.Deductions) + attr("TotalOtrosPagos", r.OtherPay) + `>`)
		b.WriteString(`<nomina12:Emisor RegistroPatronal="Y1234567890"/>`)
		b.WriteString(`<nomina12:Receptor` + attr("Curp", r.Curp) + ` NumSeguridadSocial="12345678901" TipoContrato="` + r.ContractType + `" TipoJornada="01" TipoRegimen="02" NumEmpleado="7" PeriodicidadPago="04" RiesgoPuesto="1" ClaveEntFed="JAL"/>`)
		b.WriteString(`</nomina12:Nomina>`)
	}
	b.WriteString(`<tfd:TimbreFiscalDigital Version="1.1"` + attr("UUID", first.UUID) + ` FechaTimbrado="` + first.End + `T12:05:00"/>`)
	b.WriteString(`</cfdi:Complemento></cfdi:Comprobante>`)
	return []byte(b.String())
}

// CFDI32 renders a legacy CFDI 3.2 receipt with a Nómina 1.1 complement:
// lowercase comprobante attributes and totals split into gravado/exento.
func CFDI32(r Receipt) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/3" xmlns:nomina="http://www.sat.gob.mx/nomina" version="3.2" fecha="` + r.End + `T10:00:00"` + attr("total", r.Total) + `>
  <cfdi:Emisor rfc="` + r.EmployerRFC + `" nombre="EMPRESA LEGADA"/>
  <cfdi:Receptor rfc="` + r.EmployeeRFC + `" nombre="` + r.EmployeeName + `"/>
  <cfdi:Complemento>
    <nomina:Nomina Version="1.1" NumEmpleado="7"` + attr("CURP", r.Curp) + ` FechaInicialPago="` + r.Start + `" FechaFinalPago="` + r.End + `" TipoContrato="Base">
      <nomina:Percepciones TotalGravado="800.00" TotalExento="200.00"/>
      <nomina:Deducciones TotalGravado="150.00" TotalExento="0.00"/>
    </nomina:Nomina>
  </cfdi:Complemento>
</cfdi:Comprobante>`)
}

// CFDI32Nomina12 renders a CFDI 3.2 comprobante (lowercase rfc and total)
// carrying a Nómina 1.2 complement, as issued during the 2017 transition.
func CFDI32Nomina12(r Receipt) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/3" xmlns:nomina12="http://www.sat.gob.mx/nomina12" version="3.2" fecha="` + r.End + `T10:00:00"` + attr("total", r.Total) + `>
  <cfdi:Emisor` + attr("rfc", r.EmployerRFC) + ` nombre="EMPRESA EN TRANSICION"/>
  <cfdi:Receptor` + attr("rfc", r.EmployeeRFC) + attr("nombre", r.EmployeeName) + `/>
  <cfdi:Complemento>
    <nomina12:Nomina Version="1.2" TipoNomina="O"` + attr("FechaInicialPago", r.Start) + attr("FechaFinalPago", r.End) + attr("TotalPercepciones", r.Perceptions) + attr("TotalDeducciones", r.Deductions) + `>
      <nomina12:Receptor` + attr("Curp", r.Curp) + ` TipoContrato="` + r.ContractType + `" PeriodicidadPago="04"/>
    </nomina12:Nomina>
  </cfdi:Complemento>
</cfdi:Comprobante>`)
}

// Invoice is a well-formed CFDI without any payroll complement.
func Invoice() []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4" Version="4.0" Total="116.00" TipoDeComprobante="I">
  <cfdi:Emisor Rfc="EMP010101AAA"/>
  <cfdi:Receptor Rfc="CLI010101BBB" UsoCFDI="G03"/>
  <cfdi:Conceptos><cfdi:Concepto Descripcion="Servicio" Importe="100.00"/></cfdi:Conceptos>
</cfdi:Comprobante>`)
}

// Malformed is not well-formed XML.
func Malformed() []byte {
	return []byte(`<?xml version="1.0"?><cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4"><cfdi:Emisor Rfc="X"></cfdi:Comprobante>`)
}

// ZipEntry is one file placed into a fixture archive.
type ZipEntry struct {
	Name    string
	Content []byte
}

// BuildZip writes entries into an in-memory zip archive.
func BuildZip(t testing.TB, entries ...ZipEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", e.Name, err)
		}
		if _, err := w.Write(e.Content); err != nil {
			t.Fatalf("write zip entry %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}
