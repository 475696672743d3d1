// Package catalog resolves SAT payroll catalog codes (contract type, working
// day type, payment periodicity and so on) into human readable descriptions.
//
// A Catalog starts with the built-in entries below and can be overlaid with
// an xlsx workbook in the layout SAT publishes (catNomina), one sheet per
// catalog.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Catalog names understood by the extractor.
const (
	TipoContrato     = "TipoContrato"
	TipoJornada      = "TipoJornada"
	PeriodicidadPago = "PeriodicidadPago"
	RiesgoPuesto     = "RiesgoPuesto"
	TipoRegimen      = "TipoRegimen"
	TipoNomina       = "TipoNomina"
)

// Catalog is an immutable set of code tables. The zero value is not usable;
// build one with Builtin or LoadWorkbook.
type Catalog struct {
	tables map[string]map[string]string
}

// Builtin returns the catalog with the embedded SAT tables.
func Builtin() *Catalog {
	tables := make(map[string]map[string]string, len(builtin))
	for name, entries := range builtin {
		tables[name] = copyTable(entries)
	}
	return &Catalog{tables: tables}
}

// Describe returns the description for key in the named catalog. When the
// key is unknown it returns the "<key> (Sin descripción)" fallback and false.
func (c *Catalog) Describe(name, key string) (string, bool) {
	key = strings.TrimSpace(key)
	if table, ok := c.tables[name]; ok {
		if desc, ok := table[key]; ok {
			return desc, true
		}
	}
	return Fallback(key), false
}

// Fallback is the description used for codes missing from every table.
func Fallback(key string) string {
	return fmt.Sprintf("%s (Sin descripción)", strings.TrimSpace(key))
}

// Names lists the catalogs available, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len is the number of entries in the named catalog.
func (c *Catalog) Len(name string) int {
	return len(c.tables[name])
}

// merge returns a new catalog where entries from overlay replace c's.
func (c *Catalog) merge(overlay map[string]map[string]string) *Catalog {
	tables := make(map[string]map[string]string, len(c.tables)+len(overlay))
	for name, entries := range c.tables {
		tables[name] = copyTable(entries)
	}
	for name, entries := range overlay {
		if tables[name] == nil {
			tables[name] = make(map[string]string, len(entries))
		}
		for k, v := range entries {
			tables[name][k] = v
		}
	}
	return &Catalog{tables: tables}
}

func copyTable(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

var builtin = map[string]map[string]string{
	TipoContrato: {
		"01": "Contrato de trabajo por tiempo indeterminado",
		"02": "Contrato de trabajo por tiempo determinado",
		"03": "Contrato de trabajo para obra determinada",
		"04": "Contrato de trabajo por tiempo indeterminado sujeto a prueba",
		"05": "Contrato de trabajo por tiempo determinado sujeto a prueba",
		"06": "Contrato de trabajo por temporada",
		"07": "Contrato de trabajo por módulo laboral",
		"08": "Contrato de trabajo por tiempo determinado discontinuo",
		"09": "Contrato de trabajo para capacitación inicial",
		"10": "Contrato de trabajo por tiempo indeterminado a prueba",
		"99": "Otro tipo de contrato",
	},
	TipoJornada: {
		"01": "Diurna",
		"02": "Nocturna",
		"03": "Mixta",
		"04": "Por hora",
		"05": "Reducida",
		"06": "Continuada",
		"07": "Partida",
		"08": "Por turnos",
		"09": "Discontinua",
		"99": "Otra jornada",
	},
	PeriodicidadPago: {
		"01": "Diario",
		"02": "Semanal",
		"03": "Catorcenal",
		"04": "Quincenal",
		"05": "Mensual",
		"06": "Bimestral",
		"07": "Trimestral",
		"08": "Semestral",
		"09": "Anual",
		"10": "Decenal",
		"11": "Paganini",
		"99": "Otra periodicidad",
	},
	RiesgoPuesto: {
		"1":  "Clase I (Gastos médicos)",
		"2":  "Clase II (Gastos médicos y pensiones)",
		"3":  "Clase III (Invalidez y vida)",
		"4":  "Clase IV (Invalidez, vida y cesantía)",
		"5":  "Clase V (Invalidez, vida, cesantía y vejez)",
		"99": "No aplica",
	},
	TipoRegimen: {
		"02": "Sueldos (Incluye ingresos señalados en la fracción I del artículo 94 de LISR)",
		"03": "Jubilados",
		"04": "Pensionados",
		"05": "Asimilados Miembros Sociedades Cooperativas Produccion",
		"06": "Asimilados Integrantes Sociedades Asociaciones Civiles",
		"07": "Asimilados Miembros consejos",
		"08": "Asimilados comisionistas",
		"09": "Asimilados Honorarios",
		"10": "Asimilados acciones",
		"11": "Asimilados otros",
		"12": "Jubilados o Pensionados",
		"13": "Indemnización o Separación",
		"99": "Otro Regimen",
	},
	TipoNomina: {
		"O": "Nómina ordinaria",
		"E": "Nómina extraordinaria",
	},
}
