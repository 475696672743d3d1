package extractor

import "strings"

// nominaLegacy locates payroll data by element role instead of by schema:
// namespaces are ignored and attribute names match case-insensitively. It
// covers CFDI 3.2 (lowercase attributes) with Nómina 1.1 and serves as a
// fallback for variants the stricter strategies reject.
func nominaLegacy(root *Node) ([]Draft, bool) {
	nominas := root.FindAll(namedFold("Nomina"))
	if len(nominas) == 0 {
		return nil, false
	}

	emisor := root.ChildFold("Emisor")
	receptor := root.ChildFold("Receptor")
	timbre := root.Find(namedFold("TimbreFiscalDigital"))

	employer, _ := emisor.AttrFold("Rfc")
	receptorRFC, _ := receptor.AttrFold("Rfc")
	total, hasTotal := root.AttrFold("Total")
	useTotal := hasTotal && len(nominas) == 1

	drafts := make([]Draft, 0, len(nominas))
	for i, nomina := range nominas {
		worker := nomina.ChildFold("Receptor")
		if worker == nil {
			worker = nomina.ChildFold("Empleado")
		}

		mapped := []string{"Emisor.Rfc", "Nomina.FechaInicialPago", "Nomina.FechaFinalPago"}
		employee := receptorRFC
		if employee != "" {
			mapped = append(mapped, "Receptor.Rfc")
		} else if rfc, ok := worker.AttrFold("Rfc"); ok {
			employee = rfc
			mapped = append(mapped, "Empleado.Rfc")
		}

		start, _ := nomina.AttrFold("FechaInicialPago")
		end, _ := nomina.AttrFold("FechaFinalPago")

		gross, grossKeys := legacyGross(nomina)
		deductions, deductionKeys := legacyDeductions(nomina)
		mapped = append(mapped, grossKeys...)
		mapped = append(mapped, deductionKeys...)
		if useTotal {
			mapped = append(mapped, "Comprobante.Total")
		}

		extras := newExtras(true, mapped...)
		extras.add("Comprobante", root)
		extras.add("Emisor", emisor)
		extras.add("Receptor", receptor)
		extras.add("Nomina", nomina)
		for _, child := range nomina.Children {
			switch {
			case strings.EqualFold(child.Local, "Emisor"):
				extras.add("NominaEmisor", child)
			case child == worker:
				extras.add("Empleado", child)
			default:
				extras.add(child.Local, child)
			}
		}
		extras.add("TimbreFiscalDigital", timbre)

		d := Draft{
			Ordinal:         i,
			EmployeeID:      employee,
			EmployerID:      employer,
			PayPeriodStart:  start,
			PayPeriodEnd:    end,
			GrossAmount:     gross,
			DeductionsTotal: deductions,
			Extras:          extras.result(),
		}
		if useTotal {
			d.NetAmount = total
		} else {
			d.NetDerived = true
		}
		drafts = append(drafts, d)
	}
	return drafts, true
}

// legacyGross prefers the complement totals and falls back to the
// gravado/exento split of Nómina 1.1. It also returns the attribute keys
// consumed.
func legacyGross(nomina *Node) (string, []string) {
	if perceptions, ok := nomina.AttrFold("TotalPercepciones"); ok {
		otherPay, _ := nomina.AttrFold("TotalOtrosPagos")
		return sumAmounts(perceptions, otherPay), []string{"Nomina.TotalPercepciones", "Nomina.TotalOtrosPagos"}
	}

	p := nomina.ChildFold("Percepciones")
	if p == nil {
		return "", nil
	}
	gravado, _ := p.AttrFold("TotalGravado")
	exento, _ := p.AttrFold("TotalExento")
	parts := []string{gravado, exento}
	keys := []string{"Percepciones.TotalGravado", "Percepciones.TotalExento"}
	if otros := nomina.ChildFold("OtrosPagos"); otros != nil {
		if v, ok := otros.AttrFold("TotalOtrosPagos"); ok {
			parts = append(parts, v)
			keys = append(keys, "OtrosPagos.TotalOtrosPagos")
		}
	}
	return sumAmounts(parts...), keys
}

// legacyDeductions mirrors legacyGross for the deduction side.
func legacyDeductions(nomina *Node) (string, []string) {
	if total, ok := nomina.AttrFold("TotalDeducciones"); ok {
		return sumAmounts(total), []string{"Nomina.TotalDeducciones"}
	}

	d := nomina.ChildFold("Deducciones")
	if d == nil {
		return "", nil
	}
	if gravado, ok := d.AttrFold("TotalGravado"); ok {
		exento, _ := d.AttrFold("TotalExento")
		return sumAmounts(gravado, exento), []string{"Deducciones.TotalGravado", "Deducciones.TotalExento"}
	}
	otras, _ := d.AttrFold("TotalOtrasDeducciones")
	retenidos, _ := d.AttrFold("TotalImpuestosRetenidos")
	return sumAmounts(otras, retenidos), []string{"Deducciones.TotalOtrasDeducciones", "Deducciones.TotalImpuestosRetenidos"}
}
