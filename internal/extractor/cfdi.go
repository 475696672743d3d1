package extractor

// cfdiNomina12 handles CFDI 3.3 and 4.0 receipts carrying one or more
// Nómina 1.2 complements. Each nomina12:Nomina yields one draft.
func cfdiNomina12(root *Node) ([]Draft, bool) {
	nominas := root.FindAll(named(NamespaceNomina12, "Nomina"))
	if len(nominas) == 0 {
		return nil, false
	}

	cfdiNS := NamespaceCFDI40
	if root.Space == NamespaceCFDI33 {
		cfdiNS = NamespaceCFDI33
	}
	emisor := root.Child(cfdiNS, "Emisor")
	receptor := root.Child(cfdiNS, "Receptor")
	timbre := root.Find(named(NamespaceTFD, "TimbreFiscalDigital"))

	employer, _ := emisor.Attr("Rfc")
	employee, _ := receptor.Attr("Rfc")
	total, hasTotal := root.Attr("Total")
	useTotal := hasTotal && len(nominas) == 1

	drafts := make([]Draft, 0, len(nominas))
	for i, nomina := range nominas {
		start, _ := nomina.Attr("FechaInicialPago")
		end, _ := nomina.Attr("FechaFinalPago")
		perceptions, _ := nomina.Attr("TotalPercepciones")
		otherPay, _ := nomina.Attr("TotalOtrosPagos")
		deductions, _ := nomina.Attr("TotalDeducciones")

		extras := newExtras(false,
			"Emisor.Rfc",
			"Receptor.Rfc",
			"Nomina.FechaInicialPago",
			"Nomina.FechaFinalPago",
			"Nomina.TotalPercepciones",
			"Nomina.TotalOtrosPagos",
			"Nomina.TotalDeducciones",
		)
		if useTotal {
			extras.skip("Comprobante.Total")
		}
		extras.add("Comprobante", root)
		extras.add("Emisor", emisor)
		extras.add("Receptor", receptor)
		extras.add("Nomina", nomina)
		for _, child := range nomina.Children {
			switch {
			case child.Is(NamespaceNomina12, "Emisor"):
				extras.add("NominaEmisor", child)
			case child.Is(NamespaceNomina12, "Receptor"), child.Is(NamespaceNomina12, "Empleado"):
				extras.add("Empleado", child)
			case child.Space == NamespaceNomina12:
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
			GrossAmount:     sumAmounts(perceptions, otherPay),
			DeductionsTotal: sumAmounts(deductions),
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
