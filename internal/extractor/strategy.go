package extractor

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Namespaces of the SAT schemas the strategies understand.
const (
	NamespaceCFDI40   = "http://www.sat.gob.mx/cfd/4"
	NamespaceCFDI33   = "http://www.sat.gob.mx/cfd/3"
	NamespaceTFD      = "http://www.sat.gob.mx/TimbreFiscalDigital"
	NamespaceNomina12 = "http://www.sat.gob.mx/nomina12"
)

// Registered strategy names.
const (
	StrategyNomina12 = "cfdi-nomina12"
	StrategyLegacy   = "nomina-legacy"
)

// Draft is the unvalidated output of a strategy for one payroll node. All
// values are kept as found in the document; validation and numeric
// normalization happen afterwards.
type Draft struct {
	Ordinal int

	EmployeeID      string `validate:"required"`
	EmployerID      string `validate:"required"`
	PayPeriodStart  string `validate:"required,civildate"`
	PayPeriodEnd    string `validate:"required,civildate"`
	GrossAmount     string `validate:"omitempty,amount"`
	DeductionsTotal string `validate:"omitempty,amount"`
	NetAmount       string `validate:"omitempty,amount"`

	// NetDerived asks for NetAmount to be computed as gross minus deductions.
	NetDerived bool

	Extras map[string]string
}

// StrategyFunc maps a document tree to drafts. It reports recognized=false
// when the document is not in the shape it handles.
type StrategyFunc func(root *Node) (drafts []Draft, recognized bool)

// Strategy is a named mapping from a schema variant to drafts.
type Strategy struct {
	Name  string
	Apply StrategyFunc
}

var registry = map[string]StrategyFunc{
	StrategyNomina12: cfdiNomina12,
	StrategyLegacy:   nominaLegacy,
}

// DefaultStrategyOrder is tried when no order is configured.
func DefaultStrategyOrder() []string {
	return []string{StrategyNomina12, StrategyLegacy}
}

// StrategyNames lists every registered strategy in default order.
func StrategyNames() []string {
	return DefaultStrategyOrder()
}

// Lookup resolves strategy names into an ordered strategy list.
func Lookup(names []string) ([]Strategy, error) {
	if len(names) == 0 {
		names = DefaultStrategyOrder()
	}
	seen := make(map[string]bool, len(names))
	out := make([]Strategy, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		fn, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("unknown extraction strategy %q (known: %s)", name, strings.Join(StrategyNames(), ", "))
		}
		if seen[name] {
			return nil, fmt.Errorf("extraction strategy %q listed twice", name)
		}
		seen[name] = true
		out = append(out, Strategy{Name: name, Apply: fn})
	}
	return out, nil
}

// sumAmounts adds the non-empty parts. An unparsable or negative part is
// returned verbatim so that validation reports it against the field.
func sumAmounts(parts ...string) string {
	total := decimal.Zero
	seen := false
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, err := decimal.NewFromString(p)
		if err != nil || d.IsNegative() {
			return p
		}
		total = total.Add(d)
		seen = true
	}
	if !seen {
		return ""
	}
	return total.String()
}

// extrasCollector accumulates unmapped attributes keyed "Prefix.Attribute".
type extrasCollector struct {
	values map[string]string
	mapped map[string]bool
	fold   bool
}

func newExtras(fold bool, mapped ...string) *extrasCollector {
	c := &extrasCollector{values: make(map[string]string), mapped: make(map[string]bool), fold: fold}
	for _, m := range mapped {
		c.skip(m)
	}
	return c
}

func (c *extrasCollector) key(k string) string {
	if c.fold {
		return strings.ToLower(k)
	}
	return k
}

// skip marks prefix.attr as mapped to a canonical field.
func (c *extrasCollector) skip(key string) {
	c.mapped[c.key(key)] = true
}

// add copies every attribute of n under prefix.
func (c *extrasCollector) add(prefix string, n *Node) {
	if n == nil {
		return
	}
	for _, a := range n.Attrs {
		key := prefix + "." + a.Name.Local
		if c.mapped[c.key(key)] {
			continue
		}
		if _, dup := c.values[key]; dup {
			continue
		}
		c.values[key] = strings.TrimSpace(a.Value)
	}
}

func (c *extrasCollector) result() map[string]string {
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}
