package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// RawDocument is one XML payload handed from the loader to the extractor.
// It is never mutated after creation.
type RawDocument struct {
	// Source identifies the document: the uploaded file name, or
	// "archive.zip!path/inside.xml" for archive entries.
	Source string

	// Unit is the name of the input unit that produced the document.
	Unit string

	// Index is the position of the document within its unit.
	Index int

	// Content is the undecoded XML payload.
	Content []byte
}

// EmployeeRecord is the canonical payroll record extracted from one payroll
// complement. Records are values: the exported fields are copied on
// assignment and the extras map is private, so a produced record can only
// be corrected by building a replacement.
type EmployeeRecord struct {
	// EmployeeID is the worker's tax identifier (RFC of the receipt's Receptor).
	EmployeeID string `json:"employee_id"`

	// EmployerID is the paying entity's tax identifier (RFC of the Emisor).
	EmployerID string `json:"employer_id"`

	PayPeriodStart Date `json:"pay_period_start"`
	PayPeriodEnd   Date `json:"pay_period_end"`

	// Monetary totals, exact decimals and never negative.
	GrossAmount     decimal.Decimal `json:"gross_amount"`
	NetAmount       decimal.Decimal `json:"net_amount"`
	DeductionsTotal decimal.Decimal `json:"deductions_total"`

	// DocumentSource is the RawDocument.Source the record came from.
	DocumentSource string `json:"document_source"`

	// Strategy names the schema mapping that produced the record.
	Strategy string `json:"strategy"`

	// ConsistencyWarning is set when Gross - Deductions differs from Net by
	// more than the configured tolerance. ConsistencyDelta holds that difference.
	ConsistencyWarning bool            `json:"consistency_warning"`
	ConsistencyDelta   decimal.Decimal `json:"consistency_delta"`

	extras map[string]string
}

// WithExtras returns a copy of r carrying its own copy of extras.
func (r EmployeeRecord) WithExtras(extras map[string]string) EmployeeRecord {
	r.extras = copyExtras(extras)
	return r
}

// Extras returns a copy of the unmapped schema attributes, keyed "Node.Attribute".
func (r EmployeeRecord) Extras() map[string]string {
	return copyExtras(r.extras)
}

// Extra looks up a single unmapped attribute.
func (r EmployeeRecord) Extra(key string) (string, bool) {
	v, ok := r.extras[key]
	return v, ok
}

// ExtraKeys returns the extras keys in sorted order.
func (r EmployeeRecord) ExtraKeys() []string {
	keys := make([]string, 0, len(r.extras))
	for k := range r.extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Key returns the duplicate-equivalence key of the record.
func (r EmployeeRecord) Key() DuplicateKey {
	return DuplicateKey{
		EmployeeID:  r.EmployeeID,
		EmployerID:  r.EmployerID,
		PeriodStart: r.PayPeriodStart,
		PeriodEnd:   r.PayPeriodEnd,
	}
}

// Fingerprint is a short content digest covering every field of the record,
// extras included. Equal records always share a fingerprint.
func (r EmployeeRecord) Fingerprint() string {
	sum := sha256.Sum256([]byte(r.canonical()))
	return hex.EncodeToString(sum[:8])
}

// canonical renders the record as an unambiguous string. Decimals use their
// normalized form so "100.00" and "100" are the same value.
func (r EmployeeRecord) canonical() string {
	var b strings.Builder
	fields := []string{
		r.EmployeeID,
		r.EmployerID,
		r.PayPeriodStart.String(),
		r.PayPeriodEnd.String(),
		r.GrossAmount.String(),
		r.NetAmount.String(),
		r.DeductionsTotal.String(),
		r.DocumentSource,
		r.Strategy,
	}
	for _, f := range fields {
		b.WriteString(f)
		b.WriteByte(0)
	}
	for _, k := range r.ExtraKeys() {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(r.extras[k])
		b.WriteByte(0)
	}
	return b.String()
}

// MarshalJSON includes the extras under "raw_field_extras".
func (r EmployeeRecord) MarshalJSON() ([]byte, error) {
	type alias EmployeeRecord
	return json.Marshal(struct {
		alias
		RawFieldExtras map[string]string `json:"raw_field_extras"`
		Fingerprint    string            `json:"fingerprint"`
	}{
		alias:          alias(r),
		RawFieldExtras: r.Extras(),
		Fingerprint:    r.Fingerprint(),
	})
}

func copyExtras(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// DuplicateKey identifies one real-world payroll event. Two records with the
// same key are duplicates regardless of their monetary totals.
type DuplicateKey struct {
	EmployeeID  string `json:"employee_id"`
	EmployerID  string `json:"employer_id"`
	PeriodStart Date   `json:"pay_period_start"`
	PeriodEnd   Date   `json:"pay_period_end"`
}

// Compare orders keys by employer, period start, period end and employee,
// which is the output order of a run.
func (k DuplicateKey) Compare(o DuplicateKey) int {
	if c := strings.Compare(k.EmployerID, o.EmployerID); c != 0 {
		return c
	}
	if c := k.PeriodStart.Compare(o.PeriodStart); c != 0 {
		return c
	}
	if c := k.PeriodEnd.Compare(o.PeriodEnd); c != 0 {
		return c
	}
	return strings.Compare(k.EmployeeID, o.EmployeeID)
}

// String renders the key for logs and audit output.
func (k DuplicateKey) String() string {
	return k.EmployerID + "/" + k.EmployeeID + "/" + k.PeriodStart.String() + ".." + k.PeriodEnd.String()
}

// DuplicateGroup is the set of records sharing a DuplicateKey together with
// the one retained for output.
type DuplicateGroup struct {
	Key            DuplicateKey     `json:"key"`
	Representative EmployeeRecord   `json:"representative"`
	Absorbed       []EmployeeRecord `json:"absorbed,omitempty"`
}

// Size is the number of records in the group, representative included.
func (g DuplicateGroup) Size() int {
	return len(g.Absorbed) + 1
}

// Absorption records which representative replaced a discarded duplicate.
type Absorption struct {
	Key                       DuplicateKey `json:"key"`
	DiscardedFingerprint      string       `json:"discarded_fingerprint"`
	DiscardedSource           string       `json:"discarded_source"`
	RepresentativeFingerprint string       `json:"representative_fingerprint"`
	RepresentativeSource      string       `json:"representative_source"`
}
