package extractor

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apperrors "nominacli/internal/errors"
	"nominacli/pkg/contracts/domain"
)

// DefaultTolerance is the accepted gap between gross - deductions and net.
var DefaultTolerance = decimal.RequireFromString("0.01")

// Describer resolves catalog codes. *catalog.Catalog satisfies it.
type Describer interface {
	Describe(catalog, key string) (string, bool)
}

// codedAttributes lists the extras that gain a "...Descripcion" companion,
// keyed by attribute name with the catalog to consult.
var codedAttributes = []struct {
	attr    string
	catalog string
}{
	{"TipoContrato", "TipoContrato"},
	{"TipoJornada", "TipoJornada"},
	{"PeriodicidadPago", "PeriodicidadPago"},
	{"RiesgoPuesto", "RiesgoPuesto"},
	{"TipoRegimen", "TipoRegimen"},
	{"TipoNomina", "TipoNomina"},
}

// Options configures an Extractor.
type Options struct {
	Strategies []Strategy
	// Tolerance is the accepted |gross - deductions - net|. Nil means
	// DefaultTolerance; zero demands an exact match.
	Tolerance  *decimal.Decimal
	Catalog    Describer
	Logger     *slog.Logger
}

// Rejection is a payroll node whose draft failed validation.
type Rejection struct {
	Ordinal int
	Err     *apperrors.AppError
}

// Outcome is everything extracted from one document.
type Outcome struct {
	Recognized bool
	Strategy   string
	Records    []domain.EmployeeRecord
	Rejections []Rejection
}

// Extractor turns raw documents into employee records. It holds no
// per-document state and is safe for concurrent use.
type Extractor struct {
	strategies []Strategy
	tolerance  decimal.Decimal
	catalog    Describer
	validate   *validator.Validate
	logger     *slog.Logger
}

// New creates an extractor. Empty strategies and a nil tolerance fall back
// to the defaults.
func New(opts Options) *Extractor {
	strategies := opts.Strategies
	if len(strategies) == 0 {
		strategies, _ = Lookup(nil)
	}
	tolerance := DefaultTolerance
	if opts.Tolerance != nil {
		tolerance = *opts.Tolerance
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	v := validator.New()
	_ = v.RegisterValidation("civildate", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		return err == nil && !d.IsNegative()
	})

	return &Extractor{
		strategies: strategies,
		tolerance:  tolerance.Abs(),
		catalog:    opts.Catalog,
		validate:   v,
		logger:     logger.With(slog.String("component", "extractor")),
	}
}

// Extract parses doc and maps it with the first strategy that yields at
// least one valid record. A strategy that recognizes the document but
// rejects every payroll node hands over to the next one; when none succeeds
// the first recognizing strategy's rejections are reported. A document no
// strategy recognizes yields an empty, unrecognized Outcome. Only malformed
// XML is returned as an error.
func (e *Extractor) Extract(doc domain.RawDocument) (Outcome, error) {
	root, err := Parse(doc.Content)
	if err != nil {
		return Outcome{}, apperrors.NewParsingError("malformed XML document", err).
			WithContext("source", doc.Source)
	}

	var first *Outcome
	for _, s := range e.strategies {
		drafts, ok := s.Apply(root)
		if !ok {
			continue
		}

		out := e.apply(doc, s.Name, drafts)
		if len(out.Records) > 0 {
			return out, nil
		}
		if first == nil {
			first = &out
		}
		e.logger.Debug("strategy produced no valid records, trying next",
			slog.String("source", doc.Source),
			slog.String("strategy", s.Name),
			slog.Int("rejections", len(out.Rejections)))
	}
	if first != nil {
		return *first, nil
	}

	e.logger.Debug("document is not payroll", slog.String("source", doc.Source), slog.String("root", root.Local))
	return Outcome{}, nil
}

func (e *Extractor) apply(doc domain.RawDocument, strategy string, drafts []Draft) Outcome {
	out := Outcome{Recognized: true, Strategy: strategy}
	for _, d := range drafts {
		rec, rejErr := e.finalize(doc, strategy, d)
		if rejErr != nil {
			rejErr.WithContext("source", doc.Source).WithContext("ordinal", d.Ordinal)
			out.Rejections = append(out.Rejections, Rejection{Ordinal: d.Ordinal, Err: rejErr})
			e.logger.Debug("payroll node rejected",
				slog.String("source", doc.Source),
				slog.String("strategy", strategy),
				slog.Int("ordinal", d.Ordinal),
				slog.Any("fields", rejErr.Fields()))
			continue
		}
		out.Records = append(out.Records, rec)
	}
	return out
}

// finalize validates a draft and builds the canonical record from it.
func (e *Extractor) finalize(doc domain.RawDocument, strategy string, d Draft) (domain.EmployeeRecord, *apperrors.AppError) {
	d.EmployeeID = strings.TrimSpace(d.EmployeeID)
	d.EmployerID = strings.TrimSpace(d.EmployerID)

	if err := e.validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return domain.EmployeeRecord{}, apperrors.NewFieldValidationError(err.Error())
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return domain.EmployeeRecord{}, apperrors.NewFieldValidationError("payroll record failed validation", fields...)
	}

	start, _ := domain.ParseDate(d.PayPeriodStart)
	end, _ := domain.ParseDate(d.PayPeriodEnd)
	if end.Before(start) {
		return domain.EmployeeRecord{}, apperrors.NewFieldValidationError("pay period ends before it starts", "PayPeriodEnd")
	}

	gross := amount(d.GrossAmount)
	deductions := amount(d.DeductionsTotal)
	net := amount(d.NetAmount)
	if d.NetDerived {
		net = gross.Sub(deductions)
		if net.IsNegative() {
			return domain.EmployeeRecord{}, apperrors.NewFieldValidationError("deductions exceed gross amount", "NetAmount")
		}
	}

	delta := gross.Sub(deductions).Sub(net)
	rec := domain.EmployeeRecord{
		EmployeeID:         d.EmployeeID,
		EmployerID:         d.EmployerID,
		PayPeriodStart:     start,
		PayPeriodEnd:       end,
		GrossAmount:        gross,
		NetAmount:          net,
		DeductionsTotal:    deductions,
		DocumentSource:     doc.Source,
		Strategy:           strategy,
		ConsistencyWarning: delta.Abs().GreaterThan(e.tolerance),
		ConsistencyDelta:   delta,
	}
	return rec.WithExtras(e.describe(d.Extras)), nil
}

// describe adds catalog descriptions for coded attributes.
func (e *Extractor) describe(extras map[string]string) map[string]string {
	if e.catalog == nil {
		return extras
	}
	for _, prefix := range []string{"Empleado", "Nomina"} {
		for _, c := range codedAttributes {
			key := prefix + "." + c.attr
			code, ok := extras[key]
			if !ok || code == "" {
				continue
			}
			desc, _ := e.catalog.Describe(c.catalog, code)
			extras[key+"Descripcion"] = desc
		}
	}
	return extras
}

// amount parses an already validated monetary string; empty means zero.
func amount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	return decimal.RequireFromString(s)
}
