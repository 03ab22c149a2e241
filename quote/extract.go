package quote

import (
	"github.com/shopspring/decimal"

	"github.com/Jurgenvdlecq/seatemail/model"
)

// DropReason says why a field is missing from a record.
type DropReason string

const (
	ReasonLabelNotFound DropReason = "label_not_found"
	ReasonParseFailed   DropReason = "parse_failed"
)

// Drop records a field that was left empty.
type Drop struct {
	Field  Field      `json:"field"`
	Reason DropReason `json:"reason"`
}

// Fields holds extracted values keyed by field: decimal.Decimal for
// currency, int for counts and string for text.
type Fields map[Field]any

// Extract applies rules in order to normalized text.
func Extract(text string, rules []Rule) (Fields, []Drop) {
	fields := make(Fields, len(rules))
	var drops []Drop
	for _, r := range rules {
		v, reason := r.Apply(text)
		if v == nil {
			drops = append(drops, Drop{Field: r.Field, Reason: reason})
			continue
		}
		fields[r.Field] = v
	}
	return fields, drops
}

// Assemble builds the record for variant v from extracted fields. Missing
// fields stay nil. It returns nil for an unknown variant.
func Assemble(v model.Variant, f Fields) model.Record {
	switch v {
	case model.VariantPurchase:
		return &model.PurchaseQuote{
			PurchasePrice: f.amount(FieldPurchasePrice),
		}
	case model.VariantTradeIn:
		return &model.TradeInQuote{
			TradeIn: model.TradeInVehicle{
				LicensePlate: f.text(FieldLicensePlate),
				Value:        f.amount(FieldTradeInValue),
			},
			TotalPayable: f.amount(FieldTotalPayable),
		}
	case model.VariantPrivateLease:
		return &model.LeaseQuote{
			MonthlyPrice: f.amount(FieldMonthlyPrice),
			KmPerYear:    f.integer(FieldKmPerYear),
			TermMonths:   f.integer(FieldTermMonths),
			Deductible:   f.amount(FieldDeductible),
			Tires:        f.text(FieldTires),
		}
	}
	return nil
}

// Analyze runs the full pipeline on raw document text. The same input always
// yields an equal record.
func Analyze(raw string) (model.Record, []Drop) {
	text := Normalize(raw)
	variant := Classify(text)
	fields, drops := Extract(text, RulesFor(variant))
	return Assemble(variant, fields), drops
}

func (f Fields) amount(k Field) *model.Amount {
	if d, ok := f[k].(decimal.Decimal); ok {
		return model.NewAmount(d)
	}
	return nil
}

func (f Fields) integer(k Field) *int {
	if n, ok := f[k].(int); ok {
		return &n
	}
	return nil
}

func (f Fields) text(k Field) *string {
	if s, ok := f[k].(string); ok {
		return &s
	}
	return nil
}
