package quote

import (
	"regexp"
	"strings"

	"github.com/Jurgenvdlecq/seatemail/model"
)

// Field names a value in a quote record. The names match the JSON keys.
type Field string

const (
	FieldPurchasePrice Field = "aanschafprijs"
	FieldLicensePlate  Field = "kenteken"
	FieldTradeInValue  Field = "inruilprijs"
	FieldTotalPayable  Field = "totaalTeBetalen"
	FieldMonthlyPrice  Field = "maandprijs"
	FieldKmPerYear     Field = "kmPerJaar"
	FieldTermMonths    Field = "looptijdMaanden"
	FieldDeductible    Field = "eigenRisico"
	FieldTires         Field = "banden"
)

// Kind says how the text captured by a rule becomes a value.
type Kind int

const (
	// KindCurrency parses capture group 1 with ParseCurrency.
	KindCurrency Kind = iota
	// KindInteger parses capture group 1 with ParseInteger.
	KindInteger
	// KindText takes capture group 1 trimmed.
	KindText
	// KindLastToken takes the last whitespace separated token of the whole match.
	KindLastToken
)

func (k Kind) String() string {
	switch k {
	case KindCurrency:
		return "currency"
	case KindInteger:
		return "integer"
	case KindText:
		return "text"
	case KindLastToken:
		return "last_token"
	}
	return "unknown"
}

// Rule describes how to find one field. Labels are tried in order and the
// first one that matches anywhere in the text wins, even if a later label
// occurs earlier in the document.
type Rule struct {
	Field  Field
	Kind   Kind
	Labels []*regexp.Regexp
}

// space is the whitespace class used in label patterns. PDF text often
// carries non-breaking spaces between a label and its value, which RE2's \s
// does not cover.
const space = `[\t\n\v\f\r \x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}]`

var spaceRun = regexp.MustCompile(space + `+`)

// label compiles a case-insensitive label pattern, widening \s to space.
func label(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + strings.ReplaceAll(pattern, `\s`, space))
}

var totalPayableLabels = []*regexp.Regexp{
	label(`Totaal te betalen\s*[:\-]?\s*€\s*([\d\.,]+)`),
	label(`Te betalen bedrag\s*[:\-]?\s*€\s*([\d\.,]+)`),
}

// LeaseRules extract a private lease offer.
var LeaseRules = []Rule{
	{
		Field:  FieldMonthlyPrice,
		Kind:   KindCurrency,
		Labels: []*regexp.Regexp{label(`Leaseprijs\s*(?:incl\.?\s*BTW)?\s*[:\-]?\s*€\s*([\d\.,]+)`)},
	},
	{
		Field:  FieldKmPerYear,
		Kind:   KindInteger,
		Labels: []*regexp.Regexp{label(`Km/jaar\s*[:\-]?\s*([\d\.,]+)`)},
	},
	{
		Field: FieldTermMonths,
		Kind:  KindInteger,
		Labels: []*regexp.Regexp{
			label(`Looptijd\s*in\s*maanden\s*[:\-]?\s*([\d\.,]+)`),
			label(`Looptijd\s*[:\-]?\s*([\d\.,]+)\s*maand`),
		},
	},
	{
		Field:  FieldDeductible,
		Kind:   KindCurrency,
		Labels: []*regexp.Regexp{label(`Eigen risico\s*[:\-]?\s*€\s*([\d\.,]+)`)},
	},
	{
		Field:  FieldTires,
		Kind:   KindLastToken,
		Labels: []*regexp.Regexp{label(`Banden(?:product)?\s*(?:Zomerbanden|Winterbanden|[A-Za-z0-9 ]+)`)},
	},
}

// TradeInRules extract a purchase with a trade-in vehicle.
var TradeInRules = []Rule{
	{
		Field:  FieldLicensePlate,
		Kind:   KindText,
		Labels: []*regexp.Regexp{label(`Kenteken\s*[:\-]?\s*([A-Z0-9\-]+)`)},
	},
	{
		Field:  FieldTradeInValue,
		Kind:   KindCurrency,
		Labels: []*regexp.Regexp{label(`Inruilprijs\s*[:\-]?\s*€\s*([\d\.,]+)`)},
	},
	{
		Field:  FieldTotalPayable,
		Kind:   KindCurrency,
		Labels: totalPayableLabels,
	},
}

// PurchaseRules extract an outright purchase. With nothing to deduct, the
// total payable is the purchase price.
var PurchaseRules = []Rule{
	{
		Field:  FieldPurchasePrice,
		Kind:   KindCurrency,
		Labels: totalPayableLabels,
	},
}

// RulesFor returns the rule table for a variant, or nil for an unknown one.
func RulesFor(v model.Variant) []Rule {
	switch v {
	case model.VariantPrivateLease:
		return LeaseRules
	case model.VariantTradeIn:
		return TradeInRules
	case model.VariantPurchase:
		return PurchaseRules
	}
	return nil
}

// find returns the submatches of the first label that matches.
func (r Rule) find(text string) []string {
	for _, re := range r.Labels {
		if m := re.FindStringSubmatch(text); m != nil {
			return m
		}
	}
	return nil
}

// Apply runs the rule against normalized text. On success the value is a
// decimal.Decimal, an int or a string depending on Kind; otherwise value is
// nil and reason says why.
func (r Rule) Apply(text string) (value any, reason DropReason) {
	m := r.find(text)
	if m == nil {
		return nil, ReasonLabelNotFound
	}

	switch r.Kind {
	case KindCurrency:
		if d, ok := ParseCurrency(group(m, 1)); ok {
			return d, ""
		}
	case KindInteger:
		if n, ok := ParseInteger(group(m, 1)); ok {
			return n, ""
		}
	case KindText:
		return strings.TrimSpace(group(m, 1)), ""
	case KindLastToken:
		return lastToken(m[0]), ""
	}
	return nil, ReasonParseFailed
}

func group(m []string, i int) string {
	if i < len(m) {
		return m[i]
	}
	return ""
}

// lastToken splits on whitespace runs and returns the final piece. A match
// that ends in whitespace yields an empty token.
func lastToken(s string) string {
	parts := spaceRun.Split(s, -1)
	return strings.TrimSpace(parts[len(parts)-1])
}
