package render

import (
	"strconv"

	"github.com/Rhymond/go-money"

	"github.com/Jurgenvdlecq/seatemail/model"
)

// missing is printed in emails where the quote did not contain a value.
const missing = "n.b."

var (
	euroFormat  = money.NewFormatter(2, ",", ".", "€", "$ 1")
	countFormat = money.NewFormatter(0, ",", ".", "", "1")
)

// Euro formats an amount the Dutch way: "€ 35.000,00".
func Euro(a *model.Amount) string {
	if a == nil {
		return missing
	}
	return euroFormat.Format(a.Cents())
}

// Count formats a whole number with "." grouping: "15.000".
func Count(n *int) string {
	if n == nil {
		return missing
	}
	return countFormat.Format(int64(*n))
}

// Text returns s or the missing marker.
func Text(s *string) string {
	if s == nil {
		return missing
	}
	return *s
}

// fieldAmount, fieldInt and fieldText produce form input values. Absent
// values leave the input empty.
func fieldAmount(a *model.Amount) string {
	if a == nil {
		return ""
	}
	return a.Decimal().String()
}

func fieldInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func fieldText(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
