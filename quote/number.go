package quote

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	leadingDecimal = regexp.MustCompile(`^(?:\d+(?:\.\d*)?|\.\d+)`)
	nonDigit       = regexp.MustCompile(`\D`)
)

// ParseCurrency reads an amount written with "." as thousands separator and
// "," as decimal separator ("1.234,56"). Only the first comma becomes the
// decimal point and the longest numeric prefix is used, so trailing garbage
// is ignored rather than rejected. The boolean is false when no digits remain.
func ParseCurrency(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)

	num := leadingDecimal.FindString(s)
	if num == "" {
		return decimal.Zero, false
	}
	num = strings.TrimSuffix(num, ".")
	if strings.HasPrefix(num, ".") {
		num = "0" + num
	}

	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseInteger reads a whole count such as "15.000". Separators and any other
// non-digit characters are dropped before parsing.
func ParseInteger(s string) (int, bool) {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = nonDigit.ReplaceAllString(s, "")
	if s == "" {
		return 0, false
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
