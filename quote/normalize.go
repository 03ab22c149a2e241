package quote

import "regexp"

var lineBreak = regexp.MustCompile(`\r\n|\r|\n`)

// Normalize replaces every line break (CRLF, CR or LF) with a single space so
// a label and its value can be matched even when the PDF put them on
// different lines.
func Normalize(raw string) string {
	return lineBreak.ReplaceAllString(raw, " ")
}
