// Package numeric parses locale-ambiguous amounts and dates from invoice
// text into canonical values.
package numeric

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyStripper = regexp.MustCompile(`[€$£\s\x{00a0}]`)

// ParseAmount parses a decimal amount that may use European (1.234,56) or
// American (1,234.56) separators. Currency symbols and whitespace are
// stripped first. When both separators appear the right-most one is the
// decimal separator; a lone comma within the last three characters is a
// decimal separator, otherwise a thousands separator. The boolean is false
// when the text does not parse; the value is then zero. It never returns an
// error to the caller.
func ParseAmount(text string) (decimal.Decimal, bool) {
	cleaned := currencyStripper.ReplaceAllString(strings.TrimSpace(text), "")
	if cleaned == "" {
		return decimal.Zero, false
	}

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			// European: 1.234,56
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			// American: 1,234.56
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case hasComma:
		if strings.Count(cleaned, ",") == 1 && strings.LastIndex(cleaned, ",") >= len(cleaned)-3 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseQuantity leniently parses a quantity cell, accepting either comma or
// dot as decimal separator. Unparseable input falls back to 1.0 so a line
// item is never dropped for a mangled quantity alone.
func ParseQuantity(text string) float64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), " ", "")
	cleaned = strings.Replace(cleaned, ",", ".", 1)
	q, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || q <= 0 {
		return 1.0
	}
	return q
}
