package numeric

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Numeric formats tried in order: ISO first, then day-first European.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
}

var spanishMonths = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June,
	"julio": time.July, "agosto": time.August, "septiembre": time.September,
	"octubre": time.October, "noviembre": time.November, "diciembre": time.December,
}

var longFormPattern = regexp.MustCompile(`(?i)(\d{1,2})\s+de\s+([a-záéíóúñ]+)\s+de\s+(\d{4})`)

// ParseDate parses an invoice date trying ISO, day-first numeric formats and
// the Spanish long form ("15 de enero de 2024"), in that order. The boolean
// is false when every format fails; callers must treat that as "unresolved"
// rather than substituting the current date.
func ParseDate(text string) (time.Time, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, false
	}

	for _, layout := range dateFormats {
		if d, err := time.Parse(layout, trimmed); err == nil {
			return d, true
		}
	}

	if m := longFormPattern.FindStringSubmatch(trimmed); m != nil {
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		month, ok := spanishMonths[strings.ToLower(m[2])]
		if ok && day >= 1 && day <= 31 {
			d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
			// Reject overflow like "31 de febrero".
			if d.Day() == day && d.Month() == month {
				return d, true
			}
		}
	}

	return time.Time{}, false
}
