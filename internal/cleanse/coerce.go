package cleanse

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// missingTokens are cell values that mean "no value" rather than a
// parse failure worth logging.
var missingTokens = map[string]bool{
	"":     true,
	"none": true,
	"null": true,
	"nan":  true,
	"na":   true,
	"n/a":  true,
	"-":    true,
}

// dateLayouts are tried in order by ParseDate. GetRows returns formatted
// cell text, so both ISO and spreadsheet display formats show up.
// Two-digit-year layouts go first: a four-digit ISO date fails them
// cleanly, while the reverse order would misparse "01-02-06" as year 1.
var dateLayouts = []string{
	"01-02-06",
	"01/02/06",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"2006/01/02",
	"02-Jan-06",
	"Jan 2, 2006",
}

// ParseFloat coerces a raw cell to a float64. Thousands separators are
// stripped, so "55,000" parses as 55000. Missing tokens and non-numeric
// text return NaN; callers decide between dropping and imputing.
func ParseFloat(raw string) float64 {
	cleaned := strings.TrimSpace(raw)
	if missingTokens[strings.ToLower(cleaned)] {
		return math.NaN()
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return math.NaN()
	}
	return value
}

// ParseInt coerces a raw cell to an int via ParseFloat, so "2.0" and
// "2,000" both work. The second return is false when the value is
// missing or not a whole number.
func ParseInt(raw string) (int, bool) {
	value := ParseFloat(raw)
	if math.IsNaN(value) {
		return 0, false
	}
	if value != math.Trunc(value) {
		return 0, false
	}
	return int(value), true
}

// ParseDate parses a raw cell permissively. Unparsable dates come back
// as the zero time, not an error; whether that drops the row depends on
// whether the owning entity needs the date downstream.
func ParseDate(raw string) time.Time {
	cleaned := strings.TrimSpace(raw)
	if missingTokens[strings.ToLower(cleaned)] {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t
		}
	}
	return time.Time{}
}

// IsMissing reports whether a coerced numeric value is missing.
func IsMissing(value float64) bool {
	return math.IsNaN(value)
}

// NormalizeText trims whitespace and title-cases a raw cell, so
// " east " and "EAST" both normalize to "East". Normalization is
// idempotent: applying it twice yields the same value as once.
func NormalizeText(raw string) string {
	return cases.Title(language.English).String(strings.TrimSpace(raw))
}

// NormalizeMonth coerces a raw month cell to the "YYYY-MM" form. Full
// dates truncate to their month; already-normalized values pass through;
// anything else comes back trimmed as-is.
func NormalizeMonth(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if t := ParseDate(cleaned); !t.IsZero() {
		return t.Format("2006-01")
	}
	if t, err := time.Parse("2006-01", cleaned); err == nil {
		return t.Format("2006-01")
	}
	if t, err := time.Parse("2006-1", cleaned); err == nil {
		return t.Format("2006-01")
	}
	return cleaned
}
