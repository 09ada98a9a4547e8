package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// datePattern pairs a regexp shape with the interpreter for its capture
// groups. Shapes are tried in order; only the first match of each shape is
// considered.
type datePattern struct {
	re    *regexp.Regexp
	build func(matches []string) (time.Time, bool)
}

var datePatterns = []datePattern{
	// 03/15/2024, 15-3-24
	{
		re:    regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\b`),
		build: buildNumericDate,
	},
	// 2024/03/15, 2024-3-15
	{
		re:    regexp.MustCompile(`\b(\d{4})[/-](\d{1,2})[/-](\d{1,2})\b`),
		build: buildISODate,
	},
	// Mar 15, 2024 / March 15 2024
	{
		re:    regexp.MustCompile(`(?i)\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+(\d{1,2}),?\s+(\d{4})\b`),
		build: buildMonthNameFirstDate,
	},
	// 15 Mar 2024 / 15 March 2024
	{
		re:    regexp.MustCompile(`(?i)\b(\d{1,2})\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+(\d{4})\b`),
		build: buildDayFirstDate,
	},
}

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// extractDate finds the receipt issue date. A candidate is rejected when it
// does not form a real calendar date, lies after "now", or lies more than a
// year in the past; rejection moves on to the next pattern shape. Returns
// nil when every shape is exhausted.
func (e *Extractor) extractDate(text string) *time.Time {
	now := e.now()
	earliest := now.AddDate(-1, 0, 0)

	for _, pattern := range datePatterns {
		matches := pattern.re.FindStringSubmatch(text)
		if matches == nil {
			continue
		}

		date, ok := pattern.build(matches)
		if !ok {
			continue
		}
		if date.After(now) || date.Before(earliest) {
			continue
		}
		return &date
	}

	return nil
}

// buildNumericDate interprets D/M/Y-shaped matches. OCR text from US
// receipts is overwhelmingly month-first, so the first component is read as
// the month and the two are swapped when that yields an impossible month.
func buildNumericDate(matches []string) (time.Time, bool) {
	first := atoiSafe(matches[1])
	second := atoiSafe(matches[2])
	year := normalizeYear(atoiSafe(matches[3]))

	month, day := first, second
	if month > 12 && day <= 12 {
		month, day = day, month
	}

	return makeDate(year, month, day)
}

func buildISODate(matches []string) (time.Time, bool) {
	year := atoiSafe(matches[1])
	month := atoiSafe(matches[2])
	day := atoiSafe(matches[3])
	return makeDate(year, month, day)
}

func buildMonthNameFirstDate(matches []string) (time.Time, bool) {
	month, ok := monthsByPrefix[strings.ToLower(matches[1])]
	if !ok {
		return time.Time{}, false
	}
	day := atoiSafe(matches[2])
	year := atoiSafe(matches[3])
	return makeDate(year, int(month), day)
}

func buildDayFirstDate(matches []string) (time.Time, bool) {
	day := atoiSafe(matches[1])
	month, ok := monthsByPrefix[strings.ToLower(matches[2])]
	if !ok {
		return time.Time{}, false
	}
	year := atoiSafe(matches[3])
	return makeDate(year, int(month), day)
}

// makeDate constructs a UTC date and verifies the components survived
// normalization, so Feb 30 and month 13 are rejected instead of rolling
// over.
func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

// normalizeYear maps two-digit years onto the 2000s.
func normalizeYear(year int) int {
	if year < 100 {
		return year + 2000
	}
	return year
}

func atoiSafe(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
