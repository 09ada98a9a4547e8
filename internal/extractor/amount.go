package extractor

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// currencySymbolClass matches an optional currency marker between a keyword
// and its number. Multi-character symbols must come before the bare "$".
const currencySymbolClass = `(?:R\$|US\$|C\$|A\$|MX\$|[$€£¥₹])?`

// amountKeywordPatterns are tried in priority order; the word boundaries
// keep TOTAL from matching inside SUBTOTAL.
var amountKeywordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bTOTAL\b\s*:?\s*` + currencySymbolClass + `\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`),
	regexp.MustCompile(`\bAMOUNT\s+DUE\b\s*:?\s*` + currencySymbolClass + `\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`),
	regexp.MustCompile(`\bBALANCE(?:\s+DUE)?\b\s*:?\s*` + currencySymbolClass + `\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`),
	regexp.MustCompile(`\bGRAND\s+TOTAL\b\s*:?\s*` + currencySymbolClass + `\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`),
	regexp.MustCompile(`\bSUBTOTAL\b\s*:?\s*` + currencySymbolClass + `\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`),
}

// amountBeforeKeywordPattern catches layouts that print the number before
// the label, e.g. "45.99 TOTAL".
var amountBeforeKeywordPattern = regexp.MustCompile(`([0-9][0-9,]*\.[0-9]{2})\s*(?:TOTAL|AMOUNT\s+DUE)\b`)

// decimalNumberPattern matches money-shaped numbers anywhere in the text:
// digits with optional thousands separators and exactly two decimals.
var decimalNumberPattern = regexp.MustCompile(`\b[0-9]+(?:,[0-9]{3})*\.[0-9]{2}\b`)

// extractAmount finds the receipt total. Keyword-anchored matches win; when
// no label is present the largest two-decimal number in the text is taken,
// since receipts commonly print the total as the largest such figure.
// Returns nil when no positive amount can be parsed.
func extractAmount(text string) *float64 {
	upper := strings.ToUpper(text)

	for _, pattern := range amountKeywordPatterns {
		if matches := pattern.FindStringSubmatch(upper); len(matches) > 1 {
			if amount, ok := parseAmount(matches[1]); ok {
				return &amount
			}
		}
	}

	if matches := amountBeforeKeywordPattern.FindStringSubmatch(upper); len(matches) > 1 {
		if amount, ok := parseAmount(matches[1]); ok {
			return &amount
		}
	}

	return largestDecimalNumber(text)
}

// parseAmount strips separators from a captured numeric string and parses
// it, accepting only finite values greater than zero.
func parseAmount(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(raw, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, false
	}
	return amount, true
}

// largestDecimalNumber scans the original-case text for every two-decimal
// number and returns the maximum positive one, or nil if none exist.
func largestDecimalNumber(text string) *float64 {
	candidates := decimalNumberPattern.FindAllString(text, -1)
	if len(candidates) == 0 {
		return nil
	}

	var best float64
	found := false
	for _, candidate := range candidates {
		amount, ok := parseAmount(candidate)
		if !ok {
			continue
		}
		if !found || amount > best {
			best = amount
			found = true
		}
	}

	if !found {
		return nil
	}
	return &best
}
