package extractor

import (
	"regexp"
	"strings"
)

// vendorCandidateLines caps how far down the receipt the vendor search
// goes; business names print in the header.
const vendorCandidateLines = 5

var (
	digitsOnlyPattern   = regexp.MustCompile(`^[0-9]+$`)
	dateTimeLinePattern = regexp.MustCompile(`^[0-9/\-:]+$`)
)

// genericHeaderWords are header lines that name the document, not the
// business.
var genericHeaderWords = map[string]struct{}{
	"receipt": {},
	"invoice": {},
	"bill":    {},
}

// extractVendorName picks the best-guess business name from the receipt
// header: the longest of the first five non-blank lines after discarding
// too-short lines, bare numbers, date/time-looking lines, and generic
// document words. Ties keep the earliest line. Returns "" when nothing
// survives.
func extractVendorName(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lines = append(lines, trimmed)
		if len(lines) == vendorCandidateLines {
			break
		}
	}

	best := ""
	for _, line := range lines {
		if !isVendorCandidate(line) {
			continue
		}
		if len(line) > len(best) {
			best = line
		}
	}
	return best
}

func isVendorCandidate(line string) bool {
	if len(line) < 3 {
		return false
	}
	if digitsOnlyPattern.MatchString(line) {
		return false
	}
	if dateTimeLinePattern.MatchString(line) {
		return false
	}
	if _, generic := genericHeaderWords[strings.ToLower(line)]; generic {
		return false
	}
	return true
}
