package extractor

import (
	"regexp"
	"strings"

	"github.com/workpulse/receipt-extraction-service/internal/domain"
)

// ConfidenceWeights is the weight table for the overall confidence formula.
// Amount dominates because it is the only field the validity gate requires.
var ConfidenceWeights = struct {
	Amount  float64
	Date    float64
	Vendor  float64
	Payment float64
}{
	Amount:  0.5,
	Date:    0.2,
	Vendor:  0.2,
	Payment: 0.1,
}

// Per-field scores: the high value when the field's signal pattern is
// present in the text, the low value otherwise.
const (
	amountSignalScore    = 90
	amountNoSignalScore  = 60
	dateSignalScore      = 85
	dateNoSignalScore    = 50
	vendorSignalScore    = 80
	vendorNoSignalScore  = 40
	paymentSignalScore   = 85
	paymentNoSignalScore = 30
)

var (
	amountSignalPattern  = regexp.MustCompile(`\bTOTAL\b|\bAMOUNT\s+DUE\b|\bBALANCE\b`)
	dateSignalPattern    = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
	paymentSignalPattern = regexp.MustCompile(`VISA|MASTERCARD|MASTER\s+CARD|M/C|AMERICAN\s+EXPRESS|AMEX|DISCOVER|DEBIT|CREDIT|\bCASH\b|CHECK|CHEQUE`)
)

// scoreConfidence rates how receipt-like the text looks, field by field.
// The scores are deliberately decoupled from whether the extraction passes
// produced values: they measure the presence of the right context, so a
// receipt whose total keyword sits next to an unreadable number still
// scores 90 on amount. Downstream gating depends on this behavior.
func scoreConfidence(text string) domain.ConfidenceBreakdown {
	upper := strings.ToUpper(text)

	breakdown := domain.ConfidenceBreakdown{
		Amount:  amountNoSignalScore,
		Date:    dateNoSignalScore,
		Vendor:  vendorNoSignalScore,
		Payment: paymentNoSignalScore,
	}

	if amountSignalPattern.MatchString(upper) {
		breakdown.Amount = amountSignalScore
	}
	if dateSignalPattern.MatchString(text) {
		breakdown.Date = dateSignalScore
	}
	if firstLineLooksLikeHeader(text) {
		breakdown.Vendor = vendorSignalScore
	}
	if paymentSignalPattern.MatchString(upper) {
		breakdown.Payment = paymentSignalScore
	}

	return breakdown
}

// firstLineLooksLikeHeader reports whether the text has at least one
// non-blank line whose leading entry is longer than three characters.
func firstLineLooksLikeHeader(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		return len(trimmed) > 3
	}
	return false
}
