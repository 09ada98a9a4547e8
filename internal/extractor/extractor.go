// Package extractor turns raw OCR text from photographed receipts into
// structured expense data. The pipeline is pure: no I/O, no shared state,
// deterministic for a fixed clock, and defined for every input string.
// Each pass fails soft (nil, empty string, or a default label) instead of
// returning an error.
package extractor

import (
	"math"
	"time"

	"github.com/workpulse/receipt-extraction-service/internal/domain"
)

// Extractor runs the extraction passes over OCR text. The clock is
// injectable so date-range validation is deterministic in tests.
type Extractor struct {
	now func() time.Time
}

// New creates an Extractor using the wall clock.
func New() *Extractor {
	return &Extractor{now: time.Now}
}

// NewWithClock creates an Extractor with a custom clock.
func NewWithClock(now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{now: now}
}

// Parse runs the five extraction passes and the confidence pass over the
// given text and assembles the results into a ParsedReceipt. The passes are
// independent; none of them can fail the call.
func (e *Extractor) Parse(text string) domain.ParsedReceipt {
	return domain.ParsedReceipt{
		Amount:        extractAmount(text),
		Currency:      detectCurrency(text),
		Date:          e.extractDate(text),
		VendorName:    extractVendorName(text),
		PaymentMethod: detectPaymentMethod(text),
		Confidence:    scoreConfidence(text),
	}
}

// IsValid reports whether the parsed receipt carries a usable amount. An
// amount is the only structurally required field: a receipt with no date,
// no vendor and an unknown payment method is still valid if a positive
// amount was found.
func IsValid(parsed domain.ParsedReceipt) bool {
	return parsed.Amount != nil && *parsed.Amount > 0
}

// OverallConfidence computes the weighted average of the four sub-scores,
// rounded to the nearest integer. It is a pure function of the confidence
// record and never re-inspects the source text.
func OverallConfidence(parsed domain.ParsedReceipt) int {
	c := parsed.Confidence
	weighted := float64(c.Amount)*ConfidenceWeights.Amount +
		float64(c.Date)*ConfidenceWeights.Date +
		float64(c.Vendor)*ConfidenceWeights.Vendor +
		float64(c.Payment)*ConfidenceWeights.Payment
	return int(math.Round(weighted))
}
