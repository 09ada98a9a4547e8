package extractor

import (
	"regexp"
	"strings"
)

// UnknownPaymentMethod is returned when no payment signature matches.
const UnknownPaymentMethod = "Unknown"

// paymentSignature pairs a matcher with its human-readable label.
type paymentSignature struct {
	pattern *regexp.Regexp
	label   string
}

// paymentSignatures is evaluated in priority order against the uppercased
// text: card brands first, then generic card types, then cash and check. A
// slip that prints both "VISA" and "DEBIT" reads as Visa.
var paymentSignatures = []paymentSignature{
	{regexp.MustCompile(`VISA`), "Visa"},
	{regexp.MustCompile(`MASTERCARD|MASTER\s+CARD|M/C`), "Mastercard"},
	{regexp.MustCompile(`AMERICAN\s+EXPRESS|AMEX`), "American Express"},
	{regexp.MustCompile(`DISCOVER`), "Discover"},
	{regexp.MustCompile(`DEBIT`), "Debit Card"},
	{regexp.MustCompile(`CREDIT`), "Credit Card"},
	{regexp.MustCompile(`\bCASH\b`), "Cash"},
	{regexp.MustCompile(`CHECK|CHEQUE`), "Check"},
}

// detectPaymentMethod returns the label of the first matching signature,
// or "Unknown".
func detectPaymentMethod(text string) string {
	upper := strings.ToUpper(text)
	for _, sig := range paymentSignatures {
		if sig.pattern.MatchString(upper) {
			return sig.label
		}
	}
	return UnknownPaymentMethod
}
