package extractor

import "regexp"

// DefaultCurrency is returned when no currency signature matches.
const DefaultCurrency = "USD"

// currencySignature pairs a matcher with the ISO code it resolves to.
type currencySignature struct {
	pattern *regexp.Regexp
	code    string
}

// currencySignatures is the authoritative priority list. Signatures with
// distinctive symbols rank above the bare "$", so "R$" resolves to BRL even
// though it contains a dollar sign. First match wins regardless of where it
// appears in the text.
var currencySignatures = []currencySignature{
	{regexp.MustCompile(`(?i)€|\bEUR\b|\beuros?\b`), "EUR"},
	{regexp.MustCompile(`(?i)£|\bGBP\b|\bpounds?\b`), "GBP"},
	{regexp.MustCompile(`(?i)R\$|\bBRL\b|\breal\b|\breais\b`), "BRL"},
	{regexp.MustCompile(`(?i)C\$|\bCAD\b`), "CAD"},
	{regexp.MustCompile(`(?i)MX\$|\bMXN\b|\bpesos?\b`), "MXN"},
	{regexp.MustCompile(`(?i)¥|\bJPY\b|\byen\b`), "JPY"},
	{regexp.MustCompile(`(?i)\bCNY\b|\bRMB\b|\byuan\b`), "CNY"},
	{regexp.MustCompile(`(?i)₹|\bINR\b|\brupees?\b`), "INR"},
	{regexp.MustCompile(`(?i)A\$|\bAUD\b`), "AUD"},
	{regexp.MustCompile(`(?i)\$|\bUSD\b|\bdollars?\b`), "USD"},
}

// detectCurrency tests the raw text against the signature list and returns
// the first matching code, defaulting to USD.
func detectCurrency(text string) string {
	for _, sig := range currencySignatures {
		if sig.pattern.MatchString(text) {
			return sig.code
		}
	}
	return DefaultCurrency
}
