// backend/src/security/validation/sanitizers.go
package validation

import "regexp"

type piiPattern struct {
	re          *regexp.Regexp
	replacement string
}

// Patterns to scrub before any PII-bearing text reaches the logs. Later
// patterns see already-redacted text; the set is chosen not to overlap.
var piiPatterns = []piiPattern{
	// Malaysian IC number (YYMMDD-SS-NNNN)
	{regexp.MustCompile(`\b\d{6}-\d{2}-\d{4}\b`), "[IC_REDACTED]"},
	// Account numbers (8-16 digits)
	{regexp.MustCompile(`\b\d{8,16}\b`), "[ACCT_REDACTED]"},
	// Phone numbers (+60...)
	{regexp.MustCompile(`\+60\d{9,10}`), "[PHONE_REDACTED]"},
	// Email addresses
	{regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`), "[EMAIL_REDACTED]"},
}

// SanitizePII removes personally identifiable information from text before
// it is written to logs. It is never applied to user-facing responses or
// session state.
func SanitizePII(text string) string {
	result := text
	for _, p := range piiPatterns {
		result = p.re.ReplaceAllString(result, p.replacement)
	}
	return result
}
