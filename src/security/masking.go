package security

import (
	"regexp"
	"strings"

	"github.com/username/jomkira/backend/src/config"
)

var nonDigit = regexp.MustCompile(`\D`)

// MaskAccountNumber masks an account number, preserving only the trailing
// visible digits. Non-digit characters are stripped first. Numbers at or
// below the visible threshold are too short to mask meaningfully and are
// returned cleaned but unmasked.
// Example: 1234567890 -> ******7890
func MaskAccountNumber(accountNumber string) string {
	if accountNumber == "" {
		return ""
	}

	cleanNumber := nonDigit.ReplaceAllString(accountNumber, "")

	if len(cleanNumber) <= config.MaskVisibleDigits {
		return cleanNumber
	}

	return strings.Repeat(config.MaskingChar, len(cleanNumber)-config.MaskVisibleDigits) +
		cleanNumber[len(cleanNumber)-config.MaskVisibleDigits:]
}
