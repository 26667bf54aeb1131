// backend/src/security/validation/validators.go
package validation

import (
	"regexp"

	"github.com/shopspring/decimal"
	"github.com/username/jomkira/backend/src/config"
)

var accountNumberRe = regexp.MustCompile(config.AccountNumberPattern)

// ValidAccountNumber reports whether the account number is 10-16 digits with
// no separators.
func ValidAccountNumber(accountNumber string) bool {
	return accountNumberRe.MatchString(accountNumber)
}

// ValidTransferAmount reports whether the amount lies within the configured
// per-transfer bounds.
func ValidTransferAmount(amount decimal.Decimal) bool {
	if amount.Sign() <= 0 || amount.LessThan(config.MinTransferAmount) {
		return false
	}
	return !amount.GreaterThan(config.SingleTransferMax)
}
