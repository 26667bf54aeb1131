package config

import "github.com/shopspring/decimal"

// SupportedBanks is the fixed whitelist for transfer destinations.
// Matching is case-sensitive and exact.
var SupportedBanks = []string{
	"Maybank",
	"CIMB Bank",
	"Public Bank",
	"RHB Bank",
	"Hong Leong Bank",
	"AmBank",
	"Bank Islam",
	"OCBC Bank",
	"Standard Chartered",
	"HSBC",
	"UOB",
	"Bank Rakyat",
	"Affin Bank",
	"Alliance Bank",
}

// SupportedBillers are the billers the assistant recognizes for bill payments.
var SupportedBillers = []string{
	"TNB",
	"Syabas",
	"Telekom Malaysia",
	"Unifi",
	"Astro",
	"Indah Water",
}

// Transaction limits in RM.
var (
	SingleTransferMax = decimal.NewFromInt(10000)
	DailyTransferMax  = decimal.NewFromInt(50000)
	MinTransferAmount = decimal.NewFromInt(1)
)

// Account number masking.
const (
	MaskVisibleDigits = 4
	MaskingChar       = "*"
)

// AccountNumberPattern is the strict recipient account format: 10-16 digits,
// no separators.
const AccountNumberPattern = `^\d{10,16}$`

// User-facing response templates. These are the only strings surfaced to the
// caller on validation and guardrail failures; they never carry raw account
// numbers or internal detail.
const (
	MsgInsufficientBalance  = "Insufficient balance. Your current balance is RM %s."
	MsgInvalidAmount        = "Please provide a valid amount between RM %s and RM %s."
	MsgUnsupportedBank      = "The bank '%s' is not in our supported list. Supported banks: Maybank, CIMB, Public Bank, RHB, Hong Leong, AmBank."
	MsgInvalidAccountNumber = "Invalid account number. Please provide a valid 10-16 digit account number."

	MsgMaliciousInput = "Your message contains invalid characters. Please rephrase your request."

	MsgTransferPending   = "You have a pending transfer. Please approve or decline it before starting a new one."
	MsgTransferPrepared  = "Transfer prepared successfully. Please review and confirm."
	MsgTransferCompleted = "Transfer completed successfully."
	MsgTransferCancelled = "Transfer has been cancelled."
	MsgNoPendingTransfer = "No pending transfer found."

	MsgBillPrepared     = "Bill payment prepared successfully. Please review and confirm."
	MsgBillCompleted    = "Bill payment completed successfully."
	MsgNoPendingBill    = "No pending bill payment found."
	MsgPaymentCancelled = "Pending payment has been cancelled."
	MsgInvalidBillAmount = "The bill amount must be greater than zero."
)

// IsSupportedBank reports whether the bank name is exactly in the whitelist.
func IsSupportedBank(name string) bool {
	for _, b := range SupportedBanks {
		if b == name {
			return true
		}
	}
	return false
}
