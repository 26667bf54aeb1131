package models

import "github.com/shopspring/decimal"

func init() {
	// State snapshots are rendered by the frontend; amounts go out as JSON
	// numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Status values for BankingState.
const (
	StatusIdle              = "idle"
	StatusConfirmingPayment = "confirming_payment"
	StatusConfirmingBill    = "confirming_bill"
	StatusCompleted         = "completed"
	StatusError             = "error"
)

// TransferDetails describes a bank transfer staged for confirmation.
// Instances are replaced wholesale, never partially mutated.
type TransferDetails struct {
	RecipientName string          `json:"recipient_name"`
	BankName      string          `json:"bank_name"`
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
	Reference     string          `json:"reference,omitempty"`
}

// BillDetails describes a bill payment staged for confirmation, typically
// extracted from a bill image by the vision tool.
type BillDetails struct {
	BillerName      string          `json:"biller_name"`
	AccountNumber   string          `json:"account_number"`
	Amount          decimal.Decimal `json:"amount"`
	DueDate         string          `json:"due_date,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
}

// BankingState is the session's mutable ledger. It is created at session
// start, mutated exclusively by the tool surface, and never persisted beyond
// the session lifetime.
type BankingState struct {
	Balance            decimal.Decimal  `json:"balance"`
	PendingTransfer    *TransferDetails `json:"pending_transfer"`
	PendingBill        *BillDetails     `json:"pending_bill"`
	TransactionHistory []string         `json:"transaction_history"`
	Status             string           `json:"status"`
}

// NewBankingState returns a fresh state with the given opening balance.
func NewBankingState(balance decimal.Decimal) *BankingState {
	return &BankingState{
		Balance:            balance,
		TransactionHistory: []string{},
		Status:             StatusIdle,
	}
}
