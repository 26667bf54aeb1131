package services

import (
	"github.com/shopspring/decimal"
	"github.com/username/jomkira/backend/src/models"
)

// TransactionService owns every mutation of a session's BankingState. All
// operations validate locally and report (ok, user-facing message); they
// never return errors past the tool boundary.
type TransactionService interface {
	PrepareTransfer(state *models.BankingState, details models.TransferDetails) (bool, string)
	ExecuteTransfer(state *models.BankingState) (bool, string)
	CancelTransfer(state *models.BankingState) bool

	PrepareBillPayment(state *models.BankingState, details models.BillDetails) (bool, string)
	ConfirmBillPayment(state *models.BankingState) (bool, string)
	CancelPayment(state *models.BankingState) bool

	GetBalance(state *models.BankingState) decimal.Decimal
}
