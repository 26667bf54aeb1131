package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/username/jomkira/backend/src/config"
	"github.com/username/jomkira/backend/src/logger"
	"github.com/username/jomkira/backend/src/models"
	"github.com/username/jomkira/backend/src/security"
	"github.com/username/jomkira/backend/src/security/validation"
)

type transactionService struct{}

// NewTransactionService creates the transaction state machine service.
func NewTransactionService() TransactionService {
	return &transactionService{}
}

// PrepareTransfer validates the transfer details and stages them for user
// confirmation. Validation order: amount bounds, account format, bank
// whitelist, balance. Preparation is non-destructive; the balance is not
// touched until the transfer is confirmed. A transfer cannot be prepared
// while another is already pending.
func (s *transactionService) PrepareTransfer(state *models.BankingState, details models.TransferDetails) (bool, string) {
	if state.PendingTransfer != nil {
		logger.L.Warn("Transfer preparation rejected: another transfer is pending")
		return false, config.MsgTransferPending
	}

	if details.Amount.Sign() <= 0 || details.Amount.LessThan(config.MinTransferAmount) {
		logger.L.Warn("Transfer validation failed: invalid amount",
			"amount", details.Amount.StringFixed(2))
		return false, invalidAmountMessage()
	}

	if details.Amount.GreaterThan(config.SingleTransferMax) {
		logger.L.Warn("Transfer validation failed: amount exceeds single transfer limit",
			"amount", details.Amount.StringFixed(2),
			"limit", config.SingleTransferMax.StringFixed(2))
		return false, invalidAmountMessage()
	}

	if !validation.ValidAccountNumber(details.AccountNumber) {
		logger.L.Warn("Transfer validation failed: invalid account number format",
			"account", security.MaskAccountNumber(details.AccountNumber))
		return false, config.MsgInvalidAccountNumber
	}

	if !config.IsSupportedBank(details.BankName) {
		logger.L.Warn("Transfer validation failed: unsupported bank", "bank", details.BankName)
		return false, fmt.Sprintf(config.MsgUnsupportedBank, details.BankName)
	}

	if state.Balance.LessThan(details.Amount) {
		logger.L.Warn("Transfer validation failed: insufficient funds",
			"available", state.Balance.StringFixed(2),
			"requested", details.Amount.StringFixed(2),
			"recipient", validation.SanitizePII(details.RecipientName))
		return false, fmt.Sprintf(config.MsgInsufficientBalance, state.Balance.StringFixed(2))
	}

	logger.L.Info("Transfer prepared",
		"recipient", validation.SanitizePII(details.RecipientName),
		"bank", details.BankName,
		"amount", details.Amount.StringFixed(2),
		"account", security.MaskAccountNumber(details.AccountNumber))

	state.PendingTransfer = &details
	state.Status = models.StatusConfirmingPayment
	return true, config.MsgTransferPrepared
}

// ExecuteTransfer debits the pending transfer after user confirmation. The
// balance is re-checked against its current value; it may have changed since
// preparation. On insufficient funds the pending transfer is kept intact for
// retry and the status is set to error.
func (s *transactionService) ExecuteTransfer(state *models.BankingState) (bool, string) {
	if state.PendingTransfer == nil {
		logger.L.Warn("Transfer execution skipped: no pending transfer")
		return false, config.MsgNoPendingTransfer
	}

	transfer := state.PendingTransfer

	if state.Balance.LessThan(transfer.Amount) {
		logger.L.Error("Transfer execution failed: insufficient balance",
			"current", state.Balance.StringFixed(2),
			"required", transfer.Amount.StringFixed(2))
		state.Status = models.StatusError
		return false, fmt.Sprintf(config.MsgInsufficientBalance, state.Balance.StringFixed(2))
	}

	state.Balance = state.Balance.Sub(transfer.Amount)

	maskedAccount := security.MaskAccountNumber(transfer.AccountNumber)
	state.TransactionHistory = append(state.TransactionHistory, fmt.Sprintf(
		"Transferred RM %s to %s (%s - %s)",
		transfer.Amount.StringFixed(2), transfer.RecipientName, transfer.BankName, maskedAccount))

	state.PendingTransfer = nil
	state.Status = models.StatusCompleted

	logger.L.Info("Transfer completed",
		"recipient", validation.SanitizePII(transfer.RecipientName),
		"amount", transfer.Amount.StringFixed(2),
		"newBalance", state.Balance.StringFixed(2))

	return true, config.MsgTransferCompleted
}

// CancelTransfer clears any pending transfer and resets the status to idle.
// It always succeeds, including when nothing is pending.
func (s *transactionService) CancelTransfer(state *models.BankingState) bool {
	state.PendingTransfer = nil
	state.Status = models.StatusIdle
	logger.L.Info("Pending transfer cleared by user")
	return true
}

// PrepareBillPayment stages a bill payment for confirmation. Biller and
// account come from vision extraction and are surfaced on the confirmation
// card for the user to verify; only the amount is validated here.
func (s *transactionService) PrepareBillPayment(state *models.BankingState, details models.BillDetails) (bool, string) {
	if details.Amount.Sign() <= 0 {
		logger.L.Warn("Bill preparation failed: non-positive amount",
			"amount", details.Amount.StringFixed(2))
		return false, config.MsgInvalidBillAmount
	}

	state.PendingBill = &details
	state.Status = models.StatusConfirmingBill

	logger.L.Info("Bill payment prepared",
		"biller", details.BillerName,
		"amount", details.Amount.StringFixed(2),
		"account", security.MaskAccountNumber(details.AccountNumber))

	return true, config.MsgBillPrepared
}

// ConfirmBillPayment debits the pending bill after user confirmation.
func (s *transactionService) ConfirmBillPayment(state *models.BankingState) (bool, string) {
	if state.PendingBill == nil {
		logger.L.Warn("Bill confirmation skipped: no pending bill")
		return false, config.MsgNoPendingBill
	}

	bill := state.PendingBill

	if state.Balance.LessThan(bill.Amount) {
		logger.L.Error("Bill payment failed: insufficient balance",
			"current", state.Balance.StringFixed(2),
			"required", bill.Amount.StringFixed(2))
		state.Status = models.StatusError
		return false, fmt.Sprintf(config.MsgInsufficientBalance, state.Balance.StringFixed(2))
	}

	state.Balance = state.Balance.Sub(bill.Amount)
	state.TransactionHistory = append(state.TransactionHistory, fmt.Sprintf(
		"Bill Payment: RM %s to %s (Account: %s)",
		bill.Amount.StringFixed(2), bill.BillerName, security.MaskAccountNumber(bill.AccountNumber)))

	state.PendingBill = nil
	state.Status = models.StatusCompleted

	logger.L.Info("Bill payment completed",
		"biller", bill.BillerName,
		"newBalance", state.Balance.StringFixed(2))

	return true, config.MsgBillCompleted
}

// CancelPayment clears whichever pending transaction exists, transfer or
// bill, and resets the status to idle. Always succeeds.
func (s *transactionService) CancelPayment(state *models.BankingState) bool {
	if state.PendingTransfer != nil {
		s.CancelTransfer(state)
	}
	if state.PendingBill != nil {
		state.PendingBill = nil
		logger.L.Info("Pending bill payment cleared by user")
	}
	state.Status = models.StatusIdle
	return true
}

// GetBalance returns the current balance.
func (s *transactionService) GetBalance(state *models.BankingState) decimal.Decimal {
	return state.Balance
}

func invalidAmountMessage() string {
	return fmt.Sprintf(config.MsgInvalidAmount,
		config.MinTransferAmount.StringFixed(2),
		config.SingleTransferMax.StringFixed(2))
}
