package agent

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/username/jomkira/backend/src/llm"
	"github.com/username/jomkira/backend/src/logger"
	"github.com/username/jomkira/backend/src/models"
)

// Tool names exposed to the model.
const (
	toolPrepareTransfer    = "prepare_transfer"
	toolConfirmTransfer    = "confirm_transfer"
	toolCancelTransfer     = "cancel_transfer"
	toolPrepareBillPayment = "prepare_bill_payment"
	toolConfirmBillPayment = "confirm_bill_payment"
	toolCancelPayment      = "cancel_payment"
	toolGetBalance         = "get_balance"
	toolAnalyzeBillImage   = "analyze_bill_image"
)

// toolDefinitions declares the tool surface to the model.
func toolDefinitions() []llm.Tool {
	return []llm.Tool{
		function(toolPrepareTransfer,
			"Prepare a bank transfer to a person. This sets the pending transaction in the state for user confirmation. Use this for person-to-person fund transfers.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"recipient_name": map[string]any{"type": "string", "description": "Name of the recipient"},
					"bank_name":      map[string]any{"type": "string", "description": "Name of the recipient's bank"},
					"account_number": map[string]any{"type": "string", "description": "Recipient's account number (10-16 digits)"},
					"amount":         map[string]any{"type": "number", "description": "Amount to transfer in RM"},
					"reference":      map[string]any{"type": "string", "description": "Optional payment reference"},
				},
				"required": []string{"recipient_name", "bank_name", "account_number", "amount"},
			}),
		function(toolConfirmTransfer,
			"Execute the pending transfer after user confirmation.", objectSchema()),
		function(toolCancelTransfer,
			"Cancel the pending transfer.", objectSchema()),
		function(toolPrepareBillPayment,
			"Prepare a bill payment to a biller (e.g., TNB, Syabas, TM, Astro). This sets the pending bill in the state for user confirmation. Use this after analyzing a bill image with analyze_bill_image.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"biller_name":      map[string]any{"type": "string", "description": "Name of the biller"},
					"account_number":   map[string]any{"type": "string", "description": "Account number on the bill"},
					"amount":           map[string]any{"type": "number", "description": "Amount to be paid in RM"},
					"due_date":         map[string]any{"type": "string", "description": "Due date if available"},
					"reference_number": map[string]any{"type": "string", "description": "Reference number on the bill"},
				},
				"required": []string{"biller_name", "account_number", "amount"},
			}),
		function(toolConfirmBillPayment,
			"Execute the pending bill payment after user confirmation.", objectSchema()),
		function(toolCancelPayment,
			"Cancel the pending transfer or bill payment.", objectSchema()),
		function(toolGetBalance,
			"Get the current account balance.", objectSchema()),
		function(toolAnalyzeBillImage,
			"Analyze a bill image to extract payment details. The image uploaded by the user is provided to this tool automatically.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"image_description": map[string]any{"type": "string", "description": "Text description of the image, used as a fallback when no image is attached"},
				},
			}),
	}
}

func function(name, description string, parameters map[string]any) llm.Tool {
	return llm.Tool{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

func objectSchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

// dispatchTool executes one tool call against the session state and returns
// the textual result handed back to the model. Tool failures are expected
// and surface as templated messages, never as errors.
func (a *Agent) dispatchTool(ctx context.Context, name string, args map[string]any, state *models.BankingState, image *models.ImageData) string {
	logger.L.Info("Executing tool", "tool", name)

	switch name {
	case toolPrepareTransfer:
		details := models.TransferDetails{
			RecipientName: stringArg(args, "recipient_name"),
			BankName:      stringArg(args, "bank_name"),
			AccountNumber: stringArg(args, "account_number"),
			Amount:        decimalArg(args, "amount"),
			Reference:     stringArg(args, "reference"),
		}
		ok, message := a.txService.PrepareTransfer(state, details)
		if !ok {
			logger.L.Warn("Transfer preparation failed", "reason", message)
		}
		return message

	case toolConfirmTransfer:
		ok, message := a.txService.ExecuteTransfer(state)
		if !ok {
			logger.L.Warn("Transfer confirmation failed", "reason", message)
		}
		return message

	case toolCancelTransfer:
		a.txService.CancelTransfer(state)
		return "Transfer has been cancelled."

	case toolPrepareBillPayment:
		details := models.BillDetails{
			BillerName:      stringArg(args, "biller_name"),
			AccountNumber:   stringArg(args, "account_number"),
			Amount:          decimalArg(args, "amount"),
			DueDate:         stringArg(args, "due_date"),
			ReferenceNumber: stringArg(args, "reference_number"),
		}
		ok, message := a.txService.PrepareBillPayment(state, details)
		if !ok {
			logger.L.Warn("Bill preparation failed", "reason", message)
		}
		return message

	case toolConfirmBillPayment:
		ok, message := a.txService.ConfirmBillPayment(state)
		if !ok {
			logger.L.Warn("Bill confirmation failed", "reason", message)
		}
		return message

	case toolCancelPayment:
		a.txService.CancelPayment(state)
		return "Pending payment has been cancelled."

	case toolGetBalance:
		return a.txService.GetBalance(state).StringFixed(2)

	case toolAnalyzeBillImage:
		return a.analyzeBillImage(ctx, image, stringArg(args, "image_description"))
	}

	logger.L.Warn("Model requested unknown tool", "tool", name)
	return "Unknown tool: " + name
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// decimalArg tolerates the model sending amounts as JSON numbers or strings.
func decimalArg(args map[string]any, key string) decimal.Decimal {
	switch v := args[key].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	case json.Number:
		if d, err := decimal.NewFromString(v.String()); err == nil {
			return d
		}
	}
	return decimal.Zero
}
