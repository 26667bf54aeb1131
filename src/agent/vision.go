package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/jomkira/backend/src/llm"
	"github.com/username/jomkira/backend/src/logger"
	"github.com/username/jomkira/backend/src/models"
)

const billAnalysisPrompt = `You are a bill image analyzer for a Malaysian banking app.
Your task is to extract payment details from bill images.

When analyzing a bill image:
1. Identify the biller (e.g., TNB, Syabas, TM, Astro, etc.)
2. Extract the account number
3. Extract the amount due
4. Extract the due date if visible
5. Extract any reference number

If the image is not a bill or is unreadable, respond with a JSON object containing:
- is_valid_bill: false
- error_message: explanation of why the image couldn't be analyzed

If you successfully extract bill details, respond with a JSON object containing:
- biller_name: string
- account_number: string
- amount: number
- due_date: string or null
- reference_number: string or null
- is_valid_bill: true

IMPORTANT: Respond ONLY with a valid JSON object, no other text.`

// visionBill is the structured suggestion parsed from the vision model's
// output. It is untrusted input; the prepared bill is still surfaced on a
// confirmation card before any money moves.
type visionBill struct {
	BillerName      string          `json:"biller_name"`
	AccountNumber   string          `json:"account_number"`
	Amount          decimal.Decimal `json:"amount"`
	DueDate         string          `json:"due_date"`
	ReferenceNumber string          `json:"reference_number"`
	IsValidBill     bool            `json:"is_valid_bill"`
	ErrorMessage    string          `json:"error_message"`
}

var visionMIMETypes = map[string]string{
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
}

// analyzeBillImage runs a one-shot vision call against the configured model
// and returns either the extracted bill JSON (for the model to chain into
// prepare_bill_payment) or a user-facing explanation.
func (a *Agent) analyzeBillImage(ctx context.Context, image *models.ImageData, description string) string {
	if image == nil || image.Bytes == "" {
		return a.analyzeBillDescription(description)
	}

	mediaType, ok := visionMIMETypes[image.Format]
	if !ok {
		mediaType = "image/jpeg"
	}

	logger.L.Info("Analyzing bill image", "format", image.Format, "bytesLen", len(image.Bytes))

	resp, err := a.client.ChatCompletion(ctx, llm.ChatRequest{
		Model: a.model,
		Messages: []llm.Message{
			{Role: "system", Content: billAnalysisPrompt},
			{Role: "user", Content: []llm.ContentPart{
				{Type: "text", Text: "Please analyze this bill image and extract the payment details."},
				{Type: "image_url", ImageURL: &llm.ImageURL{
					URL: fmt.Sprintf("data:%s;base64,%s", mediaType, image.Bytes),
				}},
			}},
		},
	})
	if err != nil {
		logger.L.Error("Vision analysis failed", "error", err)
		return "I encountered an error while analyzing the image. Please try uploading a different image."
	}

	responseText := resp.Choices[0].Message.ContentText()

	var bill visionBill
	if err := json.Unmarshal([]byte(stripMarkdownFences(responseText)), &bill); err != nil {
		logger.L.Warn("Failed to parse vision JSON response", "error", err)
		return fmt.Sprintf("I analyzed the image. Here's what I found:\n\n%s", responseText)
	}

	if !bill.IsValidBill {
		reason := bill.ErrorMessage
		if reason == "" {
			reason = "Please upload a clearer image of your bill."
		}
		return fmt.Sprintf("I couldn't extract bill details from this image. %s", reason)
	}

	logger.L.Info("Bill details extracted",
		"biller", bill.BillerName,
		"amount", bill.Amount.StringFixed(2))

	// Return the raw JSON so the model can chain prepare_bill_payment.
	out, err := json.Marshal(bill)
	if err != nil {
		return "I couldn't process the extracted bill details. Please try again."
	}
	return string(out)
}

// analyzeBillDescription is the fallback when no image payload is present.
func (a *Agent) analyzeBillDescription(description string) string {
	if description != "" {
		desc := strings.ToLower(description)
		switch {
		case strings.Contains(desc, "tnb") || strings.Contains(desc, "tenaga"):
			return "I've detected a TNB bill from your description. Please upload the actual bill image for accurate extraction."
		case strings.Contains(desc, "syabas") || strings.Contains(desc, "water"):
			return "I've detected a water bill from your description. Please upload the actual bill image for accurate extraction."
		}
	}
	return "I couldn't find any image to analyze. Please upload a clear image of your bill."
}

// stripMarkdownFences removes a surrounding ``` or ```json code fence, which
// vision models frequently wrap around the requested JSON.
func stripMarkdownFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	parts := strings.SplitN(trimmed, "```", 3)
	if len(parts) < 2 {
		return trimmed
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}
