package models

import "github.com/shopspring/decimal"

// ChatMessage is the message format used by the mobile chat client.
type ChatMessage struct {
	Role    string `json:"role"` // user, assistant, system
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Messages       []ChatMessage    `json:"messages"`
	InitialBalance *decimal.Decimal `json:"initial_balance,omitempty"`
	IsInit         bool             `json:"is_init,omitempty"`
}

// ToolCallResult records one tool invocation for generative UI rendering.
type ToolCallResult struct {
	ToolName string         `json:"tool_name"`
	Args     map[string]any `json:"args"`
	Status   string         `json:"status"` // executing, complete
}

// ChatResponse is the body returned by POST /api/chat.
type ChatResponse struct {
	Message   ChatMessage      `json:"message"`
	ToolCalls []ToolCallResult `json:"tool_calls"`
	State     *BankingState    `json:"state"`
	SessionID string           `json:"session_id"`
}
