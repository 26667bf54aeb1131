package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/username/jomkira/backend/src/agent"
	"github.com/username/jomkira/backend/src/logger"
	"github.com/username/jomkira/backend/src/models"
	"github.com/username/jomkira/backend/src/session"
	"github.com/username/jomkira/backend/src/utils"
)

// Optional client headers.
const (
	headerPlatform  = "X-Platform"
	headerSessionID = "X-Session-Id"
)

// initSentinelMessage is returned for is_init requests; session creation
// only, the model is never invoked.
const initSentinelMessage = "Session initialized."

// ChatHandler serves the mobile chat surface: POST /api/chat.
type ChatHandler struct {
	agent          *agent.Agent
	store          session.Store
	initialBalance decimal.Decimal
}

func NewChatHandler(a *agent.Agent, store session.Store, initialBalance decimal.Decimal) *ChatHandler {
	return &ChatHandler{
		agent:          a,
		store:          store,
		initialBalance: initialBalance,
	}
}

// HandleChat runs one conversational turn for the caller's session.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sessionID := r.Header.Get(headerSessionID)
	platform := r.Header.Get(headerPlatform)

	balance := h.initialBalance
	if req.InitialBalance != nil && req.InitialBalance.Sign() >= 0 {
		balance = *req.InitialBalance
	}

	sess, created, err := h.store.GetOrCreate(sessionID, balance)
	if err != nil {
		if errors.Is(err, session.ErrStoreFull) {
			utils.SendJSONError(w, "too many active sessions, try again later", http.StatusServiceUnavailable)
			return
		}
		utils.SendJSONError(w, "failed to resolve session", http.StatusInternalServerError)
		return
	}
	if created {
		logger.L.Info("Chat session started", "sessionID", sess.ID, "platform", platform)
	}

	// Session creation/lookup only; fixed sentinel answer, no model call.
	if req.IsInit {
		utils.SendJSON(w, models.ChatResponse{
			Message:   models.ChatMessage{Role: "assistant", Content: initSentinelMessage},
			ToolCalls: []models.ToolCallResult{},
			State:     sess.State,
			SessionID: sess.ID,
		}, http.StatusOK)
		return
	}

	// One mutation in flight per session.
	sess.Lock()
	defer sess.Unlock()

	image := ImageFromContext(r.Context())
	result, err := h.agent.Run(r.Context(), sess.State, req.Messages, image)
	if err != nil {
		// Upstream model failure: apologetic message, state untouched.
		logger.L.Error("Agent run failed", "sessionID", sess.ID, "error", err)
		utils.SendJSON(w, models.ChatResponse{
			Message: models.ChatMessage{
				Role:    "assistant",
				Content: "I'm sorry, I'm having trouble reaching the service right now. Please try again in a moment.",
			},
			ToolCalls: []models.ToolCallResult{},
			State:     sess.State,
			SessionID: sess.ID,
		}, http.StatusOK)
		return
	}

	utils.SendJSON(w, models.ChatResponse{
		Message:   models.ChatMessage{Role: "assistant", Content: result.Message},
		ToolCalls: result.ToolCalls,
		State:     sess.State,
		SessionID: sess.ID,
	}, http.StatusOK)
}
