package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/username/jomkira/backend/src/agent"
	"github.com/username/jomkira/backend/src/agui"
	"github.com/username/jomkira/backend/src/logger"
	"github.com/username/jomkira/backend/src/models"
	"github.com/username/jomkira/backend/src/session"
	"github.com/username/jomkira/backend/src/utils"
)

// AGUIRunInput is the body of POST /agui/run. The message list schema is
// extensible; the interception middleware has already stripped the
// side-channel image fields before this handler sees the body.
type AGUIRunInput struct {
	ThreadID string           `json:"threadId"`
	RunID    string           `json:"runId"`
	Messages []aguiRunMessage `json:"messages"`
}

type aguiRunMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// AGUIHandler serves the AG-UI protocol route with streamed events.
type AGUIHandler struct {
	agent          *agent.Agent
	store          session.Store
	initialBalance decimal.Decimal
}

func NewAGUIHandler(a *agent.Agent, store session.Store, initialBalance decimal.Decimal) *AGUIHandler {
	return &AGUIHandler{
		agent:          a,
		store:          store,
		initialBalance: initialBalance,
	}
}

// HandleRun executes an agent run and streams AG-UI events back.
func (h *AGUIHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var input AGUIRunInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.SendJSONError(w, "invalid run input", http.StatusBadRequest)
		return
	}

	sess, _, err := h.store.GetOrCreate(input.ThreadID, h.initialBalance)
	if err != nil {
		utils.SendJSONError(w, "too many active sessions, try again later", http.StatusServiceUnavailable)
		return
	}

	sess.Lock()
	defer sess.Unlock()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	send := func(events ...agui.Event) {
		for _, event := range events {
			w.Write(agui.FormatSSE(event))
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	builder := agui.NewSSEBuilder()
	if input.RunID != "" {
		builder.RunID = input.RunID
	}
	send(builder.RunStarted())

	image := ImageFromContext(r.Context())
	result, err := h.agent.Run(r.Context(), sess.State, toChatMessages(input.Messages), image)
	if err != nil {
		// The stream must still terminate cleanly so the client does not
		// hang waiting for completion.
		logger.L.Error("AG-UI run failed", "sessionID", sess.ID, "error", err)
		send(agui.Event{"type": agui.EventRunError, "message": "The assistant is unavailable right now. Please try again."})
		send(builder.RunFinished())
		return
	}

	for _, call := range result.ToolCalls {
		send(builder.ToolCall(call.ToolName, call.Args)...)
	}
	send(builder.StateSnapshot(sess.State))
	if result.Message != "" {
		send(builder.TextMessage(result.Message)...)
	}
	send(builder.RunFinished())
}

// toChatMessages flattens AG-UI messages into role/content pairs, joining
// text parts of multimodal content lists.
func toChatMessages(msgs []aguiRunMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		content := ""
		switch v := m.Content.(type) {
		case string:
			content = v
		case []any:
			for _, item := range v {
				if part, ok := item.(map[string]any); ok {
					if text, ok := part["text"].(string); ok {
						content += text
					}
				}
			}
		}
		out = append(out, models.ChatMessage{Role: m.Role, Content: content})
	}
	return out
}
