package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/jomkira/backend/src/agent"
	"github.com/username/jomkira/backend/src/llm"
	"github.com/username/jomkira/backend/src/models"
	"github.com/username/jomkira/backend/src/services"
	"github.com/username/jomkira/backend/src/session"
)

// stubLLM replays a fixed sequence of responses.
type stubLLM struct {
	responses []*llm.ChatResponse
	err       error
}

func (c *stubLLM) ChatCompletion(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
	if c.err != nil {
		return nil, c.err
	}
	if len(c.responses) == 0 {
		return nil, errors.New("no scripted response")
	}
	resp := c.responses[0]
	c.responses = c.responses[1:]
	return resp, nil
}

func assistantText(text string) *llm.ChatResponse {
	return &llm.ChatResponse{
		Choices: []llm.ChatChoice{{Message: llm.Message{Role: "assistant", Content: text}}},
	}
}

func newChatHandler(client llm.Client, store session.Store) *ChatHandler {
	a := agent.New(client, "test-model", "JomKira", services.NewTransactionService())
	return NewChatHandler(a, store, decimal.NewFromInt(1000))
}

func doChat(t *testing.T, h *ChatHandler, body, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("X-Session-Id", sessionID)
	}
	rec := httptest.NewRecorder()
	h.HandleChat(rec, req)
	return rec
}

func decodeChatResponse(t *testing.T, rec *httptest.ResponseRecorder) models.ChatResponse {
	t.Helper()
	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleChatInitSentinel(t *testing.T) {
	store := session.NewCacheStore(time.Minute, 10)
	h := newChatHandler(&stubLLM{}, store)

	rec := doChat(t, h, `{"is_init":true}`, "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeChatResponse(t, rec)
	assert.Equal(t, "assistant", resp.Message.Role)
	assert.Equal(t, "Session initialized.", resp.Message.Content)
	assert.NotEmpty(t, resp.SessionID)
	require.NotNil(t, resp.State)
	assert.True(t, resp.State.Balance.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, 1, store.Len())
}

func TestHandleChatInitWithCustombalance(t *testing.T) {
	store := session.NewCacheStore(time.Minute, 10)
	h := newChatHandler(&stubLLM{}, store)

	rec := doChat(t, h, `{"is_init":true,"initial_balance":2500}`, "")

	resp := decodeChatResponse(t, rec)
	assert.True(t, resp.State.Balance.Equal(decimal.NewFromInt(2500)))
}

func TestHandleChatRunsAgent(t *testing.T) {
	store := session.NewCacheStore(time.Minute, 10)
	h := newChatHandler(&stubLLM{responses: []*llm.ChatResponse{
		assistantText("Your balance is RM 1000.00."),
	}}, store)

	rec := doChat(t, h, `{"messages":[{"role":"user","content":"balance?"}]}`, "client-7")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeChatResponse(t, rec)
	assert.Equal(t, "Your balance is RM 1000.00.", resp.Message.Content)
	assert.Equal(t, "client-7", resp.SessionID)
	assert.NotNil(t, resp.ToolCalls)
}

func TestHandleChatSessionStatePersists(t *testing.T) {
	store := session.NewCacheStore(time.Minute, 10)
	h := newChatHandler(&stubLLM{responses: []*llm.ChatResponse{
		assistantText("ok"),
	}}, store)

	doChat(t, h, `{"is_init":true}`, "client-1")
	sess, ok := store.Get("client-1")
	require.True(t, ok)
	sess.State.Balance = decimal.NewFromInt(42)

	rec := doChat(t, h, `{"messages":[{"role":"user","content":"hi"}]}`, "client-1")

	resp := decodeChatResponse(t, rec)
	assert.True(t, resp.State.Balance.Equal(decimal.NewFromInt(42)))
	assert.Equal(t, 1, store.Len())
}

func TestHandleChatInvalidBody(t *testing.T) {
	store := session.NewCacheStore(time.Minute, 10)
	h := newChatHandler(&stubLLM{}, store)

	rec := doChat(t, h, `{bad json`, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, store.Len())
}

func TestHandleChatStoreFull(t *testing.T) {
	store := session.NewCacheStore(time.Minute, 1)
	h := newChatHandler(&stubLLM{}, store)

	doChat(t, h, `{"is_init":true}`, "first")
	rec := doChat(t, h, `{"is_init":true}`, "second")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleChatUpstreamFailure(t *testing.T) {
	store := session.NewCacheStore(time.Minute, 10)
	h := newChatHandler(&stubLLM{err: errors.New("provider down")}, store)

	doChat(t, h, `{"is_init":true}`, "client-9")
	rec := doChat(t, h, `{"messages":[{"role":"user","content":"hi"}]}`, "client-9")

	// Degraded answer, not an HTTP error; the session state is untouched.
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeChatResponse(t, rec)
	assert.Contains(t, resp.Message.Content, "trouble reaching the service")
	assert.True(t, resp.State.Balance.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, models.StatusIdle, resp.State.Status)
}

func TestHandleChatStateSerializesNumbers(t *testing.T) {
	store := session.NewCacheStore(time.Minute, 10)
	h := newChatHandler(&stubLLM{}, store)

	rec := doChat(t, h, `{"is_init":true}`, "")

	// Balance must be a JSON number, not a quoted string.
	assert.Contains(t, rec.Body.String(), `"balance":1000`)
}
