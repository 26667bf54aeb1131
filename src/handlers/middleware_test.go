package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/jomkira/backend/src/guardrails"
	"github.com/username/jomkira/backend/src/models"
)

const testMaxBody = 1 << 20

func newMiddleware(checks ...guardrails.Check) *GuardrailMiddleware {
	return NewGuardrailMiddleware(guardrails.NewRegistry(checks...), testMaxBody)
}

// echoDownstream records exactly what the downstream handler observed.
type echoDownstream struct {
	called bool
	body   []byte
	image  *models.ImageData
}

func (e *echoDownstream) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.called = true
		e.body, _ = io.ReadAll(r.Body)
		e.image = ImageFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sseEventTypes(t *testing.T, raw string) []string {
	t.Helper()
	var types []string
	for _, line := range strings.Split(raw, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
		eventType, _ := event["type"].(string)
		types = append(types, eventType)
	}
	return types
}

func TestMaliciousInputBlockedWithSSE(t *testing.T) {
	downstream := &echoDownstream{}
	h := newMiddleware(guardrails.NewSanitizationCheck()).Handler(downstream.handler())

	body := `{"messages":[{"role":"user","content":"Pay this <script>alert('xss')</script>"}]}`
	rec := postJSON(t, h, "/api/chat", body)

	assert.False(t, downstream.called, "blocked request must never reach the handler")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	types := sseEventTypes(t, rec.Body.String())
	assert.Equal(t, []string{
		"RUN_STARTED",
		"TEXT_MESSAGE_START",
		"TEXT_MESSAGE_CONTENT",
		"TEXT_MESSAGE_END",
		"RUN_FINISHED",
	}, types)
	assert.Contains(t, rec.Body.String(), "invalid characters")
}

func TestHistoryDoesNotRetrigger(t *testing.T) {
	downstream := &echoDownstream{}
	h := newMiddleware(guardrails.NewSanitizationCheck()).Handler(downstream.handler())

	// The script tag lives in an earlier message; only the last user message
	// is evaluated.
	body := `{"messages":[
		{"role":"user","content":"<script>bad()</script>"},
		{"role":"assistant","content":"Your message contains invalid characters."},
		{"role":"user","content":"Check my balance please"}
	]}`
	rec := postJSON(t, h, "/api/chat", body)

	assert.True(t, downstream.called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCleanRequestForwardedVerbatim(t *testing.T) {
	downstream := &echoDownstream{}
	h := newMiddleware(guardrails.NewSanitizationCheck()).Handler(downstream.handler())

	body := `{"messages":[{"role":"user","content":"Transfer RM 50 to Ali"}]}`
	postJSON(t, h, "/api/chat", body)

	require.True(t, downstream.called)
	assert.Equal(t, body, string(downstream.body))
}

func TestNonPOSTPassesThrough(t *testing.T) {
	downstream := &echoDownstream{}
	h := newMiddleware(guardrails.NewSanitizationCheck()).Handler(downstream.handler())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, downstream.called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMalformedBodyTolerated(t *testing.T) {
	downstream := &echoDownstream{}
	h := newMiddleware(guardrails.NewSanitizationCheck()).Handler(downstream.handler())

	rec := postJSON(t, h, "/api/chat", `{not json at all`)

	assert.True(t, downstream.called, "unparseable body is forwarded, not rejected")
	assert.Equal(t, `{not json at all`, string(downstream.body))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEmptyBodyTolerated(t *testing.T) {
	downstream := &echoDownstream{}
	h := newMiddleware(guardrails.NewSanitizationCheck()).Handler(downstream.handler())

	postJSON(t, h, "/api/chat", "")

	assert.True(t, downstream.called)
	assert.Empty(t, downstream.body)
}

func TestImageExtractedIntoContext(t *testing.T) {
	downstream := &echoDownstream{}
	h := newMiddleware(guardrails.NewSanitizationCheck()).Handler(downstream.handler())

	body := `{"messages":[{"role":"user","content":"Pay this bill","_image":{"format":"png","bytes":"aGVsbG8="}}]}`
	postJSON(t, h, "/api/chat", body)

	require.True(t, downstream.called)
	require.NotNil(t, downstream.image)
	assert.Equal(t, "png", downstream.image.Format)
	assert.Equal(t, "aGVsbG8=", downstream.image.Bytes)
	// Non-agui routes keep the body untouched.
	assert.Equal(t, body, string(downstream.body))
}

func TestImageFieldsStrippedForAGUIRoute(t *testing.T) {
	downstream := &echoDownstream{}
	h := newMiddleware(guardrails.NewSanitizationCheck()).Handler(downstream.handler())

	body := `{"threadId":"t1","messages":[{"role":"user","content":"Pay this bill","_image":{"format":"jpeg","bytes":"aGVsbG8="}}]}`
	postJSON(t, h, "/agui/run", body)

	require.True(t, downstream.called)
	require.NotNil(t, downstream.image)
	assert.Equal(t, "jpeg", downstream.image.Format)

	var forwarded map[string]any
	require.NoError(t, json.Unmarshal(downstream.body, &forwarded))
	messages := forwarded["messages"].([]any)
	msg := messages[0].(map[string]any)
	assert.NotContains(t, msg, "_image")
	assert.Equal(t, "Pay this bill", msg["content"])
	assert.Equal(t, "t1", forwarded["threadId"])
}

func TestNoImageLeavesContextEmpty(t *testing.T) {
	downstream := &echoDownstream{}
	h := newMiddleware(guardrails.NewSanitizationCheck()).Handler(downstream.handler())

	postJSON(t, h, "/api/chat", `{"messages":[{"role":"user","content":"hello"}]}`)

	require.True(t, downstream.called)
	assert.Nil(t, downstream.image)
}

func TestGuardrailSeesRequestWithImage(t *testing.T) {
	downstream := &echoDownstream{}
	h := newMiddleware(guardrails.NewSanitizationCheck()).Handler(downstream.handler())

	// Malicious text alongside an image payload still gets blocked.
	body := `{"messages":[{"role":"user","content":"<script>steal()</script>","_image":{"format":"png","bytes":"aGVsbG8="}}]}`
	rec := postJSON(t, h, "/api/chat", body)

	assert.False(t, downstream.called)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
}

func TestEmptyRegistryForwardsEverything(t *testing.T) {
	downstream := &echoDownstream{}
	h := newMiddleware().Handler(downstream.handler())

	postJSON(t, h, "/api/chat", `{"messages":[{"role":"user","content":"<script>x</script>"}]}`)

	assert.True(t, downstream.called)
}
