// Package llm provides a minimal OpenAI-compatible chat-completions client.
// Alternative providers (Azure, Gemini, Claude via proxy) are reached by
// pointing the base URL at a compatible endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/username/jomkira/backend/src/logger"
)

// Client is the narrow contract the agent needs from a model provider:
// run messages (optionally with tool definitions) and get back a completion
// that may request tool invocations.
type Client interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// HTTPClient talks to an OpenAI-compatible chat-completions endpoint.
type HTTPClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a client for the given endpoint.
func NewHTTPClient(apiKey, baseURL string) *HTTPClient {
	return &HTTPClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// ChatCompletion sends the request and decodes the completion.
func (c *HTTPClient) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("llm client not configured: missing API key")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("building chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling model provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("model provider error %d: %s", resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decoding chat response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in model response")
	}

	logger.L.Debug("Chat completion round trip",
		"model", req.Model,
		"durationMs", time.Since(start).Milliseconds(),
		"toolCalls", len(chatResp.Choices[0].Message.ToolCalls))

	return &chatResp, nil
}
