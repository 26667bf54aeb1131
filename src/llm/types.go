package llm

import "encoding/json"

// Message is one chat message in the OpenAI-compatible wire format. Content
// is either a plain string or a list of content parts (for vision input).
type Message struct {
	Role       string     `json:"role"`
	Content    any        `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ContentPart is one entry of a multimodal message content list.
type ContentPart struct {
	Type     string    `json:"type"` // "text" or "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL wraps an image reference; data: URIs carry inline base64 payloads.
type ImageURL struct {
	URL string `json:"url"`
}

// Tool declares a callable function to the model.
type Tool struct {
	Type     string       `json:"type"` // always "function"
	Function ToolFunction `json:"function"`
}

// ToolFunction is the function declaration inside a Tool.
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// ToolCall is the model's request to invoke a tool.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction carries the invoked function name and its JSON arguments.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ArgsMap decodes the call's JSON argument string.
func (f ToolCallFunction) ArgsMap() (map[string]any, error) {
	args := map[string]any{}
	if f.Arguments == "" {
		return args, nil
	}
	err := json.Unmarshal([]byte(f.Arguments), &args)
	return args, err
}

// ChatRequest is the chat-completions request payload.
type ChatRequest struct {
	Model      string    `json:"model"`
	Messages   []Message `json:"messages"`
	Tools      []Tool    `json:"tools,omitempty"`
	ToolChoice string    `json:"tool_choice,omitempty"`
}

// ChatChoice is one completion choice.
type ChatChoice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// ChatResponse is the chat-completions response payload.
type ChatResponse struct {
	ID      string       `json:"id"`
	Choices []ChatChoice `json:"choices"`
}

// ContentText returns the response content as a string, tolerating both the
// plain-string and content-part-list shapes.
func (m Message) ContentText() string {
	switch v := m.Content.(type) {
	case string:
		return v
	case []any:
		text := ""
		for _, item := range v {
			if part, ok := item.(map[string]any); ok {
				if t, ok := part["text"].(string); ok {
					text += t
				}
			}
		}
		return text
	}
	return ""
}
