// Package agui implements the AG-UI wire protocol pieces the backend needs:
// SSE event construction and request-body extraction helpers.
package agui

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// AG-UI event types, uppercase wire format.
const (
	EventRunStarted         = "RUN_STARTED"
	EventRunFinished        = "RUN_FINISHED"
	EventRunError           = "RUN_ERROR"
	EventTextMessageStart   = "TEXT_MESSAGE_START"
	EventTextMessageContent = "TEXT_MESSAGE_CONTENT"
	EventTextMessageEnd     = "TEXT_MESSAGE_END"
	EventToolCallStart      = "TOOL_CALL_START"
	EventToolCallArgs       = "TOOL_CALL_ARGS"
	EventToolCallEnd        = "TOOL_CALL_END"
	EventStateSnapshot      = "STATE_SNAPSHOT"
	EventStateDelta         = "STATE_DELTA"
)

// Event is a single AG-UI event frame. Arbitrary keys keep the builder
// decoupled from the evolving protocol schema.
type Event map[string]any

// SSEBuilder builds AG-UI SSE event sequences for one run.
type SSEBuilder struct {
	RunID     string
	MessageID string
}

// NewSSEBuilder creates a builder with fresh run and message ids.
func NewSSEBuilder() *SSEBuilder {
	return &SSEBuilder{
		RunID:     uuid.NewString(),
		MessageID: uuid.NewString(),
	}
}

// RunStarted returns the run-start frame.
func (b *SSEBuilder) RunStarted() Event {
	return Event{"type": EventRunStarted, "threadId": b.RunID, "runId": b.RunID}
}

// RunFinished returns the run-finish frame.
func (b *SSEBuilder) RunFinished() Event {
	return Event{"type": EventRunFinished, "threadId": b.RunID, "runId": b.RunID}
}

// TextMessage returns the start/content/end frames for one assistant message.
func (b *SSEBuilder) TextMessage(message string) []Event {
	return []Event{
		{"type": EventTextMessageStart, "messageId": b.MessageID, "role": "assistant"},
		{"type": EventTextMessageContent, "messageId": b.MessageID, "delta": message},
		{"type": EventTextMessageEnd, "messageId": b.MessageID},
	}
}

// ToolCall returns the start/args/end frames for one tool invocation.
func (b *SSEBuilder) ToolCall(name string, args map[string]any) []Event {
	callID := uuid.NewString()
	argsJSON, err := json.Marshal(args)
	if err != nil {
		argsJSON = []byte("{}")
	}
	return []Event{
		{"type": EventToolCallStart, "toolCallId": callID, "toolCallName": name, "parentMessageId": b.MessageID},
		{"type": EventToolCallArgs, "toolCallId": callID, "delta": string(argsJSON)},
		{"type": EventToolCallEnd, "toolCallId": callID},
	}
}

// StateSnapshot returns a state-snapshot frame for the given state.
func (b *SSEBuilder) StateSnapshot(state any) Event {
	return Event{"type": EventStateSnapshot, "snapshot": state}
}

// BuildTextResponse builds the complete event sequence for a plain text
// response: run-started, message start/content/end, run-finished. This is
// the exact sequence emitted for guardrail blocks.
func (b *SSEBuilder) BuildTextResponse(message string) []Event {
	events := []Event{b.RunStarted()}
	events = append(events, b.TextMessage(message)...)
	return append(events, b.RunFinished())
}

// BuildErrorResponse builds the event sequence for a run error.
func (b *SSEBuilder) BuildErrorResponse(errorMessage string) []Event {
	return []Event{
		b.RunStarted(),
		{"type": EventRunError, "message": errorMessage},
		b.RunFinished(),
	}
}

// FormatSSE serializes a single event as an SSE data frame.
func FormatSSE(event Event) []byte {
	data, err := json.Marshal(event)
	if err != nil {
		data = []byte("{}")
	}
	return []byte(fmt.Sprintf("data: %s\n\n", data))
}
