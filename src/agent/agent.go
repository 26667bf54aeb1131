// Package agent runs the tool-calling loop between the model provider and
// the transaction state machine.
package agent

import (
	"context"
	"fmt"

	"github.com/username/jomkira/backend/src/llm"
	"github.com/username/jomkira/backend/src/logger"
	"github.com/username/jomkira/backend/src/models"
	"github.com/username/jomkira/backend/src/services"
)

// maxToolRounds bounds the tool-call loop so a misbehaving model cannot spin
// the agent forever.
const maxToolRounds = 8

// Agent orchestrates a single conversational run: it sends the conversation
// plus tool definitions to the model, executes requested tools against the
// session's banking state, and loops until the model produces a final text
// answer.
type Agent struct {
	client    llm.Client
	model     string
	appName   string
	txService services.TransactionService
}

// New creates an agent bound to a model client and the transaction service.
func New(client llm.Client, model, appName string, txService services.TransactionService) *Agent {
	return &Agent{
		client:    client,
		model:     model,
		appName:   appName,
		txService: txService,
	}
}

// RunResult is the outcome of one agent run.
type RunResult struct {
	// Message is the assistant's final text answer.
	Message string
	// ToolCalls records every tool invocation in order, for generative UI.
	ToolCalls []models.ToolCallResult
}

// Run executes one conversational turn. The image, if any, was extracted by
// the interception middleware and flows here explicitly so the vision tool
// can pick it up; it dies with this call.
func (a *Agent) Run(ctx context.Context, state *models.BankingState, history []models.ChatMessage, image *models.ImageData) (*RunResult, error) {
	messages := []llm.Message{
		{Role: "system", Content: SystemPrompt(a.appName)},
		{Role: "system", Content: DynamicContext(state)},
	}
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}

	result := &RunResult{ToolCalls: []models.ToolCallResult{}}

	for round := 0; round < maxToolRounds; round++ {
		resp, err := a.client.ChatCompletion(ctx, llm.ChatRequest{
			Model:    a.model,
			Messages: messages,
			Tools:    toolDefinitions(),
		})
		if err != nil {
			return nil, fmt.Errorf("agent run: %w", err)
		}

		choice := resp.Choices[0]
		if len(choice.Message.ToolCalls) == 0 {
			result.Message = choice.Message.ContentText()
			return result, nil
		}

		// Echo the assistant turn, then answer every requested tool call.
		messages = append(messages, llm.Message{
			Role:      "assistant",
			Content:   choice.Message.Content,
			ToolCalls: choice.Message.ToolCalls,
		})

		for _, call := range choice.Message.ToolCalls {
			args, err := call.Function.ArgsMap()
			if err != nil {
				logger.L.Warn("Malformed tool arguments from model",
					"tool", call.Function.Name, "error", err)
				args = map[string]any{}
			}

			output := a.dispatchTool(ctx, call.Function.Name, args, state, image)

			result.ToolCalls = append(result.ToolCalls, models.ToolCallResult{
				ToolName: call.Function.Name,
				Args:     args,
				Status:   "complete",
			})
			messages = append(messages, llm.Message{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    output,
			})
		}
	}

	logger.L.Warn("Agent hit tool round limit", "rounds", maxToolRounds)
	result.Message = "I'm having trouble completing that request. Please try again."
	return result, nil
}
