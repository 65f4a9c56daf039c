// Package assistant runs the shopping agent: a tool-calling LLM loop
// over per-session conversation history, with the shopping tools bound
// to each session.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/cart"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/conversation"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/llm"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/state"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/tools"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/types"
)

// ToolBinder builds a tool registry bound to one session. Binding is
// explicit so no tool ever acts on an ambient "current" session.
type ToolBinder interface {
	Bind(sessionID string) *tools.Registry
}

// Agent orchestrates conversations with the LLM.
type Agent struct {
	provider  llm.Provider
	convStore conversation.Store
	tools     ToolBinder
	state     *state.Store
	carts     cart.Store
	config    Config
	logger    *slog.Logger
}

// Option configures the agent
type Option func(*Agent)

// WithConfig sets the agent config
func WithConfig(cfg Config) Option {
	return func(a *Agent) { a.config = cfg }
}

// WithLogger sets the agent logger
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

// New creates a new agent
func New(
	provider llm.Provider,
	convStore conversation.Store,
	binder ToolBinder,
	stateStore *state.Store,
	carts cart.Store,
	opts ...Option,
) *Agent {
	a := &Agent{
		provider:  provider,
		convStore: convStore,
		tools:     binder,
		state:     stateStore,
		carts:     carts,
		config:    DefaultConfig(),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Chat handles one user message: it loads the session's conversation,
// runs the agent loop, and persists the updated history. The returned
// response is always the structured JSON envelope.
func (a *Agent) Chat(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	conv, err := a.convStore.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading conversation: %w", err)
	}
	if conv == nil {
		conv = types.NewConversation(sessionID)
	}

	if conv.Context == nil {
		conv.Context = make(map[string]any)
	}
	for k, v := range req.Context {
		conv.Context[k] = v
	}

	conv.AddUserMessage(req.Message)

	registry := a.tools.Bind(sessionID)

	response, toolCalls, err := a.runLoop(ctx, registry, conv.Messages)
	if err != nil {
		return nil, fmt.Errorf("agent loop: %w", err)
	}

	response = normalizeResponse(response)

	msg := conv.AddAssistantMessage(response, toolCalls)

	if err := a.convStore.Save(ctx, conv); err != nil {
		return nil, fmt.Errorf("saving conversation: %w", err)
	}

	a.logger.Info("chat turn complete",
		"session", sessionID, "toolCalls", len(toolCalls))

	return &types.ChatResponse{
		SessionID: sessionID,
		MessageID: msg.ID,
		Response:  response,
		ToolCalls: toolCalls,
	}, nil
}

func (a *Agent) runLoop(ctx context.Context, registry *tools.Registry, messages []types.Message) (string, []types.ToolCall, error) {
	var allToolCalls []types.ToolCall

	llmMessages := toLLMMessages(messages)

	for turn := 0; turn < a.config.MaxTurns; turn++ {
		resp, err := a.provider.Chat(ctx, llm.Request{
			Model:       a.config.Model,
			System:      a.config.SystemPrompt,
			Messages:    llmMessages,
			Tools:       registry.Definitions(),
			MaxTokens:   a.config.MaxTokens,
			Temperature: a.config.Temperature,
		})
		if err != nil {
			return "", nil, err
		}

		if resp.StopReason != llm.StopReasonToolUse {
			return resp.Content, allToolCalls, nil
		}

		llmMessages = append(llmMessages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, tc := range resp.ToolCalls {
			output, err := registry.Execute(ctx, tc.Name, tc.Input)

			toolCall := types.ToolCall{
				ID:    tc.ID,
				Name:  tc.Name,
				Input: tc.Input,
			}

			var resultContent string
			if err != nil {
				a.logger.Warn("tool execution failed", "tool", tc.Name, "error", err)
				toolCall.Error = err.Error()
				resultContent = fmt.Sprintf("Error: %v", err)
			} else {
				toolCall.Output = output
				b, _ := json.Marshal(output)
				resultContent = string(b)
			}

			allToolCalls = append(allToolCalls, toolCall)

			llmMessages = append(llmMessages, llm.Message{
				Role: llm.RoleTool,
				ToolResult: &llm.ToolResult{
					ToolCallID: tc.ID,
					Content:    resultContent,
					IsError:    err != nil,
				},
			})
		}
	}

	return "I wasn't able to complete your request in the allowed steps.", allToolCalls, nil
}

// toLLMMessages replays stored history as plain user/assistant turns.
// Past tool calls are not replayed: providers reject a tool call whose
// paired result is missing, and the outcome is already baked into the
// assistant's recorded reply.
func toLLMMessages(messages []types.Message) []llm.Message {
	result := make([]llm.Message, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case types.RoleUser:
			result = append(result, llm.Message{
				Role:    llm.RoleUser,
				Content: msg.Content,
			})
		case types.RoleAssistant:
			result = append(result, llm.Message{
				Role:    llm.RoleAssistant,
				Content: msg.Content,
			})
		}
	}

	return result
}

// GetConversation returns a conversation by session id.
func (a *Agent) GetConversation(ctx context.Context, id string) (*types.Conversation, error) {
	return a.convStore.Get(ctx, id)
}

// ClearSession drops everything the session accumulated: conversation
// state, cart, and stored history.
func (a *Agent) ClearSession(ctx context.Context, sessionID string) error {
	a.state.Clear(sessionID)

	var errs []error
	if err := a.carts.Clear(ctx, sessionID); err != nil {
		errs = append(errs, fmt.Errorf("clearing cart: %w", err))
	}
	if err := a.convStore.Delete(ctx, sessionID); err != nil {
		errs = append(errs, fmt.Errorf("deleting conversation: %w", err))
	}
	return errors.Join(errs...)
}
