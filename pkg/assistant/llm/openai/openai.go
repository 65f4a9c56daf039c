// Package openai provides an OpenAI-compatible LLM provider, including
// OpenRouter support.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ourstudio-se/shop-assistant/pkg/assistant/llm"
	oai "github.com/sashabaranov/go-openai"
)

// Provider implements llm.Provider over the OpenAI chat completions API.
type Provider struct {
	client *oai.Client
}

// New wraps an existing OpenAI client.
func New(client *oai.Client) *Provider {
	return &Provider{client: client}
}

// NewWithAPIKey creates a provider against the OpenAI API.
func NewWithAPIKey(apiKey string) *Provider {
	return New(oai.NewClient(apiKey))
}

// Chat sends a chat completion request and maps the result back to the
// provider-agnostic response.
func (p *Provider) Chat(ctx context.Context, req llm.Request) (*llm.Response, error) {
	oaiReq, err := buildRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.CreateChatCompletion(ctx, oaiReq)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	return fromResponse(resp), nil
}

func buildRequest(req llm.Request) (oai.ChatCompletionRequest, error) {
	messages := make([]oai.ChatCompletionMessage, 0, len(req.Messages)+1)

	if req.System != "" {
		messages = append(messages, oai.ChatCompletionMessage{
			Role:    oai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}

	for _, msg := range req.Messages {
		converted, err := toOpenAIMessage(msg)
		if err != nil {
			return oai.ChatCompletionRequest{}, err
		}
		messages = append(messages, converted)
	}

	oaiReq := oai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	}

	if len(req.Tools) > 0 {
		oaiTools := make([]oai.Tool, 0, len(req.Tools))
		for _, def := range req.Tools {
			oaiTools = append(oaiTools, oai.Tool{
				Type: oai.ToolTypeFunction,
				Function: &oai.FunctionDefinition{
					Name:        def.Name,
					Description: def.Description,
					Parameters:  def.Parameters,
				},
			})
		}
		oaiReq.Tools = oaiTools
	}

	return oaiReq, nil
}

func toOpenAIMessage(msg llm.Message) (oai.ChatCompletionMessage, error) {
	switch msg.Role {
	case llm.RoleUser:
		return oai.ChatCompletionMessage{
			Role:    oai.ChatMessageRoleUser,
			Content: msg.Content,
		}, nil

	case llm.RoleAssistant:
		oaiMsg := oai.ChatCompletionMessage{
			Role:    oai.ChatMessageRoleAssistant,
			Content: msg.Content,
		}
		for _, tc := range msg.ToolCalls {
			args, err := json.Marshal(tc.Input)
			if err != nil {
				return oai.ChatCompletionMessage{}, fmt.Errorf("marshaling tool input: %w", err)
			}
			oaiMsg.ToolCalls = append(oaiMsg.ToolCalls, oai.ToolCall{
				ID:   tc.ID,
				Type: oai.ToolTypeFunction,
				Function: oai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(args),
				},
			})
		}
		return oaiMsg, nil

	case llm.RoleTool:
		if msg.ToolResult == nil {
			return oai.ChatCompletionMessage{}, fmt.Errorf("tool message without result")
		}
		return oai.ChatCompletionMessage{
			Role:       oai.ChatMessageRoleTool,
			Content:    msg.ToolResult.Content,
			ToolCallID: msg.ToolResult.ToolCallID,
		}, nil
	}

	return oai.ChatCompletionMessage{}, fmt.Errorf("unsupported role: %s", msg.Role)
}

func fromResponse(resp oai.ChatCompletionResponse) *llm.Response {
	choice := resp.Choices[0]

	result := &llm.Response{
		Content: choice.Message.Content,
		Usage: llm.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}

	switch choice.FinishReason {
	case oai.FinishReasonToolCalls:
		result.StopReason = llm.StopReasonToolUse
	case oai.FinishReasonLength:
		result.StopReason = llm.StopReasonLength
	default:
		result.StopReason = llm.StopReasonEnd
	}

	for _, tc := range choice.Message.ToolCalls {
		input := make(map[string]any)
		_ = json.Unmarshal([]byte(tc.Function.Arguments), &input)
		result.ToolCalls = append(result.ToolCalls, llm.ToolCall{
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: input,
		})
	}
	if len(result.ToolCalls) > 0 && result.StopReason != llm.StopReasonToolUse {
		result.StopReason = llm.StopReasonToolUse
	}

	return result
}

// OpenRouterBaseURL is the base URL for OpenRouter API.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterConfig holds configuration for creating an OpenRouter-backed
// provider.
type OpenRouterConfig struct {
	// APIKey is your OpenRouter API key (required).
	APIKey string

	// SiteURL is your site URL for OpenRouter rankings (optional).
	SiteURL string

	// SiteName is your site/app name for OpenRouter rankings (optional).
	SiteName string
}

// NewOpenRouter creates a provider configured for OpenRouter, which
// exposes many models through an OpenAI-compatible API.
func NewOpenRouter(cfg OpenRouterConfig) *Provider {
	config := oai.DefaultConfig(cfg.APIKey)
	config.BaseURL = OpenRouterBaseURL

	if cfg.SiteURL != "" || cfg.SiteName != "" {
		config.HTTPClient = &http.Client{
			Transport: &openRouterTransport{
				base:     http.DefaultTransport,
				siteURL:  cfg.SiteURL,
				siteName: cfg.SiteName,
			},
		}
	}

	return New(oai.NewClientWithConfig(config))
}

// openRouterTransport adds OpenRouter-specific headers to requests.
type openRouterTransport struct {
	base     http.RoundTripper
	siteURL  string
	siteName string
}

func (t *openRouterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid mutating the original
	req2 := req.Clone(req.Context())

	if t.siteURL != "" {
		req2.Header.Set("HTTP-Referer", t.siteURL)
	}
	if t.siteName != "" {
		req2.Header.Set("X-Title", t.siteName)
	}

	return t.base.RoundTrip(req2)
}
