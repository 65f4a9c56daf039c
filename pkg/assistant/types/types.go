// Package types contains shared types with no internal dependencies.
package types

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

type Message struct {
	ID        string     `json:"id"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type ToolCall struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Input  map[string]any `json:"input"`
	Output any            `json:"output,omitempty"`
	Error  string         `json:"error,omitempty"`
}

type Conversation struct {
	ID        string         `json:"id"`
	Messages  []Message      `json:"messages"`
	Context   map[string]any `json:"context,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// NewConversation creates an empty conversation. An empty id gets a
// generated UUID; a caller-supplied id ties the conversation to a session.
func NewConversation(id string) *Conversation {
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()
	return &Conversation{
		ID:        id,
		Messages:  []Message{},
		Context:   make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Conversation) AddUserMessage(content string) *Message {
	msg := Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	return &msg
}

func (c *Conversation) AddAssistantMessage(content string, toolCalls []ToolCall) *Message {
	msg := Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		ToolCalls: toolCalls,
		CreatedAt: time.Now(),
	}
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	return &msg
}

// ProductSummary is the snapshot of a product taken at search or compare
// time. It is never refreshed in place; prices reflect the moment the
// user saw them.
type ProductSummary struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

type ChatRequest struct {
	SessionID string         `json:"sessionId,omitempty"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
}

type ChatResponse struct {
	SessionID string     `json:"sessionId"`
	MessageID string     `json:"messageId"`
	Response  string     `json:"response"`
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
}
