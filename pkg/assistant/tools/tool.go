// Package tools defines the function-calling tools exposed to the LLM:
// a JSON-schema tool shape, a fluent builder, and a registry the agent
// loop executes against.
package tools

import "context"

// Tool defines a capability the agent can use
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
	Handler     Handler        `json:"-"`
}

// Handler executes a tool and returns the result. Domain-level failures
// (unknown product, unresolvable reference) are returned as payload data
// with a nil error; a non-nil error means the tool itself broke.
type Handler func(ctx context.Context, input map[string]any) (any, error)

// Definition returns the tool definition without the handler (for LLM)
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToDefinition converts a Tool to a Definition
func (t *Tool) ToDefinition() Definition {
	return Definition{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.Parameters,
	}
}
