package tools

// Builder provides a fluent API for creating tools
type Builder struct {
	tool *Tool
}

// NewTool starts building a new tool
func NewTool(name string) *Builder {
	return &Builder{
		tool: &Tool{
			Name:       name,
			Parameters: map[string]any{"type": "object", "properties": map[string]any{}, "required": []string{}},
		},
	}
}

// Description sets the tool description
func (b *Builder) Description(desc string) *Builder {
	b.tool.Description = desc
	return b
}

// StringParam adds a string parameter
func (b *Builder) StringParam(name, description string, required bool) *Builder {
	return b.param(name, map[string]any{"type": "string", "description": description}, required)
}

// IntParam adds an integer parameter
func (b *Builder) IntParam(name, description string, required bool) *Builder {
	return b.param(name, map[string]any{"type": "integer", "description": description}, required)
}

// NumberParam adds a floating-point parameter
func (b *Builder) NumberParam(name, description string, required bool) *Builder {
	return b.param(name, map[string]any{"type": "number", "description": description}, required)
}

// BoolParam adds a boolean parameter
func (b *Builder) BoolParam(name, description string, required bool) *Builder {
	return b.param(name, map[string]any{"type": "boolean", "description": description}, required)
}

func (b *Builder) param(name string, schema map[string]any, required bool) *Builder {
	props := b.tool.Parameters["properties"].(map[string]any)
	props[name] = schema
	if required {
		req := b.tool.Parameters["required"].([]string)
		b.tool.Parameters["required"] = append(req, name)
	}
	return b
}

// Handler sets the tool handler
func (b *Builder) Handler(h Handler) *Builder {
	b.tool.Handler = h
	return b
}

// Build returns the completed tool
func (b *Builder) Build() *Tool {
	return b.tool
}
