package assistant

import "time"

// Config holds agent configuration
type Config struct {
	// LLM settings
	Model       string  `yaml:"model" json:"model"`
	MaxTokens   int     `yaml:"maxTokens" json:"maxTokens"`
	Temperature float64 `yaml:"temperature" json:"temperature"`
	MaxTurns    int     `yaml:"maxTurns" json:"maxTurns"`

	// SystemPrompt is the full instruction prompt sent with every turn.
	SystemPrompt string `yaml:"systemPrompt" json:"systemPrompt"`

	// Timeouts
	RequestTimeout time.Duration `yaml:"requestTimeout" json:"requestTimeout"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Model:          "gpt-4o-mini",
		MaxTokens:      4096,
		Temperature:    0.7,
		MaxTurns:       10,
		RequestTimeout: 60 * time.Second,
		SystemPrompt:   DefaultProfile().SystemPrompt(),
	}
}

// WithModel sets the model
func (c Config) WithModel(model string) Config {
	c.Model = model
	return c
}

// WithMaxTurns sets max turns for the agent loop
func (c Config) WithMaxTurns(turns int) Config {
	c.MaxTurns = turns
	return c
}

// WithSystemPrompt sets the system prompt
func (c Config) WithSystemPrompt(prompt string) Config {
	c.SystemPrompt = prompt
	return c
}
