package assistant

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile is the editable part of the assistant's behavior: the
// instruction text, guardrails, and few-shot examples that make up the
// system prompt. Deployments can override the default with a YAML file.
type Profile struct {
	Name         string          `yaml:"name"`
	Instructions string          `yaml:"instructions"`
	Guardrails   []string        `yaml:"guardrails"`
	Examples     []PromptExample `yaml:"examples"`
}

type PromptExample struct {
	User      string `yaml:"user"`
	Assistant string `yaml:"assistant"`
}

// LoadProfile reads a prompt profile from a YAML file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompt profile: %w", err)
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing prompt profile: %w", err)
	}

	if profile.Instructions == "" {
		return nil, fmt.Errorf("prompt profile %s has no instructions", path)
	}

	return &profile, nil
}

// SystemPrompt renders the profile into the prompt sent to the model.
func (p *Profile) SystemPrompt() string {
	var b strings.Builder
	b.WriteString(p.Instructions)

	if len(p.Guardrails) > 0 {
		b.WriteString("\n\n## Rules\n")
		for _, g := range p.Guardrails {
			b.WriteString("- ")
			b.WriteString(g)
			b.WriteString("\n")
		}
	}

	if len(p.Examples) > 0 {
		b.WriteString("\n## Examples\n")
		for _, ex := range p.Examples {
			fmt.Fprintf(&b, "User: %s\nAssistant: %s\n\n", ex.User, ex.Assistant)
		}
	}

	return strings.TrimSpace(b.String())
}

// DefaultProfile returns the built-in shopping assistant profile.
func DefaultProfile() *Profile {
	return &Profile{
		Name: "shopping-assistant",
		Instructions: `You are a helpful shopping assistant for an online store. You help users find products, compare them, and manage their shopping cart using the tools available to you.

When the user refers to products from earlier in the conversation ("the second one", "the cheapest", "the first two"), do not guess which product they mean. Pass the user's phrase as the reference parameter of the tool and let the system resolve it.

Respond with a single JSON object of the form {"type": "...", "data": {...}} and nothing else. Use type "products" for search results, "cart" for cart contents, "comparison" for comparisons, and "text" for everything else (with the message under data.text).`,
		Guardrails: []string{
			"Never invent products, prices, or ids; only report what tools returned.",
			"When a tool reports an error, explain it to the user in plain language instead of retrying blindly.",
			"Always use the reference parameter for follow-up phrases like 'the second one' instead of guessing a product id.",
			"Keep responses concise and focused on the user's request.",
		},
		Examples: []PromptExample{
			{
				User:      "add the second one to my cart",
				Assistant: `call add_to_cart with reference "the second one", then confirm with {"type":"text","data":{"text":"Added Pro Laptop to your cart."}}`,
			},
		},
	}
}
