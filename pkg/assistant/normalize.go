package assistant

import (
	"encoding/json"
	"strings"
)

// normalizeResponse forces the model's final answer into the structured
// reply envelope. Well-formed {"type": ..., "data": ...} JSON passes
// through (markdown code fences stripped); anything else is wrapped as
// a text reply.
func normalizeResponse(raw string) string {
	s := stripCodeFence(strings.TrimSpace(raw))

	var envelope struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(s), &envelope); err == nil &&
		envelope.Type != "" && len(envelope.Data) > 0 {
		return s
	}

	wrapped, _ := json.Marshal(struct {
		Type string `json:"type"`
		Data struct {
			Text string `json:"text"`
		} `json:"data"`
	}{
		Type: "text",
		Data: struct {
			Text string `json:"text"`
		}{Text: s},
	})
	return string(wrapped)
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line ("```" or "```json").
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	} else {
		return strings.TrimPrefix(s, "```")
	}

	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
