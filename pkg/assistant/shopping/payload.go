package shopping

import (
	"strconv"
	"strings"
)

// Domain failures are returned to the agent as data, never as Go
// errors: the model reads the payload and explains the problem to the
// user in its own words.
const (
	CodeUnresolvable = "unresolvable"
	CodeNotFound     = "not_found"
	CodeMissingInput = "missing_input"
	CodeNoProducts   = "no_products"
)

func errPayload(code, message string) map[string]any {
	return map[string]any{
		"error": message,
		"code":  code,
	}
}

// Tool inputs arrive as decoded JSON, so numbers are float64 unless the
// provider preserved them otherwise.

func stringArg(input map[string]any, key string) string {
	if v, ok := input[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func intArg(input map[string]any, key string) (int, bool) {
	switch v := input[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func floatArg(input map[string]any, key string) (float64, bool) {
	switch v := input[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}
