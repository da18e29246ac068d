package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaCache compiles each distinct output/input schema once and reuses
// it across calls, the same pattern pkg/pluginsdk/validation.go uses for
// plugin config schemas in the teacher.
var schemaCache sync.Map

func compileSchema(raw json.RawMessage) (*jsonschema.Schema, error) {
	key := string(raw)
	if cached, ok := schemaCache.Load(key); ok {
		if compiled, ok := cached.(*jsonschema.Schema); ok {
			return compiled, nil
		}
	}
	compiled, err := jsonschema.CompileString("gateway.schema.json", key)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	schemaCache.Store(key, compiled)
	return compiled, nil
}

// ValidateAgainstSchema parses body as JSON and validates it against raw,
// returning the decoded object on success.
func ValidateAgainstSchema(raw json.RawMessage, body string) (map[string]any, error) {
	var decoded map[string]any
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		return nil, fmt.Errorf("decode response JSON: %w", err)
	}
	if len(raw) == 0 {
		return decoded, nil
	}
	schema, err := compileSchema(raw)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(decoded); err != nil {
		return nil, fmt.Errorf("response does not match schema: %w", err)
	}
	return decoded, nil
}

// SchemaHint renders an instruction appended to the last user message when
// the target provider lacks native structured output, asking the model to
// reply with strict JSON matching raw.
func SchemaHint(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	return "\n\nRespond with JSON only, matching this schema exactly:\n" + string(raw)
}

// ExtractJSON pulls the JSON payload out of a model's free-text response,
// preferring a fenced ```json code block and otherwise falling back to the
// largest balanced {...} block in the text. Returns an error if no
// candidate JSON object is found or the response is empty.
func ExtractJSON(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", fmt.Errorf("empty model response")
	}

	if block, ok := extractFencedBlock(trimmed); ok {
		return block, nil
	}

	if block, ok := largestBraceBlock(trimmed); ok {
		return block, nil
	}

	return "", fmt.Errorf("no JSON object found in response")
}

// extractFencedBlock finds the first ```json ... ``` or bare ``` ... ```
// fenced block and returns its trimmed contents.
func extractFencedBlock(text string) (string, bool) {
	idx := strings.Index(text, "```")
	if idx < 0 {
		return "", false
	}
	rest := text[idx+3:]
	rest = strings.TrimPrefix(rest, "json")
	rest = strings.TrimPrefix(rest, "\n")
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	candidate := strings.TrimSpace(rest[:end])
	if candidate == "" {
		return "", false
	}
	return candidate, true
}

// largestBraceBlock scans text for every balanced {...} span and returns
// the longest one, matching the spec's "extract the largest {...} block"
// fallback rule.
func largestBraceBlock(text string) (string, bool) {
	best := ""
	depth := 0
	start := -1
	for i, r := range text {
		switch r {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				candidate := text[start : i+1]
				if len(candidate) > len(best) {
					best = candidate
				}
				start = -1
			}
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}
