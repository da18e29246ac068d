package trace

import (
	"encoding/json"
	"fmt"
	"reflect"
)

const (
	maxStringBytes   = 40 * 1024
	maxArrayItems    = 50
	maxObjectBytes   = 200 * 1024
	maxEventBytes    = 1024 * 1024
	maxSanitizeDepth = 12
)

// Sanitize recursively prepares v for persistence: functions become the
// literal string "[Function]", errors become {name, message}, strings are
// truncated at maxStringBytes with a "[truncated N chars]" marker, arrays
// are truncated at maxArrayItems, and a depth cap prevents unbounded
// recursion through cyclic or pathological structures.
func Sanitize(v any) any {
	return sanitizeDepth(v, 0)
}

func sanitizeDepth(v any, depth int) any {
	if depth > maxSanitizeDepth {
		return "[max depth exceeded]"
	}
	if v == nil {
		return nil
	}
	if err, ok := v.(error); ok {
		return map[string]any{"name": fmt.Sprintf("%T", err), "message": err.Error()}
	}
	if s, ok := v.(string); ok {
		return truncateString(s)
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Func {
		return "[Function]"
	}

	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = sanitizeDepth(val, depth+1)
		}
		return out
	case []any:
		return sanitizeSlice(t, depth)
	default:
		return t
	}
}

func sanitizeSlice(items []any, depth int) []any {
	if len(items) <= maxArrayItems {
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = sanitizeDepth(it, depth+1)
		}
		return out
	}
	out := make([]any, 0, maxArrayItems+1)
	for i := 0; i < maxArrayItems; i++ {
		out = append(out, sanitizeDepth(items[i], depth+1))
	}
	out = append(out, fmt.Sprintf("... (%d more)", len(items)-maxArrayItems))
	return out
}

func truncateString(s string) string {
	if len(s) <= maxStringBytes {
		return s
	}
	return fmt.Sprintf("%s[truncated %d chars]", s[:maxStringBytes], len(s)-maxStringBytes)
}

// SanitizeAndMarshal sanitizes v, marshals it, and enforces the 200 KB
// total object cap, replacing oversized payloads with a marker object.
func SanitizeAndMarshal(v any) ([]byte, error) {
	clean := Sanitize(v)
	body, err := json.Marshal(clean)
	if err != nil {
		return nil, err
	}
	if len(body) > maxObjectBytes {
		return json.Marshal(map[string]any{
			"truncated":     true,
			"original_size": len(body),
		})
	}
	return body, nil
}

// IsOversizedEvent reports whether a serialized event payload exceeds the
// 1 MB drop threshold.
func IsOversizedEvent(body []byte) bool {
	return len(body) > maxEventBytes
}
