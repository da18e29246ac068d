package runtime

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RenderTemplate substitutes {{key}} and {{{key}}} references to context
// values in s. Both forms write the same stringified value; neither form
// HTML-escapes it. Unknown keys render as empty string; nested objects/arrays render
// as JSON text; nil values render as empty. Missing closing braces are left
// untouched rather than erroring, matching the "tolerate silently" mandate.
func RenderTemplate(s string, values map[string]any) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	var out strings.Builder
	i := 0
	for i < len(s) {
		start := strings.Index(s[i:], "{{")
		if start < 0 {
			out.WriteString(s[i:])
			break
		}
		start += i
		out.WriteString(s[i:start])

		raw := strings.HasPrefix(s[start:], "{{{")
		closeTag := "}}"
		skip := 2
		if raw {
			closeTag = "}}}"
			skip = 3
		}

		end := strings.Index(s[start+skip:], closeTag)
		if end < 0 {
			// No matching close brace found; emit the rest verbatim and stop.
			out.WriteString(s[start:])
			break
		}
		end += start + skip
		key := strings.TrimSpace(s[start+skip : end])
		out.WriteString(stringifyValue(lookupValue(values, key)))
		i = end + len(closeTag)
	}
	return out.String()
}

// lookupValue resolves key against values, present only to give missing
// keys a single obvious call site (a missing key yields nil, which renders
// as empty).
func lookupValue(values map[string]any, key string) any {
	if values == nil {
		return nil
	}
	v, ok := values[key]
	if !ok {
		return nil
	}
	return v
}

// stringifyValue renders a context value as template output text.
func stringifyValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.RawMessage:
		if len(t) == 0 {
			return ""
		}
		return string(t)
	case fmt.Stringer:
		return t.String()
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
