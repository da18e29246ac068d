package contentscript

import "encoding/json"

// ToParams marshals a typed request struct into the map[string]any shape
// browserstate.Bridge.Send expects, matching the map[string]any idiom
// internal/runtime already uses to carry step results between the
// executor and the action's context (executor.go's dispatchStep).
func ToParams(req any) (map[string]any, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FromResult decodes a bridge reply map into a typed result struct.
func FromResult(result map[string]any, out any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
