package models

// ModelDescriptor names one entry in an intelligence tier's cascade list:
// a provider endpoint plus the quirks the gateway must route around.
type ModelDescriptor struct {
	Endpoint     string `json:"endpoint"`
	Model        string `json:"model"`
	ProviderHint string `json:"provider_hint,omitempty"`

	// NoToolChoice means the provider does not support forcing a specific
	// tool. The gateway copies it into providers.Request; neither provider
	// adapter reads it, and no prompting fallback is added for it.
	NoToolChoice bool `json:"no_tool_choice,omitempty"`

	// NoToolUse means the provider has no tool-calling support at all; the
	// gateway must use the JSON-hint-and-extract schema path.
	NoToolUse bool `json:"no_tool_use,omitempty"`
}
