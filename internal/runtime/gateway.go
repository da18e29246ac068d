package runtime

import (
	"context"
	"encoding/json"

	"github.com/browserpilot/agent/pkg/models"
)

// ToolSpec is one named Action advertised as a callable tool in a
// tool-call loop turn: its InputSchema becomes the tool's parameter schema.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// CompletionRequest is everything the Gateway needs to produce one
// completion: the transcript so far, the advisory intelligence tier, an
// optional schema to constrain a tool-less response, and the tools to
// advertise when this call is part of a tool-call loop turn.
type CompletionRequest struct {
	Messages     []models.Message
	Intelligence models.Intelligence
	OutputSchema json.RawMessage
	Tools        []ToolSpec
}

// CompletionResult is the Gateway's reply: either a plain-content
// assistant message (Parsed set when OutputSchema was supplied and no
// tools were requested) or one carrying ToolCalls.
type CompletionResult struct {
	Content   string
	ToolCalls []models.ToolCall
	Parsed    map[string]any
	Model     models.ModelDescriptor
}

// Gateway is the dependency the runtime calls for every llm step. It is
// implemented by internal/gateway.Gateway; defining the interface here
// keeps the runtime package free of a direct dependency on the gateway's
// provider machinery.
type Gateway interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}
