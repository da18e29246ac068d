package models

import "time"

// TraceStatus is the lifecycle state of a trace node.
type TraceStatus string

const (
	TraceRunning TraceStatus = "running"
	TraceSuccess TraceStatus = "success"
	TraceError   TraceStatus = "error"
	TraceSkipped TraceStatus = "skipped"
)

// TraceKind distinguishes the node types that appear in a trace tree.
type TraceKind string

const (
	TraceKindAction  TraceKind = "action"
	TraceKindStep    TraceKind = "step"
	TraceKindLLMCall TraceKind = "llm-call"
	TraceKindWarning TraceKind = "warning"
)

// Trace is one node in the hierarchical execution tree an action run
// produces. A child's ID is its parent's ID plus an underscore-separated
// suffix (a step index for steps, parentId_stepIndex_uuid for nested
// actions) so that a child's parent is recoverable from the ID alone
// without a parent pointer column; Children is appended by the executor
// as the run proceeds and rebuilt by Store.Tree when read back.
type Trace struct {
	ID       string      `json:"id"`
	ParentID string      `json:"parent_id,omitempty"`
	Name     string      `json:"name"`
	Kind     TraceKind   `json:"kind"`
	Status   TraceStatus `json:"status"`

	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`

	Input  map[string]any `json:"input,omitempty"`
	Output map[string]any `json:"output,omitempty"`
	Err    string         `json:"error,omitempty"`

	Children []*Trace `json:"children,omitempty"`
}

// IsTerminal reports whether Status is one a completed node can hold.
func (t *Trace) IsTerminal() bool {
	return t.Status == TraceSuccess || t.Status == TraceError || t.Status == TraceSkipped
}
