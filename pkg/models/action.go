// Package models provides the domain types shared across the browser agent
// runtime, gateway, tracer, and bridge.
package models

import "encoding/json"

// StepType discriminates the three step variants an Action can declare.
type StepType string

const (
	StepFunction StepType = "function"
	StepLLM      StepType = "llm"
	StepAction   StepType = "action"
)

// Intelligence is the advisory tier requested for an LLM step.
type Intelligence string

const (
	IntelligenceHigh   Intelligence = "HIGH"
	IntelligenceMedium Intelligence = "MEDIUM"
	IntelligenceLow    Intelligence = "LOW"
)

// ToolChoice configures the tool-call loop for an llm step.
type ToolChoice struct {
	// Actions lists the names of Actions callable as tools in this loop.
	Actions []string `json:"actions"`

	// StopAction is the tool name whose invocation terminates the loop
	// with its result as the step's output. Must be a member of Actions.
	StopAction string `json:"stop_action"`

	// MaxIterations bounds the number of assistant turns in the loop.
	MaxIterations int `json:"max_iterations"`

	// ContinuationMessage is appended as a new user message between turns
	// when more iterations remain.
	ContinuationMessage string `json:"continuation_message,omitempty"`
}

// Step is one unit of an Action's program: a deterministic function call,
// an LLM call (optionally with a bounded tool-call loop), or a nested
// invocation of another named Action.
type Step struct {
	Name string   `json:"name"`
	Type StepType `json:"type"`

	// When, if set, is a template-resolved boolean predicate over context;
	// a false result skips the step (status=skipped) without contributing
	// to context.
	When string `json:"when,omitempty"`

	// Function step.
	Handler FunctionHandler `json:"-"`

	// LLM step.
	SystemPrompt string          `json:"system_prompt,omitempty"`
	Message      string          `json:"message,omitempty"`
	Intelligence Intelligence    `json:"intelligence,omitempty"`
	OutputSchema json.RawMessage `json:"output_schema,omitempty"`
	ToolChoice   *ToolChoice     `json:"tool_choice,omitempty"`

	// Action step.
	ActionName string `json:"action_name,omitempty"`
}

// FunctionHandler is the signature deterministic function steps implement.
// It receives the accumulated context and returns fields to merge into it,
// plus an optional tool-call transcript fragment under "parent_messages".
type FunctionHandler func(ctx *StepContext) (FunctionResult, error)

// FunctionResult is what a function step handler returns. Result's fields
// are merged into the step context as top-level keys (not nested under
// "result"); ParentMessages, if non-nil, is merged under the reserved
// "parent_messages" context key.
type FunctionResult struct {
	Result         map[string]any `json:"result"`
	ParentMessages []Message      `json:"parent_messages,omitempty"`
}

// Action is a named, declarative multi-step program. Actions are pure
// definitions; ExecuteAction produces a Trace.
type Action struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Examples    []string        `json:"examples,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
	Steps       []Step          `json:"steps"`
	PostSteps   []Step          `json:"post_steps,omitempty"`
}
