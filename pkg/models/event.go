package models

import "time"

// EventType discriminates AgentEvent payloads.
type EventType string

const (
	EventActionStart EventType = "action_start"
	EventActionEnd   EventType = "action_end"
	EventStepStart   EventType = "step_start"
	EventStepEnd     EventType = "step_end"
	EventLLMCall     EventType = "llm_call"
	EventToolCall    EventType = "tool_call"
	EventError       EventType = "error"
)

// AgentEvent is a sequenced, structured event emitted as an action runs.
// The Tracer persists these and a replay harness can re-derive a Trace
// tree or RunStats from a sequence of them without touching the store.
type AgentEvent struct {
	Type     EventType      `json:"type"`
	Sequence int64          `json:"sequence"`
	Time     time.Time      `json:"time"`
	RunID    string         `json:"run_id"`
	TraceID  string         `json:"trace_id"`
	Payload  map[string]any `json:"payload,omitempty"`
}

// RunStats aggregates counters derived by replaying one run's AgentEvents.
type RunStats struct {
	RunID         string           `json:"run_id"`
	EventsByType  map[EventType]int `json:"events_by_type"`
	ToolCalls     int              `json:"tool_calls"`
	Errors        int              `json:"errors"`
	Duration      time.Duration    `json:"duration"`
	FirstSequence int64            `json:"first_sequence"`
	LastSequence  int64            `json:"last_sequence"`
}

// NewRunStats returns a zero-valued RunStats ready for accumulation.
func NewRunStats(runID string) *RunStats {
	return &RunStats{RunID: runID, EventsByType: make(map[EventType]int)}
}

// Observe folds one event into the running aggregate. Events must be
// applied in sequence order.
func (s *RunStats) Observe(e AgentEvent) {
	s.EventsByType[e.Type]++
	if e.Type == EventToolCall {
		s.ToolCalls++
	}
	if e.Type == EventError {
		s.Errors++
	}
	if s.FirstSequence == 0 || e.Sequence < s.FirstSequence {
		s.FirstSequence = e.Sequence
	}
	if e.Sequence > s.LastSequence {
		s.LastSequence = e.Sequence
	}
}
