package runtime

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/browserpilot/agent/pkg/models"
)

func TestExecuteAction_FunctionStepsMergeContext(t *testing.T) {
	registry := NewRegistry()
	action := &models.Action{
		Name: "greet",
		Steps: []models.Step{
			{
				Name: "build_greeting",
				Type: models.StepFunction,
				Handler: func(ctx *models.StepContext) (models.FunctionResult, error) {
					name, _ := ctx.Get("name")
					return models.FunctionResult{Result: map[string]any{
						"greeting": "hello " + name.(string),
					}}, nil
				},
			},
		},
	}
	registry.Register(action)

	exec := NewExecutor(registry, nil, nil)
	result, err := exec.ExecuteAction(context.Background(), action, map[string]any{"name": "ada"}, NewRootTraceID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result["greeting"] != "hello ada" {
		t.Errorf("greeting = %v, want %q", result["greeting"], "hello ada")
	}
}

func TestExecuteAction_WhenPredicateSkipsStep(t *testing.T) {
	registry := NewRegistry()
	ran := false
	action := &models.Action{
		Name: "conditional",
		Steps: []models.Step{
			{
				Name: "maybe",
				Type: models.StepFunction,
				When: "{{should_run}}",
				Handler: func(ctx *models.StepContext) (models.FunctionResult, error) {
					ran = true
					return models.FunctionResult{Result: map[string]any{"ran": true}}, nil
				},
			},
		},
	}
	registry.Register(action)

	exec := NewExecutor(registry, nil, nil)
	result, err := exec.ExecuteAction(context.Background(), action, map[string]any{"should_run": false}, NewRootTraceID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ran {
		t.Error("handler ran despite false when-predicate")
	}
	if _, ok := result["ran"]; ok {
		t.Error("skipped step contributed to context")
	}
}

func TestExecuteAction_FunctionStepErrorAbortsButRunsPostSteps(t *testing.T) {
	registry := NewRegistry()
	postRan := false
	action := &models.Action{
		Name: "fails",
		Steps: []models.Step{
			{
				Name: "boom",
				Type: models.StepFunction,
				Handler: func(ctx *models.StepContext) (models.FunctionResult, error) {
					return models.FunctionResult{}, NewError(KindSchemaParseFailed, "boom")
				},
			},
		},
		PostSteps: []models.Step{
			{
				Name: "cleanup",
				Type: models.StepFunction,
				Handler: func(ctx *models.StepContext) (models.FunctionResult, error) {
					postRan = true
					return models.FunctionResult{}, nil
				},
			},
		},
	}
	registry.Register(action)

	exec := NewExecutor(registry, nil, nil)
	_, err := exec.ExecuteAction(context.Background(), action, nil, NewRootTraceID())
	if err == nil {
		t.Fatal("expected error")
	}
	if !postRan {
		t.Error("post-step did not run after step failure")
	}
}

// fakeGateway drives a scripted sequence of CompletionResults for tool-loop tests.
type fakeGateway struct {
	responses []*CompletionResult
	calls     int
}

func (f *fakeGateway) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	if f.calls >= len(f.responses) {
		return &CompletionResult{Content: "out of script"}, nil
	}
	r := f.responses[f.calls]
	f.calls++
	return r, nil
}

func TestToolLoop_StopActionTerminates(t *testing.T) {
	registry := NewRegistry()
	stopAction := &models.Action{
		Name: "final_response",
		Steps: []models.Step{
			{
				Name: "noop",
				Type: models.StepFunction,
				Handler: func(ctx *models.StepContext) (models.FunctionResult, error) {
					return models.FunctionResult{Result: map[string]any{"answer": "Paris"}}, nil
				},
			},
		},
	}
	registry.Register(stopAction)

	gw := &fakeGateway{responses: []*CompletionResult{
		{ToolCalls: []models.ToolCall{{ID: "1", Name: "final_response", Input: json.RawMessage(`{}`)}}},
	}}

	outer := &models.Action{
		Name: "router",
		Steps: []models.Step{
			{
				Name:         "loop",
				Type:         models.StepLLM,
				SystemPrompt: "route",
				Message:      "go",
				ToolChoice: &models.ToolChoice{
					Actions:       []string{"final_response"},
					StopAction:    "final_response",
					MaxIterations: 4,
				},
			},
		},
	}
	registry.Register(outer)

	exec := NewExecutor(registry, gw, nil)
	result, err := exec.ExecuteAction(context.Background(), outer, nil, NewRootTraceID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result["answer"] != "Paris" {
		t.Errorf("answer = %v, want Paris", result["answer"])
	}
	transcript, ok := result[models.ReservedParentMessagesKey].([]models.Message)
	if !ok || len(transcript) == 0 {
		t.Fatal("expected non-empty transcript under reserved key")
	}
	if gw.calls != 1 {
		t.Errorf("gateway calls = %d, want 1", gw.calls)
	}
}

func TestToolLoop_MaxIterationsForcesStopAction(t *testing.T) {
	registry := NewRegistry()
	stopAction := &models.Action{
		Name: "final_response",
		Steps: []models.Step{
			{
				Name: "noop",
				Type: models.StepFunction,
				Handler: func(ctx *models.StepContext) (models.FunctionResult, error) {
					return models.FunctionResult{Result: map[string]any{"forced": true}}, nil
				},
			},
		},
	}
	registry.Register(stopAction)

	// Gateway never returns a tool call naming stop_action within budget.
	gw := &fakeGateway{responses: []*CompletionResult{
		{ToolCalls: []models.ToolCall{{ID: "1", Name: "final_response", Input: json.RawMessage(`{}`)}}},
		{ToolCalls: []models.ToolCall{{ID: "2", Name: "final_response", Input: json.RawMessage(`{}`)}}},
	}}
	// Use a different stop name than what the model calls, forcing exhaustion.
	outer := &models.Action{
		Name: "router",
		Steps: []models.Step{
			{
				Name: "loop",
				Type: models.StepLLM,
				ToolChoice: &models.ToolChoice{
					Actions:       []string{"final_response"},
					StopAction:    "never_called",
					MaxIterations: 2,
				},
			},
		},
	}
	registry.Register(&models.Action{Name: "never_called", Steps: []models.Step{
		{Name: "noop", Type: models.StepFunction, Handler: func(ctx *models.StepContext) (models.FunctionResult, error) {
			return models.FunctionResult{Result: map[string]any{"forced": true}}, nil
		}},
	}})
	registry.Register(outer)

	exec := NewExecutor(registry, gw, nil)
	result, err := exec.ExecuteAction(context.Background(), outer, nil, NewRootTraceID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result["forced"] != true {
		t.Errorf("expected forced stop_action result to be merged, got %v", result)
	}
}
