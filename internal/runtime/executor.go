package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/browserpilot/agent/pkg/models"
)

// Executor ties a Registry, Gateway, and Tracer together to run Actions.
// It is the runtime's single entry point, mirroring the teacher's
// AgenticLoop/Executor split collapsed into one collaborator since the
// spec's step variants already separate the concerns loop.go and
// executor.go split in the teacher.
type Executor struct {
	registry *Registry
	gateway  Gateway
	tracer   Tracer
}

// NewExecutor builds an Executor. gateway and tracer may be nil in tests
// that only exercise function-step actions; a nil tracer is treated as
// NopTracer.
func NewExecutor(registry *Registry, gateway Gateway, tracer Tracer) *Executor {
	if tracer == nil {
		tracer = NopTracer{}
	}
	return &Executor{registry: registry, gateway: gateway, tracer: tracer}
}

// NewRootTraceID mints a fresh top-level trace id for a new root action run.
func NewRootTraceID() string {
	return uuid.New().String()
}

// ExecuteAction runs action against input, producing the merged final
// context as its result. traceID is the id this action's own trace node
// will use; pass NewRootTraceID() for a top-level run, or a composite
// "parentId_stepIndex_uuid" id when invoked as a nested action step or
// tool-loop child (see runActionStep / toolloop.go).
func (e *Executor) ExecuteAction(ctx context.Context, action *models.Action, input map[string]any, traceID string) (map[string]any, error) {
	start := time.Now()
	trace := &models.Trace{
		ID:        traceID,
		Name:      action.Name,
		Kind:      models.TraceKindAction,
		Status:    models.TraceRunning,
		StartTime: start,
		Input:     input,
	}
	e.tracer.Emit(ctx, models.AgentEvent{
		Type: models.EventActionStart, Time: start, TraceID: traceID,
		Payload: map[string]any{"name": action.Name},
	})

	sctx := models.NewStepContext(input)

	var firstErr error
	for i, step := range action.Steps {
		stepTraceID := fmt.Sprintf("%s_%d", traceID, i)
		if err := e.runStep(ctx, trace, stepTraceID, i, step, sctx); err != nil {
			firstErr = err
			break
		}
	}

	// Post-steps always run with the final context; their failures are
	// logged (emitted as warning events) but never alter the action status.
	for i, step := range action.PostSteps {
		stepTraceID := fmt.Sprintf("%s_post%d", traceID, i)
		if err := e.runStep(ctx, trace, stepTraceID, len(action.Steps)+i, step, sctx); err != nil {
			e.recordWarning(ctx, trace, stepTraceID, step.Name, err)
		}
	}

	trace.Duration = time.Since(start)
	result := sctx.Snapshot()
	trace.Output = result

	if firstErr != nil {
		trace.Status = models.TraceError
		trace.Err = firstErr.Error()
	} else {
		trace.Status = models.TraceSuccess
	}
	_ = e.tracer.Persist(ctx, trace)
	e.tracer.Emit(ctx, models.AgentEvent{
		Type: models.EventActionEnd, Time: time.Now(), TraceID: traceID,
		Payload: map[string]any{"status": string(trace.Status)},
	})

	return result, firstErr
}

// recordWarning appends a warning-kind trace node under parent for a
// post-step failure, which never aborts the action but must still appear
// in the trace tree rather than only as a log line. warnTraceID follows
// the same "%s_postN" composite id the failed post-step itself used.
func (e *Executor) recordWarning(ctx context.Context, parent *models.Trace, warnTraceID, stepName string, cause error) {
	now := time.Now()
	node := &models.Trace{
		ID:        warnTraceID + "_warn",
		ParentID:  parent.ID,
		Name:      stepName,
		Kind:      models.TraceKindWarning,
		Status:    models.TraceError,
		StartTime: now,
		Err:       cause.Error(),
	}
	parent.Children = append(parent.Children, node)
	_ = e.tracer.Persist(ctx, node)
	e.tracer.Emit(ctx, models.AgentEvent{
		Type: models.EventError, Time: now, TraceID: warnTraceID,
		Payload: map[string]any{"post_step": stepName, "error": cause.Error()},
	})
}

// runStep executes one step against sctx, mutating sctx on success and
// recording a child trace node. Returns the step's error, if any; a
// skipped step (when-predicate false) is not an error.
func (e *Executor) runStep(ctx context.Context, parent *models.Trace, stepTraceID string, index int, step models.Step, sctx *models.StepContext) error {
	start := time.Now()
	node := &models.Trace{
		ID:        stepTraceID,
		ParentID:  parent.ID,
		Name:      step.Name,
		Kind:      models.TraceKindStep,
		StartTime: start,
	}

	if step.When != "" {
		rendered := RenderTemplate(step.When, sctx.Snapshot())
		if !isTruthy(rendered) {
			node.Status = models.TraceSkipped
			node.Duration = time.Since(start)
			parent.Children = append(parent.Children, node)
			_ = e.tracer.Persist(ctx, node)
			return nil
		}
	}

	result, err := e.dispatchStep(ctx, node, index, step, sctx)
	node.Duration = time.Since(start)
	if err != nil {
		node.Status = models.TraceError
		node.Err = err.Error()
		parent.Children = append(parent.Children, node)
		_ = e.tracer.Persist(ctx, node)
		return err
	}

	sctx.Merge(result)
	node.Status = models.TraceSuccess
	node.Output = result
	parent.Children = append(parent.Children, node)
	_ = e.tracer.Persist(ctx, node)
	return nil
}

// dispatchStep executes step by its variant and returns the fields to
// merge into context. node is the step's own trace node, passed through so
// an llm/tool-loop step can record its model calls as llm-call children.
func (e *Executor) dispatchStep(ctx context.Context, node *models.Trace, index int, step models.Step, sctx *models.StepContext) (map[string]any, error) {
	switch step.Type {
	case models.StepFunction:
		return e.runFunctionStep(step, sctx)
	case models.StepLLM:
		if step.ToolChoice != nil {
			return e.runToolLoop(ctx, node, index, step, sctx)
		}
		return e.runLLMStep(ctx, node, step, sctx)
	case models.StepAction:
		return e.runActionStep(ctx, node.ParentID, index, step, sctx)
	default:
		return nil, NewError(KindSchemaParseFailed, fmt.Sprintf("unknown step type %q", step.Type))
	}
}

func (e *Executor) runFunctionStep(step models.Step, sctx *models.StepContext) (map[string]any, error) {
	if step.Handler == nil {
		return nil, NewError(KindSchemaParseFailed, fmt.Sprintf("step %q: function step has no handler", step.Name))
	}
	res, err := step.Handler(sctx)
	if err != nil {
		return nil, err
	}
	if res.ParentMessages != nil {
		sctx.Merge(map[string]any{models.ReservedParentMessagesKey: res.ParentMessages})
	}
	return res.Result, nil
}

func (e *Executor) runLLMStep(ctx context.Context, node *models.Trace, step models.Step, sctx *models.StepContext) (map[string]any, error) {
	if e.gateway == nil {
		return nil, NewError(KindModelCallFailed, "no gateway configured")
	}
	values := sctx.Snapshot()
	sys := RenderTemplate(step.SystemPrompt, values)
	msg := RenderTemplate(step.Message, values)

	req := CompletionRequest{
		Messages: []models.Message{
			{Role: models.RoleSystem, Content: sys},
			{Role: models.RoleUser, Content: msg},
		},
		Intelligence: step.Intelligence,
		OutputSchema: step.OutputSchema,
	}
	res, err := e.completeWithTrace(ctx, node, 0, req)
	if err != nil {
		return nil, err
	}
	if res.Parsed != nil {
		return res.Parsed, nil
	}
	return map[string]any{"final_content": res.Content}, nil
}

// completeWithTrace calls the gateway and records the attempt as an
// llm-call child of node, the one trace kind the spec requires per model
// turn (step nodes cover the step itself; a tool-call loop issues one of
// these per turn).
func (e *Executor) completeWithTrace(ctx context.Context, node *models.Trace, turn int, req CompletionRequest) (*CompletionResult, error) {
	start := time.Now()
	child := &models.Trace{
		ID:        fmt.Sprintf("%s_llm%d", node.ID, turn),
		ParentID:  node.ID,
		Name:      "llm_call",
		Kind:      models.TraceKindLLMCall,
		StartTime: start,
		Input:     map[string]any{"intelligence": string(req.Intelligence), "tool_count": len(req.Tools)},
	}

	res, err := e.gateway.Complete(ctx, req)
	child.Duration = time.Since(start)
	if err != nil {
		child.Status = models.TraceError
		child.Err = err.Error()
		node.Children = append(node.Children, child)
		_ = e.tracer.Persist(ctx, child)
		return nil, err
	}
	child.Status = models.TraceSuccess
	child.Output = map[string]any{"content": res.Content, "tool_call_count": len(res.ToolCalls)}
	node.Children = append(node.Children, child)
	_ = e.tracer.Persist(ctx, child)
	return res, nil
}

func (e *Executor) runActionStep(ctx context.Context, parentTraceID string, index int, step models.Step, sctx *models.StepContext) (map[string]any, error) {
	child, err := e.registry.Lookup(step.ActionName)
	if err != nil {
		return nil, err
	}
	childTraceID := fmt.Sprintf("%s_%d_%s", parentTraceID, index, uuid.New().String())
	return e.ExecuteAction(ctx, child, sctx.Snapshot(), childTraceID)
}

// isTruthy mirrors the spec's informal boolean-over-context evaluation: a
// when-predicate template renders to a string, and that string is truthy
// unless it is empty, "false", "0", or "null".
func isTruthy(rendered string) bool {
	switch rendered {
	case "", "false", "0", "null":
		return false
	default:
		return true
	}
}
