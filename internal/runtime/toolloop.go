package runtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/browserpilot/agent/pkg/models"
)

// defaultMaxIterations bounds a tool-call loop when a step omits
// ToolChoice.MaxIterations.
const defaultMaxIterations = 8

// runToolLoop implements the llm-step-with-tools sub-protocol: seed a
// transcript, repeatedly ask the Gateway for a completion advertising the
// configured Actions as tools, execute each returned tool call in order
// (stop_action terminates the loop), and append continuation messages
// between turns.
//
// MaxIterations policy: if the loop exhausts max_iterations without the
// model choosing stop_action, the runtime forces one final stop_action
// call directly (not through another model turn) using whatever context
// has accumulated, rather than failing the step outright. This keeps
// partial progress usable by the caller; see SPEC_FULL.md §4.1.
func (e *Executor) runToolLoop(ctx context.Context, node *models.Trace, stepIndex int, step models.Step, sctx *models.StepContext) (map[string]any, error) {
	actionTraceID := node.ParentID
	tc := step.ToolChoice
	maxIter := tc.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}

	tools, err := e.buildToolSpecs(tc.Actions)
	if err != nil {
		return nil, err
	}

	values := sctx.Snapshot()
	transcript := []models.Message{
		{Role: models.RoleSystem, Content: RenderTemplate(step.SystemPrompt, values)},
		{Role: models.RoleUser, Content: RenderTemplate(step.Message, values)},
	}

	for turn := 0; turn < maxIter; turn++ {
		req := CompletionRequest{
			Messages:     transcript,
			Intelligence: step.Intelligence,
			Tools:        tools,
		}
		res, err := e.completeWithTrace(ctx, node, turn, req)
		if err != nil {
			return nil, WrapError(KindModelCallFailed, err)
		}

		if len(res.ToolCalls) == 0 {
			transcript = append(transcript, models.Message{Role: models.RoleAssistant, Content: res.Content})
			return map[string]any{
				"final_content":                  res.Content,
				models.ReservedParentMessagesKey: transcript,
			}, nil
		}

		transcript = append(transcript, models.Message{Role: models.RoleAssistant, ToolCalls: res.ToolCalls})

		for _, call := range res.ToolCalls {
			if call.Name == tc.StopAction {
				result, _ := e.invokeToolAction(ctx, actionTraceID, stepIndex, turn, call, sctx)
				transcript = append(transcript, toolResultMessage(call, result))
				return finalizeToolLoop(result, transcript), nil
			}

			result, _ := e.invokeToolAction(ctx, actionTraceID, stepIndex, turn, call, sctx)
			transcript = append(transcript, toolResultMessage(call, result))
		}

		if turn+1 < maxIter && tc.ContinuationMessage != "" {
			transcript = append(transcript, models.Message{Role: models.RoleUser, Content: tc.ContinuationMessage})
		}
	}

	return e.forceStopAction(ctx, actionTraceID, stepIndex, tc.StopAction, sctx, transcript)
}

// forceStopAction implements the chosen MaxIterations policy: invoke the
// stop_action directly with the accumulated context instead of failing.
func (e *Executor) forceStopAction(ctx context.Context, actionTraceID string, stepIndex int, stopAction string, sctx *models.StepContext, transcript []models.Message) (map[string]any, error) {
	action, err := e.registry.Lookup(stopAction)
	if err != nil {
		return nil, WrapError(KindMaxIterations, err)
	}
	childTraceID := fmt.Sprintf("%s_%d_%s", actionTraceID, stepIndex, uuid.New().String())
	result, err := e.ExecuteAction(ctx, action, sctx.Snapshot(), childTraceID)
	if err != nil {
		return nil, WrapError(KindMaxIterations, err)
	}
	return finalizeToolLoop(result, transcript), nil
}

// invokeToolAction resolves and runs the Action named by a tool call,
// returning a JSON-serializable result map regardless of outcome. Per the
// child-action-failure-as-tool-result policy, an execution error is both
// returned and folded into the map under "error"; runToolLoop ignores the
// returned error and sends the map back as the tool result, so a failing
// child never aborts the step.
func (e *Executor) invokeToolAction(ctx context.Context, actionTraceID string, stepIndex, turn int, call models.ToolCall, sctx *models.StepContext) (map[string]any, error) {
	action, err := e.registry.Lookup(call.Name)
	if err != nil {
		return map[string]any{"error": map[string]any{"kind": string(KindSchemaParseFailed), "message": err.Error()}}, err
	}

	input := map[string]any{}
	if len(call.Input) > 0 {
		if err := json.Unmarshal(call.Input, &input); err != nil {
			e := NewError(KindSchemaParseFailed, fmt.Sprintf("tool call %q: invalid input JSON: %v", call.Name, err))
			return map[string]any{"error": map[string]any{"kind": string(e.Kind), "message": e.Message}}, e
		}
	}

	childTraceID := fmt.Sprintf("%s_%d_%s", actionTraceID, stepIndex, uuid.New().String())
	result, err := e.ExecuteAction(ctx, action, input, childTraceID)
	if err != nil {
		kind, ok := KindOf(err)
		if !ok {
			kind = KindModelCallFailed
		}
		return map[string]any{"error": map[string]any{"kind": string(kind), "message": err.Error()}}, err
	}
	return result, nil
}

// buildToolSpecs resolves each advertised action name to a ToolSpec,
// carrying its input schema and description as the teacher's tool
// registry exposes AsLLMTools.
func (e *Executor) buildToolSpecs(names []string) ([]ToolSpec, error) {
	specs := make([]ToolSpec, 0, len(names))
	for _, name := range names {
		action, err := e.registry.Lookup(name)
		if err != nil {
			return nil, err
		}
		specs = append(specs, ToolSpec{
			Name:        action.Name,
			Description: action.Description,
			InputSchema: action.InputSchema,
		})
	}
	return specs, nil
}

// toolResultMessage serializes result as the JSON body of a tool message
// matching call's ToolCallID.
func toolResultMessage(call models.ToolCall, result map[string]any) models.Message {
	body, err := json.Marshal(result)
	if err != nil {
		body = []byte(fmt.Sprintf(`{"error":{"message":%q}}`, err.Error()))
	}
	return models.Message{
		Role:       models.RoleTool,
		Content:    string(body),
		ToolCallID: call.ID,
	}
}

// finalizeToolLoop merges the terminal stop_action result with the
// transcript that produced it.
func finalizeToolLoop(result map[string]any, transcript []models.Message) map[string]any {
	out := make(map[string]any, len(result)+1)
	for k, v := range result {
		out[k] = v
	}
	out[models.ReservedParentMessagesKey] = transcript
	return out
}
