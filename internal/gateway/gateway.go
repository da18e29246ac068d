// Package gateway implements the LLM Gateway: cascading model selection
// across a per-tier catalog with circuit-breaker skip logic, and schema
// enforcement on the resulting completion.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/browserpilot/agent/internal/gateway/providers"
	"github.com/browserpilot/agent/internal/runtime"
	"github.com/browserpilot/agent/internal/stats"
	"github.com/browserpilot/agent/pkg/models"
)

// tierOrder is the fixed fallback sequence a request at a given tier walks:
// its own tier, then the next-lower tier, then the one below that.
var tierOrder = []models.Intelligence{models.IntelligenceHigh, models.IntelligenceMedium, models.IntelligenceLow}

// Catalog is the per-tier ordered list of candidate models, the
// configuration artifact described in spec.md §6 ("this is configuration,
// not code").
type Catalog map[models.Intelligence][]models.ModelDescriptor

// Gateway implements runtime.Gateway, cascading across Catalog entries for
// the requested intelligence tier and the tiers below it.
type Gateway struct {
	catalog     Catalog
	providers   map[string]providers.Provider
	statsReg    *stats.Registry
	skipDecider *stats.SkipDecider
}

// New builds a Gateway with an in-memory-only Stats Counter (no durable
// sink); skip decisions reset on restart. providerSet maps a
// ModelDescriptor.ProviderHint value ("anthropic", "openai", ...) to the
// adapter that serves it; an empty ProviderHint resolves to the sole
// configured provider.
func New(catalog Catalog, providerSet map[string]providers.Provider) *Gateway {
	return NewWithStats(catalog, providerSet, stats.New())
}

// NewWithStats builds a Gateway backed by the given Stats Counter
// registry, letting a caller wire a durable sink (trace.Store.RecordStat)
// so skip history survives a process restart.
func NewWithStats(catalog Catalog, providerSet map[string]providers.Provider, registry *stats.Registry) *Gateway {
	return &Gateway{
		catalog:     catalog,
		providers:   providerSet,
		statsReg:    registry,
		skipDecider: stats.NewSkipDecider(registry, stats.DefaultSkipDeciderConfig()),
	}
}

// Complete implements runtime.Gateway.
func (g *Gateway) Complete(ctx context.Context, req runtime.CompletionRequest) (*runtime.CompletionResult, error) {
	candidates := g.candidatesFor(req.Intelligence)
	if len(candidates) == 0 {
		return nil, runtime.NewError(runtime.KindAllModelsFailed, fmt.Sprintf("no models configured for tier %q or below", req.Intelligence))
	}

	var lastErr error
	for _, model := range candidates {
		key := candidateKey(model)
		now := time.Now()
		if g.skipDecider.ShouldSkip(key, now) {
			g.statsReg.RecordSkip(key, now)
			continue
		}

		result, err := g.attempt(ctx, model, req)
		if err != nil {
			g.statsReg.RecordError(key, now)
			lastErr = err
			continue
		}
		g.statsReg.RecordSuccess(key, now)
		result.Model = model
		return result, nil
	}

	return nil, runtime.WrapError(runtime.KindAllModelsFailed, lastErr)
}

// candidatesFor flattens the requested tier and the tiers below it, in
// cascade order, skipping tiers with no configured models.
func (g *Gateway) candidatesFor(tier models.Intelligence) []models.ModelDescriptor {
	startIdx := 0
	for i, t := range tierOrder {
		if t == tier {
			startIdx = i
			break
		}
	}
	var out []models.ModelDescriptor
	for _, t := range tierOrder[startIdx:] {
		out = append(out, g.catalog[t]...)
	}
	return out
}

// attempt runs one candidate model against req, handling the tool-call
// path and the schema-enforced plain-completion path.
func (g *Gateway) attempt(ctx context.Context, model models.ModelDescriptor, req runtime.CompletionRequest) (*runtime.CompletionResult, error) {
	provider, err := g.resolveProvider(model)
	if err != nil {
		return nil, err
	}

	sys, userMsgs := splitSystemPrompt(req.Messages)

	if len(req.Tools) > 0 && !model.NoToolUse {
		presp, err := provider.Complete(ctx, providers.Request{
			Model:        model.Model,
			System:       sys,
			Messages:     toProviderMessages(userMsgs),
			Tools:        toProviderTools(req.Tools),
			NoToolChoice: model.NoToolChoice,
		})
		if err != nil {
			return nil, runtime.WrapError(runtime.KindModelCallFailed, err)
		}
		return &runtime.CompletionResult{
			Content:   presp.Content,
			ToolCalls: fromProviderToolCalls(presp.ToolCalls),
		}, nil
	}

	// Schema-enforced plain completion: when tools aren't in play, append a
	// JSON-hint to the final user message (providers here have no native
	// structured-output mode wired) and extract/validate the reply.
	hinted := userMsgs
	if len(req.OutputSchema) > 0 && len(hinted) > 0 {
		last := hinted[len(hinted)-1]
		last.Content += SchemaHint(req.OutputSchema)
		hinted = append(append([]models.Message{}, hinted[:len(hinted)-1]...), last)
	}

	presp, err := provider.Complete(ctx, providers.Request{
		Model:    model.Model,
		System:   sys,
		Messages: toProviderMessages(hinted),
	})
	if err != nil {
		return nil, runtime.WrapError(runtime.KindModelCallFailed, err)
	}

	if len(req.OutputSchema) == 0 {
		return &runtime.CompletionResult{Content: presp.Content}, nil
	}

	body, err := ExtractJSON(presp.Content)
	if err != nil {
		return nil, runtime.WrapError(runtime.KindSchemaParseFailed, err)
	}
	parsed, err := ValidateAgainstSchema(req.OutputSchema, body)
	if err != nil {
		return nil, runtime.WrapError(runtime.KindSchemaParseFailed, err)
	}
	return &runtime.CompletionResult{Content: presp.Content, Parsed: parsed}, nil
}

func (g *Gateway) resolveProvider(model models.ModelDescriptor) (providers.Provider, error) {
	hint := model.ProviderHint
	if hint == "" {
		for _, p := range g.providers {
			return p, nil
		}
		return nil, fmt.Errorf("gateway: no provider configured")
	}
	p, ok := g.providers[hint]
	if !ok {
		return nil, fmt.Errorf("gateway: no provider registered for hint %q", hint)
	}
	return p, nil
}

// CandidateKey is the skip decider's identity for one catalog entry,
// exported so callers outside the package (the doctor CLI subcommand) can
// look up the same key's recorded stats.
func CandidateKey(m models.ModelDescriptor) string {
	return m.Endpoint + "|" + m.Model + "|" + m.ProviderHint
}

func candidateKey(m models.ModelDescriptor) string { return CandidateKey(m) }

func splitSystemPrompt(msgs []models.Message) (string, []models.Message) {
	if len(msgs) > 0 && msgs[0].Role == models.RoleSystem {
		return msgs[0].Content, msgs[1:]
	}
	return "", msgs
}

func toProviderMessages(msgs []models.Message) []providers.Message {
	out := make([]providers.Message, 0, len(msgs))
	for _, m := range msgs {
		pm := providers.Message{Role: string(m.Role), Content: m.Content, ToolCallID: m.ToolCallID}
		for _, tc := range m.ToolCalls {
			pm.ToolCalls = append(pm.ToolCalls, providers.ToolCall{ID: tc.ID, Name: tc.Name, Input: tc.Input})
		}
		out = append(out, pm)
	}
	return out
}

func toProviderTools(specs []runtime.ToolSpec) []providers.Tool {
	out := make([]providers.Tool, 0, len(specs))
	for _, s := range specs {
		out = append(out, providers.Tool{Name: s.Name, Description: s.Description, InputSchema: s.InputSchema})
	}
	return out
}

func fromProviderToolCalls(calls []providers.ToolCall) []models.ToolCall {
	out := make([]models.ToolCall, 0, len(calls))
	for _, c := range calls {
		out = append(out, models.ToolCall{ID: c.ID, Name: c.Name, Input: c.Input})
	}
	return out
}
