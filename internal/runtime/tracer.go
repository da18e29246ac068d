package runtime

import (
	"context"

	"github.com/browserpilot/agent/pkg/models"
)

// Tracer is the dependency the runtime calls to persist completed trace
// nodes and stream AgentEvents, implemented by internal/trace.Store. The
// runtime builds the in-memory *models.Trace tree itself (parent-child via
// composite ids, per spec.md's id scheme); Tracer only needs to durably
// record it and fan out the live event stream.
type Tracer interface {
	// Persist writes one completed trace node (action, step, llm-call, or
	// warning) to the store. Called bottom-up as each node finishes.
	Persist(ctx context.Context, trace *models.Trace) error

	// Emit streams one AgentEvent, independent of persistence.
	Emit(ctx context.Context, event models.AgentEvent)
}

// NopTracer discards everything; useful for tests and for actions run
// without a configured store.
type NopTracer struct{}

func (NopTracer) Persist(context.Context, *models.Trace) error { return nil }
func (NopTracer) Emit(context.Context, models.AgentEvent)      {}
