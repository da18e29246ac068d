// Package stats implements the Stats Counter primitive: an append-only,
// bounded log of timestamped amounts per (key, counter name), used to
// compute success/error rates and back skip decisions.
package stats

import (
	"sync"
	"time"

	"github.com/browserpilot/agent/pkg/models"
)

const (
	// CounterSuccess and CounterError are the two counter names this
	// package's rate helpers look for under a given key; callers may
	// record additional named counters (e.g. "skip", "bytes") freely.
	CounterSuccess = "success"
	CounterError   = "error"
	CounterSkip    = "skip"
)

// Sink durably records a counter event alongside the in-memory Registry,
// so counters survive a process restart. *trace.Store satisfies this
// structurally; internal/stats never imports internal/trace.
type Sink interface {
	RecordStat(counterName string, amount float64, at time.Time) error
}

// Registry holds every (key, counter-name) StatsCounter the process has
// created, generalizing the teacher's FailoverMetrics (a single
// map[string]int64 per metric name) into the spec's per-counter,
// bounded/retained append log (pkg/models.StatsCounter).
type Registry struct {
	mu       sync.Mutex
	counters map[string]*models.StatsCounter
	sink     Sink
}

// New returns an empty registry with no durable sink; counters live only
// as long as the process does.
func New() *Registry {
	return &Registry{counters: make(map[string]*models.StatsCounter)}
}

// NewWithSink returns an empty registry that also writes every Record call
// through to sink, used in production to back counters with the trace
// store's stats table.
func NewWithSink(sink Sink) *Registry {
	return &Registry{counters: make(map[string]*models.StatsCounter), sink: sink}
}

func compositeKey(key, counterName string) string {
	return key + "\x00" + counterName
}

// PersistedCounterName returns the row key a durable Sink stores a
// (key, counterName) pair under, so a reader going straight to the sink
// (the doctor CLI subcommand querying trace.Store.StatSum) can reconstruct
// it without a live Registry.
func PersistedCounterName(key, counterName string) string {
	return compositeKey(key, counterName)
}

func (r *Registry) counter(key, counterName string) *models.StatsCounter {
	ck := compositeKey(key, counterName)
	c, ok := r.counters[ck]
	if !ok {
		c = models.NewStatsCounter(counterName)
		r.counters[ck] = c
	}
	return c
}

// Record appends amount to the named counter under key, and if a Sink was
// configured, writes the same event through for durability. A sink error
// is swallowed: the in-memory counter (what skip decisions read) is the
// source of truth for this process's own lifetime regardless.
func (r *Registry) Record(key, counterName string, amount float64, at time.Time) {
	r.mu.Lock()
	r.counter(key, counterName).Append(amount, at)
	sink := r.sink
	r.mu.Unlock()

	if sink != nil {
		_ = sink.RecordStat(compositeKey(key, counterName), amount, at)
	}
}

// RecordSuccess and RecordError are the two events the gateway produces
// per candidate attempt; they're named helpers since those are the
// counters SuccessRate/ErrorRate read back.
func (r *Registry) RecordSuccess(key string, at time.Time) { r.Record(key, CounterSuccess, 1, at) }
func (r *Registry) RecordError(key string, at time.Time)   { r.Record(key, CounterError, 1, at) }
func (r *Registry) RecordSkip(key string, at time.Time)    { r.Record(key, CounterSkip, 1, at) }

// SuccessRate returns successes / (successes + errors) recorded under key
// at or after since, or (0, false) if neither counter has any entries in
// the window (rate is undefined, not zero).
func (r *Registry) SuccessRate(key string, since time.Time) (rate float64, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	successes := r.counter(key, CounterSuccess).SumSince(since)
	errors := r.counter(key, CounterError).SumSince(since)
	total := successes + errors
	if total == 0 {
		return 0, false
	}
	return successes / total, true
}

// ErrorRate is 1 - SuccessRate over the same window, with the same
// undefined-when-empty semantics.
func (r *Registry) ErrorRate(key string, since time.Time) (rate float64, ok bool) {
	successRate, ok := r.SuccessRate(key, since)
	if !ok {
		return 0, false
	}
	return 1 - successRate, true
}

// Snapshot returns a copy of every counter recorded under key, keyed by
// counter name, for reporting.
func (r *Registry) Snapshot(key string) map[string]models.StatsCounter {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]models.StatsCounter)
	prefix := key + "\x00"
	for ck, c := range r.counters {
		if len(ck) > len(prefix) && ck[:len(prefix)] == prefix {
			out[c.Name] = *c
		}
	}
	return out
}
