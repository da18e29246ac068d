package stats

import "time"

// SkipDeciderConfig mirrors the teacher's FailoverConfig circuit-breaker
// fields (internal/agent/failover.go's CircuitBreakerThreshold /
// CircuitBreakerTimeout), generalized from "one boolean per provider" to
// any stats-tracked key: skip once the error rate over Window crosses
// Threshold, for Cooldown before reconsidering.
type SkipDeciderConfig struct {
	Window     time.Duration
	MinSamples float64
	Threshold  float64
	Cooldown   time.Duration
}

// DefaultSkipDeciderConfig matches the teacher's
// DefaultFailoverConfig's circuit breaker defaults in spirit: three
// failures within the window are enough to trip it, and it stays
// tripped for 30s.
func DefaultSkipDeciderConfig() SkipDeciderConfig {
	return SkipDeciderConfig{
		Window:     5 * time.Minute,
		MinSamples: 3,
		Threshold:  0.5,
		Cooldown:   30 * time.Second,
	}
}

// SkipDecider answers "should key be skipped right now" from a Registry's
// recorded success/error history, adapting the teacher's
// ProviderState.IsAvailable (boolean circuit, opened on a raw failure
// count, closed after a fixed cooldown) into a rate-based decision
// computed lazily from the Stats Counter log; the only per-key state it
// keeps is the time each key was tripped, for the cooldown.
type SkipDecider struct {
	registry  *Registry
	config    SkipDeciderConfig
	trippedAt map[string]time.Time
}

// NewSkipDecider builds a decider reading from registry.
func NewSkipDecider(registry *Registry, config SkipDeciderConfig) *SkipDecider {
	return &SkipDecider{
		registry:  registry,
		config:    config,
		trippedAt: make(map[string]time.Time),
	}
}

// ShouldSkip reports whether key's recent error rate warrants skipping it
// this attempt. Once tripped, it stays tripped for Cooldown regardless of
// new events, matching the teacher's fixed-cooldown circuit reopening.
func (d *SkipDecider) ShouldSkip(key string, now time.Time) bool {
	if trippedAt, ok := d.trippedAt[key]; ok {
		if now.Sub(trippedAt) < d.config.Cooldown {
			return true
		}
		delete(d.trippedAt, key)
	}

	since := now.Add(-d.config.Window)
	rate, ok := d.registry.ErrorRate(key, since)
	if !ok {
		return false
	}
	if d.sampleCount(key, since) < d.config.MinSamples {
		return false
	}
	if rate >= d.config.Threshold {
		d.trippedAt[key] = now
		return true
	}
	return false
}

func (d *SkipDecider) sampleCount(key string, since time.Time) float64 {
	d.registry.mu.Lock()
	defer d.registry.mu.Unlock()
	successes := d.registry.counter(key, CounterSuccess).SumSince(since)
	errors := d.registry.counter(key, CounterError).SumSince(since)
	return successes + errors
}

// Reset clears a tripped key.
func (d *SkipDecider) Reset(key string) {
	delete(d.trippedAt, key)
}
