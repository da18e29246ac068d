package stats

import (
	"testing"
	"time"
)

func TestRegistry_SuccessRate_UndefinedWithNoSamples(t *testing.T) {
	r := New()
	if _, ok := r.SuccessRate("model:claude", time.Now()); ok {
		t.Fatalf("expected undefined rate with no recorded events")
	}
}

func TestRegistry_SuccessRate_ComputesFromRecordedEvents(t *testing.T) {
	r := New()
	now := time.Now()
	r.RecordSuccess("model:claude", now)
	r.RecordSuccess("model:claude", now.Add(time.Second))
	r.RecordError("model:claude", now.Add(2*time.Second))

	rate, ok := r.SuccessRate("model:claude", now.Add(-time.Minute))
	if !ok {
		t.Fatalf("expected defined rate")
	}
	if rate < 0.66 || rate > 0.67 {
		t.Fatalf("expected ~0.667 success rate, got %f", rate)
	}
}

func TestRegistry_SuccessRate_IgnoresEventsBeforeWindow(t *testing.T) {
	r := New()
	now := time.Now()
	r.RecordError("model:claude", now.Add(-time.Hour))
	r.RecordSuccess("model:claude", now)

	rate, ok := r.SuccessRate("model:claude", now.Add(-time.Minute))
	if !ok || rate != 1 {
		t.Fatalf("expected rate 1 ignoring stale error, got %f ok=%v", rate, ok)
	}
}

type recordingSink struct {
	calls []struct {
		counterName string
		amount      float64
	}
}

func (s *recordingSink) RecordStat(counterName string, amount float64, at time.Time) error {
	s.calls = append(s.calls, struct {
		counterName string
		amount      float64
	}{counterName, amount})
	return nil
}

func TestRegistry_NewWithSink_WritesThroughOnRecord(t *testing.T) {
	sink := &recordingSink{}
	r := NewWithSink(sink)
	now := time.Now()

	r.RecordSuccess("model:claude", now)
	r.RecordError("model:claude", now)

	if len(sink.calls) != 2 {
		t.Fatalf("expected 2 sink writes, got %d", len(sink.calls))
	}
	want := PersistedCounterName("model:claude", CounterSuccess)
	if sink.calls[0].counterName != want {
		t.Errorf("counterName = %q, want %q", sink.calls[0].counterName, want)
	}

	// The in-memory counters still work independently of the sink.
	rate, ok := r.SuccessRate("model:claude", now.Add(-time.Minute))
	if !ok || rate != 0.5 {
		t.Fatalf("expected rate 0.5, got %f ok=%v", rate, ok)
	}
}

func TestRegistry_Snapshot_ScopesToKey(t *testing.T) {
	r := New()
	now := time.Now()
	r.RecordSuccess("model:claude", now)
	r.RecordSuccess("model:gpt", now)

	snap := r.Snapshot("model:claude")
	if len(snap) != 1 {
		t.Fatalf("expected one counter for model:claude, got %d", len(snap))
	}
	if _, ok := snap[CounterSuccess]; !ok {
		t.Fatalf("expected success counter present")
	}
}

func TestSkipDecider_TripsAfterThresholdAndHoldsThroughCooldown(t *testing.T) {
	r := New()
	d := NewSkipDecider(r, SkipDeciderConfig{
		Window:     time.Minute,
		MinSamples: 3,
		Threshold:  0.5,
		Cooldown:   time.Minute,
	})

	now := time.Now()
	if d.ShouldSkip("tool:flaky", now) {
		t.Fatalf("expected no skip before any samples")
	}

	r.RecordError("tool:flaky", now)
	r.RecordError("tool:flaky", now)
	r.RecordSuccess("tool:flaky", now)

	if !d.ShouldSkip("tool:flaky", now.Add(time.Second)) {
		t.Fatalf("expected skip once error rate crosses threshold")
	}

	r.RecordSuccess("tool:flaky", now.Add(2*time.Second))
	if !d.ShouldSkip("tool:flaky", now.Add(3*time.Second)) {
		t.Fatalf("expected decider to stay tripped through cooldown regardless of new successes")
	}

	if d.ShouldSkip("tool:flaky", now.Add(2*time.Minute)) {
		t.Fatalf("expected decider to clear after cooldown elapses")
	}
}

func TestSkipDecider_RespectsMinSamples(t *testing.T) {
	r := New()
	d := NewSkipDecider(r, SkipDeciderConfig{
		Window:     time.Minute,
		MinSamples: 5,
		Threshold:  0.1,
		Cooldown:   time.Minute,
	})
	now := time.Now()
	r.RecordError("tool:new", now)

	if d.ShouldSkip("tool:new", now) {
		t.Fatalf("expected no skip below MinSamples even with a 100%% error rate")
	}
}
