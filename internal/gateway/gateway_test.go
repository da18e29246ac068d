package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/browserpilot/agent/internal/gateway/providers"
	"github.com/browserpilot/agent/internal/runtime"
	"github.com/browserpilot/agent/internal/stats"
	"github.com/browserpilot/agent/pkg/models"
)

// fakeProvider returns a scripted Response or error per call.
type fakeProvider struct {
	name  string
	fn    func(req providers.Request) (*providers.Response, error)
	calls int
}

func (f *fakeProvider) Name() string { return f.name }
func (f *fakeProvider) Complete(ctx context.Context, req providers.Request) (*providers.Response, error) {
	f.calls++
	return f.fn(req)
}

func TestGateway_CascadesToSecondModelOnFailure(t *testing.T) {
	failing := &fakeProvider{name: "bad", fn: func(providers.Request) (*providers.Response, error) {
		return nil, errors.New("boom")
	}}
	working := &fakeProvider{name: "good", fn: func(providers.Request) (*providers.Response, error) {
		return &providers.Response{Content: "ok"}, nil
	}}

	catalog := Catalog{
		models.IntelligenceHigh: {
			{Endpoint: "e1", Model: "m1", ProviderHint: "bad"},
			{Endpoint: "e2", Model: "m2", ProviderHint: "good"},
		},
	}
	gw := New(catalog, map[string]providers.Provider{"bad": failing, "good": working})

	result, err := gw.Complete(context.Background(), runtime.CompletionRequest{Intelligence: models.IntelligenceHigh})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "ok" {
		t.Errorf("content = %q", result.Content)
	}
	if failing.calls != 1 || working.calls != 1 {
		t.Errorf("calls: failing=%d working=%d", failing.calls, working.calls)
	}
}

func TestGateway_AllModelsFailed(t *testing.T) {
	failing := &fakeProvider{name: "bad", fn: func(providers.Request) (*providers.Response, error) {
		return nil, errors.New("boom")
	}}
	catalog := Catalog{
		models.IntelligenceHigh: {{Endpoint: "e1", Model: "m1", ProviderHint: "bad"}},
	}
	gw := New(catalog, map[string]providers.Provider{"bad": failing})

	_, err := gw.Complete(context.Background(), runtime.CompletionRequest{Intelligence: models.IntelligenceHigh})
	if err == nil {
		t.Fatal("expected error")
	}
	if !runtime.Is(err, runtime.KindAllModelsFailed) {
		t.Errorf("expected KindAllModelsFailed, got %v", err)
	}
}

func TestGateway_SkipsModelAfterRepeatedErrorsViaStatsCounter(t *testing.T) {
	failing := &fakeProvider{name: "bad", fn: func(providers.Request) (*providers.Response, error) {
		return nil, errors.New("boom")
	}}
	working := &fakeProvider{name: "good", fn: func(providers.Request) (*providers.Response, error) {
		return &providers.Response{Content: "ok"}, nil
	}}
	catalog := Catalog{
		models.IntelligenceHigh: {
			{Endpoint: "e1", Model: "m1", ProviderHint: "bad"},
			{Endpoint: "e2", Model: "m2", ProviderHint: "good"},
		},
	}

	registry := stats.New()
	gw := NewWithStats(catalog, map[string]providers.Provider{"bad": failing, "good": working}, registry)

	// Trip the skip decider's MinSamples/Threshold by forcing enough
	// errors on "bad" that its error rate crosses the default threshold.
	for i := 0; i < 3; i++ {
		if _, err := gw.Complete(context.Background(), runtime.CompletionRequest{Intelligence: models.IntelligenceHigh}); err != nil {
			t.Fatalf("unexpected error on warm-up call %d: %v", i, err)
		}
	}
	callsBefore := failing.calls

	if _, err := gw.Complete(context.Background(), runtime.CompletionRequest{Intelligence: models.IntelligenceHigh}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failing.calls != callsBefore {
		t.Errorf("expected the tripped model to be skipped, but it was called again (calls %d -> %d)", callsBefore, failing.calls)
	}
}

func TestGateway_CascadesAcrossTiers(t *testing.T) {
	working := &fakeProvider{name: "good", fn: func(providers.Request) (*providers.Response, error) {
		return &providers.Response{Content: "from-medium"}, nil
	}}
	catalog := Catalog{
		models.IntelligenceHigh:   {},
		models.IntelligenceMedium: {{Endpoint: "e1", Model: "m1", ProviderHint: "good"}},
	}
	gw := New(catalog, map[string]providers.Provider{"good": working})

	result, err := gw.Complete(context.Background(), runtime.CompletionRequest{Intelligence: models.IntelligenceHigh})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "from-medium" {
		t.Errorf("expected fallthrough to medium tier, got %q", result.Content)
	}
}
