package actions

import (
	"context"
	"testing"

	"github.com/browserpilot/agent/internal/contentscript"
	"github.com/browserpilot/agent/internal/domclean"
	"github.com/browserpilot/agent/pkg/models"
)

type fakeBridge struct {
	result map[string]any
}

func (f *fakeBridge) Send(ctx context.Context, tab, action string, params map[string]any) (map[string]any, error) {
	return f.result, nil
}

func TestExtractPageAction_CleansContentAndCarriesElements(t *testing.T) {
	bridge := &fakeBridge{result: map[string]any{
		"title":   "Example",
		"url":     "https://example.com",
		"content": "<html><body><p data-vish-id=\"1\">hello world</p></body></html>",
		"links":   []any{map[string]any{"id": float64(2), "tag": "a", "text": "home", "href": "/"}},
	}}

	action := NewExtractPageAction(bridge, domclean.DefaultConfig())
	if action.Name != "extract_page" {
		t.Fatalf("action name = %q, want extract_page", action.Name)
	}

	sctx := models.NewStepContext(map[string]any{"tab": "t1"})
	handler := action.Steps[0].Handler
	res, err := handler(sctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Result["title"] != "Example" {
		t.Errorf("title = %v, want Example", res.Result["title"])
	}
	content, _ := res.Result["content"].(string)
	if content == "" {
		t.Fatal("expected non-empty cleaned content")
	}
	links, ok := res.Result["links"].([]contentscript.InteractiveElement)
	if !ok || len(links) != 1 {
		t.Fatalf("expected one link carried through, got %v", res.Result["links"])
	}
}

func TestExtractPageAction_MissingTabErrors(t *testing.T) {
	action := NewExtractPageAction(&fakeBridge{}, domclean.DefaultConfig())
	handler := action.Steps[0].Handler
	if _, err := handler(models.NewStepContext(nil)); err == nil {
		t.Fatal("expected error for missing tab input")
	}
}
