package contentscript

import (
	"context"
	"testing"
)

type fakeSender struct {
	lastAction string
	lastParams map[string]any
	result     map[string]any
}

func (f *fakeSender) Send(ctx context.Context, tab, action string, params map[string]any) (map[string]any, error) {
	f.lastAction = action
	f.lastParams = params
	return f.result, nil
}

func TestClickElement_SendsTypedParamsAndDecodesResult(t *testing.T) {
	fake := &fakeSender{result: map[string]any{"success": true, "message": "clicked"}}

	result, err := ClickElement(context.Background(), fake, "t1", ClickElementParams{ElementID: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.lastAction != ActionClickElement {
		t.Fatalf("expected action %q, got %q", ActionClickElement, fake.lastAction)
	}
	if fake.lastParams["elementId"].(float64) != 5 {
		t.Fatalf("expected elementId 5 sent, got %v", fake.lastParams["elementId"])
	}
	if !result.Success || result.Message != "clicked" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestExtractContent_DecodesReply(t *testing.T) {
	fake := &fakeSender{result: map[string]any{
		"title":       "Home",
		"url":         "https://example.com",
		"content":     "<div></div>",
		"contentMode": "html",
	}}

	result, err := ExtractContent(context.Background(), fake, "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Title != "Home" {
		t.Fatalf("unexpected result: %+v", result)
	}
}
