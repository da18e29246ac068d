package contentscript

import "testing"

func TestToParams_RoundTripsClickElement(t *testing.T) {
	req := ClickElementParams{ElementID: 7, Modifiers: ClickModifiers{NewTab: true}}
	params, err := ToParams(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params["elementId"].(float64) != 7 {
		t.Fatalf("expected elementId 7, got %v", params["elementId"])
	}
	modifiers, ok := params["modifiers"].(map[string]any)
	if !ok {
		t.Fatalf("expected modifiers map, got %T", params["modifiers"])
	}
	if modifiers["newTab"] != true {
		t.Fatalf("expected newTab true, got %v", modifiers["newTab"])
	}
}

func TestFromResult_DecodesExtractContentResult(t *testing.T) {
	raw := map[string]any{
		"title":       "Example",
		"url":         "https://example.com",
		"content":     "<html></html>",
		"contentMode": "html",
		"byteSize":    float64(13),
		"rawHtmlSize": float64(13),
		"domStable":   true,
		"domWaitMs":   float64(300),
		"links": []any{
			map[string]any{"id": float64(1), "tag": "a", "text": "home", "href": "/"},
		},
	}

	var result ExtractContentResult
	if err := FromResult(raw, &result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Title != "Example" || result.ContentMode != "html" {
		t.Fatalf("unexpected decode: %+v", result)
	}
	if len(result.Links) != 1 || result.Links[0].ID != 1 || result.Links[0].Text != "home" {
		t.Fatalf("unexpected links: %+v", result.Links)
	}
}

func TestFromResult_DecodesFillFormResult(t *testing.T) {
	raw := map[string]any{
		"filled_fields": float64(2),
		"results": []any{
			map[string]any{"elementId": float64(3), "success": true},
			map[string]any{"elementId": float64(4), "success": false, "message": "not editable"},
		},
	}
	var result FillFormResult
	if err := FromResult(raw, &result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FilledFields != 2 || len(result.Results) != 2 {
		t.Fatalf("unexpected decode: %+v", result)
	}
	if result.Results[1].Message != "not editable" {
		t.Fatalf("expected message carried through, got %+v", result.Results[1])
	}
}
