// Package actions holds the runtime's built-in Action definitions: the
// small set of programs shipped with the CLI rather than registered by a
// calling application. Each wires together the gateway, the bridge, and
// the DOM cleaning pipeline the way a caller's own Actions would.
package actions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/browserpilot/agent/internal/contentscript"
	"github.com/browserpilot/agent/internal/domclean"
	"github.com/browserpilot/agent/pkg/models"
)

// Bridge is the subset of *browserstate.Bridge these actions need, narrowed
// so they can be built and tested against a fake without a live browser.
type Bridge interface {
	Send(ctx context.Context, tab, action string, params map[string]any) (map[string]any, error)
}

// NewExtractPageAction builds the "extract_page" Action: a single function
// step that pulls the raw DOM for a tab through the bridge, runs it through
// the cleaning pipeline, and returns the cleaned content plus the page's
// interactive elements.
func NewExtractPageAction(bridge Bridge, cfg domclean.Config) *models.Action {
	return &models.Action{
		Name:        "extract_page",
		Description: "Extract cleaned page content and interactive elements from a browser tab.",
		Examples:    []string{"extract the visible content of the active tab"},
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {"tab": {"type": "string"}},
			"required": ["tab"]
		}`),
		Steps: []models.Step{
			{
				Name:    "extract",
				Type:    models.StepFunction,
				Handler: extractPageHandler(bridge, cfg),
			},
		},
	}
}

func extractPageHandler(bridge Bridge, cfg domclean.Config) models.FunctionHandler {
	return func(ctx *models.StepContext) (models.FunctionResult, error) {
		tabValue, ok := ctx.Get("tab")
		if !ok {
			return models.FunctionResult{}, fmt.Errorf("extract_page: missing required input %q", "tab")
		}
		tab, ok := tabValue.(string)
		if !ok || tab == "" {
			return models.FunctionResult{}, fmt.Errorf("extract_page: %q must be a non-empty string", "tab")
		}

		// Function steps receive no context.Context; bridge calls run against
		// Background and rely on the browser's own send timeouts.
		raw, err := contentscript.ExtractContent(context.Background(), bridge, tab)
		if err != nil {
			return models.FunctionResult{}, err
		}

		cleaned, err := domclean.Clean(raw.Content, cfg)
		if err != nil {
			return models.FunctionResult{}, err
		}

		return models.FunctionResult{Result: map[string]any{
			"title":        raw.Title,
			"url":          raw.URL,
			"content":      cleaned.Content,
			"content_mode": string(cleaned.Mode),
			"byte_size":    cleaned.ByteSize,
			"links":        raw.Links,
			"buttons":      raw.Buttons,
			"inputs":       raw.Inputs,
			"selects":      raw.Selects,
			"textareas":    raw.Textareas,
		}}, nil
	}
}
