package actions

import (
	"encoding/json"

	"github.com/browserpilot/agent/pkg/models"
)

const defaultSummarizeSystemPrompt = "You summarize web page content in three sentences or fewer."

// NewSummarizePageAction builds "summarize_page": a nested-action step that
// reuses extract_page's Action definition, followed by an LLM step that
// summarizes the cleaned content. Both extract_page and summarize_page must
// be registered on the same Registry for the nested step to resolve.
//
// systemPromptOverride, when non-empty, replaces the default summary
// instruction; it is sourced from the "summarize_system_prompt" user
// preference key (see cmd/browserpilot's "prefs" subcommand) so an operator
// can retune the summary's tone or length without a rebuild.
func NewSummarizePageAction(systemPromptOverride string) *models.Action {
	systemPrompt := defaultSummarizeSystemPrompt
	if systemPromptOverride != "" {
		systemPrompt = systemPromptOverride
	}
	return &models.Action{
		Name:        "summarize_page",
		Description: "Extract a tab's content and summarize it with an LLM.",
		Examples:    []string{"summarize the active tab for me"},
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {"tab": {"type": "string"}},
			"required": ["tab"]
		}`),
		Steps: []models.Step{
			{
				Name:       "extract",
				Type:       models.StepAction,
				ActionName: "extract_page",
			},
			{
				Name:         "summarize",
				Type:         models.StepLLM,
				Intelligence: models.IntelligenceMedium,
				SystemPrompt: systemPrompt,
				Message:      "Page title: {{title}}\nURL: {{url}}\n\nContent:\n{{content}}",
				OutputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {"summary": {"type": "string"}},
					"required": ["summary"]
				}`),
			},
		},
	}
}
