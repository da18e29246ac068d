package contentscript

import (
	"context"

	"github.com/browserpilot/agent/internal/browserstate"
)

// sender is the subset of *browserstate.Bridge these typed helpers need,
// narrowed so callers can fake it in tests without a real bridge.
type sender interface {
	Send(ctx context.Context, tab, action string, params map[string]any) (map[string]any, error)
}

// ExtractContent calls extractContent on tab and decodes the reply.
func ExtractContent(ctx context.Context, b sender, tab string) (*ExtractContentResult, error) {
	raw, err := b.Send(ctx, tab, ActionExtractContent, nil)
	if err != nil {
		return nil, err
	}
	var result ExtractContentResult
	if err := FromResult(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ClickElement calls clickElement on tab with req and decodes the reply.
func ClickElement(ctx context.Context, b sender, tab string, req ClickElementParams) (*ClickElementResult, error) {
	params, err := ToParams(req)
	if err != nil {
		return nil, err
	}
	raw, err := b.Send(ctx, tab, ActionClickElement, params)
	if err != nil {
		return nil, err
	}
	var result ClickElementResult
	if err := FromResult(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FillForm calls fillForm on tab with req and decodes the reply.
func FillForm(ctx context.Context, b sender, tab string, req FillFormParams) (*FillFormResult, error) {
	params, err := ToParams(req)
	if err != nil {
		return nil, err
	}
	raw, err := b.Send(ctx, tab, ActionFillForm, params)
	if err != nil {
		return nil, err
	}
	var result FillFormResult
	if err := FromResult(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ScrollAndWait calls scrollAndWait on tab with req and decodes the reply.
func ScrollAndWait(ctx context.Context, b sender, tab string, req ScrollAndWaitParams) (*ScrollAndWaitResult, error) {
	params, err := ToParams(req)
	if err != nil {
		return nil, err
	}
	raw, err := b.Send(ctx, tab, ActionScrollAndWait, params)
	if err != nil {
		return nil, err
	}
	var result ScrollAndWaitResult
	if err := FromResult(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

var _ sender = (*browserstate.Bridge)(nil)
