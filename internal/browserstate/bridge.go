package browserstate

import (
	"context"
	"time"

	"github.com/browserpilot/agent/internal/runtime"
)

// PageHandle abstracts the one playwright.Page operation set the bridge
// needs, so the send protocol can be tested without a real browser.
type PageHandle interface {
	URL(ctx context.Context) (string, error)
	Activate(ctx context.Context) error
	SendMessage(ctx context.Context, action string, params map[string]any) (map[string]any, error)
	InjectContentScript(ctx context.Context) error
	WaitForLoadComplete(ctx context.Context, timeout time.Duration) error
}

// PageSource resolves a tab id to its live page handle.
type PageSource interface {
	Page(tabID string) (PageHandle, bool)
}

const (
	activateWait   = 50 * time.Millisecond
	navPollFirst   = 100 * time.Millisecond
	navPollSecond  = 400 * time.Millisecond
	navLoadTimeout = 10 * time.Second
)

// Bridge implements the spec's bridge send protocol (§4.5) against a
// Registry and a PageSource.
type Bridge struct {
	registry *Registry
	pages    PageSource
}

// NewBridge builds a Bridge over registry and pages.
func NewBridge(registry *Registry, pages PageSource) *Bridge {
	return &Bridge{registry: registry, pages: pages}
}

// Send resolves aliasOrID, activates the tab if we didn't last activate
// it, rejects restricted URLs, sends the message, retries once after an
// idempotent content-script injection on a "no receiver" failure, and
// classifies known browser-error-page failures.
func (b *Bridge) Send(ctx context.Context, aliasOrID, action string, params map[string]any) (map[string]any, error) {
	tabID, err := b.registry.ResolveTabID(aliasOrID)
	if err != nil {
		return nil, err
	}
	page, ok := b.pages.Page(tabID)
	if !ok {
		return nil, runtime.NewError(runtime.KindTabGone, "tab no longer exists: "+aliasOrID)
	}

	rec, _ := b.registry.Get(tabID)
	if rec == nil || !rec.LastActivatedByUs {
		if err := page.Activate(ctx); err != nil {
			return nil, runtime.WrapError(runtime.KindTabGone, err)
		}
		time.Sleep(activateWait)
		b.registry.MarkActivated(tabID, true)
	}

	url, err := page.URL(ctx)
	if err != nil {
		return nil, runtime.WrapError(runtime.KindTabGone, err)
	}
	if isRestrictedURL(url) {
		return nil, runtime.NewError(runtime.KindRestricted, "restricted page: "+url)
	}

	result, sendErr := page.SendMessage(ctx, action, params)
	if sendErr == nil {
		return result, nil
	}

	if isNoReceiverError(sendErr.Error()) {
		if injErr := page.InjectContentScript(ctx); injErr != nil {
			return nil, runtime.WrapError(runtime.KindScriptInjectionFailed, injErr)
		}
		result, sendErr = page.SendMessage(ctx, action, params)
		if sendErr == nil {
			return result, nil
		}
	}

	if code, matched := classifyBrowserErrorPage(sendErr.Error()); matched {
		networkErr := b.recentNetworkError(tabID)
		detail := map[string]any{"code": code}
		if networkErr != "" {
			detail["network_error"] = networkErr
		}
		return nil, runtime.NewError(runtime.KindBrowserErrorPage, code).WithDetail(detail)
	}
	return nil, runtime.WrapError(runtime.KindScriptInjectionFailed, sendErr)
}

func (b *Bridge) recentNetworkError(tabID string) string {
	rec, ok := b.registry.Get(tabID)
	if !ok || !rec.LastNetworkError.recent(time.Now()) {
		return ""
	}
	return rec.LastNetworkError.Code
}

// SendWithNavigationDetection wraps Send for actions that may navigate
// the page: it captures the URL before, polls after at 100ms then
// 400ms, and if the URL changed, records the new history entry and
// waits up to 10s for the page to report "complete", augmenting the
// result with {navigated: true, new_url}.
func (b *Bridge) SendWithNavigationDetection(ctx context.Context, aliasOrID, action string, params map[string]any) (map[string]any, error) {
	tabID, err := b.registry.ResolveTabID(aliasOrID)
	if err != nil {
		return nil, err
	}
	page, ok := b.pages.Page(tabID)
	if !ok {
		return nil, runtime.NewError(runtime.KindTabGone, "tab no longer exists: "+aliasOrID)
	}

	before, _ := page.URL(ctx)

	result, err := b.Send(ctx, aliasOrID, action, params)
	if err != nil {
		return nil, err
	}

	after := pollForURLChange(ctx, page, before)
	if after == before || after == "" {
		return result, nil
	}

	b.registry.RecordVisit(tabID, after, "", time.Now())
	if waitErr := page.WaitForLoadComplete(ctx, navLoadTimeout); waitErr != nil {
		return nil, runtime.WrapError(runtime.KindTimeout, waitErr)
	}

	result["navigated"] = true
	result["new_url"] = after
	return result, nil
}

func pollForURLChange(ctx context.Context, page PageHandle, before string) string {
	time.Sleep(navPollFirst)
	if url, err := page.URL(ctx); err == nil && url != before {
		return url
	}
	time.Sleep(navPollSecond)
	if url, err := page.URL(ctx); err == nil {
		return url
	}
	return before
}
