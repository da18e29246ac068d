package browserstate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// contentScriptPath is the init script installed in every tracked page,
// exposing window.__browserpilotSend as the channel the bridge's
// SendMessage call evaluates into. A real deployment ships the actual
// content script bundle here; this path is a placeholder for wherever
// the extension build writes it.
const contentScriptPath = "assets/content_script.js"

// playwrightPage adapts a playwright.Page to PageHandle, evaluating into
// the page's injected content script rather than talking to it over a
// native-messaging channel, since a plain Playwright-driven Chromium has
// no extension process to relay through.
type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) URL(ctx context.Context) (string, error) {
	return p.page.URL(), nil
}

func (p *playwrightPage) Activate(ctx context.Context) error {
	return p.page.BringToFront()
}

func (p *playwrightPage) SendMessage(ctx context.Context, action string, params map[string]any) (map[string]any, error) {
	raw, err := p.page.Evaluate(
		`([action, params]) => window.__browserpilotSend(action, params)`,
		[]any{action, params},
	)
	if err != nil {
		return nil, err
	}
	result, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("browserstate: content script returned non-object result for %q", action)
	}
	return result, nil
}

func (p *playwrightPage) InjectContentScript(ctx context.Context) error {
	_, err := p.page.AddScriptTag(playwright.PageAddScriptTagOptions{Path: playwright.String(contentScriptPath)})
	return err
}

func (p *playwrightPage) WaitForLoadComplete(ctx context.Context, timeout time.Duration) error {
	return p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

// PlaywrightPageSource tracks the live playwright.Page behind each tab id,
// populated as contexts created by Pool fire their "page" event. It
// satisfies PageSource for Bridge.
type PlaywrightPageSource struct {
	mu    sync.Mutex
	pages map[string]playwright.Page
}

func NewPlaywrightPageSource() *PlaywrightPageSource {
	return &PlaywrightPageSource{pages: make(map[string]playwright.Page)}
}

func (s *PlaywrightPageSource) Track(tabID string, page playwright.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[tabID] = page
}

func (s *PlaywrightPageSource) Untrack(tabID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pages, tabID)
}

func (s *PlaywrightPageSource) Page(tabID string) (PageHandle, bool) {
	s.mu.Lock()
	page, ok := s.pages[tabID]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	return &playwrightPage{page: page}, true
}

// WatchSession wires a Session's new-page events into registry and
// pageSource: every tab the browser opens gets an alias minted and its
// page tracked, and closing a tab removes both.
func WatchSession(session *Session, registry *Registry, pageSource *PlaywrightPageSource) {
	session.Context.OnPage(func(page playwright.Page) {
		tabID := fmt.Sprintf("%s-%d", session.ID, time.Now().UnixNano())
		registry.EnsureTab(tabID, session.ID)
		pageSource.Track(tabID, page)
		page.OnClose(func(playwright.Page) {
			registry.RemoveTab(tabID)
			pageSource.Untrack(tabID)
		})
	})
}

var _ PageHandle = (*playwrightPage)(nil)
var _ PageSource = (*PlaywrightPageSource)(nil)
