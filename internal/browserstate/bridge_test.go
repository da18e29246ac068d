package browserstate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/browserpilot/agent/internal/runtime"
)

type fakePage struct {
	url              string
	activated        int
	injected         int
	sendErrs         []error
	sendCalls        int
	sendResult       map[string]any
	navigateAfterSend string
	loadErr          error
}

func (p *fakePage) URL(ctx context.Context) (string, error) {
	return p.url, nil
}

func (p *fakePage) Activate(ctx context.Context) error {
	p.activated++
	return nil
}

func (p *fakePage) SendMessage(ctx context.Context, action string, params map[string]any) (map[string]any, error) {
	idx := p.sendCalls
	p.sendCalls++
	if idx < len(p.sendErrs) && p.sendErrs[idx] != nil {
		return nil, p.sendErrs[idx]
	}
	if p.navigateAfterSend != "" {
		p.url = p.navigateAfterSend
	}
	if p.sendResult != nil {
		return p.sendResult, nil
	}
	return map[string]any{"ok": true}, nil
}

func (p *fakePage) InjectContentScript(ctx context.Context) error {
	p.injected++
	return nil
}

func (p *fakePage) WaitForLoadComplete(ctx context.Context, timeout time.Duration) error {
	return p.loadErr
}

type fakePageSource struct {
	pages map[string]PageHandle
}

func (s *fakePageSource) Page(tabID string) (PageHandle, bool) {
	p, ok := s.pages[tabID]
	return p, ok
}

func newTestBridge(tabID string, page *fakePage) (*Bridge, *Registry) {
	reg := NewRegistry()
	reg.EnsureTab(tabID, "w1")
	src := &fakePageSource{pages: map[string]PageHandle{tabID: page}}
	return NewBridge(reg, src), reg
}

func TestBridge_Send_ActivatesOnFirstUse(t *testing.T) {
	page := &fakePage{url: "https://example.com"}
	b, _ := newTestBridge("tab-1", page)

	_, err := b.Send(context.Background(), "t1", "click", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.activated != 1 {
		t.Fatalf("expected 1 activation, got %d", page.activated)
	}

	_, err = b.Send(context.Background(), "t1", "click", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.activated != 1 {
		t.Fatalf("expected no re-activation on second send, got %d", page.activated)
	}
}

func TestBridge_Send_RejectsRestrictedURL(t *testing.T) {
	page := &fakePage{url: "chrome://settings"}
	b, _ := newTestBridge("tab-1", page)

	_, err := b.Send(context.Background(), "t1", "click", nil)
	if !runtime.Is(err, runtime.KindRestricted) {
		t.Fatalf("expected Restricted error, got %v", err)
	}
}

func TestBridge_Send_UnknownAlias(t *testing.T) {
	page := &fakePage{url: "https://example.com"}
	b, _ := newTestBridge("tab-1", page)

	_, err := b.Send(context.Background(), "t99", "click", nil)
	if !runtime.Is(err, runtime.KindInvalidTab) {
		t.Fatalf("expected InvalidTab error, got %v", err)
	}
}

func TestBridge_Send_RetriesAfterInjectingOnNoReceiver(t *testing.T) {
	page := &fakePage{
		url:      "https://example.com",
		sendErrs: []error{errors.New("Could not establish connection. Receiving end does not exist")},
	}
	b, _ := newTestBridge("tab-1", page)

	result, err := b.Send(context.Background(), "t1", "extract", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.injected != 1 {
		t.Fatalf("expected one injection, got %d", page.injected)
	}
	if result["ok"] != true {
		t.Fatalf("expected successful result after retry, got %v", result)
	}
}

func TestBridge_Send_ClassifiesBrowserErrorPage(t *testing.T) {
	page := &fakePage{
		url:      "https://example.com",
		sendErrs: []error{errors.New("net::ERR_CERT_AUTHORITY_INVALID")},
	}
	b, reg := newTestBridge("tab-1", page)
	reg.RecordNetworkError("tab-1", "ERR_CERT_AUTHORITY_INVALID", time.Now())

	_, err := b.Send(context.Background(), "t1", "extract", nil)
	if !runtime.Is(err, runtime.KindBrowserErrorPage) {
		t.Fatalf("expected BrowserErrorPage error, got %v", err)
	}
	var rtErr *runtime.Error
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected *runtime.Error, got %T", err)
	}
	if rtErr.Detail["network_error"] != "ERR_CERT_AUTHORITY_INVALID" {
		t.Fatalf("expected enriched network_error detail, got %v", rtErr.Detail)
	}
}

func TestBridge_SendWithNavigationDetection_DetectsURLChange(t *testing.T) {
	page := &fakePage{
		url:               "https://example.com/start",
		navigateAfterSend: "https://example.com/next",
	}
	b, reg := newTestBridge("tab-1", page)

	result, err := b.SendWithNavigationDetection(context.Background(), "t1", "clickElement", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result["navigated"] != true {
		t.Fatalf("expected navigated=true, got %v", result)
	}
	if result["new_url"] != "https://example.com/next" {
		t.Fatalf("expected new_url recorded, got %v", result["new_url"])
	}
	rec, _ := reg.Get("tab-1")
	if rec.CurrentURL() != "https://example.com/next" {
		t.Fatalf("expected history to record new url, got %q", rec.CurrentURL())
	}
}

func TestBridge_SendWithNavigationDetection_NoChange(t *testing.T) {
	page := &fakePage{url: "https://example.com/start"}
	b, _ := newTestBridge("tab-1", page)

	result, err := b.SendWithNavigationDetection(context.Background(), "t1", "extractContent", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result["navigated"]; ok {
		t.Fatalf("expected no navigated key when url is unchanged, got %v", result)
	}
}
