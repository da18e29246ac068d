package browserstate

import "testing"

func TestIsRestrictedURL(t *testing.T) {
	cases := map[string]bool{
		"chrome://settings":                              true,
		"chrome-extension://abcdefg/popup.html":           true,
		"https://chromewebstore.google.com/detail/foo":    true,
		"https://addons.mozilla.org/en-US/firefox/addon/x": true,
		"https://example.com/chrome/reviews":               false,
		"https://example.com":                              false,
	}
	for url, want := range cases {
		if got := isRestrictedURL(url); got != want {
			t.Errorf("isRestrictedURL(%q) = %v, want %v", url, got, want)
		}
	}
}

func TestClassifyBrowserErrorPage(t *testing.T) {
	code, matched := classifyBrowserErrorPage("Navigation failed: net::ERR_CONNECTION_REFUSED at https://example.com")
	if !matched {
		t.Fatalf("expected match")
	}
	if code != "ERR_CONNECTION_REFUSED" {
		t.Fatalf("expected ERR_CONNECTION_REFUSED, got %q", code)
	}

	if _, matched := classifyBrowserErrorPage("element not found"); matched {
		t.Fatalf("expected no match for unrelated error")
	}
}

func TestIsNoReceiverError(t *testing.T) {
	if !isNoReceiverError("Could not establish connection. Receiving end does not exist.") {
		t.Fatalf("expected match")
	}
	if isNoReceiverError("some other failure") {
		t.Fatalf("expected no match")
	}
}
