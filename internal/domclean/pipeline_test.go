package domclean

import (
	"fmt"
	"strings"
	"testing"
)

func TestClean_PreservesVishIDAttribute(t *testing.T) {
	html := `<div><nav aria-label="breadcrumbs"><a href="/x">x</a></nav>` +
		`<a data-vish-id="0" href="https://example.com/signin">Sign in</a></div>`

	result, err := Clean(html, DefaultConfig())
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if result.Mode != ModeHTML {
		t.Fatalf("mode = %v, want html", result.Mode)
	}
	if !strings.Contains(result.Content, `data-vish-id="0"`) {
		t.Errorf("output missing data-vish-id: %s", result.Content)
	}
}

func TestClean_SizeEnvelopeWithManyDivs(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 1000; i++ {
		if i == 3 || i == 7 || i == 42 || i == 100 || i == 500 {
			fmt.Fprintf(&b, `<div data-vish-id="%d">item %d %s</div>`, i, i, strings.Repeat("x", 480))
		} else {
			fmt.Fprintf(&b, `<div>item %d %s</div>`, i, strings.Repeat("x", 480))
		}
	}

	cfg := Config{MaxHTMLBytes: 50_000, TargetSize: 45_000}
	result, err := Clean(b.String(), cfg)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if result.Mode == ModeHTML && result.ByteSize > 50_000 {
		t.Errorf("byte size = %d, want <= 50000 in html mode", result.ByteSize)
	}
	for _, id := range []int{3, 7, 42, 100, 500} {
		want := fmt.Sprintf(`data-vish-id="%d"`, id)
		if !strings.Contains(result.Content, want) && result.Mode == ModeHTML {
			t.Errorf("missing attributed element %d in html output", id)
		}
	}
}

func TestClean_Idempotent(t *testing.T) {
	html := `<div class="wrap"><span class="inner"><p>Hello   world</p></span>` +
		`<a data-vish-id="1" href="https://example.com/path?utm_source=x&q=golang&extra=1">link</a></div>`

	cfg := DefaultConfig()
	first, err := Clean(html, cfg)
	if err != nil {
		t.Fatalf("first clean: %v", err)
	}
	second, err := Clean(first.Content, cfg)
	if err != nil {
		t.Fatalf("second clean: %v", err)
	}
	if first.Content != second.Content {
		t.Errorf("not idempotent:\nfirst:  %q\nsecond: %q", first.Content, second.Content)
	}
}

func TestClean_ListTruncationSentinel(t *testing.T) {
	var b strings.Builder
	b.WriteString("<ul>")
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&b, "<li>item %d</li>", i)
	}
	b.WriteString("</ul>")

	result, err := Clean(b.String(), DefaultConfig())
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if !strings.Contains(result.Content, "more)") {
		t.Errorf("missing truncation sentinel: %s", result.Content)
	}
}

func TestClean_FallsBackToTextWhenHTMLModeCantFit(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, `<a data-vish-id="%d" href="https://example.com/a-very-long-path-%d">link %d text content here</a>`, i, i, i)
	}
	cfg := Config{MaxHTMLBytes: 200, TargetSize: 150}
	result, err := Clean(b.String(), cfg)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if result.Mode != ModeText {
		t.Fatalf("mode = %v, want text (byteSize=%d)", result.Mode, result.ByteSize)
	}
	if !strings.Contains(result.Content, "link 0 text content here") {
		t.Errorf("text output missing visible text: %s", result.Content)
	}
}

func TestIsHashLike(t *testing.T) {
	if !isHashLike("a8f3c9d1e2b4567890abcdef01234567") {
		t.Error("expected hex-like token to be classified as hash-like")
	}
	if isHashLike("this is a normal sentence with words") {
		t.Error("expected prose to not be classified as hash-like")
	}
}

func TestURLRegistry_NormalizeStripsParamsAndPlaceholders(t *testing.T) {
	r := newURLRegistry()
	short := r.normalizeURL("https://example.com/a?utm_source=x&q=test")
	if strings.Contains(short, "utm_source") {
		t.Errorf("utm_source not stripped: %s", short)
	}
	long := r.normalizeURL("https://example.com/" + strings.Repeat("segment/", 10) + "?q=test")
	if !strings.HasPrefix(long, "[u") {
		t.Errorf("expected placeholder for long url, got %s", long)
	}
	snap := r.snapshot()
	if _, ok := snap[long]; !ok {
		t.Errorf("placeholder %s missing from registry snapshot", long)
	}
}
