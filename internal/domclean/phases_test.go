package domclean

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestKeepRatio_TapersToZero(t *testing.T) {
	if r := keepRatio(0, 10, 1.0); r != 1 {
		t.Errorf("first child ratio = %v, want 1", r)
	}
	if r := keepRatio(9, 10, 1.0); r != 0 {
		t.Errorf("last child ratio at slope 1 = %v, want 0", r)
	}
	if r := keepRatio(0, 1, 2.0); r != 1 {
		t.Errorf("sole child ratio = %v, want 1 (n<=1 special case)", r)
	}
}

func TestRemoveEmptyContainers_DropsWhitespaceOnlyDiv(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div><div>   </div><p>kept</p></div>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	body := doc.Find("body").Get(0)
	removeEmptyContainers(body)

	out, _ := doc.Find("body").Html()
	if strings.Contains(out, "div><div") {
		t.Errorf("empty div not removed: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("non-empty content incorrectly removed: %s", out)
	}
}

func TestRemoveEmptyContainers_PreservesAttributedElement(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div data-vish-id="0"></div>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	body := doc.Find("body").Get(0)
	removeEmptyContainers(body)

	out, _ := doc.Find("body").Html()
	if !strings.Contains(out, `data-vish-id="0"`) {
		t.Errorf("attributed empty element was removed: %s", out)
	}
}

func TestUnwrapHyphenatedTags_PromotesChildren(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<my-widget><p>hi</p></my-widget>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	body := doc.Find("body").Get(0)
	unwrapHyphenatedTags(body)

	out, _ := doc.Find("body").Html()
	if strings.Contains(out, "my-widget") {
		t.Errorf("custom element not unwrapped: %s", out)
	}
	if !strings.Contains(out, "<p>hi</p>") {
		t.Errorf("child not promoted: %s", out)
	}
}

func TestTruncateTables_KeepsHeaderAndSentinel(t *testing.T) {
	var b strings.Builder
	b.WriteString("<table><thead><tr><th>h</th></tr></thead><tbody>")
	for i := 0; i < 15; i++ {
		b.WriteString("<tr><td>r</td></tr>")
	}
	b.WriteString("</tbody></table>")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	body := doc.Find("body")
	truncateTables(body)

	rows := body.Find("tbody tr")
	if rows.Length() != tableTruncateLimit+1 {
		t.Errorf("row count = %d, want %d", rows.Length(), tableTruncateLimit+1)
	}
	if body.Find("thead th").Length() != 1 {
		t.Error("header row was dropped")
	}
}
