package domclean

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var genericAltWords = map[string]bool{
	"image": true, "logo": true, "icon": true,
}

// removeUnlabeledImages implements phase 2.
func removeUnlabeledImages(body *goquery.Selection) {
	body.Find("img").Each(func(_ int, s *goquery.Selection) {
		alt := strings.TrimSpace(s.AttrOr("alt", ""))
		if alt == "" || len(alt) < 3 || genericAltWords[strings.ToLower(alt)] {
			removeUnlessAttributed(s)
		}
	})
}

var navLabelKeywords = []string{"page", "content", "article", "section"}

// removeUnlabeledNav implements phase 3: strip <nav> elements whose
// aria-label doesn't reference the main content.
func removeUnlabeledNav(body *goquery.Selection) {
	body.Find("nav").Each(func(_ int, s *goquery.Selection) {
		label := strings.ToLower(s.AttrOr("aria-label", ""))
		for _, kw := range navLabelKeywords {
			if strings.Contains(label, kw) {
				return
			}
		}
		removeUnlessAttributed(s)
	})
}

const (
	heuristicNavMinInnerHTMLBytes = 5 * 1024
	heuristicNavMinLinks          = 5
	heuristicNavLinkTextRatio     = 0.7
)

// removeHeuristicNavigation implements phase 4: large divs/asides/uls/
// navs that are mostly link text and contain no main-content markers are
// treated as navigation chrome and removed.
func removeHeuristicNavigation(body *goquery.Selection) {
	body.Find("div, aside, ul, nav").Each(func(_ int, s *goquery.Selection) {
		html, err := s.Html()
		if err != nil || len(html) <= heuristicNavMinInnerHTMLBytes {
			return
		}
		links := s.Find("a")
		if links.Length() < heuristicNavMinLinks {
			return
		}
		if s.Find("main, article, form, button, input, select, textarea").Length() > 0 {
			return
		}
		totalText := len(strings.TrimSpace(s.Text()))
		if totalText == 0 {
			return
		}
		var linkText int
		links.Each(func(_ int, a *goquery.Selection) {
			linkText += len(strings.TrimSpace(a.Text()))
		})
		if float64(linkText)/float64(totalText) <= heuristicNavLinkTextRatio {
			return
		}
		removeUnlessAttributed(s)
	})
}
