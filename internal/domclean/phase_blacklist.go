package domclean

import "github.com/PuerkitoBio/goquery"

// blacklistTags are removed outright regardless of content; none of them
// can carry a meaningful data-vish-id, so removal never trips the
// interaction-attribute contract.
var blacklistTags = []string{
	"script", "style", "svg", "iframe", "noscript", "link", "meta",
	"template", "object", "embed", "canvas",
}

// blacklistSelectors targets common site boilerplate by class/id/role
// convention. These are best-effort heuristics, not a guarantee of
// removing all chrome on every site.
var blacklistSelectors = []string{
	`nav.site-nav`, `[class*="cookie" i]`, `[id*="cookie" i]`,
	`[class*="consent" i]`, `[class*="advert" i]`, `[id*="advert" i]`,
	`.ad`, `.ads`, `[class*="comment-tree" i]`, `[id*="comments" i]`,
	`footer.site-footer`, `[role="banner"]`, `[aria-label*="advertisement" i]`,
}

// removeBlacklist implements phase 1: strip blacklisted tags and
// boilerplate selectors, except any element bearing data-vish-id.
func removeBlacklist(body *goquery.Selection) {
	for _, tag := range blacklistTags {
		body.Find(tag).Each(func(_ int, s *goquery.Selection) {
			removeUnlessAttributed(s)
		})
	}
	for _, sel := range blacklistSelectors {
		body.Find(sel).Each(func(_ int, s *goquery.Selection) {
			removeUnlessAttributed(s)
		})
	}
}

// removeUnlessAttributed removes s unless s or a descendant carries
// data-vish-id. Its ancestors are left in place.
func removeUnlessAttributed(s *goquery.Selection) {
	if _, exists := s.Attr(vishIDAttr); exists {
		return
	}
	if s.Find("[" + vishIDAttr + "]").Length() > 0 {
		return
	}
	s.Remove()
}
