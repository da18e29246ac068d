package domclean

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var attrBlacklist = map[string]bool{
	"class": true, "style": true,
}

// isEventHandlerAttr matches onclick, onload, etc.
func isEventHandlerAttr(name string) bool {
	return strings.HasPrefix(name, "on")
}

// isFrameworkInternalAttr matches framework-private attributes that carry
// no semantic meaning for an LLM consumer.
func isFrameworkInternalAttr(name string) bool {
	switch {
	case strings.HasPrefix(name, "data-react"):
		return true
	case strings.HasPrefix(name, "data-v-"):
		return true
	case strings.HasPrefix(name, "ng-"):
		return true
	case strings.HasPrefix(name, "_ngcontent"), strings.HasPrefix(name, "_nghost"):
		return true
	case strings.HasPrefix(name, "jsaction"), name == "jsname", name == "jscontroller":
		return true
	default:
		return false
	}
}

func keepsAttr(name string) bool {
	if name == vishIDAttr {
		return true
	}
	if attrBlacklist[name] {
		return false
	}
	if isEventHandlerAttr(name) || isFrameworkInternalAttr(name) {
		return false
	}
	return true
}

const urlAttrValueCap = 60

var urlAttrNames = map[string]bool{"href": true, "src": true}

// cleanAttributes implements phase 5: attribute blacklist/stripping,
// value heuristics, URL normalization, and hidden-element removal.
func cleanAttributes(body *goquery.Selection, registry *urlRegistry) {
	removeHiddenElements(body)

	body.Find("*").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		if node == nil {
			return
		}
		kept := node.Attr[:0]
		for _, attr := range node.Attr {
			name := attr.Key
			if !keepsAttr(name) {
				continue
			}
			value := attr.Val
			switch {
			case urlAttrNames[name] && strings.HasPrefix(value, "data:"):
				value = registry.normalizeDataURI(value)
			case urlAttrNames[name]:
				value = registry.normalizeURL(value)
			default:
				value = capAttrValue(value)
			}
			kept = append(kept, html.Attribute{Key: name, Val: value})
		}
		node.Attr = kept
	})
}

// capAttrValue applies the text-like / hash-like length heuristic to a
// non-URL attribute value.
func capAttrValue(value string) string {
	if isHashLike(value) {
		if len(value) > 15 {
			return value[:7] + "..."
		}
		return value
	}
	if len(value) > 50 {
		return value[:50] + "..."
	}
	return value
}

const commonEnglishChars = "etaoinshrdluETAOINSHRDLU "

// isHashLike classifies a value as a hash/token (rather than prose) when
// it is long and it has more digits and non-letter characters than
// common English letters; other letters count toward neither side.
func isHashLike(value string) bool {
	if len(value) <= 15 {
		return false
	}
	var common, rare int
	for _, r := range value {
		switch {
		case strings.ContainsRune(commonEnglishChars, r):
			common++
		case unicode.IsDigit(r):
			rare++
		case unicode.IsLetter(r):
			// neutral: an uncommon-but-alphabetic letter, counted
			// toward neither bucket.
		default:
			rare++
		}
	}
	return rare > common
}

// removeHiddenElements drops elements hidden via inline style, the
// hidden attribute, or aria-hidden.
func removeHiddenElements(body *goquery.Selection) {
	body.Find("*").Each(func(_ int, s *goquery.Selection) {
		if isHiddenElement(s) {
			removeUnlessAttributed(s)
		}
	})
}

func isHiddenElement(s *goquery.Selection) bool {
	if _, ok := s.Attr("hidden"); ok {
		return true
	}
	if strings.EqualFold(s.AttrOr("aria-hidden", ""), "true") {
		return true
	}
	style := strings.ToLower(s.AttrOr("style", ""))
	if strings.Contains(style, "display:none") || strings.Contains(style, "display: none") {
		return true
	}
	if strings.Contains(style, "visibility:hidden") || strings.Contains(style, "visibility: hidden") {
		return true
	}
	return false
}
