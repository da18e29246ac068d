package domclean

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// urlKeepParams is the fixed query-parameter keep-list; everything else
// is stripped before length-checking a URL attribute value.
var urlKeepParams = map[string]bool{
	"q": true, "query": true, "search": true, "s": true,
	"page": true, "p": true, "id": true, "tab": true, "v": true,
}

const maxURLAttrLen = 60

// urlRegistry accumulates the placeholder mapping for phase 5's URL and
// data-URI normalization, in first-seen order so re-running the pipeline
// on identical input assigns identical placeholder numbers.
type urlRegistry struct {
	byValue map[string]string
	order   []string
	nextURL int
	nextData int
}

func newURLRegistry() *urlRegistry {
	return &urlRegistry{byValue: make(map[string]string)}
}

// normalizeURL strips non-keep-list query params from raw; if the result
// still exceeds maxURLAttrLen it is replaced with a `[uN]` placeholder
// and the mapping is recorded.
func (r *urlRegistry) normalizeURL(raw string) string {
	stripped := stripQueryParams(raw)
	if len(stripped) <= maxURLAttrLen {
		return stripped
	}
	if placeholder, ok := r.byValue[stripped]; ok {
		return placeholder
	}
	r.nextURL++
	placeholder := fmt.Sprintf("[u%d]", r.nextURL)
	r.byValue[stripped] = placeholder
	r.order = append(r.order, stripped)
	return placeholder
}

// normalizeDataURI always replaces a data: URI with a placeholder; the
// full value is recorded in the registry for debugging but never
// reproduced in cleaned output.
func (r *urlRegistry) normalizeDataURI(raw string) string {
	if placeholder, ok := r.byValue[raw]; ok {
		return placeholder
	}
	r.nextData++
	placeholder := fmt.Sprintf("[data%d]", r.nextData)
	r.byValue[raw] = placeholder
	r.order = append(r.order, raw)
	return placeholder
}

// snapshot returns the placeholder->original mapping for the Result.
func (r *urlRegistry) snapshot() map[string]string {
	if len(r.byValue) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.byValue))
	for original, placeholder := range r.byValue {
		out[placeholder] = original
	}
	return out
}

func stripQueryParams(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return raw
	}
	values := u.Query()
	kept := url.Values{}
	for key, vals := range values {
		if urlKeepParams[strings.ToLower(key)] {
			kept[key] = vals
		}
	}
	if len(kept) == 0 {
		u.RawQuery = ""
		return u.String()
	}
	keys := make([]string, 0, len(kept))
	for k := range kept {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	u.RawQuery = kept.Encode()
	return u.String()
}
