package domclean

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Clean runs the 13-phase pipeline over rawHTML (normally a page's
// document.body.innerHTML) and returns either a cleaned-HTML or
// plain-text representation bounded by cfg.
func Clean(rawHTML string, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("domclean: parse input: %w", err)
	}
	body := doc.Find("body")
	if body.Length() == 0 {
		return nil, fmt.Errorf("domclean: parsed document has no body")
	}
	bodyNode := body.Get(0)

	registry := newURLRegistry()
	var log []PhaseLog

	run := func(name string, fn func()) {
		before := 0
		if cfg.Debug {
			before = bodyByteSize(body)
		}
		fn()
		if cfg.Debug {
			log = append(log, PhaseLog{
				Name:         name,
				SizeBefore:   before,
				SizeAfter:    bodyByteSize(body),
				ElementCount: body.Find("*").Length(),
			})
		}
	}

	run("remove_blacklist", func() { removeBlacklist(body) })
	run("remove_unlabeled_images", func() { removeUnlabeledImages(body) })
	run("remove_unlabeled_nav", func() { removeUnlabeledNav(body) })
	run("remove_heuristic_navigation", func() { removeHeuristicNavigation(body) })
	run("clean_attributes", func() { cleanAttributes(body, registry) })
	run("remove_empty_containers", func() { removeEmptyContainers(bodyNode) })
	run("truncate_lists", func() { truncateLists(body) })
	run("truncate_tables", func() { truncateTables(body) })
	run("collapse_wrappers", func() { collapseSingleChildWrappers(bodyNode) })
	run("collapse_whitespace", func() { collapseWhitespace(bodyNode) })
	run("budget_truncate", func() { budgetTruncate(bodyNode, cfg.TargetSize) })
	run("unwrap_framework_tags", func() { unwrapFrameworkTags(bodyNode) })
	run("unwrap_hyphenated_tags", func() { unwrapHyphenatedTags(bodyNode) })

	content, err := body.Html()
	if err != nil {
		return nil, fmt.Errorf("domclean: serialize output: %w", err)
	}
	content = strings.TrimSpace(content)
	byteSize := len(content)

	if byteSize <= cfg.MaxHTMLBytes {
		return &Result{
			Mode:        ModeHTML,
			Content:     content,
			ByteSize:    byteSize,
			URLRegistry: registry.snapshot(),
			DebugLog:    log,
		}, nil
	}

	text := extractText(bodyNode)
	return &Result{
		Mode:        ModeText,
		Content:     text,
		ByteSize:    len(text),
		URLRegistry: registry.snapshot(),
		DebugLog:    log,
	}, nil
}

func bodyByteSize(body *goquery.Selection) int {
	h, err := body.Html()
	if err != nil {
		return 0
	}
	return len(h)
}
