package domclean

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const listTruncateLimit = 10

// truncateLists implements phase 7: ul/ol are cut to their first 10
// children, with a sentinel li appended summarizing what was dropped.
// Children carrying data-vish-id are never dropped, even past the limit.
func truncateLists(body *goquery.Selection) {
	body.Find("ul, ol").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		if node == nil {
			return
		}
		items := directElementChildren(node, "li")
		dropped := dropBeyondLimit(node, items, listTruncateLimit)
		if dropped > 0 {
			appendSentinel(node, "li", fmt.Sprintf("... (%d more)", dropped))
		}
	})
}

const tableTruncateLimit = 10

// truncateTables implements phase 8: tables keep their header plus the
// first 10 body rows, with a sentinel row appended.
func truncateTables(body *goquery.Selection) {
	body.Find("table").Each(func(_ int, s *goquery.Selection) {
		tableNode := s.Get(0)
		bodyContainer := s.Find("tbody")
		var rowsParent *html.Node
		var rows []*html.Node
		if bodyContainer.Length() > 0 {
			rowsParent = bodyContainer.Get(0)
			rows = directElementChildren(rowsParent, "tr")
		} else {
			rowsParent = tableNode
			rows = directElementChildren(rowsParent, "tr")
			rows = excludeHeaderRows(rows)
		}
		dropped := dropBeyondLimit(rowsParent, rows, tableTruncateLimit)
		if dropped > 0 {
			appendSentinelRow(rowsParent, dropped)
		}
	})
}

func excludeHeaderRows(rows []*html.Node) []*html.Node {
	var out []*html.Node
	for _, r := range rows {
		if r.Parent != nil && r.Parent.Data == "thead" {
			continue
		}
		if hasHeaderCellOnly(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func hasHeaderCellOnly(row *html.Node) bool {
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data != "th" {
			return false
		}
	}
	return row.FirstChild != nil
}

func directElementChildren(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			out = append(out, c)
		}
	}
	return out
}

// dropBeyondLimit removes every node in items past limit, skipping (and
// not counting toward the drop count as removed) any node carrying
// data-vish-id or containing a descendant that does. It returns the
// number actually removed.
func dropBeyondLimit(parent *html.Node, items []*html.Node, limit int) int {
	if len(items) <= limit {
		return 0
	}
	kept := 0
	dropped := 0
	for _, item := range items {
		if kept < limit || nodeOrDescendantAttributed(item) {
			kept++
			continue
		}
		parent.RemoveChild(item)
		dropped++
	}
	return dropped
}

func nodeOrDescendantAttributed(n *html.Node) bool {
	if hasAttr(n, vishIDAttr) {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && nodeOrDescendantAttributed(c) {
			return true
		}
	}
	return false
}

func appendSentinel(parent *html.Node, tag, text string) {
	sentinel := &html.Node{Type: html.ElementNode, Data: tag}
	sentinel.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	parent.AppendChild(sentinel)
}

func appendSentinelRow(parent *html.Node, dropped int) {
	row := &html.Node{Type: html.ElementNode, Data: "tr"}
	cell := &html.Node{Type: html.ElementNode, Data: "td"}
	cell.AppendChild(&html.Node{Type: html.TextNode, Data: fmt.Sprintf("... (%d more rows)", dropped)})
	row.AppendChild(cell)
	parent.AppendChild(row)
}
