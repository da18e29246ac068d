package domclean

import (
	"strings"

	"golang.org/x/net/html"
)

var emptyableTags = map[string]bool{
	"div": true, "span": true, "p": true, "li": true,
	"ul": true, "ol": true, "section": true, "article": true,
	"aside": true, "td": true, "tr": true, "tbody": true,
}

// removeEmptyContainers implements phase 6: bottom-up removal of
// elements in emptyableTags that have no text, no remaining children,
// and no descendant bearing data-vish-id.
func removeEmptyContainers(root *html.Node) {
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		child := n.FirstChild
		for child != nil {
			next := child.NextSibling
			if child.Type == html.ElementNode {
				walk(child)
				if emptyableTags[child.Data] && isEmptyContainer(child) {
					n.RemoveChild(child)
				}
			}
			child = next
		}
	}
	walk(root)
}

// isEmptyContainer reports whether n has no element children (after the
// bottom-up pass has already pruned nested empties) and only
// whitespace-only text, and does not itself carry data-vish-id.
func isEmptyContainer(n *html.Node) bool {
	if hasAttr(n, vishIDAttr) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			return false
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return false
			}
		}
	}
	return true
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}
