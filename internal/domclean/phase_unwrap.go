package domclean

import (
	"strings"

	"golang.org/x/net/html"
)

// frameworkWrapperTags are custom elements known to be pure layout
// shells around content the pipeline wants promoted, not deleted.
var frameworkWrapperTags = map[string]bool{
	"dom-module": true, "iron-pages": true, "paper-dialog": true,
	"ytd-app": true, "ytd-page-manager": true, "ytd-watch-flexy": true,
	"shreddit-app": true, "shreddit-post": true,
}

// unwrapFrameworkTags implements phase 12.
func unwrapFrameworkTags(root *html.Node) {
	unwrapMatching(root, func(n *html.Node) bool { return frameworkWrapperTags[n.Data] })
}

// unwrapHyphenatedTags implements phase 13: any remaining custom element
// (tag name containing a hyphen) is unwrapped the same way.
func unwrapHyphenatedTags(root *html.Node) {
	unwrapMatching(root, func(n *html.Node) bool { return strings.Contains(n.Data, "-") })
}

func unwrapMatching(n *html.Node, match func(*html.Node) bool) {
	child := n.FirstChild
	for child != nil {
		next := child.NextSibling
		if child.Type == html.ElementNode {
			unwrapMatching(child, match)
			if match(child) {
				promoteChildren(n, child)
			}
		}
		child = next
	}
}

// promoteChildren replaces node (a child of parent) with node's own
// children, preserving their order.
func promoteChildren(parent, node *html.Node) {
	child := node.FirstChild
	for child != nil {
		next := child.NextSibling
		node.RemoveChild(child)
		parent.InsertBefore(child, node)
		child = next
	}
	parent.RemoveChild(node)
}
