package domclean

import (
	"regexp"

	"golang.org/x/net/html"
)

const collapseWrapperIterations = 5

var collapsibleWrapperTags = map[string]bool{"div": true, "span": true}

// collapseSingleChildWrappers implements phase 9: an attributeless div or
// span whose only child is a single element is replaced by that child,
// repeated up to 5 passes so nested wrapper chains fully flatten.
func collapseSingleChildWrappers(root *html.Node) {
	for i := 0; i < collapseWrapperIterations; i++ {
		if !collapseWrapperPass(root) {
			return
		}
	}
}

func collapseWrapperPass(n *html.Node) bool {
	changed := false
	child := n.FirstChild
	for child != nil {
		next := child.NextSibling
		if child.Type == html.ElementNode {
			if collapseWrapperPass(child) {
				changed = true
			}
			if collapsibleWrapperTags[child.Data] && len(child.Attr) == 0 {
				if only := soleElementChild(child); only != nil {
					n.InsertBefore(only, child)
					n.RemoveChild(child)
					changed = true
				}
			}
		}
		child = next
	}
	return changed
}

// soleElementChild returns n's only child when n has exactly one child
// node and it is an element; otherwise nil.
func soleElementChild(n *html.Node) *html.Node {
	if n.FirstChild == nil || n.FirstChild != n.LastChild {
		return nil
	}
	if n.FirstChild.Type != html.ElementNode {
		return nil
	}
	return n.FirstChild
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// collapseWhitespace implements phase 10: runs of whitespace in every
// text node become a single space.
func collapseWhitespace(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			c.Data = whitespaceRun.ReplaceAllString(c.Data, " ")
		}
		if c.Type == html.ElementNode {
			collapseWhitespace(c)
		}
	}
}
