package domclean

import (
	"bytes"

	"golang.org/x/net/html"
)

const (
	budgetSlopeMin       = 0.0
	budgetSlopeMax       = 3.0
	budgetSlopePrecision = 0.01
	budgetTargetFactor   = 0.95
	budgetMaxRetries     = 10
	budgetRetryGrowth    = 1.2
	budgetDropThreshold  = 0.1
)

// keepRatio is the linear taper: the further a child sits among its
// siblings, the smaller its inherited weight becomes.
func keepRatio(i, n int, slope float64) float64 {
	if n <= 1 {
		return 1
	}
	r := 1 - slope*float64(i)/float64(n-1)
	if r < 0 {
		return 0
	}
	return r
}

// budgetTruncate implements phase 11 against root (the body element):
// binary-search the minimum taper slope that brings the estimated size
// under targetSize, apply it, and escalate the slope up to 10 times if
// the real rendered size still exceeds the budget.
func budgetTruncate(root *html.Node, targetSize int) {
	if targetSize <= 0 {
		return
	}
	cache := buildOverheadCache(root)
	if renderSize(root) <= targetSize {
		return
	}

	slope := binarySearchSlope(root, cache, float64(targetSize)*budgetTargetFactor)
	for attempt := 0; attempt <= budgetMaxRetries; attempt++ {
		working := cloneTree(root)
		applySlope(working, 1, slope, false)
		if renderSize(working) <= targetSize || attempt == budgetMaxRetries {
			replaceChildren(root, working)
			return
		}
		slope *= budgetRetryGrowth
		if slope > budgetSlopeMax {
			slope = budgetSlopeMax
		}
	}
}

// binarySearchSlope finds, to 0.01 precision, the minimum slope whose
// estimated size is at or under target.
func binarySearchSlope(root *html.Node, cache map[*html.Node]int, target float64) float64 {
	lo, hi := budgetSlopeMin, budgetSlopeMax
	if float64(estimateSize(root, 1, 1, 0, cache, hi, false)) > target {
		// even the steepest taper can't hit target; still use it, the
		// retry-with-growth loop in budgetTruncate escalates further.
		return hi
	}
	for hi-lo > budgetSlopePrecision {
		mid := (lo + hi) / 2
		if float64(estimateSize(root, 1, 1, 0, cache, mid, false)) <= target {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi
}

// estimateSize recursively estimates root's subtree size under slope,
// starting root at sibling index idx of sibCount, with ratio the
// inherited keep-ratio from ancestors. Dropped subtrees (ratio below
// budgetDropThreshold) contribute zero, unless forceKeep is already set
// or n (or a descendant) carries data-vish-id — once triggered, forceKeep
// propagates to every descendant so an attributed element's whole
// outerHTML, including its text, is preserved rather than just its tag.
func estimateSize(n *html.Node, ratio float64, sibCount, idx int, cache map[*html.Node]int, slope float64, forceKeep bool) int {
	forceKeep = forceKeep || nodeOrDescendantAttributed(n)
	effective := ratio * keepRatio(idx, sibCount, slope)
	if effective < budgetDropThreshold && !forceKeep {
		return 0
	}
	if n.Type == html.TextNode {
		return cache[n]
	}
	total := cache[n] // this node's own tag overhead
	children := elementChildren(n)
	for i, c := range children {
		total += estimateSize(c, effective, len(children), i, cache, slope, forceKeep)
	}
	return total
}

// applySlope mutates n in place, removing children whose compounded
// keep-ratio falls below budgetDropThreshold, unless forceKeep already
// holds or the child (or a descendant) carries data-vish-id — see
// estimateSize for why the flag must propagate downward once set.
func applySlope(n *html.Node, ratio, slope float64, forceKeep bool) {
	if n.Type != html.ElementNode {
		return
	}
	children := elementChildren(n)
	for i, c := range children {
		childForceKeep := forceKeep || nodeOrDescendantAttributed(c)
		effective := ratio * keepRatio(i, len(children), slope)
		if effective < budgetDropThreshold && !childForceKeep {
			n.RemoveChild(c)
			continue
		}
		applySlope(c, effective, slope, childForceKeep)
	}
}

func elementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// buildOverheadCache walks n once, caching each element's own tag
// cost (open+close tag, no descendants) and each text node's byte
// length, so repeated slope trials never re-render HTML.
func buildOverheadCache(n *html.Node) map[*html.Node]int {
	cache := make(map[*html.Node]int)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			cache[n] = len(n.Data)
		case html.ElementNode:
			cache[n] = elementTagOverhead(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return cache
}

func elementTagOverhead(n *html.Node) int {
	clone := &html.Node{Type: html.ElementNode, DataAtom: n.DataAtom, Data: n.Data, Attr: n.Attr, Namespace: n.Namespace}
	var buf bytes.Buffer
	if err := html.Render(&buf, clone); err != nil {
		return len(n.Data) * 2
	}
	return buf.Len()
}

func renderSize(n *html.Node) int {
	var buf bytes.Buffer
	renderChildren(&buf, n)
	return buf.Len()
}

func renderChildren(buf *bytes.Buffer, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		html.Render(buf, c)
	}
}

// cloneTree deep-copies n (and its subtree) into a freestanding node
// with no parent, so speculative pruning can be tried and discarded.
func cloneTree(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(cloneTree(c))
	}
	return clone
}

// replaceChildren swaps dst's children for src's, used once the winning
// pruned clone has been chosen.
func replaceChildren(dst, src *html.Node) {
	for dst.FirstChild != nil {
		dst.RemoveChild(dst.FirstChild)
	}
	child := src.FirstChild
	for child != nil {
		next := child.NextSibling
		src.RemoveChild(child)
		dst.AppendChild(child)
		child = next
	}
}
