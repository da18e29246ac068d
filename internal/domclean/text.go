package domclean

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var blockLevelTags = map[string]bool{
	"p": true, "div": true, "li": true, "tr": true, "br": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true,
}

// extractText collapses root's visible text into whitespace-normalized
// plain text, inserting a newline boundary at block-level elements so
// unrelated text doesn't run together.
func extractText(root *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type != html.ElementNode {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if blockLevelTags[n.Data] {
			b.WriteString("\n")
		}
	}
	walk(root)
	return collapseTextWhitespace(b.String())
}

var blankLineRun = regexp.MustCompile(`\n{2,}`)
var inlineWhitespaceRun = regexp.MustCompile(`[ \t]+`)

func collapseTextWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineWhitespaceRun.ReplaceAllString(line, " "))
	}
	joined := strings.Join(lines, "\n")
	joined = blankLineRun.ReplaceAllString(joined, "\n")
	return strings.TrimSpace(joined)
}
