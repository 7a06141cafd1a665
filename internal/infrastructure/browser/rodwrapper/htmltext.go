package rodwrapper

import (
	"strings"

	"golang.org/x/net/html"
)

var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"svg":      true,
	"iframe":   true,
}

// TextFromHTML flattens a markup fragment to whitespace-normalized
// plain text, dropping non-content subtrees. Unparseable input falls
// back to the raw string.
func TextFromHTML(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}

	var sb strings.Builder
	collectText(doc, &sb)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode && skippedTags[n.Data] {
		return
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteString(" ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}
