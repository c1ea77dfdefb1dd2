package htmlutil

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// GetText returns the textContent of the node, that is the concatenation of every
// descendant text node in document order.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// NormalizeText turns non-breaking spaces into regular spaces and trims the result.
func NormalizeText(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\u00a0", " "))
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// CollapseWhitespace is NormalizeText that also squashes runs of whitespace
// into a single space.
func CollapseWhitespace(text string) string {
	return innerWhitespace.ReplaceAllString(NormalizeText(text), " ")
}
