package canvas

import "strings"

// RichText is the canvas's structured text document: a list of paragraphs,
// each holding zero or one text node.
type RichText struct {
	Type    string         `json:"type"`
	Content []RichTextNode `json:"content,omitempty"`
}

// RichTextNode is a paragraph or text node
type RichTextNode struct {
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Content []RichTextNode `json:"content,omitempty"`
}

// ToRichText converts plain text to rich text, one paragraph per line
func ToRichText(text string) RichText {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	paragraphs := make([]RichTextNode, 0, len(lines))
	for _, line := range lines {
		p := RichTextNode{Type: "paragraph"}
		if line != "" {
			p.Content = []RichTextNode{{Type: "text", Text: line}}
		}
		paragraphs = append(paragraphs, p)
	}
	return RichText{Type: "doc", Content: paragraphs}
}

// PlainText flattens rich text back to plain text
func PlainText(rt RichText) string {
	lines := make([]string, 0, len(rt.Content))
	for _, p := range rt.Content {
		var b strings.Builder
		for _, n := range p.Content {
			b.WriteString(n.Text)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}
