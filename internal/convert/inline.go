package convert

import (
	"strings"

	"github.com/jomei/notionapi"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"

	"github.com/christopherseaman/narko/internal/markdown"
)

// extractRichText flattens the inline children of a block node into rich
// text fragments in document order.
func extractRichText(node ast.Node, source []byte) []notionapi.RichText {
	var out []notionapi.RichText
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		out = append(out, inlineRichText(child, source)...)
	}
	return out
}

func inlineRichText(n ast.Node, source []byte) []notionapi.RichText {
	switch t := n.(type) {
	case *ast.Text:
		out := plainRichText(string(t.Segment.Value(source)))
		if t.SoftLineBreak() || t.HardLineBreak() {
			out = append(out, plainRichText("\n")...)
		}
		return out
	case *ast.String:
		return plainRichText(string(t.Value))
	case *ast.Emphasis:
		a := &notionapi.Annotations{}
		if t.Level >= 2 {
			a.Bold = true
		} else {
			a.Italic = true
		}
		return BuildRichText(plainText(t, source), a, "")
	case *extast.Strikethrough:
		return BuildRichText(plainText(t, source), &notionapi.Annotations{Strikethrough: true}, "")
	case *ast.CodeSpan:
		return BuildRichText(plainText(t, source), &notionapi.Annotations{Code: true}, "")
	case *markdown.Highlight:
		return BuildRichText(t.Value(source), &notionapi.Annotations{Color: colorYellowBackground}, "")
	case *markdown.InlineMath:
		return BuildRichText("$"+t.Value(source)+"$", &notionapi.Annotations{Code: true}, "")
	case *ast.Link:
		return BuildRichText(plainText(t, source), nil, string(t.Destination))
	case *ast.AutoLink:
		url := string(t.URL(source))
		return BuildRichText(url, nil, url)
	default:
		if s := plainText(n, source); s != "" {
			return plainRichText(s)
		}
		return nil
	}
}

// plainText collects the raw text under a node, dropping any styling.
func plainText(n ast.Node, source []byte) string {
	switch t := n.(type) {
	case *ast.Text:
		return string(t.Segment.Value(source))
	case *ast.String:
		return string(t.Value)
	case *markdown.Highlight:
		return t.Value(source)
	case *markdown.InlineMath:
		return t.Value(source)
	}
	var sb strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		sb.WriteString(plainText(child, source))
	}
	return sb.String()
}
