package markdown

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// NodeKinds for the syntax this package adds on top of CommonMark and GFM.
var (
	KindMathBlock  = ast.NewNodeKind("MathBlock")
	KindCallout    = ast.NewNodeKind("Callout")
	KindFileEmbed  = ast.NewNodeKind("FileEmbed")
	KindHighlight  = ast.NewNodeKind("Highlight")
	KindInlineMath = ast.NewNodeKind("InlineMath")
)

// MathBlock is a display equation fenced by lines containing only "$$".
type MathBlock struct {
	ast.BaseBlock
}

func (n *MathBlock) Kind() ast.NodeKind { return KindMathBlock }

func (n *MathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

func (n *MathBlock) IsRaw() bool { return true }

// Expression returns the equation body with per-line trailing whitespace
// and surrounding blank lines removed.
func (n *MathBlock) Expression(source []byte) string {
	lines := n.Lines()
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		parts = append(parts, strings.TrimRight(string(seg.Value(source)), " \t\r\n"))
	}
	return strings.Trim(strings.Join(parts, "\n"), "\n")
}

// Callout is an admonition written as a blockquote whose first line is
// "> [!TYPE] optional title". Child lines are parsed as regular blocks.
type Callout struct {
	ast.BaseBlock

	// CalloutType is the upper-cased tag between the brackets.
	CalloutType string
	// Title is the remainder of the marker line, trimmed.
	Title string
}

func (n *Callout) Kind() ast.NodeKind { return KindCallout }

func (n *Callout) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"CalloutType": n.CalloutType,
		"Title":       n.Title,
	}, nil)
}

// FileEmbed is a standalone media reference, "![kind](target)" or
// "![kind:title](target)" where kind names a media category rather
// than alt text.
type FileEmbed struct {
	ast.BaseBlock

	// FileType is one of file, image, video, pdf, audio, embed.
	FileType string
	// Title is the optional caption after the colon.
	Title string
	// Target is a local path or a URL.
	Target string
}

func (n *FileEmbed) Kind() ast.NodeKind { return KindFileEmbed }

func (n *FileEmbed) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"FileType": n.FileType,
		"Title":    n.Title,
		"Target":   n.Target,
	}, nil)
}

// Highlight is an inline span delimited by "==".
type Highlight struct {
	ast.BaseInline

	Segment text.Segment
}

func (n *Highlight) Kind() ast.NodeKind { return KindHighlight }

func (n *Highlight) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// Value returns the highlighted text.
func (n *Highlight) Value(source []byte) string {
	return string(n.Segment.Value(source))
}

// InlineMath is an inline equation delimited by single "$" characters.
type InlineMath struct {
	ast.BaseInline

	Segment text.Segment
}

func (n *InlineMath) Kind() ast.NodeKind { return KindInlineMath }

func (n *InlineMath) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// Value returns the equation text without the delimiters.
func (n *InlineMath) Value(source []byte) string {
	return string(n.Segment.Value(source))
}
