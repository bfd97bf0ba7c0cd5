package markdown

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var (
	mathFenceRe   = regexp.MustCompile(`^ {0,3}\$\$[ \t]*$`)
	calloutOpenRe = regexp.MustCompile(`^ {0,3}> ?\[!(\w+)\]\s*(.*)$`)
	fileEmbedRe   = regexp.MustCompile(`^ {0,3}!\[(file|image|video|pdf|audio|embed)(?::([^\]]*))?\]\(([^)]+)\)[ \t]*$`)
)

type mathBlockParser struct{}

// NewMathBlockParser returns a block parser for "$$" fenced equations.
func NewMathBlockParser() parser.BlockParser {
	return &mathBlockParser{}
}

func (p *mathBlockParser) Trigger() []byte {
	return []byte{'$'}
}

func (p *mathBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	if !mathFenceRe.Match(trimEOL(line)) {
		return nil, parser.NoChildren
	}
	reader.Advance(segment.Len() - 1)
	return &MathBlock{}, parser.NoChildren
}

func (p *mathBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, segment := reader.PeekLine()
	if mathFenceRe.Match(trimEOL(line)) {
		reader.Advance(segment.Len() - 1)
		return parser.Close
	}
	node.Lines().Append(segment)
	reader.Advance(segment.Len() - 1)
	return parser.Continue | parser.NoChildren
}

func (p *mathBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *mathBlockParser) CanInterruptParagraph() bool { return true }

func (p *mathBlockParser) CanAcceptIndentedLine() bool { return false }

type calloutParser struct{}

// NewCalloutParser returns a block parser for "> [!TYPE] title" admonitions.
// It must be registered at a higher priority than the built-in blockquote
// parser so the marker line is seen first.
func NewCalloutParser() parser.BlockParser {
	return &calloutParser{}
}

func (p *calloutParser) Trigger() []byte {
	return []byte{'>'}
}

func (p *calloutParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	m := calloutOpenRe.FindSubmatch(trimEOL(line))
	if m == nil {
		return nil, parser.NoChildren
	}
	node := &Callout{
		CalloutType: strings.ToUpper(string(m[1])),
		Title:       strings.TrimSpace(string(m[2])),
	}
	reader.Advance(segment.Len() - 1)
	return node, parser.HasChildren
}

func (p *calloutParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, _ := reader.PeekLine()
	w, pos := util.IndentWidth(line, reader.LineOffset())
	if w > 3 || pos >= len(line) || line[pos] != '>' {
		return parser.Close
	}
	pos++
	if pos < len(line) && (line[pos] == ' ' || line[pos] == '\t') {
		pos++
	}
	reader.Advance(pos)
	return parser.Continue | parser.HasChildren
}

func (p *calloutParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *calloutParser) CanInterruptParagraph() bool { return true }

func (p *calloutParser) CanAcceptIndentedLine() bool { return false }

type fileEmbedParser struct{}

// NewFileEmbedParser returns a block parser for standalone media
// references such as "![video:Demo](clip.mp4)".
func NewFileEmbedParser() parser.BlockParser {
	return &fileEmbedParser{}
}

func (p *fileEmbedParser) Trigger() []byte {
	return []byte{'!'}
}

func (p *fileEmbedParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	m := fileEmbedRe.FindSubmatch(trimEOL(line))
	if m == nil {
		return nil, parser.NoChildren
	}
	node := &FileEmbed{
		FileType: string(m[1]),
		Title:    strings.TrimSpace(string(m[2])),
		Target:   strings.TrimSpace(string(m[3])),
	}
	reader.Advance(segment.Len() - 1)
	return node, parser.NoChildren
}

func (p *fileEmbedParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	return parser.Close
}

func (p *fileEmbedParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *fileEmbedParser) CanInterruptParagraph() bool { return true }

func (p *fileEmbedParser) CanAcceptIndentedLine() bool { return false }

func trimEOL(line []byte) []byte {
	for len(line) > 0 {
		c := line[len(line)-1]
		if c != '\n' && c != '\r' {
			break
		}
		line = line[:len(line)-1]
	}
	return line
}
