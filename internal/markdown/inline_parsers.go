package markdown

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

type highlightParser struct{}

// NewHighlightParser returns an inline parser for "==text==" spans.
func NewHighlightParser() parser.InlineParser {
	return &highlightParser{}
}

func (p *highlightParser) Trigger() []byte {
	return []byte{'='}
}

func (p *highlightParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, segment := block.PeekLine()
	if len(line) < 5 || line[0] != '=' || line[1] != '=' {
		return nil
	}
	stop := bytes.Index(line[2:], []byte("=="))
	if stop <= 0 {
		return nil
	}
	content := line[2 : 2+stop]
	if bytes.IndexByte(content, '=') >= 0 || bytes.IndexByte(content, '\n') >= 0 {
		return nil
	}
	node := &Highlight{
		Segment: text.NewSegment(segment.Start+2, segment.Start+2+stop),
	}
	block.Advance(stop + 4)
	return node
}

type inlineMathParser struct{}

// NewInlineMathParser returns an inline parser for "$expr$" spans.
func NewInlineMathParser() parser.InlineParser {
	return &inlineMathParser{}
}

func (p *inlineMathParser) Trigger() []byte {
	return []byte{'$'}
}

func (p *inlineMathParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, segment := block.PeekLine()
	if len(line) < 3 || line[0] != '$' {
		return nil
	}
	stop := bytes.IndexByte(line[1:], '$')
	if stop <= 0 {
		return nil
	}
	content := line[1 : 1+stop]
	if bytes.IndexByte(content, '\n') >= 0 {
		return nil
	}
	node := &InlineMath{
		Segment: text.NewSegment(segment.Start+1, segment.Start+1+stop),
	}
	block.Advance(stop + 2)
	return node
}
