package markdown

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"
)

type extender struct {
	nativeCallouts bool
}

// Option configures the parser returned by New.
type Option func(*extender)

// WithoutNativeCallouts disables the dedicated "> [!TYPE]" block parser.
// Callout markers then surface as ordinary blockquotes and are left to
// the consumer to recognise.
func WithoutNativeCallouts() Option {
	return func(e *extender) { e.nativeCallouts = false }
}

// New builds a goldmark parser with GFM plus the extra syntax used here:
// display and inline math, callouts, highlights and media embeds.
func New(opts ...Option) goldmark.Markdown {
	e := &extender{nativeCallouts: true}
	for _, opt := range opts {
		opt(e)
	}
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM, e),
	)
}

func (e *extender) Extend(m goldmark.Markdown) {
	blockParsers := []util.PrioritizedValue{
		util.Prioritized(NewMathBlockParser(), 450),
		util.Prioritized(NewFileEmbedParser(), 450),
	}
	if e.nativeCallouts {
		// Ahead of the built-in blockquote parser at 800.
		blockParsers = append(blockParsers, util.Prioritized(NewCalloutParser(), 500))
	}
	m.Parser().AddOptions(
		parser.WithBlockParsers(blockParsers...),
		parser.WithInlineParsers(
			util.Prioritized(NewHighlightParser(), 150),
			util.Prioritized(NewInlineMathParser(), 150),
		),
	)
}
