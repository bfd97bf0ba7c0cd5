package convert

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"

	"github.com/christopherseaman/narko/internal/logger"
	"github.com/christopherseaman/narko/internal/markdown"
	"github.com/christopherseaman/narko/internal/notion"
)

var calloutMarkerRe = regexp.MustCompile(`^\[!(\w+)\]\s*(.*)`)

var calloutEmoji = map[string]string{
	"NOTE":      "ℹ️",
	"INFO":      "ℹ️",
	"TIP":       "💡",
	"WARNING":   "⚠️",
	"DANGER":    "🚨",
	"IMPORTANT": "❗",
	"EXAMPLE":   "📝",
	"QUOTE":     "💬",
}

const defaultCalloutEmoji = "📌"

// maxFallbackLen bounds the text dumped for nodes with no mapping.
const maxFallbackLen = 500

// Converter turns a parsed Markdown document into Notion API blocks.
type Converter struct {
	uploader Uploader
	log      *logger.Logger
}

// New builds a Converter. The uploader may be nil, in which case local
// media references degrade to placeholder paragraphs.
func New(uploader Uploader, log *logger.Logger) *Converter {
	if log == nil {
		log = logger.Discard()
	}
	return &Converter{uploader: uploader, log: log}
}

// Convert walks the document and returns the top level blocks.
func (c *Converter) Convert(ctx context.Context, doc ast.Node, source []byte) []notionapi.Block {
	var blocks []notionapi.Block
	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		blocks = append(blocks, c.convertNode(ctx, child, source)...)
	}
	return blocks
}

func (c *Converter) convertNode(ctx context.Context, n ast.Node, source []byte) []notionapi.Block {
	switch t := n.(type) {
	case *ast.Heading:
		return []notionapi.Block{c.convertHeading(t, source)}
	case *ast.Paragraph:
		return c.convertParagraph(ctx, t, source)
	case *ast.FencedCodeBlock:
		return []notionapi.Block{c.convertCode(t, source)}
	case *ast.CodeBlock:
		return []notionapi.Block{c.convertCodeLines(t, source, "")}
	case *ast.List:
		return c.convertList(ctx, t, source)
	case *ast.Blockquote:
		return []notionapi.Block{c.convertBlockquote(ctx, t, source)}
	case *ast.ThematicBreak:
		return []notionapi.Block{&notionapi.DividerBlock{
			BasicBlock: basicBlock(notionapi.BlockTypeDivider),
			Divider:    notionapi.Divider{},
		}}
	case *ast.HTMLBlock:
		return []notionapi.Block{c.convertHTMLBlock(t, source)}
	case *markdown.MathBlock:
		return []notionapi.Block{&notionapi.EquationBlock{
			BasicBlock: basicBlock(notionapi.BlockTypeEquation),
			Equation:   notionapi.Equation{Expression: t.Expression(source)},
		}}
	case *markdown.Callout:
		return []notionapi.Block{c.convertCallout(t, source)}
	case *markdown.FileEmbed:
		return []notionapi.Block{c.convertFileEmbed(ctx, t.FileType, t.Target, t.Title)}
	default:
		return []notionapi.Block{c.convertUnknown(t, source)}
	}
}

func (c *Converter) convertHeading(n *ast.Heading, source []byte) notionapi.Block {
	rich := ensureRichText(extractRichText(n, source))
	heading := notionapi.Heading{RichText: rich}
	// Deeper levels clamp to the API maximum of three.
	switch n.Level {
	case 1:
		return &notionapi.Heading1Block{
			BasicBlock: basicBlock(notionapi.BlockTypeHeading1),
			Heading1:   heading,
		}
	case 2:
		return &notionapi.Heading2Block{
			BasicBlock: basicBlock(notionapi.BlockTypeHeading2),
			Heading2:   heading,
		}
	default:
		return &notionapi.Heading3Block{
			BasicBlock: basicBlock(notionapi.BlockTypeHeading3),
			Heading3:   heading,
		}
	}
}

func (c *Converter) convertParagraph(ctx context.Context, n *ast.Paragraph, source []byte) []notionapi.Block {
	// Callout markers that survive as paragraphs belong to a blockquote
	// the parser has already consumed; drop the stray marker line.
	if strings.HasPrefix(plainText(n, source), "[!") {
		return nil
	}

	// A paragraph holding a single image or embeddable link becomes a
	// media block of its own.
	if n.ChildCount() == 1 {
		switch only := n.FirstChild().(type) {
		case *ast.Image:
			return []notionapi.Block{c.convertImage(ctx, only, source)}
		case *ast.Link:
			if url := string(only.Destination); IsEmbeddable(url) {
				return []notionapi.Block{notion.NewExternalBlock(notion.MediaEmbed, url, nil)}
			}
		case *ast.AutoLink:
			if url := string(only.URL(source)); IsEmbeddable(url) {
				return []notionapi.Block{notion.NewExternalBlock(notion.MediaEmbed, url, nil)}
			}
		}
	}

	return []notionapi.Block{&notionapi.ParagraphBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeParagraph),
		Paragraph: notionapi.Paragraph{
			RichText: ensureRichText(extractRichText(n, source)),
		},
	}}
}

func (c *Converter) convertCode(n *ast.FencedCodeBlock, source []byte) notionapi.Block {
	return c.convertCodeLines(n, source, string(n.Language(source)))
}

func (c *Converter) convertCodeLines(n ast.Node, source []byte, lang string) notionapi.Block {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	code := strings.TrimSuffix(sb.String(), "\n")

	return &notionapi.CodeBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeCode),
		Code: notionapi.Code{
			RichText: ensureRichText(plainRichText(code)),
			Language: MapLanguage(lang),
		},
	}
}

func (c *Converter) convertList(ctx context.Context, n *ast.List, source []byte) []notionapi.Block {
	var blocks []notionapi.Block
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		blocks = append(blocks, c.convertListItem(ctx, item, n.IsOrdered(), source))
	}
	return blocks
}

func (c *Converter) convertListItem(ctx context.Context, item ast.Node, ordered bool, source []byte) notionapi.Block {
	var rich []notionapi.RichText
	var children notionapi.Blocks
	var checkbox *extast.TaskCheckBox

	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		switch t := child.(type) {
		case *ast.TextBlock, *ast.Paragraph:
			if cb, ok := t.FirstChild().(*extast.TaskCheckBox); ok && checkbox == nil {
				checkbox = cb
			}
			rich = append(rich, extractRichText(t, source)...)
		case *ast.List:
			children = append(children, c.convertList(ctx, t, source)...)
		default:
			children = append(children, c.convertNode(ctx, t, source)...)
		}
	}
	rich = ensureRichText(rich)

	if checkbox != nil {
		return &notionapi.ToDoBlock{
			BasicBlock: basicBlock(notionapi.BlockTypeToDo),
			ToDo: notionapi.ToDo{
				RichText: rich,
				Checked:  checkbox.IsChecked,
				Children: children,
			},
		}
	}
	listItem := notionapi.ListItem{RichText: rich, Children: children}
	if ordered {
		return &notionapi.NumberedListItemBlock{
			BasicBlock:       basicBlock(notionapi.BlockTypeNumberedListItem),
			NumberedListItem: listItem,
		}
	}
	return &notionapi.BulletedListItemBlock{
		BasicBlock:       basicBlock(notionapi.BlockTypeBulletedListItem),
		BulletedListItem: listItem,
	}
}

func (c *Converter) convertBlockquote(ctx context.Context, n *ast.Blockquote, source []byte) notionapi.Block {
	// Quotes opening with a callout marker render as callouts even when
	// the dedicated callout parser is not registered.
	if block, ok := c.calloutFromQuote(n, source); ok {
		return block
	}

	var rich []notionapi.RichText
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if para, ok := child.(*ast.Paragraph); ok {
			rich = append(rich, extractRichText(para, source)...)
		}
	}
	return &notionapi.QuoteBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeQuote),
		Quote: notionapi.Quote{
			RichText: ensureRichText(rich),
		},
	}
}

func (c *Converter) calloutFromQuote(n *ast.Blockquote, source []byte) (notionapi.Block, bool) {
	para, ok := n.FirstChild().(*ast.Paragraph)
	if !ok {
		return nil, false
	}
	calloutType, rich, ok := splitCalloutMarker(extractRichText(para, source))
	if !ok {
		return nil, false
	}

	for child := para.NextSibling(); child != nil; child = child.NextSibling() {
		if p, ok := child.(*ast.Paragraph); ok {
			rich = append(rich, extractRichText(p, source)...)
		}
	}

	return newCalloutBlock(calloutType, ensureRichText(rich)), true
}

// splitCalloutMarker looks for a "[!TYPE]" marker at the head of a
// fragment list. The unstyled leading fragments are joined first because
// the bracket often tokenises separately from the word behind it.
func splitCalloutMarker(rich []notionapi.RichText) (string, []notionapi.RichText, bool) {
	joined := ""
	consumed := 0
	for _, rt := range rich {
		if rt.Annotations != nil || rt.Text == nil || rt.Text.Link != nil || rt.Text.Content == "\n" {
			break
		}
		joined += rt.Text.Content
		consumed++
	}
	m := calloutMarkerRe.FindStringSubmatch(joined)
	if m == nil {
		return "", nil, false
	}
	rest := rich[consumed:]
	if m[2] != "" {
		rest = append(plainRichText(m[2]), rest...)
	}
	return m[1], rest, true
}

func (c *Converter) convertCallout(n *markdown.Callout, source []byte) notionapi.Block {
	var rich []notionapi.RichText
	if n.Title != "" {
		rich = append(rich, BuildRichText(n.Title+": ", &notionapi.Annotations{Bold: true}, "")...)
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if para, ok := child.(*ast.Paragraph); ok {
			rich = append(rich, extractRichText(para, source)...)
		}
	}
	return newCalloutBlock(n.CalloutType, ensureRichText(rich))
}

func newCalloutBlock(calloutType string, rich []notionapi.RichText) notionapi.Block {
	emoji, ok := calloutEmoji[strings.ToUpper(calloutType)]
	if !ok {
		emoji = defaultCalloutEmoji
	}
	e := notionapi.Emoji(emoji)
	return &notionapi.CalloutBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeCallout),
		Callout: notionapi.Callout{
			RichText: rich,
			Icon: &notionapi.Icon{
				Type:  "emoji",
				Emoji: &e,
			},
			Color: "gray_background",
		},
	}
}

func (c *Converter) convertImage(ctx context.Context, n *ast.Image, source []byte) notionapi.Block {
	target := string(n.Destination)
	caption := string(n.Title)
	if caption == "" {
		caption = plainText(n, source)
	}
	return c.mediaBlock(ctx, notion.MediaImage, target, caption)
}

func (c *Converter) convertFileEmbed(ctx context.Context, kind, target, title string) notionapi.Block {
	kind = inferMediaKind(kind, target)
	return c.mediaBlock(ctx, kind, target, title)
}

func (c *Converter) mediaBlock(ctx context.Context, kind, target, caption string) notionapi.Block {
	var captionRich []notionapi.RichText
	if caption != "" {
		captionRich = plainRichText(caption)
	}

	switch ResolveRef(target) {
	case RefRemote:
		return notion.NewExternalBlock(kind, target, captionRich)
	case RefLocal:
		if c.uploader == nil {
			return textParagraph(fmt.Sprintf("[File upload unavailable: %s]", target))
		}
		fileID, err := c.uploader.Upload(ctx, target)
		if err != nil {
			c.log.Warn("file upload failed", "path", target, "error", err)
			return textParagraph(fmt.Sprintf("[File upload failed: %s]", target))
		}
		if kind == notion.MediaEmbed {
			kind = notion.MediaFile
		}
		return notion.NewUploadedBlock(kind, fileID, captionRich)
	default:
		return textParagraph(fmt.Sprintf("[File not found: %s]", target))
	}
}

func (c *Converter) convertHTMLBlock(n *ast.HTMLBlock, source []byte) notionapi.Block {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return textParagraph(strings.TrimSuffix(sb.String(), "\n"))
}

func (c *Converter) convertUnknown(n ast.Node, source []byte) notionapi.Block {
	content := plainText(n, source)
	if content == "" {
		content = n.Kind().String()
	}
	if r := []rune(content); len(r) > maxFallbackLen {
		content = string(r[:maxFallbackLen])
	}
	return textParagraph(fmt.Sprintf("[Unknown node: %s]", content))
}

func textParagraph(content string) notionapi.Block {
	return &notionapi.ParagraphBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeParagraph),
		Paragraph: notionapi.Paragraph{
			RichText: plainRichText(content),
		},
	}
}

func basicBlock(t notionapi.BlockType) notionapi.BasicBlock {
	return notionapi.BasicBlock{
		Object: notionapi.ObjectTypeBlock,
		Type:   t,
	}
}
