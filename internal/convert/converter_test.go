package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/text"

	"github.com/christopherseaman/narko/internal/logger"
	"github.com/christopherseaman/narko/internal/markdown"
	"github.com/christopherseaman/narko/internal/notion"
)

type fakeUploader struct {
	id    string
	err   error
	calls []string
}

func (f *fakeUploader) Upload(_ context.Context, path string) (string, error) {
	f.calls = append(f.calls, path)
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

func convertWith(t *testing.T, c *Converter, src string, opts ...markdown.Option) []notionapi.Block {
	t.Helper()
	source := []byte(src)
	doc := markdown.New(opts...).Parser().Parse(text.NewReader(source))
	return c.Convert(context.Background(), doc, source)
}

func convertSource(t *testing.T, src string, opts ...markdown.Option) []notionapi.Block {
	t.Helper()
	return convertWith(t, New(nil, logger.Discard()), src, opts...)
}

func paragraphText(t *testing.T, block notionapi.Block) string {
	t.Helper()
	para, ok := block.(*notionapi.ParagraphBlock)
	require.True(t, ok, "expected paragraph, got %T", block)
	out := ""
	for _, rt := range para.Paragraph.RichText {
		out += rt.Text.Content
	}
	return out
}

func TestConvertHeadings(t *testing.T) {
	blocks := convertSource(t, "# One\n\n## Two\n\n### Three\n")

	require.Len(t, blocks, 3)
	h1 := blocks[0].(*notionapi.Heading1Block)
	assert.Equal(t, "One", h1.Heading1.RichText[0].Text.Content)
	h2 := blocks[1].(*notionapi.Heading2Block)
	assert.Equal(t, "Two", h2.Heading2.RichText[0].Text.Content)
	h3 := blocks[2].(*notionapi.Heading3Block)
	assert.Equal(t, "Three", h3.Heading3.RichText[0].Text.Content)
}

func TestConvertHeadingClampsDeepLevels(t *testing.T) {
	blocks := convertSource(t, "##### Deep\n")

	require.Len(t, blocks, 1)
	h3, ok := blocks[0].(*notionapi.Heading3Block)
	require.True(t, ok, "expected heading_3, got %T", blocks[0])
	assert.Equal(t, "Deep", h3.Heading3.RichText[0].Text.Content)
}

func TestConvertParagraphInlineStyles(t *testing.T) {
	blocks := convertSource(t, "plain **bold** *italic* `code` ~~gone~~ ==marked== $x^2$\n")

	require.Len(t, blocks, 1)
	para := blocks[0].(*notionapi.ParagraphBlock)
	rts := para.Paragraph.RichText

	var bold, italic, code, strike, highlight, math *notionapi.RichText
	for i := range rts {
		switch rts[i].Text.Content {
		case "bold":
			bold = &rts[i]
		case "italic":
			italic = &rts[i]
		case "code":
			code = &rts[i]
		case "gone":
			strike = &rts[i]
		case "marked":
			highlight = &rts[i]
		case "$x^2$":
			math = &rts[i]
		}
	}
	require.NotNil(t, bold)
	assert.True(t, bold.Annotations.Bold)
	require.NotNil(t, italic)
	assert.True(t, italic.Annotations.Italic)
	require.NotNil(t, code)
	assert.True(t, code.Annotations.Code)
	require.NotNil(t, strike)
	assert.True(t, strike.Annotations.Strikethrough)
	require.NotNil(t, highlight)
	assert.Equal(t, notionapi.Color("yellow_background"), highlight.Annotations.Color)
	require.NotNil(t, math)
	assert.True(t, math.Annotations.Code)
}

func TestConvertInlineLink(t *testing.T) {
	blocks := convertSource(t, "see [the docs](https://example.com/docs) here\n")

	require.Len(t, blocks, 1)
	para := blocks[0].(*notionapi.ParagraphBlock)

	var linked *notionapi.RichText
	for i := range para.Paragraph.RichText {
		if para.Paragraph.RichText[i].Text.Link != nil {
			linked = &para.Paragraph.RichText[i]
		}
	}
	require.NotNil(t, linked)
	assert.Equal(t, "the docs", linked.Text.Content)
	assert.Equal(t, "https://example.com/docs", linked.Text.Link.Url)
}

func TestConvertCodeBlock(t *testing.T) {
	blocks := convertSource(t, "```py\nprint('hi')\n```\n")

	require.Len(t, blocks, 1)
	code := blocks[0].(*notionapi.CodeBlock)
	assert.Equal(t, "python", code.Code.Language)
	assert.Equal(t, "print('hi')", code.Code.RichText[0].Text.Content)
}

func TestConvertCodeBlockUnknownLanguage(t *testing.T) {
	blocks := convertSource(t, "```whitespace\nx\n```\n")

	code := blocks[0].(*notionapi.CodeBlock)
	assert.Equal(t, "plain text", code.Code.Language)
}

func TestConvertMathBlock(t *testing.T) {
	blocks := convertSource(t, "$$\nE = mc^2\n$$\n")

	require.Len(t, blocks, 1)
	eq := blocks[0].(*notionapi.EquationBlock)
	assert.Equal(t, "E = mc^2", eq.Equation.Expression)
}

func TestConvertTaskList(t *testing.T) {
	blocks := convertSource(t, "- [x] Done\n- [ ] Pending\n")

	require.Len(t, blocks, 2)
	done := blocks[0].(*notionapi.ToDoBlock)
	assert.True(t, done.ToDo.Checked)
	assert.Equal(t, "Done", done.ToDo.RichText[0].Text.Content)
	pending := blocks[1].(*notionapi.ToDoBlock)
	assert.False(t, pending.ToDo.Checked)
}

func TestConvertBulletedAndNumberedLists(t *testing.T) {
	blocks := convertSource(t, "- alpha\n- beta\n\n1. first\n2. second\n")

	require.Len(t, blocks, 4)
	bullet := blocks[0].(*notionapi.BulletedListItemBlock)
	assert.Equal(t, "alpha", bullet.BulletedListItem.RichText[0].Text.Content)
	numbered := blocks[2].(*notionapi.NumberedListItemBlock)
	assert.Equal(t, "first", numbered.NumberedListItem.RichText[0].Text.Content)
}

func TestConvertNestedList(t *testing.T) {
	blocks := convertSource(t, "- outer\n  - inner\n")

	require.Len(t, blocks, 1)
	outer := blocks[0].(*notionapi.BulletedListItemBlock)
	assert.Equal(t, "outer", outer.BulletedListItem.RichText[0].Text.Content)
	require.Len(t, outer.BulletedListItem.Children, 1)
	inner := outer.BulletedListItem.Children[0].(*notionapi.BulletedListItemBlock)
	assert.Equal(t, "inner", inner.BulletedListItem.RichText[0].Text.Content)
}

func TestConvertDivider(t *testing.T) {
	blocks := convertSource(t, "above\n\n---\n\nbelow\n")

	require.Len(t, blocks, 3)
	_, ok := blocks[1].(*notionapi.DividerBlock)
	assert.True(t, ok, "expected divider, got %T", blocks[1])
}

func TestConvertQuote(t *testing.T) {
	blocks := convertSource(t, "> a wise word\n")

	require.Len(t, blocks, 1)
	quote := blocks[0].(*notionapi.QuoteBlock)
	assert.Equal(t, "a wise word", quote.Quote.RichText[0].Text.Content)
}

func TestConvertCalloutNativeParser(t *testing.T) {
	blocks := convertSource(t, "> [!WARNING] Disk full\n> Free some space.\n")

	require.Len(t, blocks, 1)
	callout := blocks[0].(*notionapi.CalloutBlock)
	require.NotNil(t, callout.Callout.Icon)
	assert.Equal(t, notionapi.Emoji("⚠️"), *callout.Callout.Icon.Emoji)
	assert.Equal(t, "gray_background", callout.Callout.Color)

	require.NotEmpty(t, callout.Callout.RichText)
	title := callout.Callout.RichText[0]
	assert.Equal(t, "Disk full: ", title.Text.Content)
	require.NotNil(t, title.Annotations)
	assert.True(t, title.Annotations.Bold)
}

func TestConvertCalloutFromBlockquote(t *testing.T) {
	blocks := convertSource(t, "> [!TIP] take a break\n", markdown.WithoutNativeCallouts())

	require.Len(t, blocks, 1)
	callout := blocks[0].(*notionapi.CalloutBlock)
	assert.Equal(t, notionapi.Emoji("💡"), *callout.Callout.Icon.Emoji)
	assert.Equal(t, "take a break", callout.Callout.RichText[0].Text.Content)
}

func TestConvertCalloutUnknownTypeUsesDefaultIcon(t *testing.T) {
	blocks := convertSource(t, "> [!CUSTOM] something\n")

	callout := blocks[0].(*notionapi.CalloutBlock)
	assert.Equal(t, notionapi.Emoji("📌"), *callout.Callout.Icon.Emoji)
}

func TestConvertStrayCalloutMarkerParagraphDropped(t *testing.T) {
	blocks := convertSource(t, "[!NOTE] leftover marker\n")

	assert.Empty(t, blocks)
}

func TestConvertEmbeddableLinkParagraph(t *testing.T) {
	blocks := convertSource(t, "https://youtube.com/watch?v=abc\n")

	require.Len(t, blocks, 1)
	embed, ok := blocks[0].(*notionapi.EmbedBlock)
	require.True(t, ok, "expected embed, got %T", blocks[0])
	assert.Equal(t, "https://youtube.com/watch?v=abc", embed.Embed.URL)
}

func TestConvertNonEmbeddableLinkStaysParagraph(t *testing.T) {
	blocks := convertSource(t, "[site](https://example.com)\n")

	require.Len(t, blocks, 1)
	para := blocks[0].(*notionapi.ParagraphBlock)
	require.NotNil(t, para.Paragraph.RichText[0].Text.Link)
	assert.Equal(t, "https://example.com", para.Paragraph.RichText[0].Text.Link.Url)
}

func TestConvertRemoteImage(t *testing.T) {
	blocks := convertSource(t, "![a chart](https://example.com/chart.png)\n")

	require.Len(t, blocks, 1)
	img := blocks[0].(*notionapi.ImageBlock)
	require.NotNil(t, img.Image.External)
	assert.Equal(t, "https://example.com/chart.png", img.Image.External.URL)
	require.NotEmpty(t, img.Image.Caption)
	assert.Equal(t, "a chart", img.Image.Caption[0].Text.Content)
}

func TestConvertMissingLocalFile(t *testing.T) {
	blocks := convertSource(t, "![image](does/not/exist.png)\n")

	require.Len(t, blocks, 1)
	assert.Equal(t, "[File not found: does/not/exist.png]", paragraphText(t, blocks[0]))
}

func TestConvertLocalFileUploads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, []byte("pngdata"), 0o644))
	uploader := &fakeUploader{id: "upload-123"}
	c := New(uploader, logger.Discard())

	blocks := convertWith(t, c, "![image:Snapshot]("+path+")\n")

	require.Len(t, blocks, 1)
	img, ok := blocks[0].(*notion.UploadedImageBlock)
	require.True(t, ok, "expected uploaded image, got %T", blocks[0])
	assert.Equal(t, "upload-123", img.Image.FileUpload.ID)
	assert.Equal(t, "file_upload", img.Image.Type)
	require.NotEmpty(t, img.Image.Caption)
	assert.Equal(t, "Snapshot", img.Image.Caption[0].Text.Content)
	assert.Equal(t, []string{path}, uploader.calls)
}

func TestConvertLocalFileUploadFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("pdf"), 0o644))
	c := New(&fakeUploader{err: errors.New("boom")}, logger.Discard())

	blocks := convertWith(t, c, "![pdf]("+path+")\n")

	require.Len(t, blocks, 1)
	assert.Equal(t, "[File upload failed: "+path+"]", paragraphText(t, blocks[0]))
}

func TestConvertFileKindInference(t *testing.T) {
	blocks := convertSource(t, "![file](https://example.com/talk.mp4)\n")

	require.Len(t, blocks, 1)
	video, ok := blocks[0].(*notionapi.VideoBlock)
	require.True(t, ok, "expected video, got %T", blocks[0])
	assert.Equal(t, "https://example.com/talk.mp4", video.Video.External.URL)
}

func TestConvertEmptyParagraphKeepsPlaceholderFragment(t *testing.T) {
	blocks := convertSource(t, "![[]]\n")

	// Whatever survives must still carry a rich text array.
	for _, b := range blocks {
		if para, ok := b.(*notionapi.ParagraphBlock); ok {
			assert.NotEmpty(t, para.Paragraph.RichText)
		}
	}
}
