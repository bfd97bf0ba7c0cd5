package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

func parseDoc(t *testing.T, src string, opts ...Option) (ast.Node, []byte) {
	t.Helper()
	source := []byte(src)
	doc := New(opts...).Parser().Parse(text.NewReader(source))
	return doc, source
}

func findNodes(doc ast.Node, kind ast.NodeKind) []ast.Node {
	var out []ast.Node
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == kind {
			out = append(out, n)
		}
		return ast.WalkContinue, nil
	})
	return out
}

func TestMathBlockParsing(t *testing.T) {
	doc, source := parseDoc(t, "before\n\n$$\nE = mc^2\n$$\n\nafter\n")

	nodes := findNodes(doc, KindMathBlock)
	require.Len(t, nodes, 1)
	assert.Equal(t, "E = mc^2", nodes[0].(*MathBlock).Expression(source))
}

func TestMathBlockMultiline(t *testing.T) {
	doc, source := parseDoc(t, "$$\n\na + b\nc + d   \n\n$$\n")

	nodes := findNodes(doc, KindMathBlock)
	require.Len(t, nodes, 1)
	assert.Equal(t, "a + b\nc + d", nodes[0].(*MathBlock).Expression(source))
}

func TestMathBlockUnterminated(t *testing.T) {
	doc, source := parseDoc(t, "$$\nx + y\n")

	nodes := findNodes(doc, KindMathBlock)
	require.Len(t, nodes, 1)
	assert.Equal(t, "x + y", nodes[0].(*MathBlock).Expression(source))
}

func TestCalloutParsing(t *testing.T) {
	doc, _ := parseDoc(t, "> [!WARNING] Disk almost full\n> Free up space soon.\n")

	nodes := findNodes(doc, KindCallout)
	require.Len(t, nodes, 1)
	callout := nodes[0].(*Callout)
	assert.Equal(t, "WARNING", callout.CalloutType)
	assert.Equal(t, "Disk almost full", callout.Title)
	require.NotNil(t, callout.FirstChild())
	assert.Equal(t, ast.KindParagraph, callout.FirstChild().Kind())
}

func TestCalloutLowercaseTypeIsUppercased(t *testing.T) {
	doc, _ := parseDoc(t, "> [!tip] Shortcut\n")

	nodes := findNodes(doc, KindCallout)
	require.Len(t, nodes, 1)
	assert.Equal(t, "TIP", nodes[0].(*Callout).CalloutType)
}

func TestCalloutWithoutTitle(t *testing.T) {
	doc, _ := parseDoc(t, "> [!NOTE]\n> Body text only.\n")

	nodes := findNodes(doc, KindCallout)
	require.Len(t, nodes, 1)
	callout := nodes[0].(*Callout)
	assert.Equal(t, "NOTE", callout.CalloutType)
	assert.Empty(t, callout.Title)
}

func TestPlainBlockquoteStaysBlockquote(t *testing.T) {
	doc, _ := parseDoc(t, "> just a quote\n")

	assert.Empty(t, findNodes(doc, KindCallout))
	assert.Len(t, findNodes(doc, ast.KindBlockquote), 1)
}

func TestWithoutNativeCallouts(t *testing.T) {
	doc, _ := parseDoc(t, "> [!NOTE] plain\n", WithoutNativeCallouts())

	assert.Empty(t, findNodes(doc, KindCallout))
	assert.Len(t, findNodes(doc, ast.KindBlockquote), 1)
}

func TestFileEmbedParsing(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fileType string
		title    string
		target   string
	}{
		{"image", "![image](photo.png)\n", "image", "", "photo.png"},
		{"video with title", "![video:Demo](clip.mp4)\n", "video", "Demo", "clip.mp4"},
		{"pdf url", "![pdf](https://example.com/doc.pdf)\n", "pdf", "", "https://example.com/doc.pdf"},
		{"generic file", "![file](notes.txt)\n", "file", "", "notes.txt"},
		{"embed", "![embed](https://youtube.com/watch?v=x)\n", "embed", "", "https://youtube.com/watch?v=x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, _ := parseDoc(t, tt.input)

			nodes := findNodes(doc, KindFileEmbed)
			require.Len(t, nodes, 1)
			embed := nodes[0].(*FileEmbed)
			assert.Equal(t, tt.fileType, embed.FileType)
			assert.Equal(t, tt.title, embed.Title)
			assert.Equal(t, tt.target, embed.Target)
		})
	}
}

func TestFileEmbedIgnoresOrdinaryImages(t *testing.T) {
	doc, _ := parseDoc(t, "![a screenshot](shot.png)\n")

	assert.Empty(t, findNodes(doc, KindFileEmbed))
	assert.Len(t, findNodes(doc, ast.KindImage), 1)
}

func TestHighlightParsing(t *testing.T) {
	doc, source := parseDoc(t, "some ==highlighted== text\n")

	nodes := findNodes(doc, KindHighlight)
	require.Len(t, nodes, 1)
	assert.Equal(t, "highlighted", nodes[0].(*Highlight).Value(source))
}

func TestHighlightRejectsEmptyAndUnclosed(t *testing.T) {
	doc, _ := parseDoc(t, "a ==== b\n\nan ==unclosed span\n")

	assert.Empty(t, findNodes(doc, KindHighlight))
}

func TestInlineMathParsing(t *testing.T) {
	doc, source := parseDoc(t, "energy is $E = mc^2$ here\n")

	nodes := findNodes(doc, KindInlineMath)
	require.Len(t, nodes, 1)
	assert.Equal(t, "E = mc^2", nodes[0].(*InlineMath).Value(source))
}

func TestTaskListParsing(t *testing.T) {
	doc, _ := parseDoc(t, "- [x] done\n- [ ] todo\n")

	boxes := findNodes(doc, extast.KindTaskCheckBox)
	require.Len(t, boxes, 2)
	assert.True(t, boxes[0].(*extast.TaskCheckBox).IsChecked)
	assert.False(t, boxes[1].(*extast.TaskCheckBox).IsChecked)
}
