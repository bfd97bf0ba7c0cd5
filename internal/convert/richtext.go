package convert

import (
	"unicode"

	"github.com/jomei/notionapi"
)

// MaxChunkLen is the Notion API limit on a single rich text content field,
// counted in characters rather than bytes.
const MaxChunkLen = 2000

// Background colours used for converted inline styles.
const (
	colorYellowBackground = notionapi.Color("yellow_background")
	colorGrayBackground   = notionapi.Color("gray_background")
)

// ChunkText splits text into pieces of at most limit characters,
// preferring the last space before the limit and falling back to a hard
// cut when a piece has no space. Leading whitespace is trimmed from each
// remainder so no piece starts mid-word with a gap.
func ChunkText(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}
	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= limit {
			chunks = append(chunks, string(runes))
			break
		}
		split := limit
		for i := limit - 1; i >= 0; i-- {
			if runes[i] == ' ' {
				split = i
				break
			}
		}
		chunks = append(chunks, string(runes[:split]))
		rest := runes[split:]
		for len(rest) > 0 && unicode.IsSpace(rest[0]) {
			rest = rest[1:]
		}
		runes = rest
	}
	return chunks
}

// BuildRichText turns a string into rich text fragments, chunked to the
// API limit. Annotations and the link are applied to every chunk so long
// styled runs keep their formatting across the split.
func BuildRichText(text string, annotations *notionapi.Annotations, link string) []notionapi.RichText {
	chunks := ChunkText(text, MaxChunkLen)
	out := make([]notionapi.RichText, 0, len(chunks))
	for _, chunk := range chunks {
		rt := notionapi.RichText{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: chunk},
		}
		if link != "" {
			rt.Text.Link = &notionapi.Link{Url: link}
		}
		if annotations != nil {
			a := *annotations
			rt.Annotations = &a
		}
		out = append(out, rt)
	}
	return out
}

// plainRichText is BuildRichText without styling.
func plainRichText(text string) []notionapi.RichText {
	return BuildRichText(text, nil, "")
}

// ensureRichText substitutes a single empty fragment for an empty slice
// so text-bearing blocks always carry a rich text array.
func ensureRichText(rts []notionapi.RichText) []notionapi.RichText {
	if len(rts) == 0 {
		return plainRichText("")
	}
	return rts
}
