package markdown

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the subset of YAML frontmatter keys used here.
type Frontmatter struct {
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags"`
}

var (
	frontmatterRe = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---\r?\n`)
	embedRe       = regexp.MustCompile(`!\[\[([^\]]+)\]\]`)
	wikiAliasRe   = regexp.MustCompile(`\[\[[^\|\]]+\|([^\]]+)\]\]`)
	wikiLinkRe    = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	tagRe         = regexp.MustCompile(`([^\n#])#(\w+)`)
	dataviewRe    = regexp.MustCompile("(?s)```dataview.*?```")
	commentRe     = regexp.MustCompile(`(?s)%%.*?%%`)
)

// SplitFrontmatter separates a leading YAML frontmatter section from the
// document body. The returned Frontmatter is nil when there is none or it
// does not parse.
func SplitFrontmatter(content string) (*Frontmatter, string) {
	m := frontmatterRe.FindStringSubmatch(content)
	if m == nil {
		return nil, content
	}
	body := content[len(m[0]):]
	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(m[1]), &fm); err != nil {
		return nil, body
	}
	return &fm, body
}

// CleanObsidian rewrites Obsidian-specific syntax into plain Markdown.
// Embeds become bracketed placeholders, wiki links collapse to their
// display text, inline tags lose the hash, and dataview blocks and
// hidden comments are removed. Embeds run before wiki links so the
// inner brackets are still intact when matched.
func CleanObsidian(content string) string {
	content = embedRe.ReplaceAllString(content, "[Embedded: $1]")
	content = wikiAliasRe.ReplaceAllString(content, "$1")
	content = wikiLinkRe.ReplaceAllString(content, "$1")
	content = tagRe.ReplaceAllString(content, "$1$2")
	content = dataviewRe.ReplaceAllString(content, "[Dataview query removed]")
	content = commentRe.ReplaceAllString(content, "")
	return content
}

// Preprocess strips frontmatter and cleans Obsidian syntax, returning the
// parsed frontmatter when present.
func Preprocess(content string) (*Frontmatter, string) {
	fm, body := SplitFrontmatter(content)
	return fm, CleanObsidian(body)
}

// DocumentTitle picks a page title for a file: the frontmatter title when
// set, otherwise the file name without its extension.
func DocumentTitle(fm *Frontmatter, filename string) string {
	if fm != nil && strings.TrimSpace(fm.Title) != "" {
		return strings.TrimSpace(fm.Title)
	}
	name := filename
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}
