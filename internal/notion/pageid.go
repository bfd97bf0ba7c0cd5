package notion

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	dashedIDRe = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	hexIDRe    = regexp.MustCompile(`[0-9a-fA-F]{32}`)
)

// ExtractPageID pulls a canonical dashed page ID out of a Notion URL, a
// dashless 32-character hex ID, or an already dashed ID.
func ExtractPageID(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if u, err := uuid.Parse(trimmed); err == nil {
		return u.String(), nil
	}
	for _, re := range []*regexp.Regexp{dashedIDRe, hexIDRe} {
		if m := re.FindString(trimmed); m != "" {
			if u, err := uuid.Parse(m); err == nil {
				return u.String(), nil
			}
		}
	}
	return "", fmt.Errorf("no page id found in %q", input)
}

// PageURL returns the public URL for a page ID.
func PageURL(pageID string) string {
	return "https://www.notion.so/" + strings.ReplaceAll(pageID, "-", "")
}
