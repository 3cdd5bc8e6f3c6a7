package service

import (
	"regexp"
	"strings"
)

// UntitledRecipe is used when the markdown has no level-1 heading
const UntitledRecipe = "Untitled Recipe"

var titlePattern = regexp.MustCompile(`(?m)^#[ \t]+(.+)$`)

// ExtractTitle returns the text of the first level-1 heading in markdown
func ExtractTitle(markdown string) string {
	m := titlePattern.FindStringSubmatch(markdown)
	if m == nil {
		return UntitledRecipe
	}
	title := strings.TrimSpace(strings.TrimSuffix(m[1], "\r"))
	if title == "" {
		return UntitledRecipe
	}
	return title
}
