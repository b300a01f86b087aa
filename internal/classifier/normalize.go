package classifier

import (
	"strings"
)

// NormalizeText trims whitespace and collapses internal runs of spaces
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeContent trims a poem body while keeping its line breaks.
// Each line is normalized and blank lines are dropped.
func NormalizeContent(content string) string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if normalized := NormalizeText(line); normalized != "" {
			kept = append(kept, normalized)
		}
	}
	return strings.Join(kept, "\n")
}
