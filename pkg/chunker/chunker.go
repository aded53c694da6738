// Package chunker splits raw page markdown into bounded-length chunks,
// the unit the vector store embeds and retrieves.
package chunker

import (
	"regexp"
	"strings"
)

// DefaultMaxLen bounds chunk payload size for the embedding capability.
const DefaultMaxLen = 800

var headerLine = regexp.MustCompile(`^#{1,3} .+`)

// Chunk hierarchically splits markdown: first on level 1-3 header lines,
// falling back to blank-line paragraphs when the document has no headers.
// Chunks longer than maxLen are sliced into consecutive fixed-width
// windows. Document order is preserved and empty chunks are dropped.
func Chunk(markdown string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	combined := splitByHeaders(markdown)
	if len(combined) == 0 {
		for _, p := range strings.Split(markdown, "\n\n") {
			if p = strings.TrimSpace(p); p != "" {
				combined = append(combined, p)
			}
		}
	}

	var final []string
	for _, c := range combined {
		runes := []rune(c)
		if len(runes) <= maxLen {
			final = append(final, c)
			continue
		}
		for i := 0; i < len(runes); i += maxLen {
			end := i + maxLen
			if end > len(runes) {
				end = len(runes)
			}
			final = append(final, string(runes[i:end]))
		}
	}
	return final
}

// splitByHeaders groups each header line with the body below it, up to the
// next header. Text before the first header is navigation noise and is
// dropped.
func splitByHeaders(markdown string) []string {
	lines := strings.Split(markdown, "\n")

	var starts []int
	for i, line := range lines {
		if headerLine.MatchString(line) {
			starts = append(starts, i)
		}
	}
	if len(starts) == 0 {
		return nil
	}

	var chunks []string
	for i, start := range starts {
		end := len(lines)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		section := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
		if section != "" {
			chunks = append(chunks, section)
		}
	}
	return chunks
}
