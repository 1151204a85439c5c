// Package excerpt extracts a short, cleaned passage from the raw
// plain-text body of a public domain book.
package excerpt

import (
	"regexp"
	"strings"
)

const (
	// Placeholder is returned when no usable text survives cleaning.
	Placeholder = "No readable excerpt could be extracted from this book."

	// maxLength caps the excerpt; over-long excerpts are cut to
	// truncateAt characters plus an ellipsis.
	maxLength  = 500
	truncateAt = 497

	// minLength triggers pulling more source lines when the first
	// window comes up short.
	minLength = 100

	scanWindow = 20
	takeLines  = 10
)

var (
	headerMarker = "*** START OF"

	footerMarkers = []string{
		"*** end of",
		"end of the project gutenberg",
	}

	chapterRe  = regexp.MustCompile(`(?i)^(chapter|part|book|volume|section)\b`)
	contentsRe = regexp.MustCompile(`(?i)^(contents|index|illustrations|table of contents)\b`)
	romanRe    = regexp.MustCompile(`(?i)^[ivxlcdm]+\.?$`)
	digitsRe   = regexp.MustCompile(`^\d+\.?$`)

	whitespaceRe = regexp.MustCompile(`\s+`)
	disallowedRe = regexp.MustCompile(`[^\w\s.,!?;:'"()-]`)

	quoteReplacer = strings.NewReplacer(
		"‘", "'", "’", "'",
		"“", `"`, "”", `"`,
	)
)

// Extract locates a reasonable narrative starting point in fullText and
// returns a cleaned passage of at most 500 characters. It is pure and
// deterministic; it never returns an empty string.
func Extract(fullText string) string {
	lines := contentLines(fullText)
	if len(lines) == 0 {
		return Placeholder
	}

	start := findStart(lines)

	end := start + takeLines
	if end > len(lines) {
		end = len(lines)
	}
	out := clean(strings.Join(lines[start:end], " "))

	// A short opening usually means front matter; widen the window once.
	if len(out) < minLength && end < len(lines) {
		next := end + takeLines
		if next > len(lines) {
			next = len(lines)
		}
		out = clean(out + " " + strings.Join(lines[end:next], " "))
	}

	if len(out) > maxLength {
		out = strings.TrimSpace(out[:truncateAt]) + "..."
	}

	if out == "" {
		return Placeholder
	}
	return out
}

// contentLines strips the standard catalog boilerplate and returns the
// remaining non-blank lines.
func contentLines(fullText string) []string {
	lines := strings.Split(fullText, "\n")

	// Drop the header marker line and everything before it.
	for i, line := range lines {
		if strings.Contains(line, headerMarker) {
			lines = lines[i+1:]
			break
		}
	}

	// Drop the footer block from the first marker onward.
	for i, line := range lines {
		if isFooter(line) {
			lines = lines[:i]
			break
		}
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// findStart scans the first 20 lines for the first one that reads like
// narrative prose rather than a heading. Falls back to line 0.
func findStart(lines []string) int {
	limit := scanWindow
	if limit > len(lines) {
		limit = len(lines)
	}
	for i := 0; i < limit; i++ {
		line := lines[i]
		if len(line) <= 50 {
			continue
		}
		if chapterRe.MatchString(line) || contentsRe.MatchString(line) ||
			romanRe.MatchString(line) || digitsRe.MatchString(line) {
			continue
		}
		return i
	}
	return 0
}

func isFooter(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range footerMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func clean(s string) string {
	s = quoteReplacer.Replace(s)
	s = disallowedRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
