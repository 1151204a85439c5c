// Package format renders extraction outcomes into human-readable chat
// messages.
package format

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/seyiFortress/a2a-book-agent/pkg/extract"
)

const (
	errorGlyph  = "\u274c"     // ❌
	bookGlyph   = "\U0001f4d6" // 📖
	maxSubjects = 5

	attributionFooter = "This text is in the public domain, courtesy of Project Gutenberg."
)

// Format renders an outcome as display text. Every outcome variant maps
// to a message; an unrecognizable success payload is itself reported as
// a formatting error.
func Format(outcome extract.Outcome) string {
	switch o := outcome.(type) {
	case extract.Success:
		return formatBook(o.Book)
	case extract.NotFound:
		return formatError(
			fmt.Sprintf("No books found for %q.", o.Query), "", o.Suggestions)
	case extract.NoPlainText:
		return formatError(
			fmt.Sprintf("No plain-text version of %q is available. Available formats: %s.",
				o.Title, strings.Join(o.Formats, ", ")), "", nil)
	case extract.Failure:
		return formatError(o.Message, o.Code, nil)
	default:
		return formatError("unrecognized extraction result", extract.CodeInternal, nil)
	}
}

func formatBook(book extract.BookResult) string {
	if book.Title == "" || book.Authors == "" || book.Excerpt == "" {
		return formatError("extraction result is missing required fields", extract.CodeInternal, nil)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s by %s\n\n", bookGlyph, book.Title, book.Authors)
	b.WriteString(book.Excerpt)
	b.WriteString("\n")

	if book.Source != "" {
		fmt.Fprintf(&b, "\nSource: %s", book.Source)
	}
	if book.DownloadCount > 0 {
		fmt.Fprintf(&b, "\nDownloads: %s", humanize.Comma(int64(book.DownloadCount)))
	}
	if len(book.Languages) > 0 {
		fmt.Fprintf(&b, "\nLanguages: %s", strings.Join(book.Languages, ", "))
	}
	if len(book.Subjects) > 0 {
		subjects := book.Subjects
		marker := ""
		if len(subjects) > maxSubjects {
			subjects = subjects[:maxSubjects]
			marker = ", ..."
		}
		fmt.Fprintf(&b, "\nSubjects: %s%s", strings.Join(subjects, ", "), marker)
	}

	fmt.Fprintf(&b, "\n\n%s", attributionFooter)
	return b.String()
}

func formatError(message, code string, suggestions []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", errorGlyph, message)

	for i, s := range suggestions {
		fmt.Fprintf(&b, "\n%d. %s", i+1, s)
	}

	if code != "" {
		fmt.Fprintf(&b, "\nError code: %s", code)
	}
	return b.String()
}
