// Package gutendex is a client for the Gutendex API, the JSON catalog of
// Project Gutenberg. It searches books by free text, selects the best
// plain-text format, and fetches the text body.
package gutendex

import (
	"sort"
	"strings"
)

// SearchResult is the response of a catalog search.
type SearchResult struct {
	Count   int    `json:"count"`
	Results []Book `json:"results"`
}

// Book is one catalog record. Formats maps MIME types to download URLs.
type Book struct {
	ID            int               `json:"id"`
	Title         string            `json:"title"`
	Authors       []Author          `json:"authors"`
	Subjects      []string          `json:"subjects,omitempty"`
	Languages     []string          `json:"languages,omitempty"`
	Formats       map[string]string `json:"formats"`
	DownloadCount int               `json:"download_count"`
}

// Author is a catalog author record.
type Author struct {
	Name      string `json:"name"`
	BirthYear *int   `json:"birth_year,omitempty"`
	DeathYear *int   `json:"death_year,omitempty"`
}

// AuthorNames joins the book's author names, or returns a placeholder
// when the catalog lists none.
func (b *Book) AuthorNames() string {
	if len(b.Authors) == 0 {
		return "Unknown Author"
	}
	names := make([]string, len(b.Authors))
	for i, a := range b.Authors {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// plainTextFormats lists accepted MIME types in priority order.
var plainTextFormats = []string{
	"text/plain; charset=us-ascii",
	"text/plain",
	"text/plain; charset=utf-8",
}

// TextURL returns the download URL of the most preferred plain-text
// format the book offers.
func (b *Book) TextURL() (string, bool) {
	for _, mime := range plainTextFormats {
		if url, ok := b.Formats[mime]; ok {
			return url, true
		}
	}
	return "", false
}

// FormatList returns the MIME types the book is available in, for
// reporting when no plain-text version exists.
func (b *Book) FormatList() []string {
	out := make([]string, 0, len(b.Formats))
	for mime := range b.Formats {
		out = append(out, mime)
	}
	sort.Strings(out)
	return out
}
