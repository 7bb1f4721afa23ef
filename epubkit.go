// Package epubkit provides a fluent API for reading EPUB publications,
// extracting their text and writing them back out.
//
// Basic usage:
//
//	text, warnings, err := epubkit.Open("book.epub").Text()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", epubkit.FormatWarnings(warnings))
//	}
//
// With options:
//
//	md, _, err := epubkit.Open("book.epub").
//	    Chapters(1, 2, 3).
//	    ExcludeNavigation(htmldoc.NavigationExclusionAggressive).
//	    ToMarkdown()
//
// For lower-level access the epubdoc and model packages are available.
package epubkit

import (
	"github.com/tsawler/epubkit/epubdoc"
	"github.com/tsawler/epubkit/model"
)

// Warning is a recoverable defect found while reading or writing.
type Warning = epubdoc.Warning

// FormatWarnings renders warnings one per line.
func FormatWarnings(warnings []Warning) string {
	return epubdoc.FormatWarnings(warnings)
}

// Open returns an Extractor for the EPUB file at filename. The file is read
// by the first terminal operation.
//
// Example:
//
//	text, warnings, err := epubkit.Open("book.epub").Text()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromBytes returns an Extractor for an EPUB archive held in memory.
func FromBytes(data []byte) *Extractor {
	return &Extractor{
		data:    data,
		options: defaultOptions(),
	}
}

// FromBook returns an Extractor for a publication built or read elsewhere.
// Read options have no effect on it.
//
// Example:
//
//	book := model.NewBook()
//	book.Metadata.AddTitle("Notes")
//	_, err := epubkit.FromBook(book).WriteFile("notes.epub")
func FromBook(book *model.Book) *Extractor {
	return &Extractor{
		book:    book,
		options: defaultOptions(),
	}
}

// New creates an empty publication titled title.
func New(title string) *model.Book {
	book := model.NewBook()
	if title != "" {
		book.Metadata.AddTitle(title)
	}
	return book
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil.
//
// Example:
//
//	n := epubkit.Must(epubkit.Open("book.epub").ChapterCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText is a helper that wraps a call to Text() or ToMarkdown() and
// panics if the error is non-nil. It discards warnings and returns just the
// value.
//
// Example:
//
//	text := epubkit.MustText(epubkit.Open("book.epub").Text())
func MustText[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
