package epubkit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/tsawler/epubkit/epubdoc"
	"github.com/tsawler/epubkit/format"
	"github.com/tsawler/epubkit/htmldoc"
	"github.com/tsawler/epubkit/model"
)

// ErrUnsupportedFormat is returned when the input is not an EPUB publication.
var ErrUnsupportedFormat = errors.New("epubkit: not an EPUB publication")

// Extractor provides a fluent interface for reading and extracting content
// from EPUB publications. Each configuration method returns a new Extractor
// instance, making it safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source (only one is set)
	filename string
	data     []byte
	book     *model.Book

	// Configuration
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error

	// Warnings accumulated during processing
	warnings []Warning
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename: e.filename,
		data:     e.data,
		book:     e.book,
		options:  e.options.clone(),
		err:      e.err,
		warnings: append([]Warning(nil), e.warnings...),
	}
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Chapters specifies which chapters to extract from (1-indexed, in reading
// order). Multiple calls are cumulative.
//
// Example:
//
//	text, _, err := epubkit.Open("book.epub").Chapters(1, 3).Text()
func (e *Extractor) Chapters(chapters ...int) *Extractor {
	newExt := e.clone()
	newExt.options.chapters = append(newExt.options.chapters, chapters...)
	return newExt
}

// ChapterRange specifies a range of chapters to extract (1-indexed, inclusive).
func (e *Extractor) ChapterRange(start, end int) *Extractor {
	newExt := e.clone()
	if start > end {
		newExt.err = fmt.Errorf("invalid chapter range %d-%d", start, end)
		return newExt
	}
	for i := start; i <= end; i++ {
		newExt.options.chapters = append(newExt.options.chapters, i)
	}
	return newExt
}

// ExcludeNavigation sets how navigation and page furniture are filtered
// from extracted text. The default is htmldoc.NavigationExclusionStandard.
func (e *Extractor) ExcludeNavigation(mode htmldoc.NavigationExclusionMode) *Extractor {
	newExt := e.clone()
	newExt.options.navigation = mode
	return newExt
}

// IncludeNavigation disables navigation filtering.
func (e *Extractor) IncludeNavigation() *Extractor {
	return e.ExcludeNavigation(htmldoc.NavigationExclusionNone)
}

// SynthesizeTOC builds a table of contents from the reading order when the
// publication carries none.
func (e *Extractor) SynthesizeTOC() *Extractor {
	newExt := e.clone()
	newExt.options.synthesizeTOC = true
	return newExt
}

// SkipDRMCheck reads publications that carry rights or encryption markers.
// Encrypted documents stay encrypted and extract as noise.
func (e *Extractor) SkipDRMCheck() *Extractor {
	newExt := e.clone()
	newExt.options.skipDRMCheck = true
	return newExt
}

// Logger sets the logger that receives warnings and debug output.
func (e *Extractor) Logger(l *zap.Logger) *Extractor {
	newExt := e.clone()
	newExt.options.logger = l
	return newExt
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Book reads the publication and returns its document graph.
//
// Example:
//
//	book, _, err := epubkit.Open("book.epub").Book()
//	fmt.Println(book.Title())
func (e *Extractor) Book() (*model.Book, []Warning, error) {
	return e.load()
}

// Metadata returns the publication metadata.
func (e *Extractor) Metadata() (*model.Metadata, []Warning, error) {
	book, warnings, err := e.load()
	if err != nil {
		return nil, warnings, err
	}
	return book.Metadata, warnings, nil
}

// TableOfContents returns the navigation tree of the publication.
func (e *Extractor) TableOfContents() (*model.TableOfContents, []Warning, error) {
	book, warnings, err := e.load()
	if err != nil {
		return nil, warnings, err
	}
	return book.TOC, warnings, nil
}

// ChapterCount returns the number of content documents in reading order.
func (e *Extractor) ChapterCount() (int, error) {
	book, _, err := e.load()
	if err != nil {
		return 0, err
	}
	return len(epubdoc.Chapters(book)), nil
}

// ChapterList returns the selected content documents in reading order.
func (e *Extractor) ChapterList() ([]epubdoc.Chapter, []Warning, error) {
	book, warnings, err := e.load()
	if err != nil {
		return nil, warnings, err
	}
	chapters, err := e.resolveChapters(epubdoc.Chapters(book))
	if err != nil {
		return nil, warnings, err
	}
	return chapters, warnings, nil
}

// Text extracts plain text from the selected chapters. Chapters are
// separated by blank lines.
//
// Example:
//
//	text, warnings, err := epubkit.Open("book.epub").Text()
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", epubkit.FormatWarnings(warnings))
//	}
func (e *Extractor) Text() (string, []Warning, error) {
	chapters, warnings, err := e.ChapterList()
	if err != nil {
		return "", warnings, err
	}
	text, err := epubdoc.ChaptersText(chapters, e.options.htmlOptions())
	if err != nil {
		return "", warnings, err
	}
	return text, warnings, nil
}

// ToMarkdown converts the selected chapters to Markdown.
//
// Example:
//
//	md, _, err := epubkit.Open("book.epub").ToMarkdown()
func (e *Extractor) ToMarkdown() (string, []Warning, error) {
	chapters, warnings, err := e.ChapterList()
	if err != nil {
		return "", warnings, err
	}
	md, err := epubdoc.ChaptersMarkdown(chapters, e.options.htmlOptions())
	if err != nil {
		return "", warnings, err
	}
	return md, warnings, nil
}

// Write serializes the publication as an EPUB archive to w. Chapter
// selection does not apply; the whole publication is written.
//
// Example:
//
//	f, _ := os.Create("copy.epub")
//	defer f.Close()
//	_, err := epubkit.Open("book.epub").Write(f)
func (e *Extractor) Write(w io.Writer) ([]Warning, error) {
	book, warnings, err := e.load()
	if err != nil {
		return warnings, err
	}
	writeWarnings, err := epubdoc.Write(w, book, epubdoc.WriteOptions{Logger: e.options.logger})
	return append(warnings, writeWarnings...), err
}

// WriteFile serializes the publication to the named file.
func (e *Extractor) WriteFile(name string) ([]Warning, error) {
	var buf bytes.Buffer
	warnings, err := e.Write(&buf)
	if err != nil {
		return warnings, err
	}
	if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
		return warnings, fmt.Errorf("failed to write %s: %w", name, err)
	}
	return warnings, nil
}

// ============================================================================
// Internal helpers
// ============================================================================

// load reads the publication unless the Extractor already holds one.
func (e *Extractor) load() (*model.Book, []Warning, error) {
	if e.err != nil {
		return nil, nil, e.err
	}
	if e.book != nil {
		return e.book, e.warnings, nil
	}

	data := e.data
	if data == nil {
		if e.filename == "" {
			return nil, nil, fmt.Errorf("no filename specified")
		}
		switch f := format.Detect(e.filename); f {
		case format.HTML, format.XML:
			return nil, nil, fmt.Errorf("%w: %s file %s", ErrUnsupportedFormat, f, e.filename)
		}
		var err error
		data, err = os.ReadFile(e.filename)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open EPUB: %w", err)
		}
	}

	// A damaged archive is left to the reader, which reports it as an I/O
	// failure.
	if f, err := format.DetectFromReader(bytes.NewReader(data), int64(len(data))); err == nil && f != format.EPUB {
		return nil, nil, fmt.Errorf("%w: detected %s", ErrUnsupportedFormat, f)
	}

	book, warnings, err := epubdoc.Read(data, epubdoc.ReadOptions{
		Logger:        e.options.logger,
		SkipDRMCheck:  e.options.skipDRMCheck,
		SynthesizeTOC: e.options.synthesizeTOC,
	})
	warnings = append(append([]Warning(nil), e.warnings...), warnings...)
	if err != nil {
		return nil, warnings, err
	}
	return book, warnings, nil
}

// resolveChapters applies the chapter selection. If no chapters are
// specified, all are returned.
func (e *Extractor) resolveChapters(all []epubdoc.Chapter) ([]epubdoc.Chapter, error) {
	if len(e.options.chapters) == 0 {
		return all, nil
	}

	seen := make(map[int]bool)
	var indices []int
	for _, c := range e.options.chapters {
		if c < 1 || c > len(all) {
			return nil, fmt.Errorf("chapter %d out of range (1-%d)", c, len(all))
		}
		if !seen[c-1] {
			seen[c-1] = true
			indices = append(indices, c-1)
		}
	}
	sort.Ints(indices)

	selected := make([]epubdoc.Chapter, 0, len(indices))
	for _, i := range indices {
		selected = append(selected, all[i])
	}
	return selected, nil
}
