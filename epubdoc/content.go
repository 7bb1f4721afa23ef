package epubdoc

import (
	"strings"

	"github.com/tsawler/epubkit/htmldoc"
	"github.com/tsawler/epubkit/mediatype"
	"github.com/tsawler/epubkit/model"
)

// Chapter is a content document in reading order.
type Chapter struct {
	Index    int
	Title    string
	Resource *model.Resource
}

// Chapters returns the XHTML documents of book in reading order, starting
// with the cover page when it is not part of the spine. Titles come from
// the table of contents, falling back to the document's own title.
func Chapters(book *model.Book) []Chapter {
	titles := make(map[*model.Resource]string)
	book.TOC.Walk(func(ref *model.TOCReference, _ int) {
		if ref.Resource != nil && ref.Anchor == "" {
			if _, ok := titles[ref.Resource]; !ok {
				titles[ref.Resource] = ref.Title
			}
		}
	})

	var chapters []Chapter
	for _, r := range book.Contents() {
		if r.MediaType != mediatype.XHTML {
			continue
		}
		title, ok := titles[r]
		if !ok || title == "" {
			title = htmldoc.Title(r.Data)
		}
		chapters = append(chapters, Chapter{Index: len(chapters), Title: title, Resource: r})
	}
	return chapters
}

// Text returns the plain text of every content document in reading order.
func Text(book *model.Book, opts htmldoc.ExtractOptions) (string, error) {
	return ChaptersText(Chapters(book), opts)
}

// Markdown returns the Markdown of every content document in reading order.
func Markdown(book *model.Book, opts htmldoc.ExtractOptions) (string, error) {
	return ChaptersMarkdown(Chapters(book), opts)
}

// ChaptersText returns the plain text of chapters, separated by blank lines.
func ChaptersText(chapters []Chapter, opts htmldoc.ExtractOptions) (string, error) {
	return joinChapters(chapters, func(d *htmldoc.Document) (string, error) {
		return d.Text(opts), nil
	})
}

// ChaptersMarkdown returns the Markdown of chapters, separated by blank lines.
func ChaptersMarkdown(chapters []Chapter, opts htmldoc.ExtractOptions) (string, error) {
	return joinChapters(chapters, func(d *htmldoc.Document) (string, error) {
		return d.Markdown(opts)
	})
}

func joinChapters(chapters []Chapter, render func(*htmldoc.Document) (string, error)) (string, error) {
	var parts []string
	for _, ch := range chapters {
		doc, err := htmldoc.Parse(ch.Resource.Data)
		if err != nil {
			return "", ioError("parse "+ch.Resource.Href, err)
		}
		s, err := render(doc)
		if err != nil {
			return "", ioError("render "+ch.Resource.Href, err)
		}
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// synthesizeTOC adds one table of contents entry per reading-order item,
// titled from the content document or its href.
func synthesizeTOC(book *model.Book) {
	for _, ref := range book.Spine.References() {
		r := ref.Resource
		if r == nil || r.MediaType != mediatype.XHTML {
			continue
		}
		title := htmldoc.Title(r.Data)
		if title == "" {
			title = r.Href
		}
		book.TOC.AddReference(model.NewTOCReference(title, r))
	}
}
