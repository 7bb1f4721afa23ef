package htmldoc

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Document is a parsed XHTML content document.
type Document struct {
	data []byte
	doc  *goquery.Document
}

// Parse parses an XHTML or HTML content document. Content that is not valid
// UTF-8 is transcoded using the charset declared in the document.
func Parse(data []byte) (*Document, error) {
	r, err := newReader(data)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return &Document{data: data, doc: doc}, nil
}

func newReader(data []byte) (io.Reader, error) {
	if utf8.Valid(data) {
		return bytes.NewReader(data), nil
	}
	r, err := charset.NewReader(bytes.NewReader(data), "text/html")
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}
	return r, nil
}

// Title returns the <title> of the document, falling back to the first
// heading. Whitespace is collapsed.
func (d *Document) Title() string {
	if t := collapse(d.doc.Find("head title").First().Text()); t != "" {
		return t
	}
	return collapse(d.doc.Find("h1, h2, h3, h4, h5, h6").First().Text())
}

// Text returns the readable text of the document body. Block elements are
// separated by blank lines, list items and table rows by line breaks.
func (d *Document) Text(opts ExtractOptions) string {
	root := d.doc.Get(0)
	checker := newExclusionChecker(opts.NavigationExclusion, root)

	var w textWriter
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			w.text(n.Data)
			return
		case html.ElementNode:
			if skippedElements[n.Data] || checker.shouldExclude(n) {
				return
			}
			if n.Data == "br" {
				w.lineBreak()
				return
			}
		}

		breaks := 0
		if n.Type == html.ElementNode {
			if blockElements[n.Data] {
				breaks = 2
			} else if lineElements[n.Data] {
				breaks = 1
			}
		}
		w.separate(breaks)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		w.separate(breaks)
	}
	walk(checker.bodyNode)

	return w.String()
}

// textWriter joins text runs, turning element boundaries into at most the
// requested number of line breaks.
type textWriter struct {
	b       strings.Builder
	pending int
}

func (w *textWriter) separate(n int) {
	if n > w.pending {
		w.pending = n
	}
}

func (w *textWriter) lineBreak() {
	w.b.WriteString("\n")
	w.pending = 0
}

func (w *textWriter) text(s string) {
	s = spaceRun.ReplaceAllString(s, " ")
	if strings.TrimSpace(s) == "" {
		if w.pending == 0 && w.b.Len() > 0 {
			w.b.WriteString(" ")
		}
		return
	}
	if w.pending > 0 {
		if w.b.Len() > 0 {
			w.b.WriteString(strings.Repeat("\n", w.pending))
		}
		w.pending = 0
		s = strings.TrimLeft(s, " ")
	}
	w.b.WriteString(s)
}

func (w *textWriter) String() string {
	lines := strings.Split(w.b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Markdown converts the document body to Markdown.
func (d *Document) Markdown(opts ExtractOptions) (string, error) {
	// Conversion edits the tree, so work on a fresh copy.
	r, err := newReader(d.data)
	if err != nil {
		return "", err
	}
	root, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	checker := newExclusionChecker(opts.NavigationExclusion, root)
	var excluded []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && (skippedElements[n.Data] || checker.shouldExclude(n)) {
			excluded = append(excluded, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(checker.bodyNode)
	for _, n := range excluded {
		n.Parent.RemoveChild(n)
	}

	out, err := htmltomarkdown.ConvertNode(checker.bodyNode)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Title parses data and returns its title, or "" if it cannot be parsed.
func Title(data []byte) string {
	d, err := Parse(data)
	if err != nil {
		return ""
	}
	return d.Title()
}

// Text parses data and returns its text with the default options.
func Text(data []byte) (string, error) {
	d, err := Parse(data)
	if err != nil {
		return "", err
	}
	return d.Text(DefaultExtractOptions()), nil
}

// Markdown parses data and returns its Markdown with the default options.
func Markdown(data []byte) (string, error) {
	d, err := Parse(data)
	if err != nil {
		return "", err
	}
	return d.Markdown(DefaultExtractOptions())
}

var skippedElements = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "dl": true, "blockquote": true, "pre": true,
	"table": true, "figure": true, "header": true, "footer": true, "hr": true,
}

var lineElements = map[string]bool{
	"li": true, "tr": true, "dt": true, "dd": true, "figcaption": true, "caption": true,
}

var spaceRun = regexp.MustCompile(`\s+`)

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
