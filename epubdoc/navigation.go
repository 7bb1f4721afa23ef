package epubdoc

import (
	"bytes"
	"errors"
	"path"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/beevik/etree"

	"github.com/tsawler/epubkit/internal/xmlutil"
	"github.com/tsawler/epubkit/mediatype"
	"github.com/tsawler/epubkit/model"
)

// Navigation-related errors.
var (
	ErrNoNavMap = errors.New("epub: navigation document has no navMap")
	ErrNoTOCNav = errors.New("epub: navigation document has no toc nav")
)

const nsNCX = "http://www.daisy.org/z3986/2005/ncx/"

// Conventional id and href of the NCX written by Write.
const (
	NCXID   = "ncx"
	NCXHref = "toc.ncx"
)

// readNavigation fills the table of contents from the spine's NCX, falling
// back to an EPUB 3 navigation document.
func readNavigation(book *model.Book, diag *diagnostics) {
	if toc := book.Spine.TOCResource(); toc != nil && toc.MediaType == mediatype.NCX {
		n, err := readNCX(book, toc, diag)
		switch {
		case err != nil:
			diag.warn(NavigationParse, toc.Href, "cannot read NCX: %v", err)
		case n > 0:
			book.SetNCXResource(toc)
			return
		}
	}

	if nav := findNavDocument(book); nav != nil {
		n, err := readNavDocument(book, nav, diag)
		switch {
		case err != nil:
			diag.warn(NavigationParse, nav.Href, "cannot read navigation document: %v", err)
		case n > 0:
			return
		}
	}

	if book.TOC.Size() == 0 {
		diag.warn(MissingNavigation, "", "publication has no usable table of contents")
	}
}

// findNavDocument returns the manifest item flagged with the "nav" property,
// or the spine's navigation resource when that is an XHTML document.
func findNavDocument(book *model.Book) *model.Resource {
	for _, r := range book.Resources.All() {
		for _, p := range strings.Fields(r.Properties) {
			if p == "nav" {
				return r
			}
		}
	}
	if toc := book.Spine.TOCResource(); toc != nil && toc.MediaType == mediatype.XHTML {
		return toc
	}
	return nil
}

// resolveHref resolves src, relative to the document at base, to a store
// href and anchor.
func resolveHref(base, src string) (href, anchor string) {
	p, anchor := model.SplitHref(strings.TrimSpace(src))
	if p == "" {
		return base, anchor
	}
	p = unescape(p)
	if dir := path.Dir(base); dir != "." && !strings.HasPrefix(p, "/") {
		p = path.Join(dir, p)
	}
	return strings.TrimPrefix(path.Clean(p), "/"), anchor
}

// readNCX parses an NCX document into the table of contents and returns the
// number of top-level entries.
func readNCX(book *model.Book, ncx *model.Resource, diag *diagnostics) (int, error) {
	doc, err := xmlutil.Parse(ncx.Data)
	if err != nil {
		return 0, err
	}
	navMap := xmlutil.FirstElement(doc.Root(), nsNCX, "navMap")
	if navMap == nil {
		return 0, ErrNoNavMap
	}

	refs := readNavPoints(book, ncx.Href, xmlutil.Children(navMap, nsNCX, "navPoint"), diag)
	book.TOC.SetReferences(refs)
	return len(refs), nil
}

func firstChild(parent *etree.Element, ns, local string) *etree.Element {
	if els := xmlutil.Children(parent, ns, local); len(els) > 0 {
		return els[0]
	}
	return nil
}

func readNavPoints(book *model.Book, base string, points []*etree.Element, diag *diagnostics) []*model.TOCReference {
	refs := make([]*model.TOCReference, 0, len(points))
	for _, np := range points {
		var title string
		if label := firstChild(np, nsNCX, "navLabel"); label != nil {
			title = xmlutil.Text(firstChild(label, nsNCX, "text"))
		}

		ref := model.NewTOCReference(title, nil)
		if content := firstChild(np, nsNCX, "content"); content != nil {
			if src := xmlutil.Attr(content, nsNCX, "src"); strings.TrimSpace(src) != "" {
				href, anchor := resolveHref(base, src)
				ref.Resource = book.Resources.ByHref(href)
				ref.Anchor = anchor
				if ref.Resource == nil {
					diag.warn(UnresolvedTOCReference, src, "navPoint %q points at a missing resource", title)
				}
			}
		}
		ref.Children = readNavPoints(book, base, xmlutil.Children(np, nsNCX, "navPoint"), diag)
		refs = append(refs, ref)
	}
	return refs
}

// readNavDocument parses the <nav epub:type="toc"> list of an EPUB 3
// navigation document and returns the number of top-level entries.
func readNavDocument(book *model.Book, nav *model.Resource, diag *diagnostics) (int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(nav.Data))
	if err != nil {
		return 0, err
	}

	toc := doc.Find("nav").FilterFunction(func(_ int, s *goquery.Selection) bool {
		t, _ := s.Attr("epub:type")
		for _, f := range strings.Fields(t) {
			if f == "toc" {
				return true
			}
		}
		return false
	}).First()
	if toc.Length() == 0 {
		return 0, ErrNoTOCNav
	}

	refs := readNavList(book, nav.Href, toc.Find("ol").First(), diag)
	book.TOC.SetReferences(refs)
	return len(refs), nil
}

func readNavList(book *model.Book, base string, ol *goquery.Selection, diag *diagnostics) []*model.TOCReference {
	var refs []*model.TOCReference
	ol.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		ref := model.NewTOCReference("", nil)
		if a := li.ChildrenFiltered("a").First(); a.Length() > 0 {
			ref.Title = strings.Join(strings.Fields(a.Text()), " ")
			if src, ok := a.Attr("href"); ok && strings.TrimSpace(src) != "" {
				href, anchor := resolveHref(base, src)
				ref.Resource = book.Resources.ByHref(href)
				ref.Anchor = anchor
				if ref.Resource == nil {
					diag.warn(UnresolvedTOCReference, src, "nav entry %q points at a missing resource", ref.Title)
				}
			}
		} else {
			ref.Title = strings.Join(strings.Fields(li.ChildrenFiltered("span").First().Text()), " ")
		}
		ref.Children = readNavList(book, base, li.ChildrenFiltered("ol").First(), diag)
		if ref.Title != "" || ref.Resource != nil || len(ref.Children) > 0 {
			refs = append(refs, ref)
		}
	})
	return refs
}

// ncxDocument serializes the table of contents as an NCX document.
func ncxDocument(book *model.Book) ([]byte, error) {
	doc := xmlutil.NewDocument()
	root := doc.CreateElement("ncx")
	root.CreateAttr("xmlns", nsNCX)
	root.CreateAttr("version", "2005-1")

	head := root.CreateElement("head")
	var uid string
	if id := book.Metadata.BookIdentifier(); id != nil {
		uid = id.Value
	}
	addNCXMeta(head, "dtb:uid", uid)
	addNCXMeta(head, "dtb:generator", Generator)
	addNCXMeta(head, "dtb:depth", strconv.Itoa(book.TOC.Depth()))
	addNCXMeta(head, "dtb:totalPageCount", "0")
	addNCXMeta(head, "dtb:maxPageNumber", "0")

	xmlutil.AddTextElement(root.CreateElement("docTitle"), "text", book.Title())
	for _, a := range book.Metadata.Authors {
		xmlutil.AddTextElement(root.CreateElement("docAuthor"), "text", a.DisplayName())
	}

	playOrder := 0
	writeNavPoints(root.CreateElement("navMap"), book.TOC.References(), &playOrder)

	return xmlutil.Bytes(doc)
}

func addNCXMeta(head *etree.Element, name, content string) {
	m := head.CreateElement("meta")
	m.CreateAttr("name", name)
	m.CreateAttr("content", content)
}

func writeNavPoints(parent *etree.Element, refs []*model.TOCReference, playOrder *int) {
	for _, ref := range refs {
		*playOrder++
		np := parent.CreateElement("navPoint")
		np.CreateAttr("id", "navPoint-"+strconv.Itoa(*playOrder))
		np.CreateAttr("playOrder", strconv.Itoa(*playOrder))
		np.CreateAttr("class", "chapter")
		xmlutil.AddTextElement(np.CreateElement("navLabel"), "text", ref.Title)
		if src := firstHref(ref); src != "" {
			np.CreateElement("content").CreateAttr("src", src)
		}
		writeNavPoints(np, ref.Children, playOrder)
	}
}

// firstHref returns the href of ref, or of its first descendant that points
// into a resource. NCX navPoints must carry a content element, so
// structural nodes borrow their first child's target.
func firstHref(ref *model.TOCReference) string {
	if ref.Resource != nil {
		return ref.CompleteHref()
	}
	for _, c := range ref.Children {
		if href := firstHref(c); href != "" {
			return href
		}
	}
	return ""
}

// newNCXResource serializes the table of contents into a new NCX resource.
func newNCXResource(book *model.Book) (*model.Resource, error) {
	data, err := ncxDocument(book)
	if err != nil {
		return nil, err
	}
	return model.NewResourceWithID(NCXID, data, NCXHref, mediatype.NCX), nil
}
