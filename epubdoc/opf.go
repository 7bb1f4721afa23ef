package epubdoc

import (
	"errors"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/cases"

	"github.com/tsawler/epubkit/internal/xmlutil"
	"github.com/tsawler/epubkit/mediatype"
	"github.com/tsawler/epubkit/model"
)

const (
	nsOPF = "http://www.idpf.org/2007/opf"
	nsDC  = "http://purl.org/dc/elements/1.1/"

	// bookIDRef is the XML id the book identifier is written with.
	bookIDRef = "BookId"
)

// tocFallbackIDs are ids commonly given to the NCX when the spine does not
// declare one. Upper-case variants are tried as well.
var tocFallbackIDs = []string{"toc", "ncx"}

// packageReader resolves a package document against the raw resources of
// an archive.
type packageReader struct {
	book *model.Book
	root *etree.Element
	diag *diagnostics
	// dir is the archive directory of the package document, with a
	// trailing slash, or "" at the archive root.
	dir string
}

// readPackage populates book from the package document opf. raw holds every
// other archive entry; resources listed in the manifest are moved from raw
// into the book, everything else stays behind.
func readPackage(book *model.Book, opf *model.Resource, raw *model.Resources, diag *diagnostics) error {
	doc, err := xmlutil.Parse(opf.Data)
	if err != nil {
		return ioError("parse package document "+opf.Href, err)
	}

	pr := &packageReader{book: book, root: doc.Root(), diag: diag}
	raw = pr.fixHrefs(opf.Href, raw)
	pr.readGuide(raw)
	book.Resources = pr.readManifest(raw)
	if err := pr.readCover(); err != nil {
		return err
	}
	book.Metadata = pr.readMetadata(raw)
	book.Spine = pr.readSpine()

	if book.CoverPage() == nil && !book.Spine.IsEmpty() {
		if err := book.SetCoverPage(book.Spine.Resource(0)); err != nil {
			return err
		}
	}
	return nil
}

// fixHrefs makes resource hrefs relative to the package document directory.
// Entries outside that directory keep their archive path.
func (pr *packageReader) fixHrefs(packageHref string, raw *model.Resources) *model.Resources {
	i := strings.LastIndex(packageHref, "/")
	if i < 0 {
		return raw
	}
	prefix := packageHref[:i+1]
	pr.dir = prefix

	result := model.NewResources()
	for _, r := range raw.All() {
		r.Href = strings.TrimPrefix(r.Href, prefix)
		if err := result.Add(r); err != nil {
			pr.diag.warn(DuplicateHref, r.Href, "archive entry collides with another entry after path normalization")
		}
	}
	return result
}

// readGuide reads the guide references. The raw pool is used because guide
// entries reference hrefs rather than manifest ids. Cover references are
// resolved by readCover.
func (pr *packageReader) readGuide(raw *model.Resources) {
	guide := xmlutil.FirstElement(pr.root, nsOPF, "guide")
	if guide == nil {
		return
	}
	for _, el := range xmlutil.Elements(guide, nsOPF, "reference") {
		href := strings.TrimSpace(xmlutil.Attr(el, nsOPF, "href"))
		if href == "" {
			continue
		}
		target, anchor := model.SplitHref(href)
		r := pr.lookup(raw, unescape(target))
		if r == nil {
			pr.diag.warn(UnresolvedGuideReference, href, "guide reference points at a missing resource")
			continue
		}
		refType := strings.TrimSpace(xmlutil.Attr(el, nsOPF, "type"))
		if refType == "" || strings.EqualFold(refType, model.GuideCover) {
			continue
		}
		title := xmlutil.Attr(el, nsOPF, "title")
		pr.book.Guide.AddReference(model.NewGuideReference(r, refType, title, anchor))
	}
}

// readManifest moves every resource listed in the manifest from raw into a
// new store, assigning the declared id and media type.
func (pr *packageReader) readManifest(raw *model.Resources) *model.Resources {
	result := model.NewResources()
	manifest := xmlutil.FirstElement(pr.root, nsOPF, "manifest")
	if manifest == nil {
		return result
	}

	for _, item := range xmlutil.Elements(manifest, nsOPF, "item") {
		id := strings.TrimSpace(xmlutil.Attr(item, nsOPF, "id"))
		href := unescape(strings.TrimSpace(xmlutil.Attr(item, nsOPF, "href")))

		r := pr.lookup(raw, href)
		if r == nil {
			pr.diag.warn(UnresolvedManifestItem, href, "manifest item %q has no matching archive entry", id)
			continue
		}
		raw.Remove(r.Href)
		if id != "" {
			r.ID = id
		}
		if mt := mediatype.ByName(xmlutil.Attr(item, nsOPF, "media-type")); mt != nil {
			r.MediaType = mt
		}
		if r.MediaType == nil {
			r.MediaType = mediatype.Sniff(r.Data)
		}
		r.Properties = strings.TrimSpace(xmlutil.Attr(item, nsOPF, "properties"))

		if err := result.Add(r); err != nil {
			if errors.Is(err, model.ErrDuplicateID) {
				pr.diag.warn(DuplicateID, id, "manifest item %s dropped, id already used", href)
			} else {
				pr.diag.warn(DuplicateHref, href, "manifest item %q dropped: %v", id, err)
			}
		}
	}
	return result
}

// lookup finds the resource an href relative to the package document
// points at. Hrefs leaving the package directory ("../images/a.png") match
// entries that kept their archive path.
func (pr *packageReader) lookup(rs *model.Resources, href string) *model.Resource {
	if r := rs.ByHref(href); r != nil {
		return r
	}
	if pr.dir == "" || !strings.HasPrefix(href, "../") {
		return nil
	}
	return rs.ByHref(path.Clean(pr.dir + href))
}

// readCover resolves the cover page and cover image. Candidates come from
// <meta name="cover"> first and the guide's cover reference second; the
// first candidate of the right type fills each slot.
func (pr *packageReader) readCover() error {
	for _, href := range pr.coverHrefs() {
		r := pr.lookup(pr.book.Resources, unescape(href))
		if r == nil {
			continue
		}
		switch {
		case r.MediaType == mediatype.XHTML && pr.book.CoverPage() == nil:
			if err := pr.book.SetCoverPage(r); err != nil {
				return err
			}
		case mediatype.IsBitmapImage(r.MediaType) && pr.book.CoverImage() == nil:
			if err := pr.book.SetCoverImage(r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (pr *packageReader) coverHrefs() []string {
	var hrefs []string

	if id := pr.metaContent("cover"); id != "" {
		if href := pr.manifestHref(id); href != "" {
			hrefs = append(hrefs, href)
		} else {
			// Some producers put the href itself in the meta.
			hrefs = append(hrefs, id)
		}
	}

	for _, ref := range xmlutil.Elements(pr.root, nsOPF, "reference") {
		if !strings.EqualFold(xmlutil.Attr(ref, nsOPF, "type"), model.GuideCover) {
			continue
		}
		if href := strings.TrimSpace(xmlutil.Attr(ref, nsOPF, "href")); href != "" {
			hrefs = append(hrefs, href)
			break
		}
	}
	return hrefs
}

// metaContent returns the content of the first <meta name="..."> element
// called name.
func (pr *packageReader) metaContent(name string) string {
	for _, m := range xmlutil.Elements(pr.root, nsOPF, "meta") {
		if xmlutil.Attr(m, nsOPF, "name") == name {
			if content := strings.TrimSpace(xmlutil.Attr(m, nsOPF, "content")); content != "" {
				return content
			}
		}
	}
	return ""
}

// manifestHref returns the href of the manifest item with the given id.
func (pr *packageReader) manifestHref(id string) string {
	for _, item := range xmlutil.Elements(pr.root, nsOPF, "item") {
		if xmlutil.Attr(item, nsOPF, "id") == id {
			return strings.TrimSpace(xmlutil.Attr(item, nsOPF, "href"))
		}
	}
	return ""
}

// readSpine reads the reading order. Without a spine element one is
// synthesized from the resources.
func (pr *packageReader) readSpine() *model.Spine {
	resources := pr.book.Resources
	el := xmlutil.FirstElement(pr.root, nsOPF, "spine")
	if el == nil {
		return generateSpine(resources)
	}

	spine := model.NewSpine()
	spine.SetTOCResource(findTOCResource(el, resources))

	for _, itemref := range xmlutil.Elements(el, nsOPF, "itemref") {
		idref := strings.TrimSpace(xmlutil.Attr(itemref, nsOPF, "idref"))
		if idref == "" {
			pr.diag.warn(UnresolvedSpineItem, "", "itemref without idref skipped")
			continue
		}
		r := resources.ByIDOrHref(idref)
		if r == nil {
			pr.diag.warn(UnresolvedSpineItem, idref, "itemref references no manifest item")
			continue
		}
		ref := model.NewSpineReference(r)
		if strings.EqualFold(xmlutil.Attr(itemref, nsOPF, "linear"), "no") {
			ref.Linear = false
		}
		spine.AddReference(ref)
	}
	return spine
}

// findTOCResource tries the spine's toc attribute, then the usual NCX ids,
// then the first resource with the NCX media type.
func findTOCResource(spine *etree.Element, resources *model.Resources) *model.Resource {
	if id := strings.TrimSpace(xmlutil.Attr(spine, nsOPF, "toc")); id != "" {
		if r := resources.ByIDOrHref(id); r != nil {
			return r
		}
	}
	for _, id := range tocFallbackIDs {
		if r := resources.ByIDOrHref(id); r != nil {
			return r
		}
		if r := resources.ByIDOrHref(strings.ToUpper(id)); r != nil {
			return r
		}
	}
	return resources.FindFirstByMediaType(mediatype.NCX)
}

// generateSpine builds a reading order from every XHTML resource, sorted by
// href ignoring case. The first NCX resource becomes the navigation resource.
func generateSpine(resources *model.Resources) *model.Spine {
	hrefs := resources.Hrefs()
	fold := cases.Fold()
	keys := make(map[string]string, len(hrefs))
	for _, h := range hrefs {
		keys[h] = fold.String(h)
	}
	sort.SliceStable(hrefs, func(i, j int) bool {
		return keys[hrefs[i]] < keys[hrefs[j]]
	})

	spine := model.NewSpine()
	for _, href := range hrefs {
		r := resources.ByHref(href)
		switch r.MediaType {
		case mediatype.NCX:
			if spine.TOCResource() == nil {
				spine.SetTOCResource(r)
			}
		case mediatype.XHTML:
			spine.Add(r)
		}
	}
	return spine
}

// unescape percent-decodes an href, returning it unchanged if it is not
// validly encoded.
func unescape(href string) string {
	if decoded, err := url.PathUnescape(href); err == nil {
		return decoded
	}
	return href
}
