package epubdoc

import (
	"sort"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tsawler/epubkit/internal/xmlutil"
	"github.com/tsawler/epubkit/mediatype"
	"github.com/tsawler/epubkit/model"
)

// Generator is written to the generator meta of every package document.
const Generator = "epubkit"

// packageDocument serializes the package document of book. The spine must
// designate a navigation resource held in the store.
func packageDocument(book *model.Book, diag *diagnostics) ([]byte, error) {
	toc := book.Spine.TOCResource()
	if toc == nil || strings.TrimSpace(toc.ID) == "" || toc.MediaType == nil ||
		book.Resources.ByHref(toc.Href) != toc {
		return nil, ErrNoNavigationResource
	}
	ensureIdentifier(book, diag)

	doc := xmlutil.NewDocument()
	root := doc.CreateElement("package")
	root.CreateAttr("xmlns", nsOPF)
	root.CreateAttr("version", "2.0")
	root.CreateAttr("unique-identifier", bookIDRef)

	writeMetadata(root, book)
	writeManifest(root, book, diag)
	writeSpine(root, book)
	writeGuide(root, book, diag)

	data, err := xmlutil.Bytes(doc)
	if err != nil {
		return nil, ioError("write package document", err)
	}
	return data, nil
}

// writeManifest emits the navigation resource first, followed by every other
// resource sorted by id ignoring case. Resources without id, href or media
// type are skipped.
func writeManifest(root *etree.Element, book *model.Book, diag *diagnostics) {
	manifest := root.CreateElement("manifest")
	toc := book.Spine.TOCResource()
	addItem(manifest, toc)

	for _, r := range sortedByID(book.Resources.All()) {
		if r == toc || r.MediaType == mediatype.NCX {
			continue
		}
		switch {
		case strings.TrimSpace(r.ID) == "":
			diag.warn(InvalidManifestEntry, r.Href, "resource without id left out of the manifest")
		case strings.TrimSpace(r.Href) == "":
			diag.warn(InvalidManifestEntry, r.ID, "resource without href left out of the manifest")
		case r.MediaType == nil:
			diag.warn(InvalidManifestEntry, r.Href, "resource without media type left out of the manifest")
		default:
			addItem(manifest, r)
		}
	}
}

func addItem(manifest *etree.Element, r *model.Resource) {
	item := manifest.CreateElement("item")
	item.CreateAttr("id", r.ID)
	item.CreateAttr("href", r.Href)
	item.CreateAttr("media-type", r.MediaType.Name)
	xmlutil.SetAttr(item, "properties", r.Properties)
}

func sortedByID(resources []*model.Resource) []*model.Resource {
	fold := cases.Fold()
	keys := make(map[*model.Resource]string, len(resources))
	for _, r := range resources {
		keys[r] = fold.String(r.ID)
	}
	sort.SliceStable(resources, func(i, j int) bool {
		return keys[resources[i]] < keys[resources[j]]
	})
	return resources
}

// writeSpine emits the reading order. A cover page missing from the spine
// is written as a leading non-linear item.
func writeSpine(root *etree.Element, book *model.Book) {
	spine := root.CreateElement("spine")
	spine.CreateAttr("toc", book.Spine.TOCResource().ID)

	if cover := book.CoverPage(); cover != nil && book.Spine.FindFirstByID(cover.ID) < 0 {
		itemref := spine.CreateElement("itemref")
		itemref.CreateAttr("idref", cover.ID)
		itemref.CreateAttr("linear", "no")
	}
	for _, ref := range book.Spine.References() {
		itemref := spine.CreateElement("itemref")
		itemref.CreateAttr("idref", ref.ResourceID())
		if !ref.Linear {
			itemref.CreateAttr("linear", "no")
		}
	}
}

// writeGuide emits the guide references. An empty guide is omitted.
func writeGuide(root *etree.Element, book *model.Book, diag *diagnostics) {
	refs := book.Guide.References()
	if len(refs) == 0 {
		return
	}

	guide := root.CreateElement("guide")
	for _, ref := range refs {
		if ref.Resource == nil {
			diag.warn(UnresolvedGuideReference, ref.Type, "guide reference without resource not written")
			continue
		}
		el := guide.CreateElement("reference")
		el.CreateAttr("type", ref.Type)
		el.CreateAttr("href", ref.CompleteHref())
		xmlutil.SetAttr(el, "title", ref.Title)
	}
}

// writeMetadata emits the Dublin Core and OPF metadata.
func writeMetadata(root *etree.Element, book *model.Book) {
	md := book.Metadata
	el := root.CreateElement("metadata")
	el.CreateAttr("xmlns:dc", nsDC)
	el.CreateAttr("xmlns:opf", nsOPF)

	writeIdentifiers(el, md.Identifiers())
	for _, t := range md.Titles {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		xmlutil.SetAttr(xmlutil.AddTextElement(el, "dc:title", t.Text), "id", t.ID)
	}
	writeSimple(el, "dc:subject", md.Subjects)
	writeSimple(el, "dc:description", md.Descriptions)
	writeSimple(el, "dc:publisher", md.Publishers)
	writeSimple(el, "dc:type", md.Types)
	writeSimple(el, "dc:rights", md.Rights)
	writeAuthors(el, "dc:creator", md.Authors)
	writeAuthors(el, "dc:contributor", md.Contributors)

	for _, d := range md.Dates {
		if strings.TrimSpace(d.Value) == "" {
			continue
		}
		xmlutil.SetAttr(xmlutil.AddTextElement(el, "dc:date", d.Value), "opf:event", d.Event)
	}
	if lang := strings.TrimSpace(md.Language); lang != "" {
		if tag, err := language.Parse(lang); err == nil {
			lang = tag.String()
		}
		xmlutil.AddTextElement(el, "dc:language", lang)
	}
	if f := strings.TrimSpace(md.Format); f != "" && f != mediatype.EPUB.Name {
		xmlutil.AddTextElement(el, "dc:format", f)
	}

	for _, property := range sortedKeys(md.OtherProperties) {
		xmlutil.AddTextElement(el, "meta", md.OtherProperties[property]).CreateAttr("property", property)
	}
	for _, m := range md.Items {
		meta := el.CreateElement("meta")
		meta.CreateAttr("property", m.Property)
		xmlutil.SetAttr(meta, "refines", m.Refines)
		xmlutil.SetAttr(meta, "id", m.ID)
		xmlutil.SetAttr(meta, "scheme", m.Scheme)
		meta.SetText(m.Value)
	}
	for _, name := range sortedKeys(md.MetaAttributes) {
		if name == "cover" || name == "generator" {
			continue
		}
		addNamedMeta(el, name, md.MetaAttributes[name])
	}
	for _, l := range md.Links {
		link := el.CreateElement("link")
		link.CreateAttr("href", l.Href)
		xmlutil.SetAttr(link, "rel", l.Rel)
		xmlutil.SetAttr(link, "id", l.ID)
		xmlutil.SetAttr(link, "refines", l.Refines)
		xmlutil.SetAttr(link, "media-type", l.MediaType)
	}

	if cover := book.CoverImage(); cover != nil {
		addNamedMeta(el, "cover", cover.ID)
	}
	addNamedMeta(el, "generator", Generator)
}

// ensureIdentifier gives a book without identifiers a random UUID book
// identifier, so the package unique-identifier attribute has a target.
func ensureIdentifier(book *model.Book, diag *diagnostics) {
	if book.Metadata.BookIdentifier() != nil {
		return
	}
	id := model.NewUUIDIdentifier()
	id.BookID = true
	book.Metadata.AddIdentifier(id)
	diag.warn(MissingIdentifier, id.String(), "book has no identifier, generated one")
}

// writeIdentifiers writes the book identifier first under the reserved id,
// then the remaining identifiers.
func writeIdentifiers(el *etree.Element, ids []*model.Identifier) {
	bookID := model.BookIdentifier(ids)
	if bookID == nil {
		return
	}
	e := xmlutil.AddTextElement(el, "dc:identifier", bookID.Value)
	e.CreateAttr("id", bookIDRef)
	xmlutil.SetAttr(e, "opf:scheme", bookID.Scheme)

	for _, id := range ids {
		if id == bookID {
			continue
		}
		e := xmlutil.AddTextElement(el, "dc:identifier", id.Value)
		xmlutil.SetAttr(e, "opf:scheme", id.Scheme)
	}
}

func writeSimple(el *etree.Element, tag string, values []string) {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		xmlutil.AddTextElement(el, tag, v)
	}
}

func writeAuthors(el *etree.Element, tag string, authors []*model.Author) {
	for _, a := range authors {
		e := xmlutil.AddTextElement(el, tag, a.DisplayName())
		xmlutil.SetAttr(e, "opf:role", a.Role)
		xmlutil.SetAttr(e, "opf:file-as", a.FileAs())
	}
}

func addNamedMeta(el *etree.Element, name, content string) {
	meta := el.CreateElement("meta")
	meta.CreateAttr("name", name)
	meta.CreateAttr("content", content)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
