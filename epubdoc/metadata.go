package epubdoc

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/tsawler/epubkit/internal/xmlutil"
	"github.com/tsawler/epubkit/model"
)

// readMetadata reads the <metadata> element. Link records are looked up in
// raw, the archive entries that are not part of the manifest.
func (pr *packageReader) readMetadata(raw *model.Resources) *model.Metadata {
	md := model.NewMetadata()
	md.SetIdentifiers(nil)
	el := xmlutil.FirstElement(pr.root, nsOPF, "metadata")
	if el == nil {
		return md
	}

	md.Titles = readTitles(el)
	md.Publishers = textContents(el, "publisher")
	md.Descriptions = textContents(el, "description")
	md.Rights = textContents(el, "rights")
	md.Types = textContents(el, "type")
	md.Subjects = textContents(el, "subject")
	md.SetIdentifiers(pr.readIdentifiers(el))
	md.Authors = readAuthors(el, "creator")
	md.Contributors = readAuthors(el, "contributor")
	md.Dates = readDates(el)
	readMetaElements(el, md)
	md.Links = readLinks(el, raw)

	if lang := xmlutil.FirstElement(el, nsDC, "language"); lang != nil {
		if text := xmlutil.Text(lang); text != "" {
			md.Language = text
		}
	}
	if format := xmlutil.FirstElement(el, nsDC, "format"); format != nil {
		if text := xmlutil.Text(format); text != "" {
			md.Format = text
		}
	}
	return md
}

func readTitles(el *etree.Element) []model.Title {
	var titles []model.Title
	for _, t := range xmlutil.Elements(el, nsDC, "title") {
		text := xmlutil.Text(t)
		if text == "" {
			continue
		}
		titles = append(titles, model.Title{Text: text, ID: t.SelectAttrValue("id", "")})
	}
	return titles
}

// textContents returns the non-blank text of every dc:<local> element.
func textContents(el *etree.Element, local string) []string {
	var out []string
	for _, e := range xmlutil.Elements(el, nsDC, local) {
		if text := xmlutil.Text(e); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// readIdentifiers reads dc:identifier elements. The identifier whose id
// matches the package's unique-identifier attribute is the book identifier.
func (pr *packageReader) readIdentifiers(el *etree.Element) []*model.Identifier {
	bookID := strings.TrimSpace(xmlutil.Attr(pr.root, nsOPF, "unique-identifier"))

	var ids []*model.Identifier
	for _, e := range xmlutil.Elements(el, nsDC, "identifier") {
		value := xmlutil.Text(e)
		if value == "" {
			continue
		}
		id := model.NewIdentifier(xmlutil.Attr(e, nsOPF, "scheme"), value)
		id.ID = e.SelectAttrValue("id", "")
		id.BookID = id.ID != "" && id.ID == bookID
		ids = append(ids, id)
	}
	return ids
}

func readAuthors(el *etree.Element, local string) []*model.Author {
	var authors []*model.Author
	for _, e := range xmlutil.Elements(el, nsDC, local) {
		a := model.ParseAuthor(xmlutil.Text(e))
		if a == nil {
			continue
		}
		a.SetRole(xmlutil.Attr(e, nsOPF, "role"))
		authors = append(authors, a)
	}
	return authors
}

func readDates(el *etree.Element) []model.Date {
	var dates []model.Date
	for _, e := range xmlutil.Elements(el, nsDC, "date") {
		value := xmlutil.Text(e)
		if value == "" {
			continue
		}
		dates = append(dates, model.Date{Value: value, Event: xmlutil.Attr(e, nsOPF, "event")})
	}
	return dates
}

// readMetaElements sorts <meta> elements into property items and name/content
// attributes. Property metas that refine another element or carry an id are
// kept as Items so they can be written back unchanged.
func readMetaElements(el *etree.Element, md *model.Metadata) {
	for _, e := range xmlutil.Elements(el, nsOPF, "meta") {
		if property := strings.TrimSpace(e.SelectAttrValue("property", "")); property != "" {
			m := model.Meta{
				Property: property,
				Value:    xmlutil.Text(e),
				Refines:  e.SelectAttrValue("refines", ""),
				ID:       e.SelectAttrValue("id", ""),
				Scheme:   e.SelectAttrValue("scheme", ""),
			}
			if m.Refines == "" && m.ID == "" && m.Scheme == "" {
				md.OtherProperties[property] = m.Value
			} else {
				md.Items = append(md.Items, m)
			}
			continue
		}
		if name := strings.TrimSpace(xmlutil.Attr(e, nsOPF, "name")); name != "" {
			md.MetaAttributes[name] = xmlutil.Attr(e, nsOPF, "content")
		}
	}
}

func readLinks(el *etree.Element, raw *model.Resources) []model.Link {
	var links []model.Link
	for _, e := range xmlutil.Elements(el, nsOPF, "link") {
		href := strings.TrimSpace(e.SelectAttrValue("href", ""))
		if href == "" {
			continue
		}
		link := model.Link{
			Href:      href,
			Rel:       e.SelectAttrValue("rel", ""),
			ID:        e.SelectAttrValue("id", ""),
			Refines:   e.SelectAttrValue("refines", ""),
			MediaType: e.SelectAttrValue("media-type", ""),
		}
		if r := raw.ByHref(unescape(href)); r != nil {
			link.Data = r.Data
		}
		links = append(links, link)
	}
	return links
}
