package epubdoc

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/epubkit/internal/archive"
	"github.com/tsawler/epubkit/internal/xmlutil"
	"github.com/tsawler/epubkit/mediatype"
	"github.com/tsawler/epubkit/model"
)

func entryData(t *testing.T, data []byte, path string) []byte {
	t.Helper()
	entries, err := archive.Open(data)
	require.NoError(t, err)
	for _, e := range entries {
		if e.Path == path {
			return e.Data
		}
	}
	t.Fatalf("entry %s not found", path)
	return nil
}

func roundTrip(t *testing.T, book *model.Book) (*model.Book, []Warning) {
	t.Helper()
	data, _, err := WriteBytes(book, WriteOptions{})
	require.NoError(t, err)
	out, warnings, err := Read(data, ReadOptions{})
	require.NoError(t, err)
	return out, warnings
}

type tocShape struct {
	Title    string
	Href     string
	Children []tocShape
}

func shapeOf(refs []*model.TOCReference) []tocShape {
	var out []tocShape
	for _, r := range refs {
		out = append(out, tocShape{Title: r.Title, Href: r.CompleteHref(), Children: shapeOf(r.Children)})
	}
	return out
}

func TestWrite_RoundTrip(t *testing.T) {
	original, _, err := Read(sampleEPUB(t), ReadOptions{})
	require.NoError(t, err)
	wantHrefs := original.Resources.Hrefs()
	wantSpine := spineHrefs(original.Spine)
	wantTOC := shapeOf(original.TOC.References())
	wantIDs := original.Metadata.Identifiers()

	book, warnings := roundTrip(t, original)
	assert.Empty(t, warnings)

	assert.ElementsMatch(t, wantHrefs, book.Resources.Hrefs())
	assert.Equal(t, wantSpine, spineHrefs(book.Spine))
	assert.Equal(t, wantTOC, shapeOf(book.TOC.References()))
	assert.Equal(t, "Test Book", book.Title())
	assert.Equal(t, "text/chapter1.xhtml", book.CoverPage().Href)

	ids := book.Metadata.Identifiers()
	require.Len(t, ids, len(wantIDs))
	for _, want := range wantIDs {
		found := false
		for _, got := range ids {
			found = found || got.Equal(want)
		}
		assert.True(t, found, "identifier %s lost", want)
	}
	assert.Equal(t, "urn:uuid:1234", book.Metadata.BookIdentifier().Value)
}

func TestWrite_EntryOrder(t *testing.T) {
	book, _, err := Read(sampleEPUB(t), ReadOptions{})
	require.NoError(t, err)
	data, _, err := WriteBytes(book, WriteOptions{})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.NotEmpty(t, zr.File)

	assert.Equal(t, MimetypePath, zr.File[0].Name)
	assert.Equal(t, zip.Store, zr.File[0].Method)
	assert.Equal(t, ContainerPath, zr.File[1].Name)
	assert.Equal(t, DefaultPackagePath, zr.File[len(zr.File)-1].Name)
	for _, f := range zr.File[1:] {
		assert.Equal(t, zip.Deflate, f.Method, f.Name)
	}

	assert.Equal(t, "application/epub+zip", string(entryData(t, data, MimetypePath)))
	assert.Equal(t, DefaultPackagePath, must(parseContainer(entryData(t, data, ContainerPath))))
}

func must(s string, err error) string {
	if err != nil {
		panic(err)
	}
	return s
}

func TestWrite_PackageDocument(t *testing.T) {
	book, _, err := Read(sampleEPUB(t), ReadOptions{})
	require.NoError(t, err)
	data, _, err := WriteBytes(book, WriteOptions{})
	require.NoError(t, err)

	doc, err := xmlutil.Parse(entryData(t, data, DefaultPackagePath))
	require.NoError(t, err)
	root := doc.Root()
	assert.Equal(t, "2.0", root.SelectAttrValue("version", ""))
	assert.Equal(t, bookIDRef, root.SelectAttrValue("unique-identifier", ""))

	// The book identifier is written first under the reserved id.
	ids := xmlutil.Elements(root, nsDC, "identifier")
	require.Len(t, ids, 2)
	assert.Equal(t, bookIDRef, ids[0].SelectAttrValue("id", ""))
	assert.Equal(t, "urn:uuid:1234", xmlutil.Text(ids[0]))
	assert.Equal(t, "978-0-00-000000-0", xmlutil.Text(ids[1]))

	// The navigation resource leads the manifest, the rest follow by id.
	var itemIDs []string
	for _, item := range xmlutil.Elements(root, nsOPF, "item") {
		itemIDs = append(itemIDs, item.SelectAttrValue("id", ""))
	}
	assert.Equal(t, []string{NCXID, "chapter1", "chapter2", "css"}, itemIDs)

	spine := xmlutil.FirstElement(root, nsOPF, "spine")
	require.NotNil(t, spine)
	assert.Equal(t, NCXID, spine.SelectAttrValue("toc", ""))

	var generator string
	for _, m := range xmlutil.Elements(root, nsOPF, "meta") {
		if m.SelectAttrValue("name", "") == "generator" {
			generator = m.SelectAttrValue("content", "")
		}
	}
	assert.Equal(t, Generator, generator)
	assert.Empty(t, xmlutil.Elements(root, nsDC, "format"))
}

func TestWrite_ReplacesNavigationResource(t *testing.T) {
	book, _, err := Read(sampleEPUB(t), ReadOptions{})
	require.NoError(t, err)
	old := book.Spine.TOCResource()

	_, err = Write(&bytes.Buffer{}, book, WriteOptions{})
	require.NoError(t, err)

	toc := book.Spine.TOCResource()
	require.NotNil(t, toc)
	assert.NotSame(t, old, toc)
	assert.Equal(t, NCXID, toc.ID)
	assert.Equal(t, NCXHref, toc.Href)
	assert.Same(t, toc, book.Resources.ByHref(NCXHref))
	assert.Same(t, toc, book.NCXResource())

	var ncxCount int
	for _, r := range book.Resources.All() {
		if r.MediaType == mediatype.NCX {
			ncxCount++
		}
	}
	assert.Equal(t, 1, ncxCount)
}

func TestWrite_KeepsXHTMLNavigationDocument(t *testing.T) {
	data := buildEPUB(t,
		containerFor("OEBPS/content.opf"),
		file{"OEBPS/content.opf", packageDoc(sampleMetadata, `
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="c1" href="c1.xhtml" media-type="application/xhtml+xml"/>`, `
  <spine toc="nav"><itemref idref="c1"/></spine>`, "")},
		file{"OEBPS/nav.xhtml", xhtml("Nav", `<nav epub:type="toc"><ol><li><a href="c1.xhtml">One</a></li></ol></nav>`)},
		file{"OEBPS/c1.xhtml", xhtml("One", "<p>one</p>")},
	)
	original, _, err := Read(data, ReadOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, original.TOC.Size())

	book, _ := roundTrip(t, original)

	nav := book.Resources.ByHref("nav.xhtml")
	require.NotNil(t, nav)
	assert.Equal(t, "nav", nav.Properties)
	assert.Equal(t, NCXHref, book.Spine.TOCResource().Href)
	require.Equal(t, 1, book.TOC.Size())
	assert.Equal(t, "One", book.TOC.References()[0].Title)
}

func TestWrite_NewBook(t *testing.T) {
	book := model.NewBook()
	book.Metadata.AddTitle("Fresh")
	book.Metadata.AddAuthor(model.NewAuthor("Ada", "Lovelace"))

	cover := model.NewResource([]byte(xhtml("Cover", `<img src="cover.png"/>`)), "cover.xhtml")
	require.NoError(t, book.SetCoverPage(cover))
	image := model.NewResource([]byte("png"), "cover.png")
	require.NoError(t, book.SetCoverImage(image))

	part, err := book.AddSection(nil, "Part One", model.NewResource([]byte(xhtml("Part", "<h1>Part One</h1>")), "part1.xhtml"))
	require.NoError(t, err)
	_, err = book.AddSection(part, "Chapter 1", model.NewResource([]byte(xhtml("Ch", "<p>text</p>")), "ch1.xhtml"))
	require.NoError(t, err)

	data, warnings, err := WriteBytes(book, WriteOptions{})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// The cover page is not in the reading order, so it is written as a
	// leading non-linear itemref.
	doc, err := xmlutil.Parse(entryData(t, data, DefaultPackagePath))
	require.NoError(t, err)
	itemrefs := xmlutil.Elements(doc.Root(), nsOPF, "itemref")
	require.Len(t, itemrefs, 3)
	assert.Equal(t, cover.ID, itemrefs[0].SelectAttrValue("idref", ""))
	assert.Equal(t, "no", itemrefs[0].SelectAttrValue("linear", ""))

	out, _, err := Read(data, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Fresh", out.Title())
	assert.Equal(t, "cover.xhtml", out.CoverPage().Href)
	require.NotNil(t, out.CoverImage())
	assert.Equal(t, "cover.png", out.CoverImage().Href)
	assert.Equal(t, []string{"cover.xhtml", "part1.xhtml", "ch1.xhtml"}, spineHrefs(out.Spine))
	assert.False(t, out.Spine.References()[0].Linear)
	assert.Equal(t, []tocShape{{
		Title: "Part One", Href: "part1.xhtml",
		Children: []tocShape{{Title: "Chapter 1", Href: "ch1.xhtml"}},
	}}, shapeOf(out.TOC.References()))
	assert.Equal(t, book.Metadata.BookIdentifier().Value, out.Metadata.BookIdentifier().Value)
}

func TestWrite_InvalidManifestEntry(t *testing.T) {
	book := model.NewBook()
	book.Metadata.AddTitle("Blobs")
	_, err := book.AddSection(nil, "One", model.NewResource([]byte(xhtml("One", "<p>one</p>")), "c1.xhtml"))
	require.NoError(t, err)
	require.NoError(t, book.Resources.Add(model.NewResourceWithID("blob", []byte{0, 1, 2}, "data.bin", nil)))

	data, warnings, err := WriteBytes(book, WriteOptions{})
	require.NoError(t, err)
	assert.Equal(t, []WarningKind{InvalidManifestEntry}, warningKinds(warnings))

	out, _, err := Read(data, ReadOptions{})
	require.NoError(t, err)
	assert.False(t, out.Resources.ContainsHref("data.bin"))
}

func TestWritePackageDocument_NoNavigationResource(t *testing.T) {
	newBook := func() *model.Book {
		book := model.NewBook()
		_, err := book.AddSection(nil, "One", model.NewResource([]byte(xhtml("One", "<p>one</p>")), "c1.xhtml"))
		require.NoError(t, err)
		return book
	}

	t.Run("no navigation resource", func(t *testing.T) {
		_, err := WritePackageDocument(&bytes.Buffer{}, newBook(), WriteOptions{})
		assert.ErrorIs(t, err, ErrNoNavigationResource)
	})

	t.Run("navigation resource outside the store", func(t *testing.T) {
		book := newBook()
		book.Spine.SetTOCResource(model.NewResourceWithID("ncx", nil, "toc.ncx", mediatype.NCX))
		_, err := WritePackageDocument(&bytes.Buffer{}, book, WriteOptions{})
		assert.ErrorIs(t, err, ErrNoNavigationResource)
	})

	t.Run("navigation resource without media type", func(t *testing.T) {
		book := newBook()
		nav := model.NewResourceWithID("nav", []byte("nav"), "nav.bin", nil)
		require.NoError(t, book.Resources.Add(nav))
		book.Spine.SetTOCResource(nav)

		var buf bytes.Buffer
		_, err := WritePackageDocument(&buf, book, WriteOptions{})
		assert.ErrorIs(t, err, ErrNoNavigationResource)
		assert.Zero(t, buf.Len())
	})

	t.Run("navigation resource in the store", func(t *testing.T) {
		book := newBook()
		ncx := model.NewResourceWithID("ncx", []byte("<ncx/>"), "toc.ncx", mediatype.NCX)
		require.NoError(t, book.Resources.Add(ncx))
		book.Spine.SetTOCResource(ncx)

		var buf bytes.Buffer
		_, err := WritePackageDocument(&buf, book, WriteOptions{})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), `<spine toc="ncx">`)
	})
}

func TestWrite_GeneratesMissingIdentifier(t *testing.T) {
	book := model.NewBook()
	book.Metadata.SetIdentifiers(nil)
	book.Metadata.AddTitle("Anonymous")
	_, err := book.AddSection(nil, "One", model.NewResource([]byte(xhtml("One", "<p>one</p>")), "c1.xhtml"))
	require.NoError(t, err)

	data, warnings, err := WriteBytes(book, WriteOptions{})
	require.NoError(t, err)
	assert.Equal(t, []WarningKind{MissingIdentifier}, warningKinds(warnings))

	id := book.Metadata.BookIdentifier()
	require.NotNil(t, id)
	assert.Equal(t, model.SchemeUUID, id.Scheme)

	doc, err := xmlutil.Parse(entryData(t, data, DefaultPackagePath))
	require.NoError(t, err)
	ids := xmlutil.Elements(doc.Root(), nsDC, "identifier")
	require.Len(t, ids, 1)
	assert.Equal(t, bookIDRef, ids[0].SelectAttrValue("id", ""))
	assert.Equal(t, id.Value, xmlutil.Text(ids[0]))

	ncx, err := xmlutil.Parse(entryData(t, data, ContentDir+"/"+NCXHref))
	require.NoError(t, err)
	var uid string
	for _, m := range xmlutil.Elements(ncx.Root(), nsNCX, "meta") {
		if m.SelectAttrValue("name", "") == "dtb:uid" {
			uid = m.SelectAttrValue("content", "")
		}
	}
	assert.Equal(t, id.Value, uid)

	out, _, err := Read(data, ReadOptions{})
	require.NoError(t, err)
	assert.True(t, id.Equal(out.Metadata.BookIdentifier()))
}

func TestWrite_Metadata(t *testing.T) {
	data := buildEPUB(t,
		containerFor("OEBPS/content.opf"),
		file{"OEBPS/content.opf", packageDoc(`
    <dc:title id="main">Rich Book</dc:title>
    <dc:title>A Subtitle</dc:title>
    <dc:creator opf:role="aut">Mary Shelley</dc:creator>
    <dc:contributor opf:role="edt">Percy Shelley</dc:contributor>
    <dc:identifier id="bookid">rich-1</dc:identifier>
    <dc:language>EN-gb</dc:language>
    <dc:subject>Fiction</dc:subject>
    <dc:subject>Horror</dc:subject>
    <dc:description>A monster story.</dc:description>
    <dc:publisher>Lackington</dc:publisher>
    <dc:rights>Public domain</dc:rights>
    <dc:type>Novel</dc:type>
    <dc:format>application/x-custom</dc:format>
    <dc:date opf:event="publication">1818-01-01</dc:date>
    <meta property="dcterms:modified">2020-01-01T00:00:00Z</meta>
    <meta refines="#main" property="title-type">main</meta>
    <meta name="calibre:series" content="Classics"/>
    <link rel="record" href="meta/record.xml" media-type="application/marc"/>`, `
    <item id="c1" href="c1.xhtml" media-type="application/xhtml+xml"/>`, `
  <spine><itemref idref="c1"/></spine>`, "")},
		file{"OEBPS/c1.xhtml", xhtml("One", "<p>one</p>")},
		file{"OEBPS/meta/record.xml", "<record/>"},
	)

	original, _, err := Read(data, ReadOptions{})
	require.NoError(t, err)
	md := original.Metadata
	assert.Equal(t, []model.Title{{Text: "Rich Book", ID: "main"}, {Text: "A Subtitle"}}, md.Titles)
	assert.Equal(t, "2020-01-01T00:00:00Z", md.OtherProperties["dcterms:modified"])
	assert.Equal(t, []model.Meta{{Property: "title-type", Value: "main", Refines: "#main"}}, md.Items)
	assert.Equal(t, "Classics", md.MetaAttributes["calibre:series"])
	require.Len(t, md.Links, 1)
	assert.Equal(t, []byte("<record/>"), md.Links[0].Data)
	assert.False(t, original.Resources.ContainsHref("meta/record.xml"))

	book, _ := roundTrip(t, original)
	got := book.Metadata
	assert.Equal(t, md.Titles, got.Titles)
	assert.Equal(t, "Mary", got.Authors[0].FirstName)
	assert.Equal(t, "Shelley", got.Authors[0].LastName)
	require.Len(t, got.Contributors, 1)
	assert.Equal(t, model.RoleEditor, got.Contributors[0].Role)
	assert.Equal(t, "en-GB", got.Language)
	assert.Equal(t, []string{"Fiction", "Horror"}, got.Subjects)
	assert.Equal(t, md.Descriptions, got.Descriptions)
	assert.Equal(t, md.Publishers, got.Publishers)
	assert.Equal(t, md.Rights, got.Rights)
	assert.Equal(t, md.Types, got.Types)
	assert.Equal(t, "application/x-custom", got.Format)
	assert.Equal(t, []model.Date{{Value: "1818-01-01", Event: "publication"}}, got.Dates)
	assert.Equal(t, md.OtherProperties, got.OtherProperties)
	assert.Equal(t, md.Items, got.Items)
	assert.Equal(t, "Classics", got.MetaAttributes["calibre:series"])
	assert.Equal(t, Generator, got.MetaAttributes["generator"])
	require.Len(t, got.Links, 1)
	assert.Equal(t, "record", got.Links[0].Rel)
	assert.Equal(t, []byte("<record/>"), got.Links[0].Data)
	assert.Equal(t, "rich-1", got.BookIdentifier().Value)
}

func TestWrite_Compression(t *testing.T) {
	book, _, err := Read(sampleEPUB(t), ReadOptions{})
	require.NoError(t, err)
	var fast, best bytes.Buffer
	_, err = Write(&fast, book, WriteOptions{Compression: 1})
	require.NoError(t, err)
	_, err = Write(&best, book, WriteOptions{Compression: 9})
	require.NoError(t, err)

	a, _, err := Read(fast.Bytes(), ReadOptions{})
	require.NoError(t, err)
	b, _, err := Read(best.Bytes(), ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, spineHrefs(a.Spine), spineHrefs(b.Spine))
	assert.True(t, strings.HasPrefix(string(entryData(t, best.Bytes(), DefaultPackagePath)), "<?xml"))
}
