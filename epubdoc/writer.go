package epubdoc

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/tsawler/epubkit/internal/archive"
	"github.com/tsawler/epubkit/mediatype"
	"github.com/tsawler/epubkit/model"
)

// Writer-related errors.
var (
	ErrNoNavigationResource = errors.New("epub: spine has no resolvable navigation resource")
)

// Write serializes book as an EPUB archive to w. The table of contents is
// written to a fresh NCX resource that replaces any previous one in the
// store and becomes the spine's navigation resource.
//
// Entries are written in a fixed order: the uncompressed mimetype, the
// container descriptor, every resource, every linked record and finally the
// package document.
func Write(w io.Writer, book *model.Book, opts WriteOptions) ([]Warning, error) {
	diag := newDiagnostics(opts.Logger)

	ensureIdentifier(book, diag)
	if err := initTOCResource(book); err != nil {
		return diag.warnings, err
	}
	pkg, err := packageDocument(book, diag)
	if err != nil {
		return diag.warnings, err
	}
	container, err := containerDocument()
	if err != nil {
		return diag.warnings, ioError("write container descriptor", err)
	}

	aw := archive.NewWriter(w, opts.Compression)
	if err := aw.Put(MimetypePath, []byte(mediatype.EPUB.Name), archive.Stored); err != nil {
		return diag.warnings, ioError("write mimetype", err)
	}
	if err := aw.Put(ContainerPath, container, archive.Deflated); err != nil {
		return diag.warnings, ioError("write container descriptor", err)
	}
	for _, r := range book.Resources.All() {
		if err := aw.Put(ContentDir+"/"+r.Href, r.Data, archive.Deflated); err != nil {
			return diag.warnings, ioError("write resource", err)
		}
	}
	for _, l := range book.Metadata.Links {
		if l.Data == nil || book.Resources.ContainsHref(l.Href) {
			continue
		}
		if err := aw.Put(ContentDir+"/"+l.Href, l.Data, archive.Deflated); err != nil {
			return diag.warnings, ioError("write link", err)
		}
	}
	if err := aw.Put(DefaultPackagePath, pkg, archive.Deflated); err != nil {
		return diag.warnings, ioError("write package document", err)
	}
	if err := aw.Close(); err != nil {
		return diag.warnings, ioError("close archive", err)
	}

	diag.log.Debug("wrote publication")
	return diag.warnings, nil
}

// WriteBytes serializes book and returns the archive bytes.
func WriteBytes(book *model.Book, opts WriteOptions) ([]byte, []Warning, error) {
	var buf bytes.Buffer
	warnings, err := Write(&buf, book, opts)
	if err != nil {
		return nil, warnings, err
	}
	return buf.Bytes(), warnings, nil
}

// WriteFile serializes book to the named file.
func WriteFile(name string, book *model.Book, opts WriteOptions) ([]Warning, error) {
	data, warnings, err := WriteBytes(book, opts)
	if err != nil {
		return warnings, err
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return warnings, ioError("write file", err)
	}
	return warnings, nil
}

// WritePackageDocument writes only the package document of book to w. The
// spine must already designate a navigation resource held in the store;
// ErrNoNavigationResource is returned otherwise.
func WritePackageDocument(w io.Writer, book *model.Book, opts WriteOptions) ([]Warning, error) {
	diag := newDiagnostics(opts.Logger)
	data, err := packageDocument(book, diag)
	if err != nil {
		return diag.warnings, err
	}
	if _, err := w.Write(data); err != nil {
		return diag.warnings, ioError("write package document", err)
	}
	return diag.warnings, nil
}

// initTOCResource replaces the navigation resource with an NCX built from
// the current table of contents. An XHTML navigation document stays in the
// store as ordinary content.
func initTOCResource(book *model.Book) error {
	ncx, err := newNCXResource(book)
	if err != nil {
		return ioError("write navigation document", err)
	}

	if old := book.Spine.TOCResource(); old != nil && old.MediaType == mediatype.NCX {
		book.Resources.Remove(old.Href)
	}
	if old := book.Resources.ByHref(ncx.Href); old != nil {
		book.Resources.Remove(old.Href)
	}
	if book.Resources.ContainsID(ncx.ID) {
		ncx.ID = ""
	}
	if err := book.Resources.Add(ncx); err != nil {
		return ioError("write navigation document", err)
	}
	book.Spine.SetTOCResource(ncx)
	book.SetNCXResource(ncx)
	return nil
}
