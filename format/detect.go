// Package format detects EPUB publications and the documents they carry.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a recognised input format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// EPUB indicates an EPUB publication.
	EPUB
	// ZIP indicates a ZIP archive that is not an EPUB publication.
	ZIP
	// HTML indicates an HTML or XHTML document.
	HTML
	// XML indicates an XML document other than XHTML, such as a package
	// document or NCX.
	XML
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case EPUB:
		return "EPUB"
	case ZIP:
		return "ZIP"
	case HTML:
		return "HTML"
	case XML:
		return "XML"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case EPUB:
		return ".epub"
	case ZIP:
		return ".zip"
	case HTML:
		return ".xhtml"
	case XML:
		return ".xml"
	default:
		return ""
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".epub":
		return EPUB
	case ".zip":
		return ZIP
	case ".html", ".htm", ".xhtml":
		return HTML
	case ".xml", ".opf", ".ncx":
		return XML
	default:
		return Unknown
	}
}

var (
	zipMagic      = []byte("PK\x03\x04")
	epubMimetype  = []byte("mimetype" + "application/epub+zip")
	mimetypeEntry = "mimetype"
)

// localHeaderLen is the fixed size of a ZIP local file header.
const localHeaderLen = 30

// DetectFromMagic checks the leading bytes of data. An EPUB is recognised
// when its first entry is the uncompressed mimetype entry; other archives
// report ZIP, and DetectFromReader can look inside them.
func DetectFromMagic(data []byte) Format {
	if bytes.HasPrefix(data, zipMagic) {
		if len(data) >= localHeaderLen+len(epubMimetype) &&
			bytes.Equal(data[localHeaderLen:localHeaderLen+len(epubMimetype)], epubMimetype) {
			return EPUB
		}
		return ZIP
	}
	return detectMarkup(data)
}

// detectMarkup classifies text content as HTML, XML or Unknown.
func detectMarkup(data []byte) Format {
	data = bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(data) == 0 || data[0] != '<' {
		return Unknown
	}
	head := strings.ToUpper(string(data[:min(512, len(data))]))
	switch {
	case strings.HasPrefix(head, "<!DOCTYPE HTML"), strings.HasPrefix(head, "<HTML"):
		return HTML
	case strings.HasPrefix(head, "<?XML"):
		if strings.Contains(head, "<HTML") {
			return HTML
		}
		return XML
	}
	return Unknown
}

// DetectFromReader inspects the content to determine format. ZIP archives
// are EPUB publications when they hold an EPUB mimetype entry or a
// container descriptor, even if the mimetype entry is not stored first.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 512)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	switch f := DetectFromMagic(magic); f {
	case ZIP:
		return detectZIPFormat(r, size)
	default:
		return f, nil
	}
}

func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	for _, f := range zr.File {
		switch f.Name {
		case mimetypeEntry:
			rc, err := f.Open()
			if err != nil {
				continue
			}
			data := make([]byte, 64)
			n, _ := io.ReadFull(rc, data)
			rc.Close()
			if strings.TrimSpace(string(data[:n])) == "application/epub+zip" {
				return EPUB, nil
			}
		case "META-INF/container.xml":
			return EPUB, nil
		}
	}
	return ZIP, nil
}
