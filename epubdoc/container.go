package epubdoc

import (
	"errors"
	"strings"

	"github.com/tsawler/epubkit/internal/xmlutil"
)

// Container-related errors.
var (
	ErrInvalidContainer = errors.New("epub: invalid container.xml")
	ErrNoRootfile       = errors.New("epub: no rootfile found in container.xml")
)

// Conventional entry paths.
const (
	MimetypePath       = "mimetype"
	ContainerPath      = "META-INF/container.xml"
	ContentDir         = "OEBPS"
	DefaultPackagePath = ContentDir + "/content.opf"
)

const (
	nsContainer      = "urn:oasis:names:tc:opendocument:xmlns:container"
	packageMediaType = "application/oebps-package+xml"
)

// parseContainer returns the package document path declared in
// META-INF/container.xml. Rootfiles with the OPF media type win over others.
func parseContainer(data []byte) (string, error) {
	doc, err := xmlutil.Parse(data)
	if err != nil {
		return "", ErrInvalidContainer
	}

	var first string
	for _, rf := range xmlutil.Elements(doc.Root(), nsContainer, "rootfile") {
		fullPath := strings.TrimSpace(xmlutil.Attr(rf, nsContainer, "full-path"))
		if fullPath == "" {
			continue
		}
		mt := xmlutil.Attr(rf, nsContainer, "media-type")
		if mt == packageMediaType || mt == "" {
			return fullPath, nil
		}
		if first == "" {
			first = fullPath
		}
	}
	if first != "" {
		return first, nil
	}
	return "", ErrNoRootfile
}

// containerDocument builds META-INF/container.xml pointing at the
// conventional package document path.
func containerDocument() ([]byte, error) {
	doc := xmlutil.NewDocument()
	root := doc.CreateElement("container")
	root.CreateAttr("version", "1.0")
	root.CreateAttr("xmlns", nsContainer)
	rf := root.CreateElement("rootfiles").CreateElement("rootfile")
	rf.CreateAttr("full-path", DefaultPackagePath)
	rf.CreateAttr("media-type", packageMediaType)
	return xmlutil.Bytes(doc)
}
