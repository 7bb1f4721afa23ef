package model

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tsawler/epubkit/mediatype"
)

// Resource store errors.
var (
	ErrDuplicateHref = errors.New("epub: resource href already present")
	ErrDuplicateID   = errors.New("epub: resource id already present")
	ErrEmptyHref     = errors.New("epub: resource href must not be empty")
)

// fragmentSeparator separates a resource href from an in-resource anchor.
const fragmentSeparator = "#"

// Resource is a content-bearing entry of a publication: an XHTML page, an
// image, a stylesheet, the navigation document and so on.
type Resource struct {
	ID         string
	Href       string
	MediaType  *mediatype.MediaType
	Properties string // manifest item properties, e.g. "nav cover-image"
	Data       []byte
}

// NewResource creates a resource whose media type is derived from the href's
// file extension.
func NewResource(data []byte, href string) *Resource {
	return &Resource{
		Href:      href,
		MediaType: mediatype.ByExtension(href),
		Data:      data,
	}
}

// NewResourceWithID creates a resource with an explicit id and media type.
func NewResourceWithID(id string, data []byte, href string, mt *mediatype.MediaType) *Resource {
	return &Resource{
		ID:        id,
		Href:      href,
		MediaType: mt,
		Data:      data,
	}
}

// Reader returns a reader over the resource payload.
func (r *Resource) Reader() io.Reader {
	return bytes.NewReader(r.Data)
}

// Size returns the payload length in bytes.
func (r *Resource) Size() int {
	return len(r.Data)
}

// String implements fmt.Stringer.
func (r *Resource) String() string {
	return fmt.Sprintf("[id: %s, href: %s, type: %s, size: %d]", r.ID, r.Href, r.MediaType, len(r.Data))
}

// SplitHref splits href at the first '#' into the resource path and anchor.
func SplitHref(href string) (path, anchor string) {
	if i := strings.Index(href, fragmentSeparator); i >= 0 {
		return href[:i], href[i+1:]
	}
	return href, ""
}

// completeHref joins a resource href and an optional anchor.
func completeHref(r *Resource, anchor string) string {
	if r == nil {
		return ""
	}
	if strings.TrimSpace(anchor) == "" {
		return r.Href
	}
	return r.Href + fragmentSeparator + anchor
}
