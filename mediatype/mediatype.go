package mediatype

import (
	"strings"
)

// MediaType describes a registered content type and the file extensions
// that map to it.
type MediaType struct {
	Name             string
	DefaultExtension string
	Extensions       []string
}

func newType(name, defaultExtension string, extensions ...string) *MediaType {
	if len(extensions) == 0 {
		extensions = []string{defaultExtension}
	}
	return &MediaType{
		Name:             name,
		DefaultExtension: defaultExtension,
		Extensions:       extensions,
	}
}

// Registered media types.
var (
	XHTML      = newType("application/xhtml+xml", ".xhtml", ".htm", ".html", ".xhtml")
	EPUB       = newType("application/epub+zip", ".epub")
	NCX        = newType("application/x-dtbncx+xml", ".ncx")
	JavaScript = newType("text/javascript", ".js")
	CSS        = newType("text/css", ".css")

	JPG = newType("image/jpeg", ".jpg", ".jpg", ".jpeg")
	PNG = newType("image/png", ".png")
	GIF = newType("image/gif", ".gif")
	SVG = newType("image/svg+xml", ".svg")

	TTF      = newType("application/x-truetype-font", ".ttf")
	OpenType = newType("application/vnd.ms-opentype", ".otf")
	WOFF     = newType("application/font-woff", ".woff")

	MP3  = newType("audio/mpeg", ".mp3")
	MP4  = newType("audio/mp4", ".mp4")
	OGG  = newType("audio/ogg", ".ogg")
	SMIL = newType("application/smil+xml", ".smil")
	XPGT = newType("application/adobe-page-template+xml", ".xpgt")
	PLS  = newType("application/pls+xml", ".pls")
)

// All lists every registered media type in lookup order.
var All = []*MediaType{
	XHTML, EPUB, JPG, PNG, GIF, CSS, SVG, TTF, NCX, XPGT, OpenType, WOFF, SMIL, PLS, JavaScript, MP3, MP4, OGG,
}

var byName = func() map[string]*MediaType {
	m := make(map[string]*MediaType, len(All))
	for _, mt := range All {
		m[mt.Name] = mt
	}
	return m
}()

// String returns the registered type name.
func (m *MediaType) String() string {
	if m == nil {
		return ""
	}
	return m.Name
}

// ByName returns the media type registered under name, or nil.
func ByName(name string) *MediaType {
	return byName[strings.TrimSpace(name)]
}

// ByExtension returns the media type whose extension list matches the end of
// filename, ignoring case. It returns nil if no registered type matches.
func ByExtension(filename string) *MediaType {
	lower := strings.ToLower(filename)
	for _, mt := range All {
		for _, ext := range mt.Extensions {
			if strings.HasSuffix(lower, ext) {
				return mt
			}
		}
	}
	return nil
}

// IsBitmapImage reports whether mt is a raster image type usable as a cover image.
func IsBitmapImage(mt *MediaType) bool {
	return mt == JPG || mt == PNG || mt == GIF
}
