package mediatype

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// sniffLen bounds how much of a payload is scanned for markup signatures.
const sniffLen = 1024

// Sniff guesses the media type of data from its content. It recognises the
// bitmap image formats and the XML-based document types EPUB packages carry.
// It returns nil when the content is not recognised.
func Sniff(data []byte) *MediaType {
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		switch format {
		case "jpeg":
			return JPG
		case "png":
			return PNG
		case "gif":
			return GIF
		}
		return nil
	}

	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	head = bytes.ToLower(bytes.TrimSpace(head))
	if len(head) == 0 || head[0] != '<' {
		return nil
	}

	switch {
	case bytes.Contains(head, []byte("<ncx")):
		return NCX
	case bytes.Contains(head, []byte("<svg")):
		return SVG
	case bytes.Contains(head, []byte("<smil")):
		return SMIL
	case bytes.Contains(head, []byte("<html")), bytes.Contains(head, []byte("<!doctype html")):
		return XHTML
	}
	return nil
}

// ImageInfo describes the dimensions and encoding of a raster image.
type ImageInfo struct {
	Format string
	Width  int
	Height int
}

// DecodeImageInfo reads the image header from data. Besides the formats
// registered as EPUB media types it understands BMP, TIFF and WebP, which
// turn up in real-world packages under mislabelled types.
func DecodeImageInfo(data []byte) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, err
	}
	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
