package mediatype

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByExtension(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     *MediaType
	}{
		{"xhtml", "chapter1.xhtml", XHTML},
		{"html upper case", "INDEX.HTML", XHTML},
		{"htm", "old/page.htm", XHTML},
		{"jpeg long form", "images/cover.jpeg", JPG},
		{"jpg", "cover.jpg", JPG},
		{"ncx", "toc.ncx", NCX},
		{"css", "styles/main.css", CSS},
		{"font", "fonts/serif.otf", OpenType},
		{"unknown", "notes.txt", nil},
		{"no extension", "mimetype", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, ByExtension(tt.filename))
		})
	}
}

func TestByName(t *testing.T) {
	assert.Same(t, XHTML, ByName("application/xhtml+xml"))
	assert.Same(t, NCX, ByName(" application/x-dtbncx+xml "))
	assert.Nil(t, ByName("application/x-unknown"))
	assert.Nil(t, ByName(""))
}

func TestIsBitmapImage(t *testing.T) {
	assert.True(t, IsBitmapImage(JPG))
	assert.True(t, IsBitmapImage(PNG))
	assert.True(t, IsBitmapImage(GIF))
	assert.False(t, IsBitmapImage(SVG))
	assert.False(t, IsBitmapImage(XHTML))
	assert.False(t, IsBitmapImage(nil))
}

func TestMediaType_String(t *testing.T) {
	assert.Equal(t, "text/css", CSS.String())

	var unknown *MediaType
	assert.Equal(t, "", unknown.String())
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSniff(t *testing.T) {
	assert.Same(t, PNG, Sniff(encodePNG(t, 4, 3)))
	assert.Same(t, XHTML, Sniff([]byte(`<?xml version="1.0"?><html xmlns="http://www.w3.org/1999/xhtml"></html>`)))
	assert.Same(t, NCX, Sniff([]byte(`<?xml version="1.0"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1"></ncx>`)))
	assert.Same(t, SVG, Sniff([]byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)))
	assert.Nil(t, Sniff([]byte("body { margin: 0 }")))
	assert.Nil(t, Sniff(nil))
}

func TestDecodeImageInfo(t *testing.T) {
	info, err := DecodeImageInfo(encodePNG(t, 12, 7))
	require.NoError(t, err)
	assert.Equal(t, ImageInfo{Format: "png", Width: 12, Height: 7}, info)

	_, err = DecodeImageInfo([]byte("not an image"))
	assert.Error(t, err)
}
