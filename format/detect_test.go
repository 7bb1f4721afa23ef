package format

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_String(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{EPUB, "EPUB"},
		{ZIP, "ZIP"},
		{HTML, "HTML"},
		{XML, "XML"},
		{Unknown, "Unknown"},
		{Format(99), "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.format.String(), "Format(%d)", int(tt.format))
	}
}

func TestFormat_Extension(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{EPUB, ".epub"},
		{ZIP, ".zip"},
		{HTML, ".xhtml"},
		{XML, ".xml"},
		{Unknown, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.format.Extension(), "Format(%d)", int(tt.format))
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"book.epub", EPUB},
		{"book.EPUB", EPUB},
		{"/path/to/Book.Epub", EPUB},
		{"bundle.zip", ZIP},
		{"chapter.xhtml", HTML},
		{"index.htm", HTML},
		{"content.opf", XML},
		{"toc.ncx", XML},
		{"notes.txt", Unknown},
		{"noextension", Unknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Detect(tt.filename), tt.filename)
	}
}

// zipBytes builds an archive whose entries are written in the given order.
// The first entry is stored when stored is true.
func zipBytes(t *testing.T, stored bool, entries ...[2]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, e := range entries {
		method := zip.Deflate
		if i == 0 && stored {
			method = zip.Store
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e[0], Method: method})
		require.NoError(t, err)
		_, err = w.Write([]byte(e[1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDetectFromMagic(t *testing.T) {
	epub := zipBytes(t, true, [2]string{"mimetype", "application/epub+zip"}, [2]string{"META-INF/container.xml", "<container/>"})
	other := zipBytes(t, false, [2]string{"readme.txt", "hello"})

	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"stored mimetype first", epub, EPUB},
		{"plain archive", other, ZIP},
		{"xhtml", []byte(`<?xml version="1.0"?><html xmlns="http://www.w3.org/1999/xhtml"/>`), HTML},
		{"doctype", []byte("\n  <!DOCTYPE html><html></html>"), HTML},
		{"package document", []byte(`<?xml version="1.0"?><package/>`), XML},
		{"bom", []byte("\ufeff<html></html>"), HTML},
		{"text", []byte("just words"), Unknown},
		{"empty", nil, Unknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectFromMagic(tt.data), tt.name)
	}
}

func TestDetectFromReader(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{
			name: "mimetype not first",
			data: zipBytes(t, false, [2]string{"OEBPS/content.opf", "<package/>"}, [2]string{"mimetype", "application/epub+zip"}),
			want: EPUB,
		},
		{
			name: "container without mimetype",
			data: zipBytes(t, false, [2]string{"META-INF/container.xml", "<container/>"}),
			want: EPUB,
		},
		{
			name: "other mimetype",
			data: zipBytes(t, true, [2]string{"mimetype", "application/vnd.oasis.opendocument.text"}),
			want: ZIP,
		},
		{
			name: "html",
			data: []byte("<html><body>hi</body></html>"),
			want: HTML,
		},
		{
			name: "unknown",
			data: []byte{0x00, 0x01, 0x02},
			want: Unknown,
		},
	}

	for _, tt := range tests {
		got, err := DetectFromReader(bytes.NewReader(tt.data), int64(len(tt.data)))
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestDetectFromReader_CorruptArchive(t *testing.T) {
	data := append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0}, 20)...)
	_, err := DetectFromReader(bytes.NewReader(data), int64(len(data)))
	assert.Error(t, err)
}
