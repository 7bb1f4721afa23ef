package archive

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 0)
	require.NoError(t, w.Put("mimetype", []byte("application/epub+zip"), Stored))
	require.NoError(t, w.Put("META-INF/container.xml", []byte("<container/>"), Deflated))
	require.NoError(t, w.Put("OEBPS/a.xhtml", []byte("<html/>"), Deflated))
	require.NoError(t, w.Close())

	entries, err := Open(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "mimetype", entries[0].Path)
	assert.Equal(t, "application/epub+zip", string(entries[0].Data))
	assert.Equal(t, "META-INF/container.xml", entries[1].Path)
	assert.Equal(t, "OEBPS/a.xhtml", entries[2].Path)
	assert.Equal(t, "<html/>", string(entries[2].Data))
}

func TestWriter_StoredEntryHeader(t *testing.T) {
	data := []byte("application/epub+zip")

	var buf bytes.Buffer
	w := NewWriter(&buf, flate.BestCompression)
	require.NoError(t, w.Put("mimetype", data, Stored))
	require.NoError(t, w.Close())

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)

	f := zr.File[0]
	assert.Equal(t, zip.Store, f.Method)
	assert.Equal(t, uint64(len(data)), f.UncompressedSize64)
	assert.Equal(t, uint64(len(data)), f.CompressedSize64)
	assert.Equal(t, crc32.ChecksumIEEE(data), f.CRC32)

	// The identification entry must start right after the first local header.
	raw := buf.Bytes()
	assert.Equal(t, "mimetype", string(raw[30:38]))
	assert.Equal(t, string(data), string(raw[38:38+len(data)]))
}

func TestOpen_SkipsDirectories(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("OEBPS/")
	require.NoError(t, err)
	f, err := zw.Create("OEBPS/a.css")
	require.NoError(t, err)
	_, err = f.Write([]byte("body{}"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	entries, err := Open(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "OEBPS/a.css", entries[0].Path)
}

func TestOpen_NotAZip(t *testing.T) {
	_, err := Open([]byte("not a zip archive"))
	require.Error(t, err)
	assert.ErrorIs(t, err, zip.ErrFormat)
	assert.Contains(t, err.Error(), "open archive")
}
