// Package archive reads and writes the zip container of a publication.
package archive

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"hash/crc32"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Method selects how an entry is stored.
type Method int

const (
	// Deflated compresses the entry.
	Deflated Method = iota
	// Stored writes the entry uncompressed with an explicit size and checksum.
	Stored
)

// Entry is a file inside the container.
type Entry struct {
	Path string
	Data []byte
}

// Open reads every file entry of the zip archive in data, in archive order.
// Directory entries are skipped.
func Open(data []byte) ([]Entry, error) {
	return OpenReader(bytes.NewReader(data), int64(len(data)))
}

// OpenReader reads every file entry of the zip archive held by r.
func OpenReader(r io.ReaderAt, size int64) ([]Entry, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrap(err, "open archive")
	}

	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		data, err := readFile(f)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Path: f.Name, Data: data})
	}
	return entries, nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "open entry %s", f.Name)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "read entry %s", f.Name)
	}
	return data, nil
}

// Writer writes entries to a zip archive.
type Writer struct {
	zw *zip.Writer
}

// NewWriter creates a writer on w. level is a compress/flate level used for
// deflated entries; zero selects flate.DefaultCompression.
func NewWriter(w io.Writer, level int) *Writer {
	zw := zip.NewWriter(w)
	if level != 0 {
		zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, level)
		})
	}
	return &Writer{zw: zw}
}

// Put writes one entry. Stored entries carry their size and CRC-32 in the
// local header so readers can locate the data without a data descriptor.
func (w *Writer) Put(path string, data []byte, method Method) error {
	var (
		dst io.Writer
		err error
	)
	switch method {
	case Stored:
		hdr := &zip.FileHeader{
			Name:               path,
			Method:             zip.Store,
			CRC32:              crc32.ChecksumIEEE(data),
			CompressedSize64:   uint64(len(data)),
			UncompressedSize64: uint64(len(data)),
		}
		hdr.SetMode(0o644)
		dst, err = w.zw.CreateRaw(hdr)
	default:
		hdr := &zip.FileHeader{Name: path, Method: zip.Deflate}
		hdr.SetMode(0o644)
		dst, err = w.zw.CreateHeader(hdr)
	}
	if err != nil {
		return errors.Wrapf(err, "create entry %s", path)
	}
	if _, err := dst.Write(data); err != nil {
		return errors.Wrapf(err, "write entry %s", path)
	}
	return nil
}

// Close finishes the archive. It does not close the underlying writer.
func (w *Writer) Close() error {
	return errors.Wrap(w.zw.Close(), "close archive")
}
