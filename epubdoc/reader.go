package epubdoc

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tsawler/epubkit/internal/archive"
	"github.com/tsawler/epubkit/model"
)

// Reader-related errors.
var (
	ErrInvalidArchive    = errors.New("epub: invalid or corrupted archive")
	ErrNoPackageDocument = errors.New("epub: package document not found")
)

// Read parses the EPUB archive held in data. Recoverable defects are
// returned as warnings; the error is non-nil only for fatal failures, which
// match ErrIO, or for DRM-protected publications.
func Read(data []byte, opts ReadOptions) (*model.Book, []Warning, error) {
	entries, err := archive.Open(data)
	if err != nil {
		return nil, nil, ioError("open archive", fmt.Errorf("%w: %w", ErrInvalidArchive, err))
	}
	return ReadEntries(entries, opts)
}

// ReadFrom parses the EPUB archive of the given size held by r.
func ReadFrom(r io.ReaderAt, size int64, opts ReadOptions) (*model.Book, []Warning, error) {
	entries, err := archive.OpenReader(r, size)
	if err != nil {
		return nil, nil, ioError("open archive", fmt.Errorf("%w: %w", ErrInvalidArchive, err))
	}
	return ReadEntries(entries, opts)
}

// ReadFile parses the named EPUB file.
func ReadFile(name string, opts ReadOptions) (*model.Book, []Warning, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, nil, ioError("read file", err)
	}
	return Read(data, opts)
}

// ReadEntries builds a book from already extracted archive entries.
func ReadEntries(entries []archive.Entry, opts ReadOptions) (*model.Book, []Warning, error) {
	diag := newDiagnostics(opts.Logger)

	raw := model.NewResources()
	for _, e := range entries {
		if e.Path == MimetypePath {
			continue
		}
		if err := raw.Add(model.NewResource(e.Data, e.Path)); err != nil {
			diag.warn(DuplicateHref, e.Path, "duplicate archive entry ignored")
		}
	}

	if !opts.SkipDRMCheck {
		if err := checkForDRM(raw); err != nil {
			return nil, diag.warnings, err
		}
	}

	opfPath := packagePath(raw, diag)
	opf := raw.Remove(opfPath)
	if opf == nil {
		return nil, diag.warnings, ioError("locate package document", fmt.Errorf("%w: %s", ErrNoPackageDocument, opfPath))
	}

	book := model.NewBook()
	if err := readPackage(book, opf, raw, diag); err != nil {
		return nil, diag.warnings, err
	}
	book.SetOPFResource(opf)
	readNavigation(book, diag)

	if opts.SynthesizeTOC && book.TOC.Size() == 0 {
		synthesizeTOC(book)
	}

	diag.log.Debug("read publication")
	return book, diag.warnings, nil
}

// packagePath returns the package document path from the container
// descriptor, or the conventional default when the descriptor is missing
// or unusable.
func packagePath(raw *model.Resources, diag *diagnostics) string {
	container := raw.Remove(ContainerPath)
	if container == nil {
		diag.warn(ContainerFallback, ContainerPath, "container descriptor missing, using %s", DefaultPackagePath)
		return DefaultPackagePath
	}
	p, err := parseContainer(container.Data)
	if err != nil {
		diag.warn(ContainerFallback, ContainerPath, "%v, using %s", err, DefaultPackagePath)
		return DefaultPackagePath
	}
	return p
}
