// Package epubdoc reads and writes EPUB publications. It resolves the
// package document, navigation document and container descriptor of an
// archive into a model.Book and serializes a model.Book back into an
// archive.
package epubdoc

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrIO matches every fatal read or write failure via errors.Is.
var ErrIO = errors.New("epub: i/o failure")

// IOError is a fatal failure while reading or writing a publication. It
// matches ErrIO and unwraps to the original cause.
type IOError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *IOError) Error() string {
	return "epub: " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns ErrIO and the original cause.
func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}

func ioError(op string, err error) error {
	return &IOError{Op: op, Err: err}
}

// WarningKind classifies a recoverable defect.
type WarningKind int

const (
	// UnresolvedManifestItem is a manifest item whose href has no entry in the archive.
	UnresolvedManifestItem WarningKind = iota + 1
	// UnresolvedSpineItem is an itemref that references no manifest item.
	UnresolvedSpineItem
	// UnresolvedGuideReference is a guide reference to a missing resource.
	UnresolvedGuideReference
	// InvalidManifestEntry is a resource without id, href or media type at write time.
	InvalidManifestEntry
	// DuplicateID is a manifest id that is already taken.
	DuplicateID
	// DuplicateHref is an archive entry or resource whose href is already taken.
	DuplicateHref
	// UnresolvedTOCReference is a navigation entry pointing at a missing resource.
	UnresolvedTOCReference
	// MissingNavigation means no navigation document could be found or parsed.
	MissingNavigation
	// NavigationParse is a navigation document that failed to parse.
	NavigationParse
	// ContainerFallback means the default package document path was used.
	ContainerFallback
	// MissingIdentifier means a book identifier was generated at write time.
	MissingIdentifier
)

var warningKindNames = map[WarningKind]string{
	UnresolvedManifestItem:   "unresolved manifest item",
	UnresolvedSpineItem:      "unresolved spine item",
	UnresolvedGuideReference: "unresolved guide reference",
	InvalidManifestEntry:     "invalid manifest entry",
	DuplicateID:              "duplicate id",
	DuplicateHref:            "duplicate href",
	UnresolvedTOCReference:   "unresolved toc reference",
	MissingNavigation:        "missing navigation",
	NavigationParse:          "navigation parse",
	ContainerFallback:        "container fallback",
	MissingIdentifier:        "missing identifier",
}

// String returns a human readable name.
func (k WarningKind) String() string {
	if name, ok := warningKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("warning(%d)", int(k))
}

// Warning is a recoverable defect. Warnings never abort a read or write.
type Warning struct {
	Kind    WarningKind
	Ref     string // id or href the warning is about
	Message string
}

// String implements fmt.Stringer.
func (w Warning) String() string {
	if w.Ref == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", w.Kind, w.Message, w.Ref)
}

// FormatWarnings renders warnings one per line.
func FormatWarnings(warnings []Warning) string {
	var b strings.Builder
	for _, w := range warnings {
		b.WriteString(w.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// diagnostics collects warnings and mirrors them to a logger.
type diagnostics struct {
	log      *zap.Logger
	warnings []Warning
}

func newDiagnostics(log *zap.Logger) *diagnostics {
	if log == nil {
		log = zap.NewNop()
	}
	return &diagnostics{log: log}
}

func (d *diagnostics) warn(kind WarningKind, ref, format string, args ...any) {
	w := Warning{Kind: kind, Ref: ref, Message: fmt.Sprintf(format, args...)}
	d.warnings = append(d.warnings, w)
	d.log.Warn(w.Message, zap.Stringer("kind", kind), zap.String("ref", ref))
}

// ReadOptions configures Read. The zero value is ready to use.
type ReadOptions struct {
	// Logger receives warnings and debug output. Nil disables logging.
	Logger *zap.Logger

	// SkipDRMCheck reads publications that carry rights or content
	// encryption markers. Encrypted resources stay encrypted.
	SkipDRMCheck bool

	// SynthesizeTOC fills an empty table of contents with one entry per
	// reading-order item, titled from the content document.
	SynthesizeTOC bool
}

// WriteOptions configures Write. The zero value is ready to use.
type WriteOptions struct {
	// Logger receives warnings and debug output. Nil disables logging.
	Logger *zap.Logger

	// Compression is the compress/flate level for deflated entries. Zero
	// selects the default level.
	Compression int
}
