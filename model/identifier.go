package model

import (
	"strings"

	"github.com/google/uuid"
)

// Identifier schemes in common use.
const (
	SchemeUUID = "UUID"
	SchemeISBN = "ISBN"
	SchemeURL  = "URL"
	SchemeURI  = "URI"
)

// Identifier is a dc:identifier of a publication. ID is the XML id the
// identifier carried in the package document, if any.
type Identifier struct {
	Scheme string
	Value  string
	ID     string
	BookID bool
}

// NewIdentifier creates an identifier with the given scheme and value.
func NewIdentifier(scheme, value string) *Identifier {
	return &Identifier{Scheme: scheme, Value: value}
}

// NewUUIDIdentifier creates an identifier holding a random UUID.
func NewUUIDIdentifier() *Identifier {
	return NewIdentifier(SchemeUUID, uuid.NewString())
}

// Equal reports whether both identifiers have the same scheme and value.
// The XML id and the book id flag are not compared.
func (i *Identifier) Equal(other *Identifier) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.Scheme == other.Scheme && i.Value == other.Value
}

// String returns "scheme:value", or just the value if there is no scheme.
func (i *Identifier) String() string {
	if strings.TrimSpace(i.Scheme) == "" {
		return i.Value
	}
	return i.Scheme + ":" + i.Value
}

// BookIdentifier returns the first identifier flagged as book identifier,
// falling back to the first identifier. It returns nil for an empty list.
func BookIdentifier(identifiers []*Identifier) *Identifier {
	if len(identifiers) == 0 {
		return nil
	}
	for _, id := range identifiers {
		if id.BookID {
			return id
		}
	}
	return identifiers[0]
}
