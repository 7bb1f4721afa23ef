package model

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/tsawler/epubkit/mediatype"
)

// DefaultLanguage is the language of a freshly created publication.
const DefaultLanguage = "en"

// Date is a dc:date with its optional opf:event ("creation", "publication",
// "modification").
type Date struct {
	Value string
	Event string
}

// Title is a dc:title with its optional XML id.
type Title struct {
	Text string
	ID   string
}

// Meta is a free-form EPUB 3 meta item.
type Meta struct {
	Property string
	Value    string
	Refines  string
	ID       string
	Scheme   string
}

// Link is a metadata link to a record stored next to the package document.
type Link struct {
	Href      string
	Rel       string
	ID        string
	Refines   string
	MediaType string
	Data      []byte
}

// Metadata holds the Dublin Core and OPF metadata of a publication.
type Metadata struct {
	Titles       []Title
	Authors      []*Author
	Contributors []*Author
	Dates        []Date
	Subjects     []string
	Descriptions []string
	Publishers   []string
	Rights       []string
	Types        []string
	Format       string
	Language     string

	// OtherProperties holds <meta property="...">value</meta> items keyed by property.
	OtherProperties map[string]string
	// MetaAttributes holds <meta name="..." content="..."/> items keyed by name.
	MetaAttributes map[string]string

	Items []Meta
	Links []Link

	identifiers     []*Identifier
	autoGeneratedID bool
}

// NewMetadata creates metadata with a random UUID book identifier.
func NewMetadata() *Metadata {
	id := NewUUIDIdentifier()
	id.BookID = true
	return &Metadata{
		Format:          mediatype.EPUB.Name,
		Language:        DefaultLanguage,
		OtherProperties: make(map[string]string),
		MetaAttributes:  make(map[string]string),
		identifiers:     []*Identifier{id},
		autoGeneratedID: true,
	}
}

// AutoGeneratedID reports whether the only identifier is the random one
// created by NewMetadata.
func (m *Metadata) AutoGeneratedID() bool {
	return m.autoGeneratedID
}

// Identifiers returns the identifiers in document order.
func (m *Metadata) Identifiers() []*Identifier {
	out := make([]*Identifier, len(m.identifiers))
	copy(out, m.identifiers)
	return out
}

// SetIdentifiers replaces all identifiers.
func (m *Metadata) SetIdentifiers(ids []*Identifier) {
	m.identifiers = append([]*Identifier(nil), ids...)
	m.autoGeneratedID = false
}

// AddIdentifier appends id. The first explicit identifier replaces the
// auto-generated one.
func (m *Metadata) AddIdentifier(id *Identifier) {
	if m.autoGeneratedID && len(m.identifiers) > 0 {
		m.identifiers[0] = id
	} else {
		m.identifiers = append(m.identifiers, id)
	}
	m.autoGeneratedID = false
}

// BookIdentifier returns the identifier flagged as book identifier, or the
// first identifier when none is flagged.
func (m *Metadata) BookIdentifier() *Identifier {
	return BookIdentifier(m.identifiers)
}

// AddTitle appends a title.
func (m *Metadata) AddTitle(text string) {
	m.Titles = append(m.Titles, Title{Text: text})
}

// FirstTitle returns the first non-blank title.
func (m *Metadata) FirstTitle() string {
	for _, t := range m.Titles {
		if strings.TrimSpace(t.Text) != "" {
			return t.Text
		}
	}
	return ""
}

// AddAuthor appends an author and returns it.
func (m *Metadata) AddAuthor(a *Author) *Author {
	m.Authors = append(m.Authors, a)
	return a
}

// AddContributor appends a contributor and returns it.
func (m *Metadata) AddContributor(a *Author) *Author {
	m.Contributors = append(m.Contributors, a)
	return a
}

// AddDate appends a date.
func (m *Metadata) AddDate(d Date) {
	m.Dates = append(m.Dates, d)
}

// MetaAttribute returns the content of the <meta name> item called name.
func (m *Metadata) MetaAttribute(name string) string {
	return m.MetaAttributes[name]
}

// LanguageTag parses Language as a BCP 47 tag.
func (m *Metadata) LanguageTag() (language.Tag, error) {
	return language.Parse(strings.TrimSpace(m.Language))
}
