package model

import "strings"

// Guide reference types defined by OPF 2.0. Other values are allowed.
const (
	GuideCover           = "cover"
	GuideTitlePage       = "title-page"
	GuideTOC             = "toc"
	GuideIndex           = "index"
	GuideGlossary        = "glossary"
	GuideAcknowledgments = "acknowledgements"
	GuideBibliography    = "bibliography"
	GuideColophon        = "colophon"
	GuideCopyrightPage   = "copyright-page"
	GuideDedication      = "dedication"
	GuideEpigraph        = "epigraph"
	GuideForeword        = "foreword"
	GuideLOI             = "loi"
	GuideLOT             = "lot"
	GuideNotes           = "notes"
	GuidePreface         = "preface"
	GuideText            = "text"
)

// DefaultCoverTitle is the title given to synthesized cover references.
const DefaultCoverTitle = GuideCover

// GuideReference is a named landmark pointing into a resource.
type GuideReference struct {
	Resource *Resource
	Type     string
	Title    string
	Anchor   string
}

// NewGuideReference creates a guide reference.
func NewGuideReference(r *Resource, refType, title, anchor string) *GuideReference {
	return &GuideReference{Resource: r, Type: refType, Title: title, Anchor: anchor}
}

// CompleteHref returns the resource href with the anchor appended.
func (g *GuideReference) CompleteHref() string {
	return completeHref(g.Resource, g.Anchor)
}

type coverState int

const (
	coverUnknown coverState = iota
	coverFound
	coverAbsent
)

// coverIndex caches the position of the cover reference.
type coverIndex struct {
	state coverState
	index int
}

// Guide holds the auxiliary landmarks of a publication. The position of the
// cover reference is cached and recomputed after every mutation.
type Guide struct {
	references []*GuideReference
	cover      coverIndex
}

// NewGuide creates an empty guide.
func NewGuide() *Guide {
	return &Guide{}
}

// References returns the guide references in order.
func (g *Guide) References() []*GuideReference {
	out := make([]*GuideReference, len(g.references))
	copy(out, g.references)
	return out
}

// SetReferences replaces all references.
func (g *Guide) SetReferences(refs []*GuideReference) {
	g.references = append([]*GuideReference(nil), refs...)
	g.invalidateCover()
}

// AddReference appends ref and returns it.
func (g *Guide) AddReference(ref *GuideReference) *GuideReference {
	g.references = append(g.references, ref)
	g.invalidateCover()
	return ref
}

// RemoveReference deletes the reference at position i.
func (g *Guide) RemoveReference(i int) {
	if i < 0 || i >= len(g.references) {
		return
	}
	g.references = append(g.references[:i], g.references[i+1:]...)
	g.invalidateCover()
}

// Clear removes all references.
func (g *Guide) Clear() {
	g.references = nil
	g.invalidateCover()
}

// IsEmpty reports whether the guide has no references.
func (g *Guide) IsEmpty() bool {
	return len(g.references) == 0
}

// ReferencesByType returns the references whose type matches refType,
// ignoring case.
func (g *Guide) ReferencesByType(refType string) []*GuideReference {
	var out []*GuideReference
	for _, ref := range g.references {
		if strings.EqualFold(ref.Type, refType) {
			out = append(out, ref)
		}
	}
	return out
}

// CoverReference returns the reference of type "cover", or nil.
func (g *Guide) CoverReference() *GuideReference {
	g.checkCover()
	if g.cover.state == coverFound {
		return g.references[g.cover.index]
	}
	return nil
}

// SetCoverReference replaces the existing cover reference with ref, or
// inserts ref in front of all other references. It returns ref's position.
func (g *Guide) SetCoverReference(ref *GuideReference) int {
	g.checkCover()
	if g.cover.state == coverFound {
		g.references[g.cover.index] = ref
		return g.cover.index
	}
	g.references = append([]*GuideReference{ref}, g.references...)
	g.cover = coverIndex{state: coverFound, index: 0}
	return 0
}

// CoverPage returns the resource of the cover reference, or nil.
func (g *Guide) CoverPage() *Resource {
	ref := g.CoverReference()
	if ref == nil {
		return nil
	}
	return ref.Resource
}

// SetCoverPage makes r the target of the cover reference.
func (g *Guide) SetCoverPage(r *Resource) {
	g.SetCoverReference(NewGuideReference(r, GuideCover, DefaultCoverTitle, ""))
}

func (g *Guide) invalidateCover() {
	g.cover = coverIndex{state: coverUnknown}
}

func (g *Guide) checkCover() {
	if g.cover.state != coverUnknown {
		return
	}
	g.cover = coverIndex{state: coverAbsent}
	for i, ref := range g.references {
		if strings.EqualFold(ref.Type, GuideCover) {
			g.cover = coverIndex{state: coverFound, index: i}
			return
		}
	}
}
