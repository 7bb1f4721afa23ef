package model

// Book is the in-memory document graph of a publication. It is not safe for
// concurrent mutation; callers sharing a Book across goroutines must
// serialize access themselves.
type Book struct {
	Resources *Resources
	Metadata  *Metadata
	Spine     *Spine
	TOC       *TableOfContents
	Guide     *Guide

	coverImage  *Resource
	opfResource *Resource
	ncxResource *Resource
}

// NewBook creates an empty publication.
func NewBook() *Book {
	return &Book{
		Resources: NewResources(),
		Metadata:  NewMetadata(),
		Spine:     NewSpine(),
		TOC:       NewTableOfContents(),
		Guide:     NewGuide(),
	}
}

// Title returns the first non-blank title.
func (b *Book) Title() string {
	return b.Metadata.FirstTitle()
}

// AddResource stores r unless a resource with the same href is present, in
// which case the stored resource is returned instead.
func (b *Book) AddResource(r *Resource) (*Resource, error) {
	if existing := b.Resources.ByHref(r.Href); existing != nil {
		return existing, nil
	}
	if err := b.Resources.Add(r); err != nil {
		return nil, err
	}
	return r, nil
}

// AddSection adds r to the resources, appends it to the spine and creates a
// table of contents node titled title under parent. A nil parent adds a
// root node.
func (b *Book) AddSection(parent *TOCReference, title string, r *Resource) (*TOCReference, error) {
	stored, err := b.AddResource(r)
	if err != nil {
		return nil, err
	}
	ref := NewTOCReference(title, stored)
	if parent == nil {
		b.TOC.AddReference(ref)
	} else {
		parent.AddChild(ref)
	}
	if b.Spine.ResourceIndex(stored.Href) < 0 {
		b.Spine.Add(stored)
	}
	return ref, nil
}

// CoverPage returns the cover page resource held by the guide.
func (b *Book) CoverPage() *Resource {
	return b.Guide.CoverPage()
}

// SetCoverPage makes r the cover page, storing it if necessary.
func (b *Book) SetCoverPage(r *Resource) error {
	if r == nil {
		return nil
	}
	stored, err := b.AddResource(r)
	if err != nil {
		return err
	}
	b.Guide.SetCoverPage(stored)
	return nil
}

// CoverImage returns the cover image resource, or nil.
func (b *Book) CoverImage() *Resource {
	return b.coverImage
}

// SetCoverImage makes r the cover image, storing it if necessary.
func (b *Book) SetCoverImage(r *Resource) error {
	if r == nil {
		b.coverImage = nil
		return nil
	}
	stored, err := b.AddResource(r)
	if err != nil {
		return err
	}
	b.coverImage = stored
	return nil
}

// OPFResource returns the package document resource the book was read
// from, or nil.
func (b *Book) OPFResource() *Resource {
	return b.opfResource
}

// SetOPFResource records the package document resource.
func (b *Book) SetOPFResource(r *Resource) {
	b.opfResource = r
}

// NCXResource returns the navigation document the table of contents was
// read from, or nil.
func (b *Book) NCXResource() *Resource {
	return b.ncxResource
}

// SetNCXResource records the navigation document resource.
func (b *Book) SetNCXResource(r *Resource) {
	b.ncxResource = r
}

// Contents returns the cover page, when it is not part of the spine,
// followed by the resources in reading order. Each resource appears once.
func (b *Book) Contents() []*Resource {
	var out []*Resource
	seen := make(map[string]bool)
	if cover := b.CoverPage(); cover != nil && b.Spine.ResourceIndex(cover.Href) < 0 {
		out = append(out, cover)
		seen[cover.Href] = true
	}
	for _, ref := range b.Spine.References() {
		if ref.Resource == nil || seen[ref.Resource.Href] {
			continue
		}
		seen[ref.Resource.Href] = true
		out = append(out, ref.Resource)
	}
	return out
}
