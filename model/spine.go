package model

// SpineReference is one entry of the reading order.
type SpineReference struct {
	Resource *Resource
	Linear   bool
}

// NewSpineReference creates a linear reading-order entry for r.
func NewSpineReference(r *Resource) *SpineReference {
	return &SpineReference{Resource: r, Linear: true}
}

// ResourceID returns the id of the referenced resource.
func (s *SpineReference) ResourceID() string {
	if s.Resource == nil {
		return ""
	}
	return s.Resource.ID
}

// Spine is the linear reading order of a publication. It also designates
// the navigation (table of contents) resource.
type Spine struct {
	references  []*SpineReference
	tocResource *Resource
}

// NewSpine creates an empty spine.
func NewSpine() *Spine {
	return &Spine{}
}

// Add appends a linear reference to r and returns it.
func (s *Spine) Add(r *Resource) *SpineReference {
	ref := NewSpineReference(r)
	s.references = append(s.references, ref)
	return ref
}

// AddReference appends ref to the reading order.
func (s *Spine) AddReference(ref *SpineReference) *SpineReference {
	s.references = append(s.references, ref)
	return ref
}

// References returns the reading order.
func (s *Spine) References() []*SpineReference {
	out := make([]*SpineReference, len(s.references))
	copy(out, s.references)
	return out
}

// SetReferences replaces the reading order.
func (s *Spine) SetReferences(refs []*SpineReference) {
	s.references = append([]*SpineReference(nil), refs...)
}

// Resource returns the resource at position i, or nil when i is out of range.
func (s *Spine) Resource(i int) *Resource {
	if i < 0 || i >= len(s.references) {
		return nil
	}
	return s.references[i].Resource
}

// ResourceIndex returns the position of the first reference to the resource
// with the given href, or -1.
func (s *Spine) ResourceIndex(href string) int {
	if href == "" {
		return -1
	}
	path, _ := SplitHref(href)
	for i, ref := range s.references {
		if ref.Resource != nil && ref.Resource.Href == path {
			return i
		}
	}
	return -1
}

// FindFirstByID returns the position of the first reference to the resource
// with the given id, or -1.
func (s *Spine) FindFirstByID(id string) int {
	if id == "" {
		return -1
	}
	for i, ref := range s.references {
		if ref.ResourceID() == id {
			return i
		}
	}
	return -1
}

// Size returns the number of reading-order entries.
func (s *Spine) Size() int {
	return len(s.references)
}

// IsEmpty reports whether the reading order has no entries.
func (s *Spine) IsEmpty() bool {
	return len(s.references) == 0
}

// TOCResource returns the navigation resource, or nil.
func (s *Spine) TOCResource() *Resource {
	return s.tocResource
}

// SetTOCResource designates r as the navigation resource.
func (s *Spine) SetTOCResource(r *Resource) {
	s.tocResource = r
}
