package model

import (
	"strconv"
	"strings"

	"github.com/tsawler/epubkit/mediatype"
)

// Resources is the resource store of a publication. Resources are keyed by
// href; ids are expected to be unique as well. Iteration follows insertion
// order.
type Resources struct {
	byHref map[string]*Resource
	order  []*Resource
	lastID int
}

// NewResources creates an empty resource store.
func NewResources() *Resources {
	return &Resources{byHref: make(map[string]*Resource)}
}

// Add stores r. A resource without an id gets a generated one. Add fails
// with ErrDuplicateHref if a resource with the same href is already present
// and with ErrDuplicateID if the id is taken; callers replacing a resource
// must Remove the old one first.
func (rs *Resources) Add(r *Resource) error {
	if r.Href == "" {
		return ErrEmptyHref
	}
	if _, ok := rs.byHref[r.Href]; ok {
		return ErrDuplicateHref
	}
	if strings.TrimSpace(r.ID) == "" {
		r.ID = rs.generateID(r)
	} else if rs.ContainsID(r.ID) {
		return ErrDuplicateID
	}
	rs.byHref[r.Href] = r
	rs.order = append(rs.order, r)
	return nil
}

// generateID creates an id from the resource's media type that is not yet
// used in the store.
func (rs *Resources) generateID(r *Resource) string {
	prefix := "item"
	switch {
	case r.MediaType == mediatype.XHTML:
		prefix = "html"
	case mediatype.IsBitmapImage(r.MediaType):
		prefix = "image"
	}
	for {
		rs.lastID++
		id := prefix + strconv.Itoa(rs.lastID)
		if !rs.ContainsID(id) {
			return id
		}
	}
}

// Remove deletes the resource with the given href and returns it, or nil if
// no such resource exists.
func (rs *Resources) Remove(href string) *Resource {
	r, ok := rs.byHref[href]
	if !ok {
		return nil
	}
	delete(rs.byHref, href)
	for i, o := range rs.order {
		if o == r {
			rs.order = append(rs.order[:i], rs.order[i+1:]...)
			break
		}
	}
	return r
}

// ByHref returns the resource stored under href. Any fragment is ignored.
func (rs *Resources) ByHref(href string) *Resource {
	if href == "" {
		return nil
	}
	path, _ := SplitHref(href)
	return rs.byHref[path]
}

// ByID returns the first resource with the given id.
func (rs *Resources) ByID(id string) *Resource {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	for _, r := range rs.order {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// ByIDOrHref looks key up as an id first and falls back to an href lookup.
func (rs *Resources) ByIDOrHref(key string) *Resource {
	if r := rs.ByID(key); r != nil {
		return r
	}
	return rs.ByHref(key)
}

// ContainsHref reports whether a resource is stored under href.
func (rs *Resources) ContainsHref(href string) bool {
	return rs.ByHref(href) != nil
}

// ContainsID reports whether a resource has the given id.
func (rs *Resources) ContainsID(id string) bool {
	return rs.ByID(id) != nil
}

// FindFirstByMediaType returns the first resource, in insertion order, with
// the given media type.
func (rs *Resources) FindFirstByMediaType(mt *mediatype.MediaType) *Resource {
	for _, r := range rs.order {
		if r.MediaType == mt {
			return r
		}
	}
	return nil
}

// All returns the resources in insertion order.
func (rs *Resources) All() []*Resource {
	out := make([]*Resource, len(rs.order))
	copy(out, rs.order)
	return out
}

// Hrefs returns the hrefs of all resources in insertion order.
func (rs *Resources) Hrefs() []string {
	out := make([]string, 0, len(rs.order))
	for _, r := range rs.order {
		out = append(out, r.Href)
	}
	return out
}

// IDs returns the ids of all resources in insertion order.
func (rs *Resources) IDs() []string {
	out := make([]string, 0, len(rs.order))
	for _, r := range rs.order {
		out = append(out, r.ID)
	}
	return out
}

// Size returns the number of stored resources.
func (rs *Resources) Size() int {
	return len(rs.order)
}

// IsEmpty reports whether the store holds no resources.
func (rs *Resources) IsEmpty() bool {
	return len(rs.order) == 0
}
