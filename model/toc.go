package model

import (
	"strconv"
	"strings"
)

// DefaultPathSeparator separates titles in AddSection paths.
const DefaultPathSeparator = "/"

// TOCReference is a node of the table of contents. A node without a
// resource is a structural container for its children.
type TOCReference struct {
	Title    string
	Resource *Resource
	Anchor   string
	Children []*TOCReference
}

// NewTOCReference creates a node pointing at r.
func NewTOCReference(title string, r *Resource) *TOCReference {
	return &TOCReference{Title: title, Resource: r}
}

// AddChild appends child and returns it.
func (t *TOCReference) AddChild(child *TOCReference) *TOCReference {
	t.Children = append(t.Children, child)
	return child
}

// CompleteHref returns the resource href with the anchor appended.
func (t *TOCReference) CompleteHref() string {
	return completeHref(t.Resource, t.Anchor)
}

// TableOfContents is the hierarchical navigation tree of a publication.
type TableOfContents struct {
	references []*TOCReference
}

// NewTableOfContents creates an empty table of contents.
func NewTableOfContents() *TableOfContents {
	return &TableOfContents{}
}

// References returns the root nodes.
func (t *TableOfContents) References() []*TOCReference {
	return t.references
}

// SetReferences replaces the root nodes.
func (t *TableOfContents) SetReferences(refs []*TOCReference) {
	t.references = refs
}

// AddReference appends a root node and returns it.
func (t *TableOfContents) AddReference(ref *TOCReference) *TOCReference {
	t.references = append(t.references, ref)
	return ref
}

// AddSection adds r at the path of titles given by splitting path on sep.
// Missing ancestors are created as structural nodes.
func (t *TableOfContents) AddSection(r *Resource, path, sep string) *TOCReference {
	if sep == "" {
		sep = DefaultPathSeparator
	}
	return t.AddSectionPath(r, strings.Split(path, sep))
}

// AddSectionPath adds r at the given path of titles. An existing node with a
// matching title is reused at every level; the final node's resource is set
// to r. It returns nil for an empty path.
func (t *TableOfContents) AddSectionPath(r *Resource, titles []string) *TOCReference {
	if len(titles) == 0 {
		return nil
	}
	var node *TOCReference
	level := &t.references
	for _, title := range titles {
		node = findByTitle(*level, title)
		if node == nil {
			node = NewTOCReference(title, nil)
			*level = append(*level, node)
		}
		level = &node.Children
	}
	node.Resource = r
	return node
}

// AddSectionIndexed adds r at the given path of zero-based sibling indexes.
// Siblings missing up to a requested index are created with generated titles
// such as "Section 1.2" (prefix "Section ", separator ".").
func (t *TableOfContents) AddSectionIndexed(r *Resource, indexes []int, titlePrefix, numberSeparator string) *TOCReference {
	if len(indexes) == 0 {
		return nil
	}
	var node *TOCReference
	level := &t.references
	for pos, idx := range indexes {
		if idx < 0 {
			return nil
		}
		for i := len(*level); i <= idx; i++ {
			*level = append(*level, NewTOCReference(sectionTitle(indexes, pos, i, titlePrefix, numberSeparator), nil))
		}
		node = (*level)[idx]
		level = &node.Children
	}
	node.Resource = r
	return node
}

func sectionTitle(indexes []int, pos, last int, prefix, sep string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for i := 0; i < pos; i++ {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(strconv.Itoa(indexes[i] + 1))
	}
	if pos > 0 {
		b.WriteString(sep)
	}
	b.WriteString(strconv.Itoa(last + 1))
	return b.String()
}

func findByTitle(refs []*TOCReference, title string) *TOCReference {
	for _, ref := range refs {
		if ref.Title == title {
			return ref
		}
	}
	return nil
}

// Size returns the total number of nodes.
func (t *TableOfContents) Size() int {
	return countNodes(t.references)
}

func countNodes(refs []*TOCReference) int {
	n := len(refs)
	for _, ref := range refs {
		n += countNodes(ref.Children)
	}
	return n
}

// Depth returns the number of levels in the tree.
func (t *TableOfContents) Depth() int {
	return depth(t.references)
}

func depth(refs []*TOCReference) int {
	if len(refs) == 0 {
		return 0
	}
	deepest := 0
	for _, ref := range refs {
		if d := depth(ref.Children); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// UniqueResources returns every referenced resource once, in tree order.
func (t *TableOfContents) UniqueResources() []*Resource {
	seen := make(map[string]bool)
	var out []*Resource
	var walk func([]*TOCReference)
	walk = func(refs []*TOCReference) {
		for _, ref := range refs {
			if ref.Resource != nil && !seen[ref.Resource.Href] {
				seen[ref.Resource.Href] = true
				out = append(out, ref.Resource)
			}
			walk(ref.Children)
		}
	}
	walk(t.references)
	return out
}

// Walk calls fn for every node in depth-first order with its nesting level,
// starting at 0 for root nodes.
func (t *TableOfContents) Walk(fn func(ref *TOCReference, level int)) {
	var walk func([]*TOCReference, int)
	walk = func(refs []*TOCReference, level int) {
		for _, ref := range refs {
			fn(ref, level)
			walk(ref.Children, level+1)
		}
	}
	walk(t.references, 0)
}
