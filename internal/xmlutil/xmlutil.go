// Package xmlutil wraps github.com/beevik/etree with the namespace-aware
// lookups the package and navigation documents need.
package xmlutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// ErrNoRoot is returned when a document has no root element.
var ErrNoRoot = errors.New("xml: document has no root element")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads data into an element tree. Documents declaring a non-UTF-8
// encoding are transcoded; unknown entities and unclosed tags are tolerated.
func Parse(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel

	if err := doc.ReadFromBytes(bytes.TrimPrefix(data, utf8BOM)); err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	if doc.Root() == nil {
		return nil, ErrNoRoot
	}
	return doc, nil
}

// NamespaceURI resolves the namespace of el, following xmlns declarations up
// the tree. Elements without a namespace resolve to "".
func NamespaceURI(el *etree.Element) string {
	return lookupPrefix(el, el.Space)
}

func lookupPrefix(el *etree.Element, prefix string) string {
	for e := el; e != nil; e = e.Parent() {
		for _, a := range e.Attr {
			if prefix == "" && a.Space == "" && a.Key == "xmlns" {
				return a.Value
			}
			if prefix != "" && a.Space == "xmlns" && a.Key == prefix {
				return a.Value
			}
		}
	}
	return ""
}

// matches reports whether el is named local in namespace ns. Elements that
// carry no namespace at all match any ns, which lets unqualified documents
// written by careless producers through.
func matches(el *etree.Element, ns, local string) bool {
	if el.Tag != local {
		return false
	}
	uri := NamespaceURI(el)
	return uri == ns || uri == ""
}

// Children returns the direct child elements of parent named local in
// namespace ns.
func Children(parent *etree.Element, ns, local string) []*etree.Element {
	if parent == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range parent.ChildElements() {
		if matches(c, ns, local) {
			out = append(out, c)
		}
	}
	return out
}

// Elements returns every descendant of parent named local in namespace ns,
// in document order.
func Elements(parent *etree.Element, ns, local string) []*etree.Element {
	if parent == nil {
		return nil
	}
	var out []*etree.Element
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, c := range e.ChildElements() {
			if matches(c, ns, local) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(parent)
	return out
}

// FirstElement returns the first descendant of parent named local in
// namespace ns, or nil.
func FirstElement(parent *etree.Element, ns, local string) *etree.Element {
	if parent == nil {
		return nil
	}
	if els := Elements(parent, ns, local); len(els) > 0 {
		return els[0]
	}
	return nil
}

// Attr returns the value of the attribute name in namespace ns. If the
// element has no such namespaced attribute, the unprefixed attribute is
// returned instead.
func Attr(el *etree.Element, ns, name string) string {
	if el == nil {
		return ""
	}
	if ns != "" {
		for _, a := range el.Attr {
			if a.Space != "" && a.Space != "xmlns" && a.Key == name && lookupPrefix(el, a.Space) == ns {
				if a.Value != "" {
					return a.Value
				}
			}
		}
	}
	for _, a := range el.Attr {
		if a.Space == "" && a.Key == name {
			return a.Value
		}
	}
	return ""
}

// Text concatenates all direct text children of el and trims the result.
// Parsers may split a single run of text into several nodes, so only
// looking at the first one loses content.
func Text(el *etree.Element) string {
	if el == nil {
		return ""
	}
	var b strings.Builder
	for _, tok := range el.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			b.WriteString(cd.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

// NewDocument creates an empty document with a UTF-8 XML declaration.
func NewDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	return doc
}

// SetAttr adds the attribute key to el unless value is empty.
func SetAttr(el *etree.Element, key, value string) {
	if value == "" {
		return
	}
	el.CreateAttr(key, value)
}

// AddTextElement appends a child element called tag holding text.
func AddTextElement(parent *etree.Element, tag, text string) *etree.Element {
	el := parent.CreateElement(tag)
	el.SetText(text)
	return el
}

// Write serializes doc to w with two-space indentation.
func Write(w io.Writer, doc *etree.Document) error {
	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}

// Bytes serializes doc with two-space indentation.
func Bytes(doc *etree.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
