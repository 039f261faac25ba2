// Package svg provides the drawing surface used by the diagram renderers: an
// in-memory SVG element tree with ordered attributes, id lookup, and
// deterministic serialization, plus text measurement backed by real font
// metrics (see [Measurer]).
//
// The surface deliberately mirrors a "create shape / set attribute / append
// child" graphics-tree API so layout code can be tested without touching the
// filesystem or a browser DOM.
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Namespace is the XML namespace written on every root <svg> element.
const Namespace = "http://www.w3.org/2000/svg"

type attr struct {
	name  string
	value string
}

// Element is a node in the SVG tree. Attribute order is preserved so that
// serialization is deterministic across renders of identical input.
//
// Element is not safe for concurrent mutation.
type Element struct {
	Tag      string
	Children []*Element
	Text     string

	attrs []attr
}

// NewElement creates a detached element with the given tag.
func NewElement(tag string) *Element {
	return &Element{Tag: tag}
}

// SetAttr sets an attribute, replacing any previous value while keeping the
// attribute's original position. It returns the element for chaining.
func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.attrs {
		if e.attrs[i].name == name {
			e.attrs[i].value = value
			return e
		}
	}
	e.attrs = append(e.attrs, attr{name: name, value: value})
	return e
}

// Attr returns the value of the named attribute and whether it is set.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return "", false
}

// ID returns the element's id attribute, or "" when unset.
func (e *Element) ID() string {
	id, _ := e.Attr("id")
	return id
}

// SetText sets the element's text content. It returns the element for chaining.
func (e *Element) SetText(s string) *Element {
	e.Text = s
	return e
}

// Append adds child to the element's children. It returns the element for
// chaining.
func (e *Element) Append(child *Element) *Element {
	e.Children = append(e.Children, child)
	return e
}

// NewChild creates an element with the given tag, appends it, and returns the
// child.
func (e *Element) NewChild(tag string) *Element {
	c := NewElement(tag)
	e.Children = append(e.Children, c)
	return c
}

// FindByID returns the first element in the subtree (including e itself, in
// document order) whose id attribute equals id, or nil when absent.
func (e *Element) FindByID(id string) *Element {
	if e.ID() == id {
		return e
	}
	for _, c := range e.Children {
		if found := c.FindByID(id); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every element in the subtree with the given tag, in
// document order.
func (e *Element) FindAll(tag string) []*Element {
	var out []*Element
	if e.Tag == tag {
		out = append(out, e)
	}
	for _, c := range e.Children {
		out = append(out, c.FindAll(tag)...)
	}
	return out
}

// WriteTo serializes the subtree as indented XML.
func (e *Element) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	e.write(&buf, 0)
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// String returns the serialized subtree. Useful in tests and error messages.
func (e *Element) String() string {
	var buf bytes.Buffer
	e.write(&buf, 0)
	return buf.String()
}

func (e *Element) write(buf *bytes.Buffer, depth int) {
	indent := strings.Repeat("  ", depth)
	buf.WriteString(indent)
	buf.WriteByte('<')
	buf.WriteString(e.Tag)
	for _, a := range e.attrs {
		fmt.Fprintf(buf, ` %s="%s"`, a.name, Escape(a.value))
	}

	if len(e.Children) == 0 && e.Text == "" {
		buf.WriteString("/>\n")
		return
	}

	buf.WriteByte('>')
	if e.Text != "" {
		buf.WriteString(Escape(e.Text))
	}
	if len(e.Children) > 0 {
		buf.WriteByte('\n')
		for _, c := range e.Children {
			c.write(buf, depth+1)
		}
		buf.WriteString(indent)
	}
	fmt.Fprintf(buf, "</%s>\n", e.Tag)
}

// Escape returns s with XML special characters escaped.
func Escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// Document is a registry of root <svg> elements addressed by id. It stands in
// for the external canvas that owns surface lifecycle: renderers resolve their
// target root by id and only ever append below it.
type Document struct {
	order []string
	roots map[string]*Element
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{roots: make(map[string]*Element)}
}

// Root returns the root element registered under id, creating a fresh
// <svg id="..."> element on first use.
func (d *Document) Root(id string) *Element {
	if r, ok := d.roots[id]; ok {
		return r
	}
	r := NewElement("svg").
		SetAttr("xmlns", Namespace).
		SetAttr("id", id)
	d.roots[id] = r
	d.order = append(d.order, id)
	return r
}

// Lookup returns the root registered under id without creating it.
func (d *Document) Lookup(id string) (*Element, bool) {
	r, ok := d.roots[id]
	return r, ok
}

// IDs returns the registered root ids in creation order.
func (d *Document) IDs() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}
