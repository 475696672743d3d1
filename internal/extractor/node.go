package extractor

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// Node is one element of a decoded document. Names are namespace-resolved:
// Space holds the namespace URI, not the prefix used in the source.
type Node struct {
	Space    string
	Local    string
	Attrs    []xml.Attr
	Children []*Node
}

// Parse decodes content into a node tree. Encodings other than UTF-8 are
// honoured when declared in the XML prolog.
func Parse(content []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	dec.Strict = true
	dec.CharsetReader = charset.NewReaderLabel

	var (
		root  *Node
		stack []*Node
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Space: t.Name.Space, Local: t.Name.Local, Attrs: dataAttrs(t.Attr)}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("document has more than one root element")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}

	if root == nil {
		return nil, errors.New("document has no root element")
	}
	return root, nil
}

// dataAttrs drops namespace declarations.
func dataAttrs(attrs []xml.Attr) []xml.Attr {
	out := make([]xml.Attr, 0, len(attrs))
	for _, a := range attrs {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Attr returns the value of the attribute with the given local name.
func (n *Node) Attr(local string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return strings.TrimSpace(a.Value), true
		}
	}
	return "", false
}

// AttrFold is Attr with case-insensitive name matching.
func (n *Node) AttrFold(local string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if strings.EqualFold(a.Name.Local, local) {
			return strings.TrimSpace(a.Value), true
		}
	}
	return "", false
}

// Is reports whether n is the element space:local.
func (n *Node) Is(space, local string) bool {
	return n != nil && n.Space == space && n.Local == local
}

// Child returns the first direct child named space:local.
func (n *Node) Child(space, local string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Is(space, local) {
			return c
		}
	}
	return nil
}

// ChildFold returns the first direct child whose local name matches,
// ignoring namespace and case.
func (n *Node) ChildFold(local string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if strings.EqualFold(c.Local, local) {
			return c
		}
	}
	return nil
}

// FindAll returns every descendant of n (n excluded) matching pred, in
// document order.
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, c := range cur.Children {
			if pred(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return out
}

// Find returns the first descendant matching pred, or nil.
func (n *Node) Find(pred func(*Node) bool) *Node {
	if all := n.FindAll(pred); len(all) > 0 {
		return all[0]
	}
	return nil
}

// named matches space:local exactly.
func named(space, local string) func(*Node) bool {
	return func(n *Node) bool { return n.Is(space, local) }
}

// namedFold matches by local name only, ignoring case.
func namedFold(local string) func(*Node) bool {
	return func(n *Node) bool { return strings.EqualFold(n.Local, local) }
}
