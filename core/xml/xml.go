// Package xml wraps xmlquery/xpath with the read-only tree view the OSIS
// readers need: namespace resolution, XPath lookup, and element text split
// into the part before the first child ("text") and the part after the
// closing tag ("tail").
//
// Security Notes:
//   - The xmlquery library is used for parsing, which uses Go's encoding/xml
//     internally and inherits its security properties. External entities
//     are never fetched.
package xml

import (
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Document represents a parsed XML document. It is never mutated after ParseReader.
type Document struct {
	root      *xmlquery.Node
	namespace string
}

// Node represents an XML element.
type Node struct {
	node *xmlquery.Node
}

// ParseReader parses XML from r and returns a Document.
func ParseReader(r io.Reader) (*Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	doc := &Document{root: root}
	if el := doc.Root(); el != nil {
		doc.namespace = NamespaceOf(el.QualifiedName())
	} else {
		return nil, fmt.Errorf("parsing XML: document has no root element")
	}
	return doc, nil
}

// NamespaceOf returns the namespace URI of a qualified tag name in
// "{uri}local" form, or "" when the tag carries no namespace.
func NamespaceOf(qualified string) string {
	if !strings.HasPrefix(qualified, "{") {
		return ""
	}
	end := strings.IndexByte(qualified, '}')
	if end < 0 {
		return ""
	}
	return qualified[1:end]
}

// Namespace returns the default namespace declared on the root element.
func (d *Document) Namespace() string {
	return d.namespace
}

// Root returns the root element of the document.
func (d *Document) Root() *Node {
	if d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// XPath executes an XPath query and returns matching elements.
// Unprefixed names match by local name, so default-namespace documents can
// be queried without a prefix map.
func (d *Document) XPath(expr string) ([]*Node, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}

	nodes := xmlquery.QuerySelectorAll(d.root, compiled)
	result := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		result = append(result, &Node{node: n})
	}
	return result, nil
}

// XPathFirst executes an XPath query and returns the first matching element,
// or nil when nothing matches.
func (d *Document) XPathFirst(expr string) (*Node, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}

	node := xmlquery.QuerySelector(d.root, compiled)
	if node == nil {
		return nil, nil
	}
	return &Node{node: node}, nil
}

// Name returns the element's local name.
func (n *Node) Name() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.Data
}

// Namespace returns the element's namespace URI.
func (n *Node) Namespace() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.NamespaceURI
}

// QualifiedName returns the element name in "{uri}local" form.
func (n *Node) QualifiedName() string {
	if ns := n.Namespace(); ns != "" {
		return "{" + ns + "}" + n.Name()
	}
	return n.Name()
}

// Text returns the character data that precedes the element's first child
// element. Comments are skipped.
func (n *Node) Text() string {
	if n == nil || n.node == nil {
		return ""
	}
	return collectText(n.node.FirstChild)
}

// Tail returns the character data between the element's closing tag and the
// next sibling element.
func (n *Node) Tail() string {
	if n == nil || n.node == nil {
		return ""
	}
	return collectText(n.node.NextSibling)
}

func collectText(start *xmlquery.Node) string {
	var sb strings.Builder
	for c := start; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			sb.WriteString(c.Data)
		case xmlquery.CommentNode, xmlquery.DeclarationNode:
			continue
		default:
			return sb.String()
		}
	}
	return sb.String()
}

// Children returns the child element nodes in document order.
func (n *Node) Children() []*Node {
	if n == nil || n.node == nil {
		return nil
	}

	var children []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			children = append(children, &Node{node: child})
		}
	}
	return children
}

// Parent returns the parent element, or nil at the root.
func (n *Node) Parent() *Node {
	if n == nil || n.node == nil || n.node.Parent == nil {
		return nil
	}
	if n.node.Parent.Type != xmlquery.ElementNode {
		return nil
	}
	return &Node{node: n.node.Parent}
}

// Attr returns the value of an attribute matched by local name and whether
// it was present.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil || n.node == nil {
		return "", false
	}
	for _, attr := range n.node.Attr {
		if isNamespaceDecl(attr.Name.Space, attr.Name.Local) {
			continue
		}
		if attr.Name.Local == name {
			return attr.Value, true
		}
	}
	return "", false
}

func isNamespaceDecl(space, local string) bool {
	return space == "xmlns" || (space == "" && local == "xmlns")
}

// AttrOr returns the attribute value, or def when it is absent.
func (n *Node) AttrOr(name, def string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return def
}

// Key returns a string that identifies the element within its document.
// It is stable for the lifetime of the Document.
func (n *Node) Key() string {
	if n == nil || n.node == nil {
		return ""
	}
	return fmt.Sprintf("%p", n.node)
}
