package tyconfig

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// TreeFormat parses the XML-like tree configuration dialect (TYPO3's
// ext_conf_template-adjacent and flexform XML documents) into a nested
// map[string]any, with attributes keyed by an "@" prefix and repeated
// sibling element names promoted to a slice.
//
// encoding/xml performs no DTD fetching and no external entity
// resolution — there is no mechanism in the standard decoder for either,
// so external entity expansion is disabled unconditionally by
// construction rather than by an option a caller could get wrong.
type TreeFormat struct{}

// NewTreeFormat constructs the tree (XML) format handler.
func NewTreeFormat() Format { return TreeFormat{} }

func (TreeFormat) Identifier() string { return "tree" }

var treeExt = regexp.MustCompile(`(?i)\.xml$`)

func (TreeFormat) Supports(path string, _ []byte) bool {
	return treeExt.MatchString(path)
}

func (TreeFormat) Parse(_ string, content []byte) (map[string]any, error) {
	dec := xml.NewDecoder(strings.NewReader(string(content)))

	var root *xmlNode
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode tree document: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			node, err := decodeElement(dec, start)
			if err != nil {
				return nil, err
			}
			root = node
			break
		}
	}

	if root == nil {
		return map[string]any{}, nil
	}
	return map[string]any{root.name: root.toMap()}, nil
}

type xmlNode struct {
	children map[string][]*xmlNode
	attrs    map[string]string
	name     string
	text     string
}

func newXMLNode(name string) *xmlNode {
	return &xmlNode{name: name, children: make(map[string][]*xmlNode), attrs: make(map[string]string)}
}

func decodeElement(dec *xml.Decoder, start xml.StartElement) (*xmlNode, error) {
	node := newXMLNode(start.Name.Local)
	for _, a := range start.Attr {
		node.attrs[a.Name.Local] = a.Value
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode element %s: %w", start.Name.Local, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeElement(dec, t)
			if err != nil {
				return nil, err
			}
			node.children[child.name] = append(node.children[child.name], child)
		case xml.CharData:
			node.text += string(t)
		case xml.EndElement:
			node.text = strings.TrimSpace(node.text)
			return node, nil
		}
	}
}

// toMap lowers a node to map[string]any: attributes under "@name" keys,
// text content under "#text" if non-empty and there are no children, and
// each distinct child element name either as a single nested map (one
// occurrence) or a []any of maps (more than one occurrence).
func (n *xmlNode) toMap() map[string]any {
	out := make(map[string]any, len(n.attrs)+len(n.children)+1)
	for k, v := range n.attrs {
		out["@"+k] = v
	}
	for name, nodes := range n.children {
		if len(nodes) == 1 {
			out[name] = nodes[0].toMap()
			continue
		}
		list := make([]any, len(nodes))
		for i, c := range nodes {
			list[i] = c.toMap()
		}
		out[name] = list
	}
	if len(n.children) == 0 && n.text != "" {
		out["#text"] = n.text
	}
	return out
}
