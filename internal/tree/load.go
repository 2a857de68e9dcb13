package tree

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTree indicates a tree document that cannot be built.
var ErrInvalidTree = errors.New("invalid tree document")

// Document is the YAML form of a forest.
//
//	nodes:
//	  - name: Projects
//	    expanded: true
//	    children:
//	      - name: treedrop
//	        drop: false
type Document struct {
	Nodes []NodeDef `yaml:"nodes"`
}

// NodeDef is the YAML form of a node. Omitted permissions default to true.
type NodeDef struct {
	Name     string    `yaml:"name"`
	Drag     *bool     `yaml:"drag,omitempty"`
	Drop     *bool     `yaml:"drop,omitempty"`
	Insert   *bool     `yaml:"insert,omitempty"`
	Expanded bool      `yaml:"expanded,omitempty"`
	Children []NodeDef `yaml:"children,omitempty"`
}

// Load reads a YAML tree document from r.
func Load(r io.Reader) (*Forest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read tree: %w", err)
	}
	return Parse(data)
}

// LoadFile reads a YAML tree document from path.
func LoadFile(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tree %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse builds a forest from YAML data.
func Parse(data []byte) (*Forest, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTree, err)
	}
	return doc.Build()
}

// Build converts the document into a forest.
func (d Document) Build() (*Forest, error) {
	f := NewForest()
	for i, def := range d.Nodes {
		n, err := def.build(fmt.Sprintf("nodes[%d]", i))
		if err != nil {
			return nil, err
		}
		f.Append(n)
	}
	return f, nil
}

func (d NodeDef) build(where string) (*Node, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("%w: %s: name is required", ErrInvalidTree, where)
	}
	n := NewNode(d.Name)
	n.AllowDrag = flag(d.Drag)
	n.AllowDrop = flag(d.Drop)
	n.AllowInsert = flag(d.Insert)
	n.Expanded = d.Expanded
	for i, c := range d.Children {
		child, err := c.build(fmt.Sprintf("%s.children[%d]", where, i))
		if err != nil {
			return nil, err
		}
		n.Append(child)
	}
	return n, nil
}

func flag(b *bool) bool {
	return b == nil || *b
}

// Export converts a forest back into its document form.
func Export(f *Forest) Document {
	var doc Document
	for _, r := range f.Roots() {
		doc.Nodes = append(doc.Nodes, exportNode(r))
	}
	return doc
}

func exportNode(n *Node) NodeDef {
	def := NodeDef{Name: n.Name, Expanded: n.Expanded}
	if !n.AllowDrag {
		def.Drag = ptr(false)
	}
	if !n.AllowDrop {
		def.Drop = ptr(false)
	}
	if !n.AllowInsert {
		def.Insert = ptr(false)
	}
	for _, c := range n.Children() {
		def.Children = append(def.Children, exportNode(c))
	}
	return def
}

// Save writes f to w as YAML.
func Save(w io.Writer, f *Forest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Export(f)); err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	return enc.Close()
}

func ptr(b bool) *bool {
	return &b
}
