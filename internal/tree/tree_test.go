package tree

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestNewNodeDefaults(t *testing.T) {
	n := NewNode("a")
	assert.True(t, n.AllowDrag)
	assert.True(t, n.AllowDrop)
	assert.True(t, n.AllowInsert)
	assert.False(t, n.Attached())
	assert.Equal(t, -1, n.Index())
	assert.NotEqual(t, n.ID, NewNode("a").ID)
}

func TestInsertAndIndex(t *testing.T) {
	p := NewNode("p")
	a, b, c := NewNode("a"), NewNode("b"), NewNode("c")
	p.Append(a)
	p.Append(c)
	p.InsertAt(1, b)

	assert.Equal(t, []string{"a", "b", "c"}, names(p.Children()))
	assert.Equal(t, 1, b.Index())
	assert.Same(t, p, b.Parent())

	// Out of range indexes clamp.
	d := NewNode("d")
	p.InsertAt(99, d)
	e := NewNode("e")
	p.InsertAt(-3, e)
	assert.Equal(t, []string{"e", "a", "b", "c", "d"}, names(p.Children()))
}

func TestMoveDetachesFirst(t *testing.T) {
	f := NewForest(NewNode("x"), NewNode("y"))
	x, y := f.Roots()[0], f.Roots()[1]
	a := NewNode("a")
	x.Append(a)

	y.Append(a)
	assert.Empty(t, x.Children())
	assert.Same(t, y, a.Parent())

	f.Insert(0, a)
	assert.Empty(t, y.Children())
	assert.Nil(t, a.Parent())
	assert.True(t, a.IsRoot())
	assert.Equal(t, []string{"a", "x", "y"}, names(f.Roots()))
	assert.Equal(t, 0, a.Index())

	x.Append(a)
	assert.False(t, a.IsRoot())
	assert.Equal(t, []string{"x", "y"}, names(f.Roots()))
}

func TestInsertIntoOwnSubtreeIgnored(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	a.Append(b)

	b.Append(a)
	a.Append(a)
	assert.Nil(t, a.Parent())
	assert.Equal(t, []string{"b"}, names(a.Children()))
	assert.Empty(t, b.Children())
}

func TestRemoveAndDetach(t *testing.T) {
	p := NewNode("p")
	a := NewNode("a")
	other := NewNode("other")
	p.Append(a)

	assert.False(t, other.Remove(a))
	assert.True(t, p.Remove(a))
	assert.False(t, a.Attached())
	a.Detach()

	f := NewForest(p)
	assert.False(t, f.Remove(a))
	assert.True(t, f.Remove(p))
	assert.Zero(t, f.Len())
}

func TestAncestry(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	c := NewNode("c")
	a.Append(b)
	b.Append(c)

	assert.True(t, a.IsAncestorOf(c))
	assert.False(t, c.IsAncestorOf(a))
	assert.False(t, a.IsAncestorOf(a))
	assert.True(t, a.Contains(a))
	assert.True(t, a.Contains(c))
	assert.Equal(t, 2, c.Depth())
	assert.Equal(t, "/a/b/c", c.Path())
}

func TestClone(t *testing.T) {
	a := NewNode("a")
	a.AllowDrop = false
	a.Expanded = true
	b := NewNode("b")
	a.Append(b)

	c := a.Clone()
	assert.NotEqual(t, a.ID, c.ID)
	assert.False(t, c.AllowDrop)
	assert.True(t, c.Expanded)
	assert.Nil(t, c.Parent())
	require.Len(t, c.Children(), 1)
	assert.NotSame(t, b, c.Child(0))
	assert.Same(t, c, c.Child(0).Parent())
	assert.NotEqual(t, b.ID, c.Child(0).ID)
}

func TestWalkAndFind(t *testing.T) {
	f := Sample()
	var visited []string
	f.Walk(func(n *Node, depth int) bool {
		visited = append(visited, strings.Repeat(".", depth)+n.Name)
		return n.Name != "treedrop"
	})
	assert.Equal(t, []string{"Inbox", ".Call plumber", ".Renew passport", "Projects", ".treedrop"}, visited)

	target := f.Roots()[1].Child(1).Child(0)
	assert.Same(t, target, f.Find(target.ID))
	assert.Nil(t, f.Find(NewNode("x").ID))
	assert.True(t, f.Owns(target))
	assert.False(t, f.Owns(NewNode("x")))
}

func TestChildrenOfAndInsertUnder(t *testing.T) {
	f := NewForest(NewNode("a"))
	a := f.Roots()[0]

	f.InsertUnder(nil, 0, NewNode("r"))
	f.InsertUnder(a, 0, NewNode("c"))

	assert.Equal(t, []string{"r", "a"}, names(f.ChildrenOf(nil)))
	assert.Equal(t, []string{"c"}, names(f.ChildrenOf(a)))
	assert.Equal(t, 3, f.Count())
}

func TestParse(t *testing.T) {
	doc := `
nodes:
  - name: Projects
    expanded: true
    children:
      - name: alpha
        drop: false
      - name: beta
        insert: false
  - name: Locked
    drag: false
`
	f, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, 2, f.Len())

	projects := f.Roots()[0]
	assert.True(t, projects.Expanded)
	require.Equal(t, 2, projects.Len())
	assert.False(t, projects.Child(0).AllowDrop)
	assert.True(t, projects.Child(0).AllowInsert)
	assert.False(t, projects.Child(1).AllowInsert)
	assert.False(t, f.Roots()[1].AllowDrag)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"malformed", "nodes: [", ""},
		{"missing name", "nodes:\n  - drag: true\n", "nodes[0]"},
		{"nested missing name", "nodes:\n  - name: a\n    children:\n      - {}\n", "nodes[0].children[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTree)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFileAndSaveRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, Sample()))

	path := filepath.Join(t.TempDir(), "tree.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Sample().Count(), f.Count())
	assert.Equal(t, Export(Sample()), Export(f))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadReader(t *testing.T) {
	f, err := Load(strings.NewReader("nodes:\n  - name: one\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, names(f.Roots()))
}
