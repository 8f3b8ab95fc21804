// Package syntax holds a read-only arena copy of a tree-sitter tree.
//
// Nodes are stored in preorder and addressed by NodeID. Children are owned by
// index; the Parent link is a back-reference used only for upward navigation.
// Because of the preorder layout the subtree of a node is the contiguous ID
// range [id, Last].
package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/codeline/pkg/parser"
)

// NodeID is a stable handle into a Tree.
type NodeID int32

// NoNode is the handle of a missing node, e.g. the parent of the root.
const NoNode NodeID = -1

// Node is one entry of the arena.
type Node struct {
	Kind  string
	Named bool

	Start, End uint32 // byte span into the file text

	// Line and Column are 1-based. Zero means the parser supplied no position.
	Line, Column int

	Parent   NodeID
	Children []NodeID
	Last     NodeID // last descendant in preorder, the node itself for leaves
}

// Tree is the arena for one file.
type Tree struct {
	nodes []Node
	src   []byte
}

// FromParseResult copies a parse result into an arena.
func FromParseResult(r *parser.ParseResult) *Tree {
	return Build(r.Tree.RootNode(), r.Source)
}

// Build copies the tree rooted at root into an arena.
func Build(root *sitter.Node, src []byte) *Tree {
	t := &Tree{src: src, nodes: make([]Node, 0, 256)}
	if root != nil {
		t.add(root, NoNode)
	}
	return t
}

func (t *Tree) add(n *sitter.Node, parent NodeID) NodeID {
	id := NodeID(len(t.nodes))
	start := n.StartPoint()
	t.nodes = append(t.nodes, Node{
		Kind:   n.Type(),
		Named:  n.IsNamed(),
		Start:  n.StartByte(),
		End:    n.EndByte(),
		Line:   int(start.Row) + 1,
		Column: int(start.Column) + 1,
		Parent: parent,
	})

	count := int(n.ChildCount())
	if count > 0 {
		children := make([]NodeID, 0, count)
		for i := range count {
			child := n.Child(i)
			if child == nil {
				continue
			}
			children = append(children, t.add(child, id))
		}
		t.nodes[id].Children = children
	}
	t.nodes[id].Last = NodeID(len(t.nodes) - 1)
	return id
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Root returns the root handle, or NoNode for an empty tree.
func (t *Tree) Root() NodeID {
	if len(t.nodes) == 0 {
		return NoNode
	}
	return 0
}

// Source returns the file text the tree was built from.
func (t *Tree) Source() []byte { return t.src }

// Valid reports whether id addresses a node of this tree.
func (t *Tree) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Node returns the node for id. It panics on an invalid handle.
func (t *Tree) Node(id NodeID) *Node { return &t.nodes[id] }

// Kind returns the node kind, or "" for an invalid handle.
func (t *Tree) Kind(id NodeID) string {
	if !t.Valid(id) {
		return ""
	}
	return t.nodes[id].Kind
}

// Text returns the exact source text spanned by the node.
func (t *Tree) Text(id NodeID) string {
	if !t.Valid(id) {
		return ""
	}
	n := &t.nodes[id]
	if n.Start > n.End || int(n.End) > len(t.src) {
		return ""
	}
	return string(t.src[n.Start:n.End])
}

// Parent returns the parent handle, NoNode for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.Valid(id) {
		return NoNode
	}
	return t.nodes[id].Parent
}

// Children returns all children, named and anonymous.
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.Valid(id) {
		return nil
	}
	return t.nodes[id].Children
}

// Child returns the first child of one of the given kinds, or NoNode.
func (t *Tree) Child(id NodeID, kinds ...string) NodeID {
	for _, c := range t.Children(id) {
		if hasKind(t.nodes[c].Kind, kinds) {
			return c
		}
	}
	return NoNode
}

// ChildrenOf returns every child of one of the given kinds.
func (t *Tree) ChildrenOf(id NodeID, kinds ...string) []NodeID {
	var out []NodeID
	for _, c := range t.Children(id) {
		if hasKind(t.nodes[c].Kind, kinds) {
			out = append(out, c)
		}
	}
	return out
}

// Ancestor returns the nearest proper ancestor of one of the given kinds.
func (t *Tree) Ancestor(id NodeID, kinds ...string) NodeID {
	for p := t.Parent(id); p != NoNode; p = t.nodes[p].Parent {
		if hasKind(t.nodes[p].Kind, kinds) {
			return p
		}
	}
	return NoNode
}

// Contains reports whether id lies in the subtree rooted at ancestor
// (ancestor itself included).
func (t *Tree) Contains(ancestor, id NodeID) bool {
	if !t.Valid(ancestor) || !t.Valid(id) {
		return false
	}
	return id >= ancestor && id <= t.nodes[ancestor].Last
}

// NodeAt returns the deepest node in the subtree of id whose span contains
// the byte offset, or id itself when no child does.
func (t *Tree) NodeAt(id NodeID, offset uint32) NodeID {
	if !t.Valid(id) {
		return NoNode
	}
	for {
		next := NoNode
		for _, c := range t.nodes[id].Children {
			if n := &t.nodes[c]; n.Start <= offset && offset < n.End {
				next = c
				break
			}
		}
		if next == NoNode {
			return id
		}
		id = next
	}
}

// Walk visits the subtree rooted at id in preorder. Returning false from fn
// skips the children of the current node.
func (t *Tree) Walk(id NodeID, fn func(NodeID) bool) {
	if !t.Valid(id) {
		return
	}
	if !fn(id) {
		return
	}
	for _, c := range t.nodes[id].Children {
		t.Walk(c, fn)
	}
}

// Position returns the 1-based start position and whether the parser
// supplied one.
func (t *Tree) Position(id NodeID) (line, column int, ok bool) {
	if !t.Valid(id) {
		return 0, 0, false
	}
	n := &t.nodes[id]
	if n.Line < 1 || n.Column < 1 {
		return 0, 0, false
	}
	return n.Line, n.Column, true
}

func hasKind(kind string, kinds []string) bool {
	for _, k := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}
