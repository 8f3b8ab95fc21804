package syntax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/codeline/pkg/parser"
)

const sample = `package demo;

class Demo {
    private int count;

    void bump(int by) {
        count += by;
    }
}
`

func buildTree(t *testing.T, src string) *Tree {
	t.Helper()
	p := parser.New()
	defer p.Close()

	result, err := p.ParseString(src)
	require.NoError(t, err)
	defer result.Close()

	return FromParseResult(result)
}

func findKind(tree *Tree, kind string) NodeID {
	found := NoNode
	tree.Walk(tree.Root(), func(id NodeID) bool {
		if found != NoNode {
			return false
		}
		if tree.Kind(id) == kind {
			found = id
			return false
		}
		return true
	})
	return found
}

func TestBuild_RootAndSpans(t *testing.T) {
	tree := buildTree(t, sample)

	root := tree.Root()
	require.NotEqual(t, NoNode, root)
	assert.Equal(t, "program", tree.Kind(root))
	assert.Equal(t, NoNode, tree.Parent(root))
	assert.Equal(t, NodeID(tree.Len()-1), tree.Node(root).Last)

	// Every child span nests inside its parent and every text is a substring of the file.
	for i := range tree.Len() {
		id := NodeID(i)
		n := tree.Node(id)
		assert.True(t, strings.Contains(sample, tree.Text(id)))
		if p := n.Parent; p != NoNode {
			parent := tree.Node(p)
			assert.GreaterOrEqual(t, n.Start, parent.Start)
			assert.LessOrEqual(t, n.End, parent.End)
			assert.True(t, tree.Contains(p, id))
		}
	}
}

func TestBuild_Positions(t *testing.T) {
	tree := buildTree(t, sample)

	field := findKind(tree, "field_declaration")
	require.NotEqual(t, NoNode, field)

	line, col, ok := tree.Position(field)
	require.True(t, ok)
	assert.Equal(t, 4, line)
	assert.Equal(t, 5, col)
	assert.Equal(t, "private int count;", tree.Text(field))
}

func TestNavigation(t *testing.T) {
	tree := buildTree(t, sample)

	update := findKind(tree, "assignment_expression")
	require.NotEqual(t, NoNode, update)

	method := tree.Ancestor(update, "method_declaration")
	require.NotEqual(t, NoNode, method)
	assert.True(t, tree.Contains(method, update))
	assert.False(t, tree.Contains(update, method))

	params := tree.Child(method, "formal_parameters")
	require.NotEqual(t, NoNode, params)
	assert.Equal(t, "(int by)", tree.Text(params))
	assert.Len(t, tree.ChildrenOf(params, "formal_parameter"), 1)

	by := tree.NodeAt(method, tree.Node(update).End-2)
	assert.Equal(t, "identifier", tree.Kind(by))
	assert.Equal(t, "by", tree.Text(by))

	assert.Equal(t, NoNode, tree.Child(method, "no_such_kind"))
	assert.Equal(t, NoNode, tree.Ancestor(tree.Root(), "program"))
}

func TestInvalidHandles(t *testing.T) {
	tree := Build(nil, nil)

	assert.Equal(t, 0, tree.Len())
	assert.Equal(t, NoNode, tree.Root())
	assert.Equal(t, "", tree.Text(5))
	assert.Equal(t, "", tree.Kind(NoNode))
	assert.Nil(t, tree.Children(3))

	_, _, ok := tree.Position(0)
	assert.False(t, ok)
}
