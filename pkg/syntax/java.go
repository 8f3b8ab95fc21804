package syntax

import "strings"

// Import is one import declaration of a Java compilation unit.
type Import struct {
	Name     string // qualified name without "static" and without ".*"
	Static   bool
	OnDemand bool
	Node     NodeID
}

// Unit is the file-level context of a Java compilation unit.
type Unit struct {
	Package string
	Imports []Import
	// Annotation type names declared anywhere in the file.
	AnnotationTypes map[string]bool
}

// TypeDeclarationKinds are the node kinds of Java type declarations.
var TypeDeclarationKinds = []string{
	"class_declaration",
	"interface_declaration",
	"enum_declaration",
	"record_declaration",
	"annotation_type_declaration",
}

// JavaUnit reads the package, the imports and the declared annotation types.
func (t *Tree) JavaUnit() *Unit {
	u := &Unit{AnnotationTypes: make(map[string]bool)}
	root := t.Root()
	if root == NoNode {
		return u
	}

	for _, c := range t.Children(root) {
		switch t.Kind(c) {
		case "package_declaration":
			u.Package = t.Text(t.Child(c, "scoped_identifier", "identifier"))
		case "import_declaration":
			u.Imports = append(u.Imports, Import{
				Name:     t.Text(t.Child(c, "scoped_identifier", "identifier")),
				Static:   t.Child(c, "static") != NoNode,
				OnDemand: t.Child(c, "asterisk") != NoNode,
				Node:     c,
			})
		}
	}

	t.Walk(root, func(id NodeID) bool {
		if t.Kind(id) == "annotation_type_declaration" {
			u.AnnotationTypes[t.Name(id)] = true
		}
		return true
	})
	return u
}

// Name returns the simple name of a declaration node: the text of its first
// identifier child. Types, parameters and modifiers never appear as plain
// identifier children ahead of the name.
func (t *Tree) Name(id NodeID) string {
	return t.Text(t.Child(id, "identifier"))
}

// HasModifier reports whether the declaration carries the given keyword
// modifier, e.g. "private" or "static".
func (t *Tree) HasModifier(id NodeID, keyword string) bool {
	mods := t.Child(id, "modifiers")
	if mods == NoNode {
		return false
	}
	return t.Child(mods, keyword) != NoNode
}

// Annotations returns the annotation nodes of a declaration's modifiers.
func (t *Tree) Annotations(id NodeID) []NodeID {
	mods := t.Child(id, "modifiers")
	if mods == NoNode {
		return nil
	}
	return t.ChildrenOf(mods, "marker_annotation", "annotation")
}

// AnnotationName returns the name of an annotation as written, without "@".
func (t *Tree) AnnotationName(id NodeID) string {
	return t.Text(t.Child(id, "scoped_identifier", "identifier"))
}

// StringValues returns the unquoted values of every string literal in the
// subtree rooted at id.
func (t *Tree) StringValues(id NodeID) []string {
	var out []string
	t.Walk(id, func(n NodeID) bool {
		if t.Kind(n) != "string_literal" {
			return true
		}
		text := t.Text(n)
		if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
			text = text[1 : len(text)-1]
		}
		out = append(out, text)
		return false
	})
	return out
}
