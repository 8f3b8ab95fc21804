package unused

import (
	"strings"

	"github.com/panbanda/codeline/pkg/syntax"
)

// MemberKind distinguishes fields from methods.
type MemberKind int

const (
	Field MemberKind = iota
	Method
)

func (k MemberKind) String() string {
	if k == Field {
		return "field"
	}
	return "method"
}

// Visibility of a candidate member.
type Visibility int

const (
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	if v == Private {
		return "private"
	}
	return "public"
}

// Declaration is the primary type declaration of a file.
type Declaration struct {
	Tree *syntax.Tree
	Unit *syntax.Unit
	Node syntax.NodeID
	Body syntax.NodeID
	Name string

	Abstract   bool // abstract class or interface
	Implements bool // has an implements clause

	resolver *AnnotationResolver
}

// Resolver returns the annotation resolver for the declaring file.
func (d *Declaration) Resolver() *AnnotationResolver {
	if d.resolver == nil {
		d.resolver = NewAnnotationResolver(d.Unit)
	}
	return d.resolver
}

// Annotation is an annotation on a candidate member.
type Annotation struct {
	Name   string // as written, simple or qualified
	Values []string
}

// SimpleName returns the last segment of the annotation name.
func (a Annotation) SimpleName() string {
	return a.Name[strings.LastIndex(a.Name, ".")+1:]
}

// Candidate is a member being evaluated for unused status.
type Candidate struct {
	Decl       *Declaration
	Node       syntax.NodeID // field_declaration or method_declaration
	Declarator syntax.NodeID // the variable_declarator of a field, Node for methods
	Kind       MemberKind
	Visibility Visibility
	Static     bool
	Name       string

	Annotations []Annotation
}

// Annotated reports whether the member carries an annotation whose name,
// simple or qualified, equals name.
func (c *Candidate) Annotated(name string) bool {
	for _, a := range c.Annotations {
		if a.Name == name || a.SimpleName() == name {
			return true
		}
	}
	return false
}

// Signature renders the member declaration without a method body.
func (c *Candidate) Signature() string {
	t := c.Decl.Tree
	if c.Kind == Method {
		if body := t.Child(c.Node, "block"); body != syntax.NoNode {
			n := t.Node(c.Node)
			src := t.Source()
			return strings.TrimSpace(string(src[n.Start:t.Node(body).Start]))
		}
	}
	return strings.TrimSpace(t.Text(c.Node))
}

var bodyKinds = []string{"class_body", "interface_body", "enum_body", "annotation_type_body"}

// FindPrimary returns the top-level type declaration named baseName.
func FindPrimary(tree *syntax.Tree, baseName string) (*Declaration, bool) {
	root := tree.Root()
	for _, c := range tree.ChildrenOf(root, syntax.TypeDeclarationKinds...) {
		if tree.Name(c) != baseName {
			continue
		}
		kind := tree.Kind(c)
		return &Declaration{
			Tree:       tree,
			Unit:       tree.JavaUnit(),
			Node:       c,
			Body:       tree.Child(c, bodyKinds...),
			Name:       baseName,
			Abstract:   kind == "interface_declaration" || kind == "annotation_type_declaration" || tree.HasModifier(c, "abstract"),
			Implements: tree.Child(c, "super_interfaces") != syntax.NoNode,
		}, true
	}
	return nil, false
}

// Members returns the member nodes of the declaration body in source order.
func (d *Declaration) Members() []syntax.NodeID {
	t := d.Tree
	var out []syntax.NodeID
	for _, c := range t.Children(d.Body) {
		if t.Kind(c) == "enum_body_declarations" {
			out = append(out, t.Children(c)...)
			continue
		}
		out = append(out, c)
	}
	return out
}

// Candidates extracts private fields (one per declarator), private methods
// and, when publicMethods is set and the declaration is a concrete
// implementation of an interface, its public non-static methods.
func (d *Declaration) Candidates(publicMethods bool) []*Candidate {
	t := d.Tree
	withPublic := publicMethods && d.Implements && !d.Abstract

	var out []*Candidate
	for _, m := range d.Members() {
		switch t.Kind(m) {
		case "field_declaration":
			if !t.HasModifier(m, "private") {
				continue
			}
			annotations := d.annotations(m)
			for _, decl := range t.ChildrenOf(m, "variable_declarator") {
				out = append(out, &Candidate{
					Decl:        d,
					Node:        m,
					Declarator:  decl,
					Kind:        Field,
					Visibility:  Private,
					Static:      t.HasModifier(m, "static"),
					Name:        t.Name(decl),
					Annotations: annotations,
				})
			}
		case "method_declaration":
			vis := Private
			switch {
			case t.HasModifier(m, "private"):
			case withPublic && t.HasModifier(m, "public") && !t.HasModifier(m, "static"):
				vis = Public
			default:
				continue
			}
			out = append(out, &Candidate{
				Decl:        d,
				Node:        m,
				Declarator:  m,
				Kind:        Method,
				Visibility:  vis,
				Static:      t.HasModifier(m, "static"),
				Name:        t.Name(m),
				Annotations: d.annotations(m),
			})
		}
	}
	return out
}

func (d *Declaration) annotations(member syntax.NodeID) []Annotation {
	t := d.Tree
	nodes := t.Annotations(member)
	if len(nodes) == 0 {
		return nil
	}
	out := make([]Annotation, 0, len(nodes))
	for _, a := range nodes {
		out = append(out, Annotation{
			Name:   t.AnnotationName(a),
			Values: t.StringValues(a),
		})
	}
	return out
}
