package unused

import (
	"regexp"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/panbanda/codeline/pkg/syntax"
)

// Node kinds never matched on their own. Leaves are covered by their parent
// expression, and containers by the statements they hold.
var skippedKinds = map[string]bool{
	// names and types
	"identifier":             true,
	"type_identifier":        true,
	"scoped_identifier":      true,
	"scoped_type_identifier": true,
	"generic_type":           true,
	"array_type":             true,
	"integral_type":          true,
	"floating_point_type":    true,
	"boolean_type":           true,
	"void_type":              true,
	"type_arguments":         true,
	"type_parameters":        true,
	"type_parameter":         true,
	"type_bound":             true,
	"type_list":              true,
	"dimensions":             true,
	"superclass":             true,
	"super_interfaces":       true,
	"extends_interfaces":     true,
	"throws":                 true,

	// literals
	"string_literal":                 true,
	"string_fragment":                true,
	"escape_sequence":                true,
	"multiline_string_fragment":      true,
	"text_block":                     true,
	"character_literal":              true,
	"decimal_integer_literal":        true,
	"hex_integer_literal":            true,
	"octal_integer_literal":          true,
	"binary_integer_literal":         true,
	"decimal_floating_point_literal": true,
	"hex_floating_point_literal":     true,
	"true":                           true,
	"false":                          true,
	"null_literal":                   true,

	// comments
	"line_comment":  true,
	"block_comment": true,
	"comment":       true,

	// declarations, parameters and modifiers
	"modifiers":           true,
	"formal_parameters":   true,
	"formal_parameter":    true,
	"spread_parameter":    true,
	"receiver_parameter":  true,
	"inferred_parameters": true,
	"variable_declarator": true,

	// blocks and bodies
	"block":                           true,
	"switch_block":                    true,
	"class_body":                      true,
	"interface_body":                  true,
	"enum_body":                       true,
	"enum_body_declarations":          true,
	"annotation_type_body":            true,
	"constructor_body":                true,
	"method_declaration":              true,
	"constructor_declaration":         true,
	"compact_constructor_declaration": true,
	"class_declaration":               true,
	"interface_declaration":           true,
	"enum_declaration":                true,
	"record_declaration":              true,
	"annotation_type_declaration":     true,
}

// Scopes whose parameters can shadow a field.
var scopeKinds = []string{"method_declaration", "constructor_declaration", "lambda_expression"}

// Scanner decides whether candidates of one declaration are referenced.
type Scanner struct {
	tree  *syntax.Tree
	nodes *roaring.Bitmap
}

// NewScanner collects the matchable nodes of the declaration body.
func NewScanner(decl *Declaration) *Scanner {
	s := &Scanner{tree: decl.Tree, nodes: roaring.New()}
	t := decl.Tree
	for _, c := range t.Children(decl.Body) {
		t.Walk(c, func(id syntax.NodeID) bool {
			n := t.Node(id)
			if n.Named && !skippedKinds[n.Kind] {
				s.nodes.Add(uint32(id))
			}
			return true
		})
	}
	return s
}

// Len returns the number of matchable nodes.
func (s *Scanner) Len() int { return int(s.nodes.GetCardinality()) }

type patterns struct {
	usage      *regexp.Regexp
	assignment *regexp.Regexp // fields only
}

func patternsFor(c *Candidate) patterns {
	name := regexp.QuoteMeta(c.Name)
	if c.Kind == Method {
		return patterns{
			usage: regexp.MustCompile(`::` + name + `(?:[^\w$]|$)|(?:^|[^\w$])` + name + `\s*\(`),
		}
	}
	return patterns{
		usage:      regexp.MustCompile(`(?:^|[^\w$])(?:this\.)?` + name + `(?:[^\w$]|$)`),
		assignment: regexp.MustCompile(`(?:^|[^\w$])(?:this\.)?` + name + `\s*=[^=]`),
	}
}

// Unused reports whether no node outside the candidate's own declaration
// references it.
func (s *Scanner) Unused(c *Candidate) bool {
	p := patternsFor(c)
	t := s.tree
	self := t.Node(c.Node)

	it := s.nodes.Iterator()
	for it.HasNext() {
		id := syntax.NodeID(it.PeekNext())
		if id >= c.Node && id <= self.Last {
			it.AdvanceIfNeeded(uint32(self.Last) + 1)
			continue
		}
		it.Next()
		if s.references(c, p, id) {
			return false
		}
	}

	if c.Kind == Field && s.siblingReference(c, p) {
		return false
	}
	return true
}

func (s *Scanner) references(c *Candidate, p patterns, id syntax.NodeID) bool {
	t := s.tree
	text := t.Text(id)
	if !p.usage.MatchString(text) {
		return false
	}
	if c.Kind == Method {
		return true
	}

	if p.assignment.MatchString(text) || s.assignmentTarget(id) {
		return false
	}

	// A plain occurrence inside a scope with a parameter of the same name
	// refers to the parameter.
	base := t.Node(id).Start
	for _, occ := range occurrences(text, c.Name) {
		if occ.qualified {
			return true
		}
		if !s.shadowed(t.NodeAt(id, base+uint32(occ.offset)), c.Name) {
			return true
		}
	}
	return false
}

type occurrence struct {
	offset    int
	qualified bool
}

// occurrences finds name as a whole token in text.
func occurrences(text, name string) []occurrence {
	var out []occurrence
	for from := 0; ; {
		i := strings.Index(text[from:], name)
		if i < 0 {
			return out
		}
		i += from
		end := i + len(name)
		from = i + 1

		if i > 0 && isIdentByte(text[i-1]) {
			continue
		}
		if end < len(text) && isIdentByte(text[end]) {
			continue
		}
		out = append(out, occurrence{
			offset:    i,
			qualified: strings.HasSuffix(text[:i], "this."),
		})
	}
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' || b >= 0x80 ||
		('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

// assignmentTarget reports whether id is the left operand of a plain
// assignment, e.g. the field access in "this.x = 1".
func (s *Scanner) assignmentTarget(id syntax.NodeID) bool {
	t := s.tree
	parent := t.Parent(id)
	if t.Kind(parent) != "assignment_expression" {
		return false
	}
	children := t.Children(parent)
	return len(children) >= 2 && children[0] == id && t.Kind(children[1]) == "="
}

// shadowed reports whether id lies in, or is, a method, constructor or
// lambda that declares a parameter named name.
func (s *Scanner) shadowed(id syntax.NodeID, name string) bool {
	t := s.tree
	scope := id
	if !isScope(t.Kind(scope)) {
		scope = t.Ancestor(id, scopeKinds...)
	}
	for ; scope != syntax.NoNode; scope = t.Ancestor(scope, scopeKinds...) {
		if declaresParameter(t, scope, name) {
			return true
		}
	}
	return false
}

func isScope(kind string) bool {
	for _, k := range scopeKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func declaresParameter(t *syntax.Tree, scope syntax.NodeID, name string) bool {
	// x -> ...
	if t.Kind(scope) == "lambda_expression" {
		if children := t.Children(scope); len(children) > 0 && t.Kind(children[0]) == "identifier" {
			return t.Text(children[0]) == name
		}
	}
	params := t.Child(scope, "formal_parameters", "inferred_parameters")
	if params == syntax.NoNode {
		return false
	}
	for _, p := range t.Children(params) {
		switch t.Kind(p) {
		case "identifier":
			if t.Text(p) == name {
				return true
			}
		case "formal_parameter":
			if t.Name(p) == name {
				return true
			}
		case "spread_parameter":
			if d := t.Child(p, "variable_declarator"); d != syntax.NoNode && t.Name(d) == name {
				return true
			}
		}
	}
	return false
}

// siblingReference checks the initializers of the other declarators in the
// candidate's own field declaration, as in "int a = 1, b = a;".
func (s *Scanner) siblingReference(c *Candidate, p patterns) bool {
	t := s.tree
	for _, d := range t.ChildrenOf(c.Node, "variable_declarator") {
		if d == c.Declarator {
			continue
		}
		children := t.Children(d)
		for i, ch := range children {
			if t.Kind(ch) != "=" || i+1 >= len(children) {
				continue
			}
			if p.usage.MatchString(t.Text(children[i+1])) {
				return true
			}
		}
	}
	return false
}
