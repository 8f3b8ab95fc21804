package unused

import (
	"strings"

	"github.com/panbanda/codeline/pkg/syntax"
)

// Resolution is the outcome of resolving an annotation name. An unresolved
// annotation is a normal outcome, not an error.
type Resolution struct {
	Namespace string
	Resolved  bool
}

// Unresolved is returned when no origin can be determined.
var Unresolved = Resolution{}

var javaLang = map[string]bool{
	"Override":            true,
	"Deprecated":          true,
	"SuppressWarnings":    true,
	"FunctionalInterface": true,
	"SafeVarargs":         true,
}

// AnnotationResolver finds the namespace an annotation name refers to using
// only the declaring file: its package, its imports and the annotation types
// it declares.
type AnnotationResolver struct {
	pkg      string
	single   map[string]string // simple name -> namespace
	onDemand []string
	local    map[string]bool
}

// NewAnnotationResolver builds a resolver for one compilation unit.
func NewAnnotationResolver(unit *syntax.Unit) *AnnotationResolver {
	r := &AnnotationResolver{single: make(map[string]string)}
	if unit == nil {
		return r
	}
	r.pkg = unit.Package
	r.local = unit.AnnotationTypes
	for _, imp := range unit.Imports {
		if imp.Static {
			continue
		}
		if imp.OnDemand {
			r.onDemand = append(r.onDemand, imp.Name)
			continue
		}
		if i := strings.LastIndex(imp.Name, "."); i > 0 {
			r.single[imp.Name[i+1:]] = imp.Name[:i]
		}
	}
	return r
}

// Resolve returns the namespace of the annotation written as name.
//
// Order: a qualified name resolves to its prefix, then single-type imports,
// then java.lang, then annotation types declared in the same file, then a
// sole on-demand import. Anything else is unresolved.
func (r *AnnotationResolver) Resolve(name string) Resolution {
	name = strings.TrimPrefix(strings.TrimSpace(name), "@")
	if name == "" {
		return Unresolved
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		return Resolution{Namespace: name[:i], Resolved: true}
	}
	if ns, ok := r.single[name]; ok {
		return Resolution{Namespace: ns, Resolved: true}
	}
	if javaLang[name] {
		return Resolution{Namespace: "java.lang", Resolved: true}
	}
	if r.local[name] {
		return Resolution{Namespace: r.pkg, Resolved: true}
	}
	if len(r.onDemand) == 1 {
		return Resolution{Namespace: r.onDemand[0], Resolved: true}
	}
	return Unresolved
}

// InNamespace reports whether ns equals one of namespaces or lies below it.
func InNamespace(ns string, namespaces []string) bool {
	for _, want := range namespaces {
		if ns == want || strings.HasPrefix(ns, want+".") {
			return true
		}
	}
	return false
}
