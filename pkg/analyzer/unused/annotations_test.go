package unused

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/panbanda/codeline/pkg/syntax"
)

func TestAnnotationResolver_Resolve(t *testing.T) {
	unit := &syntax.Unit{
		Package: "com.acme",
		Imports: []syntax.Import{
			{Name: "org.junit.Before"},
			{Name: "org.junit.Assert.assertEquals", Static: true},
			{Name: "org.testng.annotations", OnDemand: true},
		},
		AnnotationTypes: map[string]bool{"Marker": true},
	}
	r := NewAnnotationResolver(unit)

	tests := []struct {
		name string
		want Resolution
	}{
		{"org.junit.jupiter.api.Test", Resolution{Namespace: "org.junit.jupiter.api", Resolved: true}},
		{"@Before", Resolution{Namespace: "org.junit", Resolved: true}},
		{"Override", Resolution{Namespace: "java.lang", Resolved: true}},
		{"Marker", Resolution{Namespace: "com.acme", Resolved: true}},
		{"BeforeClass", Resolution{Namespace: "org.testng.annotations", Resolved: true}},
		{"assertEquals", Resolution{Namespace: "org.testng.annotations", Resolved: true}},
		{"", Unresolved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.name))
		})
	}
}

func TestAnnotationResolver_Unresolved(t *testing.T) {
	tests := []struct {
		name string
		unit *syntax.Unit
	}{
		{"nil unit", nil},
		{"no imports", &syntax.Unit{Package: "com.acme"}},
		{"two on-demand imports", &syntax.Unit{Imports: []syntax.Import{
			{Name: "org.junit", OnDemand: true},
			{Name: "org.mockito", OnDemand: true},
		}}},
		{"static on-demand only", &syntax.Unit{Imports: []syntax.Import{
			{Name: "org.junit.Assert", OnDemand: true, Static: true},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Unresolved, NewAnnotationResolver(tt.unit).Resolve("Before"))
		})
	}
}

func TestInNamespace(t *testing.T) {
	namespaces := []string{"org.junit", "org.testng.annotations"}

	assert.True(t, InNamespace("org.junit", namespaces))
	assert.True(t, InNamespace("org.junit.jupiter.api", namespaces))
	assert.True(t, InNamespace("org.testng.annotations", namespaces))
	assert.False(t, InNamespace("org.junitx", namespaces))
	assert.False(t, InNamespace("org.testng", namespaces))
	assert.False(t, InNamespace("", namespaces))
}
