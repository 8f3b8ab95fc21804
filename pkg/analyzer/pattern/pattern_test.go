package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/codeline/pkg/models"
	"github.com/panbanda/codeline/pkg/source"
)

func TestRule_Println(t *testing.T) {
	rule, err := New([]string{"println"})
	require.NoError(t, err)

	file := source.FromString("Main.java", `public class Main {
    void run() {
        System.out.println("debug");
    }
}
`)

	results := rule.Check(file)
	require.Len(t, results, 1)
	require.True(t, results[0].Failed())

	v := results[0].Violation
	assert.Equal(t, models.RulePattern, v.Rule)
	assert.Equal(t, 3, v.Line)
	assert.Equal(t, 20, v.Column)
	assert.Equal(t, "println", v.Member)
	assert.Equal(t, `Found pattern "println" in line: System.out.println("debug");`, v.Message)
}

func TestRule_FirstPatternPerLine(t *testing.T) {
	rule, err := New([]string{"TODO", "FIXME"})
	require.NoError(t, err)

	file := source.FromString("Notes.txt", "// TODO FIXME\n// FIXME later\nclean\n")

	results := rule.Check(file)
	require.Len(t, results, 2)
	assert.Equal(t, "TODO", results[0].Violation.Member)
	assert.Equal(t, 1, results[0].Violation.Line)
	assert.Equal(t, "FIXME", results[1].Violation.Member)
	assert.Equal(t, 2, results[1].Violation.Line)
}

func TestRule_NoMatch(t *testing.T) {
	rule, err := New([]string{"println"})
	require.NoError(t, err)

	results := rule.Check(source.FromString("A.java", "class A {}\n"))
	require.Len(t, results, 1)
	assert.False(t, results[0].Failed())
}

func TestRule_NoPatterns(t *testing.T) {
	rule, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, rule.Len())

	results := rule.Check(source.FromString("A.java", "System.out.println();\n"))
	require.Len(t, results, 1)
	assert.False(t, results[0].Failed())
}

func TestRule_UnicodeColumn(t *testing.T) {
	rule, err := New([]string{"bad"})
	require.NoError(t, err)

	results := rule.Check(source.FromString("A.java", "// héllo bad\n"))
	require.Len(t, results, 1)
	assert.Equal(t, 10, results[0].Violation.Column)
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New([]string{"ok", "(unclosed"})
	assert.ErrorContains(t, err, "(unclosed")
}
