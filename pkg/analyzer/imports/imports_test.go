package imports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/codeline/pkg/models"
	"github.com/panbanda/codeline/pkg/parser"
	"github.com/panbanda/codeline/pkg/source"
	"github.com/panbanda/codeline/pkg/syntax"
)

func check(t *testing.T, exprs []string, src string) []models.RuleResult {
	t.Helper()
	rule, err := New(exprs)
	require.NoError(t, err)

	p := parser.New()
	defer p.Close()
	result, err := p.ParseString(src)
	require.NoError(t, err)
	defer result.Close()

	return rule.CheckTree(source.FromString("Main.java", src), syntax.FromParseResult(result))
}

func TestRule_BannedImport(t *testing.T) {
	results := check(t, []string{`java\.util\.Vector`}, `package demo;

import java.util.List;
import java.util.Vector;

class Main {}
`)

	require.Len(t, results, 1)
	require.True(t, results[0].Failed())

	v := results[0].Violation
	assert.Equal(t, models.RuleImport, v.Rule)
	assert.Equal(t, "java.util.Vector", v.Member)
	assert.Equal(t, 4, v.Line)
	assert.Equal(t, 1, v.Column)
	assert.Equal(t, "Illegal class import - java.util.Vector", v.Message)
	assert.Equal(t, "import java.util.Vector;", v.Declaration)
}

func TestRule_ReportsAllMatches(t *testing.T) {
	results := check(t, []string{`sun\..*`, `.*\.Vector`}, `import sun.misc.Unsafe;
import sun.misc.BASE64Encoder;
import java.util.Vector;

class Main {}
`)

	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.Failed())
	}
}

func TestRule_FullMatchOnly(t *testing.T) {
	results := check(t, []string{`java\.util`}, `import java.util.List;

class Main {}
`)

	require.Len(t, results, 1)
	assert.False(t, results[0].Failed(), "a prefix of the import name is not a match")
}

func TestRule_StaticAndOnDemand(t *testing.T) {
	results := check(t, []string{`org\.junit\.Assert`, `org\.mockito`}, `import static org.junit.Assert.assertEquals;
import static org.junit.Assert.*;
import org.mockito.*;

class Main {}
`)

	var members []string
	for _, r := range results {
		require.True(t, r.Failed())
		members = append(members, r.Violation.Member)
	}
	assert.Equal(t, []string{"org.junit.Assert", "org.mockito"}, members)
}

func TestRule_NoClasses(t *testing.T) {
	results := check(t, nil, "import java.util.Vector;\nclass Main {}\n")
	require.Len(t, results, 1)
	assert.False(t, results[0].Failed())
}

func TestNew_InvalidExpression(t *testing.T) {
	_, err := New([]string{"[oops"})
	assert.Error(t, err)
}
