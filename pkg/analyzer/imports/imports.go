// Package imports flags Java imports of banned classes.
package imports

import (
	"fmt"
	"regexp"

	"github.com/panbanda/codeline/pkg/models"
	"github.com/panbanda/codeline/pkg/source"
	"github.com/panbanda/codeline/pkg/syntax"
)

// Rule reports every import whose qualified name fully matches one of the
// banned class expressions.
type Rule struct {
	classes []*regexp.Regexp
}

// New compiles exprs, each anchored to match a whole import name.
func New(exprs []string) (*Rule, error) {
	r := &Rule{classes: make([]*regexp.Regexp, 0, len(exprs))}
	for _, expr := range exprs {
		re, err := regexp.Compile(`^(?:` + expr + `)$`)
		if err != nil {
			return nil, fmt.Errorf("invalid class expression %q: %w", expr, err)
		}
		r.classes = append(r.classes, re)
	}
	return r, nil
}

// Name implements analyzer.Rule.
func (r *Rule) Name() string { return models.RuleImport }

// Len returns the number of class expressions.
func (r *Rule) Len() int { return len(r.classes) }

// Banned reports whether name matches a class expression.
func (r *Rule) Banned(name string) bool {
	for _, re := range r.classes {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// CheckTree implements analyzer.TreeRule.
func (r *Rule) CheckTree(file *source.File, tree *syntax.Tree) []models.RuleResult {
	var results []models.RuleResult
	for _, imp := range tree.JavaUnit().Imports {
		if !r.Banned(imp.Name) {
			continue
		}
		pos := models.HomePosition
		if line, col, ok := tree.Position(imp.Node); ok {
			pos = models.Position{Line: line, Column: col}
		}
		v := models.NewViolation(models.RuleImport, file.DisplayPath(), pos,
			fmt.Sprintf("Illegal class import - %s", imp.Name))
		v.Member = imp.Name
		v.Declaration = tree.Text(imp.Node)
		results = append(results, models.Fail(v))
	}
	if len(results) == 0 {
		return []models.RuleResult{models.Pass(r.Name(), file.DisplayPath())}
	}
	return results
}
