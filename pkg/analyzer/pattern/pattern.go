// Package pattern flags source lines matching forbidden regular expressions.
package pattern

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/panbanda/codeline/pkg/models"
	"github.com/panbanda/codeline/pkg/source"
)

// Rule reports every line matching any of its patterns. When several
// patterns match one line only the first is reported.
type Rule struct {
	patterns []*regexp.Regexp
}

// New compiles exprs in order.
func New(exprs []string) (*Rule, error) {
	r := &Rule{patterns: make([]*regexp.Regexp, 0, len(exprs))}
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", expr, err)
		}
		r.patterns = append(r.patterns, re)
	}
	return r, nil
}

// Name implements analyzer.Rule.
func (r *Rule) Name() string { return models.RulePattern }

// Len returns the number of patterns.
func (r *Rule) Len() int { return len(r.patterns) }

// Check implements analyzer.TextRule.
func (r *Rule) Check(file *source.File) []models.RuleResult {
	var results []models.RuleResult
	for i, line := range file.Lines() {
		for _, re := range r.patterns {
			loc := re.FindStringIndex(line)
			if loc == nil {
				continue
			}
			pos := models.Position{Line: i + 1, Column: utf8.RuneCountInString(line[:loc[0]]) + 1}
			v := models.NewViolation(models.RulePattern, file.DisplayPath(), pos,
				fmt.Sprintf("Found pattern %q in line: %s", re.String(), strings.TrimSpace(line)))
			v.Member = re.String()
			v.Declaration = line
			results = append(results, models.Fail(v))
			break
		}
	}
	if len(results) == 0 {
		return []models.RuleResult{models.Pass(r.Name(), file.DisplayPath())}
	}
	return results
}
