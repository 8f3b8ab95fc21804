// Package unused reports private members, and public methods of interface
// implementations, that nothing else in the declaring type refers to.
//
// Evidence of use is textual co-occurrence inside the primary declaration of
// the file; no symbols are resolved.
package unused

import (
	"log/slog"

	"github.com/panbanda/codeline/pkg/models"
	"github.com/panbanda/codeline/pkg/source"
	"github.com/panbanda/codeline/pkg/syntax"
)

// Rule is the unused-member rule driver.
type Rule struct {
	policy        *Policy
	publicMethods bool
	builder       ViolationBuilder
	logger        *slog.Logger
}

// Option is a functional option for configuring Rule.
type Option func(*Rule)

// WithPolicy replaces the default exclusion policy.
func WithPolicy(p *Policy) Option {
	return func(r *Rule) {
		r.policy = p
	}
}

// WithPublicMethods toggles the unused public method check.
func WithPublicMethods(enabled bool) Option {
	return func(r *Rule) {
		r.publicMethods = enabled
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Rule) {
		r.logger = l
	}
}

// New creates the rule with the default policy.
func New(opts ...Option) *Rule {
	r := &Rule{
		publicMethods: true,
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.policy == nil {
		r.policy = DefaultPolicy()
	}
	r.builder = NewViolationBuilder(r.policy.Config())
	return r
}

// Name implements analyzer.Rule.
func (r *Rule) Name() string { return models.RuleUnused }

// CheckTree implements analyzer.TreeRule.
func (r *Rule) CheckTree(file *source.File, tree *syntax.Tree) []models.RuleResult {
	vs := r.Find(file, tree)
	if len(vs) == 0 {
		return []models.RuleResult{models.Pass(r.Name(), file.DisplayPath())}
	}
	results := make([]models.RuleResult, len(vs))
	for i, v := range vs {
		results[i] = models.Fail(v)
	}
	return results
}

// Find returns the violations of file in member order.
func (r *Rule) Find(file *source.File, tree *syntax.Tree) []models.Violation {
	decl, ok := FindPrimary(tree, file.BaseName())
	if !ok {
		r.logger.Debug("no primary declaration", "file", file.DisplayPath())
		return nil
	}

	var scanner *Scanner
	var out []models.Violation
	for _, c := range decl.Candidates(r.publicMethods) {
		if reason, excluded := r.policy.Reason(c); excluded {
			r.logger.Debug("member excluded", "file", file.DisplayPath(), "member", c.Name, "rule", reason)
			continue
		}
		if scanner == nil {
			scanner = NewScanner(decl)
		}
		if scanner.Unused(c) {
			out = append(out, r.builder.Build(file, c))
		}
	}
	return out
}
