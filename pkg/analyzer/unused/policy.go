package unused

import (
	"fmt"
	"regexp"
	"slices"
)

// PolicyConfig holds the tunables of the default exclusion rules.
type PolicyConfig struct {
	SerializationFields   []string
	SuppressionAnnotation string
	SuppressionValue      string
	AccessorPattern       string
	TestNamespaces        []string
}

// DefaultPolicyConfig returns the stock exclusion settings.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		SerializationFields:   []string{"serialVersionUID"},
		SuppressionAnnotation: "SuppressWarnings",
		SuppressionValue:      "unusedMember",
		AccessorPattern:       `^(get|set|is)[A-Z0-9_$]`,
		TestNamespaces:        []string{"org.junit", "org.junit.jupiter.api", "org.testng.annotations"},
	}
}

// ExclusionRule removes a candidate from consideration when Match is true.
// Match must be pure and must not look at member usage.
type ExclusionRule struct {
	Name  string
	Match func(c *Candidate) bool
}

// Policy is an ordered list of exclusion rules. The first matching rule
// excludes the candidate.
type Policy struct {
	cfg   PolicyConfig
	rules []ExclusionRule
}

// NewPolicy builds the default rule list from cfg.
func NewPolicy(cfg PolicyConfig) (*Policy, error) {
	accessor, err := regexp.Compile(cfg.AccessorPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid accessor pattern %q: %w", cfg.AccessorPattern, err)
	}

	p := &Policy{cfg: cfg}
	p.rules = []ExclusionRule{
		{Name: "serialization-marker", Match: func(c *Candidate) bool {
			return c.Kind == Field && slices.Contains(cfg.SerializationFields, c.Name)
		}},
		{Name: "override", Match: func(c *Candidate) bool {
			return c.Kind == Method && c.Annotated("Override")
		}},
		{Name: "suppressed", Match: func(c *Candidate) bool {
			for _, a := range c.Annotations {
				if (a.Name == cfg.SuppressionAnnotation || a.SimpleName() == cfg.SuppressionAnnotation) &&
					slices.Contains(a.Values, cfg.SuppressionValue) {
					return true
				}
			}
			return false
		}},
		{Name: "accessor", Match: func(c *Candidate) bool {
			return c.Kind == Method && c.Visibility == Public && accessor.MatchString(c.Name)
		}},
		{Name: "test-hook", Match: func(c *Candidate) bool {
			for _, a := range c.Annotations {
				res := c.Decl.Resolver().Resolve(a.Name)
				if res.Resolved && InNamespace(res.Namespace, cfg.TestNamespaces) {
					return true
				}
			}
			return false
		}},
	}
	return p, nil
}

// DefaultPolicy returns the policy built from DefaultPolicyConfig.
func DefaultPolicy() *Policy {
	p, err := NewPolicy(DefaultPolicyConfig())
	if err != nil {
		panic(err)
	}
	return p
}

// With returns a copy of the policy with extra rules appended.
func (p *Policy) With(rules ...ExclusionRule) *Policy {
	return &Policy{
		cfg:   p.cfg,
		rules: append(slices.Clip(p.rules), rules...),
	}
}

// Config returns the settings the policy was built from.
func (p *Policy) Config() PolicyConfig { return p.cfg }

// Rules returns the rule names in evaluation order.
func (p *Policy) Rules() []string {
	names := make([]string, len(p.rules))
	for i, r := range p.rules {
		names[i] = r.Name
	}
	return names
}

// Excluded reports whether any rule matches the candidate.
func (p *Policy) Excluded(c *Candidate) bool {
	_, ok := p.Reason(c)
	return ok
}

// Reason returns the name of the first matching rule.
func (p *Policy) Reason(c *Candidate) (string, bool) {
	for _, r := range p.rules {
		if r.Match(c) {
			return r.Name, true
		}
	}
	return "", false
}
