package unused

import (
	"fmt"

	"github.com/panbanda/codeline/pkg/models"
	"github.com/panbanda/codeline/pkg/source"
)

// ViolationBuilder renders unused candidates as violations.
type ViolationBuilder struct {
	SuppressionAnnotation string
	SuppressionValue      string
}

// NewViolationBuilder uses the suppression marker of cfg in its hint.
func NewViolationBuilder(cfg PolicyConfig) ViolationBuilder {
	return ViolationBuilder{
		SuppressionAnnotation: cfg.SuppressionAnnotation,
		SuppressionValue:      cfg.SuppressionValue,
	}
}

// Message returns the report text for c.
func (b ViolationBuilder) Message(c *Candidate) string {
	return fmt.Sprintf("Unused %s %s %q - remove it or annotate with @%s(%q)",
		c.Visibility, c.Kind, c.Name, b.SuppressionAnnotation, b.SuppressionValue)
}

// Build produces the violation for an unused candidate in file.
func (b ViolationBuilder) Build(file *source.File, c *Candidate) models.Violation {
	pos := models.HomePosition
	if line, col, ok := c.Decl.Tree.Position(c.Node); ok {
		pos = models.Position{Line: line, Column: col}
	}

	v := models.NewViolation(models.RuleUnused, file.DisplayPath(), pos, b.Message(c))
	v.Member = c.Name
	v.Declaration = c.Signature()
	return v
}
