package models

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"

	"github.com/zeebo/blake3"
)

// Rule names carried by violations.
const (
	RulePattern = "pattern"
	RuleImport  = "import"
	RuleUnused  = "unused"
	RuleParse   = "parse"
	RuleRead    = "read"
)

// Position is a 1-based line and column.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// HomePosition is used when the parser could not supply a position.
var HomePosition = Position{Line: 1, Column: 1}

// Violation is a reportable policy failure with its source location.
// Violations are comparable; equal values describe the same finding.
type Violation struct {
	Rule        string `json:"rule"`
	File        string `json:"file"`
	Line        int    `json:"line"`
	Column      int    `json:"column"`
	Member      string `json:"member,omitempty"`      // member or imported symbol
	Declaration string `json:"declaration,omitempty"` // rendered source of the offending node
	Message     string `json:"message"`
}

// NewViolation creates a violation at pos.
func NewViolation(rule, file string, pos Position, message string) Violation {
	if pos.Line < 1 || pos.Column < 1 {
		pos = HomePosition
	}
	return Violation{
		Rule:    rule,
		File:    file,
		Line:    pos.Line,
		Column:  pos.Column,
		Message: message,
	}
}

// Position returns the violation position.
func (v Violation) Position() Position {
	return Position{Line: v.Line, Column: v.Column}
}

// Location renders path:line:col.
func (v Violation) Location() string {
	return v.File + ":" + strconv.Itoa(v.Line) + ":" + strconv.Itoa(v.Column)
}

// String renders the single report line for the violation.
func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Location(), v.Message)
}

// Fingerprint is a stable BLAKE3 digest of the violation identity. It does
// not include the rendered declaration, so reformatting a member body keeps
// the fingerprint.
func (v Violation) Fingerprint() string {
	h := blake3.New()
	for _, part := range []string{v.Rule, v.File, strconv.Itoa(v.Line), strconv.Itoa(v.Column), v.Member, v.Message} {
		_, _ = h.Write([]byte(part))
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// RuleResult is the outcome of one rule on one file: a pass carrying the
// checked file, or a failure carrying a violation.
type RuleResult struct {
	Rule      string     `json:"rule"`
	File      string     `json:"file"`
	Violation *Violation `json:"violation,omitempty"`
}

// Pass records that rule found nothing in file.
func Pass(rule, file string) RuleResult {
	return RuleResult{Rule: rule, File: file}
}

// Fail records a violation.
func Fail(v Violation) RuleResult {
	return RuleResult{Rule: v.Rule, File: v.File, Violation: &v}
}

// Failed reports whether the result carries a violation.
func (r RuleResult) Failed() bool {
	return r.Violation != nil
}

// Violations folds results into their distinct violations, sorted by file,
// line, column and rule.
func Violations(results []RuleResult) []Violation {
	seen := make(map[Violation]struct{})
	var out []Violation
	for _, r := range results {
		if !r.Failed() {
			continue
		}
		v := *r.Violation
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	SortViolations(out)
	return out
}

// SortViolations orders violations by file, line, column, rule and member.
func SortViolations(vs []Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Member < b.Member
	})
}

// FileViolations is the set of violations found in one file.
type FileViolations struct {
	File       string      `json:"file"`
	Violations []Violation `json:"violations"`
}

// GroupByFile groups sorted violations by file, preserving order.
func GroupByFile(vs []Violation) []FileViolations {
	var groups []FileViolations
	for _, v := range vs {
		if n := len(groups); n > 0 && groups[n-1].File == v.File {
			groups[n-1].Violations = append(groups[n-1].Violations, v)
			continue
		}
		groups = append(groups, FileViolations{File: v.File, Violations: []Violation{v}})
	}
	return groups
}

// CheckSummary provides aggregate statistics for one run.
type CheckSummary struct {
	FilesChecked int            `json:"files_checked"`
	Violations   int            `json:"violations"`
	ByRule       map[string]int `json:"by_rule"`
	ByFile       map[string]int `json:"by_file"`
}

// NewCheckSummary creates an initialized summary.
func NewCheckSummary() CheckSummary {
	return CheckSummary{
		ByRule: make(map[string]int),
		ByFile: make(map[string]int),
	}
}

// Add updates the summary with a violation.
func (s *CheckSummary) Add(v Violation) {
	s.Violations++
	s.ByRule[v.Rule]++
	s.ByFile[v.File]++
}
