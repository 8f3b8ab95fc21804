package output

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/fatih/color"

	"github.com/panbanda/codeline/pkg/models"
)

// ViolationReport renders the violations of one check run grouped by file,
// followed by a per-rule summary.
type ViolationReport struct {
	Files   []models.FileViolations
	Summary models.CheckSummary
}

// NewViolationReport groups sorted violations by file.
func NewViolationReport(violations []models.Violation, summary models.CheckSummary) *ViolationReport {
	return &ViolationReport{
		Files:   models.GroupByFile(violations),
		Summary: summary,
	}
}

type reportData struct {
	Passed  bool                `json:"passed" toon:"passed"`
	Summary models.CheckSummary `json:"summary" toon:"summary"`
	Files   []reportFile        `json:"files" toon:"files"`
}

type reportFile struct {
	File       string            `json:"file" toon:"file"`
	Violations []reportViolation `json:"violations" toon:"violations"`
}

// reportViolation adds a fingerprint so structured reports can be diffed
// against a baseline across runs.
type reportViolation struct {
	Rule        string `json:"rule" toon:"rule"`
	Line        int    `json:"line" toon:"line"`
	Column      int    `json:"column" toon:"column"`
	Member      string `json:"member,omitempty" toon:"member"`
	Message     string `json:"message" toon:"message"`
	Fingerprint string `json:"fingerprint" toon:"fingerprint"`
}

func (r *ViolationReport) RenderData() any {
	files := make([]reportFile, 0, len(r.Files))
	for _, group := range r.Files {
		vs := make([]reportViolation, 0, len(group.Violations))
		for _, v := range group.Violations {
			vs = append(vs, reportViolation{
				Rule:        v.Rule,
				Line:        v.Line,
				Column:      v.Column,
				Member:      v.Member,
				Message:     v.Message,
				Fingerprint: v.Fingerprint(),
			})
		}
		files = append(files, reportFile{File: group.File, Violations: vs})
	}
	return reportData{
		Passed:  r.Summary.Violations == 0,
		Summary: r.Summary,
		Files:   files,
	}
}

func (r *ViolationReport) RenderText(w io.Writer, colored bool) error {
	heading := color.New(color.Bold, color.FgYellow)
	for _, group := range r.Files {
		if colored {
			heading.Fprintf(w, "Violations in: %s\n", group.File)
		} else {
			fmt.Fprintf(w, "Violations in: %s\n", group.File)
		}
		for _, v := range group.Violations {
			fmt.Fprintf(w, "    %s\n", v)
		}
		fmt.Fprintln(w)
	}
	return r.summaryTable().RenderText(w, colored)
}

func (r *ViolationReport) RenderMarkdown(w io.Writer) error {
	for _, group := range r.Files {
		fmt.Fprintf(w, "### Violations in: `%s`\n\n", group.File)
		for _, v := range group.Violations {
			fmt.Fprintf(w, "- `%s`: %s\n", v.Location(), v.Message)
		}
		fmt.Fprintln(w)
	}
	return r.summaryTable().RenderMarkdown(w)
}

func (r *ViolationReport) summaryTable() *Table {
	rules := make([]string, 0, len(r.Summary.ByRule))
	for rule := range r.Summary.ByRule {
		rules = append(rules, rule)
	}
	slices.Sort(rules)

	rows := make([][]string, 0, len(rules))
	for _, rule := range rules {
		rows = append(rows, []string{rule, strconv.Itoa(r.Summary.ByRule[rule])})
	}
	footer := []string{
		fmt.Sprintf("Total (%d files checked)", r.Summary.FilesChecked),
		strconv.Itoa(r.Summary.Violations),
	}
	return NewTable("Summary", []string{"Rule", "Violations"}, rows, footer, nil)
}
