package analyzer

import (
	"context"

	"github.com/panbanda/codeline/pkg/models"
	"github.com/panbanda/codeline/pkg/source"
	"github.com/panbanda/codeline/pkg/syntax"
)

// FileAnalyzer is the interface that all file-based analyzers must implement.
// It provides a standard way to analyze collections of files with context support.
type FileAnalyzer[T any] interface {
	// Analyze processes a collection of files and returns the analysis result.
	// The context can be used for cancellation and progress reporting.
	Analyze(ctx context.Context, files []string) (T, error)

	// Close releases any resources held by the analyzer.
	Close()
}

// Rule is one checking strategy. Rules are pure: the same file always
// yields the same results, and a rule never returns an error. Problems a
// rule cannot check around become failure results.
type Rule interface {
	Name() string
}

// TextRule checks the raw lines of any file.
type TextRule interface {
	Rule
	Check(file *source.File) []models.RuleResult
}

// TreeRule checks the syntax tree of a Java file. The tree is parsed once
// per file and shared by every tree rule.
type TreeRule interface {
	Rule
	CheckTree(file *source.File, tree *syntax.Tree) []models.RuleResult
}
