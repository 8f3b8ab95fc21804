// Package check runs the configured rules over a source tree and folds the
// results into a single pass or fail decision.
package check

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/panbanda/codeline/internal/fileproc"
	"github.com/panbanda/codeline/internal/scanner"
	"github.com/panbanda/codeline/pkg/analyzer"
	"github.com/panbanda/codeline/pkg/analyzer/imports"
	"github.com/panbanda/codeline/pkg/analyzer/pattern"
	"github.com/panbanda/codeline/pkg/analyzer/unused"
	"github.com/panbanda/codeline/pkg/config"
	"github.com/panbanda/codeline/pkg/models"
	"github.com/panbanda/codeline/pkg/parser"
	"github.com/panbanda/codeline/pkg/source"
	"github.com/panbanda/codeline/pkg/syntax"
)

// ErrNoSourceRoot is returned when the source directory is unset, missing
// or not a directory. Nothing is checked in that case.
var ErrNoSourceRoot = errors.New("no source root")

// FailureError is the aggregate error of a failed check. It lists every
// violation found.
type FailureError struct {
	Violations []models.Violation
}

func (e *FailureError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d code enforcer violations found", len(e.Violations))
	for _, v := range e.Violations {
		b.WriteString("\n")
		b.WriteString(v.String())
	}
	return b.String()
}

// Result is the outcome of one check run.
type Result struct {
	Violations []models.Violation  `json:"violations"`
	Summary    models.CheckSummary `json:"summary"`
}

// Passed reports whether the run found no violation.
func (r *Result) Passed() bool {
	return len(r.Violations) == 0
}

// ByFile groups the violations by reported path.
func (r *Result) ByFile() []models.FileViolations {
	return models.GroupByFile(r.Violations)
}

// Err returns a *FailureError when the run failed and nil otherwise.
func (r *Result) Err() error {
	if r.Passed() {
		return nil
	}
	return &FailureError{Violations: r.Violations}
}

// Service orchestrates a check run.
type Service struct {
	config     *config.Config
	source     source.ContentSource
	scanner    *scanner.Scanner
	textRules  []analyzer.TextRule
	treeRules  []analyzer.TreeRule
	reportRoot string
	logger     *slog.Logger
}

var _ analyzer.FileAnalyzer[*Result] = (*Service)(nil)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for debug and progress messages.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithContentSource replaces the filesystem reader (for testing).
func WithContentSource(src source.ContentSource) Option {
	return func(s *Service) {
		s.source = src
	}
}

// New creates a check service and registers the rules cfg enables. The
// configuration is only read, never modified.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Service{
		config:     cfg,
		source:     source.NewFilesystem(),
		reportRoot: cfg.ReportRoot,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reportRoot == "" {
		s.reportRoot = "."
	}
	s.scanner = scanner.NewScanner(cfg, s.logger)

	if len(cfg.Patterns) > 0 {
		r, err := pattern.New(cfg.Patterns)
		if err != nil {
			return nil, fmt.Errorf("patterns: %w", err)
		}
		s.textRules = append(s.textRules, r)
	}
	if len(cfg.Classes) > 0 {
		r, err := imports.New(cfg.Classes)
		if err != nil {
			return nil, fmt.Errorf("classes: %w", err)
		}
		s.treeRules = append(s.treeRules, r)
	}
	if cfg.CheckPrivates {
		policy, err := unused.NewPolicy(policyConfig(cfg.Unused))
		if err != nil {
			return nil, fmt.Errorf("unused: %w", err)
		}
		s.treeRules = append(s.treeRules, unused.New(
			unused.WithPolicy(policy),
			unused.WithPublicMethods(cfg.Unused.PublicMethods),
			unused.WithLogger(s.logger),
		))
	}
	return s, nil
}

func policyConfig(c config.UnusedConfig) unused.PolicyConfig {
	return unused.PolicyConfig{
		SerializationFields:   c.SerializationFields,
		SuppressionAnnotation: c.SuppressionAnnotation,
		SuppressionValue:      c.SuppressionValue,
		AccessorPattern:       c.AccessorPattern,
		TestNamespaces:        c.TestNamespaces,
	}
}

// Rules returns the names of the registered rules in execution order.
func (s *Service) Rules() []string {
	names := make([]string, 0, len(s.textRules)+len(s.treeRules))
	for _, r := range s.textRules {
		names = append(names, r.Name())
	}
	for _, r := range s.treeRules {
		names = append(names, r.Name())
	}
	return names
}

// RunOptions configures a Run.
type RunOptions struct {
	// OnStart is called with the number of files once the walk is done.
	OnStart    func(total int)
	OnProgress fileproc.ProgressFunc
}

// Run walks root and checks every collected file. A failed check is not an
// error: inspect Result.Err. Errors are fatal conditions such as a missing
// source root or an expired deadline.
func (s *Service) Run(ctx context.Context, root string, opts RunOptions) (*Result, error) {
	if err := sourceRoot(root); err != nil {
		return nil, err
	}

	ctx, cancel, err := s.withDeadline(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	s.logger.Debug("checking directory", "dir", root, "rules", s.Rules())
	files, err := s.scanner.ScanDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	if opts.OnStart != nil {
		opts.OnStart(len(files))
	}
	return s.analyze(ctx, files, opts.OnProgress)
}

// Analyze checks the given files without walking a directory.
func (s *Service) Analyze(ctx context.Context, files []string) (*Result, error) {
	ctx, cancel, err := s.withDeadline(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	return s.analyze(ctx, files, nil)
}

// Accepts reports whether a Run over root would check path.
func (s *Service) Accepts(root, path string) (bool, error) {
	return s.scanner.ScanFile(root, path)
}

// Close releases resources held by the service.
func (s *Service) Close() {}

func (s *Service) analyze(ctx context.Context, files []string, onProgress fileproc.ProgressFunc) (*Result, error) {
	start := time.Now()

	batches, errs := fileproc.MapFiles(ctx, files, s.config.Workers, func(psr *parser.Parser, path string) ([]models.RuleResult, error) {
		return s.CheckFile(psr, path), nil
	}, onProgress)
	if errs != nil {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("check timed out after %s: %w", s.config.Timeout, err)
			}
			return nil, fmt.Errorf("check interrupted: %w", err)
		}
		return nil, errs
	}

	var results []models.RuleResult
	for _, batch := range batches {
		results = append(results, batch...)
	}

	result := &Result{
		Violations: models.Violations(results),
		Summary:    models.NewCheckSummary(),
	}
	result.Summary.FilesChecked = len(files)
	for _, v := range result.Violations {
		result.Summary.Add(v)
	}

	s.logger.Info("check complete",
		"files", len(files),
		"violations", len(result.Violations),
		"duration", time.Since(start))
	return result, nil
}

// CheckFile runs every registered rule over one file. Java files are parsed
// at most once and the tree is shared by all tree rules. An unreadable or
// unparsable file becomes a single failure result; the check never stops.
func (s *Service) CheckFile(psr *parser.Parser, path string) []models.RuleResult {
	file, err := source.Load(s.source, s.reportRoot, path)
	if err != nil {
		display := source.RelativeTo(s.reportRoot, path)
		s.logger.Warn("failed to read file", "file", display, "error", err)
		msg := fmt.Sprintf("Failed to read file: %v", err)
		return []models.RuleResult{models.Fail(models.NewViolation(models.RuleRead, display, models.HomePosition, msg))}
	}
	s.logger.Debug("checking file", "file", file.DisplayPath())

	var results []models.RuleResult
	for _, r := range s.textRules {
		results = append(results, r.Check(file)...)
	}

	if len(s.treeRules) == 0 || parser.DetectLanguage(path) != parser.LangJava {
		return results
	}

	parsed, err := psr.Parse(file.Content, parser.LangJava, path)
	if err != nil {
		pos := models.HomePosition
		var serr *parser.SyntaxError
		if errors.As(err, &serr) {
			pos = models.Position{Line: int(serr.Line), Column: int(serr.Column)}
		}
		s.logger.Debug("failed to parse file", "file", file.DisplayPath(), "error", err)
		msg := fmt.Sprintf("Failed to parse file: %v", err)
		return append(results, models.Fail(models.NewViolation(models.RuleParse, file.DisplayPath(), pos, msg)))
	}
	tree := syntax.FromParseResult(parsed)
	parsed.Close()

	for _, r := range s.treeRules {
		results = append(results, r.CheckTree(file, tree)...)
	}
	return results
}

func (s *Service) withDeadline(ctx context.Context) (context.Context, context.CancelFunc, error) {
	timeout, err := s.config.TimeoutDuration()
	if err != nil {
		return nil, nil, err
	}
	if timeout == 0 {
		ctx, cancel := context.WithCancel(ctx)
		return ctx, cancel, nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, cancel, nil
}

func sourceRoot(root string) error {
	if root == "" {
		return fmt.Errorf("%w: source directory not set", ErrNoSourceRoot)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoSourceRoot, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrNoSourceRoot, root)
	}
	return nil
}
