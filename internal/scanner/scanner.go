package scanner

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/panbanda/codeline/pkg/config"
)

// Scanner finds the files of a source tree.
type Scanner struct {
	config   *config.Config
	matchers []gitignore.Matcher
	logger   *slog.Logger
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config, logger *slog.Logger) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scanner{config: cfg, logger: logger}
}

// IsAcceptable reports whether a file name is checked at all. Hidden files,
// editor lock files and merge or swap leftovers are not.
func IsAcceptable(name string) bool {
	switch {
	case name == "":
		return false
	case strings.HasPrefix(name, "."), strings.HasPrefix(name, "#"):
		return false
	case strings.HasSuffix(name, ".orig"), strings.HasSuffix(name, ".swp"):
		return false
	}
	return true
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadGitignore reads every .gitignore of the enclosing repository. Patterns
// are matched against paths relative to the repository root.
func (s *Scanner) loadGitignore(absRoot string) (gitRoot string) {
	s.matchers = nil
	if !s.config.Walk.Gitignore {
		return ""
	}
	gitRoot = findGitRoot(absRoot)
	if gitRoot == "" {
		s.logger.Debug("walk.gitignore set but no repository found", "root", absRoot)
		return ""
	}
	patterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil)
	if err != nil {
		s.logger.Warn("failed to read .gitignore files", "repository", gitRoot, "error", err)
		return ""
	}
	if len(patterns) > 0 {
		s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
	}
	return gitRoot
}

func (s *Scanner) isIgnored(gitRoot, absPath string, isDir bool) bool {
	if len(s.matchers) == 0 || gitRoot == "" {
		return false
	}
	rel, err := filepath.Rel(gitRoot, absPath)
	if err != nil {
		return false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	for _, m := range s.matchers {
		if m.Match(parts, isDir) {
			return true
		}
	}
	return false
}

// ScanDir recursively collects every acceptable regular file below root in
// lexical order. Directories are always entered unless walk.exclude or
// walk.gitignore prune them. Symlinks escaping root are skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 256)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	gitRoot := s.loadGitignore(absRoot)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Debug("skipping unreadable path", "path", path, "error", err)
			return nil
		}

		relPath, _ := filepath.Rel(root, path)

		// Security: validate path stays within root (prevent symlink traversal)
		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				return nil
			}
			info, err := os.Stat(resolved)
			if err != nil || !info.Mode().IsRegular() {
				return nil
			}
		}

		absPath := filepath.Join(absRoot, relPath)
		if d.IsDir() {
			if relPath != "." && (s.config.ShouldExclude(relPath) || s.isIgnored(gitRoot, absPath, true)) {
				s.logger.Debug("pruned directory", "dir", relPath)
				return filepath.SkipDir
			}
			s.logger.Debug("checking directory", "dir", path)
			return nil
		}

		if !IsAcceptable(d.Name()) {
			return nil
		}
		if s.config.ShouldExclude(relPath) || s.isIgnored(gitRoot, absPath, false) {
			return nil
		}
		if d.Type()&fs.ModeSymlink == 0 && !d.Type().IsRegular() {
			return nil
		}

		s.logger.Debug("checking file", "file", path)
		files = append(files, path)
		return nil
	})

	return files, walkErr
}

// isWithinRoot checks if a path is contained within the root directory.
// Returns false if the path escapes via symlinks or relative paths.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// ScanFile checks if a single file below root would be collected by ScanDir.
func (s *Scanner) ScanFile(root, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if !info.Mode().IsRegular() || !IsAcceptable(info.Name()) {
		return false, nil
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false, err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	if !isWithinRoot(absPath, absRoot) {
		return false, nil
	}

	relPath, _ := filepath.Rel(absRoot, absPath)
	for dir := filepath.Dir(relPath); dir != "." && dir != string(filepath.Separator); dir = filepath.Dir(dir) {
		if s.config.ShouldExclude(dir) {
			return false, nil
		}
	}
	if s.config.ShouldExclude(relPath) {
		return false, nil
	}

	if s.config.Walk.Gitignore {
		if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
			absRoot = resolved
		}
		gitRoot := s.loadGitignore(absRoot)
		if s.isIgnored(gitRoot, filepath.Join(absRoot, relPath), false) {
			return false, nil
		}
	}
	return true, nil
}
