package source

import (
	"os"
	"path/filepath"
	"strings"
)

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// File is a source file and its raw content. Identity is the path.
// A File is never modified after it has been loaded.
type File struct {
	Path    string
	Content []byte

	// Display is the path used in reports, usually relative to the report root.
	Display string
}

// Load reads path from src. The display path is path relative to root when
// path lies beneath root.
func Load(src ContentSource, root, path string) (*File, error) {
	content, err := src.Read(path)
	if err != nil {
		return nil, err
	}
	return &File{
		Path:    path,
		Content: content,
		Display: RelativeTo(root, path),
	}, nil
}

// FromString builds an in-memory file, mostly for tests and literal snippets.
func FromString(path, text string) *File {
	return &File{Path: path, Content: []byte(text), Display: path}
}

// DisplayPath returns the report path, falling back to Path.
func (f *File) DisplayPath() string {
	if f.Display != "" {
		return f.Display
	}
	return f.Path
}

// BaseName returns the file name without its extension.
func (f *File) BaseName() string {
	base := filepath.Base(f.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Lines splits the content into lines. "\n", "\r\n" and a lone "\r" all
// terminate a line; a trailing terminator does not produce an empty line.
func (f *File) Lines() []string {
	if len(f.Content) == 0 {
		return nil
	}
	text := strings.ReplaceAll(string(f.Content), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// RelativeTo expresses path relative to root when it is beneath root and
// returns the absolute path otherwise.
func RelativeTo(root, path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if root == "" {
		return absPath
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return absPath
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return absPath
	}
	return rel
}
