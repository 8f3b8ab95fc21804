package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
)

func TestNew(t *testing.T) {
	p := New()
	if p == nil {
		t.Fatal("New() returned nil")
	}
	if p.parser == nil {
		t.Error("parser field is nil")
	}
	p.Close()
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"Main.java", LangJava},
		{"src/main/java/com/acme/Widget.java", LangJava},
		{"Upper.JAVA", LangJava},
		{"Widget.java.orig", LangUnknown},
		{"main.go", LangUnknown},
		{"README.md", LangUnknown},
		{"file", LangUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DetectLanguage(tt.path); got != tt.want {
				t.Errorf("DetectLanguage(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestParseString(t *testing.T) {
	p := New()
	defer p.Close()

	result, err := p.ParseString(`package test;

public class Test {
    private String name = "";
}
`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	defer result.Close()

	root := result.Tree.RootNode()
	if root.Type() != "program" {
		t.Errorf("root type = %q, want program", root.Type())
	}

	classes := 0
	Walk(root, result.Source, func(node *sitter.Node, _ []byte) bool {
		if node.Type() == "class_declaration" {
			classes++
		}
		return true
	})
	if classes != 1 {
		t.Errorf("found %d class declarations, want 1", classes)
	}
}

func TestParse_SyntaxError(t *testing.T) {
	p := New()
	defer p.Close()

	result, err := p.Parse([]byte("public class Broken {\n  private int = ;\n}\n"), LangJava, "Broken.java")
	if err == nil {
		result.Close()
		t.Fatal("expected a syntax error")
	}
	if result != nil {
		t.Error("no tree should be returned for malformed input")
	}

	var serr *SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("error type = %T, want *SyntaxError", err)
	}
	if serr.Path != "Broken.java" {
		t.Errorf("Path = %q, want Broken.java", serr.Path)
	}
	if serr.Line < 1 {
		t.Errorf("Line = %d, want a 1-based line", serr.Line)
	}
}

func TestParse_UnsupportedLanguage(t *testing.T) {
	p := New()
	defer p.Close()

	if _, err := p.Parse([]byte("x"), LangUnknown, "x.txt"); err == nil {
		t.Error("expected error for unsupported language")
	}
}

func TestParseFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "Hello.java")
	if err := os.WriteFile(path, []byte("class Hello { void hi() {} }\n"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	p := New()
	defer p.Close()

	result, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	defer result.Close()

	if result.Language != LangJava {
		t.Errorf("Language = %v, want %v", result.Language, LangJava)
	}
	if result.Path != path {
		t.Errorf("Path = %q, want %q", result.Path, path)
	}
}

func TestParseFile_Missing(t *testing.T) {
	p := New()
	defer p.Close()

	if _, err := p.ParseFile("/nonexistent/Nope.java"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetNodeText(t *testing.T) {
	if got := GetNodeText(nil, []byte("abc")); got != "" {
		t.Errorf("GetNodeText(nil) = %q, want empty", got)
	}
}
