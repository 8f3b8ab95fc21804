package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/panbanda/codeline/pkg/parser"
)

func TestMapFiles(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		createTestFile(t, tmpDir, "A.java", "class A {}"),
		createTestFile(t, tmpDir, "B.java", "class B {}"),
		createTestFile(t, tmpDir, "C.java", "class C {}"),
	}

	results, errs := MapFiles(context.Background(), files, 2, func(p *parser.Parser, path string) (string, error) {
		return filepath.Base(path), nil
	}, nil)

	if errs != nil {
		t.Errorf("Unexpected errors: %v", errs)
	}
	if len(results) != len(files) {
		t.Errorf("Expected %d results, got %d", len(files), len(results))
	}

	resultMap := make(map[string]bool)
	for _, r := range results {
		resultMap[r] = true
	}
	for _, expected := range []string{"A.java", "B.java", "C.java"} {
		if !resultMap[expected] {
			t.Errorf("Missing expected result: %s", expected)
		}
	}
}

func TestMapFiles_EmptyFileList(t *testing.T) {
	results, errs := MapFiles(context.Background(), []string{}, 0, func(p *parser.Parser, path string) (string, error) {
		return path, nil
	}, nil)

	if results != nil {
		t.Errorf("Expected nil for empty file list, got %v", results)
	}
	if errs != nil {
		t.Errorf("Expected nil errors for empty file list, got %v", errs)
	}
}

func TestMapFiles_WithErrors(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		createTestFile(t, tmpDir, "Good1.java", "class Good1 {}"),
		createTestFile(t, tmpDir, "Bad.java", "class Bad {}"),
		createTestFile(t, tmpDir, "Good2.java", "class Good2 {}"),
	}

	var processed atomic.Int32
	results, errs := MapFiles(context.Background(), files, 0, func(p *parser.Parser, path string) (string, error) {
		processed.Add(1)
		if filepath.Base(path) == "Bad.java" {
			return "", fmt.Errorf("simulated error")
		}
		return filepath.Base(path), nil
	}, nil)

	if int(processed.Load()) != 3 {
		t.Errorf("Expected all 3 files to be processed, got %d", processed.Load())
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 successful results (errors skipped), got %d", len(results))
	}
	if errs == nil {
		t.Fatal("Expected errors to be returned")
	}
	if len(errs.Errors) != 1 || filepath.Base(errs.Errors[0].Path) != "Bad.java" {
		t.Errorf("Expected one error for Bad.java, got %v", errs.Errors)
	}
}

func TestMapFiles_ParserPerTask(t *testing.T) {
	tmpDir := t.TempDir()
	files := make([]string, 8)
	for i := range files {
		files[i] = createTestFile(t, tmpDir, fmt.Sprintf("F%d.java", i), fmt.Sprintf("class F%d {}", i))
	}

	var mu sync.Mutex
	seen := make(map[*parser.Parser]bool)
	results, errs := MapFiles(context.Background(), files, 4, func(p *parser.Parser, path string) (bool, error) {
		if p == nil {
			return false, errors.New("nil parser")
		}
		mu.Lock()
		seen[p] = true
		mu.Unlock()

		result, err := p.ParseFile(path)
		if err != nil {
			return false, err
		}
		defer result.Close()
		return result.Tree != nil, nil
	}, nil)

	if errs != nil {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	for _, ok := range results {
		if !ok {
			t.Error("Expected every file to parse")
		}
	}
	if len(seen) != len(files) {
		t.Errorf("Expected a parser per task (%d), got %d", len(files), len(seen))
	}
}

func TestMapFiles_Progress(t *testing.T) {
	tmpDir := t.TempDir()
	files := []string{
		createTestFile(t, tmpDir, "A.java", "class A {}"),
		createTestFile(t, tmpDir, "B.java", "class B {}"),
	}

	var ticks atomic.Int32
	_, errs := MapFiles(context.Background(), files, 1, func(p *parser.Parser, path string) (int, error) {
		return 0, nil
	}, func() { ticks.Add(1) })

	if errs != nil {
		t.Errorf("Unexpected errors: %v", errs)
	}
	if ticks.Load() != 2 {
		t.Errorf("Expected 2 progress ticks, got %d", ticks.Load())
	}
}

func TestMapFiles_CanceledContext(t *testing.T) {
	tmpDir := t.TempDir()
	files := []string{
		createTestFile(t, tmpDir, "A.java", "class A {}"),
		createTestFile(t, tmpDir, "B.java", "class B {}"),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var called atomic.Int32
	results, errs := MapFiles(ctx, files, 1, func(p *parser.Parser, path string) (string, error) {
		called.Add(1)
		return path, nil
	}, nil)

	if called.Load() != 0 {
		t.Errorf("Expected no file to be processed after cancellation, got %d", called.Load())
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
	if errs == nil || len(errs.Errors) != len(files) {
		t.Fatalf("Expected %d context errors, got %v", len(files), errs)
	}
	if !errors.Is(errs, context.Canceled) {
		t.Error("Expected errors.Is(errs, context.Canceled)")
	}
}

func TestMapFiles_Cancellation(t *testing.T) {
	tmpDir := t.TempDir()

	fileCount := 100
	files := make([]string, fileCount)
	for i := 0; i < fileCount; i++ {
		files[i] = createTestFile(t, tmpDir, fmt.Sprintf("F%d.java", i), "class F {}")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var processed atomic.Int32
	go func() {
		for processed.Load() < 10 {
			runtime.Gosched()
		}
		cancel()
	}()

	results, errs := MapFiles(ctx, files, 2, func(p *parser.Parser, path string) (string, error) {
		processed.Add(1)
		for i := 0; i < 1000; i++ {
			runtime.Gosched()
		}
		return filepath.Base(path), nil
	}, nil)

	t.Logf("Processed %d files, got %d results", processed.Load(), len(results))

	errorCount := 0
	if errs != nil {
		errorCount = len(errs.Errors)
	}
	if len(results)+errorCount != fileCount {
		t.Errorf("Results (%d) + errors (%d) should equal file count (%d)",
			len(results), errorCount, fileCount)
	}
}

func TestWorkers(t *testing.T) {
	if got := Workers(3); got != 3 {
		t.Errorf("Workers(3) = %d, want 3", got)
	}
	want := runtime.NumCPU() * DefaultWorkerMultiplier
	if got := Workers(0); got != want {
		t.Errorf("Workers(0) = %d, want %d", got, want)
	}
	if got := Workers(-1); got != want {
		t.Errorf("Workers(-1) = %d, want %d", got, want)
	}
}

func TestProcessingError(t *testing.T) {
	inner := fmt.Errorf("read failed")
	err := ProcessingError{Path: "/src/Main.java", Err: inner}
	expected := "/src/Main.java: read failed"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, inner) {
		t.Error("ProcessingError should unwrap to its cause")
	}
}

func TestProcessingErrors(t *testing.T) {
	errs := &ProcessingErrors{}

	if errs.HasErrors() {
		t.Error("Empty ProcessingErrors should not have errors")
	}
	if errs.Error() != "no errors" {
		t.Errorf("Empty error message = %q, want 'no errors'", errs.Error())
	}

	errs.Add("/A.java", fmt.Errorf("error1"))
	if !errs.HasErrors() {
		t.Error("ProcessingErrors with one error should have errors")
	}
	if errs.Error() != "/A.java: error1" {
		t.Errorf("Single error message = %q", errs.Error())
	}

	errs.Add("/B.java", fmt.Errorf("error2"))
	if len(errs.Errors) != 2 {
		t.Errorf("Expected 2 errors, got %d", len(errs.Errors))
	}
	if msg := errs.Error(); msg != "2 files failed to process (first: /A.java: error1)" {
		t.Errorf("Multiple error message = %q", msg)
	}
	if len(errs.Unwrap()) != 2 {
		t.Errorf("Unwrap() returned %d errors, want 2", len(errs.Unwrap()))
	}
}

func TestProcessingErrors_ThreadSafe(t *testing.T) {
	errs := &ProcessingErrors{}
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs.Add(fmt.Sprintf("/F%d.java", n), fmt.Errorf("error %d", n))
		}(i)
	}
	wg.Wait()

	if len(errs.Errors) != 100 {
		t.Errorf("Expected 100 errors, got %d", len(errs.Errors))
	}
}

func createTestFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file %s: %v", name, err)
	}
	return path
}
