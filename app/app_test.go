package app

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/ludo-technologies/crev/domain"
)

func TestFileHelperCollectSourceFiles(t *testing.T) {
	tempDir := t.TempDir()

	testFiles := []string{"main.go", "app.js", "util.py", "notes.txt", "style.css"}
	for _, f := range testFiles {
		path := filepath.Join(tempDir, f)
		if err := os.WriteFile(path, []byte("// test"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}

	helper := NewFileHelper()

	files, err := helper.CollectSourceFiles(tempDir, nil)
	if err != nil {
		t.Fatalf("CollectSourceFiles failed: %v", err)
	}

	// main.go, app.js, util.py are supported; notes.txt and style.css are not
	if len(files) != 3 {
		t.Errorf("Expected 3 source files, got %d: %v", len(files), files)
	}
	if !sort.StringsAreSorted(files) {
		t.Errorf("Expected lexical order, got %v", files)
	}
}

func TestFileHelperCollectSourceFiles_ExtensionFilter(t *testing.T) {
	tempDir := t.TempDir()

	for _, f := range []string{"a.go", "b.js", "c.py"} {
		if err := os.WriteFile(filepath.Join(tempDir, f), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	helper := NewFileHelper()

	files, err := helper.CollectSourceFiles(tempDir, []string{".go"})
	if err != nil {
		t.Fatalf("CollectSourceFiles failed: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "a.go" {
		t.Errorf("Expected only a.go, got %v", files)
	}

	// Extensions without the leading dot are normalized
	files, err = helper.CollectSourceFiles(tempDir, []string{"js"})
	if err != nil {
		t.Fatalf("CollectSourceFiles failed: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "b.js" {
		t.Errorf("Expected only b.js, got %v", files)
	}
}

func TestFileHelperCollectSourceFiles_SkipsExcludedDirs(t *testing.T) {
	tempDir := t.TempDir()

	nested := filepath.Join(tempDir, "node_modules", "dep")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, "index.js"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "app.js"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	helper := NewFileHelper()

	files, err := helper.CollectSourceFiles(tempDir, nil)
	if err != nil {
		t.Fatalf("CollectSourceFiles failed: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "app.js" {
		t.Errorf("Expected node_modules to be skipped, got %v", files)
	}
}

func TestFileHelperCollectSourceFiles_HonorsGitignore(t *testing.T) {
	tempDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tempDir, ".gitignore"), []byte("generated.js\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "generated.js"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "app.js"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	helper := NewFileHelper()

	files, err := helper.CollectSourceFiles(tempDir, nil)
	if err != nil {
		t.Fatalf("CollectSourceFiles failed: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "app.js" {
		t.Errorf("Expected gitignored file to be skipped, got %v", files)
	}
}

func TestFileHelperIsSupportedFile(t *testing.T) {
	helper := NewFileHelper()

	tests := []struct {
		path     string
		expected bool
	}{
		{"main.go", true},
		{"app.ts", true},
		{"script.py", true},
		{"Service.java", true},
		{"lib.rs", true},
		{"notes.txt", false},
		{"image.png", false},
	}

	for _, tt := range tests {
		result := helper.IsSupportedFile(tt.path)
		if result != tt.expected {
			t.Errorf("IsSupportedFile(%s) = %v, expected %v", tt.path, result, tt.expected)
		}
	}
}

func TestFileHelperFileExists(t *testing.T) {
	helper := NewFileHelper()

	tempFile, err := os.CreateTemp("", "test*.js")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tempFile.Close()
	defer os.Remove(tempFile.Name())

	exists, err := helper.FileExists(tempFile.Name())
	if err != nil {
		t.Fatalf("FileExists failed: %v", err)
	}
	if !exists {
		t.Error("Expected file to exist")
	}

	exists, err = helper.FileExists("/nonexistent/file.js")
	if err != nil {
		t.Fatalf("FileExists failed: %v", err)
	}
	if exists {
		t.Error("Expected file to not exist")
	}
}

// stubReviewService returns a canned result for use case tests
type stubReviewService struct {
	result *domain.ReviewResult
	err    error
	gotReq domain.ReviewRequest
}

func (s *stubReviewService) Review(_ context.Context, req domain.ReviewRequest) (*domain.ReviewResult, error) {
	s.gotReq = req
	return s.result, s.err
}

func TestReviewUseCase_Execute(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tempDir, "app.js"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	service := &stubReviewService{result: &domain.ReviewResult{Target: tempDir}}
	uc := NewReviewUseCase(service, &passthroughFormatter{})

	var out bytes.Buffer
	req := domain.ReviewRequest{
		TargetPath:   tempDir,
		OutputFormat: domain.OutputFormatText,
		OutputWriter: &out,
	}

	result, err := uc.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Target != tempDir {
		t.Errorf("Expected target %s, got %s", tempDir, result.Target)
	}
	if service.gotReq.AnalysisType != domain.AnalysisTypeDirectory {
		t.Errorf("Expected directory analysis, got %s", service.gotReq.AnalysisType)
	}
}

func TestReviewUseCase_Execute_EmptyTarget(t *testing.T) {
	uc := NewReviewUseCase(&stubReviewService{}, &passthroughFormatter{})

	_, err := uc.Execute(context.Background(), domain.ReviewRequest{})
	if err == nil {
		t.Fatal("Expected error for empty target path")
	}
	if domain.ErrorCode(err) != domain.ErrValidation {
		t.Errorf("Expected %s, got %s", domain.ErrValidation, domain.ErrorCode(err))
	}
}

func TestReviewUseCase_Execute_MissingTarget(t *testing.T) {
	uc := NewReviewUseCase(&stubReviewService{}, &passthroughFormatter{})

	_, err := uc.Execute(context.Background(), domain.ReviewRequest{TargetPath: "/does/not/exist"})
	if err == nil {
		t.Fatal("Expected error for missing target")
	}
	if domain.ErrorCode(err) != domain.ErrTargetNotFound {
		t.Errorf("Expected %s, got %s", domain.ErrTargetNotFound, domain.ErrorCode(err))
	}
}

func TestReviewUseCaseBuilder(t *testing.T) {
	_, err := NewReviewUseCaseBuilder().Build()
	if err == nil {
		t.Error("Expected error when service is missing")
	}

	uc, err := NewReviewUseCaseBuilder().
		WithService(&stubReviewService{}).
		WithFormatter(&passthroughFormatter{}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if uc == nil {
		t.Fatal("Expected use case")
	}
}

// passthroughFormatter implements domain.OutputFormatter for tests
type passthroughFormatter struct{}

func (p *passthroughFormatter) Format(_ *domain.ReviewResult, _ domain.OutputFormat) (string, error) {
	return "", nil
}

func (p *passthroughFormatter) Write(_ *domain.ReviewResult, _ domain.OutputFormat, _ io.Writer) error {
	return nil
}
