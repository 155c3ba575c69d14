package app

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/ludo-technologies/crev/domain"
	"github.com/ludo-technologies/crev/internal/constants"
)

// FileHelper provides file collection and reading for review runs. It
// implements domain.SourceFileReader.
type FileHelper struct{}

// NewFileHelper creates a new FileHelper
func NewFileHelper() *FileHelper {
	return &FileHelper{}
}

// CollectSourceFiles walks root and returns the reviewable files in
// lexical order. Excluded directories are never descended into, and a
// .gitignore at the root is honored when present.
func (h *FileHelper) CollectSourceFiles(root string, includeExtensions []string) ([]string, error) {
	extensions := h.extensionSet(includeExtensions)

	matcher := h.loadGitignore(root)

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && h.isExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !h.hasSupportedExtension(path, extensions) {
			return nil
		}

		if matcher != nil {
			if rel, relErr := filepath.Rel(root, path); relErr == nil && matcher.MatchesPath(rel) {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// ReadFile reads file content
func (h *FileHelper) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// IsSupportedFile checks whether the file's extension is reviewable
func (h *FileHelper) IsSupportedFile(path string) bool {
	return h.hasSupportedExtension(path, h.extensionSet(nil))
}

// FileExists checks if a file exists
func (h *FileHelper) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func (h *FileHelper) extensionSet(includeExtensions []string) map[string]bool {
	list := includeExtensions
	if len(list) == 0 {
		list = constants.SupportedExtensions
	}

	set := make(map[string]bool, len(list))
	for _, ext := range list {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}

func (h *FileHelper) hasSupportedExtension(path string, extensions map[string]bool) bool {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

func (h *FileHelper) isExcludedDir(name string) bool {
	for _, excluded := range constants.ExcludedDirectories {
		if name == excluded {
			return true
		}
	}
	return false
}

// loadGitignore compiles the root .gitignore if one exists. An unreadable
// or malformed file disables gitignore matching rather than failing the walk.
func (h *FileHelper) loadGitignore(root string) *ignore.GitIgnore {
	matcher, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return matcher
}

var _ domain.SourceFileReader = (*FileHelper)(nil)
