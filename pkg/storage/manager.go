package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	errs "twtimg/pkg/errors"
)

// Manager writes images into one download directory
type Manager struct {
	outputDir string
}

// EnsureDir creates dir (and parents) when it does not exist yet
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// NewManager opens an existing download directory.
// A missing path or a path that is not a directory yields ErrInvalidDownloadPath.
func NewManager(outputDir string) (*Manager, error) {
	info, err := os.Stat(outputDir)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeFilesystem, 0, errs.ErrInvalidDownloadPath, "%s: %v", outputDir, err)
	}
	if !info.IsDir() {
		return nil, errs.New(errs.ErrorTypeFilesystem, 0, errs.ErrInvalidDownloadPath, "%s is not a directory", outputDir)
	}
	return &Manager{outputDir: outputDir}, nil
}

// Path returns the full path of name inside the download directory
func (m *Manager) Path(name string) string {
	return filepath.Join(m.outputDir, name)
}

// Exists reports whether a file called name is already present
func (m *Manager) Exists(name string) bool {
	_, err := os.Lstat(m.Path(name))
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

// Save streams r into name. Data goes to a temporary file that is renamed into place
// only after the copy completes, so an interrupted download leaves nothing behind.
func (m *Manager) Save(name string, r io.Reader) (int64, error) {
	target := m.Path(name)

	out, err := os.CreateTemp(m.outputDir, "."+name+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := out.Name()

	written, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return 0, fmt.Errorf("failed to save image data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return 0, fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return 0, fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tempFile, target); err != nil {
		os.Remove(tempFile)
		return 0, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return written, nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}
