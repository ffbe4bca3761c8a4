package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemArchive stores exports under a local directory.
type FilesystemArchive struct {
	root string
}

// NewFilesystemArchive returns an archive rooted at path, creating it if
// needed.
func NewFilesystemArchive(root string) (*FilesystemArchive, error) {
	if root == "" {
		root = "./exports"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FilesystemArchive{root: root}, nil
}

// Store writes the export to disk and returns the file path.
func (a *FilesystemArchive) Store(_ context.Context, key, _ string, r io.Reader) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}

	path := filepath.Join(a.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return path, nil
}

// validKey rejects keys that would escape the archive root.
func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("empty key")
	}
	if strings.Contains(key, "..") {
		return fmt.Errorf("invalid key contains '..'")
	}
	if strings.HasPrefix(key, "/") {
		return fmt.Errorf("invalid absolute key")
	}
	return nil
}
