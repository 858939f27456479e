package site

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Storage is the disk-backed content store for deployed sites. Each site
// owns one directory under the content root.
type Storage struct {
	root string
}

// NewStorage creates a storage rooted at the given directory
func NewStorage(root string) (*Storage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create content root: %w", err)
	}
	return &Storage{root: root}, nil
}

// Dir returns the content directory of a site
func (st *Storage) Dir(siteID int) string {
	return filepath.Join(st.root, strconv.Itoa(siteID))
}

// EnsureDir creates the content directory of a site
func (st *Storage) EnsureDir(siteID int) error {
	return os.MkdirAll(st.Dir(siteID), 0o755)
}

// Save writes one uploaded file under the site directory. The name is
// treated as a relative path inside the site; traversal outside it is
// rejected.
func (st *Storage) Save(siteID int, name string, src io.Reader) error {
	rel := filepath.Clean("/" + name)[1:] // strip any leading ../ segments
	if rel == "" || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("invalid file name: %s", name)
	}

	dst := filepath.Join(st.Dir(siteID), rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create parent dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, src); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Remove deletes a site's content directory
func (st *Storage) Remove(siteID int) error {
	return os.RemoveAll(st.Dir(siteID))
}
