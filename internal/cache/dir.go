package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// DefaultDirName is the cache directory created in the working directory
	// when nothing else is configured.
	DefaultDirName = ".tengen_cache"
	// EnvDir overrides the cache directory location.
	EnvDir = "TENGEN_CACHE_DIR"

	// RawArea holds downloads awaiting transformation.
	RawArea = "raw"
	// FormattedArea is reserved for formatted exports.
	FormattedArea = "formatted"
)

// RemovalError reports a failed cache wipe.
type RemovalError struct {
	Path string
	Err  error
}

func (e *RemovalError) Error() string {
	return fmt.Sprintf("could not remove cache directory %s: %v", e.Path, e.Err)
}

func (e *RemovalError) Unwrap() error {
	return e.Err
}

// ResolveRoot picks the cache root: an explicit value first, then the
// TENGEN_CACHE_DIR environment variable, then DefaultDirName.
func ResolveRoot(configured string) string {
	if configured != "" {
		return configured
	}
	if env := os.Getenv(EnvDir); env != "" {
		return env
	}
	return DefaultDirName
}

// Dir manages the cache directory tree.
type Dir struct {
	root string
}

// NewDir returns a manager for root. Nothing is created until Init.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Root returns the cache root path.
func (d *Dir) Root() string {
	return d.root
}

// RawDir returns the directory used for raw downloads.
func (d *Dir) RawDir() string {
	return filepath.Join(d.root, RawArea)
}

// FormattedDir returns the directory reserved for formatted exports.
func (d *Dir) FormattedDir() string {
	return filepath.Join(d.root, FormattedArea)
}

// Init creates the root and its sub-directories. Calling it on an existing
// tree, or from several goroutines at once, is harmless.
func (d *Dir) Init() error {
	for _, dir := range []string{d.root, d.RawDir(), d.FormattedDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("init cache directory %s: %w", dir, err)
		}
	}
	return nil
}

// List returns the base names of the data set files in the cache root,
// sorted. A missing root yields an empty list.
func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list cache directory %s: %w", d.root, err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), DatasetExt) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes the cache root and everything under it.
func (d *Dir) Remove() error {
	if err := os.RemoveAll(d.root); err != nil {
		return &RemovalError{Path: d.root, Err: err}
	}
	return nil
}
