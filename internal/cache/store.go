package cache

import (
	"context"
	"errors"
	"time"
)

// Store reads and writes cache entries. Layout:
//
//	<root>/<name>.nc           # formatted data sets
//	<root>/<area>/<name>       # other areas, e.g. raw downloads
type Store interface {
	// Path returns the absolute file path of an entry without touching disk.
	Path(locator Locator) (string, error)

	// Stat returns entry information, or ErrNotFound.
	Stat(ctx context.Context, locator Locator) (*Entry, error)

	// Write produces an entry through fill, which receives a temporary path in
	// the same directory. The temporary file is renamed over the entry only
	// when fill succeeds and is removed otherwise.
	Write(ctx context.Context, locator Locator, fill func(tmpPath string) error) (*Entry, error)

	// Remove deletes an entry. Missing entries are not an error.
	Remove(ctx context.Context, locator Locator) error
}

// DatasetExt is the file extension of formatted entries.
const DatasetExt = ".nc"

// Locator identifies one entry. An empty Area designates a formatted data set
// stored as <root>/<Name>.nc.
type Locator struct {
	Area string
	Name string
}

// DatasetLocator locates the formatted entry of a named resource.
func DatasetLocator(name string) Locator {
	return Locator{Name: name}
}

// Entry describes an entry on disk.
type Entry struct {
	Locator   Locator   `json:"locator"`
	FilePath  string    `json:"file_path"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mod_time"`
}

// ErrNotFound reports a missing cache entry.
var ErrNotFound = errors.New("cache entry not found")
