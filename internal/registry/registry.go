// Package registry maps the closed set of data set identifiers to the
// descriptors that know where each data set lives and how to transform it.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rayference/tengen/internal/cache"
	"github.com/rayference/tengen/internal/source"
)

// Identifier names a data set. It doubles as the cache file stem.
type Identifier string

func (id Identifier) String() string {
	return string(id)
}

// Descriptor binds an identifier to its source locations and transform.
type Descriptor struct {
	ID          Identifier
	Description string
	Sources     []string
	Transformer source.Transformer
}

// Name returns the resource name, i.e. the identifier.
func (d Descriptor) Name() string {
	return string(d.ID)
}

// ErrUnknownIdentifier is returned by Lookup for identifiers outside the table.
var ErrUnknownIdentifier = errors.New("unknown data set identifier")

var globalRegistry = newRegistry()

type registry struct {
	mu          sync.RWMutex
	descriptors map[Identifier]Descriptor
}

func newRegistry() *registry {
	return &registry{descriptors: make(map[Identifier]Descriptor)}
}

// Register adds a descriptor. Duplicate identifiers and identifiers that are
// not usable as file names are rejected.
func Register(d Descriptor) error {
	return globalRegistry.register(d)
}

// MustRegister panics when Register fails; used by the static table.
func MustRegister(d Descriptor) {
	if err := Register(d); err != nil {
		panic(err)
	}
}

// Lookup resolves id.
func Lookup(id string) (Descriptor, error) {
	d, ok := globalRegistry.resolve(Identifier(strings.TrimSpace(id)))
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownIdentifier, id)
	}
	return d, nil
}

// List returns every descriptor sorted by identifier.
func List() []Descriptor {
	return globalRegistry.list()
}

// Identifiers returns every registered identifier, sorted.
func Identifiers() []Identifier {
	items := List()
	result := make([]Identifier, len(items))
	for i, d := range items {
		result[i] = d.ID
	}
	return result
}

func (r *registry) register(d Descriptor) error {
	if !cache.ValidName(string(d.ID)) {
		return fmt.Errorf("invalid data set identifier %q", d.ID)
	}
	if len(d.Sources) == 0 {
		return fmt.Errorf("data set %s has no source", d.ID)
	}
	if d.Transformer == nil {
		return fmt.Errorf("data set %s has no transform", d.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.descriptors[d.ID]; exists {
		return fmt.Errorf("data set %s already registered", d.ID)
	}
	r.descriptors[d.ID] = d
	return nil
}

func (r *registry) resolve(id Identifier) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.descriptors[id]
	return d, ok
}

func (r *registry) list() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.descriptors))
	for id := range r.descriptors {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	result := make([]Descriptor, 0, len(ids))
	for _, id := range ids {
		result = append(result, r.descriptors[Identifier(id)])
	}
	return result
}
