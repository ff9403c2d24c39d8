package resource

import (
	"errors"

	"github.com/rayference/tengen/internal/cache"
	"github.com/rayference/tengen/internal/registry"
	"github.com/rayference/tengen/internal/source"
)

// Catalog holds one Resource per registered data set, all sharing a store
// and environment. Build it once at startup.
type Catalog struct {
	byName  map[string]*Resource
	ordered []*Resource
}

// NewCatalog binds every registry descriptor to store.
func NewCatalog(store cache.Store, env *source.Env, opts ...Option) (*Catalog, error) {
	if store == nil {
		return nil, errors.New("cache store is required")
	}
	descs := registry.List()
	c := &Catalog{byName: make(map[string]*Resource, len(descs))}
	for _, desc := range descs {
		res := New(desc, store, env, opts...)
		c.byName[res.Name()] = res
		c.ordered = append(c.ordered, res)
	}
	return c, nil
}

// Lookup resolves an identifier, failing with registry.ErrUnknownIdentifier.
func (c *Catalog) Lookup(id string) (*Resource, error) {
	desc, err := registry.Lookup(id)
	if err != nil {
		return nil, err
	}
	res, ok := c.byName[desc.Name()]
	if !ok {
		return nil, &unboundError{name: desc.Name()}
	}
	return res, nil
}

// List returns resources sorted by identifier.
func (c *Catalog) List() []*Resource {
	return append([]*Resource(nil), c.ordered...)
}

type unboundError struct {
	name string
}

func (e *unboundError) Error() string {
	return "data set " + e.name + " registered after the catalog was built"
}
