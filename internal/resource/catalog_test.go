package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayference/tengen/internal/cache"
	"github.com/rayference/tengen/internal/registry"
	"github.com/rayference/tengen/internal/source"
)

func TestCatalogCoversRegistry(t *testing.T) {
	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)
	catalog, err := NewCatalog(store, &source.Env{})
	require.NoError(t, err)

	items := catalog.List()
	require.Len(t, items, len(registry.List()))
	for i := 1; i < len(items); i++ {
		assert.Less(t, items[i-1].Name(), items[i].Name(), "catalog not sorted at %d", i)
	}

	res, err := catalog.Lookup("whi_2008_quiet_sun")
	require.NoError(t, err)
	assert.Equal(t, source.WHIURL, res.Descriptor().Sources[0])

	_, err = catalog.Lookup("not_a_dataset")
	assert.ErrorIs(t, err, registry.ErrUnknownIdentifier)
}

func TestCatalogRequiresStore(t *testing.T) {
	_, err := NewCatalog(nil, &source.Env{})
	assert.Error(t, err)
}
