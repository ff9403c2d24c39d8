package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayference/tengen/internal/dataset"
	"github.com/rayference/tengen/internal/source"
)

func replaceRegistry(t *testing.T) {
	t.Helper()
	prev := globalRegistry
	globalRegistry = newRegistry()
	t.Cleanup(func() { globalRegistry = prev })
}

var noopTransform = source.TransformFunc(func(ctx context.Context, env *source.Env, src []string) (*dataset.Dataset, error) {
	return nil, nil
})

func TestStaticTableIsComplete(t *testing.T) {
	want := []Identifier{
		Coddington2021One,
		Coddington2021HighResolution,
		Coddington2021P005,
		Coddington2021P025,
		Coddington2021P1,
		Meftah2018,
		SOLID2017,
		Thuillier2003,
		WHI2008FaculaeActive,
		WHI2008QuietSun,
		WHI2008SunspotActive,
	}
	assert.Equal(t, want, Identifiers())

	d, err := Lookup("solid_2017")
	require.NoError(t, err)
	assert.Len(t, d.Sources, 20)
	assert.Equal(t, "solid_2017", d.Name())

	d, err = Lookup(" coddington_2021-p005 ")
	require.NoError(t, err)
	assert.Equal(t, source.CoddingtonURL(source.CoddingtonP005), d.Sources[0])
}

func TestLookupUnknownIdentifier(t *testing.T) {
	_, err := Lookup("coddington_2021")
	assert.True(t, errors.Is(err, ErrUnknownIdentifier))
	assert.Contains(t, err.Error(), "coddington_2021")
}

func TestRegisterRejectsInvalidDescriptors(t *testing.T) {
	replaceRegistry(t)

	require.NoError(t, Register(Descriptor{ID: "alpha", Sources: []string{"https://x"}, Transformer: noopTransform}))
	assert.Error(t, Register(Descriptor{ID: "alpha", Sources: []string{"https://x"}, Transformer: noopTransform}), "duplicate")
	assert.Error(t, Register(Descriptor{ID: "../evil", Sources: []string{"https://x"}, Transformer: noopTransform}), "unsafe name")
	assert.Error(t, Register(Descriptor{ID: "beta", Transformer: noopTransform}), "no source")
	assert.Error(t, Register(Descriptor{ID: "gamma", Sources: []string{"https://x"}}), "no transform")

	assert.Equal(t, []Identifier{"alpha"}, Identifiers())
}
