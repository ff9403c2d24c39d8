package source

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whiFixture() []byte {
	var b strings.Builder
	for i := 0; i < whiHeaderRows; i++ {
		fmt.Fprintf(&b, "header row %d with words\n", i)
	}
	b.WriteString("; wavelength sunspot faculae quiet\n")
	b.WriteString("115.0 1.0 2.0 3.0\n")
	b.WriteString("116.0 1.1 2.1 3.1\n")
	b.WriteString("116.5 1.2 2.2 3.2\n")
	b.WriteString("117.0 1.3 2.3 3.3\n")
	return []byte(b.String())
}

func TestWHI2008SelectsPeriodColumn(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{payloads: map[string][]byte{WHIURL: whiFixture()}})

	for idx, period := range WHIPeriods {
		ds, err := WHI2008(period.ID).Transform(context.Background(), env, []string{WHIURL})
		require.NoError(t, err, period.ID)

		assert.Equal(t, []float64{116.5, 117.0}, ds.W, period.ID)
		want := []float64{float64(idx+1) + 0.2, float64(idx+1) + 0.3}
		assert.InDeltaSlice(t, want, ds.SSI, 1e-12, period.ID)

		obs, _ := ds.Attrs.Get("observation_period")
		assert.Equal(t, period.span(), obs)
		title, _ := ds.Attrs.Get("title")
		assert.Contains(t, title, "('"+period.ID+"' spectrum)")
	}
}

func TestWHI2008QuietSunAttributes(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{payloads: map[string][]byte{WHIURL: whiFixture()}})
	ds, err := WHI2008("quiet sun").Transform(context.Background(), env, []string{WHIURL})
	require.NoError(t, err)

	obs, _ := ds.Attrs.Get("observation_period")
	assert.Equal(t, "2008-04-10 to 2008-04-16", obs)
	comment, _ := ds.Attrs.Get("comment")
	assert.Contains(t, comment, "> 116 nm")
	refs, _ := ds.Attrs.Get("references")
	assert.Equal(t, "https://doi.org/10.1029/2008GL036373", refs)
}

func TestWHI2008UnknownPeriodPanics(t *testing.T) {
	assert.Panics(t, func() { WHI2008("eclipse") })
}
