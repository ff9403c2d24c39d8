package source

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, payload string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := pgzip.NewWriter(&buf)
	_, err := w.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestMeftah2018MasksAndCleansUp(t *testing.T) {
	payload := gzipBytes(t, "0.5 ---\n164.9 0.01\n165.0 0.02\n2000.0 ---\n3000.1 0.001\n")
	env := newTestEnv(t, &stubFetcher{payloads: map[string][]byte{MeftahURL: payload}})

	ds, err := Meftah2018.Transform(context.Background(), env, []string{MeftahURL})
	require.NoError(t, err)

	assert.Equal(t, []float64{165.0, 2000.0, 3000.1}, ds.W)
	assert.Equal(t, 0.02, ds.SSI[0])
	assert.True(t, math.IsNaN(ds.SSI[1]))
	obs, _ := ds.Attrs.Get("observation_period")
	assert.Equal(t, "2008-04-05 to 2016-12-31", obs)

	requireScratchEmpty(t, env)
}

func TestMeftah2018CleansUpOnParseFailure(t *testing.T) {
	payload := gzipBytes(t, "165.0 0.02\n166.0 oops\n")
	env := newTestEnv(t, &stubFetcher{payloads: map[string][]byte{MeftahURL: payload}})

	_, err := Meftah2018.Transform(context.Background(), env, []string{MeftahURL})
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))

	requireScratchEmpty(t, env)
}
