package resource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayference/tengen/internal/cache"
	"github.com/rayference/tengen/internal/dataset"
	"github.com/rayference/tengen/internal/fetch"
	"github.com/rayference/tengen/internal/logging"
	"github.com/rayference/tengen/internal/metrics"
	"github.com/rayference/tengen/internal/registry"
	"github.com/rayference/tengen/internal/source"
	"github.com/rayference/tengen/internal/units"
)

const testURL = "https://example.org/spectrum.txt"

// fakeSource returns a tiny data set, or err when set.
type fakeSource struct {
	err   error
	calls atomic.Int32
}

func (f *fakeSource) Transform(ctx context.Context, env *source.Env, src []string) (*dataset.Dataset, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	ssi, err := env.Units.Quantity([]float64{1, 2, 3}, "W/m^2/nm")
	if err != nil {
		return nil, err
	}
	w, err := env.Units.Quantity([]float64{400, 500, 600}, "nm")
	if err != nil {
		return nil, err
	}
	return dataset.Assemble(ssi, w, src[0], dataset.WithClock(env.Now), dataset.WithRegistry(env.Units))
}

type fixture struct {
	res     *Resource
	src     *fakeSource
	root    string
	metrics *metrics.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	store, err := cache.NewStore(root)
	require.NoError(t, err)

	src := &fakeSource{}
	env := &source.Env{
		Units:      units.NewRegistry(),
		ScratchDir: filepath.Join(root, cache.RawArea),
		Now:        func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
		Logger:     logging.Discard(),
	}
	rec := metrics.New()
	desc := registry.Descriptor{ID: "test_set", Sources: []string{testURL}, Transformer: src}
	return &fixture{
		res:     New(desc, store, env, WithMetrics(rec)),
		src:     src,
		root:    root,
		metrics: rec,
	}
}

func networkDown() error {
	return &fetch.NetworkError{URL: testURL, Err: errors.New("dial tcp: connection refused")}
}

func TestCachePathIsPure(t *testing.T) {
	f := newFixture(t)
	path, err := f.res.CachePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.root, "test_set.nc"), path)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFetchFromWebPopulatesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ds, err := f.res.FetchFromWeb(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, ds.Shape())

	cached, err := f.res.InCache(ctx)
	require.NoError(t, err)
	assert.True(t, cached)
}

func TestFetchFromCacheBeforeAndAfter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.res.FetchFromCache(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotCached))
	assert.True(t, errors.Is(err, cache.ErrNotFound))

	require.NoError(t, f.res.PushToCache(ctx, false))

	ds, err := f.res.FetchFromCache(ctx)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{400, 500, 600}, ds.W, 1e-9)
	assert.InDeltaSlice(t, []float64{1, 2, 3}, ds.SSI, 1e-9)
}

func TestGetFallsBackToCacheOnNetworkError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.res.PushToCache(ctx, false))

	f.src.err = networkDown()
	ds, err := f.res.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, ds.Shape())
}

func TestGetFailsWhenNetworkDownAndCacheEmpty(t *testing.T) {
	f := newFixture(t)
	f.src.err = networkDown()

	_, err := f.res.Get(context.Background())
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "test_set", fetchErr.Name)
	assert.True(t, fetch.IsNetworkError(err))
	assert.True(t, errors.Is(err, ErrNotCached))
}

func TestGetDoesNotMaskRemoteFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.res.PushToCache(ctx, false))

	f.src.err = &fetch.StatusError{URL: testURL, Code: 500, Status: "Internal Server Error"}
	_, err := f.res.Get(ctx)

	var statusErr *fetch.StatusError
	require.True(t, errors.As(err, &statusErr))
	var fetchErr *FetchError
	assert.False(t, errors.As(err, &fetchErr))

	parseErr := &source.ParseError{Source: testURL, Err: errors.New("bad row")}
	f.src.err = parseErr
	_, err = f.res.Get(ctx)
	assert.True(t, errors.Is(err, parseErr))
}

func TestGetAlwaysTriesTheWebFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.res.PushToCache(ctx, false))
	before := f.src.calls.Load()

	_, err := f.res.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, f.src.calls.Load())
}

func TestPushToCacheHonoursForce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.res.PushToCache(ctx, false))
	require.NoError(t, f.res.PushToCache(ctx, false))
	assert.Equal(t, int32(1), f.src.calls.Load())

	require.NoError(t, f.res.PushToCache(ctx, true))
	assert.Equal(t, int32(2), f.src.calls.Load())
}

func TestFetchFromWebSurvivesCacheWriteFailure(t *testing.T) {
	f := newFixture(t)
	path, err := f.res.CachePath()
	require.NoError(t, err)
	// a directory at the entry path makes Stat report a miss and the rename fail
	require.NoError(t, os.MkdirAll(filepath.Join(path, "blocker"), 0o755))

	ds, err := f.res.FetchFromWeb(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, ds)
}
