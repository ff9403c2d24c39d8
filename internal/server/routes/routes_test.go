package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayference/tengen/internal/cache"
	"github.com/rayference/tengen/internal/dataset"
	"github.com/rayference/tengen/internal/fetch"
	"github.com/rayference/tengen/internal/logging"
	"github.com/rayference/tengen/internal/metrics"
	"github.com/rayference/tengen/internal/resource"
	"github.com/rayference/tengen/internal/server"
	"github.com/rayference/tengen/internal/source"
	"github.com/rayference/tengen/internal/units"
)

// offlineFetcher fails every request as if the network were down.
type offlineFetcher struct{}

func (offlineFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	return nil, &fetch.NetworkError{URL: rawURL, Err: errors.New("network is unreachable")}
}

func (offlineFetcher) Download(ctx context.Context, rawURL, dst string) (int64, error) {
	return 0, &fetch.NetworkError{URL: rawURL, Err: errors.New("network is unreachable")}
}

type testServer struct {
	app  *fiber.App
	root string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	root := t.TempDir()
	store, err := cache.NewStore(root)
	require.NoError(t, err)

	logger := logging.Discard()
	env := &source.Env{
		Fetcher:    offlineFetcher{},
		Units:      units.NewRegistry(),
		ScratchDir: filepath.Join(root, cache.RawArea),
		Logger:     logger,
	}
	rec := metrics.New()
	catalog, err := resource.NewCatalog(store, env, resource.WithMetrics(rec))
	require.NoError(t, err)

	app, err := server.NewApp(server.AppOptions{Logger: logger, ListenPort: 5000})
	require.NoError(t, err)
	RegisterDatasetRoutes(app, catalog, logger)
	RegisterCacheRoutes(app, cache.NewDir(root))
	RegisterMetricsRoute(app, rec)
	return &testServer{app: app, root: root}
}

// seed writes a small cached copy of name.
func (s *testServer) seed(t *testing.T, name string) {
	t.Helper()
	reg := units.NewRegistry()
	ssi, err := reg.Quantity([]float64{1.5, 2.5}, "W/m^2/nm")
	require.NoError(t, err)
	w, err := reg.Quantity([]float64{400, 410}, "nm")
	require.NoError(t, err)
	ds, err := dataset.Assemble(ssi, w, "https://example.org", dataset.WithClock(func() time.Time {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	require.NoError(t, dataset.Encode(ds, filepath.Join(s.root, name+cache.DatasetExt)))
}

func (s *testServer) get(t *testing.T, target string) (int, []byte) {
	t.Helper()
	resp, err := s.app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestListDatasetsReportsCacheState(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "meftah_2018")

	status, body := s.get(t, "/-/datasets")
	require.Equal(t, fiber.StatusOK, status)

	var payload struct {
		Datasets []datasetPayload `json:"datasets"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Len(t, payload.Datasets, 11)
	for _, d := range payload.Datasets {
		assert.Equal(t, d.Identifier == "meftah_2018", d.InCache, d.Identifier)
		assert.NotEmpty(t, d.Sources)
	}
}

func TestGetUnknownDatasetIs404(t *testing.T) {
	s := newTestServer(t)
	status, body := s.get(t, "/datasets/nope")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Contains(t, string(body), "dataset_not_found")
}

func TestGetDatasetOfflineWithoutCacheIs502(t *testing.T) {
	s := newTestServer(t)
	status, body := s.get(t, "/datasets/thuillier_2003")
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Contains(t, string(body), "fetch_failed")
}

func TestGetDatasetOfflineServesCachedCopy(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "thuillier_2003")

	status, body := s.get(t, "/datasets/thuillier_2003")
	require.Equal(t, fiber.StatusOK, status, string(body))

	out := filepath.Join(t.TempDir(), "out.nc")
	require.NoError(t, os.WriteFile(out, body, 0o644))
	ds, err := dataset.Decode(out)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{400, 410}, ds.W, 1e-9)

	status, body = s.get(t, "/datasets/thuillier_2003?format=parquet")
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, strings.HasPrefix(string(body), "PAR1"))

	status, _ = s.get(t, "/datasets/thuillier_2003?format=csv")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = s.get(t, "/-/metrics")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `tengen_fetch_total{outcome="cache_fallback",resource="thuillier_2003"} 2`)
}

func TestListCache(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "solid_2017")

	status, body := s.get(t, "/-/cache")
	require.Equal(t, fiber.StatusOK, status)

	var payload struct {
		Root  string   `json:"root"`
		Files []string `json:"files"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, s.root, payload.Root)
	assert.Equal(t, []string{"solid_2017.nc"}, payload.Files)
}
