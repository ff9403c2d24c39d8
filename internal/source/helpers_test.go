package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rayference/tengen/internal/fetch"
	"github.com/rayference/tengen/internal/logging"
	"github.com/rayference/tengen/internal/units"
)

var testNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// stubFetcher serves canned payloads keyed by URL.
type stubFetcher struct {
	payloads map[string][]byte
	err      error
}

func (s *stubFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	body, ok := s.payloads[rawURL]
	if !ok {
		return nil, &fetch.StatusError{URL: rawURL, Code: 404, Status: "Not Found"}
	}
	return body, nil
}

func (s *stubFetcher) Download(ctx context.Context, rawURL, dst string) (int64, error) {
	body, err := s.Fetch(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(dst, body, 0o644); err != nil {
		return 0, err
	}
	return int64(len(body)), nil
}

func newTestEnv(t *testing.T, f fetch.Fetcher) *Env {
	t.Helper()
	return &Env{
		Fetcher:    f,
		Units:      units.NewRegistry(),
		ScratchDir: filepath.Join(t.TempDir(), "raw"),
		Now:        func() time.Time { return testNow },
		Logger:     logging.Discard(),
	}
}

// requireScratchEmpty asserts that no temporary file survived.
func requireScratchEmpty(t *testing.T, env *Env) {
	t.Helper()
	entries, err := os.ReadDir(env.ScratchDir)
	if os.IsNotExist(err) {
		return
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Empty(t, names, fmt.Sprintf("leftover scratch files in %s", env.ScratchDir))
}
