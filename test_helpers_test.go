package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rayference/tengen/internal/cache"
	"github.com/rayference/tengen/internal/config"
	"github.com/rayference/tengen/internal/fetch"
)

var repoRoot string

func init() {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return
	}
	dir := filepath.Dir(file)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			repoRoot = dir
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func projectRoot(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, repoRoot, "cannot locate project root")
	return repoRoot
}

func configFixture(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(projectRoot(t), "internal", "config", "testdata", name)
}

// isolate points the cache at a temporary directory, clears config
// overrides and returns the cache root.
func isolate(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "cache")
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv(cache.EnvDir, root)
	t.Setenv("TENGEN_LOG_LEVEL", "error")
	return root
}

// stubFetcher serves canned payloads keyed by URL; unknown URLs behave as
// an unreachable network.
type stubFetcher struct {
	payloads map[string][]byte
}

func (s *stubFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	body, ok := s.payloads[rawURL]
	if !ok {
		return nil, &fetch.NetworkError{URL: rawURL, Err: errors.New("network is unreachable")}
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

func useFetcher(t *testing.T, f fetch.Fetcher) {
	t.Helper()
	prev := newFetcher
	newFetcher = func(*config.Config) fetch.Fetcher { return f }
	t.Cleanup(func() { newFetcher = prev })
}

// cliResult holds what one CLI invocation printed.
type cliResult struct {
	code   int
	stdout string
	stderr string
}

// runCLI executes the command tree with args, capturing both output streams
// in memory for the duration of the call.
func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	var out, errOut bytes.Buffer
	prevOut, prevErr := stdOut, stdErr
	stdOut, stdErr = &out, &errOut
	defer func() { stdOut, stdErr = prevOut, prevErr }()

	code := run(context.Background(), args)
	return cliResult{code: code, stdout: out.String(), stderr: errOut.String()}
}
