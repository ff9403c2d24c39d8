package cache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirInitIsIdempotent(t *testing.T) {
	root := filepath.Join(t.TempDir(), DefaultDirName)
	dir := NewDir(root)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, dir.Init())
		}()
	}
	wg.Wait()
	require.NoError(t, dir.Init())

	for _, p := range []string{root, dir.RawDir(), dir.FormattedDir()} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.True(t, info.IsDir(), p)
	}
}

func TestDirList(t *testing.T) {
	dir := NewDir(filepath.Join(t.TempDir(), "cache"))

	names, err := dir.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, dir.Init())
	for _, name := range []string{"whi_2008_quiet_sun.nc", "thuillier_2003.nc", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir.Root(), name), []byte("x"), 0o644))
	}

	names, err = dir.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"thuillier_2003.nc", "whi_2008_quiet_sun.nc"}, names)
}

func TestDirRemove(t *testing.T) {
	dir := NewDir(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, dir.Init())
	require.NoError(t, os.WriteFile(filepath.Join(dir.Root(), "a.nc"), []byte("x"), 0o644))

	require.NoError(t, dir.Remove())
	_, err := os.Stat(dir.Root())
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// Wiping an absent cache succeeds.
	require.NoError(t, dir.Remove())
}

func TestRemovalErrorUnwraps(t *testing.T) {
	inner := errors.New("permission denied")
	err := error(&RemovalError{Path: "/x", Err: inner})
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "/x")
}

func TestResolveRoot(t *testing.T) {
	t.Setenv(EnvDir, "")
	assert.Equal(t, DefaultDirName, ResolveRoot(""))

	t.Setenv(EnvDir, "/tmp/from-env")
	assert.Equal(t, "/tmp/from-env", ResolveRoot(""))
	assert.Equal(t, "/explicit", ResolveRoot("/explicit"))
}
