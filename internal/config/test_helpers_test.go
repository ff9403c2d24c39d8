package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfigPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join("testdata", name)
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// isolateEnv clears every override so the host environment cannot leak in.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvConfigPath, "")
	for _, env := range envKeys {
		t.Setenv(env, "")
	}
}
