package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func unsetAfter(t *testing.T, keys ...string) {
	t.Helper()

	t.Cleanup(func() {
		for _, key := range keys {
			_ = os.Unsetenv(key)
		}
	})
}

func TestLoadEnvFiles(t *testing.T) {
	t.Run("later file still loads when the first is missing", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, ".env"),
			[]byte("MGSG_ONLY_ENV=from-env\n"),
			0o600,
		))
		chdir(t, dir)
		unsetAfter(t, "MGSG_ONLY_ENV")

		loadEnvFiles(".env.local", ".env")

		assert.Equal(t, "from-env", os.Getenv("MGSG_ONLY_ENV"))
	})

	t.Run("earlier file wins on overlap", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, ".env.local"),
			[]byte("MGSG_SHARED=local\n"),
			0o600,
		))
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, ".env"),
			[]byte("MGSG_SHARED=base\nMGSG_BASE_ONLY=base\n"),
			0o600,
		))
		chdir(t, dir)
		unsetAfter(t, "MGSG_SHARED", "MGSG_BASE_ONLY")

		loadEnvFiles(".env.local", ".env")

		assert.Equal(t, "local", os.Getenv("MGSG_SHARED"))
		assert.Equal(t, "base", os.Getenv("MGSG_BASE_ONLY"))
	})

	t.Run("no files is a no-op", func(t *testing.T) {
		chdir(t, t.TempDir())

		loadEnvFiles(".env.local", ".env")
	})
}
