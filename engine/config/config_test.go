package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.GreaterOrEqual(t, cfg.FetchWorkers, 1)
	assert.Equal(t, 256, cfg.FetchQueueSize)
	assert.Equal(t, Duration(30*time.Second), cfg.FetchTimeout)
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "oxy-gltf.toml", `
development = true
fetch_workers = 4
fetch_timeout = "1m30s"
root_dir = "`+filepath.ToSlash(dir)+`"
eager_textures = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Development)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 4, cfg.FetchWorkers)
	assert.Equal(t, 256, cfg.FetchQueueSize)
	assert.Equal(t, Duration(90*time.Second), cfg.FetchTimeout)
	assert.Equal(t, filepath.ToSlash(dir), cfg.RootDir)
	assert.True(t, cfg.EagerTextures)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "oxy-gltf.toml", "fetch_workers = 4\n")
	envFile := writeFile(t, dir, ".env", "OXY_GLTF_FETCH_WORKERS=8\nOXY_GLTF_PROFILE=true\n")

	t.Setenv("OXY_GLTF_FETCH_TIMEOUT", "5s")
	// godotenv.Load sets process variables.
	t.Cleanup(func() {
		_ = os.Unsetenv("OXY_GLTF_FETCH_WORKERS")
		_ = os.Unsetenv("OXY_GLTF_PROFILE")
	})

	cfg, err := Load(path, envFile, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.FetchWorkers)
	assert.True(t, cfg.Profile)
	assert.Equal(t, Duration(5*time.Second), cfg.FetchTimeout)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.toml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed file", func(t *testing.T) {
		_, err := Load(writeFile(t, dir, "bad.toml", "fetch_workers = [\n"))
		assert.Error(t, err)
	})

	t.Run("malformed duration", func(t *testing.T) {
		_, err := Load(writeFile(t, dir, "duration.toml", `fetch_timeout = "soon"`))
		assert.Error(t, err)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := Load(writeFile(t, dir, "workers.toml", "fetch_workers = 0\n"))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("missing root dir", func(t *testing.T) {
		t.Setenv("OXY_GLTF_ROOT_DIR", filepath.Join(dir, "does-not-exist"))
		_, err := Load("")
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("malformed variable", func(t *testing.T) {
		t.Setenv("OXY_GLTF_DEBUG", "sometimes")
		_, err := Load("")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "OXY_GLTF_DEBUG")
	})
}
