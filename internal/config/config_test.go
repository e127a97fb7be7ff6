package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenNothingElseSet(t *testing.T) {
	loader := NewLoader("compose", "")

	cfg, err := loader.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "trusty", cfg.Series)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "pip", cfg.InstallerBinary)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compose.yaml")
	require.NoError(t, os.WriteFile(path, []byte("series: xenial\nlog_level: debug\n"), 0o644))

	loader := NewLoader("compose", path)
	cfg, err := loader.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "xenial", cfg.Series)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "pip", cfg.InstallerBinary)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compose.yaml")
	require.NoError(t, os.WriteFile(path, []byte("series: xenial\n"), 0o644))

	t.Setenv("COMPOSE_SERIES", "bionic")

	loader := NewLoader("compose", path)
	cfg, err := loader.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "bionic", cfg.Series)
}

func TestLoad_FlagOverridesOverrideEverything(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compose.yaml")
	require.NoError(t, os.WriteFile(path, []byte("series: xenial\n"), 0o644))

	t.Setenv("COMPOSE_SERIES", "bionic")

	loader := NewLoader("compose", path)
	cfg, err := loader.Load(map[string]interface{}{"series": "focal"})
	require.NoError(t, err)

	assert.Equal(t, "focal", cfg.Series)
}

func TestLoad_MissingConfigFileIsNotAnError(t *testing.T) {
	loader := NewLoader("compose", filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	cfg, err := loader.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "trusty", cfg.Series)
}

func TestLoad_EmptyStringFlagsAreIgnored(t *testing.T) {
	loader := NewLoader("compose", "")

	cfg, err := loader.Load(map[string]interface{}{"series": ""})
	require.NoError(t, err)
	assert.Equal(t, "trusty", cfg.Series)
}
