package layerconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compotron/compose/internal/adapters"
	"github.com/compotron/compose/internal/domain"
)

func writeComposer(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "composer.yaml"), []byte(content), 0o644))
}

func TestLoad_MissingFileYieldsUnconfiguredEmptyConfig(t *testing.T) {
	dir := t.TempDir()
	vfs := adapters.NewOSFilesystem()

	res := Load(context.Background(), vfs, domain.NewAbsPath(dir).Unwrap(), false, nil)
	require.True(t, res.IsOk())
	cfg := res.Unwrap()
	assert.False(t, cfg.Configured)
	assert.Empty(t, cfg.Includes)
}

func TestLoad_EmptyFileYieldsUnconfigured(t *testing.T) {
	dir := t.TempDir()
	writeComposer(t, dir, "   \n")
	vfs := adapters.NewOSFilesystem()

	res := Load(context.Background(), vfs, domain.NewAbsPath(dir).Unwrap(), false, nil)
	require.True(t, res.IsOk())
	assert.False(t, res.Unwrap().Configured)
}

func TestLoad_ParsesRecognisedKeys(t *testing.T) {
	dir := t.TempDir()
	writeComposer(t, dir, "includes:\n  - base\nignore:\n  - '*.pyc'\ntactics:\n  - custom\nname: my-layer\n")
	vfs := adapters.NewOSFilesystem()

	res := Load(context.Background(), vfs, domain.NewAbsPath(dir).Unwrap(), false, nil)
	require.True(t, res.IsOk())
	cfg := res.Unwrap()
	assert.True(t, cfg.Configured)
	assert.Equal(t, "my-layer", cfg.Name)
	assert.Equal(t, []string{"*.pyc"}, cfg.Ignore)
	assert.Equal(t, []string{"custom"}, cfg.Tactics)
	require.Len(t, cfg.Includes, 1)
	assert.Equal(t, "base", cfg.Includes[0].Raw)
}

func TestLoad_WithValidatorRejectsSchemaViolation(t *testing.T) {
	dir := t.TempDir()
	writeComposer(t, dir, "includes: 7\n")
	vfs := adapters.NewOSFilesystem()

	validatorRes := NewValidator([]byte(DefaultSchemaJSON))
	require.True(t, validatorRes.IsOk())

	res := Load(context.Background(), vfs, domain.NewAbsPath(dir).Unwrap(), false, validatorRes.Unwrap())
	require.True(t, res.IsErr())

	var malformed domain.MalformedConfig
	require.ErrorAs(t, res.UnwrapErr(), &malformed)
}

func TestLoad_WithValidatorAcceptsWellFormedDocument(t *testing.T) {
	dir := t.TempDir()
	writeComposer(t, dir, "includes:\n  - base\nname: my-layer\n")
	vfs := adapters.NewOSFilesystem()

	validatorRes := NewValidator([]byte(DefaultSchemaJSON))
	require.True(t, validatorRes.IsOk())

	res := Load(context.Background(), vfs, domain.NewAbsPath(dir).Unwrap(), false, validatorRes.Unwrap())
	require.True(t, res.IsOk())
}
