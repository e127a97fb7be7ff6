package delta

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compotron/compose/internal/adapters"
	"github.com/compotron/compose/internal/domain"
	"github.com/compotron/compose/internal/manifest"
)

func sha(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func TestClassify_DetectsAddedChangedAndDeleted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.yaml"), []byte("name: x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("new file"), 0o644))

	baseline := manifest.Manifest{
		"metadata.yaml": {Origin: "trusty/a", Kind: "static", SHA256: sha("name: original")},
		"config.yaml":   {Origin: "trusty/a", Kind: "static", SHA256: sha("gone")},
	}

	vfs := adapters.NewOSFilesystem()
	target := domain.NewAbsPath(dir).Unwrap()

	res := Classify(context.Background(), vfs, target, baseline)
	require.True(t, res.IsOk())
	c := res.Unwrap()

	assert.ElementsMatch(t, []string{"README.md"}, c.Added)
	assert.ElementsMatch(t, []string{"metadata.yaml"}, c.Changed)
	assert.ElementsMatch(t, []string{"config.yaml"}, c.Deleted)
	assert.False(t, c.Empty())
}

func TestClassify_SkipsComposerOriginEntries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "hooks"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hooks/install"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hooks", "install"), []byte("hand edited"), 0o755))

	baseline := manifest.Manifest{
		"hooks/install": {Origin: "composer", Kind: "dynamic", SHA256: sha("generated")},
	}

	vfs := adapters.NewOSFilesystem()
	target := domain.NewAbsPath(dir).Unwrap()

	res := Classify(context.Background(), vfs, target, baseline)
	require.True(t, res.IsOk())
	c := res.Unwrap()

	assert.Empty(t, c.Changed)
	assert.Empty(t, c.Added)
	assert.Empty(t, c.Deleted)
	assert.True(t, c.Empty())
}

func TestClassify_IgnoresManifestFileItself(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifest.FileName), []byte("{}"), 0o644))

	vfs := adapters.NewOSFilesystem()
	target := domain.NewAbsPath(dir).Unwrap()

	res := Classify(context.Background(), vfs, target, manifest.Manifest{})
	require.True(t, res.IsOk())
	assert.True(t, res.Unwrap().Empty())
}

func TestGate_NoChangesReturnsNoWarningsNoError(t *testing.T) {
	warnings, err := Gate(Classification{}, false)
	assert.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestGate_ChangesWithoutForceFailsWithUnexpectedModifications(t *testing.T) {
	c := Classification{Changed: []string{"metadata.yaml"}, Deleted: []string{"config.yaml"}}

	_, err := Gate(c, false)
	require.Error(t, err)

	var um domain.UnexpectedModifications
	require.ErrorAs(t, err, &um)
	assert.Equal(t, []string{"metadata.yaml"}, um.Changed)
	assert.Equal(t, []string{"config.yaml"}, um.Deleted)
}

func TestGate_AddedOnlyWithoutForceFailsWithUnexpectedModifications(t *testing.T) {
	c := Classification{Added: []string{"README.md"}}

	_, err := Gate(c, false)
	require.Error(t, err)

	var um domain.UnexpectedModifications
	require.ErrorAs(t, err, &um)
	assert.Equal(t, []string{"README.md"}, um.Added)
	assert.Empty(t, um.Changed)
	assert.Empty(t, um.Deleted)
}

func TestGate_AddedOnlyWithForceReturnsWarning(t *testing.T) {
	c := Classification{Added: []string{"README.md"}}

	warnings, err := Gate(c, true)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "README.md")
}

func TestGate_ChangesWithForceReturnsWarnings(t *testing.T) {
	c := Classification{Changed: []string{"metadata.yaml"}, Deleted: []string{"config.yaml"}}

	warnings, err := Gate(c, true)
	require.NoError(t, err)
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "metadata.yaml")
	assert.Contains(t, warnings[1], "config.yaml")
}
