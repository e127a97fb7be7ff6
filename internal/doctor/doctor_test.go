package doctor

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
	"github.com/compotron/compose/internal/delta"
	"github.com/compotron/compose/internal/domain"
	"github.com/compotron/compose/internal/manifest"
	"github.com/compotron/compose/internal/tactic"
)

func TestRun_HealthyWhenNoDrift(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.yaml"), []byte("name: x"), 0o644))

	vfs := adapters.NewOSFilesystem()
	target := domain.NewAbsPath(dir).Unwrap()
	store := manifest.NewStore(vfs)

	sum := sha256.Sum256([]byte("name: x"))
	m := manifest.FromSignatures(map[string]tactic.Signature{
		"metadata.yaml": {Origin: "trusty/a", Kind: tactic.KindStatic, SHA256: hex.EncodeToString(sum[:])},
	})
	require.NoError(t, store.Save(context.Background(), target, m))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.yaml"), []byte("name: x"), 0o644))

	res := Run(context.Background(), vfs, store, target)
	require.True(t, res.IsOk())
	report := res.Unwrap()

	assert.False(t, report.NoManifest)
	assert.True(t, report.Healthy())
}

func TestRun_NoManifestMeansEverythingUntracked(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.yaml"), []byte("name: x"), 0o644))

	vfs := adapters.NewOSFilesystem()
	target := domain.NewAbsPath(dir).Unwrap()
	store := manifest.NewStore(vfs)

	res := Run(context.Background(), vfs, store, target)
	require.True(t, res.IsOk())
	report := res.Unwrap()

	assert.True(t, report.NoManifest)
	assert.False(t, report.Healthy())
	assert.Contains(t, report.Classification.Added, "metadata.yaml")
}

func TestRender_HealthyReportIsOneLine(t *testing.T) {
	out := Render(Report{})
	assert.Equal(t, "no drift detected: output matches manifest\n", out)
}

func TestRender_ListsEachSection(t *testing.T) {
	r := Report{
		NoManifest: true,
		Classification: delta.Classification{
			Changed: []string{"metadata.yaml"},
			Deleted: []string{"config.yaml"},
			Added:   []string{"README.md"},
		},
	}

	out := Render(r)
	assert.Contains(t, out, "no manifest found")
	assert.Contains(t, out, "tampered (changed since last build) (1):")
	assert.Contains(t, out, "metadata.yaml")
	assert.Contains(t, out, "removed since last build (1):")
	assert.Contains(t, out, "config.yaml")
	assert.Contains(t, out, "untracked (not in manifest) (1):")
	assert.Contains(t, out, "README.md")
}
