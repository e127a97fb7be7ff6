package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compotron/compose/internal/adapters"
	"github.com/compotron/compose/internal/domain"
)

func TestNew_DefaultsFillMissingFSLoggerTracer(t *testing.T) {
	dir := t.TempDir()
	depsRoot := domain.NewAbsPath(dir).Unwrap()

	e := New(Options{DepsRoot: depsRoot})

	assert.NotNil(t, e.FS)
	assert.NotNil(t, e.Log)
	assert.NotNil(t, e.Registry)
	assert.NotNil(t, e.Resolver)
	assert.NotNil(t, e.Planner)
	assert.NotNil(t, e.Executor)
	assert.NotNil(t, e.Manifest)
}

func TestNew_CarriesFetchTimeoutThrough(t *testing.T) {
	dir := t.TempDir()
	depsRoot := domain.NewAbsPath(dir).Unwrap()

	e := New(Options{DepsRoot: depsRoot, FetchTimeout: 5 * time.Second})
	assert.Equal(t, 5*time.Second, e.FetchTimeout)
}

func TestNew_UnknownInterfaceUnresolvedWithOrWithoutRegistryURL(t *testing.T) {
	dir := t.TempDir()
	depsRoot := domain.NewAbsPath(dir).Unwrap()

	withoutRemote := New(Options{DepsRoot: depsRoot})
	withRemote := New(Options{DepsRoot: depsRoot, RegistryURL: "https://example.invalid/interfaces"})

	ctx := context.Background()
	ref := domain.NewLayerRef("interface:no-such-thing")

	resNoRemote := withoutRemote.Registry.Resolve(ctx, ref, "trusty")
	resRemote := withRemote.Registry.Resolve(ctx, ref, "trusty")

	require.True(t, resNoRemote.IsErr())
	require.True(t, resRemote.IsErr())
}

func TestNew_BuildsDefaultValidatorWhenSchemaPathEmpty(t *testing.T) {
	dir := t.TempDir()
	depsRoot := domain.NewAbsPath(dir).Unwrap()

	e := New(Options{DepsRoot: depsRoot})
	assert.NotNil(t, e.Resolver)
}

func TestNew_FallsBackToDefaultSchemaWhenSchemaPathUnreadable(t *testing.T) {
	dir := t.TempDir()
	depsRoot := domain.NewAbsPath(dir).Unwrap()

	e := New(Options{DepsRoot: depsRoot, SchemaPath: filepath.Join(dir, "does-not-exist.json")})
	assert.NotNil(t, e.Resolver, "a missing schema file should log a warning and fall back, not panic")
}

func TestNew_ResolverFindsLocalLayerRelativeToCwd(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	layerName := "bootstrap-test-layer-xyz"
	layerDir := filepath.Join(cwd, layerName)
	require.NoError(t, os.MkdirAll(layerDir, 0o755))
	t.Cleanup(func() { os.RemoveAll(layerDir) })
	require.NoError(t, os.WriteFile(filepath.Join(layerDir, "composer.yaml"), []byte("name: "+layerName+"\n"), 0o644))

	dir := t.TempDir()
	depsRoot := domain.NewAbsPath(dir).Unwrap()
	e := New(Options{FS: adapters.NewOSFilesystem(), DepsRoot: depsRoot})

	res := e.Registry.Resolve(context.Background(), domain.NewLayerRef(layerName), "trusty")
	assert.True(t, res.IsOk(), "expected local repo resolver to find %s relative to cwd", layerName)
}
