package resolver

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compotron/compose/internal/adapters"
	"github.com/compotron/compose/internal/domain"
)

// fakeRegistry resolves every ref to a pre-registered directory, counting
// calls and tracking concurrency so prefetch's dedup and bounding can be
// asserted without a real fetcher.Registry.
type fakeRegistry struct {
	dirs map[string]string

	mu          sync.Mutex
	calls       map[string]int
	concurrent  int32
	maxObserved int32
}

func (f *fakeRegistry) Resolve(ctx context.Context, ref domain.LayerRef, series string) domain.Result[domain.AbsPath] {
	cur := atomic.AddInt32(&f.concurrent, 1)
	defer atomic.AddInt32(&f.concurrent, -1)
	for {
		max := atomic.LoadInt32(&f.maxObserved)
		if cur <= max || atomic.CompareAndSwapInt32(&f.maxObserved, max, cur) {
			break
		}
	}

	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[ref.Normalized()]++
	f.mu.Unlock()

	dir, ok := f.dirs[ref.Normalized()]
	if !ok {
		return domain.Err[domain.AbsPath](domain.UnresolvedLayer{Ref: ref.Raw})
	}
	return domain.NewAbsPath(dir)
}

func writeLayer(t *testing.T, dir string, composerYAML string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if composerYAML != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "composer.yaml"), []byte(composerYAML), 0o644))
	}
}

func TestResolve_SingleLayerNoIncludes(t *testing.T) {
	topDir := t.TempDir()
	writeLayer(t, topDir, "name: top\n")

	outDir := t.TempDir()
	reg := &fakeRegistry{dirs: map[string]string{}}

	r := New(adapters.NewOSFilesystem(), nil, "trusty")
	r.registry = reg

	res := r.Resolve(context.Background(), domain.NewAbsPath(topDir).Unwrap(), domain.NewAbsPath(outDir).Unwrap())
	require.True(t, res.IsOk())

	chain := res.Unwrap()
	require.Len(t, chain.Layers, 1)
	assert.Equal(t, "top", chain.Layers[0].Name())
}

func TestResolve_IncludesAreFetchedConcurrentlyAndDeduped(t *testing.T) {
	topDir := t.TempDir()
	baseADir := t.TempDir()
	baseBDir := t.TempDir()

	writeLayer(t, topDir, "includes:\n  - base-a\n  - base-b\n  - base-a\n")
	writeLayer(t, baseADir, "name: base-a\n")
	writeLayer(t, baseBDir, "name: base-b\n")

	outDir := t.TempDir()
	reg := &fakeRegistry{dirs: map[string]string{
		"base-a": baseADir,
		"base-b": baseBDir,
	}}

	r := New(adapters.NewOSFilesystem(), nil, "trusty")
	r.registry = reg

	res := r.Resolve(context.Background(), domain.NewAbsPath(topDir).Unwrap(), domain.NewAbsPath(outDir).Unwrap())
	require.True(t, res.IsOk())

	chain := res.Unwrap()
	require.Len(t, chain.Layers, 3)
	assert.Equal(t, "base-a", chain.Layers[0].Name())
	assert.Equal(t, "base-b", chain.Layers[1].Name())
	assert.Equal(t, "top", chain.Layers[2].Name())

	assert.Equal(t, 1, reg.calls["base-a"], "a repeated include must be resolved only once")
	assert.Equal(t, 1, reg.calls["base-b"])
}

func TestResolve_UnresolvedIncludePropagatesError(t *testing.T) {
	topDir := t.TempDir()
	writeLayer(t, topDir, "includes: missing-layer\n")

	outDir := t.TempDir()
	reg := &fakeRegistry{dirs: map[string]string{}}

	r := New(adapters.NewOSFilesystem(), nil, "trusty")
	r.registry = reg

	res := r.Resolve(context.Background(), domain.NewAbsPath(topDir).Unwrap(), domain.NewAbsPath(outDir).Unwrap())
	require.True(t, res.IsErr())

	var unresolved domain.UnresolvedLayer
	require.ErrorAs(t, res.UnwrapErr(), &unresolved)
}

func TestResolve_UnconfiguredTopLayerFails(t *testing.T) {
	topDir := t.TempDir() // no composer.yaml at all

	outDir := t.TempDir()
	reg := &fakeRegistry{dirs: map[string]string{}}

	r := New(adapters.NewOSFilesystem(), nil, "trusty")
	r.registry = reg

	res := r.Resolve(context.Background(), domain.NewAbsPath(topDir).Unwrap(), domain.NewAbsPath(outDir).Unwrap())
	require.True(t, res.IsErr())

	var notConfigured domain.NotConfigured
	require.ErrorAs(t, res.UnwrapErr(), &notConfigured)
}

func TestResolve_EmptyComposerYAMLAtTopLeavesItUnconfigured(t *testing.T) {
	topDir := t.TempDir()
	writeLayer(t, topDir, "   \n")

	outDir := t.TempDir()
	reg := &fakeRegistry{dirs: map[string]string{}}

	r := New(adapters.NewOSFilesystem(), nil, "trusty")
	r.registry = reg

	res := r.Resolve(context.Background(), domain.NewAbsPath(topDir).Unwrap(), domain.NewAbsPath(outDir).Unwrap())
	require.True(t, res.IsErr())

	var notConfigured domain.NotConfigured
	require.ErrorAs(t, res.UnwrapErr(), &notConfigured)
}
