package resolver

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/compotron/compose/internal/domain"
	"github.com/compotron/compose/internal/fetcher"
	"github.com/compotron/compose/internal/layerconfig"
)

// prefetchWorkers bounds how many include references a layer's fetch
// resolves concurrently (spec.md §5: fetch operations for independent
// top-level includes may run concurrently; plan build/execute stays
// single-threaded).
const prefetchWorkers = 4

// registry is the subset of fetcher.Registry the resolver needs, so tests
// can substitute a stub without constructing real resolvers.
type registry interface {
	Resolve(ctx context.Context, ref domain.LayerRef, series string) domain.Result[domain.AbsPath]
}

// Resolver expands a top layer's includes into a LayerChain.
type Resolver struct {
	vfs       domain.FS
	registry  registry
	series    string
	validator *layerconfig.Validator
}

// New builds a Resolver bound to a fetcher registry and series.
func New(vfs domain.FS, reg *fetcher.Registry, series string) *Resolver {
	return &Resolver{vfs: vfs, registry: reg, series: series}
}

// WithSchema attaches a layer-config JSON Schema validator; every
// composer.yaml/interface.yaml Load call is validated against it. nil
// (the default) disables validation.
func (r *Resolver) WithSchema(v *layerconfig.Validator) *Resolver {
	r.validator = v
	return r
}

// state carries the working sets threaded through the recursive walk.
type state struct {
	ctx        context.Context
	visiting   map[string]bool // cycle detection: dirs on the current DFS path
	emitted    map[string]bool // dedup: layers already appended to the chain
	layers     []*Layer
	interfaces map[string]bool
	interfaceL []*Interface
	cyclePath  []string
}

// Resolve walks topDir's includes depth-first, producing a bottom-up
// LayerChain with topDir itself last among the real layers, followed by a
// synthetic Target layer naming outputDir.
func (r *Resolver) Resolve(ctx context.Context, topDir domain.AbsPath, outputDir domain.AbsPath) domain.Result[*LayerChain] {
	st := &state{
		ctx:        ctx,
		visiting:   map[string]bool{},
		emitted:    map[string]bool{},
		interfaces: map[string]bool{},
	}

	if err := r.walk(st, domain.NewLayerRef(topDir.String()), topDir); err != nil {
		return domain.Err[*LayerChain](err)
	}

	topKey := topDir.String()
	var topLayer *Layer
	for _, l := range st.layers {
		if l.Dir.String() == topKey {
			topLayer = l
			break
		}
	}
	if topLayer == nil || !topLayer.Config.Configured {
		return domain.Err[*LayerChain](domain.NotConfigured{Dir: topKey})
	}

	target := &Layer{
		Ref: domain.NewLayerRef(outputDir.String()),
		Dir: outputDir,
		Config: &layerconfig.Config{
			Raw:        domain.Document{},
			Configured: false,
		},
	}

	return domain.Ok(&LayerChain{
		Layers:     st.layers,
		Interfaces: st.interfaceL,
		Target:     target,
	})
}

// walk resolves and recurses into one layer directory, then appends it to
// st.layers (unless already emitted), implementing spec.md §4.3: recurse
// into includes first (so dependencies precede dependents), dedup by
// first occurrence, detect cycles via the visiting set.
func (r *Resolver) walk(st *state, ref domain.LayerRef, dir domain.AbsPath) error {
	key := dir.String()
	if st.visiting[key] {
		return domain.CyclicLayerGraph{Cycle: append(append([]string{}, st.cyclePath...), key)}
	}
	st.visiting[key] = true
	st.cyclePath = append(st.cyclePath, key)
	defer func() {
		delete(st.visiting, key)
		st.cyclePath = st.cyclePath[:len(st.cyclePath)-1]
	}()

	cfgRes := layerconfig.Load(st.ctx, r.vfs, dir, false, r.validator)
	if cfgRes.IsErr() {
		return cfgRes.UnwrapErr()
	}
	cfg := cfgRes.Unwrap()

	resolved, err := r.prefetch(st.ctx, cfg.Includes)
	if err != nil {
		return err
	}

	for _, include := range cfg.Includes {
		childDir := resolved[include.Normalized()]
		if include.IsInterface() {
			if err := r.resolveInterface(st, include, childDir); err != nil {
				return err
			}
			continue
		}
		if err := r.walk(st, include, childDir); err != nil {
			return err
		}
	}

	if !st.emitted[key] {
		st.emitted[key] = true
		ignoreRes := cfg.IgnoreSet()
		if ignoreRes.IsErr() {
			return ignoreRes.UnwrapErr()
		}
		st.layers = append(st.layers, &Layer{Ref: ref, Dir: dir, Config: cfg, Ignore: ignoreRes.Unwrap()})
	}
	return nil
}

// prefetch resolves every distinct include reference concurrently (bounded
// by prefetchWorkers), so network/git-backed lookups for independent
// includes overlap instead of running one after another. The subsequent
// walk over cfg.Includes stays sequential and ordered.
func (r *Resolver) prefetch(ctx context.Context, refs []domain.LayerRef) (map[string]domain.AbsPath, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchWorkers)

	var mu sync.Mutex
	resolved := make(map[string]domain.AbsPath, len(refs))
	seen := make(map[string]bool, len(refs))

	for _, ref := range refs {
		key := ref.Normalized()
		if seen[key] {
			continue
		}
		seen[key] = true

		ref := ref
		g.Go(func() error {
			dirRes := r.registry.Resolve(gctx, ref, r.series)
			if dirRes.IsErr() {
				return dirRes.UnwrapErr()
			}
			mu.Lock()
			resolved[key] = dirRes.Unwrap()
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolved, nil
}

func (r *Resolver) resolveInterface(st *state, ref domain.LayerRef, dir domain.AbsPath) error {
	key := dir.String()
	if st.interfaces[key] {
		return nil
	}
	st.interfaces[key] = true

	cfgRes := layerconfig.Load(st.ctx, r.vfs, dir, true, r.validator)
	if cfgRes.IsErr() {
		return cfgRes.UnwrapErr()
	}
	st.interfaceL = append(st.interfaceL, &Interface{Ref: ref, Dir: dir, Config: cfgRes.Unwrap(), Name: ref.Name()})
	return nil
}
