// Package fetcher resolves a LayerRef to a local directory: the "Fetcher
// registry" component of spec.md §2/§4.1. Resolvers are consulted in
// registration order; the first to claim a reference wins.
package fetcher

import (
	"context"

	"github.com/compotron/compose/internal/domain"
)

// Resolver claims a reference and returns its local directory, or reports
// NotFound so the registry tries the next resolver.
type Resolver interface {
	// Resolve attempts to satisfy ref for the given series. ok is false
	// when this resolver does not apply to ref at all (wrong prefix,
	// nothing found) — that is not itself an error.
	Resolve(ctx context.Context, ref domain.LayerRef, series string) (dir domain.AbsPath, ok bool, err error)
	// Name identifies the resolver in logs and errors.
	Name() string
}

// Registry tries its resolvers in order and reports UnresolvedLayer if
// none claims the reference.
type Registry struct {
	resolvers []Resolver
	log       domain.Logger
}

// NewRegistry builds a registry from resolvers in priority order.
func NewRegistry(log domain.Logger, resolvers ...Resolver) *Registry {
	return &Registry{resolvers: resolvers, log: log}
}

// Resolve runs every resolver in order, returning the first hit.
func (r *Registry) Resolve(ctx context.Context, ref domain.LayerRef, series string) domain.Result[domain.AbsPath] {
	for _, resolver := range r.resolvers {
		dir, ok, err := resolver.Resolve(ctx, ref, series)
		if err != nil {
			return domain.Err[domain.AbsPath](err)
		}
		if ok {
			if r.log != nil {
				r.log.Debug(ctx, "resolved layer reference", "ref", ref.String(), "resolver", resolver.Name(), "dir", dir.String())
			}
			return domain.Ok(dir)
		}
	}
	return domain.Err[domain.AbsPath](domain.UnresolvedLayer{Ref: ref.String(), Series: series})
}
