// Package resolver expands a layer's `includes` into a bottom-up
// LayerChain plus an Interface set, the "Dependency resolver" component
// of spec.md §2/§4.3.
package resolver

import (
	"github.com/compotron/compose/internal/domain"
	"github.com/compotron/compose/internal/ignore"
	"github.com/compotron/compose/internal/layerconfig"
)

// Layer is a resolved, loaded layer: an immutable directory plus its
// parsed configuration, built once by the loader and never mutated again
// (spec.md §3).
type Layer struct {
	Ref    domain.LayerRef
	Dir    domain.AbsPath
	Config *layerconfig.Config
	Ignore *ignore.Set
}

// Name returns the layer's declared name, falling back to the resolved
// directory's base name when the config does not set one.
func (l *Layer) Name() string {
	if l.Config != nil && l.Config.Name != "" {
		return l.Config.Name
	}
	return l.Dir.Base()
}

// Interface is a resolved interface package.
type Interface struct {
	Ref    domain.LayerRef
	Dir    domain.AbsPath
	Config *layerconfig.Config
	Name   string
}

// LayerChain is the resolver's product: an ordered bottom-to-top sequence
// of Layers, the set of Interfaces encountered anywhere in the graph, and
// a designated Target layer naming the output directory only (it owns no
// input files and appears last, per spec.md §3).
type LayerChain struct {
	Layers     []*Layer
	Interfaces []*Interface
	Target     *Layer
}

// ConfigAbove returns the effective config for the layer at index i: the
// config of the layer immediately above it, or nil for the topmost real
// layer (excluding the synthetic Target), per spec.md §3's "config refers
// to the next higher layer" invariant.
func (c *LayerChain) ConfigAbove(i int) *layerconfig.Config {
	if i+1 >= len(c.Layers) {
		return nil
	}
	return c.Layers[i+1].Config
}
