// Package planner walks a resolved LayerChain bottom-up, dispatching each
// contributed path to a tactic and folding repeated paths via Combine —
// the "Planner" component of spec.md §2/§4.6.
package planner

import "github.com/compotron/compose/internal/tactic"

// Plan is an ordered mapping from output-relative path to a single tactic
// Instance, insertion order preserved: a path keeps the position of its
// first contributor even when a higher layer replaces its tactic
// instance, per spec.md §3.
type Plan struct {
	order   []string
	entries map[string]tactic.Instance
}

// NewPlan returns an empty Plan.
func NewPlan() *Plan {
	return &Plan{entries: map[string]tactic.Instance{}}
}

// Get returns the instance currently occupying relpath, if any.
func (p *Plan) Get(relpath string) (tactic.Instance, bool) {
	inst, ok := p.entries[relpath]
	return inst, ok
}

// Set inserts or replaces the instance at relpath, preserving the
// original insertion position on replacement.
func (p *Plan) Set(relpath string, inst tactic.Instance) {
	if _, exists := p.entries[relpath]; !exists {
		p.order = append(p.order, relpath)
	}
	p.entries[relpath] = inst
}

// Paths returns every path in the plan, in insertion order.
func (p *Plan) Paths() []string {
	return p.order
}

// Len reports how many paths the plan contains.
func (p *Plan) Len() int { return len(p.order) }

// Each calls fn for every path in insertion order.
func (p *Plan) Each(fn func(relpath string, inst tactic.Instance)) {
	for _, path := range p.order {
		fn(path, p.entries[path])
	}
}
