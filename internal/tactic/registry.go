package tactic

// Registry holds an ordered list of tactic Classes and dispatches the
// first whose Trigger matches a given relpath, per spec.md §4.4.
type Registry struct {
	classes []Class
}

// DefaultClasses returns the built-in dispatch order from spec.md §4.4:
// manifest suppression, package installer, the three structured-document
// merges, hooks, actions, and the universal copy fallback.
func DefaultClasses() []Class {
	return []Class{
		&ManifestClass{},
		&InstallerClass{},
		&MetadataYAMLClass{},
		&ConfigYAMLClass{},
		&ComposerYAMLClass{},
		&HookClass{},
		&ActionClass{},
		&CopyClass{},
	}
}

// NewRegistry builds a registry from classes in priority order. A layer's
// own `tactics:` list is meant to be prepended by the caller (the
// planner) when that layer acts as the config layer for the one below it,
// per spec.md §4.4 — this constructor just holds whatever order it's given.
func NewRegistry(classes []Class) *Registry {
	return &Registry{classes: classes}
}

// Dispatch returns the first class whose Trigger matches relpath, or nil
// if none do (the planner skips entries with no matching tactic).
func (r *Registry) Dispatch(relpath string) Class {
	for _, c := range r.classes {
		if c.Trigger(relpath) {
			return c
		}
	}
	return nil
}

// WithCustom returns a new Registry with extra classes prepended ahead of
// the default order — the layer-above's `tactics:` entries.
func (r *Registry) WithCustom(custom []Class) *Registry {
	merged := make([]Class, 0, len(custom)+len(r.classes))
	merged = append(merged, custom...)
	merged = append(merged, r.classes...)
	return &Registry{classes: merged}
}
