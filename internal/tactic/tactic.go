// Package tactic implements the per-file composition strategies: verbatim
// copy, structured-document merge, hook/action handling, interface copy
// and binding, package-spec installation, and manifest suppression — the
// "Tactics" component of spec.md §2/§4.4/§4.5.
package tactic

import (
	"context"

	"github.com/compotron/compose/internal/domain"
	"github.com/compotron/compose/internal/layerconfig"
)

// Kind tags whether a tactic instance produces a byte-identical copy of
// its source (static) or a value computed from merged layer state
// (dynamic), recorded in the manifest alongside the origin layer.
type Kind string

const (
	KindStatic  Kind = "static"
	KindDynamic Kind = "dynamic"
)

// Signature is one manifest entry: the layer a produced file is
// attributed to, its Kind, and the sha256 of its final on-disk contents.
type Signature struct {
	Origin string
	Kind   Kind
	SHA256 string
}

// Context is everything a tactic instance needs to lint, read, apply,
// and sign one output path: the file it was triggered for, the layer
// that contributed it, the target (output) directory, and — per spec.md
// §3 — the effective config, which is the configuration of the layer
// *above* the owning layer (nil for the topmost layer).
type Context struct {
	RelPath domain.RelPath
	// SourceAbs is the absolute path of the file that triggered dispatch,
	// inside the owning layer's directory. Empty for tactics synthesised
	// without a concrete source file (e.g. an interface binding).
	SourceAbs domain.AbsPath

	OwningLayerName string
	TargetDir       domain.AbsPath
	EffectiveConfig *layerconfig.Config
	// TopLayerIs is the two-segment repo-relative path of the plan's top
	// layer, used only by ComposerYAML to rewrite the `is` key.
	TopLayerIs string
	// LowerLayers lists the layers strictly below the owning layer,
	// nearest first, used only by HookTactic/ActionTactic to locate the
	// hook a .pre/.post file diverts.
	LowerLayers []LayerInfo

	FS  domain.FS
	Log domain.Logger
}

// LayerInfo is the minimal view of a layer a tactic instance needs to
// locate sibling files in layers other than its own.
type LayerInfo struct {
	Name string
	Dir  domain.AbsPath
}

// Instance is one Tactic bound to one output path, created during
// planning and consumed during execution.
type Instance interface {
	// Lint validates the input, returning warnings that do not abort and
	// an error only for conditions that must stop the plan (rare at this
	// stage; most invalid-input problems surface at Apply time).
	Lint(ctx context.Context) ([]string, error)
	// Read loads and caches source bytes/parsed documents into memory, so
	// Apply can run even when source and destination alias the same file
	// (in-place regeneration).
	Read(ctx context.Context) error
	// Apply produces the output file(s) on disk.
	Apply(ctx context.Context) error
	// Sign returns the manifest entries this instance produced: typically
	// one entry keyed by its own RelPath, empty for tactics that suppress
	// output (ManifestTactic) or only produce directories.
	Sign(ctx context.Context) (map[string]Signature, error)
	// Combine folds this instance with the instance that occupied the
	// same output path in a lower layer, returning the instance that
	// should now own the path. For most tactics this simply replaces
	// `prior`; SerializedTactic implementations instead absorb its
	// accumulated data before replacing it.
	Combine(prior Instance) Instance
	// Kind reports whether this instance is a static copy or a computed
	// document.
	Kind() Kind
}

// Class is a tactic family: a trigger predicate plus a constructor. The
// registry holds an ordered list of Classes and dispatches the first
// whose Trigger matches.
type Class interface {
	Name() string
	Trigger(relpath string) bool
	New(tc Context) Instance
}
