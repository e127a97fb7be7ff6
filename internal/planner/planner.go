package planner

import (
	"context"

	"github.com/compotron/compose/internal/domain"
	"github.com/compotron/compose/internal/ignore"
	"github.com/compotron/compose/internal/resolver"
	"github.com/compotron/compose/internal/tactic"
	"github.com/compotron/compose/internal/walker"
)

// Result is the planner's product plus any non-fatal warnings collected
// along the way (unresolved custom tactics). A missing hook-diversion
// target is logged by the hook tactic at apply time, not collected here.
type Result struct {
	Plan     *Plan
	Warnings []string
}

// Planner builds a Plan from a resolved LayerChain.
type Planner struct {
	vfs domain.FS
	log domain.Logger
}

// New builds a Planner.
func New(vfs domain.FS, log domain.Logger) *Planner {
	return &Planner{vfs: vfs, log: log}
}

// Build walks chain.Layers bottom-up (spec.md §4.6), then appends
// interface-derived tactics once the merged metadata.yaml is known
// (spec.md §9's two-pass design).
func (p *Planner) Build(ctx context.Context, chain *resolver.LayerChain) domain.Result[*Result] {
	plan := NewPlan()
	var warnings []string

	topLayerIs := ""
	if len(chain.Layers) > 0 {
		topLayerIs = chain.Layers[len(chain.Layers)-1].Ref.Normalized()
	}

	for i, layer := range chain.Layers {
		effectiveConfig := chain.ConfigAbove(i)

		base := tactic.DefaultClasses()
		if effectiveConfig != nil && len(effectiveConfig.Tactics) > 0 {
			custom, unresolved := resolveCustomTactics(effectiveConfig.Tactics)
			for _, name := range unresolved {
				warnings = append(warnings, "unresolved custom tactic: "+name)
			}
			base = append(append([]tactic.Class{}, custom...), base...)
		}
		registry := tactic.NewRegistry(base)

		var filter *ignore.Set
		if i+1 < len(chain.Layers) {
			filter = chain.Layers[i+1].Ignore
		}
		if filter == nil {
			builtinOnly := ignore.NewSet(nil)
			if builtinOnly.IsErr() {
				return domain.Err[*Result](builtinOnly.UnwrapErr())
			}
			filter = builtinOnly.Unwrap()
		}

		entries, err := walker.Walk(ctx, p.vfs, layer.Dir, filter)
		if err != nil {
			return domain.Err[*Result](err)
		}

		lowerLayers := make([]tactic.LayerInfo, 0, i)
		for j := i - 1; j >= 0; j-- {
			lowerLayers = append(lowerLayers, tactic.LayerInfo{Name: chain.Layers[j].Name(), Dir: chain.Layers[j].Dir})
		}

		for _, entry := range entries {
			relStr := entry.RelPath.String()
			class := registry.Dispatch(relStr)
			if class == nil {
				continue
			}
			tc := tactic.Context{
				RelPath:         entry.RelPath,
				SourceAbs:       entry.AbsPath,
				OwningLayerName: layer.Name(),
				TargetDir:       chain.Target.Dir,
				EffectiveConfig: effectiveConfig,
				TopLayerIs:      topLayerIs,
				LowerLayers:     lowerLayers,
				FS:              p.vfs,
				Log:             p.log,
			}
			inst := class.New(tc)
			if prior, ok := plan.Get(relStr); ok {
				inst = inst.Combine(prior)
			}
			plan.Set(relStr, inst)
		}
	}

	if len(chain.Interfaces) > 0 {
		if _, ok := plan.Get("metadata.yaml"); !ok {
			return domain.Err[*Result](domain.MissingMetadata{LayerChain: layerNames(chain)})
		}
		if err := p.appendInterfaces(ctx, chain, plan); err != nil {
			return domain.Err[*Result](err)
		}
	}

	return domain.Ok(&Result{Plan: plan, Warnings: warnings})
}

// appendInterfaces is the planner's second pass (spec.md §9): materialise
// the merged metadata.yaml, enumerate every relation under
// provides/requires/peer, and for each whose `interface` key names a
// fetched Interface, copy that interface's files under
// hooks/relations/<relation-name>/ and generate the four
// relation-lifecycle wrapper hooks that bind it. A relation's name (the
// map key) can differ from the interface it uses, and hooks are always
// named after the relation, matching spec.md §4.6.
func (p *Planner) appendInterfaces(ctx context.Context, chain *resolver.LayerChain, plan *Plan) error {
	metadata, err := p.mergeMetadata(ctx, chain)
	if err != nil {
		return err
	}

	byName := make(map[string]*resolver.Interface, len(chain.Interfaces))
	for _, iface := range chain.Interfaces {
		byName[iface.Name] = iface
	}

	for _, section := range []string{"provides", "requires", "peer"} {
		relations, ok := metadata[section].(map[string]interface{})
		if !ok {
			continue
		}
		for relationName, raw := range relations {
			relation, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			ifaceName, _ := relation["interface"].(string)
			iface, ok := byName[ifaceName]
			if !ok {
				continue
			}
			if err := p.appendInterfaceRelation(ctx, chain, plan, iface, relationName); err != nil {
				return err
			}
		}
	}
	return nil
}

// mergeMetadata synchronously reproduces the deep-merge chain that
// serializedInstance would otherwise only build lazily during the
// executor's Apply phase (tactic.MetadataYAMLClass): each layer's raw
// metadata.yaml, bottom-up, deep-merged over the accumulated result with
// that layer's effective metadata.deletes applied. The planner needs the
// merged document itself, before Apply ever runs, to resolve interface
// relations.
func (p *Planner) mergeMetadata(ctx context.Context, chain *resolver.LayerChain) (domain.Document, error) {
	accumulated := domain.Document{}
	for i, layer := range chain.Layers {
		path := layer.Dir.Join("metadata.yaml")
		if !p.vfs.Exists(ctx, path.String()) {
			continue
		}
		data, err := p.vfs.ReadFile(ctx, path.String())
		if err != nil {
			return nil, err
		}
		docRes := domain.ParseDocument(data)
		if docRes.IsErr() {
			return nil, docRes.UnwrapErr()
		}

		mergedRes := domain.DeepMerge(accumulated, docRes.Unwrap())
		if mergedRes.IsErr() {
			return nil, mergedRes.UnwrapErr()
		}
		merged := mergedRes.Unwrap()

		if effectiveConfig := chain.ConfigAbove(i); effectiveConfig != nil {
			for _, entry := range effectiveConfig.MetadataDeletes {
				delRes := domain.DeletePath(merged, entry)
				if delRes.IsErr() {
					return nil, delRes.UnwrapErr()
				}
				merged = delRes.Unwrap()
			}
		}

		accumulated = merged
	}
	return accumulated, nil
}

// appendInterfaceRelation copies one matched interface's files under
// hooks/relations/<relationName>/ (synthesizing an empty __init__.py at
// that root if the interface itself doesn't ship one, spec.md line 121)
// and appends the four relation-lifecycle wrapper hooks.
func (p *Planner) appendInterfaceRelation(ctx context.Context, chain *resolver.LayerChain, plan *Plan, iface *resolver.Interface, relationName string) error {
	filterRes := ignore.NewSet(nil)
	if filterRes.IsErr() {
		return filterRes.UnwrapErr()
	}
	entries, err := walker.Walk(ctx, p.vfs, iface.Dir, filterRes.Unwrap())
	if err != nil {
		return err
	}

	base := tactic.Context{
		OwningLayerName: "interface:" + iface.Name,
		TargetDir:       chain.Target.Dir,
		FS:              p.vfs,
		Log:             p.log,
	}

	hasInit := false
	for _, entry := range entries {
		if entry.RelPath.String() == "__init__.py" {
			hasInit = true
		}
		destRel := domain.NewRelPath("hooks/relations/" + relationName + "/" + entry.RelPath.String())
		if destRel.IsErr() {
			continue
		}
		relStr := destRel.Unwrap().String()
		tc := base
		tc.RelPath = destRel.Unwrap()
		tc.SourceAbs = entry.AbsPath
		inst := &tactic.InterfaceCopyInstance{Context: tc, RelationName: relationName}
		if prior, ok := plan.Get(relStr); ok {
			plan.Set(relStr, inst.Combine(prior))
		} else {
			plan.Set(relStr, inst)
		}
	}

	if !hasInit {
		if initRel := domain.NewRelPath("hooks/relations/" + relationName + "/__init__.py"); initRel.IsOk() {
			relStr := initRel.Unwrap().String()
			tc := base
			tc.RelPath = initRel.Unwrap()
			inst := tactic.NewInterfaceInitInstance(tc, relationName)
			if prior, ok := plan.Get(relStr); ok {
				plan.Set(relStr, inst.Combine(prior))
			} else {
				plan.Set(relStr, inst)
			}
		}
	}

	for _, bindInst := range tactic.NewInterfaceBindInstances(base, relationName) {
		relStr := bindInst.RelPath.String()
		if prior, ok := plan.Get(relStr); ok {
			plan.Set(relStr, bindInst.Combine(prior))
		} else {
			plan.Set(relStr, bindInst)
		}
	}
	return nil
}

func layerNames(chain *resolver.LayerChain) []string {
	names := make([]string, 0, len(chain.Layers))
	for _, l := range chain.Layers {
		names = append(names, l.Name())
	}
	return names
}
