package tactic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"

	"github.com/compotron/compose/internal/domain"
)

// relationHookKinds are the four lifecycle events every Juju-style
// relation interface binds.
var relationHookKinds = []string{"joined", "changed", "departed", "broken"}

// InterfaceCopyInstance copies one file from a resolved interface
// directory into the output tree under
// hooks/relations/<relation-name>/<relpath-inside-interface>, the same
// verbatim-copy contract as CopyTactic but scoped to interface content
// rather than a layer's own files. The planner constructs these directly
// (interfaces are not dispatched through the per-layer tactic registry,
// since they are visited in a second pass after metadata is merged).
type InterfaceCopyInstance struct {
	Context
	RelationName string
	data         []byte
	mode         fs.FileMode
}

func (c *InterfaceCopyInstance) Lint(ctx context.Context) ([]string, error) {
	if !c.FS.Exists(ctx, c.SourceAbs.String()) {
		return nil, domain.ErrInvalidPath{Path: c.SourceAbs.String(), Reason: "interface source does not exist"}
	}
	return nil, nil
}

func (c *InterfaceCopyInstance) Read(ctx context.Context) error {
	data, err := c.FS.ReadFile(ctx, c.SourceAbs.String())
	if err != nil {
		return err
	}
	info, err := c.FS.Stat(ctx, c.SourceAbs.String())
	if err != nil {
		return err
	}
	c.data = data
	c.mode = info.Mode().Perm()
	return nil
}

func (c *InterfaceCopyInstance) Apply(ctx context.Context) error {
	dest := c.RelPath.Under(c.TargetDir)
	if parent := dest.Parent(); parent.IsOk() {
		if err := c.FS.MkdirAll(ctx, parent.Unwrap().String(), 0o755); err != nil {
			return err
		}
	}
	return c.FS.WriteFile(ctx, dest.String(), c.data, c.mode)
}

func (c *InterfaceCopyInstance) Sign(ctx context.Context) (map[string]Signature, error) {
	sum := sha256.Sum256(c.data)
	return map[string]Signature{
		c.RelPath.String(): {Origin: c.OwningLayerName, Kind: KindStatic, SHA256: hex.EncodeToString(sum[:])},
	}, nil
}

func (c *InterfaceCopyInstance) Combine(prior Instance) Instance { return c }
func (c *InterfaceCopyInstance) Kind() Kind                      { return KindStatic }

// InterfaceInitInstance synthesizes an empty __init__.py at the root of a
// copied interface tree when the interface itself ships none (spec.md
// line 121), so the relation's hook modules are importable as a package.
type InterfaceInitInstance struct {
	Context
	RelationName string
}

// NewInterfaceInitInstance builds the synthesized __init__.py instance for
// one relation.
func NewInterfaceInitInstance(tc Context, relationName string) *InterfaceInitInstance {
	return &InterfaceInitInstance{Context: tc, RelationName: relationName}
}

func (c *InterfaceInitInstance) Lint(ctx context.Context) ([]string, error) { return nil, nil }
func (c *InterfaceInitInstance) Read(ctx context.Context) error             { return nil }

func (c *InterfaceInitInstance) Apply(ctx context.Context) error {
	dest := c.RelPath.Under(c.TargetDir)
	if parent := dest.Parent(); parent.IsOk() {
		if err := c.FS.MkdirAll(ctx, parent.Unwrap().String(), 0o755); err != nil {
			return err
		}
	}
	return c.FS.WriteFile(ctx, dest.String(), nil, 0o644)
}

func (c *InterfaceInitInstance) Sign(ctx context.Context) (map[string]Signature, error) {
	sum := sha256.Sum256(nil)
	return map[string]Signature{
		c.RelPath.String(): {Origin: c.OwningLayerName, Kind: KindStatic, SHA256: hex.EncodeToString(sum[:])},
	}, nil
}

func (c *InterfaceInitInstance) Combine(prior Instance) Instance { return c }
func (c *InterfaceInitInstance) Kind() Kind                      { return KindStatic }

// InterfaceBindInstance generates one relation hook wrapper
// (hooks/<relationName>-relation-<kind>), mode 0755, that execs the
// generic charms.reactive.relations dispatcher with the relation name and
// one of the four relation lifecycle events.
type InterfaceBindInstance struct {
	Context
	RelationName string
	HookKind     string // one of relationHookKinds
	script       []byte
}

// NewInterfaceBindInstances builds the four lifecycle-hook instances for
// one bound relation name.
func NewInterfaceBindInstances(base Context, relationName string) []*InterfaceBindInstance {
	out := make([]*InterfaceBindInstance, 0, len(relationHookKinds))
	for _, kind := range relationHookKinds {
		relRes := domain.NewRelPath(fmt.Sprintf("hooks/%s-relation-%s", relationName, kind))
		if relRes.IsErr() {
			continue
		}
		ctx := base
		ctx.RelPath = relRes.Unwrap()
		out = append(out, &InterfaceBindInstance{Context: ctx, RelationName: relationName, HookKind: kind})
	}
	return out
}

func (b *InterfaceBindInstance) Lint(ctx context.Context) ([]string, error) { return nil, nil }

func (b *InterfaceBindInstance) Read(ctx context.Context) error {
	b.script = []byte(fmt.Sprintf(`#!/bin/bash
set -e
exec python3 -m charms.reactive.relations %s %s
`, b.RelationName, b.HookKind))
	return nil
}

func (b *InterfaceBindInstance) Apply(ctx context.Context) error {
	dest := b.RelPath.Under(b.TargetDir)
	if parent := dest.Parent(); parent.IsOk() {
		if err := b.FS.MkdirAll(ctx, parent.Unwrap().String(), 0o755); err != nil {
			return err
		}
	}
	return b.FS.WriteFile(ctx, dest.String(), b.script, 0o755)
}

func (b *InterfaceBindInstance) Sign(ctx context.Context) (map[string]Signature, error) {
	sum := sha256.Sum256(b.script)
	return map[string]Signature{
		b.RelPath.String(): {Origin: b.OwningLayerName, Kind: KindDynamic, SHA256: hex.EncodeToString(sum[:])},
	}, nil
}

func (b *InterfaceBindInstance) Combine(prior Instance) Instance { return b }
func (b *InterfaceBindInstance) Kind() Kind                      { return KindDynamic }
