package tactic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/compotron/compose/internal/domain"
)

// ComposerYAMLClass matches the exact path "composer.yaml". Unlike the
// other structured-document tactics it does not merge with lower layers:
// it always rewrites its own document to reflect the top layer, per
// spec.md §4.5.
type ComposerYAMLClass struct{}

func (ComposerYAMLClass) Name() string                  { return "ComposerYAML" }
func (ComposerYAMLClass) Trigger(relpath string) bool   { return relpath == "composer.yaml" }
func (ComposerYAMLClass) New(tc Context) Instance       { return &composerYAMLInstance{Context: tc} }

type composerYAMLInstance struct {
	Context
	doc domain.Document
}

func (c *composerYAMLInstance) Lint(ctx context.Context) ([]string, error) {
	if !c.FS.Exists(ctx, c.SourceAbs.String()) {
		return nil, domain.ErrInvalidPath{Path: c.SourceAbs.String(), Reason: "source does not exist"}
	}
	return nil, nil
}

func (c *composerYAMLInstance) Read(ctx context.Context) error {
	data, err := c.FS.ReadFile(ctx, c.SourceAbs.String())
	if err != nil {
		return err
	}
	docRes := domain.ParseDocument(data)
	if docRes.IsErr() {
		return docRes.UnwrapErr()
	}
	c.doc = docRes.Unwrap()
	return nil
}

// Combine ignores any prior instance: ComposerYAML always reflects only
// the top layer, never merging lower layers' composer.yaml content.
func (c *composerYAMLInstance) Combine(prior Instance) Instance { return c }

func (c *composerYAMLInstance) Apply(ctx context.Context) error {
	rewritten := c.doc.Clone()
	rewritten["is"] = c.TopLayerIs

	if includes, ok := rewritten["includes"]; ok {
		rewritten["includes"] = normalizeIncludes(includes)
	}

	yamlRes := domain.MarshalYAML(rewritten)
	if yamlRes.IsErr() {
		return yamlRes.UnwrapErr()
	}
	c.doc = rewritten

	dest := c.RelPath.Under(c.TargetDir)
	if parent := dest.Parent(); parent.IsOk() {
		if err := c.FS.MkdirAll(ctx, parent.Unwrap().String(), 0o755); err != nil {
			return err
		}
	}
	return c.FS.WriteFile(ctx, dest.String(), yamlRes.Unwrap(), 0o644)
}

func (c *composerYAMLInstance) Sign(ctx context.Context) (map[string]Signature, error) {
	sum := sha256.Sum256(mustYAML(c.doc))
	return map[string]Signature{
		c.RelPath.String(): {Origin: c.OwningLayerName, Kind: KindDynamic, SHA256: hex.EncodeToString(sum[:])},
	}, nil
}

func (c *composerYAMLInstance) Kind() Kind { return KindDynamic }

// normalizeIncludes applies §9's rule: a scalar is promoted to a
// singleton, and any entry without a ":" prefix is reduced to its last
// two path segments.
func normalizeIncludes(raw interface{}) interface{} {
	switch v := raw.(type) {
	case string:
		return []interface{}{domain.NewLayerRef(v).Normalized()}
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			if s, ok := item.(string); ok {
				out[i] = domain.NewLayerRef(s).Normalized()
			} else {
				out[i] = item
			}
		}
		return out
	default:
		return raw
	}
}
