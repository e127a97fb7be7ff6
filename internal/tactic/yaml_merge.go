package tactic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/compotron/compose/internal/domain"
)

// serializedInstance is the shared implementation behind MetadataYAML and
// ConfigYAML (spec.md §4.5's "SerializedTactic (abstract)"): it holds the
// parsed document contributed by its own layer, chains to whichever
// instance occupied the path in the layer below via Combine, and on
// Apply deep-merges its own data on top of the chain's accumulated
// result before applying this path's `deletes` list.
type serializedInstance struct {
	Context
	section string // "metadata" or "config", used only for delete-field selection
	prefix  string // "" for metadata, "options" for config

	prior       *serializedInstance
	newData     domain.Document
	accumulated domain.Document
}

func (s *serializedInstance) Lint(ctx context.Context) ([]string, error) {
	if !s.FS.Exists(ctx, s.SourceAbs.String()) {
		return nil, domain.ErrInvalidPath{Path: s.SourceAbs.String(), Reason: "source does not exist"}
	}
	return nil, nil
}

func (s *serializedInstance) Read(ctx context.Context) error {
	data, err := s.FS.ReadFile(ctx, s.SourceAbs.String())
	if err != nil {
		return err
	}
	docRes := domain.ParseDocument(data)
	if docRes.IsErr() {
		return docRes.UnwrapErr()
	}
	s.newData = docRes.Unwrap()
	if s.prior != nil {
		return s.prior.Read(ctx)
	}
	return nil
}

// Combine chains to the instance from the layer below, per spec.md
// §4.5: "combine(existing) invokes the previous tactic ... and captures
// its data as the starting point."
func (s *serializedInstance) Combine(prior Instance) Instance {
	if p, ok := prior.(*serializedInstance); ok {
		s.prior = p
	}
	return s
}

func (s *serializedInstance) Apply(ctx context.Context) error {
	base := domain.Document{}
	if s.prior != nil {
		if err := s.prior.Apply(ctx); err != nil {
			return err
		}
		base = s.prior.accumulated
	}

	mergedRes := domain.DeepMerge(base, s.newData)
	if mergedRes.IsErr() {
		return mergedRes.UnwrapErr()
	}
	merged := mergedRes.Unwrap()

	for _, entry := range s.deletes() {
		dotted := entry
		if s.prefix != "" {
			dotted = s.prefix + "." + entry
		}
		delRes := domain.DeletePath(merged, dotted)
		if delRes.IsErr() {
			return delRes.UnwrapErr()
		}
		merged = delRes.Unwrap()
	}

	s.accumulated = merged

	yamlRes := domain.MarshalYAML(merged)
	if yamlRes.IsErr() {
		return yamlRes.UnwrapErr()
	}

	dest := s.RelPath.Under(s.TargetDir)
	if parent := dest.Parent(); parent.IsOk() {
		if err := s.FS.MkdirAll(ctx, parent.Unwrap().String(), 0o755); err != nil {
			return err
		}
	}
	return s.FS.WriteFile(ctx, dest.String(), yamlRes.Unwrap(), 0o644)
}

func (s *serializedInstance) Sign(ctx context.Context) (map[string]Signature, error) {
	sum := sha256.Sum256(mustYAML(s.accumulated))
	return map[string]Signature{
		s.RelPath.String(): {Origin: s.OwningLayerName, Kind: KindDynamic, SHA256: hex.EncodeToString(sum[:])},
	}, nil
}

func (s *serializedInstance) Kind() Kind { return KindDynamic }

func (s *serializedInstance) deletes() []string {
	if s.EffectiveConfig == nil {
		return nil
	}
	if s.section == "config" {
		return s.EffectiveConfig.ConfigDeletes
	}
	return s.EffectiveConfig.MetadataDeletes
}

func mustYAML(doc domain.Document) []byte {
	res := domain.MarshalYAML(doc)
	if res.IsErr() {
		return nil
	}
	return res.Unwrap()
}

// MetadataYAMLClass matches the exact path "metadata.yaml": merges as a
// structured document with metadata.deletes applied, no key prefix.
type MetadataYAMLClass struct{}

func (MetadataYAMLClass) Name() string                  { return "MetadataYAML" }
func (MetadataYAMLClass) Trigger(relpath string) bool   { return relpath == "metadata.yaml" }
func (MetadataYAMLClass) New(tc Context) Instance {
	return &serializedInstance{Context: tc, section: "metadata"}
}

// ConfigYAMLClass matches the exact path "config.yaml": merges with
// deletes applied under the "options" prefix.
type ConfigYAMLClass struct{}

func (ConfigYAMLClass) Name() string                { return "ConfigYAML" }
func (ConfigYAMLClass) Trigger(relpath string) bool { return relpath == "config.yaml" }
func (ConfigYAMLClass) New(tc Context) Instance {
	return &serializedInstance{Context: tc, section: "config", prefix: "options"}
}
