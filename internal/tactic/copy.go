package tactic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"

	"github.com/compotron/compose/internal/domain"
)

// CopyClass is the universal fallback tactic: it matches every relpath,
// so it must be last in the default registry.
type CopyClass struct{}

func (CopyClass) Name() string             { return "CopyTactic" }
func (CopyClass) Trigger(relpath string) bool { return true }
func (CopyClass) New(tc Context) Instance  { return &copyInstance{Context: tc} }

// copyInstance copies a source file verbatim, preserving its mode and
// creating parent directories, replacing whatever a lower layer
// contributed at the same path (spec.md §4.5 CopyTactic).
type copyInstance struct {
	Context
	data []byte
	mode fs.FileMode
}

func (c *copyInstance) Lint(ctx context.Context) ([]string, error) {
	if !c.FS.Exists(ctx, c.SourceAbs.String()) {
		return nil, domain.ErrInvalidPath{Path: c.SourceAbs.String(), Reason: "source does not exist"}
	}
	return nil, nil
}

func (c *copyInstance) Read(ctx context.Context) error {
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

func (c *copyInstance) Apply(ctx context.Context) error {
	dest := c.RelPath.Under(c.TargetDir)
	if parent := dest.Parent(); parent.IsOk() {
		if err := c.FS.MkdirAll(ctx, parent.Unwrap().String(), 0o755); err != nil {
			return err
		}
	}
	return c.FS.WriteFile(ctx, dest.String(), c.data, c.mode)
}

func (c *copyInstance) Sign(ctx context.Context) (map[string]Signature, error) {
	sum := sha256.Sum256(c.data)
	return map[string]Signature{
		c.RelPath.String(): {Origin: c.OwningLayerName, Kind: KindStatic, SHA256: hex.EncodeToString(sum[:])},
	}, nil
}

func (c *copyInstance) Combine(prior Instance) Instance { return c }
func (c *copyInstance) Kind() Kind                      { return KindStatic }
