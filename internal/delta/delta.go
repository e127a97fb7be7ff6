// Package delta compares an output directory's current on-disk state
// against a prior manifest, classifying every path as added, changed, or
// deleted — the gate that makes in-place regeneration safe (spec.md
// §4.8/§6), directly grounded on the original juju_compose delta_signatures
// walk.
package delta

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/compotron/compose/internal/domain"
	"github.com/compotron/compose/internal/manifest"
	"github.com/compotron/compose/internal/walker"
)

// Classification is the result of comparing current output state to a
// baseline manifest.
type Classification struct {
	Added   []string
	Changed []string
	Deleted []string
}

// Empty reports whether no differences were found at all.
func (c Classification) Empty() bool {
	return len(c.Added) == 0 && len(c.Changed) == 0 && len(c.Deleted) == 0
}

// Classify walks targetDir, hashes every regular file, and compares it
// against baseline. Entries whose baseline origin is "composer" (the
// manifest's own self-entry, and anything else the tool generated purely
// for the last run) are never reported as changed, matching the original's
// `baseline[p][0] == "composer"` skip.
func Classify(ctx context.Context, vfs domain.FS, targetDir domain.AbsPath, baseline manifest.Manifest) domain.Result[Classification] {
	entries, err := walker.Walk(ctx, vfs, targetDir, nil)
	if err != nil {
		return domain.Err[Classification](err)
	}

	current := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.RelPath.String() == manifest.FileName {
			continue
		}
		data, err := vfs.ReadFile(ctx, entry.AbsPath.String())
		if err != nil {
			return domain.Err[Classification](err)
		}
		sum := sha256.Sum256(data)
		current[entry.RelPath.String()] = hex.EncodeToString(sum[:])
	}

	var result Classification
	for relpath, sig := range current {
		base, known := baseline[relpath]
		if !known {
			result.Added = append(result.Added, relpath)
			continue
		}
		if base.Origin == "composer" {
			continue
		}
		if base.SHA256 != sig {
			result.Changed = append(result.Changed, relpath)
		}
	}
	for relpath := range baseline {
		if relpath == manifest.FileName {
			continue
		}
		if _, present := current[relpath]; !present {
			result.Deleted = append(result.Deleted, relpath)
		}
	}

	return domain.Ok(result)
}

// Gate enforces spec.md §4.8's delta-gating rule: if any set — added,
// changed, or deleted — is non-empty, the run fails with
// UnexpectedModifications unless force is set, in which case the findings
// are returned as warnings instead and the caller proceeds.
func Gate(c Classification, force bool) ([]string, error) {
	if c.Empty() {
		return nil, nil
	}
	if !force {
		return nil, domain.UnexpectedModifications{Added: c.Added, Changed: c.Changed, Deleted: c.Deleted}
	}
	warnings := make([]string, 0, len(c.Added)+len(c.Changed)+len(c.Deleted))
	for _, p := range c.Added {
		warnings = append(warnings, "added since last build: "+p)
	}
	for _, p := range c.Changed {
		warnings = append(warnings, "modified since last build: "+p)
	}
	for _, p := range c.Deleted {
		warnings = append(warnings, "removed since last build: "+p)
	}
	return warnings, nil
}
