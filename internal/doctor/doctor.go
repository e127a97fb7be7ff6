// Package doctor runs the same added/changed/deleted classification as the
// delta detector, but as a standalone diagnostic that never gates a
// rebuild — SPEC_FULL.md §4.8's expansion, the natural home for spec.md
// §8 Scenario F (tamper detection) as an operator-facing health check.
package doctor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/compotron/compose/internal/delta"
	"github.com/compotron/compose/internal/domain"
	"github.com/compotron/compose/internal/manifest"
)

// Report is doctor's rendered finding set.
type Report struct {
	Classification delta.Classification
	NoManifest     bool
}

// Healthy reports whether the output tree matches its manifest exactly.
func (r Report) Healthy() bool {
	return !r.NoManifest && r.Classification.Empty()
}

// Run classifies targetDir against its manifest without applying any
// gating: doctor always reports, never blocks.
func Run(ctx context.Context, vfs domain.FS, store *manifest.Store, targetDir domain.AbsPath) domain.Result[Report] {
	loaded := store.Load(ctx, targetDir)
	if loaded.IsErr() {
		return domain.Err[Report](loaded.UnwrapErr())
	}
	baseline := loaded.Unwrap()

	classified := delta.Classify(ctx, vfs, targetDir, baseline)
	if classified.IsErr() {
		return domain.Err[Report](classified.UnwrapErr())
	}

	return domain.Ok(Report{
		Classification: classified.Unwrap(),
		NoManifest:     len(baseline) == 0,
	})
}

// Render produces a plain-text table of the report's findings, grouped by
// classification, for terminals without a styled renderer attached.
func Render(r Report) string {
	if r.Healthy() {
		return "no drift detected: output matches manifest\n"
	}

	var b strings.Builder
	if r.NoManifest {
		b.WriteString("no manifest found; treating all files as untracked\n")
	}

	writeSection(&b, "tampered (changed since last build)", r.Classification.Changed)
	writeSection(&b, "removed since last build", r.Classification.Deleted)
	writeSection(&b, "untracked (not in manifest)", r.Classification.Added)
	return b.String()
}

func writeSection(b *strings.Builder, title string, paths []string) {
	if len(paths) == 0 {
		return
	}
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	fmt.Fprintf(b, "%s (%d):\n", title, len(sorted))
	for _, p := range sorted {
		fmt.Fprintf(b, "  %s\n", p)
	}
}
