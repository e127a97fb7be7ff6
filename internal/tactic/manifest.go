package tactic

import "context"

// ManifestClass matches the manifest's own file exactly and suppresses
// copying it: the manifest is regenerated by the executor at the end of
// every run, never carried forward as ordinary layer content.
type ManifestClass struct{}

func (ManifestClass) Name() string { return "ManifestTactic" }
func (ManifestClass) Trigger(relpath string) bool { return relpath == ".composer.manifest" }
func (ManifestClass) New(tc Context) Instance     { return &manifestInstance{} }

type manifestInstance struct{}

func (manifestInstance) Lint(ctx context.Context) ([]string, error) { return nil, nil }
func (manifestInstance) Read(ctx context.Context) error             { return nil }
func (manifestInstance) Apply(ctx context.Context) error            { return nil }
func (manifestInstance) Sign(ctx context.Context) (map[string]Signature, error) {
	return nil, nil
}
func (m manifestInstance) Combine(prior Instance) Instance { return m }
func (manifestInstance) Kind() Kind                        { return KindStatic }
