// Package manifest records, for every produced output file, which layer it
// originated from and a digest of its final contents (spec.md §4.7/§6).
// The manifest enables safe in-place regeneration: the delta detector reads
// it before planning and the executor rewrites it after every successful
// run.
package manifest

import (
	"encoding/json"

	"github.com/compotron/compose/internal/tactic"
)

// FileName is the manifest's fixed location inside the output directory.
const FileName = ".composer.manifest"

// Entry is one manifest record: the declaring layer's name (its config
// name, or its directory's base name), the tactic kind that produced the
// file, and its content digest.
type Entry struct {
	Origin string
	Kind   string
	SHA256 string
}

// MarshalJSON encodes an Entry as the three-element array the format uses:
// [originName, kind, sha256Hex].
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]string{e.Origin, e.Kind, e.SHA256})
}

// UnmarshalJSON decodes the three-element array form back into an Entry.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var arr [3]string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	e.Origin, e.Kind, e.SHA256 = arr[0], arr[1], arr[2]
	return nil
}

// Manifest maps output-relative path to its Entry.
type Manifest map[string]Entry

// New returns an empty Manifest.
func New() Manifest { return Manifest{} }

// FromSignatures builds a Manifest from the executor's merged signature
// map, inserting the manifest's own self-entry with origin "composer" and
// sha "unchecked" so the delta detector always ignores it (spec.md §4.7).
func FromSignatures(sigs map[string]tactic.Signature) Manifest {
	m := make(Manifest, len(sigs)+1)
	for relpath, sig := range sigs {
		m[relpath] = Entry{Origin: sig.Origin, Kind: string(sig.Kind), SHA256: sig.SHA256}
	}
	m[FileName] = Entry{Origin: "composer", Kind: "dynamic", SHA256: "unchecked"}
	return m
}

// MarshalPretty renders the manifest as 2-space-indented JSON. Go's
// encoding/json sorts map[string]* keys lexicographically on its own, which
// already satisfies the deterministic-diff requirement (spec.md §4.7).
func (m Manifest) MarshalPretty() ([]byte, error) {
	return json.MarshalIndent(map[string]Entry(m), "", "  ")
}

// Unmarshal parses the manifest JSON previously written by MarshalPretty.
func Unmarshal(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
