package compose

import "github.com/compotron/compose/internal/domain"

// Error types re-exported from internal/domain, matching spec.md §7's
// taxonomy one-for-one.

// ErrUnresolvedLayer is returned when no fetcher resolver claims a
// reference.
type ErrUnresolvedLayer = domain.UnresolvedLayer

// ErrMalformedConfig is returned when a composer.yaml/interface.yaml fails
// validation.
type ErrMalformedConfig = domain.MalformedConfig

// ErrCyclicLayerGraph is returned when a layer (transitively) includes
// itself.
type ErrCyclicLayerGraph = domain.CyclicLayerGraph

// ErrMissingMetadata is returned when interfaces are present but no
// metadata.yaml was produced by the layer chain.
type ErrMissingMetadata = domain.MissingMetadata

// ErrInvalidDelete is returned when a `deletes` entry names a path absent
// from the document being mutated.
type ErrInvalidDelete = domain.InvalidDelete

// ErrNotConfigured is returned when the top layer has no composer.yaml, or
// an empty one.
type ErrNotConfigured = domain.NotConfigured

// ErrUnexpectedModifications is returned by the delta detector when the
// output directory was hand-edited since the last manifest was written.
type ErrUnexpectedModifications = domain.UnexpectedModifications

// ErrSubprocessFailure is returned when a tactic's invoked subprocess
// fails.
type ErrSubprocessFailure = domain.SubprocessFailure

// ErrMultiple aggregates more than one error.
type ErrMultiple = domain.ErrMultiple

// ErrInvalidPath is returned by the path constructors when given an
// unusable path.
type ErrInvalidPath = domain.ErrInvalidPath

// ExitCode maps an error returned by Compose to the process exit code
// spec.md §6 mandates.
func ExitCode(err error) int { return domain.ExitCode(err) }
