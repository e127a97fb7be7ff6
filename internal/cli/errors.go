package cli

import (
	"errors"
	"fmt"

	"github.com/compotron/compose/pkg/compose"
)

// formatError appends an actionable suggestion to known taxonomy errors, the
// way the teacher's formatCloneError annotates dot's clone-specific errors.
func formatError(err error) error {
	if err == nil {
		return nil
	}

	var unresolved compose.ErrUnresolvedLayer
	if errors.As(err, &unresolved) {
		return fmt.Errorf("%w\n\nCheck that the reference exists as a local directory, a local interface, or is reachable through --registry", unresolved)
	}

	var malformed compose.ErrMalformedConfig
	if errors.As(err, &malformed) {
		return fmt.Errorf("%w\n\nValidate composer.yaml/interface.yaml against the configured schema (see --schema)", malformed)
	}

	var cyclic compose.ErrCyclicLayerGraph
	if errors.As(err, &cyclic) {
		return fmt.Errorf("%w\n\nRemove the layer that re-includes an ancestor already on this chain", cyclic)
	}

	var missingMeta compose.ErrMissingMetadata
	if errors.As(err, &missingMeta) {
		return fmt.Errorf("%w\n\nAdd a metadata.yaml to one of the layers in this chain, or drop the interfaces section", missingMeta)
	}

	var unexpected compose.ErrUnexpectedModifications
	if errors.As(err, &unexpected) {
		return fmt.Errorf("%w\n\nRun `compose doctor` to see exactly what changed, or pass --force to proceed anyway", unexpected)
	}

	var subprocess compose.ErrSubprocessFailure
	if errors.As(err, &subprocess) {
		return fmt.Errorf("%w\n\nRe-run with --log-level=debug to see the subprocess's output", subprocess)
	}

	var invalidPath compose.ErrInvalidPath
	if errors.As(err, &invalidPath) {
		return fmt.Errorf("%w\n\nPass an existing absolute or relative path for <charm> and --output-dir", invalidPath)
	}

	return err
}
