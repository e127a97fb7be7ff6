package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newComposeCommand builds the `build [<charm>]` verb (alias `compose`),
// which runs the same composition as invoking the root command with <charm>.
func newComposeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [<charm>]",
		Short: "Materialise a charm from its layer chain",
		Long: `Resolve the layer chain rooted at <charm>, plan every file each layer
contributes, execute the plan's four ordered phases (lint, read, apply,
sign), and write a manifest recording each output file's origin and
digest. Re-running against an existing output directory performs an
in-place rebuild, refusing to overwrite files that were hand-edited since
the last run unless --force is given.`,
		Args: argsWithUsage(cobra.MaximumNArgs(1)),
		RunE: runCompose,
	}
	cmd.Aliases = []string{"compose"}
	return cmd
}

func runCompose(cmd *cobra.Command, args []string) error {
	charm := "."
	if len(args) == 1 {
		charm = args[0]
	}

	client, cfg, err := buildClient(charm)
	if err != nil {
		return formatError(err)
	}

	ctx := cmd.Context()
	logger := buildLogger(cfg)

	res := runWithProgress(ctx, logger, "composing charm...", client.Compose)
	if res.IsErr() {
		return formatError(res.UnwrapErr())
	}

	result := res.Unwrap()
	fmt.Fprint(cmd.OutOrStdout(), renderSummary(result))
	return nil
}
