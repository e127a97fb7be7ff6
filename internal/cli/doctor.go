package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/compotron/compose/internal/doctor"
)

// newDoctorCommand builds the `compose doctor` diagnostic verb.
func newDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [<charm>]",
		Short: "Report drift between an output directory and its manifest",
		Long: `Classify the output directory against its .composer.manifest without
triggering a rebuild: which files were hand-edited since the last build,
which were removed, and which are untracked. Never gates; always reports.`,
		Args: argsWithUsage(cobra.MaximumNArgs(1)),
		RunE: runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, args []string) error {
	charm := "."
	if len(args) == 1 {
		charm = args[0]
	}

	client, _, err := buildClient(charm)
	if err != nil {
		return formatError(err)
	}

	res := client.Doctor(cmd.Context())
	if res.IsErr() {
		return formatError(res.UnwrapErr())
	}

	report := res.Unwrap()
	fmt.Fprint(cmd.OutOrStdout(), doctor.Render(report))
	if !report.Healthy() {
		return fmt.Errorf("health check detected drift")
	}
	return nil
}
