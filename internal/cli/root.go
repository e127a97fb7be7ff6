// Package cli assembles the cobra command tree exposed by cmd/compose,
// in the idiom of the teacher's cmd/dot package: a globalFlags struct
// populated by persistent flags, one resolveConfig helper that layers flags
// over internal/config.Loader, and one newXCommand constructor per verb.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/compotron/compose/internal/adapters"
	"github.com/compotron/compose/internal/config"
	"github.com/compotron/compose/internal/domain"
	"github.com/compotron/compose/pkg/compose"
)

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	logLevel    string
	logFormat   string
	noColor     bool
	force       bool
	outputDir   string
	series      string
	name        string
	schemaPath  string
	registryURL string
	configPath  string
	verbose     bool
}

var flags globalFlags

// NewRootCommand builds the root "compose" command.
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "compose <charm>",
		Short:         "Compose a deployable charm from an ordered chain of layers",
		Long:          `compose materialises a charm by resolving an ordered chain of reusable layers and interface packages into a target directory, recording a manifest that lets later invocations detect hand-edits and regenerate safely in place.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          argsWithUsage(cobra.MaximumNArgs(1)),
		RunE:          runCompose,
	}

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n\n", err)
		_ = cmd.Usage()
		return err
	})

	root.PersistentFlags().StringVarP(&flags.logLevel, "log-level", "l", "", "log level: debug, info, warn, error (default info)")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log output format: text, json (default text)")
	root.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable coloured output")
	root.PersistentFlags().BoolVarP(&flags.force, "force", "f", false, "proceed past delta-detector findings instead of failing")
	root.PersistentFlags().StringVarP(&flags.outputDir, "output-dir", "o", "", "destination base (defaults to <charm>, normalised)")
	root.PersistentFlags().StringVarP(&flags.series, "series", "s", "", "series sub-directory fetched interfaces are cloned under, <output-dir>/deps/<series>/ (default trusty)")
	root.PersistentFlags().StringVarP(&flags.name, "name", "n", "", "name of the produced artefact (not used: output is written directly into --output-dir)")
	root.PersistentFlags().StringVar(&flags.schemaPath, "schema", "", "path to an alternate layer-config JSON Schema")
	root.PersistentFlags().StringVar(&flags.registryURL, "registry", "", "remote interface registry URL")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a .compose.yaml configuration file")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "shorthand for --log-level=debug")

	root.AddCommand(newComposeCommand(), newDoctorCommand())

	return root
}

// resolveConfig layers CLI flags over internal/config's defaults/file/env
// precedence chain, the same way the teacher's buildConfigWithCmd does.
func resolveConfig() (config.Config, error) {
	if flags.verbose {
		flags.logLevel = "debug"
	}

	loader := config.NewLoader("compose", flags.configPath)
	overrides := map[string]interface{}{
		"series":       flags.series,
		"output_dir":   flags.outputDir,
		"log_level":    flags.logLevel,
		"log_format":   flags.logFormat,
		"no_color":     flags.noColor,
		"force":        flags.force,
		"schema_path":  flags.schemaPath,
		"registry_url": flags.registryURL,
	}
	return loader.Load(overrides)
}

// buildClient assembles a compose.Client for the given charm path, applying
// filepath.Abs the way the teacher's buildConfigWithCmd makes packageDir and
// targetDir absolute before handing them to the domain layer.
func buildClient(charmPath string) (*compose.Client, config.Config, error) {
	cfg, err := resolveConfig()
	if err != nil {
		return nil, cfg, fmt.Errorf("load configuration: %w", err)
	}

	topLayer, err := filepath.Abs(charmPath)
	if err != nil {
		return nil, cfg, fmt.Errorf("resolve charm path: %w", err)
	}

	outputDir := cfg.OutputDir
	if outputDir == "" || outputDir == "." {
		outputDir = topLayer
	}
	outputDir, err = filepath.Abs(outputDir)
	if err != nil {
		return nil, cfg, fmt.Errorf("resolve output directory: %w", err)
	}

	logger := buildLogger(cfg)

	client, err := compose.NewClient(compose.Config{
		TopLayer:    topLayer,
		OutputDir:   outputDir,
		Series:      cfg.Series,
		RegistryURL:  cfg.RegistryURL,
		Force:        cfg.Force,
		SchemaPath:   cfg.SchemaPath,
		FetchTimeout: cfg.FetchTimeout,
		FS:           adapters.NewOSFilesystem(),
		Logger:       logger,
		Tracer:       domain.NewNoopTracer(),
	})
	return client, cfg, err
}

func buildLogger(cfg config.Config) compose.Logger {
	if cfg.LogFormat == "json" {
		return adapters.NewJSONLogger(os.Stderr, cfg.LogLevel)
	}
	return adapters.NewConsoleLogger(os.Stderr, cfg.LogLevel)
}

// argsWithUsage wraps a cobra.PositionalArgs validator to print usage
// alongside the validation error, matching the teacher's helper of the
// same name.
func argsWithUsage(validator cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validator(cmd, args); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n\n", err)
			_ = cmd.Usage()
			return err
		}
		return nil
	}
}
