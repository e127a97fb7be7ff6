// Package bootstrap wires the composition engine's components —
// fetcher registry, resolver, planner, executor, manifest store — into one
// facade, the way the teacher's pkg/dot.NewClient
// assembles its specialized services from a single Config.
package bootstrap

import (
	"context"
	"os"
	"time"

	"github.com/compotron/compose/internal/adapters"
	"github.com/compotron/compose/internal/domain"
	"github.com/compotron/compose/internal/executor"
	"github.com/compotron/compose/internal/fetcher"
	"github.com/compotron/compose/internal/layerconfig"
	"github.com/compotron/compose/internal/manifest"
	"github.com/compotron/compose/internal/planner"
	"github.com/compotron/compose/internal/resolver"
)

// Options configures the assembled Engine.
type Options struct {
	FS     domain.FS
	Logger domain.Logger
	Tracer domain.Tracer

	Series       string
	DepsRoot     domain.AbsPath
	RegistryURL  string
	FetchTimeout time.Duration
	// SchemaPath points at an alternate layer-config JSON Schema file; empty
	// uses layerconfig.DefaultSchemaJSON.
	SchemaPath string
}

// Engine bundles every composition-engine component behind one set of
// fields, constructed once per invocation and passed down to the CLI layer.
type Engine struct {
	FS       domain.FS
	Log      domain.Logger
	Registry *fetcher.Registry
	Resolver *resolver.Resolver
	Planner  *planner.Planner
	Executor *executor.Executor
	Manifest *manifest.Store

	// FetchTimeout bounds layer-chain resolution; the only phase spec.md §5
	// permits to be retried or time-bounded independently of the rest of
	// the run.
	FetchTimeout time.Duration
}

// New assembles an Engine from Options, applying the same defaulting the
// teacher's NewClient does (a missing FS becomes the OS filesystem, a
// missing Logger a console logger, a missing Tracer a no-op).
func New(opts Options) *Engine {
	vfs := opts.FS
	if vfs == nil {
		vfs = adapters.NewOSFilesystem()
	}
	log := opts.Logger
	if log == nil {
		log = adapters.NewConsoleLogger(os.Stderr, "info")
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = domain.NewNoopTracer()
	}

	series := opts.Series
	if series == "" {
		series = "trusty"
	}

	gitResolver := fetcher.NewGitResolver(opts.DepsRoot, log)
	cwd := mustCwd()

	// Exactly the three resolvers spec.md §4.1 mandates, in registration
	// order: local repository search, local interface search, then remote
	// interface lookup (which itself delegates to gitResolver for the
	// actual clone — gitResolver is never registered directly, since a
	// non-interface reference that escapes the local search is always
	// UnresolvedLayer, not a generic git fetch).
	resolvers := []fetcher.Resolver{
		fetcher.NewLocalRepoResolver(vfs, cwd),
		fetcher.NewInterfaceLocalResolver(vfs, cwd),
	}
	if opts.RegistryURL != "" {
		resolvers = append(resolvers, fetcher.NewRemoteInterfaceResolver(opts.RegistryURL, gitResolver, log))
	}

	reg := fetcher.NewRegistry(log, resolvers...)
	res := resolver.New(vfs, reg, series).WithSchema(buildValidator(opts.SchemaPath, log))
	plan := planner.New(vfs, log)
	exec := executor.New(executor.Opts{Logger: log, Tracer: tracer})
	manifestStore := manifest.NewStore(vfs)

	return &Engine{
		FS:           vfs,
		Log:          log,
		Registry:     reg,
		Resolver:     res,
		Planner:      plan,
		Executor:     exec,
		Manifest:     manifestStore,
		FetchTimeout: opts.FetchTimeout,
	}
}

// buildValidator compiles the layer-config JSON Schema validator: the
// built-in default, or the document at schemaPath when one is given. A
// compile failure disables validation rather than aborting bootstrap,
// logging a warning the way the teacher degrades optional features.
func buildValidator(schemaPath string, log domain.Logger) *layerconfig.Validator {
	schemaJSON := []byte(layerconfig.DefaultSchemaJSON)
	if schemaPath != "" {
		data, err := os.ReadFile(schemaPath)
		if err != nil {
			log.Warn(context.Background(), "failed to read layer-config schema, using default", "path", schemaPath, "error", err)
		} else {
			schemaJSON = data
		}
	}

	validatorRes := layerconfig.NewValidator(schemaJSON)
	if validatorRes.IsErr() {
		log.Warn(context.Background(), "failed to compile layer-config schema, validation disabled", "error", validatorRes.UnwrapErr())
		return nil
	}
	return validatorRes.Unwrap()
}

func mustCwd() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}
