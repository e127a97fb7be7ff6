// Package compose is the public API for the charm composition engine: given
// a top layer directory and an output directory, it resolves the layer
// chain, builds a plan, executes it, and writes a manifest — spec.md's
// fetcher → resolver → planner → executor → manifest pipeline behind one
// facade, the way the teacher's pkg/dot.Client fronts its specialized
// services.
package compose

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/compotron/compose/internal/bootstrap"
	"github.com/compotron/compose/internal/delta"
	"github.com/compotron/compose/internal/doctor"
	"github.com/compotron/compose/internal/domain"
	"github.com/compotron/compose/internal/manifest"
)

// Config configures a Client.
type Config struct {
	// TopLayer is the charm source directory: its composer.yaml names the
	// layers to include.
	TopLayer string
	// OutputDir is the target directory the composed charm is written to.
	OutputDir string
	// Series names the sub-directory fetched interfaces are cloned under,
	// <DepsRoot>/<series>/<name> (default "trusty").
	Series string
	// DepsRoot is where fetched dependencies are cloned, as
	// <DepsRoot>/<series>/<name>. Empty means <OutputDir>/deps.
	DepsRoot string
	// RegistryURL is the remote interface-lookup endpoint. Empty disables
	// remote interface resolution.
	RegistryURL string
	// Force proceeds past delta-detector findings instead of failing with
	// ErrUnexpectedModifications.
	Force bool
	// FetchTimeout bounds layer-chain resolution (the only retry-tolerant
	// phase, spec.md §5); zero selects the default of 30s.
	FetchTimeout time.Duration
	// SchemaPath points at an alternate layer-config JSON Schema; empty
	// uses the built-in default (layerconfig.DefaultSchemaJSON).
	SchemaPath string

	FS     FS
	Logger Logger
	Tracer Tracer
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.TopLayer == "" {
		return fmt.Errorf("compose: TopLayer is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("compose: OutputDir is required")
	}
	return nil
}

// Client is the high-level entry point for one composition run.
type Client struct {
	cfg    Config
	engine *bootstrap.Engine
}

// NewClient validates cfg and assembles a Client.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	depsRoot := cfg.DepsRoot
	if depsRoot == "" {
		depsRoot = filepath.Join(cfg.OutputDir, "deps")
	}
	depsRootAbs := domain.NewAbsPath(depsRoot)
	if depsRootAbs.IsErr() {
		return nil, depsRootAbs.UnwrapErr()
	}

	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout == 0 {
		fetchTimeout = 30 * time.Second
	}

	engine := bootstrap.New(bootstrap.Options{
		FS:           cfg.FS,
		Logger:       cfg.Logger,
		Tracer:       cfg.Tracer,
		Series:       cfg.Series,
		DepsRoot:     depsRootAbs.Unwrap(),
		RegistryURL:  cfg.RegistryURL,
		FetchTimeout: fetchTimeout,
		SchemaPath:   cfg.SchemaPath,
	})

	return &Client{cfg: cfg, engine: engine}, nil
}

// Result is the product of one successful Compose call.
type Result struct {
	FilesWritten int
	Warnings     []string
	Manifest     manifest.Manifest
}

// Compose runs the full pipeline once: gate on delta-detector findings
// against the existing manifest (unless Force), resolve the layer chain
// rooted at cfg.TopLayer, plan every contributed path, execute the plan's
// four phases, and write the refreshed manifest.
func (c *Client) Compose(ctx context.Context) domain.Result[Result] {
	topDir := domain.NewAbsPath(c.cfg.TopLayer)
	if topDir.IsErr() {
		return domain.Err[Result](topDir.UnwrapErr())
	}
	outDir := domain.NewAbsPath(c.cfg.OutputDir)
	if outDir.IsErr() {
		return domain.Err[Result](outDir.UnwrapErr())
	}

	baseline := c.engine.Manifest.Load(ctx, outDir.Unwrap())
	if baseline.IsErr() {
		return domain.Err[Result](baseline.UnwrapErr())
	}
	if len(baseline.Unwrap()) > 0 {
		classified := delta.Classify(ctx, c.engine.FS, outDir.Unwrap(), baseline.Unwrap())
		if classified.IsErr() {
			return domain.Err[Result](classified.UnwrapErr())
		}
		if _, err := delta.Gate(classified.Unwrap(), c.cfg.Force); err != nil {
			return domain.Err[Result](err)
		}
	}

	resolveCtx := ctx
	if c.engine.FetchTimeout > 0 {
		var cancel context.CancelFunc
		resolveCtx, cancel = context.WithTimeout(ctx, c.engine.FetchTimeout)
		defer cancel()
	}

	chainRes := c.engine.Resolver.Resolve(resolveCtx, topDir.Unwrap(), outDir.Unwrap())
	if chainRes.IsErr() {
		return domain.Err[Result](chainRes.UnwrapErr())
	}

	planRes := c.engine.Planner.Build(ctx, chainRes.Unwrap())
	if planRes.IsErr() {
		return domain.Err[Result](planRes.UnwrapErr())
	}
	built := planRes.Unwrap()

	execRes := c.engine.Executor.Execute(ctx, built.Plan)
	if execRes.IsErr() {
		return domain.Err[Result](execRes.UnwrapErr())
	}
	execution := execRes.Unwrap()

	m := manifest.FromSignatures(execution.Signatures)
	if err := c.engine.Manifest.Save(ctx, outDir.Unwrap(), m); err != nil {
		return domain.Err[Result](err)
	}

	warnings := append(append([]string{}, built.Warnings...), execution.Warnings...)
	return domain.Ok(Result{FilesWritten: len(m), Warnings: warnings, Manifest: m})
}

// Doctor runs the delta classifier against the current output directory as
// a standalone diagnostic, never gating anything (spec.md §4.8 expansion).
func (c *Client) Doctor(ctx context.Context) domain.Result[doctor.Report] {
	outDir := domain.NewAbsPath(c.cfg.OutputDir)
	if outDir.IsErr() {
		return domain.Err[doctor.Report](outDir.UnwrapErr())
	}
	return doctor.Run(ctx, c.engine.FS, c.engine.Manifest, outDir.Unwrap())
}
