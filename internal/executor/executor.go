// Package executor drives a Plan through the four ordered phases
// (lint, read, apply, sign) described in spec.md §4.7: every tactic
// instance lints independently, then every instance reads its inputs into
// memory before any instance touches the target directory, then every
// instance applies, then every instance signs. The whole sequence is
// single-threaded and synchronous (spec.md §5) so that Combine's
// accumulated state composes deterministically.
package executor

import (
	"context"
	"fmt"

	"github.com/compotron/compose/internal/domain"
	"github.com/compotron/compose/internal/planner"
	"github.com/compotron/compose/internal/tactic"
)

// ExecutionResult is the executor's product: every warning collected
// during lint, and the merged signature map handed to the manifest writer.
type ExecutionResult struct {
	Warnings   []string
	Signatures map[string]tactic.Signature
}

// Executor runs a Plan's phases in order.
type Executor struct {
	log    domain.Logger
	tracer domain.Tracer
}

// Opts configures executor creation.
type Opts struct {
	Logger domain.Logger
	Tracer domain.Tracer
}

// New builds an Executor. A nil Tracer is replaced with a no-op.
func New(opts Opts) *Executor {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = domain.NewNoopTracer()
	}
	return &Executor{log: opts.Logger, tracer: tracer}
}

// Execute runs lint, read, apply, and sign over plan in insertion order.
// Lint and read errors abort before any file is written; an apply error
// aborts immediately, leaving whatever was already written on disk for the
// next invocation's delta detector to classify (spec.md §7 policy).
func (e *Executor) Execute(ctx context.Context, plan *planner.Plan) domain.Result[ExecutionResult] {
	ctx, span := e.tracer.Start(ctx, "executor.Execute", domain.WithAttributes(domain.Attribute{Key: "plan.size", Value: plan.Len()}))
	defer span.End()

	e.log.Info(ctx, "plan_execution_started", "paths", plan.Len())

	warnings, err := e.lint(ctx, plan)
	if err != nil {
		span.SetError(err)
		return domain.Err[ExecutionResult](err)
	}

	if err := e.read(ctx, plan); err != nil {
		span.SetError(err)
		return domain.Err[ExecutionResult](err)
	}

	if err := e.apply(ctx, plan); err != nil {
		span.SetError(err)
		return domain.Err[ExecutionResult](err)
	}

	signatures, err := e.sign(ctx, plan)
	if err != nil {
		span.SetError(err)
		return domain.Err[ExecutionResult](err)
	}

	e.log.Info(ctx, "plan_execution_complete", "paths", plan.Len(), "warnings", len(warnings))
	return domain.Ok(ExecutionResult{Warnings: warnings, Signatures: signatures})
}

func (e *Executor) lint(ctx context.Context, plan *planner.Plan) ([]string, error) {
	_, span := e.tracer.Start(ctx, "executor.lint")
	defer span.End()

	var warnings []string
	var firstErr error
	plan.Each(func(relpath string, inst tactic.Instance) {
		if firstErr != nil {
			return
		}
		msgs, err := inst.Lint(ctx)
		if err != nil {
			firstErr = fmt.Errorf("lint %s: %w", relpath, err)
			return
		}
		for _, m := range msgs {
			warnings = append(warnings, relpath+": "+m)
		}
	})
	if firstErr != nil {
		e.log.Error(ctx, "lint_failed", "error", firstErr)
		return warnings, firstErr
	}
	e.log.Debug(ctx, "lint_complete", "warnings", len(warnings))
	return warnings, nil
}

func (e *Executor) read(ctx context.Context, plan *planner.Plan) error {
	_, span := e.tracer.Start(ctx, "executor.read")
	defer span.End()

	var firstErr error
	plan.Each(func(relpath string, inst tactic.Instance) {
		if firstErr != nil {
			return
		}
		if err := inst.Read(ctx); err != nil {
			firstErr = fmt.Errorf("read %s: %w", relpath, err)
		}
	})
	if firstErr != nil {
		e.log.Error(ctx, "read_failed", "error", firstErr)
		return firstErr
	}
	e.log.Debug(ctx, "read_complete")
	return nil
}

func (e *Executor) apply(ctx context.Context, plan *planner.Plan) error {
	_, span := e.tracer.Start(ctx, "executor.apply")
	defer span.End()

	var firstErr error
	plan.Each(func(relpath string, inst tactic.Instance) {
		if firstErr != nil {
			return
		}
		if err := inst.Apply(ctx); err != nil {
			firstErr = fmt.Errorf("apply %s: %w", relpath, err)
			return
		}
		e.log.Debug(ctx, "applied", "path", relpath, "kind", inst.Kind())
	})
	if firstErr != nil {
		e.log.Error(ctx, "apply_failed", "error", firstErr)
		return firstErr
	}
	e.log.Debug(ctx, "apply_complete")
	return nil
}

func (e *Executor) sign(ctx context.Context, plan *planner.Plan) (map[string]tactic.Signature, error) {
	_, span := e.tracer.Start(ctx, "executor.sign")
	defer span.End()

	merged := make(map[string]tactic.Signature, plan.Len())
	var firstErr error
	plan.Each(func(relpath string, inst tactic.Instance) {
		if firstErr != nil {
			return
		}
		sigs, err := inst.Sign(ctx)
		if err != nil {
			firstErr = fmt.Errorf("sign %s: %w", relpath, err)
			return
		}
		for path, sig := range sigs {
			merged[path] = sig
		}
	})
	if firstErr != nil {
		e.log.Error(ctx, "sign_failed", "error", firstErr)
		return nil, firstErr
	}
	e.log.Debug(ctx, "sign_complete", "signatures", len(merged))
	return merged, nil
}
