package executor

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compotron/compose/internal/adapters"
	"github.com/compotron/compose/internal/planner"
	"github.com/compotron/compose/internal/tactic"
)

// fakeInstance is a minimal tactic.Instance stand-in that records which
// phases ran, so tests can assert phase ordering and abort-on-error
// without depending on a real tactic's filesystem side effects.
type fakeInstance struct {
	calls       *[]string
	relpath     string
	lintErr     error
	lintWarning string
	readErr     error
	applyErr    error
	signErr     error
	kind        tactic.Kind
}

func (f *fakeInstance) Lint(context.Context) ([]string, error) {
	*f.calls = append(*f.calls, "lint:"+f.relpath)
	if f.lintWarning != "" {
		return []string{f.lintWarning}, f.lintErr
	}
	return nil, f.lintErr
}

func (f *fakeInstance) Read(context.Context) error {
	*f.calls = append(*f.calls, "read:"+f.relpath)
	return f.readErr
}

func (f *fakeInstance) Apply(context.Context) error {
	*f.calls = append(*f.calls, "apply:"+f.relpath)
	return f.applyErr
}

func (f *fakeInstance) Sign(context.Context) (map[string]tactic.Signature, error) {
	*f.calls = append(*f.calls, "sign:"+f.relpath)
	if f.signErr != nil {
		return nil, f.signErr
	}
	return map[string]tactic.Signature{f.relpath: {Origin: "test", Kind: f.kind, SHA256: "x"}}, nil
}

func (f *fakeInstance) Combine(prior tactic.Instance) tactic.Instance { return f }
func (f *fakeInstance) Kind() tactic.Kind                             { return f.kind }

func testLogger() *adapters.SlogLogger {
	return adapters.NewConsoleLogger(io.Discard, "error")
}

func TestExecute_RunsAllFourPhasesInOrder(t *testing.T) {
	var calls []string
	plan := planner.NewPlan()
	plan.Set("a", &fakeInstance{calls: &calls, relpath: "a", kind: tactic.KindStatic})
	plan.Set("b", &fakeInstance{calls: &calls, relpath: "b", kind: tactic.KindStatic})

	e := New(Opts{Logger: testLogger()})
	res := e.Execute(context.Background(), plan)
	require.True(t, res.IsOk())

	result := res.Unwrap()
	require.Len(t, result.Signatures, 2)

	lastLintIdx, firstReadIdx := -1, len(calls)
	for i, c := range calls {
		if c[:4] == "lint" {
			lastLintIdx = i
		}
		if c[:4] == "read" && i < firstReadIdx {
			firstReadIdx = i
		}
	}
	assert.Less(t, lastLintIdx, firstReadIdx, "every lint must run before any read")
}

func TestExecute_LintErrorAbortsBeforeApply(t *testing.T) {
	var calls []string
	plan := planner.NewPlan()
	plan.Set("a", &fakeInstance{calls: &calls, relpath: "a", lintErr: errors.New("bad input"), kind: tactic.KindStatic})

	e := New(Opts{Logger: testLogger()})
	res := e.Execute(context.Background(), plan)
	require.True(t, res.IsErr())

	for _, c := range calls {
		assert.NotContains(t, c, "apply:")
		assert.NotContains(t, c, "sign:")
	}
}

func TestExecute_ApplyErrorAbortsBeforeSign(t *testing.T) {
	var calls []string
	plan := planner.NewPlan()
	plan.Set("a", &fakeInstance{calls: &calls, relpath: "a", applyErr: errors.New("disk full"), kind: tactic.KindStatic})
	plan.Set("b", &fakeInstance{calls: &calls, relpath: "b", kind: tactic.KindStatic})

	e := New(Opts{Logger: testLogger()})
	res := e.Execute(context.Background(), plan)
	require.True(t, res.IsErr())

	for _, c := range calls {
		assert.NotContains(t, c, "sign:")
	}
}

func TestExecute_CollectsLintWarnings(t *testing.T) {
	plan := planner.NewPlan()
	var calls []string
	plan.Set("a", &fakeInstance{calls: &calls, relpath: "a", kind: tactic.KindStatic, lintWarning: "missing pre target"})

	e := New(Opts{Logger: testLogger()})
	res := e.Execute(context.Background(), plan)
	require.True(t, res.IsOk())

	result := res.Unwrap()
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "missing pre target")
}
