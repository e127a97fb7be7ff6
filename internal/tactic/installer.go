package tactic

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os/exec"
	"strings"
	"time"

	"github.com/compotron/compose/internal/domain"
)

// InstallerExtension and InstallerCommand are configurable per
// SPEC_FULL.md §4.5, since the core's Non-goals leave the target
// ecosystem unspecified: the default extension is ".pkgspec" and the
// default installer invocation is "pip install --target <dir> -r <spec>".
var (
	InstallerExtension = ".pkgspec"
	InstallerCommand   = []string{"pip", "install", "--target", "{dir}", "-r", "{spec}"}
	InstallerTimeout   = 60 * time.Second
)

// InstallerClass matches files with InstallerExtension and invokes an
// external package installer to populate the target directory.
type InstallerClass struct{}

func (InstallerClass) Name() string { return "InstallerTactic" }
func (InstallerClass) Trigger(relpath string) bool {
	return strings.HasSuffix(relpath, InstallerExtension)
}
func (InstallerClass) New(tc Context) Instance { return &installerInstance{Context: tc} }

type installerInstance struct {
	Context
	spec []byte
}

func (i *installerInstance) Lint(ctx context.Context) ([]string, error) {
	if !i.FS.Exists(ctx, i.SourceAbs.String()) {
		return nil, domain.ErrInvalidPath{Path: i.SourceAbs.String(), Reason: "source does not exist"}
	}
	return nil, nil
}

func (i *installerInstance) Read(ctx context.Context) error {
	data, err := i.FS.ReadFile(ctx, i.SourceAbs.String())
	if err != nil {
		return err
	}
	i.spec = data
	return nil
}

func (i *installerInstance) Combine(prior Instance) Instance { return i }
func (i *installerInstance) Kind() Kind                      { return KindDynamic }

func (i *installerInstance) Apply(ctx context.Context) error {
	dest := i.RelPath.Under(i.TargetDir)
	destParent := dest.Parent()
	if destParent.IsErr() {
		return destParent.UnwrapErr()
	}
	targetDir := destParent.Unwrap()
	if err := i.FS.MkdirAll(ctx, targetDir.String(), 0o755); err != nil {
		return err
	}
	if err := i.FS.WriteFile(ctx, dest.String(), i.spec, 0o644); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, InstallerTimeout)
	defer cancel()

	args := make([]string, len(InstallerCommand))
	copy(args, InstallerCommand)
	for idx, a := range args {
		a = strings.ReplaceAll(a, "{dir}", targetDir.String())
		a = strings.ReplaceAll(a, "{spec}", dest.String())
		args[idx] = a
	}

	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return domain.SubprocessFailure{Command: args[0], Args: args[1:], ExitCode: exitCode, Cause: err}
	}
	return nil
}

func (i *installerInstance) Sign(ctx context.Context) (map[string]Signature, error) {
	sum := sha256.Sum256(i.spec)
	return map[string]Signature{
		i.RelPath.String(): {Origin: i.OwningLayerName, Kind: KindDynamic, SHA256: hex.EncodeToString(sum[:])},
	}, nil
}
