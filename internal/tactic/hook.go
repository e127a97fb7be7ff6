package tactic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/compotron/compose/internal/domain"
)

// HookClass matches any file whose parent directory is "hooks".
type HookClass struct{}

func (HookClass) Name() string { return "HookTactic" }
func (HookClass) Trigger(relpath string) bool { return dirName(relpath) == "hooks" }
func (HookClass) New(tc Context) Instance     { return &hookInstance{Context: tc} }

// ActionClass matches any file whose parent directory is "actions".
type ActionClass struct{}

func (ActionClass) Name() string { return "ActionTactic" }
func (ActionClass) Trigger(relpath string) bool { return dirName(relpath) == "actions" }
func (ActionClass) New(tc Context) Instance     { return &hookInstance{Context: tc} }

func dirName(relpath string) string {
	dir := filepath.ToSlash(filepath.Dir(relpath))
	if idx := strings.LastIndex(dir, "/"); idx >= 0 {
		return dir[idx+1:]
	}
	return dir
}

// hookInstance implements hooks and actions: plain files are copied
// verbatim, but a ".pre" or ".post" file triggers the wrapper-diversion
// mechanism from spec.md §4.5, grounded in the original HookTactic: the
// lower layer's hook of the same base name is diverted to
// "<hook>.<lower-layer-name>", the pre/post file is copied to its own
// path, and a POSIX wrapper is written at the plain hook path that
// sources .pre, runs the diverted hook, then sources .post.
type hookInstance struct {
	Context
	data       []byte
	wrapper    []byte // non-nil when this instance additionally wrote a wrapper script
	wrapperRel string
	diverted   []byte
	divertRel  string
}

func (h *hookInstance) Lint(ctx context.Context) ([]string, error) {
	if !h.FS.Exists(ctx, h.SourceAbs.String()) {
		return nil, domain.ErrInvalidPath{Path: h.SourceAbs.String(), Reason: "source does not exist"}
	}
	return nil, nil
}

func (h *hookInstance) Read(ctx context.Context) error {
	data, err := h.FS.ReadFile(ctx, h.SourceAbs.String())
	if err != nil {
		return err
	}
	h.data = data
	return nil
}

func (h *hookInstance) Combine(prior Instance) Instance { return h }
func (h *hookInstance) Kind() Kind                      { return KindStatic }

func (h *hookInstance) ext() string {
	rel := h.RelPath.String()
	if strings.HasSuffix(rel, ".pre") {
		return ".pre"
	}
	if strings.HasSuffix(rel, ".post") {
		return ".post"
	}
	return ""
}

func (h *hookInstance) stripExt() string {
	rel := h.RelPath.String()
	return strings.TrimSuffix(strings.TrimSuffix(rel, ".pre"), ".post")
}

func (h *hookInstance) Apply(ctx context.Context) error {
	dest := h.RelPath.Under(h.TargetDir)
	if parent := dest.Parent(); parent.IsOk() {
		if err := h.FS.MkdirAll(ctx, parent.Unwrap().String(), 0o755); err != nil {
			return err
		}
	}

	if h.ext() == "" {
		return h.FS.WriteFile(ctx, dest.String(), h.data, 0o755)
	}

	mainRel := h.stripExt()
	mainAbs, foundLayer, ok := h.findLowerHook(ctx, mainRel)
	if !ok {
		if h.Log != nil {
			h.Log.Warn(ctx, "hook diversion target missing", "hook", mainRel)
		}
		return h.FS.WriteFile(ctx, dest.String(), h.data, 0o755)
	}

	mainData, err := h.FS.ReadFile(ctx, mainAbs.String())
	if err != nil {
		return err
	}
	h.diverted = mainData
	h.divertRel = mainRel + "." + foundLayer

	divertedDest := h.RelPath.Parent()
	if divertedDest.IsErr() {
		return divertedDest.UnwrapErr()
	}
	divertedAbs := divertedDest.Unwrap().Join(filepath.Base(h.divertRel)).Under(h.TargetDir)
	if err := h.FS.WriteFile(ctx, divertedAbs.String(), mainData, 0o755); err != nil {
		return err
	}

	if err := h.FS.WriteFile(ctx, dest.String(), h.data, 0o755); err != nil {
		return err
	}

	wrapperRes := domain.NewRelPath(mainRel)
	if wrapperRes.IsErr() {
		return wrapperRes.UnwrapErr()
	}
	h.wrapperRel = wrapperRes.Unwrap().String()
	h.wrapper = []byte(fmt.Sprintf(`#!/bin/bash
set -e
[ -e %s.pre ] && . %s.pre
%s.%s
[ -e %s.post ] && . %s.post
`, mainRel, mainRel, mainRel, foundLayer, mainRel, mainRel))

	wrapperAbs := wrapperRes.Unwrap().Under(h.TargetDir)
	return h.FS.WriteFile(ctx, wrapperAbs.String(), h.wrapper, 0o755)
}

// findLowerHook searches layers below the owning layer, nearest first,
// for a raw hook file named relpath, mirroring Tactic.find() in the
// original implementation.
func (h *hookInstance) findLowerHook(ctx context.Context, relpath string) (domain.AbsPath, string, bool) {
	for _, layer := range h.LowerLayers {
		candidate := layer.Dir.Join(filepath.FromSlash(relpath))
		if h.FS.Exists(ctx, candidate.String()) {
			return candidate, layer.Name, true
		}
	}
	return domain.AbsPath{}, "", false
}

func (h *hookInstance) Sign(ctx context.Context) (map[string]Signature, error) {
	out := map[string]Signature{}
	sum := sha256.Sum256(h.data)
	out[h.RelPath.String()] = Signature{Origin: h.OwningLayerName, Kind: KindStatic, SHA256: hex.EncodeToString(sum[:])}

	if h.wrapper != nil {
		wsum := sha256.Sum256(h.wrapper)
		out[h.wrapperRel] = Signature{Origin: h.OwningLayerName, Kind: KindDynamic, SHA256: hex.EncodeToString(wsum[:])}
		dsum := sha256.Sum256(h.diverted)
		out[h.divertRel] = Signature{Origin: h.OwningLayerName, Kind: KindStatic, SHA256: hex.EncodeToString(dsum[:])}
	}
	return out, nil
}
