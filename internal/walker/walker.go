// Package walker provides recursive directory traversal filtered by an
// ignore.Set, the "Path & Walk primitives" component of spec.md §2.
package walker

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/compotron/compose/internal/domain"
	"github.com/compotron/compose/internal/ignore"
)

// Entry describes one file encountered by Walk.
type Entry struct {
	// RelPath is the slash-separated path relative to the walk root.
	RelPath domain.RelPath
	// AbsPath is the entry's absolute location on disk.
	AbsPath domain.AbsPath
	Mode    fs.FileMode
}

// Walk recursively lists every regular file under root, skipping anything
// matched by filter, and returns entries in deterministic lexical order by
// relative path — directories are not walked in parallel and results are
// sorted, so two walks over identical inputs always produce the same
// sequence (spec.md §8 property 1).
func Walk(ctx context.Context, vfs domain.FS, root domain.AbsPath, filter *ignore.Set) ([]Entry, error) {
	var entries []Entry
	var walkDir func(dir domain.AbsPath) error

	walkDir = func(dir domain.AbsPath) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		children, err := vfs.ReadDir(ctx, dir.String())
		if err != nil {
			return err
		}
		sort.Slice(children, func(i, j int) bool { return children[i].Name() < children[j].Name() })

		for _, child := range children {
			childAbs := dir.Join(child.Name())
			rel, err := relativeTo(root, childAbs)
			if err != nil {
				continue
			}
			if filter != nil && filter.Ignored(rel.String()) {
				continue
			}
			if child.IsDir() {
				if err := walkDir(childAbs); err != nil {
					return err
				}
				continue
			}
			info, err := child.Info()
			if err != nil {
				return err
			}
			entries = append(entries, Entry{RelPath: rel, AbsPath: childAbs, Mode: info.Mode()})
		}
		return nil
	}

	if err := walkDir(root); err != nil {
		return nil, err
	}
	return entries, nil
}

func relativeTo(root, target domain.AbsPath) (domain.RelPath, error) {
	rel, err := filepath.Rel(root.String(), target.String())
	if err != nil {
		return domain.RelPath{}, err
	}
	res := domain.NewRelPath(filepath.ToSlash(rel))
	if res.IsErr() {
		return domain.RelPath{}, res.UnwrapErr()
	}
	return res.Unwrap(), nil
}
