package fetcher

import (
	"context"
	"os"
	"path/filepath"

	"github.com/compotron/compose/internal/domain"
)

// InterfaceLocalResolver implements spec.md §4.1 resolver 2: applies only
// to `interface:` references, searching ./interfaces and the
// path-separator-separated INTERFACE_PATH list.
type InterfaceLocalResolver struct {
	vfs     domain.FS
	cwd     string
	pathEnv string // INTERFACE_PATH
}

// NewInterfaceLocalResolver builds the resolver from the current environment.
func NewInterfaceLocalResolver(vfs domain.FS, cwd string) *InterfaceLocalResolver {
	return &InterfaceLocalResolver{
		vfs:     vfs,
		cwd:     cwd,
		pathEnv: os.Getenv("INTERFACE_PATH"),
	}
}

func (r *InterfaceLocalResolver) Name() string { return "interface-local" }

func (r *InterfaceLocalResolver) Resolve(ctx context.Context, ref domain.LayerRef, series string) (domain.AbsPath, bool, error) {
	if !ref.IsInterface() {
		return domain.AbsPath{}, false, nil
	}
	name := ref.Name()
	for _, root := range r.searchRoots() {
		rootRes := domain.NewAbsPath(root)
		if rootRes.IsErr() {
			continue
		}
		candidate := rootRes.Unwrap().Join(name)
		info, err := r.vfs.Stat(ctx, candidate.String())
		if err == nil && info.IsDir() {
			return candidate, true, nil
		}
	}
	return domain.AbsPath{}, false, nil
}

func (r *InterfaceLocalResolver) searchRoots() []string {
	roots := []string{filepath.Join(r.cwd, "interfaces")}
	if r.pathEnv != "" {
		roots = append(roots, filepath.SplitList(r.pathEnv)...)
	}
	return roots
}
