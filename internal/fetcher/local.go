package fetcher

import (
	"context"
	"os"
	"strings"

	"github.com/compotron/compose/internal/domain"
)

// LocalRepoResolver implements spec.md §4.1 resolver 1: searches the
// working directory, REPOSITORY, and colon-separated COMPOSER_PATH for
// "(searchRoot)/ref" as a directory. Never claims `interface:` references.
type LocalRepoResolver struct {
	vfs     domain.FS
	cwd     string
	repoEnv string // REPOSITORY
	pathEnv string // COMPOSER_PATH
}

// NewLocalRepoResolver builds the resolver from the current environment.
func NewLocalRepoResolver(vfs domain.FS, cwd string) *LocalRepoResolver {
	return &LocalRepoResolver{
		vfs:     vfs,
		cwd:     cwd,
		repoEnv: os.Getenv("REPOSITORY"),
		pathEnv: os.Getenv("COMPOSER_PATH"),
	}
}

func (r *LocalRepoResolver) Name() string { return "local-repository" }

func (r *LocalRepoResolver) Resolve(ctx context.Context, ref domain.LayerRef, series string) (domain.AbsPath, bool, error) {
	if ref.IsInterface() {
		return domain.AbsPath{}, false, nil
	}
	for _, root := range r.searchRoots() {
		rootRes := domain.NewAbsPath(root)
		if rootRes.IsErr() {
			continue
		}
		candidate := rootRes.Unwrap().Join(ref.Name())
		info, err := r.vfs.Stat(ctx, candidate.String())
		if err == nil && info.IsDir() {
			return candidate, true, nil
		}
	}
	return domain.AbsPath{}, false, nil
}

func (r *LocalRepoResolver) searchRoots() []string {
	roots := []string{r.cwd}
	if r.repoEnv != "" {
		roots = append(roots, r.repoEnv)
	}
	if r.pathEnv != "" {
		roots = append(roots, strings.Split(r.pathEnv, ":")...)
	}
	return roots
}
