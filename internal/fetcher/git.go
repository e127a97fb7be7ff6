package fetcher

import (
	"context"
	"os"

	"github.com/go-git/go-git/v5"

	"github.com/compotron/compose/internal/adapters"
	"github.com/compotron/compose/internal/domain"
	"github.com/compotron/compose/internal/retry"
)

// GitResolver clones a repository URL into deps/<series>/<name>, using a
// pure-Go git client (no shelling out) with authentication resolved by
// adapters.ResolveAuth and the clone itself wrapped in retry.Do, per
// SPEC_FULL.md §4.1. RemoteInterfaceResolver is its only user.
type GitResolver struct {
	depsRoot domain.AbsPath
	log      domain.Logger
}

// NewGitResolver builds a resolver that clones under depsRoot/<series>/<name>.
func NewGitResolver(depsRoot domain.AbsPath, log domain.Logger) *GitResolver {
	return &GitResolver{depsRoot: depsRoot, log: log}
}

func (g *GitResolver) Name() string { return "git-clone" }

func (g *GitResolver) targetDir(series, name string) domain.AbsPath {
	return g.depsRoot.Join(series, name)
}

// Clone fetches repoURL into dest, skipping the clone if dest already
// exists and is non-empty (treated as an already-fetched dependency).
func (g *GitResolver) Clone(ctx context.Context, repoURL string, dest domain.AbsPath) domain.Result[domain.AbsPath] {
	if entries, err := os.ReadDir(dest.String()); err == nil && len(entries) > 0 {
		return domain.Ok(dest)
	}

	authMethod, err := adapters.ResolveAuth(ctx, repoURL)
	if err != nil {
		return domain.Err[domain.AbsPath](err)
	}
	transportAuth, err := authMethod.Transport()
	if err != nil {
		return domain.Err[domain.AbsPath](err)
	}

	err = retry.Do(ctx, retry.FetchConfig(), func() error {
		_, cloneErr := git.PlainCloneContext(ctx, dest.String(), false, &git.CloneOptions{
			URL:   repoURL,
			Auth:  transportAuth,
			Depth: 1,
		})
		return cloneErr
	})
	if err != nil {
		if g.log != nil {
			g.log.Warn(ctx, "git clone failed", "repo", repoURL, "dest", dest.String(), "error", err)
		}
		return domain.Err[domain.AbsPath](err)
	}
	return domain.Ok(dest)
}
