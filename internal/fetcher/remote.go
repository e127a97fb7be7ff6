package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/compotron/compose/internal/domain"
	"github.com/compotron/compose/internal/retry"
)

// interfaceEntry is the JSON shape returned by the registry endpoint for a
// resolved interface name, per spec.md §4.1 resolver 3.
type interfaceEntry struct {
	Name string `json:"name"`
	Repo string `json:"repo"`
}

// RemoteInterfaceResolver implements spec.md §4.1 resolver 3: for
// unresolved `interface:` references, it performs an HTTP GET against a
// registry endpoint and hands the returned repo URL to a GitResolver,
// cloning into deps/<series>/<name>.
type RemoteInterfaceResolver struct {
	endpoint   string
	httpClient *http.Client
	git        *GitResolver
	log        domain.Logger
}

// NewRemoteInterfaceResolver builds the resolver. endpoint is the registry
// base URL; a GET to endpoint+"/"+name must return {"name","repo"} JSON.
func NewRemoteInterfaceResolver(endpoint string, git *GitResolver, log domain.Logger) *RemoteInterfaceResolver {
	return &RemoteInterfaceResolver{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		git:        git,
		log:        log,
	}
}

func (r *RemoteInterfaceResolver) Name() string { return "remote-interface" }

func (r *RemoteInterfaceResolver) Resolve(ctx context.Context, ref domain.LayerRef, series string) (domain.AbsPath, bool, error) {
	if !ref.IsInterface() || r.endpoint == "" {
		return domain.AbsPath{}, false, nil
	}
	name := ref.Name()

	entry, err := retry.DoWithData(ctx, retry.FetchConfig(), func() (interfaceEntry, error) {
		return r.lookup(ctx, name)
	})
	if err != nil {
		// The registry being unreachable is not itself an UnresolvedLayer
		// for *this* resolver; let the registry report UnresolvedLayer
		// once every resolver has been tried.
		if r.log != nil {
			r.log.Warn(ctx, "remote interface lookup failed", "name", name, "error", err)
		}
		return domain.AbsPath{}, false, nil
	}

	dest := r.git.targetDir(series, entry.Name)
	dirRes := r.git.Clone(ctx, entry.Repo, dest)
	if dirRes.IsErr() {
		return domain.AbsPath{}, false, dirRes.UnwrapErr()
	}
	return dirRes.Unwrap(), true, nil
}

func (r *RemoteInterfaceResolver) lookup(ctx context.Context, name string) (interfaceEntry, error) {
	reqURL := fmt.Sprintf("%s/%s", r.endpoint, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return interfaceEntry{}, err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return interfaceEntry{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return interfaceEntry{}, fmt.Errorf("registry lookup for %q: status %d", name, resp.StatusCode)
	}
	var entry interfaceEntry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return interfaceEntry{}, fmt.Errorf("registry lookup for %q: %w", name, err)
	}
	if entry.Repo == "" {
		return interfaceEntry{}, fmt.Errorf("registry lookup for %q: empty repo", name)
	}
	if entry.Name == "" {
		entry.Name = name
	}
	return entry, nil
}
