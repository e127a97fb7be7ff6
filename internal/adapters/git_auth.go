package adapters

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	ghauth "github.com/cli/go-gh/pkg/auth"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	transport "github.com/go-git/go-git/v5/plumbing/transport"
)

// AuthMethod produces a go-git transport.AuthMethod for a resolved
// credential, or nil for anonymous access.
type AuthMethod interface {
	Transport() (transport.AuthMethod, error)
}

// TokenAuth authenticates HTTPS clones with a bearer token.
type TokenAuth struct {
	Token string
}

func (a TokenAuth) Transport() (transport.AuthMethod, error) {
	return &githttp.BasicAuth{Username: "x-access-token", Password: a.Token}, nil
}

// SSHAuth authenticates SSH clones with a private key file.
type SSHAuth struct {
	PrivateKeyPath string
}

func (a SSHAuth) Transport() (transport.AuthMethod, error) {
	return gitssh.NewPublicKeysFromFile("git", a.PrivateKeyPath, "")
}

// NoAuth performs an anonymous clone, the only option for public
// repositories when no credential resolves.
type NoAuth struct{}

func (NoAuth) Transport() (transport.AuthMethod, error) { return nil, nil }

// ResolveAuth determines the authentication method for a git repository
// URL (used to fetch a layer or interface's `repo` target into
// deps/<series>/<name>).
//
// Resolution priority:
//  1. GITHUB_TOKEN environment variable
//  2. GIT_TOKEN environment variable
//  3. SSH keys in ~/.ssh/ (for SSH-style URLs)
//  4. GitHub CLI (gh) authenticated session (for GitHub HTTPS URLs)
//  5. NoAuth (public repositories)
func ResolveAuth(ctx context.Context, repoURL string) (AuthMethod, error) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return TokenAuth{Token: token}, nil
	}
	if token := os.Getenv("GIT_TOKEN"); token != "" {
		return TokenAuth{Token: token}, nil
	}
	if isSSHURL(repoURL) {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			if keyPath := findSSHKey(homeDir); keyPath != "" {
				return SSHAuth{PrivateKeyPath: keyPath}, nil
			}
		}
	}
	if isGitHubURL(repoURL) && !isSSHURL(repoURL) {
		if token := getGitHubCLIToken(); token != "" {
			return TokenAuth{Token: token}, nil
		}
	}
	return NoAuth{}, nil
}

func isSSHURL(url string) bool {
	return strings.HasPrefix(url, "git@") || strings.HasPrefix(url, "ssh://")
}

// findSSHKey returns the first of the preferred key files that exists.
func findSSHKey(homeDir string) string {
	sshDir := filepath.Join(homeDir, ".ssh")
	for _, name := range []string{"id_ed25519", "id_rsa"} {
		candidate := filepath.Join(sshDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// getGitHubCLIToken retrieves the token gh CLI has stored for github.com,
// via the official go-gh auth package. Empty if gh is unauthenticated.
func getGitHubCLIToken() string {
	token, _ := ghauth.TokenForHost("github.com")
	return token
}

func isGitHubURL(url string) bool {
	return strings.Contains(url, "github.com")
}
