package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// RepoInfo is the git metadata used as deploy defaults.
type RepoInfo struct {
	Revision  string // HEAD commit hash
	RemoteURL string // origin, converted to HTTPS
}

// DetectRepo reads HEAD and the origin remote of the repository containing dir.
func DetectRepo(dir string) (*RepoInfo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}

	head, err := repo.Head()
	if err != nil {
		return nil, err
	}

	info := &RepoInfo{Revision: head.Hash().String()}

	if remote, err := repo.Remote("origin"); err == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			info.RemoteURL = remoteToHTTPS(urls[0])
		}
	}
	return info, nil
}

// remoteToHTTPS converts a git remote URL to HTTPS form.
// SSH remotes (git@host:org/repo.git) become https://host/org/repo.
func remoteToHTTPS(remote string) string {
	remote = strings.TrimSuffix(remote, ".git")

	if strings.HasPrefix(remote, "https://") || strings.HasPrefix(remote, "http://") {
		return remote
	}

	if strings.HasPrefix(remote, "ssh://") {
		remote = strings.TrimPrefix(remote, "ssh://")
		if idx := strings.Index(remote, "@"); idx != -1 {
			remote = remote[idx+1:]
		}
		return "https://" + remote
	}

	// git@host:org/repo
	if idx := strings.Index(remote, "@"); idx != -1 {
		rest := remote[idx+1:]
		rest = strings.Replace(rest, ":", "/", 1)
		return "https://" + rest
	}

	return remote
}

// DetectProjectName returns the "name" field of package.json in dir, or
// the directory's base name when there is none.
func DetectProjectName(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err == nil {
		var pkg struct {
			Name string `json:"name"`
		}
		if json.Unmarshal(data, &pkg) == nil && pkg.Name != "" {
			// scoped packages build as the unscoped name
			if idx := strings.LastIndex(pkg.Name, "/"); idx != -1 {
				return pkg.Name[idx+1:]
			}
			return pkg.Name
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	return filepath.Base(abs)
}
