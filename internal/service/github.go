package service

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-github/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/iliyamo/feedback-board/internal/config"
)

// GitHubSync pushes a local directory tree to a repository branch and pulls
// the branch back down into a local directory. Pushes are best-effort per
// file: one failed upload does not abort the rest.
type GitHubSync struct {
	client *github.Client
	owner  string
	repo   string
	branch string
}

// FileResult records the outcome of syncing a single file.
type FileResult struct {
	Path   string `json:"path"`
	Status string `json:"status"` // "created", "updated", "failed"
	Error  string `json:"error,omitempty"`
}

// skipNames are never pushed. Dependency trees, VCS metadata, secrets and
// lockfiles have no business in the synced snapshot.
var skipNames = map[string]bool{
	"node_modules":      true,
	".git":              true,
	".env":              true,
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
}

// NewGitHubSync builds a sync client from config. Returns an error when the
// integration is not configured so handlers can answer 503 instead of
// failing mid-push.
func NewGitHubSync(cfg *config.Config) (*GitHubSync, error) {
	if cfg.GitHubToken == "" || cfg.GitHubRepoOwner == "" || cfg.GitHubRepoName == "" {
		return nil, fmt.Errorf("github sync is not configured")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHubToken})
	tc := oauth2.NewClient(context.Background(), ts)
	return &GitHubSync{
		client: github.NewClient(tc),
		owner:  cfg.GitHubRepoOwner,
		repo:   cfg.GitHubRepoName,
		branch: cfg.GitHubBranch,
	}, nil
}

// shouldSkip reports whether a file or directory name is excluded from
// pushes. Anything starting with an underscore is treated as private.
func shouldSkip(name string) bool {
	return skipNames[name] || strings.HasPrefix(name, "_")
}

// collectFiles walks root and returns the slash-separated relative paths of
// every file that should be pushed.
func collectFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if shouldSkip(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	return files, err
}

// Push uploads every eligible file under root to the configured repository
// branch, creating or updating each one. The returned slice holds one
// result per file regardless of outcome.
func (g *GitHubSync) Push(ctx context.Context, root, message string) ([]FileResult, error) {
	files, err := collectFiles(root)
	if err != nil {
		return nil, fmt.Errorf("walk local tree: %w", err)
	}
	if message == "" {
		message = "Sync from feedback board"
	}

	results := make([]FileResult, 0, len(files))
	for _, rel := range files {
		res := g.pushFile(ctx, root, rel, message)
		if res.Status == "failed" {
			logrus.WithField("path", rel).Warn("github push: file failed: " + res.Error)
		}
		results = append(results, res)
	}
	return results, nil
}

func (g *GitHubSync) pushFile(ctx context.Context, root, rel, message string) FileResult {
	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return FileResult{Path: rel, Status: "failed", Error: err.Error()}
	}

	sha, found, err := g.remoteSHA(ctx, rel)
	if err != nil {
		return FileResult{Path: rel, Status: "failed", Error: err.Error()}
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message + ": " + rel),
		Content: content,
		Branch:  github.String(g.branch),
	}
	if found {
		opts.SHA = github.String(sha)
		_, _, err = g.client.Repositories.UpdateFile(ctx, g.owner, g.repo, rel, opts)
		if err != nil {
			return FileResult{Path: rel, Status: "failed", Error: err.Error()}
		}
		return FileResult{Path: rel, Status: "updated"}
	}
	_, _, err = g.client.Repositories.CreateFile(ctx, g.owner, g.repo, rel, opts)
	if err != nil {
		return FileResult{Path: rel, Status: "failed", Error: err.Error()}
	}
	return FileResult{Path: rel, Status: "created"}
}

// remoteSHA looks up the blob SHA of a path on the branch. A missing file is
// a normal outcome, reported through found=false rather than an error.
func (g *GitHubSync) remoteSHA(ctx context.Context, path string) (sha string, found bool, err error) {
	fc, _, resp, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, path,
		&github.RepositoryContentGetOptions{Ref: g.branch})
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return "", false, nil
		}
		return "", false, err
	}
	if fc == nil {
		return "", false, nil
	}
	return fc.GetSHA(), true, nil
}

// Pull downloads the full branch tree into dest, creating directories as
// needed and overwriting existing files.
func (g *GitHubSync) Pull(ctx context.Context, dest string) ([]FileResult, error) {
	var results []FileResult
	if err := g.pullDir(ctx, "", dest, &results); err != nil {
		return results, err
	}
	return results, nil
}

func (g *GitHubSync) pullDir(ctx context.Context, remotePath, dest string, results *[]FileResult) error {
	fc, dir, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, remotePath,
		&github.RepositoryContentGetOptions{Ref: g.branch})
	if err != nil {
		return fmt.Errorf("list %q: %w", remotePath, err)
	}
	if fc != nil {
		return g.pullFile(fc, dest, results)
	}
	for _, entry := range dir {
		name := entry.GetName()
		child := name
		if remotePath != "" {
			child = remotePath + "/" + name
		}
		switch entry.GetType() {
		case "dir":
			if err := g.pullDir(ctx, child, dest, results); err != nil {
				return err
			}
		case "file":
			efc, _, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, child,
				&github.RepositoryContentGetOptions{Ref: g.branch})
			if err != nil {
				*results = append(*results, FileResult{Path: child, Status: "failed", Error: err.Error()})
				continue
			}
			if err := g.pullFile(efc, dest, results); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *GitHubSync) pullFile(fc *github.RepositoryContent, dest string, results *[]FileResult) error {
	rel := fc.GetPath()
	content, err := fc.GetContent()
	if err != nil {
		*results = append(*results, FileResult{Path: rel, Status: "failed", Error: err.Error()})
		return nil
	}
	local := filepath.Join(dest, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return fmt.Errorf("mkdir for %q: %w", rel, err)
	}
	if err := os.WriteFile(local, []byte(content), 0o644); err != nil {
		*results = append(*results, FileResult{Path: rel, Status: "failed", Error: err.Error()})
		return nil
	}
	*results = append(*results, FileResult{Path: rel, Status: "updated"})
	return nil
}
