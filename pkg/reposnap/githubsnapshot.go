package reposnap

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/go-github/v60/github"
)

// GitHubSnapshot reads a Snapshot from the GitHub API rather than a
// local clone, for repositories the controller has never cloned.
// repoID is "owner/name".
type GitHubSnapshot struct {
	client *github.Client
	ref    string // branch/sha to read at; empty means the repo's default branch
}

// NewGitHubSnapshot wraps an authenticated *github.Client. ref pins
// the snapshot to a branch or commit; pass "" to follow the default
// branch.
func NewGitHubSnapshot(client *github.Client, ref string) *GitHubSnapshot {
	return &GitHubSnapshot{client: client, ref: ref}
}

func splitRepoID(repoID string) (owner, name string, err error) {
	parts := strings.SplitN(repoID, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("reposnap: repoID %q must be \"owner/name\"", repoID)
	}
	return parts[0], parts[1], nil
}

func (g *GitHubSnapshot) resolveRef(ctx context.Context, owner, name string) (string, error) {
	if g.ref != "" {
		return g.ref, nil
	}
	return g.GetDefaultBranch(ctx, owner+"/"+name)
}

// ListFiles implements Snapshot via the recursive git-trees API.
func (g *GitHubSnapshot) ListFiles(ctx context.Context, repoID string) ([]string, error) {
	owner, name, err := splitRepoID(repoID)
	if err != nil {
		return nil, err
	}
	ref, err := g.resolveRef(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	tree, _, err := g.client.Git.GetTree(ctx, owner, name, ref, true)
	if err != nil {
		return nil, fmt.Errorf("reposnap: list files for %s@%s: %w", repoID, ref, err)
	}

	var files []string
	for _, entry := range tree.Entries {
		if entry.GetType() == "blob" {
			files = append(files, entry.GetPath())
		}
	}
	return files, nil
}

// GetFileContent implements Snapshot.
func (g *GitHubSnapshot) GetFileContent(ctx context.Context, repoID, path string) (string, error) {
	owner, name, err := splitRepoID(repoID)
	if err != nil {
		return "", err
	}
	ref, err := g.resolveRef(ctx, owner, name)
	if err != nil {
		return "", err
	}

	fileContent, _, _, err := g.client.Repositories.GetContents(ctx, owner, name, path, &github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return "", fmt.Errorf("reposnap: get content for %s: %w", path, err)
	}
	if fileContent == nil {
		return "", fmt.Errorf("reposnap: %s is not a file", path)
	}
	if fileContent.GetEncoding() == "base64" {
		raw, err := base64.StdEncoding.DecodeString(fileContent.GetContent())
		if err != nil {
			return "", fmt.Errorf("reposnap: decode content for %s: %w", path, err)
		}
		return string(raw), nil
	}
	return fileContent.GetContent(), nil
}

// GetLog implements Snapshot via the commits-list API.
func (g *GitHubSnapshot) GetLog(ctx context.Context, repoID string, opts LogOptions) ([]LogEntry, error) {
	owner, name, err := splitRepoID(repoID)
	if err != nil {
		return nil, err
	}

	listOpts := &github.CommitsListOptions{Path: opts.FilePath}
	if opts.Limit > 0 {
		listOpts.ListOptions = github.ListOptions{PerPage: opts.Limit}
	}

	commits, _, err := g.client.Repositories.ListCommits(ctx, owner, name, listOpts)
	if err != nil {
		return nil, fmt.Errorf("reposnap: list commits for %s: %w", repoID, err)
	}

	entries := make([]LogEntry, 0, len(commits))
	for _, c := range commits {
		if opts.Limit > 0 && len(entries) >= opts.Limit {
			break
		}
		commit := c.GetCommit()
		entries = append(entries, LogEntry{
			SHA:       c.GetSHA(),
			Author:    commit.GetAuthor().GetName(),
			Message:   commit.GetMessage(),
			Timestamp: commit.GetAuthor().GetDate().Unix(),
		})
	}
	return entries, nil
}

// GetBlame implements Snapshot via the GraphQL-free REST commits API.
// Every line in [startLine, endLine] is attributed to the most recent
// commit touching path; lines are not traced back individually to the
// commit that last changed each one.
func (g *GitHubSnapshot) GetBlame(ctx context.Context, repoID, path string, startLine, endLine int) ([]BlameLine, error) {
	owner, name, err := splitRepoID(repoID)
	if err != nil {
		return nil, err
	}

	commits, _, err := g.client.Repositories.ListCommits(ctx, owner, name, &github.CommitsListOptions{Path: path})
	if err != nil {
		return nil, fmt.Errorf("reposnap: list commits for blame of %s: %w", path, err)
	}
	if len(commits) == 0 {
		return nil, fmt.Errorf("reposnap: no commits touch %s", path)
	}
	latest := commits[0]

	content, err := g.GetFileContent(ctx, repoID, path)
	if err != nil {
		return nil, err
	}

	var lines []BlameLine
	for i, text := range strings.Split(content, "\n") {
		lineNo := i + 1
		if lineNo < startLine || lineNo > endLine {
			continue
		}
		lines = append(lines, BlameLine{
			Line:    lineNo,
			SHA:     latest.GetSHA(),
			Author:  latest.GetCommit().GetAuthor().GetName(),
			Content: text,
		})
	}
	return lines, nil
}

// GetDiff implements Snapshot via a single commit's unified patch.
func (g *GitHubSnapshot) GetDiff(ctx context.Context, repoID, sha string) (string, error) {
	owner, name, err := splitRepoID(repoID)
	if err != nil {
		return "", err
	}
	commit, _, err := g.client.Repositories.GetCommit(ctx, owner, name, sha, nil)
	if err != nil {
		return "", fmt.Errorf("reposnap: get commit %s: %w", sha, err)
	}

	var b strings.Builder
	for _, f := range commit.Files {
		fmt.Fprintf(&b, "--- %s\n", f.GetFilename())
		b.WriteString(f.GetPatch())
		b.WriteString("\n")
	}
	return b.String(), nil
}

// GetDefaultBranch implements Snapshot.
func (g *GitHubSnapshot) GetDefaultBranch(ctx context.Context, repoID string) (string, error) {
	owner, name, err := splitRepoID(repoID)
	if err != nil {
		return "", err
	}
	repo, _, err := g.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return "", fmt.Errorf("reposnap: get repository %s: %w", repoID, err)
	}
	return repo.GetDefaultBranch(), nil
}
