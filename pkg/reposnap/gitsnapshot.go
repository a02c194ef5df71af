package reposnap

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitSnapshot reads a Snapshot off a local clone via go-git. repoID is
// ignored; GitSnapshot is scoped to the single repository it opened
// (a repository-id-keyed wrapper belongs to the caller, e.g. a
// map[string]*GitSnapshot in cmd/debtflow).
type GitSnapshot struct {
	repo *git.Repository
}

// OpenGitSnapshot opens an existing local clone at path.
func OpenGitSnapshot(path string) (*GitSnapshot, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("reposnap: open %s: %w", path, err)
	}
	return &GitSnapshot{repo: repo}, nil
}

func (g *GitSnapshot) headCommit() (*object.Commit, error) {
	head, err := g.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("reposnap: resolve HEAD: %w", err)
	}
	return g.repo.CommitObject(head.Hash())
}

// ListFiles implements Snapshot by walking HEAD's tree.
func (g *GitSnapshot) ListFiles(ctx context.Context, repoID string) ([]string, error) {
	commit, err := g.headCommit()
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("reposnap: read tree: %w", err)
	}

	var files []string
	err = tree.Files().ForEach(func(f *object.File) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		files = append(files, f.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// GetFileContent implements Snapshot.
func (g *GitSnapshot) GetFileContent(ctx context.Context, repoID, path string) (string, error) {
	commit, err := g.headCommit()
	if err != nil {
		return "", err
	}
	file, err := commit.File(path)
	if err != nil {
		return "", fmt.Errorf("reposnap: open %s: %w", path, err)
	}
	content, err := file.Contents()
	if err != nil {
		return "", fmt.Errorf("reposnap: read %s: %w", path, err)
	}
	return content, nil
}

// GetLog implements Snapshot, optionally filtered by opts.FilePath and
// bounded by opts.Limit (0 = unbounded).
func (g *GitSnapshot) GetLog(ctx context.Context, repoID string, opts LogOptions) ([]LogEntry, error) {
	logOpts := &git.LogOptions{}
	if opts.FilePath != "" {
		logOpts.PathFilter = func(p string) bool { return p == opts.FilePath }
	}

	iter, err := g.repo.Log(logOpts)
	if err != nil {
		return nil, fmt.Errorf("reposnap: log: %w", err)
	}
	defer iter.Close()

	var entries []LogEntry
	err = iter.ForEach(func(c *object.Commit) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if opts.Limit > 0 && len(entries) >= opts.Limit {
			return storerStop
		}
		entries = append(entries, LogEntry{
			SHA:       c.Hash.String(),
			Author:    c.Author.Name,
			Message:   c.Message,
			Timestamp: c.Author.When.Unix(),
		})
		return nil
	})
	if err != nil && err != storerStop {
		return nil, err
	}
	return entries, nil
}

// storerStop is a sentinel to break out of object.Commit.ForEach early
// once the requested limit is reached.
var storerStop = fmt.Errorf("reposnap: log limit reached")

// GetBlame implements Snapshot over [startLine, endLine] (1-indexed,
// inclusive).
func (g *GitSnapshot) GetBlame(ctx context.Context, repoID, path string, startLine, endLine int) ([]BlameLine, error) {
	commit, err := g.headCommit()
	if err != nil {
		return nil, err
	}
	result, err := git.Blame(commit, path)
	if err != nil {
		return nil, fmt.Errorf("reposnap: blame %s: %w", path, err)
	}

	var lines []BlameLine
	for i, line := range result.Lines {
		lineNo := i + 1
		if lineNo < startLine || lineNo > endLine {
			continue
		}
		lines = append(lines, BlameLine{
			Line:    lineNo,
			SHA:     line.Hash.String(),
			Author:  line.Author,
			Content: line.Text,
		})
	}
	return lines, nil
}

// GetDiff implements Snapshot as a unified diff between sha and its
// first parent.
func (g *GitSnapshot) GetDiff(ctx context.Context, repoID, sha string) (string, error) {
	commit, err := g.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return "", fmt.Errorf("reposnap: resolve %s: %w", sha, err)
	}

	var parentTree *object.Tree
	if parent, err := commit.Parent(0); err == nil {
		parentTree, err = parent.Tree()
		if err != nil {
			return "", fmt.Errorf("reposnap: read parent tree of %s: %w", sha, err)
		}
	}
	commitTree, err := commit.Tree()
	if err != nil {
		return "", fmt.Errorf("reposnap: read tree of %s: %w", sha, err)
	}

	changes, err := object.DiffTree(parentTree, commitTree)
	if err != nil {
		return "", fmt.Errorf("reposnap: diff %s: %w", sha, err)
	}
	patch, err := changes.Patch()
	if err != nil {
		return "", fmt.Errorf("reposnap: build patch for %s: %w", sha, err)
	}
	return patch.String(), nil
}

// GetDefaultBranch implements Snapshot via the HEAD reference's target
// branch name.
func (g *GitSnapshot) GetDefaultBranch(ctx context.Context, repoID string) (string, error) {
	head, err := g.repo.Head()
	if err != nil {
		return "", fmt.Errorf("reposnap: resolve HEAD: %w", err)
	}
	return head.Name().Short(), nil
}
