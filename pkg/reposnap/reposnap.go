// Package reposnap implements the Repo Snapshot interface (spec.md
// §6): the controller's read-only view of a repository at a point in
// time. All discovery input is a []runner.SourceFile built from
// ListFiles/GetFileContent. GetLog/GetBlame/GetDiff are implemented by
// both adapters but not called by the pipeline; no agent prompt,
// including the Historian's, carries commit history.
package reposnap

import "context"

// LogEntry is one commit touching a file (or the repository, when no
// file is given).
type LogEntry struct {
	SHA       string
	Author    string
	Message   string
	Timestamp int64
}

// BlameLine attributes one line of a file to the commit that last
// changed it.
type BlameLine struct {
	Line    int
	SHA     string
	Author  string
	Content string
}

// LogOptions bounds a GetLog query.
type LogOptions struct {
	FilePath string
	Limit    int
}

// Snapshot is the injected interface a Controller's discovery input
// and the Historian's prompts are built from.
type Snapshot interface {
	ListFiles(ctx context.Context, repoID string) ([]string, error)
	GetFileContent(ctx context.Context, repoID, path string) (string, error)
	GetLog(ctx context.Context, repoID string, opts LogOptions) ([]LogEntry, error)
	GetBlame(ctx context.Context, repoID, path string, startLine, endLine int) ([]BlameLine, error)
	GetDiff(ctx context.Context, repoID, sha string) (string, error)
	GetDefaultBranch(ctx context.Context, repoID string) (string, error)
}
