package reposnap

import (
	"context"
	"fmt"

	"github.com/debtflow/engine/pkg/runner"
)

// LoadSourceFiles turns a Snapshot into the []runner.SourceFile the
// Phase Controller's discovery phase consumes. A single file's read
// failure aborts the load: unlike a discovery agent's per-file
// tolerance, a missing file at this boundary means the snapshot is
// inconsistent and the scan should not proceed on partial input.
func LoadSourceFiles(ctx context.Context, snap Snapshot, repoID string) ([]runner.SourceFile, error) {
	paths, err := snap.ListFiles(ctx, repoID)
	if err != nil {
		return nil, fmt.Errorf("reposnap: list files for %s: %w", repoID, err)
	}

	files := make([]runner.SourceFile, 0, len(paths))
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		content, err := snap.GetFileContent(ctx, repoID, path)
		if err != nil {
			return nil, fmt.Errorf("reposnap: read %s from %s: %w", path, repoID, err)
		}
		files = append(files, runner.SourceFile{Path: path, Content: content})
	}
	return files, nil
}
