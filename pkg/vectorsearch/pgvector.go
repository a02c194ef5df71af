package vectorsearch

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgVectorSearch backs Search with a pgvector-extended Postgres table
// (code_embeddings: repository_id, file_path, content, start_line,
// end_line, embedding vector). Distance is cosine (<=>); similarity is
// reported as 1 - distance.
type PgVectorSearch struct {
	pool *pgxpool.Pool
}

// NewPgVectorSearch wraps an existing pool.
func NewPgVectorSearch(pool *pgxpool.Pool) *PgVectorSearch {
	return &PgVectorSearch{pool: pool}
}

const searchSimilarSQL = `
SELECT file_path, content, start_line, end_line, 1 - (embedding <=> $1) AS similarity
FROM code_embeddings
WHERE repository_id = $2 AND 1 - (embedding <=> $1) >= $3
ORDER BY embedding <=> $1
LIMIT $4`

// SearchSimilar implements Search.
func (s *PgVectorSearch) SearchSimilar(ctx context.Context, q Query) ([]Match, error) {
	if len(q.Embedding) == 0 {
		return nil, fmt.Errorf("vectorsearch: query embedding is empty")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.pool.Query(ctx, searchSimilarSQL, pgvector.NewVector(q.Embedding), q.RepositoryID, q.Threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("vectorsearch: pgvector query: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.FilePath, &m.Content, &m.StartLine, &m.EndLine, &m.Similarity); err != nil {
			return nil, fmt.Errorf("vectorsearch: scan row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vectorsearch: iterate rows: %w", err)
	}
	return matches, nil
}
