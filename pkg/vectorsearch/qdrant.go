package vectorsearch

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantSearch backs Search with a Qdrant collection, one point per
// indexed code chunk, payload carrying filePath/startLine/endLine.
type QdrantSearch struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantSearch wraps an existing client, scoped to one collection.
func NewQdrantSearch(client *qdrant.Client, collection string) *QdrantSearch {
	return &QdrantSearch{client: client, collection: collection}
}

// SearchSimilar implements Search by querying the nearest points to
// q.Embedding, filtered to q.RepositoryID and q.Filters, and dropping
// anything below q.Threshold.
func (s *QdrantSearch) SearchSimilar(ctx context.Context, q Query) ([]Match, error) {
	if len(q.Embedding) == 0 {
		return nil, fmt.Errorf("vectorsearch: query embedding is empty")
	}

	conditions := []*qdrant.Condition{
		qdrant.NewMatch("repository_id", q.RepositoryID),
	}
	for k, v := range q.Filters {
		conditions = append(conditions, qdrant.NewMatch(k, v))
	}

	limit := uint64(q.Limit)
	if limit == 0 {
		limit = 10
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(q.Embedding...),
		Filter:         &qdrant.Filter{Must: conditions},
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("vectorsearch: qdrant query: %w", err)
	}

	matches := make([]Match, 0, len(points))
	for _, p := range points {
		similarity := float64(p.GetScore())
		if similarity < q.Threshold {
			continue
		}
		payload := p.GetPayload()
		matches = append(matches, Match{
			FilePath:   payload["file_path"].GetStringValue(),
			Content:    payload["content"].GetStringValue(),
			StartLine:  int(payload["start_line"].GetIntegerValue()),
			EndLine:    int(payload["end_line"].GetIntegerValue()),
			Similarity: similarity,
		})
	}
	return matches, nil
}
