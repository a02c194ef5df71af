package vectorsearch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemorySearchFiltersByThreshold(t *testing.T) {
	search := &MemorySearch{Matches: []Match{
		{FilePath: "a.go", Similarity: 0.9},
		{FilePath: "b.go", Similarity: 0.3},
	}}

	matches, err := search.SearchSimilar(context.Background(), Query{Threshold: 0.5})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "a.go", matches[0].FilePath)
}

func TestMemorySearchRespectsLimit(t *testing.T) {
	search := &MemorySearch{Matches: []Match{
		{FilePath: "a.go", Similarity: 0.9},
		{FilePath: "b.go", Similarity: 0.8},
		{FilePath: "c.go", Similarity: 0.7},
	}}

	matches, err := search.SearchSimilar(context.Background(), Query{Limit: 2})
	require.NoError(t, err)
	require.Len(t, matches, 2)
}
