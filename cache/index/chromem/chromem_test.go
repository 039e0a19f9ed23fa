package chromem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mementohq/memento-go-sdk/core"
)

func record(id string, embedding []float32, text string) core.Record {
	return core.Record{
		ID:        id,
		Embedding: embedding,
		Fields:    map[string]string{"text": text, "doc_id": id},
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	x := New()

	rows, err := x.Search(context.Background(), "idx", []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUpsertAndSearch(t *testing.T) {
	ctx := context.Background()
	x := New()

	require.NoError(t, x.Upsert(ctx, "idx", record("a", []float32{1, 0}, "alpha")))
	require.NoError(t, x.Upsert(ctx, "idx", record("b", []float32{0, 1}, "beta")))

	rows, err := x.Search(ctx, "idx", []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "a", rows[0].ID)
	assert.InDelta(t, 0.0, rows[0].Distance, 1e-6, "identical vector has distance zero")
	assert.Equal(t, "alpha", rows[0].Fields["text"])
	assert.Greater(t, rows[1].Distance, rows[0].Distance)
}

func TestSearchClampsKToCollectionSize(t *testing.T) {
	ctx := context.Background()
	x := New()

	require.NoError(t, x.Upsert(ctx, "idx", record("only", []float32{1, 0}, "single")))

	rows, err := x.Search(ctx, "idx", []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestIndexesAreIsolated(t *testing.T) {
	ctx := context.Background()
	x := New()

	require.NoError(t, x.Upsert(ctx, "cache_qa", record("a", []float32{1, 0}, "cached")))

	rows, err := x.Search(ctx, "kb_chunks", []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, rows, "other index names see nothing")
}
