package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mementohq/memento-go-sdk/core"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (stubEmbedder) Dimensions() int { return 2 }

type fakeIndex struct {
	records map[string]core.Record
	rows    []core.Row
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{records: make(map[string]core.Record)}
}

func (f *fakeIndex) Upsert(ctx context.Context, index string, rec core.Record) error {
	f.records[rec.ID] = rec
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, index string, vec []float32, k int) ([]core.Row, error) {
	if k > len(f.rows) {
		k = len(f.rows)
	}
	return f.rows[:k], nil
}

func testRoutes() []Route {
	return []Route{
		{
			Name:       "billing",
			References: []string{"how do I pay my invoice", "segunda via do boleto"},
			Metadata:   map[string]string{"team": "finance"},
			Threshold:  0.30,
		},
		{
			Name:       "support",
			References: []string{"my app is broken"},
			Threshold:  0.20,
		},
	}
}

func TestSyncSeedsEveryReference(t *testing.T) {
	idx := newFakeIndex()
	r := New(idx, stubEmbedder{}, WithRoutes(testRoutes()))

	require.NoError(t, r.Sync(context.Background()))
	assert.Len(t, idx.records, 3)

	rec, ok := idx.records["billing#1"]
	require.True(t, ok)
	assert.Equal(t, "segunda via do boleto", rec.Fields["text"])
	assert.Equal(t, "billing", rec.Fields["route"])

	// Second Sync is a no-op.
	require.NoError(t, r.Sync(context.Background()))
	assert.Len(t, idx.records, 3)
}

func TestClassify(t *testing.T) {
	ctx := context.Background()

	t.Run("nearest reference under its threshold matches", func(t *testing.T) {
		idx := newFakeIndex()
		idx.rows = []core.Row{{
			ID:       "billing#0",
			Distance: 0.25,
			Fields:   map[string]string{"route": "billing", "text": "how do I pay my invoice"},
		}}
		r := New(idx, stubEmbedder{}, WithRoutes(testRoutes()))

		match, err := r.Classify(ctx, "como pago minha fatura?")
		require.NoError(t, err)
		require.NotNil(t, match)
		assert.Equal(t, "billing", match.Name)
		assert.Equal(t, 0.25, match.Distance)
		assert.Equal(t, "finance", match.Metadata["team"])
		assert.Equal(t, "0.2500", match.Metadata["reference_distance"])
	})

	t.Run("per-route threshold applies", func(t *testing.T) {
		// 0.25 clears billing's 0.30 but not support's 0.20.
		idx := newFakeIndex()
		idx.rows = []core.Row{{
			ID:       "support#0",
			Distance: 0.25,
			Fields:   map[string]string{"route": "support"},
		}}
		r := New(idx, stubEmbedder{}, WithRoutes(testRoutes()))

		match, err := r.Classify(ctx, "help me")
		require.NoError(t, err)
		assert.Nil(t, match)
	})

	t.Run("no rows means no route", func(t *testing.T) {
		r := New(newFakeIndex(), stubEmbedder{}, WithRoutes(testRoutes()))

		match, err := r.Classify(ctx, "anything")
		require.NoError(t, err)
		assert.Nil(t, match)
	})

	t.Run("unknown route label is a miss", func(t *testing.T) {
		idx := newFakeIndex()
		idx.rows = []core.Row{{
			ID:       "ghost#0",
			Distance: 0.01,
			Fields:   map[string]string{"route": "ghost"},
		}}
		r := New(idx, stubEmbedder{}, WithRoutes(testRoutes()))

		match, err := r.Classify(ctx, "anything")
		require.NoError(t, err)
		assert.Nil(t, match)
	})
}

func TestDefaultRoutes(t *testing.T) {
	routes := DefaultRoutes()
	require.NotEmpty(t, routes)

	names := make(map[string]bool, len(routes))
	for _, route := range routes {
		assert.NotEmpty(t, route.References, "route %s has no references", route.Name)
		assert.Greater(t, route.Threshold, 0.0, "route %s has no threshold", route.Name)
		assert.False(t, names[route.Name], "duplicate route %s", route.Name)
		names[route.Name] = true
	}
}
