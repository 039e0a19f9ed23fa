package mock

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedDeterministic(t *testing.T) {
	ctx := context.Background()
	e := New(0)

	first, err := e.Embed(ctx, []string{"o que é pix"})
	require.NoError(t, err)
	second, err := e.Embed(ctx, []string{"o que é pix"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEmbedBatch(t *testing.T) {
	e := New(0)

	vecs, err := e.Embed(context.Background(), []string{"a", "b", "a"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	assert.Equal(t, vecs[0], vecs[2], "same text embeds identically within a batch")
	assert.NotEqual(t, vecs[0], vecs[1], "different texts diverge")
}

func TestEmbedUnitNorm(t *testing.T) {
	e := New(64)
	assert.Equal(t, 64, e.Dimensions())

	vecs, err := e.Embed(context.Background(), []string{"anything"})
	require.NoError(t, err)
	require.Len(t, vecs[0], 64)

	var norm float64
	for _, v := range vecs[0] {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-4)
}
