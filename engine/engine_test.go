package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mementohq/memento-go-sdk/assembler"
	"github.com/mementohq/memento-go-sdk/cache"
	"github.com/mementohq/memento-go-sdk/core"
	"github.com/mementohq/memento-go-sdk/extract"
	"github.com/mementohq/memento-go-sdk/memory"
	memstore "github.com/mementohq/memento-go-sdk/memory/store/inmem"
	"github.com/mementohq/memento-go-sdk/store/inmem"
)

type scriptedGenerator struct {
	reply string
	err   error
	reqs  []core.GenerateRequest
}

func (g *scriptedGenerator) Generate(ctx context.Context, req core.GenerateRequest) (string, error) {
	g.reqs = append(g.reqs, req)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (stubEmbedder) Dimensions() int { return 2 }

// recordingIndex returns every stored record at distance zero, which makes
// any second lookup of a stored prompt an exact-match hit.
type recordingIndex struct {
	records []core.Record
}

func (f *recordingIndex) Upsert(ctx context.Context, index string, rec core.Record) error {
	for i, existing := range f.records {
		if existing.ID == rec.ID {
			f.records[i] = rec
			return nil
		}
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *recordingIndex) Search(ctx context.Context, index string, vec []float32, k int) ([]core.Row, error) {
	rows := make([]core.Row, 0, k)
	for _, rec := range f.records {
		rows = append(rows, core.Row{ID: rec.ID, Distance: 0, Fields: rec.Fields})
		if len(rows) == k {
			break
		}
	}
	return rows, nil
}

type fixture struct {
	engine    *Engine
	memory    *memory.Store
	profiles  *inmem.ProfileStore
	shortTerm *inmem.ShortTermStore
	generator *scriptedGenerator
	index     *recordingIndex
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	mem := memory.NewStore(memstore.New())
	profiles := inmem.NewProfileStore()
	shortTerm := inmem.NewShortTermStore()
	asm := assembler.New(mem, profiles, shortTerm)
	gen := &scriptedGenerator{reply: "a generic answer"}
	idx := &recordingIndex{}

	base := []Option{
		WithExtractor(extract.NewRegexExtractor()),
		WithCache(cache.New(idx, stubEmbedder{})),
		WithShortTerm(shortTerm),
		WithModel("test-model"),
	}
	eng := New(mem, asm, gen, append(base, opts...)...)

	return &fixture{
		engine:    eng,
		memory:    mem,
		profiles:  profiles,
		shortTerm: shortTerm,
		generator: gen,
		index:     idx,
	}
}

func TestRunRejectsEmptyQuery(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Run(context.Background(), Input{UserID: "u1", Query: "   "})
	assert.Error(t, err)
}

func TestRunMissGeneratesAndCaches(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	out, err := f.engine.Run(ctx, Input{UserID: "u1", SessionID: "s1", Query: "o que é pix?"})
	require.NoError(t, err)

	assert.Equal(t, "a generic answer", out.Text)
	assert.False(t, out.CacheHit)
	assert.Equal(t, DefaultPersona, out.Persona)
	assert.Len(t, out.Signature, 12)

	require.Len(t, f.generator.reqs, 1)
	req := f.generator.reqs[0]
	assert.Equal(t, int64(premiumMaxTokens), req.MaxTokens)
	assert.Equal(t, "test-model", req.Model)
	require.Len(t, req.Messages, 1)
	assert.Contains(t, req.Messages[0].Content, "QUESTION:\no que é pix?")
	assert.NotContains(t, req.Messages[0].Content, "GENERIC ANSWER")

	require.Len(t, f.index.records, 1, "fresh answer stored in the cache")
	fields := f.index.records[0].Fields
	assert.Equal(t, "a generic answer", fields["generic_answer"])
	assert.Equal(t, out.Signature, fields["context_signature"])
	assert.Equal(t, out.Persona, fields["persona"])
}

func TestRunHitPersonalizes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.engine.Run(ctx, Input{UserID: "u1", SessionID: "s1", Query: "o que é pix?"})
	require.NoError(t, err)

	out, err := f.engine.Run(ctx, Input{UserID: "u1", SessionID: "s1", Query: "O QUE É PIX?"})
	require.NoError(t, err)

	assert.True(t, out.CacheHit)
	require.Len(t, f.generator.reqs, 2)
	req := f.generator.reqs[1]
	assert.Equal(t, int64(personalizerMaxTokens), req.MaxTokens)
	assert.Contains(t, req.Messages[0].Content, "GENERIC ANSWER:\na generic answer")

	assert.Len(t, f.index.records, 1, "hits never write new entries")
}

func TestRunSensitiveBypassesLookupButStores(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i := 0; i < 2; i++ {
		out, err := f.engine.Run(ctx, Input{UserID: "u1", SessionID: "s1", Query: "onde eu moro?"})
		require.NoError(t, err)
		assert.False(t, out.CacheHit, "identity question answered fresh every time")
	}

	assert.Len(t, f.generator.reqs, 2, "lookup skipped, both turns generate")
	require.Len(t, f.index.records, 1, "the generic answer is still stored")
	assert.Equal(t, "a generic answer", f.index.records[0].Fields["generic_answer"])
}

func TestRunSignatureGatesCrossIdentityReuse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.engine.Run(ctx, Input{UserID: "u1", SessionID: "s1", Query: "o que é pix?"})
	require.NoError(t, err)

	// Promoting a name changes u1's resolved identity, so the cached entry
	// written under the old signature no longer matches.
	f.memory.UpsertUnique(ctx, "u1", "name", "Ana", "conversation", 0.75)

	out, err := f.engine.Run(ctx, Input{UserID: "u1", SessionID: "s1", Query: "o que é pix?"})
	require.NoError(t, err)
	assert.False(t, out.CacheHit)
}

func TestRunPromotesExtractedFacts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.engine.Run(ctx, Input{UserID: "u1", SessionID: "s1", Query: "meu nome é Ana, moro em Lisboa"})
	require.NoError(t, err)

	facts, err := f.memory.GetAll(ctx, "u1")
	require.NoError(t, err)

	byType := make(map[string]memory.Fact)
	for _, fact := range facts {
		byType[fact.Type] = fact
	}

	require.Contains(t, byType, "name")
	assert.Equal(t, "Ana", byType["name"].Value)
	assert.Equal(t, confidenceSingleton, byType["name"].Confidence)
	assert.Equal(t, promoteSource, byType["name"].Source)

	require.Contains(t, byType, "location")
	assert.Equal(t, "Lisboa", byType["location"].Value)
}

func TestRunCorrectionReplacesSingleton(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.engine.Run(ctx, Input{UserID: "u1", SessionID: "s1", Query: "moro em Lisboa"})
	require.NoError(t, err)
	_, err = f.engine.Run(ctx, Input{UserID: "u1", SessionID: "s1", Query: "na verdade me mudei, moro em Curitiba"})
	require.NoError(t, err)

	facts, err := f.memory.GetAll(ctx, "u1")
	require.NoError(t, err)

	var locations []memory.Fact
	for _, fact := range facts {
		if fact.Type == "location" {
			locations = append(locations, fact)
		}
	}
	require.Len(t, locations, 1, "singleton exclusivity")
	assert.Equal(t, "Curitiba", locations[0].Value)
	assert.Equal(t, confidenceCorrection, locations[0].Confidence)
}

func TestRunRecordsConversation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.engine.Run(ctx, Input{UserID: "u1", SessionID: "s1", Query: "oi, tudo bem?"})
	require.NoError(t, err)

	turns, err := f.shortTerm.Recent(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "user", turns[0].Role)
	assert.Equal(t, "oi, tudo bem?", turns[0].Content)
	assert.Equal(t, "assistant", turns[1].Role)
}

func TestRunGenerationFailureAbortsTurn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.generator.err = errors.New("api down")

	_, err := f.engine.Run(ctx, Input{UserID: "u1", SessionID: "s1", Query: "o que é pix?"})
	assert.Error(t, err)
	assert.Empty(t, f.index.records)
}

func TestResolvePersona(t *testing.T) {
	t.Run("known personas", func(t *testing.T) {
		p := ResolvePersona("Analyst")
		assert.Equal(t, "analyst", p.Name)
		assert.Equal(t, 0.25, p.PersonalizerTemp)
		assert.Equal(t, 0.2, p.PremiumTemp)
	})

	t.Run("empty falls back to default name with baseline prompts", func(t *testing.T) {
		p := ResolvePersona("")
		assert.Equal(t, DefaultPersona, p.Name)
		assert.Equal(t, basePremiumSys, p.PremiumSys)
		assert.Equal(t, 0.2, p.PremiumTemp)
	})

	t.Run("unknown keeps its name but gets baseline prompts", func(t *testing.T) {
		p := ResolvePersona("pirate")
		assert.Equal(t, "pirate", p.Name)
		assert.Equal(t, basePersonalizerSys, p.PersonalizerSys)
	})
}

func TestIsSensitive(t *testing.T) {
	sensitive := []string{
		"what is my name?",
		"qual é o meu nome?",
		"qual o meu nome?",
		"onde eu moro?",
		"Where do I live now?",
		"na verdade mudei de cidade",
		"qual o meu timezone?",
	}
	for _, q := range sensitive {
		assert.True(t, isSensitive(q), "expected sensitive: %q", q)
	}

	insensitive := []string{
		"o que é pix?",
		"how do invoices work?",
		"explain kubernetes",
	}
	for _, q := range insensitive {
		assert.False(t, isSensitive(q), "expected not sensitive: %q", q)
	}
}
