package assembler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mementohq/memento-go-sdk/core"
	"github.com/mementohq/memento-go-sdk/memory"
	memstore "github.com/mementohq/memento-go-sdk/memory/store/inmem"
	"github.com/mementohq/memento-go-sdk/store/inmem"
)

type staticRouter struct {
	match *core.RouteMatch
	err   error
}

func (r staticRouter) Classify(ctx context.Context, text string) (*core.RouteMatch, error) {
	return r.match, r.err
}

type staticRetriever struct {
	snippets []core.Snippet
	err      error
}

func (r staticRetriever) Search(ctx context.Context, query string, topK int) ([]core.Snippet, error) {
	return r.snippets, r.err
}

func newTestAssembler(t *testing.T, opts ...Option) (*Assembler, *memory.Store, *inmem.ProfileStore, *inmem.ShortTermStore) {
	t.Helper()
	mem := memory.NewStore(memstore.New())
	profiles := inmem.NewProfileStore()
	shortTerm := inmem.NewShortTermStore()
	return New(mem, profiles, shortTerm, opts...), mem, profiles, shortTerm
}

func TestSignature(t *testing.T) {
	t.Run("deterministic and twelve chars", func(t *testing.T) {
		profile := map[string]string{"persona": "rag_strict", "locale": "pt-BR", "name": "Ana"}
		sig := Signature(profile)
		assert.Len(t, sig, 12)
		assert.Equal(t, sig, Signature(profile))
	})

	t.Run("persona case and padding do not matter", func(t *testing.T) {
		a := Signature(map[string]string{"persona": "rag_strict", "locale": "pt-BR", "name": "Ana"})
		b := Signature(map[string]string{"persona": "  RAG_Strict ", "locale": "pt-BR", "name": "Ana"})
		assert.Equal(t, a, b)
	})

	t.Run("identity fields change the signature", func(t *testing.T) {
		base := Signature(map[string]string{"persona": "rag_strict", "locale": "pt-BR", "name": "Ana"})
		assert.NotEqual(t, base, Signature(map[string]string{"persona": "rag_strict", "locale": "en-US", "name": "Ana"}))
		assert.NotEqual(t, base, Signature(map[string]string{"persona": "rag_strict", "locale": "pt-BR", "name": "Bia"}))
		assert.NotEqual(t, base, Signature(map[string]string{"persona": "analyst", "locale": "pt-BR", "name": "Ana"}))
	})

	t.Run("unrelated profile fields are ignored", func(t *testing.T) {
		a := Signature(map[string]string{"persona": "rag_strict", "locale": "pt-BR", "name": "Ana"})
		b := Signature(map[string]string{"persona": "rag_strict", "locale": "pt-BR", "name": "Ana", "theme": "dark"})
		assert.Equal(t, a, b)
	})
}

func TestResolveIdentity(t *testing.T) {
	raw := map[string]string{"name": "Old Name", "theme": "dark"}
	ranked := []memory.Fact{
		{ID: "1", Type: "name", Value: "Ana"},
		{ID: "2", Type: "preference", Value: "short answers"},
	}

	resolved := ResolveIdentity(raw, ranked)

	assert.Equal(t, "Ana", resolved["name"], "singleton fact overrides profile")
	assert.Equal(t, "dark", resolved["theme"], "non-identity fields survive")
	assert.NotContains(t, resolved, "preference", "non-singleton facts never overlay")
	assert.Equal(t, "Old Name", raw["name"], "input profile not mutated")
}

func TestDisplayFacts(t *testing.T) {
	facts := []memory.Fact{
		{ID: "1", Type: "preference", Value: "short answers"},
		{ID: "2", Type: "name", Value: "Ana"},
		{ID: "3", Type: "goal", Value: "learn Go"},
		{ID: "4", Type: "location", Value: "Lisboa"},
	}

	out := displayFacts(facts, 3)

	require.Len(t, out, 3)
	assert.Equal(t, "name", out[0].Type, "singletons come first")
	assert.Equal(t, "location", out[1].Type)
	assert.Equal(t, "preference", out[2].Type)
}

func TestContextPersona(t *testing.T) {
	cases := []struct {
		name    string
		profile map[string]string
		want    string
	}{
		{"persona key", map[string]string{"persona": "Analyst"}, "analyst"},
		{"legacy mode key", map[string]string{"mode": "creative_helper"}, "creative_helper"},
		{"persona wins over mode", map[string]string{"persona": "analyst", "mode": "support_agent"}, "analyst"},
		{"blank persona falls through to mode", map[string]string{"persona": "  ", "mode": "analyst"}, "analyst"},
		{"neither set", map[string]string{"locale": "pt-BR"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Context{Profile: tc.profile}
			assert.Equal(t, tc.want, c.Persona())
		})
	}
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("full context with every section", func(t *testing.T) {
		asm, mem, profiles, shortTerm := newTestAssembler(t,
			WithRouter(staticRouter{match: &core.RouteMatch{Name: "billing", Distance: 0.12}}),
			WithRetriever(staticRetriever{snippets: []core.Snippet{
				{Text: "Invoices are monthly.", FileName: "billing.md", Distance: 0.2},
			}}),
		)

		require.NoError(t, profiles.Upsert(ctx, "u1", map[string]string{"persona": "rag_strict", "locale": "pt-BR"}))
		mem.Upsert(ctx, "u1", "name", "Ana", "conversation", 0.75, 0)
		mem.Upsert(ctx, "u1", "preference", "short answers", "conversation", 0.7, 0)
		require.NoError(t, shortTerm.Append(ctx, "s1", core.Turn{Role: "user", Content: "oi", Timestamp: time.Now()}))

		out := asm.Build(ctx, "u1", "s1", "quanto custa?")

		assert.Equal(t, "Ana", out.Profile["name"], "identity resolved from memory")
		assert.Equal(t, "rag_strict", out.Persona())
		assert.Len(t, out.Signature, 12)
		require.NotNil(t, out.Route)
		assert.Equal(t, "billing", out.Route.Name)

		// Section order is fixed.
		text := out.Text
		idx := func(section string) int { return strings.Index(text, section) }
		require.NotEqual(t, -1, idx("[USER PROFILE]"))
		assert.Less(t, idx("[USER PROFILE]"), idx("[LONG-TERM FACTS]"))
		assert.Less(t, idx("[LONG-TERM FACTS]"), idx("[RECENT MESSAGES]"))
		assert.Less(t, idx("[RECENT MESSAGES]"), idx("[SEMANTIC ROUTE]"))
		assert.Less(t, idx("[SEMANTIC ROUTE]"), idx("[RAG]"))

		assert.Contains(t, text, "- [name] Ana (seen 1×)")
		assert.Contains(t, text, "user: oi")
		assert.Contains(t, text, "name: billing  distance: 0.1200")
		assert.Contains(t, text, "• Invoices are monthly. (src: billing.md, score: 0.2000)")
	})

	t.Run("empty sections are omitted", func(t *testing.T) {
		asm, _, _, _ := newTestAssembler(t)

		out := asm.Build(ctx, "nobody", "nosession", "hello")

		assert.Empty(t, out.Text)
		assert.NotContains(t, out.Text, "[LONG-TERM FACTS]")
		assert.NotContains(t, out.Text, "[SEMANTIC ROUTE]")
		assert.NotContains(t, out.Text, "[RAG]")
	})

	t.Run("collaborator failures degrade their own section", func(t *testing.T) {
		asm, mem, profiles, _ := newTestAssembler(t,
			WithRouter(staticRouter{err: errors.New("router down")}),
			WithRetriever(staticRetriever{err: errors.New("kb down")}),
		)

		require.NoError(t, profiles.Upsert(ctx, "u1", map[string]string{"locale": "pt-BR"}))
		mem.Upsert(ctx, "u1", "name", "Ana", "conversation", 0.75, 0)

		out := asm.Build(ctx, "u1", "s1", "hello")

		assert.Nil(t, out.Route)
		assert.Empty(t, out.Snippets)
		assert.Contains(t, out.Text, "[USER PROFILE]")
		assert.Contains(t, out.Text, "[LONG-TERM FACTS]")
	})

	t.Run("signature tracks resolved identity not raw profile", func(t *testing.T) {
		asm, mem, profiles, _ := newTestAssembler(t)
		require.NoError(t, profiles.Upsert(ctx, "u1", map[string]string{"persona": "rag_strict", "locale": "pt-BR"}))

		before := asm.Build(ctx, "u1", "s1", "hello").Signature

		mem.UpsertUnique(ctx, "u1", "name", "Ana", "conversation", 0.75)
		after := asm.Build(ctx, "u1", "s1", "hello").Signature

		assert.NotEqual(t, before, after, "promoting a name fact must invalidate cached answers")
	})
}
