// Package assembler joins profile, long-term facts, recent turns, the
// semantic route and retrieval snippets into one ordered context block,
// and derives the context signature that gates semantic-cache reuse.
//
// The four external reads (profile, short-term window, route, retrieval)
// touch disjoint stores and run concurrently; they are joined before the
// signature is computed. Any read that fails degrades to an empty section
// rather than failing assembly.
package assembler

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/mementohq/memento-go-sdk/core"
	"github.com/mementohq/memento-go-sdk/memory"
)

const (
	// rankLimit is how many facts are ranked before display truncation.
	rankLimit = 16
	// overlayLimit is how many ranked facts are scanned for singleton
	// overlay onto the raw profile.
	overlayLimit = 64
	// DefaultDisplayCount caps the facts rendered into the text block.
	DefaultDisplayCount = 8
	// DefaultRecentWindow is the recent-turn window size.
	DefaultRecentWindow = 6
	// DefaultSnippetCount is the retrieval snippet cap.
	DefaultSnippetCount = 3
)

// Context is the structured bag behind the assembled text. Profile is the
// resolved view: long-term singleton facts overlaid on the raw record.
type Context struct {
	Profile   map[string]string
	Facts     []memory.Fact
	Recent    []core.Turn
	Route     *core.RouteMatch
	Snippets  []core.Snippet
	Signature string
	Text      string
}

// Persona returns the resolved persona, or "" when unset. Older profiles
// stored it under "mode"; that key still counts when "persona" is absent.
func (c *Context) Persona() string {
	p := c.Profile["persona"]
	if strings.TrimSpace(p) == "" {
		p = c.Profile["mode"]
	}
	return strings.ToLower(strings.TrimSpace(p))
}

// Assembler builds per-turn context.
type Assembler struct {
	memory       *memory.Store
	profiles     core.ProfileStore
	shortTerm    core.ShortTermStore
	router       core.Router
	retriever    core.Retriever
	logger       *log.Logger
	displayCount int
	recentWindow int
	snippetCount int
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithRouter attaches a topic router. Optional; without one the route
// section is always empty.
func WithRouter(r core.Router) Option {
	return func(a *Assembler) { a.router = r }
}

// WithRetriever attaches a KB retriever. Optional.
func WithRetriever(r core.Retriever) Option {
	return func(a *Assembler) { a.retriever = r }
}

// WithLogger sets the assembler's logger.
func WithLogger(logger *log.Logger) Option {
	return func(a *Assembler) { a.logger = logger }
}

// WithDisplayCount overrides the fact display cap.
func WithDisplayCount(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.displayCount = n
		}
	}
}

// WithRecentWindow overrides the recent-turn window size.
func WithRecentWindow(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.recentWindow = n
		}
	}
}

// WithSnippetCount overrides the retrieval snippet cap.
func WithSnippetCount(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.snippetCount = n
		}
	}
}

// New creates an assembler. Memory, profile and short-term stores are
// required; router and retriever are optional collaborators.
func New(mem *memory.Store, profiles core.ProfileStore, shortTerm core.ShortTermStore, opts ...Option) *Assembler {
	a := &Assembler{
		memory:       mem,
		profiles:     profiles,
		shortTerm:    shortTerm,
		logger:       log.Default().With("component", "assembler"),
		displayCount: DefaultDisplayCount,
		recentWindow: DefaultRecentWindow,
		snippetCount: DefaultSnippetCount,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build assembles the full turn context for (user, session, query).
func (a *Assembler) Build(ctx context.Context, userID, sessionID, query string) *Context {
	ranked := a.memory.Rank(ctx, userID, overlayLimit, time.Time{})

	var (
		rawProfile map[string]string
		recent     []core.Turn
		route      *core.RouteMatch
		snippets   []core.Snippet
	)

	// The four reads hit disjoint stores; fan out and join. Each failure
	// degrades its own section to empty.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := a.profiles.Get(gctx, userID)
		if err != nil {
			a.logger.Warn("profile read degraded to empty", "user", userID, "err", err)
			return nil
		}
		rawProfile = p
		return nil
	})
	g.Go(func() error {
		turns, err := a.shortTerm.Recent(gctx, sessionID, a.recentWindow)
		if err != nil {
			a.logger.Warn("short-term read degraded to empty", "session", sessionID, "err", err)
			return nil
		}
		recent = turns
		return nil
	})
	g.Go(func() error {
		if a.router == nil {
			return nil
		}
		m, err := a.router.Classify(gctx, query)
		if err != nil {
			a.logger.Warn("route classification degraded to none", "err", err)
			return nil
		}
		route = m
		return nil
	})
	g.Go(func() error {
		if a.retriever == nil {
			return nil
		}
		sn, err := a.retriever.Search(gctx, query, a.snippetCount)
		if err != nil {
			a.logger.Warn("retrieval degraded to empty", "err", err)
			return nil
		}
		snippets = sn
		return nil
	})
	_ = g.Wait() // goroutines swallow their own errors

	resolved := ResolveIdentity(rawProfile, ranked)
	display := displayFacts(ranked, a.displayCount)

	out := &Context{
		Profile:   resolved,
		Facts:     display,
		Recent:    recent,
		Route:     route,
		Snippets:  snippets,
		Signature: Signature(resolved),
	}
	out.Text = renderText(out)
	return out
}

// ResolveIdentity overlays singleton fact values onto the raw profile.
// Long-term memory is authoritative for identity fields: a promoted
// "location" fact beats a stale profile column. The input map is not
// mutated.
func ResolveIdentity(rawProfile map[string]string, ranked []memory.Fact) map[string]string {
	resolved := make(map[string]string, len(rawProfile))
	for k, v := range rawProfile {
		resolved[k] = v
	}
	for _, f := range ranked {
		if memory.IsSingleton(f.Type) {
			resolved[f.Type] = f.Value
		}
	}
	return resolved
}

// Signature is the deterministic short hash gating cache reuse. It covers
// exactly persona, locale and the resolved display name — never the full
// profile or assembled text, so an irrelevant profile field can't fragment
// the cache.
func Signature(resolvedProfile map[string]string) string {
	fields := map[string]string{
		"persona": strings.ToLower(strings.TrimSpace(resolvedProfile["persona"])),
		"locale":  resolvedProfile["locale"],
		"name":    resolvedProfile["name"],
	}
	payload, _ := json.Marshal(fields) // map keys marshal sorted
	sum := sha1.Sum(payload)
	return hex.EncodeToString(sum[:])[:12]
}

// displayFacts promotes singletons to the front, dedupes by id and caps to
// the display count.
func displayFacts(ranked []memory.Fact, limit int) []memory.Fact {
	if len(ranked) > rankLimit {
		ranked = ranked[:rankLimit]
	}

	ordered := make([]memory.Fact, 0, len(ranked))
	for _, f := range ranked {
		if memory.IsSingleton(f.Type) {
			ordered = append(ordered, f)
		}
	}
	for _, f := range ranked {
		if !memory.IsSingleton(f.Type) {
			ordered = append(ordered, f)
		}
	}

	seen := make(map[string]bool, len(ordered))
	out := make([]memory.Fact, 0, limit)
	for _, f := range ordered {
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		out = append(out, f)
		if len(out) == limit {
			break
		}
	}
	return out
}

// renderText produces the ordered text assembly. Section order is fixed;
// sections whose source data is empty are omitted entirely.
func renderText(c *Context) string {
	var parts []string

	if len(c.Profile) > 0 {
		blob, err := json.Marshal(c.Profile)
		if err == nil {
			parts = append(parts, "[USER PROFILE]\n"+string(blob))
		}
	}

	if len(c.Facts) > 0 {
		lines := make([]string, 0, len(c.Facts))
		for _, f := range c.Facts {
			lines = append(lines, fmt.Sprintf("- [%s] %s (seen %d×)", f.Type, f.Value, f.Count))
		}
		parts = append(parts, "[LONG-TERM FACTS]\n"+strings.Join(lines, "\n"))
	}

	if len(c.Recent) > 0 {
		lines := make([]string, 0, len(c.Recent))
		for _, t := range c.Recent {
			role := t.Role
			if role == "" {
				role = "user"
			}
			lines = append(lines, fmt.Sprintf("%s: %s", role, t.Content))
		}
		parts = append(parts, "[RECENT MESSAGES]\n"+strings.Join(lines, "\n"))
	}

	if c.Route != nil && c.Route.Name != "" {
		parts = append(parts, fmt.Sprintf("[SEMANTIC ROUTE]\nname: %s  distance: %.4f", c.Route.Name, c.Route.Distance))
	}

	if len(c.Snippets) > 0 {
		lines := make([]string, 0, len(c.Snippets))
		for _, sn := range c.Snippets {
			src := sn.FileName
			if src == "" {
				src = sn.Source
			}
			lines = append(lines, fmt.Sprintf("• %s (src: %s, score: %.4f)", sn.Text, src, sn.Distance))
		}
		parts = append(parts, "[RAG]\n"+strings.Join(lines, "\n"))
	}

	return strings.Join(parts, "\n\n")
}
