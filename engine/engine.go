// Package engine orchestrates a single assistant turn: fact promotion,
// context assembly, the semantic cache fast path, and generation.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mementohq/memento-go-sdk/assembler"
	"github.com/mementohq/memento-go-sdk/cache"
	"github.com/mementohq/memento-go-sdk/core"
	"github.com/mementohq/memento-go-sdk/extract"
	"github.com/mementohq/memento-go-sdk/memory"
)

// Promotion confidences by candidate kind. A correction ("actually, I moved
// to...") carries more weight than a plain singleton statement, which in
// turn outranks free-form facts.
const (
	confidenceCorrection = 0.8
	confidenceSingleton  = 0.75
	confidenceDefault    = 0.7

	promoteSource = "conversation"

	personalizerMaxTokens = 500
	premiumMaxTokens      = 600
)

// Engine runs assistant turns. Memory, the assembler, and a generator are
// required; the extractor, semantic cache, and short-term store are
// optional and each degrades to a no-op when absent.
type Engine struct {
	memory    *memory.Store
	assembler *assembler.Assembler
	generator core.Generator

	extractor extract.Extractor
	cache     *cache.Semantic
	shortTerm core.ShortTermStore

	model  string
	logger *log.Logger
	now    func() time.Time
}

// Option configures the engine.
type Option func(*Engine)

// WithExtractor sets the fact extractor applied to each user query.
func WithExtractor(x extract.Extractor) Option {
	return func(e *Engine) { e.extractor = x }
}

// WithCache enables the semantic cache fast path.
func WithCache(c *cache.Semantic) Option {
	return func(e *Engine) { e.cache = c }
}

// WithShortTerm sets the store that records the rolling conversation.
func WithShortTerm(s core.ShortTermStore) Option {
	return func(e *Engine) { e.shortTerm = s }
}

// WithModel sets the model passed to the generator.
func WithModel(model string) Option {
	return func(e *Engine) { e.model = model }
}

// WithLogger sets the engine's logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine.
func New(mem *memory.Store, asm *assembler.Assembler, gen core.Generator, opts ...Option) *Engine {
	e := &Engine{
		memory:    mem,
		assembler: asm,
		generator: gen,
		logger:    log.Default().With("component", "engine"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Input is one user turn.
type Input struct {
	// UserID identifies the user whose memory and profile apply.
	UserID string

	// SessionID scopes the short-term conversation history.
	SessionID string

	// Query is the user's message.
	Query string
}

// Output is the result of a turn.
type Output struct {
	// Text is the assistant's answer.
	Text string

	// CacheHit is true when the answer was personalized from a cached
	// generic answer instead of generated from scratch.
	CacheHit bool

	// Route is the matched semantic route name, if any.
	Route string

	// Persona is the persona the answer was generated under.
	Persona string

	// Signature is the context signature the turn ran with.
	Signature string
}

// Run executes one turn: promote extracted facts, assemble context, try the
// semantic cache (unless the query is sensitive), and generate. Memory and
// short-term failures degrade the turn; only generation failures abort it.
func (e *Engine) Run(ctx context.Context, in Input) (*Output, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, fmt.Errorf("engine: empty query")
	}

	e.appendTurn(ctx, in.SessionID, "user", query)
	e.promote(ctx, in.UserID, query)

	asmCtx := e.assembler.Build(ctx, in.UserID, in.SessionID, query)

	persona := ResolvePersona(asmCtx.Persona())
	out := &Output{Persona: persona.Name, Signature: asmCtx.Signature}
	if asmCtx.Route != nil {
		out.Route = asmCtx.Route.Name
	}

	sensitive := isSensitive(query)
	if e.cache != nil && !sensitive {
		entry, err := e.cache.Lookup(ctx, query, cache.LookupOptions{
			ContextSignature: asmCtx.Signature,
		})
		if err != nil {
			e.logger.Warn("cache lookup failed", "user", in.UserID, "error", err)
		} else if entry != nil {
			text, err := e.personalize(ctx, persona, entry.GenericAnswer, asmCtx.Text, query)
			if err != nil {
				return nil, err
			}
			out.Text = text
			out.CacheHit = true
			e.appendTurn(ctx, in.SessionID, "assistant", text)
			return out, nil
		}
	}

	text, err := e.answer(ctx, persona, asmCtx.Text, query)
	if err != nil {
		return nil, err
	}
	out.Text = text

	// Sensitive queries skip the lookup but still seed the cache: the stored
	// answer is generic, and the signature gate decides future reuse.
	if e.cache != nil && text != "" {
		err := e.cache.Store(ctx, query, text, cache.Meta{
			ContextSignature: asmCtx.Signature,
			Route:            out.Route,
			Persona:          persona.Name,
		})
		if err != nil {
			e.logger.Warn("cache store failed", "user", in.UserID, "error", err)
		}
	}

	e.appendTurn(ctx, in.SessionID, "assistant", text)
	return out, nil
}

// promote extracts fact candidates from the query and writes them to
// long-term memory. Promotion failures are logged and never abort the turn.
func (e *Engine) promote(ctx context.Context, userID, query string) {
	if e.extractor == nil {
		return
	}
	res := e.extractor.Extract(query)
	for _, c := range res.Candidates {
		if memory.IsSingleton(c.Type) {
			conf := confidenceSingleton
			if res.Correction {
				conf = confidenceCorrection
			}
			e.memory.UpsertUnique(ctx, userID, c.Type, c.Value, promoteSource, conf)
			continue
		}
		e.memory.Upsert(ctx, userID, c.Type, c.Value, promoteSource, confidenceDefault, 0)
	}
}

func (e *Engine) personalize(ctx context.Context, p Persona, generic, contextText, query string) (string, error) {
	content := fmt.Sprintf("GENERIC ANSWER:\n%s\n\nCONTEXT:\n%s\n\nQUESTION:\n%s", generic, contextText, query)
	text, err := e.generator.Generate(ctx, core.GenerateRequest{
		System:      p.PersonalizerSys,
		Messages:    []core.Message{{Role: "user", Content: content}},
		Model:       e.model,
		MaxTokens:   personalizerMaxTokens,
		Temperature: p.PersonalizerTemp,
	})
	if err != nil {
		return "", fmt.Errorf("engine: personalize: %w", err)
	}
	return text, nil
}

func (e *Engine) answer(ctx context.Context, p Persona, contextText, query string) (string, error) {
	content := fmt.Sprintf("CONTEXT:\n%s\n\nQUESTION:\n%s", contextText, query)
	text, err := e.generator.Generate(ctx, core.GenerateRequest{
		System:      p.PremiumSys,
		Messages:    []core.Message{{Role: "user", Content: content}},
		Model:       e.model,
		MaxTokens:   premiumMaxTokens,
		Temperature: p.PremiumTemp,
	})
	if err != nil {
		return "", fmt.Errorf("engine: answer: %w", err)
	}
	return text, nil
}

func (e *Engine) appendTurn(ctx context.Context, sessionID, role, content string) {
	if e.shortTerm == nil || sessionID == "" {
		return
	}
	turn := core.Turn{Role: role, Content: content, Timestamp: e.now().UTC()}
	if err := e.shortTerm.Append(ctx, sessionID, turn); err != nil {
		e.logger.Warn("short-term append failed", "session", sessionID, "error", err)
	}
}
