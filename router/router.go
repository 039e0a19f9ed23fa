// Package router labels queries with a semantic topic route.
//
// The router embeds each route's reference utterances into a vector index
// once, then classifies a query by nearest reference. The orchestrator
// consumes it purely as a labeling service: no route is a normal outcome.
package router

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/mementohq/memento-go-sdk/core"
)

// DefaultIndex is the vector index name for route references.
const DefaultIndex = "topic_router"

// Semantic implements core.Router over a vector index.
type Semantic struct {
	index    core.VectorIndex
	embedder core.Embedder
	routes   map[string]Route
	name     string
	logger   *log.Logger

	seedOnce sync.Once
	seedErr  error
}

// Option configures the router.
type Option func(*Semantic)

// WithRoutes replaces the default route set.
func WithRoutes(routes []Route) Option {
	return func(r *Semantic) {
		r.routes = make(map[string]Route, len(routes))
		for _, rt := range routes {
			r.routes[rt.Name] = rt
		}
	}
}

// WithIndexName overrides the vector index name.
func WithIndexName(name string) Option {
	return func(r *Semantic) { r.name = name }
}

// WithLogger sets the router's logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Semantic) { r.logger = logger }
}

// New creates a semantic router with the default route set.
func New(index core.VectorIndex, embedder core.Embedder, opts ...Option) *Semantic {
	r := &Semantic{
		index:    index,
		embedder: embedder,
		name:     DefaultIndex,
		logger:   log.Default().With("component", "router"),
	}
	WithRoutes(DefaultRoutes())(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sync seeds the route references into the index. Safe to call more than
// once; only the first call does work.
func (r *Semantic) Sync(ctx context.Context) error {
	r.seedOnce.Do(func() {
		r.seedErr = r.seed(ctx)
	})
	return r.seedErr
}

func (r *Semantic) seed(ctx context.Context) error {
	for _, route := range r.routes {
		vecs, err := r.embedder.Embed(ctx, route.References)
		if err != nil {
			return fmt.Errorf("embed references for route %q: %w", route.Name, err)
		}
		for i, vec := range vecs {
			rec := core.Record{
				ID:        fmt.Sprintf("%s#%d", route.Name, i),
				Embedding: vec,
				Fields: map[string]string{
					"text":  route.References[i],
					"route": route.Name,
				},
			}
			if err := r.index.Upsert(ctx, r.name, rec); err != nil {
				return fmt.Errorf("seed route %q: %w", route.Name, err)
			}
		}
	}
	r.logger.Debug("route references seeded", "routes", len(r.routes))
	return nil
}

// Classify returns the route of the closest reference utterance, or nil
// when no route's threshold is cleared.
func (r *Semantic) Classify(ctx context.Context, text string) (*core.RouteMatch, error) {
	if err := r.Sync(ctx); err != nil {
		return nil, err
	}

	vecs, err := r.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	rows, err := r.index.Search(ctx, r.name, vecs[0], 1)
	if err != nil {
		return nil, fmt.Errorf("route search: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	best := rows[0]
	route, ok := r.routes[best.Fields["route"]]
	if !ok || best.Distance > route.Threshold {
		return nil, nil
	}

	meta := make(map[string]string, len(route.Metadata)+1)
	for k, v := range route.Metadata {
		meta[k] = v
	}
	meta["reference_distance"] = strconv.FormatFloat(best.Distance, 'f', 4, 64)

	return &core.RouteMatch{
		Name:     route.Name,
		Distance: best.Distance,
		Metadata: meta,
	}, nil
}
