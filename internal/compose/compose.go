// Package compose fans out the independent scoped queries a view needs and
// joins the results in memory. Compositions are all-or-nothing: one failed
// fetch fails the whole step, and callers degrade to an empty view instead
// of surfacing the transport error.
package compose

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nmorane/flowdeck/internal/gateway"
)

// Querier is the slice of the gateway the composer needs.
type Querier interface {
	Query(ctx context.Context, collection string, opts gateway.QueryOptions) ([]json.RawMessage, error)
	CountOnly(ctx context.Context, collection string, filters []gateway.Filter) (int, error)
}

// Spec names one child collection of a parent entity.
type Spec struct {
	Name       string // key in the Result
	Collection string
	FilterKey  string // foreign-key column matched against the parent id
	OrderKey   string
	Descending bool
	Extra      []gateway.Filter // e.g. is_deleted=false, is_active=true
}

// Result maps spec names to their ordered raw row lists.
type Result map[string][]json.RawMessage

// Composer runs compositions against a Querier.
type Composer struct {
	q   Querier
	log zerolog.Logger
}

// New creates a Composer.
func New(q Querier, log zerolog.Logger) *Composer {
	return &Composer{q: q, log: log}
}

// Children issues one scoped query per spec concurrently and waits for all
// of them. If any query fails, the whole composition fails and no partial
// result is returned.
func (c *Composer) Children(ctx context.Context, parentID string, specs []Spec) (Result, error) {
	lists := make([][]json.RawMessage, len(specs))

	g, ctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			opts := gateway.QueryOptions{
				Filters: append([]gateway.Filter{gateway.Eq(spec.FilterKey, parentID)}, spec.Extra...),
			}
			if spec.OrderKey != "" {
				opts.Order = []gateway.Order{{Column: spec.OrderKey, Desc: spec.Descending}}
			}
			rows, err := c.q.Query(ctx, spec.Collection, opts)
			if err != nil {
				return fmt.Errorf("compose %s: %w", spec.Name, err)
			}
			lists[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.log.Error().Err(err).Str("parent_id", parentID).Msg("composition failed")
		return nil, err
	}

	out := make(Result, len(specs))
	for i, spec := range specs {
		out[spec.Name] = lists[i]
	}
	return out, nil
}

// CountSpec names one count-only child query.
type CountSpec struct {
	Name       string
	Collection string
	FilterKey  string
	Extra      []gateway.Filter
}

// Counts runs one count-only query per parent id, concurrently, and maps
// each parent id to its count. Row payloads are never transferred.
func (c *Composer) Counts(ctx context.Context, parentIDs []string, spec CountSpec) (map[string]int, error) {
	counts := make(map[string]int, len(parentIDs))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, id := range parentIDs {
		g.Go(func() error {
			filters := append([]gateway.Filter{gateway.Eq(spec.FilterKey, id)}, spec.Extra...)
			n, err := c.q.CountOnly(ctx, spec.Collection, filters)
			if err != nil {
				return fmt.Errorf("compose count %s %s: %w", spec.Collection, id, err)
			}
			mu.Lock()
			counts[id] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.log.Error().Err(err).Str("collection", spec.Collection).Msg("count aggregation failed")
		return nil, err
	}
	return counts, nil
}

// SummaryCounts runs one count-only query per spec for a single parent id,
// concurrently. Used by the dashboard to size its section badges.
func (c *Composer) SummaryCounts(ctx context.Context, parentID string, specs []CountSpec) (map[string]int, error) {
	counts := make(map[string]int, len(specs))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, spec := range specs {
		g.Go(func() error {
			filters := append([]gateway.Filter{gateway.Eq(spec.FilterKey, parentID)}, spec.Extra...)
			n, err := c.q.CountOnly(ctx, spec.Collection, filters)
			if err != nil {
				return fmt.Errorf("compose count %s: %w", spec.Name, err)
			}
			mu.Lock()
			counts[spec.Name] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.log.Error().Err(err).Str("parent_id", parentID).Msg("summary counts failed")
		return nil, err
	}
	return counts, nil
}

// Decode unmarshals the named result list into typed rows. A row that fails
// to decode fails the whole list.
func Decode[T any](r Result, name string) ([]T, error) {
	raw := r[name]
	out := make([]T, 0, len(raw))
	for _, row := range raw {
		var v T
		if err := json.Unmarshal(row, &v); err != nil {
			return nil, fmt.Errorf("compose.Decode %s: %w", name, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// GroupBy buckets rows by a foreign-key string, preserving fetch order
// within each bucket. Rows whose key is empty are dropped; a child with no
// parent reference is never shown nested.
func GroupBy[T any](rows []T, key func(T) string) map[string][]T {
	out := make(map[string][]T)
	for _, row := range rows {
		k := key(row)
		if k == "" {
			continue
		}
		out[k] = append(out[k], row)
	}
	return out
}
