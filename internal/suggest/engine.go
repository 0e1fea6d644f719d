/*
Package suggest produces ranked suggestions for a query still being
written, based on the facts learned from previously executed queries.

Five independent generators contribute: related tables (co-occurrence),
learned joins, commonly selected columns, syntactic patterns, and
performance warnings. Their outputs are concatenated in generator order
and truncated; a store failure in one generator blanks only that
generator's contribution.
*/
package suggest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/l0l1/sqlsense/internal/analyzer"
	"github.com/l0l1/sqlsense/internal/relation"
)

// maxSuggestions caps the returned list regardless of graph size.
const maxSuggestions = 10

// Per-generator candidate caps.
const (
	relatedTableLimit = 3
	commonColumnLimit = 5
	slowQueryThreshold = 2
)

// Category classifies a suggestion.
type Category string

const (
	CategoryTable       Category = "table"
	CategoryJoin        Category = "join"
	CategoryColumn      Category = "column"
	CategoryPattern     Category = "pattern"
	CategoryPerformance Category = "performance"
)

// Suggestion is a single recommendation for the in-progress query.
// Produced fresh per request; never persisted.
type Suggestion struct {
	Category   Category `json:"category"`
	Text       string   `json:"text"`
	Reason     string   `json:"reason"`
	Confidence float64  `json:"confidence"`
}

// Ordering selects how concatenated generator output is ordered before
// truncation.
type Ordering string

const (
	// OrderCategory keeps the fixed generator order (the historical
	// behavior of this system).
	OrderCategory Ordering = "category"

	// OrderConfidence sorts by confidence descending before truncating.
	OrderConfidence Ordering = "confidence"
)

// Engine generates suggestions against one workspace's relation store.
// It is stateless per call; concurrent use is safe.
type Engine struct {
	store    relation.Store
	analyzer *analyzer.Analyzer
	ordering Ordering
}

// NewEngine creates a suggestion engine over the given store.
func NewEngine(store relation.Store, ordering Ordering) *Engine {
	if ordering == "" {
		ordering = OrderCategory
	}
	return &Engine{
		store:    store,
		analyzer: analyzer.New(),
		ordering: ordering,
	}
}

// Suggest analyzes the partial query and returns at most 10 suggestions.
// The five generators run concurrently but their results are concatenated
// in fixed generator order, so concurrency never changes the observable
// ordering. Cancelling ctx aborts promptly.
func (e *Engine) Suggest(ctx context.Context, partialQuery string) ([]Suggestion, error) {
	a := e.analyzer.Analyze(partialQuery)

	present := make(map[string]bool, len(a.Tables))
	for _, t := range a.Tables {
		present[t] = true
	}

	var results [5][]Suggestion
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { results[0] = e.relatedTables(ctx, a, present); return ctx.Err() })
	g.Go(func() error { results[1] = e.joinSuggestions(ctx, a); return ctx.Err() })
	g.Go(func() error { results[2] = e.columnSuggestions(ctx, a); return ctx.Err() })
	g.Go(func() error { results[3] = e.patternSuggestions(a); return nil })
	g.Go(func() error { results[4] = e.performanceSuggestions(ctx, a); return ctx.Err() })

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var suggestions []Suggestion
	for _, r := range results {
		suggestions = append(suggestions, r...)
	}

	if e.ordering == OrderConfidence {
		sort.SliceStable(suggestions, func(i, j int) bool {
			return suggestions[i].Confidence > suggestions[j].Confidence
		})
	}

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions, nil
}

// relatedTables suggests joining tables that historically co-occur with
// the tables already referenced.
func (e *Engine) relatedTables(ctx context.Context, a analyzer.Analysis, present map[string]bool) []Suggestion {
	var out []Suggestion
	suggested := make(map[string]bool)

	for _, source := range a.Tables {
		if ctx.Err() != nil {
			return out
		}
		targets, err := relation.CoOccurringTables(e.store, source, relatedTableLimit, present)
		if err != nil {
			continue // degrade: skip this source's contribution
		}
		for _, target := range targets {
			if suggested[target] {
				continue
			}
			suggested[target] = true
			out = append(out, Suggestion{
				Category:   CategoryTable,
				Text:       "JOIN " + target,
				Reason:     fmt.Sprintf("Frequently used with %s", source),
				Confidence: 0.8,
			})
		}
	}
	return out
}

// joinSuggestions proposes a full LEFT JOIN clause for table pairs with a
// learned left-join edge.
func (e *Engine) joinSuggestions(ctx context.Context, a analyzer.Analysis) []Suggestion {
	var out []Suggestion
	for _, left := range a.Tables {
		for _, right := range a.Tables {
			if left == right || ctx.Err() != nil {
				continue
			}
			found, err := relation.HasJoinEdge(e.store, left, "LEFT", right)
			if err != nil || !found {
				continue
			}
			out = append(out, Suggestion{
				Category: CategoryJoin,
				Text: fmt.Sprintf("LEFT JOIN %s ON %s.id = %s.%s_id",
					right, left, right, singular(left)),
				Reason:     fmt.Sprintf("Previously joined %s with %s", left, right),
				Confidence: 0.9,
			})
		}
	}
	return out
}

// columnSuggestions surfaces the most commonly selected columns of each
// referenced table.
func (e *Engine) columnSuggestions(ctx context.Context, a analyzer.Analysis) []Suggestion {
	var out []Suggestion
	for _, table := range a.Tables {
		if ctx.Err() != nil {
			return out
		}
		columns, err := relation.CommonColumns(e.store, table, commonColumnLimit)
		if err != nil {
			continue
		}
		for _, column := range columns {
			out = append(out, Suggestion{
				Category:   CategoryColumn,
				Text:       column,
				Reason:     fmt.Sprintf("Commonly selected from %s", table),
				Confidence: 0.7,
			})
		}
	}
	return out
}

// patternSuggestions flags missing clauses implied by the patterns
// already present. Purely structural: no store reads.
func (e *Engine) patternSuggestions(a analyzer.Analysis) []Suggestion {
	var out []Suggestion

	if a.HasPattern("GROUP_BY_PATTERN") && !a.HasPattern("ORDER_BY_PATTERN") {
		out = append(out, Suggestion{
			Category:   CategoryPattern,
			Text:       "ORDER BY",
			Reason:     "Queries with GROUP BY usually specify an ordering",
			Confidence: 0.8,
		})
	}

	hasAggregation := false
	for _, p := range a.Patterns {
		if strings.HasSuffix(p, "_AGGREGATION") {
			hasAggregation = true
			break
		}
	}
	if hasAggregation && !a.HasPattern("HAVING_PATTERN") {
		out = append(out, Suggestion{
			Category:   CategoryPattern,
			Text:       "HAVING",
			Reason:     "Aggregated results can be filtered with a HAVING clause",
			Confidence: 0.7,
		})
	}
	return out
}

// performanceSuggestions warns about tables with a record of slow queries.
func (e *Engine) performanceSuggestions(ctx context.Context, a analyzer.Analysis) []Suggestion {
	var out []Suggestion
	for _, table := range a.Tables {
		if ctx.Err() != nil {
			return out
		}
		slow, err := relation.SlowObservationCount(e.store, table)
		if err != nil || slow <= slowQueryThreshold {
			continue
		}
		out = append(out, Suggestion{
			Category:   CategoryPerformance,
			Text:       "LIMIT 1000",
			Reason:     fmt.Sprintf("%s appears in %d slow queries; consider adding a LIMIT clause", table, slow),
			Confidence: 0.6,
		})
	}
	return out
}

// singular trims a trailing "s" for the foreign-key naming heuristic
// (users -> user_id). Wrong for irregular plurals, which is acceptable
// for a suggestion the user reviews before applying.
func singular(table string) string {
	if len(table) > 1 && strings.HasSuffix(table, "s") {
		return table[:len(table)-1]
	}
	return table
}
