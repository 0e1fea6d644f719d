/*
Package insights computes workspace-level summary statistics from a full
scan of the relation store.

The scan is potentially expensive and runs out-of-band only: on demand
via the CLI, or periodically through the Scheduler. It must never sit on
the synchronous suggestion path.
*/
package insights

import (
	"sort"
	"strconv"
	"time"

	"github.com/l0l1/sqlsense/internal/relation"
)

// topN bounds the most-used-tables and common-patterns lists.
const topN = 5

// Complexity trend labels, bucketed from the average complexity score.
const (
	TrendSimple   = "simple"
	TrendModerate = "moderate"
	TrendComplex  = "complex"
)

// EntryCount is a named counter in a ranked list.
type EntryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// WorkspaceInsights summarizes everything learned in one workspace.
type WorkspaceInsights struct {
	TotalQueriesAnalyzed    int                              `json:"total_queries_analyzed"`
	UniqueTables            int                              `json:"unique_tables"`
	MostUsedTables          []EntryCount                     `json:"most_used_tables"`
	CommonPatterns          []EntryCount                     `json:"common_patterns"`
	PerformanceDistribution map[relation.PerformanceClass]int `json:"performance_distribution"`
	ComplexityTrend         string                           `json:"complexity_trend"`
	GeneratedAt             time.Time                        `json:"generated_at"`
}

// Aggregator computes insights over one workspace's store.
type Aggregator struct {
	store relation.Store
}

// NewAggregator creates an aggregator over the given store.
func NewAggregator(store relation.Store) *Aggregator {
	return &Aggregator{store: store}
}

// Insights scans every stored triple once and derives the summary. The
// snapshot may be slightly behind concurrent appends, which is fine for
// a dashboard-facing statistic.
func (g *Aggregator) Insights() (WorkspaceInsights, error) {
	out := WorkspaceInsights{
		MostUsedTables: []EntryCount{},
		CommonPatterns: []EntryCount{},
		PerformanceDistribution: map[relation.PerformanceClass]int{
			relation.PerformanceFast:   0,
			relation.PerformanceMedium: 0,
			relation.PerformanceSlow:   0,
		},
		ComplexityTrend: TrendSimple,
		GeneratedAt:     time.Now().UTC(),
	}

	triples, err := g.store.All()
	if err != nil {
		return out, err
	}

	tableCounts := map[string]int{}
	patternCounts := map[string]int{}
	complexitySum, complexityN := 0, 0

	for _, t := range triples {
		switch t.Predicate {
		case relation.PredicateHasSQL:
			out.TotalQueriesAnalyzed++
		case relation.PredicateUsesTable:
			tableCounts[t.Object]++
		case relation.PredicateUsesPattern:
			patternCounts[t.Object]++
		case relation.PredicatePerformanceClass:
			out.PerformanceDistribution[relation.PerformanceClass(t.Object)]++
		case relation.PredicateComplexity:
			if v, err := strconv.Atoi(t.Object); err == nil {
				complexitySum += v
				complexityN++
			}
		}
	}

	out.UniqueTables = len(tableCounts)
	out.MostUsedTables = rank(tableCounts, topN)
	out.CommonPatterns = rank(patternCounts, topN)

	if complexityN > 0 {
		switch avg := float64(complexitySum) / float64(complexityN); {
		case avg < 5:
			out.ComplexityTrend = TrendSimple
		case avg < 15:
			out.ComplexityTrend = TrendModerate
		default:
			out.ComplexityTrend = TrendComplex
		}
	}

	return out, nil
}

// rank converts a counter map into a top-N list, highest count first,
// name ascending on ties so output is deterministic.
func rank(counts map[string]int, n int) []EntryCount {
	entries := make([]EntryCount, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, EntryCount{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
