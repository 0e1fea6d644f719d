package relation

import (
	"strconv"
	"strings"
)

// Predicate names for every fact family the learner writes. Callers go
// through these constants and the typed helpers below instead of
// hand-assembling predicate strings.
const (
	// Scalar facts on a query key.
	PredicateHasSQL        = "has_sql"
	PredicateExecutionTime = "execution_time"
	PredicateResultCount   = "result_count"
	PredicateSuccess       = "success"
	PredicateTimestamp     = "timestamp"
	PredicateQueryType     = "query_type"
	PredicateComplexity    = "complexity"

	// Structural usage facts.
	PredicateUsesPattern     = "uses_pattern"
	PredicateUsesTable       = "uses_table"
	PredicateUsedByQuery     = "used_by_query"
	PredicateUsesColumn      = "uses_column"
	PredicateCommonlySelects = "commonly_selects"
	PredicatePerformsJoin    = "performs_join"
	PredicateUsesAggregation = "uses_aggregation"
	PredicateAggregatesCol   = "aggregates_column"
	PredicateFiltersOn       = "filters_on"
	PredicateUsesOperator    = "uses_operator"

	// Authorship context facts.
	PredicateWrittenBy         = "written_by"
	PredicateWorksIn           = "works_in"
	PredicateDepartmentContext = "department_context"

	// Performance facts.
	PredicatePerformanceClass    = "performance_class"
	PredicateObservedPerformance = "observed_performance"
	PredicateQueryPerformance    = "query_performance"

	// Co-occurrence facts.
	PredicateCoOccursWith     = "co_occurs_with"
	PredicateCommonlyUsedWith = "commonly_used_with"
)

// PerformanceClass buckets a query's measured execution time.
type PerformanceClass string

const (
	PerformanceFast   PerformanceClass = "FAST"   // < 100ms
	PerformanceMedium PerformanceClass = "MEDIUM" // 100–1000ms
	PerformanceSlow   PerformanceClass = "SLOW"   // >= 1000ms
)

// ClassifyExecutionTime maps an execution time in milliseconds to its
// performance class. The classification is deterministic and immutable
// once written.
func ClassifyExecutionTime(ms float64) PerformanceClass {
	switch {
	case ms < 100:
		return PerformanceFast
	case ms < 1000:
		return PerformanceMedium
	default:
		return PerformanceSlow
	}
}

// PerformanceObject encodes a performance observation as stored on
// observed_performance / query_performance edges: "{class}_{timeMs}".
func PerformanceObject(class PerformanceClass, ms float64) string {
	return string(class) + "_" + strconv.FormatFloat(ms, 'f', -1, 64)
}

// ParsePerformanceObject splits an observation object back into its
// class. The time component is ignored by current consumers.
func ParsePerformanceObject(object string) (PerformanceClass, bool) {
	idx := strings.Index(object, "_")
	if idx <= 0 {
		return "", false
	}
	switch c := PerformanceClass(object[:idx]); c {
	case PerformanceFast, PerformanceMedium, PerformanceSlow:
		return c, true
	}
	return "", false
}

// JoinPredicate names the directed edge between two joined tables,
// e.g. joined_with_left for a LEFT JOIN.
func JoinPredicate(joinType string) string {
	return "joined_with_" + strings.ToLower(joinType)
}

// CoOccurringTables returns the distinct tables recorded as co-occurring
// with the given table, most frequent first, skipping any in exclude.
// Frequency comes straight from edge multiplicity.
func CoOccurringTables(s Store, table string, limit int, exclude map[string]bool) ([]string, error) {
	return topObjects(s, table, PredicateCoOccursWith, limit, exclude)
}

// CommonColumns returns the most frequently selected qualified columns of
// a table, most frequent first.
func CommonColumns(s Store, table string, limit int) ([]string, error) {
	return topObjects(s, table, PredicateCommonlySelects, limit, nil)
}

// SlowObservationCount counts how many recorded performance observations
// for a table were classified SLOW.
func SlowObservationCount(s Store, table string) (int, error) {
	objects, err := s.Get(table, PredicateQueryPerformance)
	if err != nil {
		return 0, err
	}
	slow := 0
	for _, o := range objects {
		if class, ok := ParsePerformanceObject(o); ok && class == PerformanceSlow {
			slow++
		}
	}
	return slow, nil
}

// HasJoinEdge reports whether a join edge of the given type was ever
// learned from left to right.
func HasJoinEdge(s Store, left, joinType, right string) (bool, error) {
	objects, err := s.Get(left, JoinPredicate(joinType))
	if err != nil {
		return false, err
	}
	for _, o := range objects {
		if o == right {
			return true, nil
		}
	}
	return false, nil
}

// topObjects ranks the objects of a lookup by multiplicity, breaking ties
// by first appearance, and returns up to limit entries.
func topObjects(s Store, subject, predicate string, limit int, exclude map[string]bool) ([]string, error) {
	objects, err := s.Get(subject, predicate)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	var order []string
	for _, o := range objects {
		if exclude[o] {
			continue
		}
		if counts[o] == 0 {
			order = append(order, o)
		}
		counts[o]++
	}

	// Stable selection sort by count; candidate lists are tiny.
	for i := 0; i < len(order); i++ {
		best := i
		for j := i + 1; j < len(order); j++ {
			if counts[order[j]] > counts[order[best]] {
				best = j
			}
		}
		if best != i {
			picked := order[best]
			copy(order[i+1:best+1], order[i:best])
			order[i] = picked
		}
	}

	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}
	return order, nil
}
