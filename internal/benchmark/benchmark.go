/*
Package benchmark measures learning and suggestion throughput.

It drives a synthetic query workload through an ephemeral workspace and
reports record throughput and suggestion latency, so regressions in the
analyzer, store or suggestion engine show up as numbers rather than as
user-visible typing lag. Suggestion latency has an interactive budget:
lookups are bounded by the relations touching the queried subjects, not
by total store size, and the benchmark exists to keep that honest.
*/
package benchmark

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/l0l1/sqlsense/internal/learner"
	"github.com/l0l1/sqlsense/internal/suggest"
	"github.com/l0l1/sqlsense/internal/workspace"
)

// Result contains the measurements of one benchmark run.
type Result struct {
	RunID             string        `json:"runId"`
	QueriesRecorded   int           `json:"queriesRecorded"`
	RecordDuration    time.Duration `json:"recordDuration"`
	RecordsPerSecond  float64       `json:"recordsPerSecond"`
	SuggestCalls      int           `json:"suggestCalls"`
	SuggestDuration   time.Duration `json:"suggestDuration"`
	AvgSuggestLatency time.Duration `json:"avgSuggestLatency"`
	TriplesStored     int           `json:"triplesStored"`
}

// corpus is the synthetic workload: a spread of shapes (joins, grouping,
// aggregations, subqueries) so all five suggestion generators get work.
var corpus = []learner.ExecutionEvent{
	{Query: "SELECT u.name, u.email FROM users u", ExecutionTimeMs: 40, ResultCount: 120, Success: true},
	{Query: "SELECT u.name, o.total FROM users u JOIN orders o ON u.id = o.user_id", ExecutionTimeMs: 180, ResultCount: 90, Success: true},
	{Query: "SELECT o.status, COUNT(o.id) FROM orders o GROUP BY o.status", ExecutionTimeMs: 250, ResultCount: 4, Success: true},
	{Query: "SELECT p.sku FROM products p LEFT JOIN orders o ON p.id = o.product_id", ExecutionTimeMs: 320, ResultCount: 500, Success: true},
	{Query: "SELECT * FROM audit_logs WHERE created_at > '2024-01-01'", ExecutionTimeMs: 2400, ResultCount: 100000, Success: true},
	{Query: "SELECT d.name, AVG(s.amount) FROM departments d JOIN salaries s ON d.id = s.department_id GROUP BY d.name ORDER BY d.name", ExecutionTimeMs: 850, ResultCount: 12, Success: true},
	{Query: "SELECT id FROM orders WHERE user_id IN (SELECT id FROM users WHERE active = 1)", ExecutionTimeMs: 1200, ResultCount: 300, Success: true},
}

// partials are the in-progress fragments used for suggestion timing.
var partials = []string{
	"SELECT * FROM users",
	"SELECT * FROM orders",
	"SELECT o.status FROM orders o GROUP BY o.status",
	"SELECT * FROM audit_logs",
}

// Run records the corpus `rounds` times into a fresh ephemeral workspace
// and then times suggestion calls against it.
func Run(rounds, suggestCalls int) (*Result, error) {
	if rounds <= 0 {
		rounds = 10
	}
	if suggestCalls <= 0 {
		suggestCalls = 100
	}

	manager := workspace.NewManager("", suggest.OrderCategory)
	ws, err := manager.Open("benchmark")
	if err != nil {
		return nil, fmt.Errorf("failed to open benchmark workspace: %w", err)
	}
	defer manager.CloseAll()

	result := &Result{RunID: uuid.NewString()}

	// Phase 1: synchronous recording so throughput reflects the full
	// fact-writing path, not just the queue handoff.
	start := time.Now()
	for r := 0; r < rounds; r++ {
		for _, event := range corpus {
			ws.Learner.RecordSync(event)
			result.QueriesRecorded++
		}
	}
	result.RecordDuration = time.Since(start)
	if secs := result.RecordDuration.Seconds(); secs > 0 {
		result.RecordsPerSecond = float64(result.QueriesRecorded) / secs
	}

	// Phase 2: suggestion latency against the populated graph.
	ctx := context.Background()
	start = time.Now()
	for i := 0; i < suggestCalls; i++ {
		partial := partials[i%len(partials)]
		if _, err := ws.Engine.Suggest(ctx, partial); err != nil {
			return nil, fmt.Errorf("suggest failed during benchmark: %w", err)
		}
		result.SuggestCalls++
	}
	result.SuggestDuration = time.Since(start)
	if result.SuggestCalls > 0 {
		result.AvgSuggestLatency = result.SuggestDuration / time.Duration(result.SuggestCalls)
	}

	triples, err := ws.Store.All()
	if err != nil {
		return nil, fmt.Errorf("failed to count stored triples: %w", err)
	}
	result.TriplesStored = len(triples)

	return result, nil
}
