package insights

import (
	"testing"

	"github.com/l0l1/sqlsense/internal/relation"
)

func TestNewSchedulerRejectsInvalidCron(t *testing.T) {
	agg := NewAggregator(relation.NewMemoryStore())

	if _, err := NewScheduler(agg, "not a cron", nil); err == nil {
		t.Error("expected error for invalid cron expression")
	}
	if _, err := NewScheduler(agg, "*/5 * * * *", nil); err != nil {
		t.Errorf("valid cron rejected: %v", err)
	}
}

func TestSchedulerWithoutCronIsNoOp(t *testing.T) {
	agg := NewAggregator(relation.NewMemoryStore())
	s, err := NewScheduler(agg, "", nil)
	if err != nil {
		t.Fatalf("NewScheduler() failed: %v", err)
	}

	// Start without an expression must not launch the loop; Stop on a
	// never-started scheduler must not panic.
	s.Start()
	s.Stop()
}

func TestSchedulerRunOnceDeliversSnapshot(t *testing.T) {
	store := relation.NewMemoryStore()
	store.Add("query_a", relation.PredicateHasSQL, "SELECT 1")

	var got *WorkspaceInsights
	s, err := NewScheduler(NewAggregator(store), "* * * * *", func(w WorkspaceInsights) {
		got = &w
	})
	if err != nil {
		t.Fatalf("NewScheduler() failed: %v", err)
	}

	s.runOnce()

	if got == nil {
		t.Fatal("sink never received a snapshot")
	}
	if got.TotalQueriesAnalyzed != 1 {
		t.Errorf("snapshot TotalQueriesAnalyzed = %d, want 1", got.TotalQueriesAnalyzed)
	}
}
