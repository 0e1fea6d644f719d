package learner

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/l0l1/sqlsense/internal/relation"
)

// recordingSink captures history writes for assertions.
type recordingSink struct {
	mu   sync.Mutex
	puts []string
}

func (r *recordingSink) Put(key, query, queryType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.puts = append(r.puts, key)
	return nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.puts)
}

func TestQueryKey(t *testing.T) {
	key := QueryKey("SELECT name FROM users")

	if !strings.HasPrefix(key, "query_") {
		t.Errorf("key missing prefix: %s", key)
	}
	if len(key) != len("query_")+64 {
		t.Errorf("key should carry the full SHA-256 hex, got len %d", len(key))
	}
	if key != QueryKey("SELECT name FROM users") {
		t.Error("key is not deterministic")
	}
	if key == QueryKey("SELECT name FROM orders") {
		t.Error("different queries must get different keys")
	}
}

func TestRecordSyncWritesScalarFacts(t *testing.T) {
	store := relation.NewMemoryStore()
	sink := &recordingSink{}
	l := New(store, sink)
	defer l.Stop()

	query := "SELECT users.name FROM users"
	l.RecordSync(ExecutionEvent{
		Query:           query,
		ExecutionTimeMs: 42,
		ResultCount:     120,
		Success:         true,
	})

	key := QueryKey(query)
	assertFact(t, store, key, relation.PredicateHasSQL, query)
	assertFact(t, store, key, relation.PredicateExecutionTime, "42")
	assertFact(t, store, key, relation.PredicateResultCount, "120")
	assertFact(t, store, key, relation.PredicateSuccess, "true")
	assertFact(t, store, key, relation.PredicateQueryType, "SELECT")
	assertFact(t, store, key, relation.PredicatePerformanceClass, "FAST")

	if sink.count() != 1 {
		t.Errorf("history sink received %d puts, want 1", sink.count())
	}
}

func TestRecordSyncWritesStructuralFacts(t *testing.T) {
	store := relation.NewMemoryStore()
	l := New(store, nil)
	defer l.Stop()

	query := "SELECT users.name FROM users JOIN orders ON users.id = orders.user_id"
	l.RecordSync(ExecutionEvent{Query: query, ExecutionTimeMs: 180, Success: true})

	key := QueryKey(query)
	assertFact(t, store, key, relation.PredicateUsesPattern, "JOIN_PATTERN")
	assertFact(t, store, key, relation.PredicateUsesTable, "users")
	assertFact(t, store, key, relation.PredicateUsesTable, "orders")

	// Reverse edges let table lookups find their queries.
	assertFact(t, store, "users", relation.PredicateUsedByQuery, key)

	// Qualified columns feed the table -> column linkage.
	assertFact(t, store, "users", relation.PredicateCommonlySelects, "users.name")

	// Join edge plus the per-query join fact.
	assertFact(t, store, "users", relation.JoinPredicate("INNER"), "orders")
	assertFact(t, store, key, relation.PredicatePerformsJoin, "users_inner_orders")

	// Co-occurrence is symmetric.
	assertFact(t, store, "users", relation.PredicateCoOccursWith, "orders")
	assertFact(t, store, "orders", relation.PredicateCoOccursWith, "users")

	// Pattern x table affinity.
	assertFact(t, store, "JOIN_PATTERN", relation.PredicateCommonlyUsedWith, "users")

	// MEDIUM observation lands on both patterns and tables.
	assertFact(t, store, "JOIN_PATTERN", relation.PredicateObservedPerformance, "MEDIUM_180")
	assertFact(t, store, "orders", relation.PredicateQueryPerformance, "MEDIUM_180")
}

func TestRecordSyncUserContext(t *testing.T) {
	store := relation.NewMemoryStore()
	l := New(store, nil)
	defer l.Stop()

	query := "SELECT * FROM budgets"
	l.RecordSync(ExecutionEvent{
		Query:      query,
		UserID:     "alice",
		Department: "finance",
		Success:    true,
	})

	key := QueryKey(query)
	assertFact(t, store, key, relation.PredicateWrittenBy, "alice")
	assertFact(t, store, "alice", relation.PredicateWorksIn, "finance")
	assertFact(t, store, key, relation.PredicateDepartmentContext, "finance")
}

func TestRecordSyncUnparsableQueryStillLearns(t *testing.T) {
	store := relation.NewMemoryStore()
	l := New(store, nil)
	defer l.Stop()

	l.RecordSync(ExecutionEvent{Query: "???", ExecutionTimeMs: 5, Success: false})

	key := QueryKey("???")
	assertFact(t, store, key, relation.PredicateHasSQL, "???")
	assertFact(t, store, key, relation.PredicateQueryType, "UNKNOWN")
	assertFact(t, store, key, relation.PredicateSuccess, "false")

	// No structural facts, but the scalar record is complete.
	objects, _ := store.Get(key, relation.PredicateUsesTable)
	if len(objects) != 0 {
		t.Errorf("unparsable query produced table facts: %v", objects)
	}
}

func TestRecordIsAsynchronous(t *testing.T) {
	store := relation.NewMemoryStore()
	l := New(store, nil)

	l.Record(ExecutionEvent{Query: "SELECT * FROM users", Success: true})

	// The background worker flushes on its ticker; poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	for store.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if store.Len() == 0 {
		t.Fatal("queued event never flushed")
	}
	l.Stop()
}

func TestStopDrainsQueue(t *testing.T) {
	store := relation.NewMemoryStore()
	l := New(store, nil)

	for i := 0; i < 25; i++ {
		l.Record(ExecutionEvent{Query: "SELECT * FROM users", Success: true})
	}
	l.Stop()

	// 25 events, each producing at least the scalar facts.
	if store.Len() < 25*7 {
		t.Errorf("Stop() lost events: %d facts stored", store.Len())
	}
	if l.QueueDepth() != 0 {
		t.Errorf("queue not drained: depth %d", l.QueueDepth())
	}
}

func TestDisableStopsLearning(t *testing.T) {
	store := relation.NewMemoryStore()
	l := New(store, nil)
	defer l.Stop()

	l.Disable()
	if l.IsEnabled() {
		t.Fatal("IsEnabled() = true after Disable()")
	}
	l.RecordSync(ExecutionEvent{Query: "SELECT * FROM users", Success: true})
	l.Record(ExecutionEvent{Query: "SELECT * FROM users", Success: true})

	if store.Len() != 0 {
		t.Errorf("disabled learner stored %d facts", store.Len())
	}

	l.Enable()
	l.RecordSync(ExecutionEvent{Query: "SELECT * FROM users", Success: true})
	if store.Len() == 0 {
		t.Error("re-enabled learner stored nothing")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	l := New(relation.NewMemoryStore(), nil)
	l.Stop()
	l.Stop()
}

func assertFact(t *testing.T, store relation.Store, subject, predicate, object string) {
	t.Helper()
	objects, err := store.Get(subject, predicate)
	if err != nil {
		t.Fatalf("Get(%s, %s) failed: %v", subject, predicate, err)
	}
	for _, o := range objects {
		if o == object {
			return
		}
	}
	t.Errorf("missing fact (%s, %s, %s); stored objects: %v", subject, predicate, object, objects)
}
