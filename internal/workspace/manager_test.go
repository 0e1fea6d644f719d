package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/l0l1/sqlsense/internal/learner"
	"github.com/l0l1/sqlsense/internal/suggest"
)

func TestOpenEphemeralWorkspace(t *testing.T) {
	manager := NewManager("", suggest.OrderCategory)
	defer manager.CloseAll()

	ws, err := manager.Open("scratch")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if ws.Store == nil || ws.Learner == nil || ws.Engine == nil || ws.History == nil || ws.Aggregator == nil {
		t.Fatalf("workspace missing components: %+v", ws)
	}
}

func TestOpenReturnsSameInstance(t *testing.T) {
	manager := NewManager("", suggest.OrderCategory)
	defer manager.CloseAll()

	first, err := manager.Open("ws")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	second, err := manager.Open("ws")
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	if first != second {
		t.Error("Open() should return the same instance for the same id")
	}
}

func TestWorkspaceIsolation(t *testing.T) {
	manager := NewManager("", suggest.OrderCategory)
	defer manager.CloseAll()

	a, _ := manager.Open("a")
	b, _ := manager.Open("b")

	a.Learner.RecordSync(learner.ExecutionEvent{
		Query: "SELECT * FROM users JOIN orders ON users.id = orders.user_id", Success: true,
	})

	aTriples, _ := a.Store.All()
	bTriples, _ := b.Store.All()
	if len(aTriples) == 0 {
		t.Fatal("recording left workspace a empty")
	}
	if len(bTriples) != 0 {
		t.Errorf("facts leaked into workspace b: %v", bTriples)
	}
}

func TestRecordThenSuggestRoundTrip(t *testing.T) {
	manager := NewManager("", suggest.OrderCategory)
	defer manager.CloseAll()

	ws, _ := manager.Open("roundtrip")
	ws.Learner.RecordSync(learner.ExecutionEvent{
		Query:           "SELECT users.name FROM users JOIN orders ON users.id = orders.user_id",
		ExecutionTimeMs: 120,
		Success:         true,
	})

	suggestions, err := ws.Engine.Suggest(context.Background(), "SELECT * FROM users")
	if err != nil {
		t.Fatalf("Suggest() failed: %v", err)
	}

	found := false
	for _, s := range suggestions {
		if s.Category == suggest.CategoryTable && s.Text == "JOIN orders" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected JOIN orders from the recorded co-occurrence, got %v", suggestions)
	}
}

func TestValidateID(t *testing.T) {
	manager := NewManager("", suggest.OrderCategory)
	defer manager.CloseAll()

	for _, bad := range []string{"", "../evil", "a/b", "a b", "dot.dot"} {
		if _, err := manager.Open(bad); err == nil {
			t.Errorf("Open(%q) should fail", bad)
		}
	}
	for _, good := range []string{"default", "team-a", "proj_2024", "X1"} {
		if _, err := manager.Open(good); err != nil {
			t.Errorf("Open(%q) failed: %v", good, err)
		}
	}
}

func TestListIncludesDiskWorkspaces(t *testing.T) {
	dataDir := t.TempDir()

	manager := NewManager(dataDir, suggest.OrderCategory)
	if _, err := manager.Open("persisted"); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := manager.CloseAll(); err != nil {
		t.Fatalf("CloseAll() failed: %v", err)
	}

	// A fresh manager over the same directory finds it on disk.
	fresh := NewManager(dataDir, suggest.OrderCategory)
	defer fresh.CloseAll()

	ids := fresh.List()
	found := false
	for _, id := range ids {
		if id == "persisted" {
			found = true
		}
	}
	if !found {
		t.Errorf("List() = %v, missing persisted workspace", ids)
	}
}

func TestDeleteRemovesData(t *testing.T) {
	dataDir := t.TempDir()

	manager := NewManager(dataDir, suggest.OrderCategory)
	defer manager.CloseAll()

	ws, err := manager.Open("doomed")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	ws.Learner.RecordSync(learner.ExecutionEvent{Query: "SELECT 1", Success: true})

	if err := manager.Delete("doomed"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dataDir, "doomed")); !os.IsNotExist(err) {
		t.Error("workspace directory still exists after Delete()")
	}
	if _, ok := manager.Get("doomed"); ok {
		t.Error("deleted workspace still registered")
	}
}

func TestCloseAllAllowsReopen(t *testing.T) {
	manager := NewManager("", suggest.OrderCategory)

	if _, err := manager.Open("ws"); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := manager.CloseAll(); err != nil {
		t.Fatalf("CloseAll() failed: %v", err)
	}
	if _, err := manager.Open("ws"); err != nil {
		t.Fatalf("reopen after CloseAll() failed: %v", err)
	}
	manager.CloseAll()
}
