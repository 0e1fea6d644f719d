package relation

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(path string) error {
	return os.WriteFile(path, []byte("x"), 0644)
}

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "relations.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreAddGet(t *testing.T) {
	store := newTestSQLiteStore(t)

	store.Add("users", "co_occurs_with", "orders")
	store.Add("users", "co_occurs_with", "products")
	store.Add("users", "co_occurs_with", "orders")

	objects, err := store.Get("users", "co_occurs_with")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}

	want := []string{"orders", "products", "orders"}
	if len(objects) != len(want) {
		t.Fatalf("Get() = %v, want %v", objects, want)
	}
	for i := range want {
		if objects[i] != want[i] {
			t.Errorf("Get()[%d] = %s, want %s", i, objects[i], want[i])
		}
	}
}

func TestSQLiteStoreGetUnknown(t *testing.T) {
	store := newTestSQLiteStore(t)

	objects, err := store.Get("nobody", "nothing")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if len(objects) != 0 {
		t.Errorf("expected empty result, got %v", objects)
	}
}

func TestSQLiteStoreAll(t *testing.T) {
	store := newTestSQLiteStore(t)

	store.Add("a", "p", "1")
	store.Add("b", "q", "2")

	triples, err := store.All()
	if err != nil {
		t.Fatalf("All() failed: %v", err)
	}
	if len(triples) != 2 {
		t.Fatalf("All() returned %d triples, want 2", len(triples))
	}
	if triples[0].Subject != "a" || triples[1].Subject != "b" {
		t.Errorf("All() lost insertion order: %v", triples)
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relations.db")

	store := NewSQLiteStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	store.Add("users", "uses_table", "orders")
	if err := store.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	reopened := NewSQLiteStore(path)
	if err := reopened.Init(); err != nil {
		t.Fatalf("reopen Init() failed: %v", err)
	}
	defer reopened.Close()

	objects, err := reopened.Get("users", "uses_table")
	if err != nil {
		t.Fatalf("Get() after reopen failed: %v", err)
	}
	if len(objects) != 1 || objects[0] != "orders" {
		t.Errorf("data lost across reopen: %v", objects)
	}
}

func TestSQLiteStoreInitIdempotent(t *testing.T) {
	store := newTestSQLiteStore(t)
	if err := store.Init(); err != nil {
		t.Fatalf("second Init() failed: %v", err)
	}
}

func TestSQLiteStoreDegradesWhenUnavailable(t *testing.T) {
	// A db path whose parent cannot be created forces degraded mode.
	blocker := filepath.Join(t.TempDir(), "blocker")
	store := NewSQLiteStore(filepath.Join(blocker, "sub", "relations.db"))

	// Make the parent path a file so MkdirAll fails.
	if err := writeFile(blocker); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := store.Init(); err == nil {
		t.Fatal("Init() should report the failure once")
	}

	// Degraded stores are silent no-ops, never errors.
	if err := store.Add("a", "p", "1"); err != nil {
		t.Errorf("degraded Add() returned error: %v", err)
	}
	objects, err := store.Get("a", "p")
	if err != nil || len(objects) != 0 {
		t.Errorf("degraded Get() = (%v, %v), want empty", objects, err)
	}
	triples, err := store.All()
	if err != nil || len(triples) != 0 {
		t.Errorf("degraded All() = (%v, %v), want empty", triples, err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("degraded Close() returned error: %v", err)
	}
}

func TestSQLiteStoreMigrationVersion(t *testing.T) {
	store := newTestSQLiteStore(t)

	version, err := store.currentMigrationVersion()
	if err != nil {
		t.Fatalf("currentMigrationVersion() failed: %v", err)
	}
	if version != 1 {
		t.Errorf("migration version = %d, want 1", version)
	}
}
