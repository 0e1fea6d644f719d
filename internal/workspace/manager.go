/*
Package workspace ties the learning components together per workspace.

Each workspace is an isolated learning context: it exclusively owns its
relation store, learner, suggestion engine, history index and insights
aggregator, all rooted under <dataDir>/<id>/. There are no process-wide
singletons; every handle is explicitly constructed and torn down through
the Manager.
*/
package workspace

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/l0l1/sqlsense/internal/history"
	"github.com/l0l1/sqlsense/internal/insights"
	"github.com/l0l1/sqlsense/internal/learner"
	"github.com/l0l1/sqlsense/internal/relation"
	"github.com/l0l1/sqlsense/internal/suggest"
)

// Workspace bundles the per-context learning components.
type Workspace struct {
	ID         string
	Store      relation.Store
	Learner    *learner.Learner
	Engine     *suggest.Engine
	History    *history.Index
	Aggregator *insights.Aggregator
}

// Close shuts the workspace down: the learner is stopped first so its
// final flush still reaches the store and history index.
func (w *Workspace) Close() error {
	var errs []error
	if w.Learner != nil {
		w.Learner.Stop()
	}
	if w.History != nil {
		if err := w.History.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close history: %w", err))
		}
	}
	if w.Store != nil {
		if err := w.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Manager is the registry of open workspaces.
type Manager struct {
	dataDir  string
	ordering suggest.Ordering

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// NewManager creates a manager rooting persistent workspaces at dataDir.
// An empty dataDir makes every workspace ephemeral (in-memory store and
// history index), which is what tests and one-shot usage want.
func NewManager(dataDir string, ordering suggest.Ordering) *Manager {
	return &Manager{
		dataDir:    dataDir,
		ordering:   ordering,
		workspaces: make(map[string]*Workspace),
	}
}

// Open returns the workspace with the given id, constructing it on first
// use.
func (m *Manager) Open(id string) (*Workspace, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if ws, ok := m.workspaces[id]; ok {
		return ws, nil
	}

	ws, err := m.build(id)
	if err != nil {
		return nil, err
	}
	m.workspaces[id] = ws
	return ws, nil
}

// build constructs the component bundle for one workspace.
func (m *Manager) build(id string) (*Workspace, error) {
	var (
		store relation.Store
		hist  *history.Index
		err   error
	)

	if m.dataDir == "" {
		store = relation.NewMemoryStore()
		hist, err = history.NewMemIndex()
		if err != nil {
			return nil, fmt.Errorf("workspace %s: %w", id, err)
		}
	} else {
		root := filepath.Join(m.dataDir, id)
		sqlStore := relation.NewSQLiteStore(filepath.Join(root, "relations.db"))
		if err := sqlStore.Init(); err != nil {
			// The store has disabled itself; learning degrades to no-ops
			// but the workspace stays usable.
			log.Printf("Warning: workspace %s store degraded: %v", id, err)
		}
		store = sqlStore

		hist, err = history.NewIndexAtPath(filepath.Join(root, "history.bleve"))
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("workspace %s: %w", id, err)
		}
	}

	return &Workspace{
		ID:         id,
		Store:      store,
		Learner:    learner.New(store, hist),
		Engine:     suggest.NewEngine(store, m.ordering),
		History:    hist,
		Aggregator: insights.NewAggregator(store),
	}, nil
}

// Get returns an already-open workspace.
func (m *Manager) Get(id string) (*Workspace, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws, ok := m.workspaces[id]
	return ws, ok
}

// List returns the ids of all workspaces, open or on disk.
func (m *Manager) List() []string {
	seen := map[string]bool{}

	m.mu.Lock()
	for id := range m.workspaces {
		seen[id] = true
	}
	m.mu.Unlock()

	if m.dataDir != "" {
		if entries, err := os.ReadDir(m.dataDir); err == nil {
			for _, e := range entries {
				if e.IsDir() {
					seen[e.Name()] = true
				}
			}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CloseAll closes every open workspace. The manager remains usable;
// closed workspaces are rebuilt on next Open.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for id, ws := range m.workspaces {
		if err := ws.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("workspace %s: %w", id, err)
		}
		delete(m.workspaces, id)
	}
	return firstErr
}

// Delete tears a workspace down and removes its on-disk data. The
// relation store itself is append-only; deletion is a whole-workspace
// lifecycle operation, not a fact mutation.
func (m *Manager) Delete(id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	m.mu.Lock()
	if ws, ok := m.workspaces[id]; ok {
		if err := ws.Close(); err != nil {
			log.Printf("Warning: closing workspace %s before delete: %v", id, err)
		}
		delete(m.workspaces, id)
	}
	m.mu.Unlock()

	if m.dataDir == "" {
		return nil
	}
	if err := os.RemoveAll(filepath.Join(m.dataDir, id)); err != nil {
		return fmt.Errorf("failed to remove workspace data: %w", err)
	}
	return nil
}

// validateID keeps workspace ids filesystem-safe.
func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("workspace id required")
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c == '_' || c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			continue
		}
		return fmt.Errorf("invalid workspace id %q: only letters, digits, '-' and '_' are allowed", id)
	}
	return nil
}
