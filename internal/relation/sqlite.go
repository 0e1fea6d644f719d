package relation

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	// writeAttempts bounds the retry loop for a failed append.
	writeAttempts = 3

	// writeBackoff is the base delay between retries (doubles each attempt).
	writeBackoff = 50 * time.Millisecond
)

// SQLiteStore persists triples in a per-workspace SQLite database.
//
// If the database cannot be opened or migrated, the store disables itself:
// Add/Get/All become logged no-ops so learning degrades silently instead of
// failing the query execution that triggered it.
type SQLiteStore struct {
	db       *sql.DB
	dbPath   string
	enabled  bool
	mu       sync.Mutex
	initOnce sync.Once
}

// NewSQLiteStore creates a store backed by the database file at path,
// creating the parent directory if needed.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{dbPath: path, enabled: true}
}

// Init opens the database and runs migrations. Safe to call more than
// once; only the first call does work. A failed init disables the store.
func (s *SQLiteStore) Init() error {
	if !s.enabled {
		return nil
	}

	var initErr error
	s.initOnce.Do(func() {
		if err := os.MkdirAll(filepath.Dir(s.dbPath), 0755); err != nil {
			initErr = fmt.Errorf("failed to create store directory: %w", err)
			s.enabled = false
			return
		}

		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			initErr = fmt.Errorf("failed to open database: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}
		s.db = db

		if err := db.Ping(); err != nil {
			initErr = fmt.Errorf("failed to ping database: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}

		// WAL lets suggestion reads proceed alongside learner appends.
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			log.Printf("Warning: failed to enable WAL: %v", err)
		}
		if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
			log.Printf("Warning: failed to set busy_timeout: %v", err)
		}

		if err := s.runMigrations(); err != nil {
			initErr = fmt.Errorf("failed to run migrations: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
		}
	})

	return initErr
}

// Add appends a triple, retrying transient failures with bounded backoff.
// Exhausted retries are logged and swallowed: a learning write must never
// fail or delay the query execution that triggered it.
func (s *SQLiteStore) Add(subject, predicate, object string) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	for attempt := 0; attempt < writeAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(writeBackoff << (attempt - 1))
		}
		_, err = s.db.Exec(
			`INSERT INTO triples (subject, predicate, object) VALUES (?, ?, ?)`,
			subject, predicate, object,
		)
		if err == nil {
			return nil
		}
	}

	log.Printf("Warning: dropping triple (%s, %s, %s) after %d attempts: %v",
		subject, predicate, object, writeAttempts, err)
	return nil
}

// Get returns all objects for (subject, predicate) in insertion order.
// Read errors degrade to an empty result so a failed lookup only blanks
// the affected suggestion generator.
func (s *SQLiteStore) Get(subject, predicate string) ([]string, error) {
	if !s.enabled || s.db == nil {
		return []string{}, nil
	}

	rows, err := s.db.Query(
		`SELECT object FROM triples WHERE subject = ? AND predicate = ? ORDER BY id`,
		subject, predicate,
	)
	if err != nil {
		log.Printf("Warning: failed to query triples: %v", err)
		return []string{}, nil
	}
	defer rows.Close()

	var objects []string
	for rows.Next() {
		var object string
		if err := rows.Scan(&object); err != nil {
			log.Printf("Warning: failed to scan triple row: %v", err)
			continue
		}
		objects = append(objects, object)
	}
	if objects == nil {
		objects = []string{}
	}
	return objects, nil
}

// All returns every stored triple in insertion order. Full scan; meant
// for out-of-band analytics only.
func (s *SQLiteStore) All() ([]Triple, error) {
	if !s.enabled || s.db == nil {
		return []Triple{}, nil
	}

	rows, err := s.db.Query(`SELECT subject, predicate, object FROM triples ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan triples: %w", err)
	}
	defer rows.Close()

	var triples []Triple
	for rows.Next() {
		var t Triple
		if err := rows.Scan(&t.Subject, &t.Predicate, &t.Object); err != nil {
			log.Printf("Warning: failed to scan triple row: %v", err)
			continue
		}
		triples = append(triples, t)
	}
	if triples == nil {
		triples = []Triple{}
	}
	return triples, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.db = nil
	return nil
}

// runMigrations executes schema migrations in order.
func (s *SQLiteStore) runMigrations() error {
	if err := s.createMigrationsTable(); err != nil {
		return err
	}

	version, err := s.currentMigrationVersion()
	if err != nil {
		return err
	}

	migrations := []migration{
		{version: 1, name: "initial_schema", up: s.migration001InitialSchema},
	}

	for _, m := range migrations {
		if version < m.version {
			log.Printf("Running migration %d: %s", m.version, m.name)
			if err := m.up(); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
			if err := s.setMigrationVersion(m.version, m.name); err != nil {
				return err
			}
		}
	}
	return nil
}

// migration represents a single database migration.
type migration struct {
	version int
	name    string
	up      func() error
}

func (s *SQLiteStore) createMigrationsTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	return err
}

func (s *SQLiteStore) currentMigrationVersion() (int, error) {
	var version int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func (s *SQLiteStore) setMigrationVersion(version int, name string) error {
	_, err := s.db.Exec(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, version, name)
	return err
}

// migration001InitialSchema creates the append-only triples table. There
// is deliberately no UPDATE or DELETE path: history is never rewritten.
func (s *SQLiteStore) migration001InitialSchema() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS triples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			subject TEXT NOT NULL,
			predicate TEXT NOT NULL,
			object TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create triples table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_triples_subject_predicate
		ON triples(subject, predicate)
	`); err != nil {
		return fmt.Errorf("failed to create subject/predicate index: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_triples_predicate
		ON triples(predicate)
	`); err != nil {
		return fmt.Errorf("failed to create predicate index: %w", err)
	}

	return nil
}
