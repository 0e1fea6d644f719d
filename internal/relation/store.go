/*
Package relation implements the append-only multi-relation graph that
holds everything the system learns about executed queries.

Facts are (subject, predicate, object) string triples. The store is a
multiset: duplicates are permitted and meaningful, since frequency-based
signals (co-occurrence counts, join-pattern counts) emerge purely from
triple multiplicity. No triple is ever mutated or deleted.

Two backends are provided: an in-process MemoryStore and a SQLite-backed
SQLiteStore (modernc.org/sqlite, pure Go). Both keep insertion order.
*/
package relation

// Triple is a single stored fact.
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// Store is the contract every relation backend must satisfy.
//
// Add appends a triple and must not fail the caller except on
// unrecoverable backend errors. Get returns all objects for a
// (subject, predicate) pair in insertion order, empty if none. All is a
// full scan used only by out-of-band analytics, never on the synchronous
// suggestion path.
type Store interface {
	Add(subject, predicate, object string) error
	Get(subject, predicate string) ([]string, error)
	All() ([]Triple, error)
	Close() error
}

// CountByObject tallies the objects of a (subject, predicate) lookup.
// Repeated triples are how the store expresses frequency, so this is the
// standard way to turn a fact family into a ranking signal.
func CountByObject(s Store, subject, predicate string) (map[string]int, error) {
	objects, err := s.Get(subject, predicate)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(objects))
	for _, o := range objects {
		counts[o]++
	}
	return counts, nil
}
