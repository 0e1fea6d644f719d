/*
Package learner records executed queries as facts in the relation store.

Recording is fire-and-forget: events are queued onto a background worker
so the query execution that triggered them is never delayed or failed by
learning. Each event is analyzed structurally and decomposed into the
scalar, usage, join, performance and co-occurrence fact families.
*/
package learner

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ExecutionEvent describes one executed query handed to the learner.
// Query text is expected to be PII-sanitized by the caller before it
// reaches this package.
type ExecutionEvent struct {
	// Query is the executed SQL text.
	Query string

	// ExecutionTimeMs is the measured execution time in milliseconds.
	ExecutionTimeMs float64

	// ResultCount is the number of rows the query returned or affected.
	ResultCount int

	// Success indicates whether execution completed without error.
	Success bool

	// UserID optionally attributes the query to its author.
	UserID string

	// Department optionally attributes the query to an organizational unit.
	Department string

	// Timestamp is when the query executed. Zero means "now".
	Timestamp time.Time
}

// QueryKey derives the content-derived identity of a query from its text.
// A full-width SHA-256 hash is used deliberately: a narrow or truncated
// hash risks silently merging the learned facts of unrelated queries.
func QueryKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return "query_" + hex.EncodeToString(sum[:])
}
