package analyzer

import "strings"

// Dialect abstracts the identifier/keyword heuristics so a stricter,
// dialect-aware parser can replace the default without touching the
// learner or suggestion engine contracts.
type Dialect interface {
	// IsKeyword reports whether an uppercased token is a reserved word
	// rather than an identifier.
	IsKeyword(token string) bool

	// SplitIdentifier splits a (possibly qualified) identifier.
	// For "users.name" it returns ("users", "users.name", true).
	// For a bare identifier it returns ("", token, false): the caller
	// decides how to treat the ambiguity.
	SplitIdentifier(token string) (table, column string, qualified bool)
}

// defaultKeywords covers the ANSI subset the heuristic tokenizer cares about.
// Aggregate function names are included so they are never mistaken for tables.
var defaultKeywords = map[string]bool{
	"SELECT": true, "INSERT": true, "UPDATE": true, "DELETE": true,
	"FROM": true, "INTO": true, "VALUES": true, "SET": true,
	"WHERE": true, "AND": true, "OR": true, "NOT": true, "NULL": true,
	"JOIN": true, "LEFT": true, "RIGHT": true, "INNER": true,
	"OUTER": true, "FULL": true, "CROSS": true, "ON": true, "USING": true,
	"GROUP": true, "ORDER": true, "BY": true, "HAVING": true,
	"LIMIT": true, "OFFSET": true, "DISTINCT": true, "AS": true,
	"UNION": true, "INTERSECT": true, "EXCEPT": true, "ALL": true,
	"WITH": true, "CASE": true, "WHEN": true, "THEN": true, "ELSE": true,
	"END": true, "IN": true, "IS": true, "LIKE": true, "BETWEEN": true,
	"EXISTS": true, "ASC": true, "DESC": true, "OVER": true,
	"PARTITION": true, "TRUE": true, "FALSE": true,
	"COUNT": true, "SUM": true, "AVG": true, "MAX": true, "MIN": true,
	"STDDEV": true, "VARIANCE": true,
}

// HeuristicDialect is the default best-effort dialect. It makes no claim
// of full SQL correctness: a bare identifier is ambiguous between a table
// and a column, and callers record it as both.
type HeuristicDialect struct{}

// IsKeyword reports whether the token is in the ANSI keyword subset.
func (HeuristicDialect) IsKeyword(token string) bool {
	return defaultKeywords[strings.ToUpper(token)]
}

// SplitIdentifier splits a dotted identifier into its table part and the
// fully qualified column name.
func (HeuristicDialect) SplitIdentifier(token string) (string, string, bool) {
	if idx := strings.Index(token, "."); idx > 0 && idx < len(token)-1 {
		return token[:idx], token, true
	}
	return "", token, false
}
