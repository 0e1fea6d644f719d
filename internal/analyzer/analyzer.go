/*
Package analyzer extracts structural features from SQL query text.

The analyzer is a pure function over the query string: statement type,
referenced tables and columns, joins, aggregations, filters, syntactic
patterns, and an additive complexity score. Parsing is heuristic and
best-effort; malformed input degrades to an empty analysis with type
UNKNOWN instead of an error.
*/
package analyzer

import (
	"regexp"
	"strings"
)

// StatementType classifies a statement by its leading keyword.
type StatementType string

const (
	StatementSelect  StatementType = "SELECT"
	StatementInsert  StatementType = "INSERT"
	StatementUpdate  StatementType = "UPDATE"
	StatementDelete  StatementType = "DELETE"
	StatementUnknown StatementType = "UNKNOWN"
)

// Join describes a join between two tables.
type Join struct {
	LeftTable  string `json:"left_table"`
	RightTable string `json:"right_table"`
	JoinType   string `json:"join_type"`
}

// Aggregation describes an aggregate function call and its argument.
type Aggregation struct {
	Function string `json:"function"`
	Column   string `json:"column"`
}

// Filter describes a WHERE/HAVING predicate column and its operator.
type Filter struct {
	Column   string `json:"column"`
	Operator string `json:"operator"`
}

// Analysis is the structural feature set of a single query. It is
// constructed fresh on every Analyze call and never persisted directly;
// only facts derived from it are stored.
type Analysis struct {
	Type            StatementType `json:"type"`
	Patterns        []string      `json:"patterns"`
	Tables          []string      `json:"tables"`
	Columns         []string      `json:"columns"`
	Joins           []Join        `json:"joins"`
	Aggregations    []Aggregation `json:"aggregations"`
	Filters         []Filter      `json:"filters"`
	ComplexityScore int           `json:"complexity_score"`
}

// HasPattern reports whether the named pattern was detected.
func (a Analysis) HasPattern(name string) bool {
	for _, p := range a.Patterns {
		if p == name {
			return true
		}
	}
	return false
}

// HasTable reports whether the table was referenced.
func (a Analysis) HasTable(name string) bool {
	for _, t := range a.Tables {
		if t == name {
			return true
		}
	}
	return false
}

// aggregateFunctions are scanned for in the uppercased statement text.
var aggregateFunctions = []string{"COUNT", "SUM", "AVG", "MAX", "MIN", "STDDEV", "VARIANCE"}

// joinModifiers qualify a JOIN keyword into a specific join type.
var joinModifiers = map[string]bool{
	"LEFT": true, "RIGHT": true, "INNER": true,
	"OUTER": true, "FULL": true, "CROSS": true,
}

// comparison operators recognized in filter extraction.
var filterOperators = map[string]bool{
	"=": true, "!=": true, "<>": true, "<": true, ">": true,
	"<=": true, ">=": true, "LIKE": true, "IN": true,
	"BETWEEN": true, "IS": true,
}

var aggregateCallRe = regexp.MustCompile(`(COUNT|SUM|AVG|MAX|MIN|STDDEV|VARIANCE)\s*\(\s*([^)]*?)\s*\)`)

// Analyzer turns SQL text into a structural Analysis.
type Analyzer struct {
	dialect Dialect
}

// New returns an analyzer using the default heuristic dialect.
func New() *Analyzer {
	return &Analyzer{dialect: HeuristicDialect{}}
}

// NewWithDialect returns an analyzer with a custom dialect strategy.
func NewWithDialect(d Dialect) *Analyzer {
	if d == nil {
		d = HeuristicDialect{}
	}
	return &Analyzer{dialect: d}
}

// Analyze extracts the structural feature set from sqlText. It never
// fails: unparsable input yields an Analysis with empty feature sets and
// type UNKNOWN.
func (a *Analyzer) Analyze(sqlText string) Analysis {
	analysis := Analysis{
		Type:         StatementUnknown,
		Patterns:     []string{},
		Tables:       []string{},
		Columns:      []string{},
		Joins:        []Join{},
		Aggregations: []Aggregation{},
		Filters:      []Filter{},
	}

	tokens := tokenize(sqlText)
	if len(tokens) == 0 {
		return analysis
	}

	analysis.Type = statementType(tokens[0])

	upper := strings.ToUpper(sqlText)
	seenPattern := map[string]bool{}
	addPattern := func(name string) {
		if !seenPattern[name] {
			seenPattern[name] = true
			analysis.Patterns = append(analysis.Patterns, name)
		}
	}

	a.walkKeywords(tokens, addPattern)
	a.collectIdentifiers(tokens, &analysis)
	a.collectJoins(tokens, &analysis)
	a.collectFilters(tokens, &analysis)

	// Aggregations come from a text scan rather than the token walk so the
	// parenthesized argument can be captured verbatim.
	for _, m := range aggregateCallRe.FindAllStringSubmatch(upper, -1) {
		addPattern(m[1] + "_AGGREGATION")
		analysis.Aggregations = append(analysis.Aggregations, Aggregation{
			Function: m[1],
			Column:   strings.TrimSpace(m[2]),
		})
	}

	analysis.ComplexityScore = complexity(analysis, upper)
	return analysis
}

// statementType maps the leading token to a statement type.
func statementType(first string) StatementType {
	switch strings.ToUpper(first) {
	case "SELECT":
		return StatementSelect
	case "INSERT":
		return StatementInsert
	case "UPDATE":
		return StatementUpdate
	case "DELETE":
		return StatementDelete
	default:
		return StatementUnknown
	}
}

// walkKeywords maps keyword tokens to named patterns.
func (a *Analyzer) walkKeywords(tokens []string, addPattern func(string)) {
	for i, tok := range tokens {
		up := strings.ToUpper(tok)
		switch up {
		case "JOIN":
			if i > 0 && joinModifiers[strings.ToUpper(tokens[i-1])] {
				addPattern(strings.ToUpper(tokens[i-1]) + "_JOIN_PATTERN")
			} else {
				addPattern("JOIN_PATTERN")
			}
		case "GROUP", "ORDER":
			if i+1 < len(tokens) && strings.EqualFold(tokens[i+1], "BY") {
				addPattern(up + "_BY_PATTERN")
			}
		case "HAVING":
			addPattern("HAVING_PATTERN")
		case "UNION", "INTERSECT", "EXCEPT":
			addPattern(up + "_PATTERN")
		case "WITH":
			if i == 0 {
				addPattern("CTE_PATTERN")
			}
		}
	}
}

// collectIdentifiers applies the dialect heuristic to every non-keyword
// token. A dotted identifier contributes its table part and the qualified
// column; a bare identifier is ambiguous and lands in both sets. This
// imprecision is accepted by design.
func (a *Analyzer) collectIdentifiers(tokens []string, analysis *Analysis) {
	seenTable := map[string]bool{}
	seenColumn := map[string]bool{}
	addTable := func(t string) {
		if t != "" && !seenTable[t] {
			seenTable[t] = true
			analysis.Tables = append(analysis.Tables, t)
		}
	}
	addColumn := func(c string) {
		if c != "" && !seenColumn[c] {
			seenColumn[c] = true
			analysis.Columns = append(analysis.Columns, c)
		}
	}

	for _, tok := range tokens {
		if !isIdentifier(tok, a.dialect) {
			continue
		}
		table, column, qualified := a.dialect.SplitIdentifier(tok)
		if qualified {
			addTable(table)
			addColumn(column)
		} else {
			addTable(column)
			addColumn(column)
		}
	}
}

// collectJoins pairs each JOIN keyword with the identifier that follows it
// and the last table-like identifier before it.
func (a *Analyzer) collectJoins(tokens []string, analysis *Analysis) {
	lastTable := ""
	for i, tok := range tokens {
		up := strings.ToUpper(tok)
		if up != "JOIN" {
			if isIdentifier(tok, a.dialect) {
				if t, _, qualified := a.dialect.SplitIdentifier(tok); qualified {
					lastTable = t
				} else {
					lastTable = tok
				}
			}
			continue
		}

		joinType := "INNER"
		if i > 0 && joinModifiers[strings.ToUpper(tokens[i-1])] {
			joinType = strings.ToUpper(tokens[i-1])
		}

		right := ""
		for j := i + 1; j < len(tokens); j++ {
			if isIdentifier(tokens[j], a.dialect) {
				right = tokens[j]
				break
			}
		}
		if right == "" || lastTable == "" || right == lastTable {
			continue
		}
		analysis.Joins = append(analysis.Joins, Join{
			LeftTable:  lastTable,
			RightTable: right,
			JoinType:   joinType,
		})
		lastTable = right
	}
}

// collectFilters records column/operator pairs appearing after WHERE or
// HAVING: an identifier immediately followed by a comparison operator.
func (a *Analyzer) collectFilters(tokens []string, analysis *Analysis) {
	inFilter := false
	for i, tok := range tokens {
		up := strings.ToUpper(tok)
		switch up {
		case "WHERE", "HAVING":
			inFilter = true
			continue
		case "GROUP", "ORDER", "LIMIT", "UNION", "INTERSECT", "EXCEPT":
			inFilter = false
			continue
		}
		if !inFilter || i+1 >= len(tokens) {
			continue
		}
		next := strings.ToUpper(tokens[i+1])
		if isIdentifier(tok, a.dialect) && filterOperators[next] {
			analysis.Filters = append(analysis.Filters, Filter{
				Column:   tok,
				Operator: next,
			})
		}
	}
}

// complexity computes the additive score described in the data model:
// base 1 for SELECT / 2 for mutating statements, plus weighted feature
// counts. Adding any feature never decreases the score.
func complexity(a Analysis, upper string) int {
	score := 1
	if a.Type == StatementInsert || a.Type == StatementUpdate || a.Type == StatementDelete {
		score = 2
	}
	score += 2 * len(a.Patterns)
	score += len(a.Tables)
	score += 3 * len(a.Joins)
	score += 2 * len(a.Aggregations)

	if n := strings.Count(upper, "SELECT"); n > 1 {
		score += 5 * (n - 1) // nested subqueries
	}
	if strings.Contains(upper, "OVER") {
		score += 4 // window function marker
	}
	return score
}

// isIdentifier reports whether a token looks like a table or column name:
// not a keyword, not a literal, starts with a letter or underscore.
func isIdentifier(tok string, d Dialect) bool {
	if tok == "" || d.IsKeyword(tok) {
		return false
	}
	c := tok[0]
	if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
		return false
	}
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			continue
		}
		return false
	}
	return true
}

// tokenize splits the statement into keyword, identifier, operator and
// literal tokens. String literals are dropped so their contents are never
// mistaken for identifiers; multi-character comparison operators are kept
// intact.
func tokenize(sqlText string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	runes := []rune(sqlText)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\'' || r == '"':
			flush()
			// Skip to the closing quote; unterminated literals run to EOF.
			for i++; i < len(runes) && runes[i] != r; i++ {
			}
		case r == '_' || r == '.' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			cur.WriteRune(r)
		case r == '<' || r == '>' || r == '!':
			flush()
			op := string(r)
			if i+1 < len(runes) && (runes[i+1] == '=' || (r == '<' && runes[i+1] == '>')) {
				op += string(runes[i+1])
				i++
			}
			tokens = append(tokens, op)
		case r == '=':
			flush()
			tokens = append(tokens, "=")
		default:
			flush()
		}
	}
	flush()
	return tokens
}
