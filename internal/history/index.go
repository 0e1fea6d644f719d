/*
Package history keeps the corpus of recorded query texts searchable.

Every learned query is indexed by its content-derived key; Similar
retrieves previously executed queries that match an in-progress fragment,
ranked by full-text relevance. This complements the relation graph: the
graph answers "what goes with what", the history index answers "what did
someone already write like this".
*/
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/index/scorch"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Entry is one prior query returned from a similarity lookup.
type Entry struct {
	Key       string  `json:"key"`
	Query     string  `json:"query"`
	QueryType string  `json:"query_type"`
	Score     float64 `json:"score"`
}

// Index is a full-text index over recorded query texts.
type Index struct {
	bleveIndex bleve.Index
	mu         sync.RWMutex
	indexPath  string
}

// NewMemIndex creates an in-memory index for ephemeral workspaces and tests.
func NewMemIndex() (*Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create history index: %w", err)
	}
	return &Index{bleveIndex: index}, nil
}

// NewIndexAtPath creates or opens a persistent index rooted at indexPath.
func NewIndexAtPath(indexPath string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(indexPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	index, err := bleve.NewUsing(indexPath, buildIndexMapping(), scorch.Name, scorch.Name, nil)
	if err != nil {
		// Index already exists on disk; open it instead.
		index, err = bleve.Open(indexPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open/create history index: %w", err)
		}
	}
	return &Index{bleveIndex: index, indexPath: indexPath}, nil
}

// buildIndexMapping creates the Bleve mapping for query documents.
func buildIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	queryField := bleve.NewTextFieldMapping()
	docMapping.AddFieldMappingsAt("query", queryField)

	typeField := bleve.NewTextFieldMapping()
	docMapping.AddFieldMappingsAt("type", typeField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

// Put indexes a recorded query under its key. Re-recording the same
// query overwrites the same document, so the corpus stays deduplicated
// by content.
func (i *Index) Put(key, query, queryType string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	doc := map[string]interface{}{
		"query": query,
		"type":  queryType,
	}
	if err := i.bleveIndex.Index(key, doc); err != nil {
		return fmt.Errorf("failed to index query %s: %w", key, err)
	}
	return nil
}

// Similar returns up to limit previously recorded queries matching the
// given fragment, best match first.
func (i *Index) Similar(text string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 5
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	query := bleve.NewMatchQuery(text)
	query.SetField("query")

	request := bleve.NewSearchRequestOptions(query, limit, 0, false)
	request.Fields = []string{"query", "type"}

	results, err := i.bleveIndex.Search(request)
	if err != nil {
		return nil, fmt.Errorf("history search failed: %w", err)
	}

	entries := make([]Entry, 0, len(results.Hits))
	for _, hit := range results.Hits {
		entry := Entry{Key: hit.ID, Score: hit.Score}
		if q, ok := hit.Fields["query"].(string); ok {
			entry.Query = q
		}
		if t, ok := hit.Fields["type"].(string); ok {
			entry.QueryType = t
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Count returns the number of indexed queries.
func (i *Index) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	count, err := i.bleveIndex.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}
	return count, nil
}

// Close closes the index and releases its resources.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.bleveIndex != nil {
		return i.bleveIndex.Close()
	}
	return nil
}
