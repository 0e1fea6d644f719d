package learner

import (
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/l0l1/sqlsense/internal/analyzer"
	"github.com/l0l1/sqlsense/internal/relation"
)

const (
	// eventQueueSize is the buffer size for the event queue.
	// If full, events are dropped (non-blocking).
	eventQueueSize = 1000

	// batchFlushSize is the number of events that triggers an immediate flush.
	batchFlushSize = 10

	// flushInterval is how often pending events are flushed to the store.
	flushInterval = 50 * time.Millisecond
)

// HistorySink receives the raw query corpus for full-text lookup. The
// learner treats it as optional and best-effort.
type HistorySink interface {
	Put(key, query, queryType string) error
}

// Learner consumes execution events and writes the derived facts into the
// relation store in the background.
type Learner struct {
	store      relation.Store
	analyzer   *analyzer.Analyzer
	history    HistorySink
	eventQueue chan ExecutionEvent
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	enabled    bool
	mu         sync.RWMutex
}

// New creates a learner writing to the given store and starts its
// background worker. Callers must Stop it to flush pending events.
func New(store relation.Store, history HistorySink) *Learner {
	l := &Learner{
		store:      store,
		analyzer:   analyzer.New(),
		history:    history,
		eventQueue: make(chan ExecutionEvent, eventQueueSize),
		stopChan:   make(chan struct{}),
		enabled:    true,
	}

	l.wg.Add(1)
	go l.processEvents()

	return l
}

// Record queues an execution event for learning (non-blocking). If the
// queue is full the event is dropped and a warning is logged; the caller
// is never delayed.
func (l *Learner) Record(event ExecutionEvent) {
	if !l.isEnabled() {
		return
	}

	select {
	case l.eventQueue <- event:
	default:
		log.Printf("Warning: learning queue full, dropping query event")
	}
}

// RecordSync writes an event's facts immediately, bypassing the queue.
// Used by callers that need read-your-writes, such as CLI one-shots.
func (l *Learner) RecordSync(event ExecutionEvent) {
	if !l.isEnabled() {
		return
	}
	l.learn(event)
}

// Stop shuts the learner down, draining and flushing remaining events.
func (l *Learner) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
}

// Disable stops accepting new events.
func (l *Learner) Disable() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = false
}

// Enable resumes accepting events.
func (l *Learner) Enable() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = true
}

// IsEnabled reports whether the learner accepts events.
func (l *Learner) IsEnabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.enabled
}

func (l *Learner) isEnabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.enabled && l.store != nil
}

// QueueDepth returns the number of events waiting in the queue.
func (l *Learner) QueueDepth() int {
	return len(l.eventQueue)
}

// processEvents runs in the background, batching and flushing events.
func (l *Learner) processEvents() {
	defer l.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]ExecutionEvent, 0, batchFlushSize)

	for {
		select {
		case event, ok := <-l.eventQueue:
			if !ok {
				l.flush(batch)
				return
			}
			batch = append(batch, event)
			if len(batch) >= batchFlushSize {
				l.flush(batch)
				batch = make([]ExecutionEvent, 0, batchFlushSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				l.flush(batch)
				batch = make([]ExecutionEvent, 0, batchFlushSize)
			}

		case <-l.stopChan:
			// Drain whatever is still queued, then flush and exit.
			for {
				select {
				case event := <-l.eventQueue:
					batch = append(batch, event)
					if len(batch) >= batchFlushSize {
						l.flush(batch)
						batch = make([]ExecutionEvent, 0, batchFlushSize)
					}
				default:
					l.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes a batch of events to the store.
func (l *Learner) flush(events []ExecutionEvent) {
	for _, event := range events {
		l.learn(event)
	}
}

// learn decomposes one event into facts. Store writes are best-effort:
// the store retries internally and a write that still fails is logged by
// the store, never surfaced here.
func (l *Learner) learn(event ExecutionEvent) {
	key := QueryKey(event.Query)
	a := l.analyzer.Analyze(event.Query)

	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	// Scalar facts. These are written even when analysis degraded to an
	// empty feature set (query_type becomes UNKNOWN).
	l.add(key, relation.PredicateHasSQL, event.Query)
	l.add(key, relation.PredicateExecutionTime, strconv.FormatFloat(event.ExecutionTimeMs, 'f', -1, 64))
	l.add(key, relation.PredicateResultCount, strconv.Itoa(event.ResultCount))
	l.add(key, relation.PredicateSuccess, strconv.FormatBool(event.Success))
	l.add(key, relation.PredicateTimestamp, ts.UTC().Format(time.RFC3339))
	l.add(key, relation.PredicateQueryType, string(a.Type))
	l.add(key, relation.PredicateComplexity, strconv.Itoa(a.ComplexityScore))

	// Structural usage facts with reverse edges for table/column lookups.
	for _, p := range a.Patterns {
		l.add(key, relation.PredicateUsesPattern, p)
	}
	for _, t := range a.Tables {
		l.add(key, relation.PredicateUsesTable, t)
		l.add(t, relation.PredicateUsedByQuery, key)
	}
	for _, c := range a.Columns {
		l.add(key, relation.PredicateUsesColumn, c)
		l.add(c, relation.PredicateUsedByQuery, key)
		// Qualified columns also index the table -> column linkage that
		// backs column suggestions.
		if table, column, qualified := (analyzer.HeuristicDialect{}).SplitIdentifier(c); qualified {
			l.add(table, relation.PredicateCommonlySelects, column)
		}
	}

	for _, j := range a.Joins {
		l.add(j.LeftTable, relation.JoinPredicate(j.JoinType), j.RightTable)
		l.add(key, relation.PredicatePerformsJoin,
			j.LeftTable+"_"+strings.ToLower(j.JoinType)+"_"+j.RightTable)
	}

	for _, agg := range a.Aggregations {
		l.add(key, relation.PredicateUsesAggregation, agg.Function)
		if agg.Column != "" {
			l.add(key, relation.PredicateAggregatesCol, agg.Column)
		}
	}

	for _, f := range a.Filters {
		l.add(key, relation.PredicateFiltersOn, f.Column)
		l.add(key, relation.PredicateUsesOperator, f.Operator)
	}

	if event.UserID != "" {
		l.add(key, relation.PredicateWrittenBy, event.UserID)
		if event.Department != "" {
			l.add(event.UserID, relation.PredicateWorksIn, event.Department)
			l.add(key, relation.PredicateDepartmentContext, event.Department)
		}
	}

	// Performance learning.
	class := relation.ClassifyExecutionTime(event.ExecutionTimeMs)
	observation := relation.PerformanceObject(class, event.ExecutionTimeMs)
	l.add(key, relation.PredicatePerformanceClass, string(class))
	for _, p := range a.Patterns {
		l.add(p, relation.PredicateObservedPerformance, observation)
	}
	for _, t := range a.Tables {
		l.add(t, relation.PredicateQueryPerformance, observation)
	}

	// Co-occurrence learning: symmetric edges per unordered table pair,
	// plus pattern x table affinity.
	for i := 0; i < len(a.Tables); i++ {
		for j := i + 1; j < len(a.Tables); j++ {
			l.add(a.Tables[i], relation.PredicateCoOccursWith, a.Tables[j])
			l.add(a.Tables[j], relation.PredicateCoOccursWith, a.Tables[i])
		}
	}
	for _, p := range a.Patterns {
		for _, t := range a.Tables {
			l.add(p, relation.PredicateCommonlyUsedWith, t)
		}
	}

	if l.history != nil {
		if err := l.history.Put(key, event.Query, string(a.Type)); err != nil {
			log.Printf("Warning: failed to index query history: %v", err)
		}
	}
}

func (l *Learner) add(subject, predicate, object string) {
	if err := l.store.Add(subject, predicate, object); err != nil {
		log.Printf("Warning: failed to store fact (%s, %s): %v", subject, predicate, err)
	}
}
