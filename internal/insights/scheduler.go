package insights

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/adhocore/gronx"
)

// checkInterval is how often the scheduler evaluates the cron expression.
// Cron granularity is one minute, so checking once a minute is enough.
const checkInterval = time.Minute

// Scheduler periodically recomputes workspace insights outside the
// request path and hands them to a sink (a dashboard push, a log line, a
// cache refresh). It stays idle unless a cron expression is configured.
type Scheduler struct {
	aggregator *Aggregator
	cronExpr   string
	sink       func(WorkspaceInsights)
	gron       *gronx.Gronx

	mu       sync.Mutex
	stopChan chan struct{}
	started  bool
}

// NewScheduler creates a scheduler gated on the given cron expression.
func NewScheduler(aggregator *Aggregator, cronExpr string, sink func(WorkspaceInsights)) (*Scheduler, error) {
	g := gronx.New()
	if cronExpr != "" && !g.IsValid(cronExpr) {
		return nil, fmt.Errorf("invalid insights cron expression: %q", cronExpr)
	}
	return &Scheduler{
		aggregator: aggregator,
		cronExpr:   cronExpr,
		sink:       sink,
		gron:       g,
		stopChan:   make(chan struct{}),
	}, nil
}

// Start launches the background loop. A scheduler without a cron
// expression starts as a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.cronExpr == "" {
		return
	}
	s.started = true
	go s.runLoop()
}

// Stop terminates the background loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	close(s.stopChan)
}

func (s *Scheduler) runLoop() {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case now := <-ticker.C:
			due, err := s.gron.IsDue(s.cronExpr, now)
			if err != nil {
				log.Printf("Warning: insights cron check failed: %v", err)
				continue
			}
			if !due {
				continue
			}
			s.runOnce()
		}
	}
}

// runOnce computes one insights snapshot and delivers it to the sink.
func (s *Scheduler) runOnce() {
	snapshot, err := s.aggregator.Insights()
	if err != nil {
		log.Printf("Warning: scheduled insights scan failed: %v", err)
		return
	}
	if s.sink != nil {
		s.sink(snapshot)
	}
}
