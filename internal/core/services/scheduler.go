package services

import (
	"context"
	"sync"
	"time"

	"github.com/caderno-labs/caderno-cli/internal/core/ports/driving"
	"github.com/caderno-labs/caderno-cli/internal/logger"
)

// DefaultIngestInterval is how often the scheduler re-ingests all
// sources when no interval is configured.
const DefaultIngestInterval = 15 * time.Minute

// Scheduler periodically re-ingests all sources so the index follows
// the directories without manual syncs.
type Scheduler struct {
	interval time.Duration
	ingest   driving.IngestOrchestrator

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. A non-positive interval selects
// DefaultIngestInterval.
func NewScheduler(interval time.Duration, ingest driving.IngestOrchestrator) *Scheduler {
	if interval <= 0 {
		interval = DefaultIngestInterval
	}
	return &Scheduler{
		interval: interval,
		ingest:   ingest,
	}
}

// Start begins the scheduler loop. It blocks until Stop is called or
// ctx is cancelled. Calling Start while running is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	s.wg.Add(1)
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info("Scheduler started, re-ingesting every %s", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.markStopped()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

// Stop shuts the scheduler down and waits for a running pass to
// finish. Safe to call when not running.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

func (s *Scheduler) markStopped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

func (s *Scheduler) runPass(ctx context.Context) {
	reports, err := s.ingest.IngestAll(ctx)
	if err != nil {
		logger.Warn("Scheduled ingestion: %v", err)
	}
	for _, report := range reports {
		if report.DocumentsProcessed > 0 || len(report.Failures) > 0 {
			logger.Info("Scheduled ingestion for %s: %d documents, %d failures",
				report.SourceID, report.DocumentsProcessed, len(report.Failures))
		}
	}
}
