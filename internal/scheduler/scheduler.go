package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"NextDay/internal/metrics"
	"NextDay/internal/session"
	"NextDay/internal/store"
)

// Scheduler manages the housekeeping cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Cache    store.SeriesCache
	Sessions *session.Manager
	Metrics  *metrics.Metrics
	Ctx      context.Context

	// CacheTTL is the age after which cached series are purged.
	CacheTTL time.Duration
	// SessionIdle is how long a round may sit untouched before it is dropped.
	SessionIdle time.Duration
	Now         func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, cache store.SeriesCache, sessions *session.Manager, met *metrics.Metrics, cacheTTL, sessionIdle time.Duration) *Scheduler {
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Cache:       cache,
		Sessions:    sessions,
		Metrics:     met,
		Ctx:         ctx,
		CacheTTL:    cacheTTL,
		SessionIdle: sessionIdle,
		Now:         time.Now,
	}
}

// RegisterAll registers the purge and sweep tasks.
func (s *Scheduler) RegisterAll(purgeCron, sweepCron string) error {
	if _, err := s.Cron.AddFunc(purgeCron, s.purgeTask); err != nil {
		return fmt.Errorf("register purge task: %w", err)
	}
	if _, err := s.Cron.AddFunc(sweepCron, s.sweepTask); err != nil {
		return fmt.Errorf("register sweep task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes both tasks immediately.
func (s *Scheduler) RunNow() {
	s.purgeTask()
	s.sweepTask()
}

func (s *Scheduler) purgeTask() {
	cutoff := s.Now().Add(-s.CacheTTL)
	n, err := s.Cache.Purge(s.Ctx, cutoff)
	if err != nil {
		log.Printf("[ERROR] purge cache: %v", err)
		return
	}
	if s.Metrics != nil {
		s.Metrics.CachePurged.Add(float64(n))
	}
	log.Printf("[INFO] purged %d cached series older than %s", n, cutoff.Format(time.RFC3339))
}

func (s *Scheduler) sweepTask() {
	if s.Sessions == nil {
		return
	}
	n := s.Sessions.Sweep(s.SessionIdle)
	if n > 0 {
		log.Printf("[INFO] swept %d idle rounds", n)
	}
}
