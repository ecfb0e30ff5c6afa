package services

import (
	"sync"
	"time"

	"github.com/geordievannese/garuda-calculator/server/internal/metrics"

	"go.uber.org/zap"
)

// PageCounter reports how many calculator pages are open.
type PageCounter interface {
	Len() int
}

// Scheduler periodically samples usage into the metrics registry and the log.
type Scheduler struct {
	log      *zap.Logger
	pages    PageCounter
	metrics  *metrics.Registry
	interval time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

func NewScheduler(log *zap.Logger, pages PageCounter, m *metrics.Registry, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		log:      log,
		pages:    pages,
		metrics:  m,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start runs the scheduler in a goroutine until Stop is called.
func (s *Scheduler) Start() {
	s.log.Info("Starting usage scheduler...", zap.Duration("interval", s.interval))
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runUsageSample()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop ends the loop started by Start. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Scheduler) runUsageSample() {
	live := s.pages.Len()
	s.metrics.Update(metrics.PagesLive, int64(live))

	s.log.Debug("Calculator usage",
		zap.Int("live_pages", live),
		zap.Int64("submissions", s.metrics.Count(metrics.Submissions)),
		zap.Int64("submission_errors", s.metrics.Count(metrics.SubmissionErrors)),
		zap.Int64("predictions_served", s.metrics.Count(metrics.PredictionsServed)),
	)
}
