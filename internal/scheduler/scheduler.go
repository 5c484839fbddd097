package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leozw/domainy/internal/config"
	"github.com/leozw/domainy/internal/core"
	"github.com/leozw/domainy/internal/queue"
)

type Queue interface {
	Push(ctx context.Context, job *queue.Job) error
	Pop(ctx context.Context, timeout time.Duration) (*queue.Job, error)
	Length(ctx context.Context) (int64, error)
}

// Refresher is the part of the domain service the scheduler and workers drive.
type Refresher interface {
	DueForRefresh(ctx context.Context, maxAge time.Duration, exclude []uuid.UUID, limit int) ([]*core.Domain, error)
	RefreshDomain(ctx context.Context, userID, domainID uuid.UUID) (*core.DomainWithStatus, *core.WhoisResult, error)
}

type Recorder interface {
	RecordRefreshJob(result string)
	SetQueueLength(n int64)
}

// Scheduler periodically enqueues a refresh job for every domain whose
// WHOIS data is older than RefreshAfter.
type Scheduler struct {
	refresher Refresher
	queue     Queue
	metrics   Recorder
	logger    *zap.Logger
	config    config.SchedulerConfig
	now       func() time.Time

	mu       sync.Mutex
	enqueued map[uuid.UUID]time.Time
}

func NewScheduler(refresher Refresher, q Queue, metrics Recorder, logger *zap.Logger, cfg config.SchedulerConfig) *Scheduler {
	return &Scheduler{
		refresher: refresher,
		queue:     q,
		metrics:   metrics,
		logger:    logger.With(zap.String("component", "scheduler")),
		config:    cfg,
		now:       time.Now,
		enqueued:  make(map[uuid.UUID]time.Time),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting scheduler",
		zap.Duration("poll_interval", s.config.PollInterval),
		zap.Duration("refresh_after", s.config.RefreshAfter),
	)

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	s.scheduleRefreshes(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stopping scheduler")
			return
		case <-ticker.C:
			s.scheduleRefreshes(ctx)
		}
	}
}

// scheduleRefreshes returns the number of jobs pushed. A domain is not
// enqueued twice within RefreshAfter, so a failing lookup is retried at
// most once per window. Pending domains are excluded from the due query
// itself so they never fill a batch.
func (s *Scheduler) scheduleRefreshes(ctx context.Context) int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make([]uuid.UUID, 0, len(s.enqueued))
	for id, at := range s.enqueued {
		if now.Sub(at) >= s.config.RefreshAfter {
			delete(s.enqueued, id)
			continue
		}
		pending = append(pending, id)
	}

	domains, err := s.refresher.DueForRefresh(ctx, s.config.RefreshAfter, pending, s.config.BatchSize)
	if err != nil {
		s.logger.Error("Failed to get domains due for refresh", zap.Error(err))
		return 0
	}

	pushed := 0
	for _, d := range domains {
		if _, queued := s.enqueued[d.ID]; queued {
			continue
		}

		if err := s.queue.Push(ctx, queue.NewRefreshJob(d.ID, d.UserID, now)); err != nil {
			s.logger.Warn("Failed to enqueue refresh",
				zap.String("domain_id", d.ID.String()),
				zap.Error(err),
			)
			continue
		}
		s.enqueued[d.ID] = now
		pushed++

		s.logger.Debug("Scheduled refresh",
			zap.String("domain_id", d.ID.String()),
			zap.String("domain", d.DomainName),
		)
	}

	if n, err := s.queue.Length(ctx); err == nil && s.metrics != nil {
		s.metrics.SetQueueLength(n)
	}

	return pushed
}
