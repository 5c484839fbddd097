package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leozw/domainy/internal/core"
	"github.com/leozw/domainy/internal/queue"
)

const popTimeout = 5 * time.Second

// Refresh job outcomes as reported to the metrics recorder.
const (
	ResultUpdated = "updated"
	ResultNoData  = "lookup_failed"
	ResultGone    = "gone"
	ResultError   = "error"
	ResultBadJob  = "invalid"
)

type Worker struct {
	id        int
	queue     Queue
	refresher Refresher
	metrics   Recorder
	logger    *zap.Logger
}

func NewWorker(id int, q Queue, refresher Refresher, metrics Recorder, logger *zap.Logger) *Worker {
	return &Worker{
		id:        id,
		queue:     q,
		refresher: refresher,
		metrics:   metrics,
		logger:    logger.With(zap.Int("worker_id", id)),
	}
}

// RunWorkers starts count workers on the queue and blocks until ctx is done.
func RunWorkers(ctx context.Context, count int, q Queue, refresher Refresher, metrics Recorder, logger *zap.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		w := NewWorker(i, q, refresher, metrics, logger)
		g.Go(func() error {
			w.Start(ctx)
			return nil
		})
	}
	return g.Wait()
}

func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Worker stopped")
			return
		default:
		}

		job, err := w.queue.Pop(ctx, popTimeout)
		if err != nil {
			if errors.Is(err, queue.ErrTimeout) || ctx.Err() != nil {
				continue
			}
			w.logger.Error("Failed to pop job", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		w.processJob(ctx, job)
	}
}

func (w *Worker) processJob(ctx context.Context, job *queue.Job) string {
	start := time.Now()
	result := w.refresh(ctx, job)

	if w.metrics != nil {
		w.metrics.RecordRefreshJob(result)
	}

	w.logger.Debug("Refresh completed",
		zap.String("job_id", job.ID),
		zap.String("domain_id", job.DomainID.String()),
		zap.String("result", result),
		zap.Duration("duration", time.Since(start)),
	)
	return result
}

func (w *Worker) refresh(ctx context.Context, job *queue.Job) string {
	if job.Type != queue.JobTypeWhoisRefresh {
		w.logger.Error("Unknown job type", zap.String("type", job.Type))
		return ResultBadJob
	}

	_, lookup, err := w.refresher.RefreshDomain(ctx, job.UserID, job.DomainID)
	switch {
	case errors.Is(err, core.ErrNotFound):
		return ResultGone
	case err != nil:
		w.logger.Error("Failed to refresh domain",
			zap.String("domain_id", job.DomainID.String()),
			zap.Error(err),
		)
		return ResultError
	case !lookup.Success:
		return ResultNoData
	}
	return ResultUpdated
}
