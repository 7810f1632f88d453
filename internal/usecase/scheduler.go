package usecase

import (
	"context"
	"log/slog"
	"time"

	"ResearchAgent/internal/ports"
)

// Scheduler wires the cron driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the pipeline with the provided scheduler. Failed runs are
// logged; the next trigger runs again.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		res, err := s.pipeline.Run(ctx, trigger)
		if s.logger == nil {
			return
		}
		if err != nil {
			s.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
			return
		}
		s.logger.Info("scheduled run done", "trigger", trigger, "dir", res.Dir)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
