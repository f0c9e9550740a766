// Package scheduler runs the weekly rollover on a cron schedule so archives
// are written even when nobody visits on Monday.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Job func(ctx context.Context) error

type Scheduler struct {
	cron    *cron.Cron
	job     Job
	timeout time.Duration
	logger  *zap.Logger
}

// New schedules job on spec, a standard five-field cron expression evaluated
// in loc. Nothing runs until Start.
func New(spec string, loc *time.Location, job Job, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		job:     job,
		timeout: time.Minute,
		logger:  logger.Named("scheduler"),
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("parse cron spec %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.Info("rollover scheduled", zap.Time("next", e.Next))
	}
}

// Stop waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.job(ctx); err != nil {
		s.logger.Error("rollover failed", zap.Error(err))
		return
	}
	s.logger.Info("rollover done", zap.Duration("took", time.Since(start)))
}
