package workers

import (
	"context"
	"time"

	"lorryadmin/internal/logger"
)

type DailySchedule struct {
	Hour   int
	Minute int
}

// Next returns the first occurrence of the schedule strictly after now.
func (d DailySchedule) Next(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), d.Hour, d.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

type Scheduler struct {
	loc *time.Location
	log logger.Logger
}

func NewScheduler(loc *time.Location, log logger.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		loc: loc,
		log: log,
	}
}

func (s *Scheduler) RunByDuration(ctx context.Context, dur time.Duration, worker Worker) {
	go func() {
		ticker := time.NewTicker(dur)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.run(ctx, worker)
			}
		}
	}()
}

func (s *Scheduler) RunDaily(ctx context.Context, schedule DailySchedule, worker Worker) {
	go func() {
		for {
			next := schedule.Next(time.Now().In(s.loc))
			timer := time.NewTimer(time.Until(next))

			select {
			case <-ctx.Done():
				timer.Stop()
				s.log.Debug("worker: daily worker canceled", "name", worker.Name())
				return
			case <-timer.C:
				s.run(ctx, worker)
			}
		}
	}()
}

func (s *Scheduler) run(ctx context.Context, worker Worker) {
	start := time.Now()

	if err := worker.Run(ctx); err != nil {
		s.log.Error("worker: run failed", "name", worker.Name(), "error", err)
	}

	s.log.Debug("worker: finished", "name", worker.Name(), "time", time.Since(start))
}
