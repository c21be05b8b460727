package alerts

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/inkwms/warehouse/pkg/logger"
)

// Scheduler runs the alert scanner on three fixed cadences — daily
// expiration checks, a more frequent low-stock sweep, and a weekly
// dead-stock sweep — each isolated so one job's failure or a missed tick
// never blocks the others. No third-party cron library appears in any
// complete example repository, so cadence is computed with
// the standard library's time.Timer against the next wall-clock occurrence.
type Scheduler struct {
	scanner *Scanner
	log     *logger.Logger

	mu      sync.Mutex
	cancel  func()
	running atomic.Bool
}

func NewScheduler(scanner *Scanner, log *logger.Logger) *Scheduler {
	return &Scheduler{scanner: scanner, log: log.WithComponent("alerts.scheduler")}
}

// Start launches the three cron-equivalent jobs and an immediate startup
// run of every check, mirroring the original scheduler's startup job.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running.Load() {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running.Store(true)

	go func() {
		s.log.Info().Msg("running startup expiration check")
		s.scanner.RunAll(ctx)
	}()

	go s.runDaily(ctx)
	go s.runEveryNHours(ctx, 4)
	go s.runWeekly(ctx, time.Sunday, 2, 0)

	s.log.Info().Msg("scheduler started")
}

// Shutdown stops every job. Safe to call more than once.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running.Load() {
		return
	}
	s.cancel()
	s.running.Store(false)
	s.log.Info().Msg("scheduler shutdown")
}

// runDaily runs the expired-batch and expiring-batch checks once a day at
// 06:00 local time.
func (s *Scheduler) runDaily(ctx context.Context) {
	s.runOn(ctx, func(now time.Time) time.Time {
		return nextDailyAt(now, 6, 0)
	}, func(runCtx context.Context) {
		s.log.Info().Msg("running daily expiration check")
		n, err := s.scanner.CheckExpiredBatches(runCtx)
		if err != nil {
			s.log.Error().Err(err).Msg("daily expiration check failed")
			return
		}
		s.log.Info().Int("scrapped", n).Msg("expired batches processed")

		if _, err := s.scanner.CheckExpiringBatches(runCtx); err != nil {
			s.log.Error().Err(err).Msg("expiring batch check failed")
		}
	})
}

// runEveryNHours runs the low-stock check every n hours, aligned to
// midnight so restarts don't drift the schedule.
func (s *Scheduler) runEveryNHours(ctx context.Context, n int) {
	s.runOn(ctx, func(now time.Time) time.Time {
		return nextEveryNHours(now, n)
	}, func(runCtx context.Context) {
		s.log.Info().Msg("running low stock check")
		if _, err := s.scanner.CheckLowStock(runCtx); err != nil {
			s.log.Error().Err(err).Msg("low stock check failed")
		}
	})
}

// runWeekly runs the dead-stock check once a week on the given weekday/hour.
func (s *Scheduler) runWeekly(ctx context.Context, weekday time.Weekday, hour, minute int) {
	s.runOn(ctx, func(now time.Time) time.Time {
		return nextWeeklyAt(now, weekday, hour, minute)
	}, func(runCtx context.Context) {
		s.log.Info().Msg("running dead stock check")
		if _, err := s.scanner.CheckDeadStock(runCtx); err != nil {
			s.log.Error().Err(err).Msg("dead stock check failed")
		}
	})
}

// runOn loops computing the next fire time via nextFire, sleeping until
// then, and invoking run — log-and-continue on each tick, forever until ctx
// is cancelled.
func (s *Scheduler) runOn(ctx context.Context, nextFire func(time.Time) time.Time, run func(context.Context)) {
	for {
		now := time.Now()
		wait := nextFire(now).Sub(now)
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			run(ctx)
		}
	}
}

func nextDailyAt(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func nextEveryNHours(now time.Time, n int) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	elapsed := now.Sub(midnight)
	step := time.Duration(n) * time.Hour
	ticks := elapsed/step + 1
	return midnight.Add(time.Duration(ticks) * step)
}

func nextWeeklyAt(now time.Time, weekday time.Weekday, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	daysUntil := (int(weekday) - int(now.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, daysUntil)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}
