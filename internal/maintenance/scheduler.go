package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// ActivityPruner removes old audit entries.
type ActivityPruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler periodically prunes the activity log on a cron schedule.
type Scheduler struct {
	activity  ActivityPruner
	schedule  cron.Schedule
	retention time.Duration
	interval  time.Duration
	nextRun   time.Time

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler parses a standard five-field cron expression. Entries older
// than retention are deleted on each run.
func NewScheduler(activity ActivityPruner, expr string, retention time.Duration) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", expr, err)
	}
	if retention <= 0 {
		return nil, fmt.Errorf("retention must be positive, got %s", retention)
	}
	return &Scheduler{
		activity:  activity,
		schedule:  schedule,
		retention: retention,
		interval:  time.Minute,
		done:      make(chan struct{}),
	}, nil
}

// Start runs the scheduler loop in the background until Stop is called.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

func (s *Scheduler) run() {
	defer s.wg.Done()
	log.Info().Dur("retention", s.retention).Msg("Starting activity prune scheduler")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.nextRun = s.schedule.Next(time.Now())
	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping activity prune scheduler")
			return
		case now := <-ticker.C:
			s.tick(now)
		}
	}
}

// Stop halts the scheduler and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
	s.wg.Wait()
}

// tick prunes when the next scheduled run is due and advances the schedule.
func (s *Scheduler) tick(now time.Time) {
	if now.Before(s.nextRun) {
		return
	}
	s.nextRun = s.schedule.Next(now)
	s.prune(now)
}

func (s *Scheduler) prune(now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := now.Add(-s.retention)
	n, err := s.activity.PruneBefore(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Time("cutoff", cutoff).Msg("Failed to prune activity log")
		return
	}
	log.Info().Int64("deleted", n).Time("cutoff", cutoff).Time("next_run", s.nextRun).Msg("Pruned activity log")
}
