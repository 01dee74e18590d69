package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakePruner struct {
	cutoffs []time.Time
	err     error
}

func (f *fakePruner) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return 3, f.err
}

func TestNewSchedulerRejectsBadInput(t *testing.T) {
	if _, err := NewScheduler(&fakePruner{}, "not a cron", time.Hour); err == nil {
		t.Error("expected error for invalid cron expression")
	}
	if _, err := NewScheduler(&fakePruner{}, "@daily", 0); err == nil {
		t.Error("expected error for zero retention")
	}
}

func TestTickRunsOnlyWhenDue(t *testing.T) {
	pruner := &fakePruner{}
	s, err := NewScheduler(pruner, "0 3 * * *", 30*24*time.Hour)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	start := time.Date(2026, 10, 18, 1, 0, 0, 0, time.UTC)
	s.nextRun = s.schedule.Next(start)

	s.tick(start.Add(time.Hour))
	if len(pruner.cutoffs) != 0 {
		t.Fatalf("pruned before schedule: %v", pruner.cutoffs)
	}

	due := time.Date(2026, 10, 18, 3, 0, 30, 0, time.UTC)
	s.tick(due)
	if len(pruner.cutoffs) != 1 {
		t.Fatalf("prune calls = %d, want 1", len(pruner.cutoffs))
	}
	if want := due.Add(-30 * 24 * time.Hour); !pruner.cutoffs[0].Equal(want) {
		t.Errorf("cutoff = %v, want %v", pruner.cutoffs[0], want)
	}
	if want := time.Date(2026, 10, 19, 3, 0, 0, 0, time.UTC); !s.nextRun.Equal(want) {
		t.Errorf("nextRun = %v, want %v", s.nextRun, want)
	}

	s.tick(due.Add(time.Minute))
	if len(pruner.cutoffs) != 1 {
		t.Errorf("pruned twice in one period")
	}
}

func TestPruneErrorDoesNotStopSchedule(t *testing.T) {
	pruner := &fakePruner{err: errors.New("database is locked")}
	s, err := NewScheduler(pruner, "@hourly", time.Hour)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	s.tick(now)
	if !s.nextRun.After(now) {
		t.Errorf("nextRun = %v, want after %v", s.nextRun, now)
	}
}

func TestStartStop(t *testing.T) {
	s, err := NewScheduler(&fakePruner{}, "@daily", time.Hour)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	s.Start()
	s.Stop()
	s.Stop()
}
