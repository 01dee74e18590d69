package services

import (
	"context"
	"testing"
	"time"
)

func TestPruneBeforeKeepsRecentEntries(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	old := time.Now().UTC().Add(-60 * 24 * time.Hour).Format(time.DateTime)
	if _, err := ts.db.Exec(
		"INSERT INTO activity (id, type, level, message, created_at) VALUES ('old-1', 'test', 'info', 'old', ?), ('old-2', 'test', 'info', 'old', ?)",
		old, old); err != nil {
		t.Fatalf("seed: %v", err)
	}
	ts.activity.Record(ctx, "test", "info", "fresh", nil)

	n, err := ts.activity.PruneBefore(ctx, time.Now().Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("PruneBefore: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}

	recent, err := ts.activity.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(recent) != 1 || recent[0].Message != "fresh" {
		t.Errorf("remaining = %+v", recent)
	}
}
