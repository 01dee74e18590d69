package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/eventreg-be/internal/models"
	"github.com/rs/zerolog/log"
)

// ActivityServiceProvider defines the interface for the activity log.
type ActivityServiceProvider interface {
	Record(ctx context.Context, activityType, level, message string, userID *string)
	GetRecent(ctx context.Context, limit int) ([]models.Activity, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ActivityService stores an audit trail of domain actions.
type ActivityService struct {
	db *sql.DB
}

// NewActivityService creates a new ActivityService.
func NewActivityService(db *sql.DB) *ActivityService {
	return &ActivityService{db: db}
}

// Record logs a new activity entry. Failures are logged and otherwise ignored;
// the audit trail never blocks the action it describes.
func (s *ActivityService) Record(ctx context.Context, activityType, level, message string, userID *string) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO activity (id, type, level, message, user_id) VALUES (?, ?, ?, ?, ?)",
		uuid.New().String(), activityType, level, message, userID)
	if err != nil {
		log.Warn().Err(err).Str("type", activityType).Msg("Failed to record activity")
	}
}

// GetRecent retrieves the most recent activity entries.
func (s *ActivityService) GetRecent(ctx context.Context, limit int) ([]models.Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, level, message, user_id, created_at FROM activity ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.Type, &a.Level, &a.Message, &a.UserID, &a.CreatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// PruneBefore deletes activity entries recorded before cutoff and reports how
// many were removed.
func (s *ActivityService) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	// created_at is stored by SQLite as UTC "YYYY-MM-DD HH:MM:SS".
	res, err := s.db.ExecContext(ctx, "DELETE FROM activity WHERE created_at < ?", cutoff.UTC().Format(time.DateTime))
	if err != nil {
		return 0, fmt.Errorf("prune activity: %w", err)
	}
	return res.RowsAffected()
}
