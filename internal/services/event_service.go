package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/eventreg-be/internal/media"
	"github.com/isdelr/eventreg-be/internal/models"
	"github.com/rs/zerolog/log"
)

// ImageStore persists uploaded event images.
type ImageStore interface {
	Save(originalName string, r io.Reader) (string, error)
	Remove(rel string) error
}

// ImageUpload is an optional image attached to a new event.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListByCategory(ctx context.Context, category string) ([]models.Event, error)
	GetEventByID(ctx context.Context, id string) (models.Event, error)
	CreateEvent(ctx context.Context, form EventForm, image *ImageUpload, createdBy string) (models.Event, error)
	DeleteEvent(ctx context.Context, id, deletedBy string) error
}

// EventService provides business logic for the event catalog.
type EventService struct {
	db          *sql.DB
	images      ImageStore
	activitySvc ActivityServiceProvider
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB, images ImageStore, activitySvc ActivityServiceProvider) *EventService {
	return &EventService{db: db, images: images, activitySvc: activitySvc}
}

const eventColumns = "id, name, start_date, end_date, description, image_path, category, created_at"

// Accepted date layouts, most specific first. The second is what HTML datetime-local inputs submit.
var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseEventDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func scanEvent(scanner interface{ Scan(...any) error }) (models.Event, error) {
	var event models.Event
	var imagePath sql.NullString
	err := scanner.Scan(&event.ID, &event.Name, &event.StartDate, &event.EndDate,
		&event.Description, &imagePath, &event.Category, &event.CreatedAt)
	if err != nil {
		return models.Event{}, err
	}
	if imagePath.Valid {
		event.ImagePath = &imagePath.String
	}
	return event, nil
}

func (s *EventService) queryEvents(ctx context.Context, query string, args ...any) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// ListEvents retrieves every event, soonest first.
func (s *EventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.queryEvents(ctx, "SELECT "+eventColumns+" FROM events ORDER BY start_date, name")
}

// ListByCategory retrieves the events of exactly one category.
func (s *EventService) ListByCategory(ctx context.Context, category string) ([]models.Event, error) {
	return s.queryEvents(ctx, "SELECT "+eventColumns+" FROM events WHERE category = ? ORDER BY start_date, name", category)
}

// GetEventByID retrieves a single event by its ID.
func (s *EventService) GetEventByID(ctx context.Context, id string) (models.Event, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE id = ?", id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Event{}, ErrNotFound
		}
		return models.Event{}, err
	}
	return event, nil
}

// CreateEvent validates the form, stores the optional image and inserts the event.
func (s *EventService) CreateEvent(ctx context.Context, form EventForm, image *ImageUpload, createdBy string) (models.Event, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Category = strings.TrimSpace(form.Category)
	if err := ValidateStruct(form); err != nil {
		return models.Event{}, err
	}

	start, ok := parseEventDate(form.StartDate)
	if !ok {
		return models.Event{}, newValidationError("start_date", "Enter a valid date/time.")
	}
	end, ok := parseEventDate(form.EndDate)
	if !ok {
		return models.Event{}, newValidationError("end_date", "Enter a valid date/time.")
	}
	if end.Before(start) {
		return models.Event{}, newValidationError("end_date", "End date must not be before the start date.")
	}

	event := models.Event{
		ID:          uuid.New().String(),
		Name:        form.Name,
		StartDate:   start,
		EndDate:     end,
		Description: form.Description,
		Category:    form.Category,
	}

	if image != nil && image.Content != nil {
		rel, err := s.images.Save(image.Filename, image.Content)
		if err != nil {
			if errors.Is(err, media.ErrUnsupportedType) || errors.Is(err, media.ErrTooLarge) {
				return models.Event{}, newValidationError("image", "Upload a valid image (jpg, png, gif, webp up to 10 MB).")
			}
			return models.Event{}, fmt.Errorf("failed to store event image: %w", err)
		}
		event.ImagePath = &rel
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, name, start_date, end_date, description, image_path, category)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Name, event.StartDate, event.EndDate, event.Description, event.ImagePath, event.Category)
	if err != nil {
		if event.ImagePath != nil {
			s.removeImage(*event.ImagePath)
		}
		return models.Event{}, fmt.Errorf("failed to insert event: %w", err)
	}

	s.activitySvc.Record(ctx, "event.create", "info", fmt.Sprintf("Event '%s' created.", event.Name), &createdBy)
	return s.GetEventByID(ctx, event.ID)
}

// DeleteEvent removes an event and every registration referencing it.
func (s *EventService) DeleteEvent(ctx context.Context, id, deletedBy string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var name string
	var imagePath sql.NullString
	err = tx.QueryRowContext(ctx, "SELECT name, image_path FROM events WHERE id = ?", id).Scan(&name, &imagePath)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	// Same rows the foreign key cascade would remove; counted for the activity log.
	res, err := tx.ExecContext(ctx, "DELETE FROM registrations WHERE event_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete registrations: %w", err)
	}
	removed, _ := res.RowsAffected()

	if _, err := tx.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}

	if imagePath.Valid {
		s.removeImage(imagePath.String)
	}
	s.activitySvc.Record(ctx, "event.delete", "warn",
		fmt.Sprintf("Event '%s' deleted with %d registration(s).", name, removed), &deletedBy)
	return nil
}

func (s *EventService) removeImage(rel string) {
	if err := s.images.Remove(rel); err != nil {
		log.Warn().Err(err).Str("image_path", rel).Msg("Failed to remove event image")
	}
}
