package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/isdelr/eventreg-be/internal/database"
	"github.com/isdelr/eventreg-be/internal/models"
)

// RegistrationServiceProvider defines the interface for the registration ledger.
type RegistrationServiceProvider interface {
	RegisterForEvent(ctx context.Context, user models.User, eventID string, form ContactForm) (models.Registration, error)
	IsRegistered(ctx context.Context, userID, eventID string) (bool, error)
	ListForEvent(ctx context.Context, eventID string) ([]models.RosterEntry, error)
	ListForUser(ctx context.Context, userID string) ([]models.Registration, error)
	DeleteForUser(ctx context.Context, userID, registrationID string) error
	CountAll(ctx context.Context) (int, error)
}

// RegistrationService provides business logic for event registrations.
type RegistrationService struct {
	db          *sql.DB
	eventSvc    EventServiceProvider
	activitySvc ActivityServiceProvider
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(db *sql.DB, eventSvc EventServiceProvider, activitySvc ActivityServiceProvider) *RegistrationService {
	return &RegistrationService{db: db, eventSvc: eventSvc, activitySvc: activitySvc}
}

// DefaultsFor returns the contact details a registration form starts with.
// Call it when rendering the form only, never on submit.
func DefaultsFor(user models.User) ContactForm {
	return ContactForm{
		Name:  user.FullName(),
		Email: user.Email,
	}
}

// IsRegistered reports whether the user already holds a registration for the event.
func (s *RegistrationService) IsRegistered(ctx context.Context, userID, eventID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM registrations WHERE event_id = ? AND user_id = ?)", eventID, userID).Scan(&exists)
	return exists, err
}

// RegisterForEvent records the user's signup for an event. The UNIQUE(event_id, user_id)
// constraint rejects a concurrent duplicate that slipped past the existence check.
func (s *RegistrationService) RegisterForEvent(ctx context.Context, user models.User, eventID string, form ContactForm) (models.Registration, error) {
	event, err := s.eventSvc.GetEventByID(ctx, eventID)
	if err != nil {
		return models.Registration{}, err
	}

	registered, err := s.IsRegistered(ctx, user.ID, event.ID)
	if err != nil {
		return models.Registration{}, fmt.Errorf("check existing registration: %w", err)
	}
	if registered {
		return models.Registration{}, ErrAlreadyRegistered
	}

	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)
	if err := ValidateStruct(form); err != nil {
		return models.Registration{}, err
	}

	reg := models.Registration{
		ID:        uuid.New().String(),
		EventID:   event.ID,
		EventName: event.Name,
		UserID:    user.ID,
		Name:      form.Name,
		Email:     form.Email,
		Phone:     form.Phone,
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO registrations (id, event_id, user_id, name, email, phone) VALUES (?, ?, ?, ?, ?, ?)",
		reg.ID, reg.EventID, reg.UserID, reg.Name, reg.Email, reg.Phone)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.Registration{}, ErrAlreadyRegistered
		}
		return models.Registration{}, fmt.Errorf("failed to insert registration: %w", err)
	}

	s.activitySvc.Record(ctx, "registration.create", "info",
		fmt.Sprintf("'%s' registered for '%s'.", user.Username, event.Name), &user.ID)
	return reg, nil
}

// ListForEvent returns the roster of an event: contact details only.
func (s *RegistrationService) ListForEvent(ctx context.Context, eventID string) ([]models.RosterEntry, error) {
	if _, err := s.eventSvc.GetEventByID(ctx, eventID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT name, email, phone FROM registrations WHERE event_id = ? ORDER BY created_at, rowid", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roster := []models.RosterEntry{}
	for rows.Next() {
		var entry models.RosterEntry
		if err := rows.Scan(&entry.Name, &entry.Email, &entry.Phone); err != nil {
			return nil, err
		}
		roster = append(roster, entry)
	}
	return roster, rows.Err()
}

// ListForUser returns the registrations owned by one user. There is no unscoped variant.
func (s *RegistrationService) ListForUser(ctx context.Context, userID string) ([]models.Registration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.event_id, e.name, r.user_id, r.name, r.email, r.phone, r.created_at
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC, r.rowid DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := []models.Registration{}
	for rows.Next() {
		var reg models.Registration
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.EventName, &reg.UserID,
			&reg.Name, &reg.Email, &reg.Phone, &reg.CreatedAt); err != nil {
			return nil, err
		}
		registrations = append(registrations, reg)
	}
	return registrations, rows.Err()
}

// DeleteForUser removes a registration owned by userID. A registration that
// exists but belongs to someone else is reported as ErrNotFound.
func (s *RegistrationService) DeleteForUser(ctx context.Context, userID, registrationID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM registrations WHERE id = ? AND user_id = ?", registrationID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	s.activitySvc.Record(ctx, "registration.delete", "info", "Registration cancelled.", &userID)
	return nil
}

// CountAll returns the total number of registrations across all events.
func (s *RegistrationService) CountAll(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM registrations").Scan(&count)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	return count, nil
}
