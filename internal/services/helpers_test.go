package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/isdelr/eventreg-be/internal/database"
	"github.com/isdelr/eventreg-be/internal/media"
	"github.com/isdelr/eventreg-be/internal/models"
)

type testServices struct {
	db            *sql.DB
	activity      *ActivityService
	users         *UserService
	events        *EventService
	registrations *RegistrationService
	mediaDir      string
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	dir := t.TempDir()

	db, err := database.New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mediaDir := filepath.Join(dir, "media")
	store, err := media.NewStore(mediaDir)
	if err != nil {
		t.Fatalf("media store: %v", err)
	}

	activity := NewActivityService(db)
	events := NewEventService(db, store, activity)
	return &testServices{
		db:            db,
		activity:      activity,
		users:         NewUserService(db, activity),
		events:        events,
		registrations: NewRegistrationService(db, events, activity),
		mediaDir:      mediaDir,
	}
}

func (ts *testServices) createUser(t *testing.T, username string) models.User {
	t.Helper()
	user, err := ts.users.CreateAccount(context.Background(), AccountForm{
		Username:        username,
		Email:           username + "@example.com",
		FirstName:       "First",
		LastName:        "Last",
		Password:        "s3cret-pass",
		ConfirmPassword: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func (ts *testServices) createEvent(t *testing.T, name, category string) models.Event {
	t.Helper()
	event, err := ts.events.CreateEvent(context.Background(), EventForm{
		Name:      name,
		StartDate: "2026-11-01T18:00",
		EndDate:   "2026-11-01T22:00",
		Category:  category,
	}, nil, "admin")
	if err != nil {
		t.Fatalf("create event %s: %v", name, err)
	}
	return event
}

func (ts *testServices) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	if err := ts.db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count %q: %v", query, err)
	}
	return n
}

func contact(phone string) ContactForm {
	return ContactForm{Name: "Alice Liddell", Email: "alice@example.com", Phone: phone}
}
