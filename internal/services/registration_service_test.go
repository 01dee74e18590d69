package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/isdelr/eventreg-be/internal/models"
)

func TestDefaultsFor(t *testing.T) {
	got := DefaultsFor(models.User{FirstName: "Alice", LastName: "", Email: "alice@example.com"})
	if got.Name != "Alice" || got.Email != "alice@example.com" || got.Phone != "" {
		t.Fatalf("unexpected defaults %+v", got)
	}
}

func TestRegisterForEventTwiceIsRejected(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	alice := ts.createUser(t, "alice")
	event := ts.createEvent(t, "Chess Night", models.CategoryGaming)

	reg, err := ts.registrations.RegisterForEvent(ctx, alice, event.ID, contact("555-0100"))
	if err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if reg.Phone != "555-0100" || reg.EventName != "Chess Night" {
		t.Fatalf("unexpected registration %+v", reg)
	}

	if _, err := ts.registrations.RegisterForEvent(ctx, alice, event.ID, contact("555-0199")); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if n := ts.count(t, "SELECT COUNT(*) FROM registrations WHERE user_id = ? AND event_id = ?", alice.ID, event.ID); n != 1 {
		t.Fatalf("expected exactly one record, found %d", n)
	}
}

func TestRegisterForEventChecksBeforeValidating(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	alice := ts.createUser(t, "alice")
	event := ts.createEvent(t, "Chess Night", models.CategoryGaming)

	if _, err := ts.registrations.RegisterForEvent(ctx, alice, "missing", contact("1")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err := ts.registrations.RegisterForEvent(ctx, alice, event.ID, ContactForm{Name: "Alice", Email: "bad"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["email"] == "" || verr.Fields["phone"] == "" {
		t.Fatalf("expected email and phone errors, got %v", err)
	}

	if _, err := ts.registrations.RegisterForEvent(ctx, alice, event.ID, contact("555-0100")); err != nil {
		t.Fatalf("register: %v", err)
	}
	// Already registered wins over invalid input.
	if _, err := ts.registrations.RegisterForEvent(ctx, alice, event.ID, ContactForm{}); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestConcurrentRegistrationForSamePair(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	alice := ts.createUser(t, "alice")
	event := ts.createEvent(t, "Chess Night", models.CategoryGaming)

	const attempts = 50
	var successCount, alreadyCount, errorCount int32
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := ts.registrations.RegisterForEvent(ctx, alice, event.ID, contact(fmt.Sprintf("555-%04d", i)))
			switch {
			case err == nil:
				atomic.AddInt32(&successCount, 1)
			case errors.Is(err, ErrAlreadyRegistered):
				atomic.AddInt32(&alreadyCount, 1)
			default:
				t.Logf("unexpected error for attempt %d: %v", i, err)
				atomic.AddInt32(&errorCount, 1)
			}
		}(i)
	}
	wg.Wait()

	if successCount != 1 || alreadyCount != attempts-1 || errorCount != 0 {
		t.Fatalf("success=%d already=%d errors=%d", successCount, alreadyCount, errorCount)
	}
	if n := ts.count(t, "SELECT COUNT(*) FROM registrations"); n != 1 {
		t.Fatalf("expected one row, found %d", n)
	}
}

func TestListForUserIsScopedUnderConcurrentPopulation(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	var events []models.Event
	for i := 0; i < 4; i++ {
		events = append(events, ts.createEvent(t, fmt.Sprintf("Event %d", i), models.CategorySports))
	}
	var users []models.User
	for i := 0; i < 3; i++ {
		users = append(users, ts.createUser(t, fmt.Sprintf("user%d", i)))
	}

	var wg sync.WaitGroup
	for _, u := range users {
		for _, e := range events {
			wg.Add(1)
			go func(u models.User, e models.Event) {
				defer wg.Done()
				if _, err := ts.registrations.RegisterForEvent(ctx, u, e.ID, contact("555-0100")); err != nil {
					t.Errorf("register %s/%s: %v", u.Username, e.Name, err)
				}
			}(u, e)
		}
	}
	wg.Wait()

	for _, u := range users {
		regs, err := ts.registrations.ListForUser(ctx, u.ID)
		if err != nil {
			t.Fatalf("list for %s: %v", u.Username, err)
		}
		if len(regs) != len(events) {
			t.Fatalf("%s: expected %d registrations, got %d", u.Username, len(events), len(regs))
		}
		for _, r := range regs {
			if r.UserID != u.ID {
				t.Fatalf("%s received registration owned by %s", u.Username, r.UserID)
			}
		}
	}
}

func TestDeleteForUserIsOwnerScoped(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	alice := ts.createUser(t, "alice")
	mallory := ts.createUser(t, "mallory")
	event := ts.createEvent(t, "Chess Night", models.CategoryGaming)

	reg, err := ts.registrations.RegisterForEvent(ctx, alice, event.ID, contact("555-0100"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := ts.registrations.DeleteForUser(ctx, mallory.ID, reg.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-owner, got %v", err)
	}
	if n := ts.count(t, "SELECT COUNT(*) FROM registrations"); n != 1 {
		t.Fatalf("registration must survive a non-owner delete, found %d", n)
	}

	if err := ts.registrations.DeleteForUser(ctx, alice.ID, reg.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := ts.registrations.DeleteForUser(ctx, alice.ID, reg.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat, got %v", err)
	}
}

func TestListForEventReturnsContactFieldsOnly(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	alice := ts.createUser(t, "alice")
	event := ts.createEvent(t, "Chess Night", models.CategoryGaming)
	if _, err := ts.registrations.RegisterForEvent(ctx, alice, event.ID, contact("555-0100")); err != nil {
		t.Fatalf("register: %v", err)
	}

	roster, err := ts.registrations.ListForEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	want := models.RosterEntry{Name: "Alice Liddell", Email: "alice@example.com", Phone: "555-0100"}
	if len(roster) != 1 || roster[0] != want {
		t.Fatalf("roster = %+v, want [%+v]", roster, want)
	}

	total, err := ts.registrations.CountAll(ctx)
	if err != nil || total != 1 {
		t.Fatalf("count = %d, %v", total, err)
	}
}

func TestAliceChessNightScenario(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.createUser(t, "alice")
	alice, err := ts.users.Authenticate(ctx, "alice", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	chess := ts.createEvent(t, "Chess Night", models.CategoryGaming)

	if _, err := ts.registrations.RegisterForEvent(ctx, alice, chess.ID, contact("555-0100")); err != nil {
		t.Fatalf("register: %v", err)
	}
	regs, _ := ts.registrations.ListForUser(ctx, alice.ID)
	if len(regs) != 1 {
		t.Fatalf("expected one registration, got %d", len(regs))
	}
	if _, err := ts.registrations.RegisterForEvent(ctx, alice, chess.ID, contact("555-0100")); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if err := ts.registrations.DeleteForUser(ctx, alice.ID, regs[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	regs, _ = ts.registrations.ListForUser(ctx, alice.ID)
	if len(regs) != 0 {
		t.Fatalf("expected empty list, got %d", len(regs))
	}
}

func TestActivityRecorded(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	alice := ts.createUser(t, "alice")
	event := ts.createEvent(t, "Chess Night", models.CategoryGaming)
	if _, err := ts.registrations.RegisterForEvent(ctx, alice, event.ID, contact("555-0100")); err != nil {
		t.Fatalf("register: %v", err)
	}

	recent, err := ts.activity.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 3 || recent[0].Type != "registration.create" {
		t.Fatalf("unexpected activity %+v", recent)
	}
}
