package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/eventreg-be/internal/models"
	"github.com/isdelr/eventreg-be/internal/services"
	"github.com/rs/zerolog/log"
)

// EventHandler serves the categorized event listing and event signup.
type EventHandler struct {
	events        services.EventServiceProvider
	registrations services.RegistrationServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events services.EventServiceProvider, registrations services.RegistrationServiceProvider) *EventHandler {
	return &EventHandler{events: events, registrations: registrations}
}

// Home lists events in the three home categories. Events in any other
// category are not shown here.
func (h *EventHandler) Home(w http.ResponseWriter, r *http.Request) {
	buckets := []struct {
		key      string
		category string
	}{
		{"sports", models.CategorySports},
		{"cultural", models.CategoryCultural},
		{"gaming", models.CategoryGaming},
	}

	resp := make(map[string][]models.Event, len(buckets))
	for _, b := range buckets {
		events, err := h.events.ListByCategory(r.Context(), b.category)
		if err != nil {
			writeServiceError(w, r, err, "Failed to list events")
			return
		}
		resp[b.key] = events
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeAlreadyRegistered(w http.ResponseWriter) {
	writeFlash(w, http.StatusOK, Flash{
		Level:    LevelWarning,
		Message:  "You are already registered for this event.",
		Redirect: "/home",
	})
}

// RegistrationForm returns the event with contact fields pre-filled from the
// caller's profile.
func (h *EventHandler) RegistrationForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user := principal(r).User

	event, err := h.events.GetEventByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load event")
		return
	}

	registered, err := h.registrations.IsRegistered(r.Context(), user.ID, event.ID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to check registration")
		return
	}
	if registered {
		writeAlreadyRegistered(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"event":   event,
		"initial": services.DefaultsFor(user),
	})
}

// Register records the caller's signup with the submitted contact details.
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user := principal(r).User

	form := services.ContactForm{
		Name:  r.FormValue("name"),
		Email: r.FormValue("email"),
		Phone: r.FormValue("phone"),
	}

	reg, err := h.registrations.RegisterForEvent(r.Context(), user, id, form)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyRegistered) {
			writeAlreadyRegistered(w)
			return
		}
		writeServiceError(w, r, err, "Failed to register for event")
		return
	}

	log.Info().Str("user_id", user.ID).Str("event_id", id).Str("registration_id", reg.ID).Msg("Registered for event")
	writeFlash(w, http.StatusCreated, Flash{
		Level:    LevelSuccess,
		Message:  "Registration successful!",
		Redirect: "/home",
		Data:     reg,
	})
}
