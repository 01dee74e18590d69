package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/eventreg-be/internal/media"
	"github.com/isdelr/eventreg-be/internal/models"
	"github.com/isdelr/eventreg-be/internal/services"
	"github.com/rs/zerolog/log"
)

const (
	recentActivityLimit = 20
	// Room for the image plus the remaining form fields.
	maxUploadBody = media.MaxImageSize + 1<<20
)

// AdminHandler serves the administrator dashboard and event rosters.
type AdminHandler struct {
	events        services.EventServiceProvider
	registrations services.RegistrationServiceProvider
	activity      services.ActivityServiceProvider
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(events services.EventServiceProvider, registrations services.RegistrationServiceProvider, activity services.ActivityServiceProvider) *AdminHandler {
	return &AdminHandler{events: events, registrations: registrations, activity: activity}
}

// Dashboard returns all events, the total registration count and recent activity.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListEvents(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to list events")
		return
	}
	total, err := h.registrations.CountAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to count registrations")
		return
	}
	recent, err := h.activity.GetRecent(r.Context(), recentActivityLimit)
	if err != nil {
		writeServiceError(w, r, err, "Failed to retrieve activity")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events":             events,
		"totalRegistrations": total,
		"recentActivity":     recent,
		"categories":         []string{models.CategorySports, models.CategoryCultural, models.CategoryGaming},
	})
}

// DashboardAction deletes an event when the submission carries a delete_event
// field and creates one otherwise.
func (h *AdminHandler) DashboardAction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := parseForm(r); err != nil {
		writeFlash(w, http.StatusBadRequest, Flash{Level: LevelError, Message: "Invalid form submission."})
		return
	}

	if _, ok := r.PostForm["delete_event"]; ok {
		h.deleteEvent(w, r, r.PostFormValue("delete_event"))
		return
	}
	h.createEvent(w, r)
}

// DeleteEvent deletes the event named in the URL.
func (h *AdminHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	h.deleteEvent(w, r, chi.URLParam(r, "id"))
}

func (h *AdminHandler) deleteEvent(w http.ResponseWriter, r *http.Request, id string) {
	admin := principal(r).User
	if err := h.events.DeleteEvent(r.Context(), id, admin.ID); err != nil {
		writeServiceError(w, r, err, "Failed to delete event")
		return
	}
	log.Info().Str("event_id", id).Str("user_id", admin.ID).Msg("Event deleted")
	writeFlash(w, http.StatusOK, Flash{
		Level:    LevelSuccess,
		Message:  "Event deleted successfully.",
		Redirect: "/admin_dashboard",
	})
}

func (h *AdminHandler) createEvent(w http.ResponseWriter, r *http.Request) {
	form := services.EventForm{
		Name:        r.PostFormValue("name"),
		StartDate:   r.PostFormValue("start_date"),
		EndDate:     r.PostFormValue("end_date"),
		Description: r.PostFormValue("description"),
		Category:    r.PostFormValue("category"),
	}

	var image *services.ImageUpload
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		image = &services.ImageUpload{Filename: header.Filename, Content: file}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// No image attached.
	default:
		writeServiceError(w, r, err, "Failed to read event image")
		return
	}

	admin := principal(r).User
	event, err := h.events.CreateEvent(r.Context(), form, image, admin.ID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to create event")
		return
	}

	log.Info().Str("event_id", event.ID).Str("user_id", admin.ID).Msg("Event created")
	writeFlash(w, http.StatusCreated, Flash{
		Level:    LevelSuccess,
		Message:  "Event created successfully.",
		Redirect: "/admin_dashboard",
		Data:     event,
	})
}

// Roster returns the contact details of everyone registered for an event.
func (h *AdminHandler) Roster(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	roster, err := h.registrations.ListForEvent(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Failed to list registrations for event")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"registrations": roster})
}

// parseForm parses url-encoded and multipart bodies alike.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(media.MaxImageSize)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

