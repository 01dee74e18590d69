package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/eventreg-be/internal/services"
)

// RegistrationHandler lets a user manage their own registrations.
type RegistrationHandler struct {
	service services.RegistrationServiceProvider
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(service services.RegistrationServiceProvider) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

// Manage lists the caller's registrations.
func (h *RegistrationHandler) Manage(w http.ResponseWriter, r *http.Request) {
	regs, err := h.service.ListForUser(r.Context(), principal(r).User.ID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to list registrations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"registrations": regs})
}

// Delete cancels one of the caller's registrations.
func (h *RegistrationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteForUser(r.Context(), principal(r).User.ID, id); err != nil {
		writeServiceError(w, r, err, "Failed to delete registration")
		return
	}
	writeFlash(w, http.StatusOK, Flash{
		Level:    LevelSuccess,
		Message:  "Registration deleted successfully.",
		Redirect: "/manage-registrations",
	})
}
