package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/eventreg-be/internal/auth"
	"github.com/isdelr/eventreg-be/internal/services"
	"github.com/rs/zerolog/log"
)

// Flash levels, mirroring the message levels a frontend renders.
const (
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Flash is the outcome of a form submission: a user-facing message, an
// optional place to go next and optional payload.
type Flash struct {
	Level    string            `json:"level"`
	Message  string            `json:"message"`
	Redirect string            `json:"redirect,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
	Data     any               `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeFlash(w http.ResponseWriter, status int, f Flash) {
	writeJSON(w, status, f)
}

func writeRedirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// writeServiceError maps domain errors onto responses. Unexpected errors are
// logged and answered generically.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeFlash(w, http.StatusBadRequest, Flash{
			Level:   LevelError,
			Message: "Please correct the errors below.",
			Errors:  verr.Fields,
		})
	case errors.Is(err, services.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, services.ErrInvalidCredentials):
		writeFlash(w, http.StatusUnauthorized, Flash{Level: LevelError, Message: "Invalid username or password."})
	default:
		event := log.Error().Err(err).Str("path", r.URL.Path)
		if p := auth.PrincipalFromContext(r.Context()); p != nil {
			event = event.Str("user_id", p.User.ID)
		}
		event.Msg(msg)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Something went wrong. Please try again later."})
	}
}

// principal returns the caller; routes using it sit behind auth.Require.
func principal(r *http.Request) *auth.Principal {
	return auth.PrincipalFromContext(r.Context())
}
