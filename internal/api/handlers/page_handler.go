package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/isdelr/eventreg-be/internal/notify"
	"github.com/isdelr/eventreg-be/internal/services"
	"github.com/rs/zerolog/log"
)

const notifyTimeout = 10 * time.Second

// PageHandler serves the public landing, health and contact endpoints.
type PageHandler struct {
	activity services.ActivityServiceProvider
	notifier notify.Notifier
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(activity services.ActivityServiceProvider, notifier notify.Notifier) *PageHandler {
	return &PageHandler{activity: activity, notifier: notifier}
}

// Index is the public landing page.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"authenticated": false}
	if p := principal(r); p != nil {
		body["authenticated"] = true
		body["user"] = p.User
	}
	writeJSON(w, http.StatusOK, body)
}

// Healthz reports liveness.
func (h *PageHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ContactForm describes the contact form.
func (h *PageHandler) ContactForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"fields": []string{"name", "email", "message"}})
}

// Contact accepts a message from a visitor and forwards it to the site inbox.
// Delivery failures never reach the visitor.
func (h *PageHandler) Contact(w http.ResponseWriter, r *http.Request) {
	form := services.MessageForm{
		Name:    r.FormValue("name"),
		Email:   r.FormValue("email"),
		Message: r.FormValue("message"),
	}
	if err := services.ValidateStruct(form); err != nil {
		writeServiceError(w, r, err, "Invalid contact form")
		return
	}

	var userID *string
	if p := principal(r); p != nil {
		userID = &p.User.ID
	}
	h.activity.Record(r.Context(), "contact.message", "info", fmt.Sprintf("Contact message from %s", form.Email), userID)

	ctx, cancel := context.WithTimeout(r.Context(), notifyTimeout)
	defer cancel()
	err := h.notifier.Send(ctx, notify.Message{
		To:      []string{h.notifier.Inbox()},
		Subject: fmt.Sprintf("Contact form: %s", form.Name),
		Body:    fmt.Sprintf("From: %s <%s>\n\n%s", form.Name, form.Email, form.Message),
	})

	message := "Thank you for your message! We will get back to you soon."
	if err != nil {
		log.Warn().Err(err).Str("email", form.Email).Msg("Failed to deliver contact message")
		message = "Thank you for your message!"
	}
	writeFlash(w, http.StatusOK, Flash{Level: LevelSuccess, Message: message, Redirect: "/contact"})
}
