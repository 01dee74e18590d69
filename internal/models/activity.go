package models

import "time"

// Activity represents a loggable domain action shown on the admin dashboard.
type Activity struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "registration.create", "event.delete"
	Level     string    `json:"level"` // e.g., "info", "warn"
	Message   string    `json:"message"`
	UserID    *string   `json:"userId,omitempty"` // Nullable for anonymous actions
	CreatedAt time.Time `json:"createdAt"`
}
