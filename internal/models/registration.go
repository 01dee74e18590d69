package models

import "time"

// Registration binds one user to one event with the contact details given at signup.
type Registration struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	EventName string    `json:"eventName,omitempty"` // Populated by list queries
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// RosterEntry is the externally visible shape of a registration in an event roster.
type RosterEntry struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}
