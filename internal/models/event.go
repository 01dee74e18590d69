package models

import "time"

// Well-known event categories. Other values are stored as given.
const (
	CategorySports   = "Sports"
	CategoryCultural = "Cultural"
	CategoryGaming   = "Gaming"
)

// Event is something users can register for.
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Description string    `json:"description"`
	ImagePath   *string   `json:"imagePath,omitempty"` // Relative to the media directory
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
}
