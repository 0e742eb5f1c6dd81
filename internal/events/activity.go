// Package events defines outbound event payloads.
package events

import "time"

// ActivityLogged is emitted when a new activity record is accepted.
type ActivityLogged struct {
	ActivityID      string    `json:"activity_id"`
	UserID          string    `json:"user_id"`
	Category        string    `json:"category"`
	DurationMinutes int       `json:"duration_minutes"`
	MoodRating      *int      `json:"mood_rating,omitempty"`
	ActivityDate    string    `json:"activity_date"`
	CreatedAt       time.Time `json:"created_at"`
}
