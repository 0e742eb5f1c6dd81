package domain

import (
	"context"
	"time"
)

// ActivityRecord is one logged activity instance. Records are immutable
// facts; analytics only ever read snapshots of them.
type ActivityRecord struct {
	ID              string
	UserID          string
	Category        Category
	DurationMinutes int
	Notes           string
	MoodRating      *int
	PhotoURL        string
	ActivityDate    time.Time // calendar date, midnight UTC
	CreatedAt       time.Time
}

// Cursor models the keyset pagination token for activity listings.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// ActivityRepository captures persistence operations for activity records.
type ActivityRepository interface {
	CreateActivity(ctx context.Context, record ActivityRecord) error
	ListByUser(ctx context.Context, userID string, cursor *Cursor, limit int) ([]ActivityRecord, *Cursor, error)
	// ListByDate returns all records for the user on the exact calendar date.
	ListByDate(ctx context.Context, userID string, date time.Time) ([]ActivityRecord, error)
	// ListSince returns all records for the user with activity_date >= since.
	ListSince(ctx context.Context, userID string, since time.Time) ([]ActivityRecord, error)
}
