// Package domain defines the business logic for the daytracker service.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownCategory is returned when a record references a category outside
// the registry.
var ErrUnknownCategory = errors.New("unknown activity category")

// PasswordHasher abstracts credential hashing so the domain layer stays free
// of crypto imports.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Service orchestrates account and activity workflows.
type Service struct {
	users      UserRepository
	activities ActivityRepository
	hasher     PasswordHasher
	now        func() time.Time
}

// NewService constructs a Service.
func NewService(users UserRepository, activities ActivityRepository, hasher PasswordHasher) *Service {
	return &Service{
		users:      users,
		activities: activities,
		hasher:     hasher,
		now:        time.Now,
	}
}

// RegisterInput captures a validated registration payload from the API layer.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Age      *int
	Gender   string
}

// Register creates a new account with a hashed password.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		Age:          input.Age,
		Gender:       input.Gender,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate verifies credentials and stamps last_login. Unknown email and
// wrong password collapse to the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now
	return user, nil
}

// LogActivityInput captures a validated activity payload from the API layer.
type LogActivityInput struct {
	UserID          string
	Category        Category
	DurationMinutes int
	Notes           string
	MoodRating      *int
	PhotoURL        string
	ActivityDate    time.Time // zero value means "today"
}

// LogActivity persists an activity record for the user. The activity date is
// normalized to midnight UTC and defaults to the current day.
func (s *Service) LogActivity(ctx context.Context, input LogActivityInput) (*ActivityRecord, error) {
	if !IsRegistered(input.Category) {
		return nil, ErrUnknownCategory
	}

	now := s.now().UTC()
	date := input.ActivityDate
	if date.IsZero() {
		date = now
	}
	date = truncateToDay(date)

	record := ActivityRecord{
		ID:              uuid.NewString(),
		UserID:          input.UserID,
		Category:        input.Category,
		DurationMinutes: input.DurationMinutes,
		Notes:           input.Notes,
		MoodRating:      input.MoodRating,
		PhotoURL:        input.PhotoURL,
		ActivityDate:    date,
		CreatedAt:       now,
	}

	if err := s.activities.CreateActivity(ctx, record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListActivities fetches a page of the user's records, newest first.
func (s *Service) ListActivities(ctx context.Context, userID string, cursor *Cursor, limit int) ([]ActivityRecord, *Cursor, error) {
	return s.activities.ListByUser(ctx, userID, cursor, limit)
}

// ListActivitiesByDate fetches all of the user's records for one calendar date.
func (s *Service) ListActivitiesByDate(ctx context.Context, userID string, date time.Time) ([]ActivityRecord, error) {
	return s.activities.ListByDate(ctx, userID, truncateToDay(date))
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
