// Package postgres provides Postgres-backed persistence for users,
// activities, and outbox events.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/daytracker/internal/domain"
	"example.com/daytracker/internal/events"
	"example.com/daytracker/internal/observability"
)

const uniqueViolation = "23505"

// Repository implements domain.UserRepository and domain.ActivityRepository.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Ping verifies database connectivity for health checks.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// CreateUser inserts a new account row.
func (r *Repository) CreateUser(ctx context.Context, user domain.User) error {
	const stmt = `INSERT INTO users (user_id, email, password_hash, name, age, gender, is_active, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err := r.pool.Exec(ctx, stmt,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Age,
		nullIfEmpty(user.Gender),
		user.IsActive,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrEmailTaken
		}
		return err
	}
	return nil
}

// FindUserByEmail returns the account for the email, or nil when absent.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT user_id, email, password_hash, name, age, gender, is_active, created_at, last_login
        FROM users WHERE email=$1`

	row := r.pool.QueryRow(ctx, query, email)
	var user domain.User
	var gender *string
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Age, &gender, &user.IsActive, &user.CreatedAt, &user.LastLogin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if gender != nil {
		user.Gender = *gender
	}
	return &user, nil
}

// UpdateLastLogin stamps the login time on the account.
func (r *Repository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET last_login=$2 WHERE user_id=$1`, userID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// CreateActivity persists the record and its outbox event in one transaction.
func (r *Repository) CreateActivity(ctx context.Context, record domain.ActivityRecord) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const insertActivity = `INSERT INTO activities (activity_id, user_id, category, duration_minutes, notes, mood_rating, photo_url, activity_date, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err = tx.Exec(ctx, insertActivity,
		record.ID,
		record.UserID,
		string(record.Category),
		record.DurationMinutes,
		nullIfEmpty(record.Notes),
		record.MoodRating,
		nullIfEmpty(record.PhotoURL),
		record.ActivityDate,
		record.CreatedAt,
	)
	if err != nil {
		return err
	}

	if err = insertOutbox(ctx, tx, record); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	observability.RecordActivityLogged(record.CreatedAt)
	return nil
}

func insertOutbox(ctx context.Context, tx pgx.Tx, record domain.ActivityRecord) error {
	payload := events.ActivityLogged{
		ActivityID:      record.ID,
		UserID:          record.UserID,
		Category:        string(record.Category),
		DurationMinutes: record.DurationMinutes,
		MoodRating:      record.MoodRating,
		ActivityDate:    record.ActivityDate.Format(domain.DateLayout),
		CreatedAt:       record.CreatedAt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	const eventType = "activity.logged"
	meta, ok := EventCatalog[eventType]
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err = tx.Exec(ctx, stmt,
		"activity",
		record.ID,
		eventType,
		meta.Topic,
		meta.SchemaSubject,
		record.UserID,
		body,
		fmt.Sprintf("%s:%s", record.ID, eventType),
	)
	return err
}

// ListByUser returns activities for a user ordered newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.ActivityRecord, *domain.Cursor, error) {
	args := []interface{}{userID, limit}
	query := `SELECT activity_id, user_id, category, duration_minutes, notes, mood_rating, photo_url, activity_date, created_at
        FROM activities WHERE user_id=$1`

	if cursor != nil {
		query += ` AND (created_at, activity_id) < ($3, $4)`
		args = append(args, cursor.CreatedAt, cursor.ID)
	}

	query += ` ORDER BY created_at DESC, activity_id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results, err := scanRecords(rows, limit)
	if err != nil {
		return nil, nil, err
	}

	var nextCursor *domain.Cursor
	if len(results) == limit {
		last := results[len(results)-1]
		nextCursor = &domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}

	return results, nextCursor, nil
}

// ListByDate returns all records for the user on the exact calendar date.
func (r *Repository) ListByDate(ctx context.Context, userID string, date time.Time) ([]domain.ActivityRecord, error) {
	const query = `SELECT activity_id, user_id, category, duration_minutes, notes, mood_rating, photo_url, activity_date, created_at
        FROM activities WHERE user_id=$1 AND activity_date=$2 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows, 0)
}

// ListSince returns all records for the user with activity_date >= since.
func (r *Repository) ListSince(ctx context.Context, userID string, since time.Time) ([]domain.ActivityRecord, error) {
	const query = `SELECT activity_id, user_id, category, duration_minutes, notes, mood_rating, photo_url, activity_date, created_at
        FROM activities WHERE user_id=$1 AND activity_date>=$2 ORDER BY activity_date`

	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows, 0)
}

func scanRecords(rows pgx.Rows, capacity int) ([]domain.ActivityRecord, error) {
	results := make([]domain.ActivityRecord, 0, capacity)
	for rows.Next() {
		var rec domain.ActivityRecord
		var category string
		var notes, photoURL *string
		if err := rows.Scan(&rec.ID, &rec.UserID, &category, &rec.DurationMinutes, &notes, &rec.MoodRating, &photoURL, &rec.ActivityDate, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Category = domain.Category(category)
		if notes != nil {
			rec.Notes = *notes
		}
		if photoURL != nil {
			rec.PhotoURL = *photoURL
		}
		// Dates come back as timestamps at midnight; pin them to UTC so
		// window comparisons stay calendar-accurate.
		rec.ActivityDate = rec.ActivityDate.UTC()
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic         string
	SchemaSubject string
}

// EventCatalog maps event types to their Kafka routing metadata.
var EventCatalog = map[string]EventMetadata{
	"activity.logged": {
		Topic:         "daytracker_activity_events",
		SchemaSubject: "daytracker_activity_events-value",
	},
}
