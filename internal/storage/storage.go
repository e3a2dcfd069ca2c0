// Package storage talks to the hosted database shared with the club
// website: upcoming events are read, reminder records and verification
// tokens are written. The bot runs fine without it; callers receive a
// nil *Store and degrade the dependent features.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

type Event struct {
	ID          string
	Name        string
	StartTime   time.Time
	Location    string
	Description string
	FlyerURL    string
}

type VerificationToken struct {
	UserID    string
	GuildID   string
	Token     string
	ExpiresAt time.Time
}

func New(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpcomingEvents returns events starting within [from, until], soonest
// first. Optional columns come back empty rather than null.
func (s *Store) UpcomingEvents(ctx context.Context, from, until time.Time) ([]Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, name, start_time,
			COALESCE(location, ''), COALESCE(description, ''), COALESCE(flyer_url, '')
		FROM events
		WHERE start_time >= $1 AND start_time <= $2
		ORDER BY start_time
	`, from, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		if err := rows.Scan(&event.ID, &event.Name, &event.StartTime, &event.Location, &event.Description, &event.FlyerURL); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// ReminderExists reports whether a reminder was already recorded for the
// (event, interval-code) pair. Record existence is the entire
// de-duplication contract.
func (s *Store) ReminderExists(ctx context.Context, eventID, code string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM event_reminders WHERE event_id = $1 AND reminder_type = $2)
	`, eventID, code).Scan(&exists)
	return exists, err
}

func (s *Store) RecordReminder(ctx context.Context, eventID, code string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO event_reminders (event_id, reminder_type)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, eventID, code)
	return err
}

// ListReminders returns the interval codes already sent for an event.
func (s *Store) ListReminders(ctx context.Context, eventID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT reminder_type FROM event_reminders WHERE event_id = $1 ORDER BY reminder_type
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// EventByID fetches a single event, or pgx.ErrNoRows.
func (s *Store) EventByID(ctx context.Context, eventID string) (Event, error) {
	var event Event
	err := s.pool.QueryRow(ctx, `
		SELECT id::text, name, start_time,
			COALESCE(location, ''), COALESCE(description, ''), COALESCE(flyer_url, '')
		FROM events WHERE id::text = $1
	`, eventID).Scan(&event.ID, &event.Name, &event.StartTime, &event.Location, &event.Description, &event.FlyerURL)
	if err != nil {
		return Event{}, err
	}
	return event, nil
}

func (s *Store) InsertVerificationToken(ctx context.Context, token VerificationToken) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO discord_verification_tokens (discord_user_id, guild_id, token, expires_at)
		VALUES ($1, $2, $3, $4)
	`, token.UserID, token.GuildID, token.Token, token.ExpiresAt)
	return err
}

// IsNotFound reports whether err is the driver's empty-result sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
