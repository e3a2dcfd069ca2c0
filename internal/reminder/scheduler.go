// Package reminder polls upcoming events and posts announcement-channel
// reminders at configured lead times. De-duplication rides entirely on
// the external reminder records: one record per (event, interval code),
// checked before sending. Delivery is at-least-once; a record write that
// fails after a successful post may cause a resend on a later tick.
package reminder

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"campuskeeper/internal/storage"

	"go.uber.org/zap"
)

// Offset is one reminder interval: the lead time before an event starts
// and the short stable code used as the de-duplication key.
type Offset struct {
	Code string
	Lead time.Duration
}

// ParseOffsets turns codes like "5d", "1d", "2h", "30m" into offsets.
func ParseOffsets(codes []string) ([]Offset, error) {
	offsets := make([]Offset, 0, len(codes))
	for _, code := range codes {
		trimmed := strings.TrimSpace(strings.ToLower(code))
		if len(trimmed) < 2 {
			return nil, fmt.Errorf("invalid reminder offset %q", code)
		}
		value, err := strconv.Atoi(trimmed[:len(trimmed)-1])
		if err != nil || value <= 0 {
			return nil, fmt.Errorf("invalid reminder offset %q", code)
		}
		var unit time.Duration
		switch trimmed[len(trimmed)-1] {
		case 'd':
			unit = 24 * time.Hour
		case 'h':
			unit = time.Hour
		case 'm':
			unit = time.Minute
		default:
			return nil, fmt.Errorf("invalid reminder offset %q", code)
		}
		offsets = append(offsets, Offset{Code: trimmed, Lead: time.Duration(value) * unit})
	}
	return offsets, nil
}

// EventSource is the slice of the store the scheduler reads and writes.
type EventSource interface {
	UpcomingEvents(ctx context.Context, from, until time.Time) ([]storage.Event, error)
	ReminderExists(ctx context.Context, eventID, code string) (bool, error)
	RecordReminder(ctx context.Context, eventID, code string) error
}

// Poster delivers a composed reminder to the announcement channel.
type Poster interface {
	// Ready reports whether the announcement channel resolves right now.
	Ready() bool
	Post(event storage.Event, offset Offset, remaining time.Duration) error
}

type Scheduler struct {
	source    EventSource
	poster    Poster
	offsets   []Offset
	interval  time.Duration
	tolerance time.Duration
	horizon   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

type Config struct {
	Offsets   []Offset
	Interval  time.Duration
	Tolerance time.Duration
	Horizon   time.Duration
}

func New(source EventSource, poster Poster, cfg Config, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		source:    source,
		poster:    poster,
		offsets:   cfg.Offsets,
		interval:  cfg.Interval,
		tolerance: cfg.Tolerance,
		horizon:   cfg.Horizon,
		logger:    logger,
		now:       time.Now,
	}
}

// Run polls until the context is cancelled. A failed tick is logged and
// the loop carries on; transient store or network errors never stop it.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.logger.Warn("reminder tick failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single poll: fetch events inside the horizon, and
// for each not-yet-started event send every due, unsent reminder.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if !s.poster.Ready() {
		s.logger.Warn("announcement channel unresolved, skipping reminder tick")
		return nil
	}

	now := s.now()
	events, err := s.source.UpcomingEvents(ctx, now, now.Add(s.horizon))
	if err != nil {
		return fmt.Errorf("fetch upcoming events: %w", err)
	}

	for _, event := range events {
		if !event.StartTime.After(now) {
			continue
		}
		for _, offset := range s.offsets {
			if err := s.maybeSend(ctx, event, offset, now); err != nil {
				s.logger.Warn("reminder send failed",
					zap.String("event_id", event.ID),
					zap.String("offset", offset.Code),
					zap.Error(err))
			}
		}
	}
	return nil
}

func (s *Scheduler) maybeSend(ctx context.Context, event storage.Event, offset Offset, now time.Time) error {
	sent, err := s.source.ReminderExists(ctx, event.ID, offset.Code)
	if err != nil {
		return fmt.Errorf("reminder lookup: %w", err)
	}
	if sent {
		return nil
	}

	fire := event.StartTime.Add(-offset.Lead)
	if absDuration(now.Sub(fire)) > s.tolerance {
		return nil
	}

	if err := s.poster.Post(event, offset, event.StartTime.Sub(now)); err != nil {
		return fmt.Errorf("post reminder: %w", err)
	}
	if err := s.source.RecordReminder(ctx, event.ID, offset.Code); err != nil {
		// The reminder went out but the record did not stick; the next
		// tick may resend. Accepted trade-off.
		s.logger.Warn("reminder sent but not recorded",
			zap.String("event_id", event.ID),
			zap.String("offset", offset.Code),
			zap.Error(err))
	}
	return nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
