package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ScheduleRepository defines persistence operations for card schedules.
type ScheduleRepository interface {
	FindByDeck(ctx context.Context, deckID int64) ([]CardSchedule, error)
	FindByCard(ctx context.Context, cardID int64) (*CardSchedule, error)
	Create(ctx context.Context, schedule *CardSchedule) error
	Update(ctx context.Context, schedule *CardSchedule) error
}

// DBScheduleRepository implements ScheduleRepository using MySQL.
// It accepts sqlx.ExtContext so it works inside and outside transactions.
type DBScheduleRepository struct {
	db sqlx.ExtContext
}

// NewDBScheduleRepository creates a new DBScheduleRepository.
func NewDBScheduleRepository(db sqlx.ExtContext) *DBScheduleRepository {
	return &DBScheduleRepository{db: db}
}

// FindByDeck returns every schedule in a deck, including suspended and
// buried rows so the queue builder can filter them itself.
func (r *DBScheduleRepository) FindByDeck(ctx context.Context, deckID int64) ([]CardSchedule, error) {
	var schedules []CardSchedule
	if err := sqlx.SelectContext(ctx, r.db, &schedules,
		"SELECT * FROM card_schedules WHERE deck_id = ? ORDER BY id", deckID); err != nil {
		return nil, fmt.Errorf("sqlx.SelectContext(card_schedules by deck) > %w", err)
	}
	return schedules, nil
}

// FindByCard returns the schedule for a card, or nil if not found.
func (r *DBScheduleRepository) FindByCard(ctx context.Context, cardID int64) (*CardSchedule, error) {
	var schedule CardSchedule
	err := sqlx.GetContext(ctx, r.db, &schedule,
		"SELECT * FROM card_schedules WHERE card_id = ?", cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlx.GetContext(card_schedule) > %w", err)
	}
	return &schedule, nil
}

// Create inserts the schedule row created alongside a new card.
func (r *DBScheduleRepository) Create(ctx context.Context, schedule *CardSchedule) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO card_schedules
		(card_id, deck_id, sibling_group, position, stability, difficulty,
		 elapsed_days, scheduled_days, lapse_interval_days, reps, lapses,
		 state, step, due, last_review, is_suspended, is_leech, is_buried,
		 buried_until, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		schedule.CardID, schedule.DeckID, schedule.SiblingGroup, schedule.Position,
		schedule.Stability, schedule.Difficulty, schedule.ElapsedDays,
		schedule.ScheduledDays, schedule.LapseIntervalDays, schedule.Reps,
		schedule.Lapses, schedule.State, schedule.Step, schedule.Due,
		schedule.LastReview, schedule.IsSuspended, schedule.IsLeech,
		schedule.IsBuried, schedule.BuriedUntil)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert card_schedule) > %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	schedule.ID = id
	schedule.Version = 1
	return nil
}

// Update writes the schedule back with an optimistic concurrency check.
// Returns ErrStaleSchedule when the row was modified since it was read,
// e.g. by a concurrent session on the same card.
func (r *DBScheduleRepository) Update(ctx context.Context, schedule *CardSchedule) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE card_schedules SET
		 stability = ?, difficulty = ?, elapsed_days = ?, scheduled_days = ?,
		 lapse_interval_days = ?, reps = ?, lapses = ?, state = ?, step = ?,
		 due = ?, last_review = ?, is_suspended = ?, is_leech = ?,
		 is_buried = ?, buried_until = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		schedule.Stability, schedule.Difficulty, schedule.ElapsedDays,
		schedule.ScheduledDays, schedule.LapseIntervalDays, schedule.Reps,
		schedule.Lapses, schedule.State, schedule.Step, schedule.Due,
		schedule.LastReview, schedule.IsSuspended, schedule.IsLeech,
		schedule.IsBuried, schedule.BuriedUntil,
		schedule.ID, schedule.Version)
	if err != nil {
		return fmt.Errorf("db.ExecContext(update card_schedule) > %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: card %d version %d", ErrStaleSchedule, schedule.CardID, schedule.Version)
	}
	schedule.Version++
	return nil
}
