// Package storage wires the schedule and review log repositories into the
// transactional store the session runner persists through.
package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/srs-tools/cardsched/internal/review"
	"github.com/srs-tools/cardsched/internal/scheduler"
)

// DBStore persists session output atomically: one transaction per rating
// covering the schedule update and the review log insert.
type DBStore struct {
	db *sqlx.DB
}

// NewDBStore creates a DBStore.
func NewDBStore(db *sqlx.DB) *DBStore {
	return &DBStore{db: db}
}

// SaveReview writes the updated schedule and its review log entry in one
// transaction. The schedule update carries an optimistic version check, so a
// concurrent session on the same card fails cleanly with
// scheduler.ErrStaleSchedule and nothing is written.
func (s *DBStore) SaveReview(ctx context.Context, schedule scheduler.CardSchedule, entry review.Entry) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTxx() > %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := scheduler.NewDBScheduleRepository(tx).Update(ctx, &schedule); err != nil {
		return fmt.Errorf("scheduleRepository.Update() > %w", err)
	}
	if err := review.NewDBRepository(tx).Create(ctx, &entry); err != nil {
		return fmt.Errorf("reviewRepository.Create() > %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit() > %w", err)
	}
	return nil
}

// BurySchedules persists the buried flags set by the queue builder.
func (s *DBStore) BurySchedules(ctx context.Context, schedules []scheduler.CardSchedule) error {
	repo := scheduler.NewDBScheduleRepository(s.db)
	for i := range schedules {
		if err := repo.Update(ctx, &schedules[i]); err != nil {
			return fmt.Errorf("scheduleRepository.Update(card %d) > %w", schedules[i].CardID, err)
		}
	}
	return nil
}
