package review

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository defines operations on the review log.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	FindByCard(ctx context.Context, cardID int64) ([]Entry, error)
	FindByDeck(ctx context.Context, deckID int64) ([]Entry, error)
	CountNewStudiedSince(ctx context.Context, deckID int64, since time.Time) (int, error)
}

// DBRepository implements Repository using MySQL.
// It accepts sqlx.ExtContext so it works inside and outside transactions.
type DBRepository struct {
	db sqlx.ExtContext
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db sqlx.ExtContext) *DBRepository {
	return &DBRepository{db: db}
}

// Create appends a review log entry.
func (r *DBRepository) Create(ctx context.Context, entry *Entry) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO review_logs
		(card_id, deck_id, rating, response_time_ms, was_new, scheduled_days, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.CardID, entry.DeckID, entry.Rating, entry.ResponseTimeMs,
		entry.WasNew, entry.ScheduledDays, entry.ReviewedAt)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert review_log) > %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	entry.ID = id
	return nil
}

// FindByCard returns all review log entries for a card, oldest first.
func (r *DBRepository) FindByCard(ctx context.Context, cardID int64) ([]Entry, error) {
	var entries []Entry
	if err := sqlx.SelectContext(ctx, r.db, &entries,
		"SELECT * FROM review_logs WHERE card_id = ? ORDER BY reviewed_at", cardID); err != nil {
		return nil, fmt.Errorf("sqlx.SelectContext(review_logs by card) > %w", err)
	}
	return entries, nil
}

// FindByDeck returns all review log entries for a deck, oldest first.
func (r *DBRepository) FindByDeck(ctx context.Context, deckID int64) ([]Entry, error) {
	var entries []Entry
	if err := sqlx.SelectContext(ctx, r.db, &entries,
		"SELECT * FROM review_logs WHERE deck_id = ? ORDER BY reviewed_at", deckID); err != nil {
		return nil, fmt.Errorf("sqlx.SelectContext(review_logs by deck) > %w", err)
	}
	return entries, nil
}

// CountNewStudiedSince counts reviews of new cards in a deck since the given
// time, normally local midnight. Feeds the daily new-card cap.
func (r *DBRepository) CountNewStudiedSince(ctx context.Context, deckID int64, since time.Time) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, r.db, &count,
		"SELECT COUNT(*) FROM review_logs WHERE deck_id = ? AND was_new = TRUE AND reviewed_at >= ?",
		deckID, since); err != nil {
		return 0, fmt.Errorf("sqlx.GetContext(count new reviews) > %w", err)
	}
	return count, nil
}
