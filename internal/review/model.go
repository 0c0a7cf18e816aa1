// Package review provides the append-only review log and its repository.
package review

import (
	"time"

	"github.com/srs-tools/cardsched/internal/fsrs"
)

// Entry records a single committed review. Entries are written once and
// never mutated; they feed analytics and the daily new-card count, not
// scheduling decisions.
type Entry struct {
	ID             int64       `db:"id"`
	CardID         int64       `db:"card_id"`
	DeckID         int64       `db:"deck_id"`
	Rating         fsrs.Rating `db:"rating"`
	ResponseTimeMs int         `db:"response_time_ms"`
	// WasNew marks reviews of cards that were in the new state, so the
	// daily new-card count can be derived with one query.
	WasNew        bool      `db:"was_new"`
	ScheduledDays int       `db:"scheduled_days"`
	ReviewedAt    time.Time `db:"reviewed_at"`
	CreatedAt     time.Time `db:"created_at"`
}
