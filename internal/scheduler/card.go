// Package scheduler owns per-card scheduling state and its transitions
// between the new, learning, review and relearning stages.
package scheduler

import "time"

// CardSchedule is the mutable scheduling state of one card for one learner.
// It is created once at card creation and mutated exactly once per review.
type CardSchedule struct {
	ID     int64 `db:"id" yaml:"id"`
	CardID int64 `db:"card_id" yaml:"card_id"`
	DeckID int64 `db:"deck_id" yaml:"deck_id"`

	// SiblingGroup links cards generated from one note; 0 means no siblings.
	// Position is the card's insertion order within the deck. Both are
	// denormalized from the card for queue ordering and burying.
	SiblingGroup int64 `db:"sibling_group" yaml:"sibling_group"`
	Position     int   `db:"position" yaml:"position"`

	Stability  float64 `db:"stability" yaml:"stability"`
	Difficulty float64 `db:"difficulty" yaml:"difficulty"`

	ElapsedDays   int `db:"elapsed_days" yaml:"elapsed_days"`
	ScheduledDays int `db:"scheduled_days" yaml:"scheduled_days"`

	// LapseIntervalDays is the post-graduation interval candidate computed
	// at the lapse that moved the card into relearning. Applied and reset
	// when the card graduates back to review.
	LapseIntervalDays int `db:"lapse_interval_days" yaml:"lapse_interval_days"`

	Reps   int `db:"reps" yaml:"reps"`
	Lapses int `db:"lapses" yaml:"lapses"`

	State State `db:"state" yaml:"state"`
	// Step indexes into the active learning or relearning step sequence.
	Step int `db:"step" yaml:"step"`

	Due        time.Time  `db:"due" yaml:"due"`
	LastReview *time.Time `db:"last_review" yaml:"last_review"`

	IsSuspended bool       `db:"is_suspended" yaml:"is_suspended"`
	IsLeech     bool       `db:"is_leech" yaml:"is_leech"`
	IsBuried    bool       `db:"is_buried" yaml:"is_buried"`
	BuriedUntil *time.Time `db:"buried_until" yaml:"buried_until"`

	// Version is the optimistic-concurrency token checked on every update.
	Version   int64     `db:"version" yaml:"version"`
	CreatedAt time.Time `db:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `db:"updated_at" yaml:"updated_at"`
}

// NewCardSchedule creates the schedule for a freshly created card,
// immediately due in the new state.
func NewCardSchedule(cardID, deckID int64, now time.Time) CardSchedule {
	return CardSchedule{
		CardID: cardID,
		DeckID: deckID,
		State:  StateNew,
		Due:    now,
	}
}

// BuriedAt reports whether the card is buried at the given time.
func (c CardSchedule) BuriedAt(now time.Time) bool {
	return c.IsBuried && c.BuriedUntil != nil && c.BuriedUntil.After(now)
}
