// Package session drives a single study session over a prepared queue.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"

	"github.com/srs-tools/cardsched/internal/fsrs"
	"github.com/srs-tools/cardsched/internal/review"
	"github.com/srs-tools/cardsched/internal/scheduler"
)

// Sentinel errors for the session package.
var (
	ErrSessionComplete = errors.New("session: no cards left to review")
	// ErrPersistence wraps store failures. The session position does not
	// advance, so the same rating can be retried without double-counting.
	ErrPersistence = errors.New("session: failed to persist review")
)

const persistAttempts = 3

// Runner presents cards one at a time, applies ratings through the state
// machine, and persists each review before advancing. Cards still inside
// learning steps go onto a re-queue that is drained only after the main
// queue is exhausted. Abandoning a session loses no committed work.
type Runner struct {
	machine *scheduler.StateMachine
	store   Store
	queue   []scheduler.CardSchedule
	requeue []scheduler.CardSchedule
}

// NewRunner creates a Runner over the queue produced by the queue builder.
func NewRunner(machine *scheduler.StateMachine, store Store, cards []scheduler.CardSchedule) *Runner {
	queue := make([]scheduler.CardSchedule, len(cards))
	copy(queue, cards)
	return &Runner{machine: machine, store: store, queue: queue}
}

// Current returns the card to present next, main queue first.
func (r *Runner) Current() (scheduler.CardSchedule, bool) {
	if len(r.queue) > 0 {
		return r.queue[0], true
	}
	if len(r.requeue) > 0 {
		return r.requeue[0], true
	}
	return scheduler.CardSchedule{}, false
}

// Done reports whether both queues are empty.
func (r *Runner) Done() bool {
	return len(r.queue) == 0 && len(r.requeue) == 0
}

// Remaining returns the number of pending presentations.
func (r *Runner) Remaining() int {
	return len(r.queue) + len(r.requeue)
}

// Rate applies a rating to the current card, persists the updated schedule
// together with its review log entry, and advances the session. On a
// persistence failure the current card stays current and the same rating can
// be submitted again.
func (r *Runner) Rate(ctx context.Context, rating fsrs.Rating, responseTime time.Duration, now time.Time) (scheduler.Result, error) {
	card, ok := r.Current()
	if !ok {
		return scheduler.Result{}, ErrSessionComplete
	}

	result, err := r.machine.Schedule(card, rating, now)
	if err != nil {
		return scheduler.Result{}, fmt.Errorf("machine.Schedule() > %w", err)
	}

	entry := review.Entry{
		CardID:         card.CardID,
		DeckID:         card.DeckID,
		Rating:         rating,
		ResponseTimeMs: int(responseTime.Milliseconds()),
		WasNew:         card.State == scheduler.StateNew,
		ScheduledDays:  result.Card.ScheduledDays,
		ReviewedAt:     now,
	}

	err = retry.Do(
		func() error { return r.store.SaveReview(ctx, result.Card, entry) },
		retry.Attempts(persistAttempts),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		// A version conflict cannot succeed without re-reading the row, so
		// only transient store errors are worth retrying.
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, scheduler.ErrStaleSchedule)
		}),
	)
	if err != nil {
		return scheduler.Result{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	r.advance(result)
	return result, nil
}

func (r *Runner) advance(result scheduler.Result) {
	if len(r.queue) > 0 {
		r.queue = r.queue[1:]
	} else {
		r.requeue = r.requeue[1:]
	}
	if result.ReappearInSession {
		r.requeue = append(r.requeue, result.Card)
	}
}
