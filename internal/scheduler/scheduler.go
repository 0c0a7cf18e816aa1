package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/srs-tools/cardsched/internal/fsrs"
	"github.com/srs-tools/cardsched/internal/policy"
)

// Result is the outcome of scheduling one review.
type Result struct {
	Card CardSchedule
	// ReappearInSession marks cards still inside learning or relearning
	// steps; the session runner re-queues them instead of finishing them.
	ReappearInSession bool
}

// StateMachine applies ratings to card schedules under one deck policy.
// It is a pure computation: the input card is never mutated and identical
// inputs always produce identical outputs.
type StateMachine struct {
	policy policy.DeckPolicy
	model  *fsrs.Model
}

// NewStateMachine creates a state machine for the given policy.
// A nil model falls back to the default weights.
func NewStateMachine(p policy.DeckPolicy, model *fsrs.Model) *StateMachine {
	if model == nil {
		model = fsrs.NewModel()
	}
	return &StateMachine{policy: p, model: model}
}

// Schedule applies one rating to a card at the given time and returns the
// updated schedule. Invalid ratings and suspended or currently-buried cards
// are rejected before any state is computed.
func (sm *StateMachine) Schedule(card CardSchedule, rating fsrs.Rating, now time.Time) (Result, error) {
	if !rating.IsValid() {
		return Result{}, fmt.Errorf("%w: %d", fsrs.ErrInvalidRating, int(rating))
	}
	if card.IsSuspended {
		return Result{}, fmt.Errorf("%w: card %d", ErrSuspendedCard, card.CardID)
	}
	if card.BuriedAt(now) {
		return Result{}, fmt.Errorf("%w: card %d", ErrBuriedCard, card.CardID)
	}

	c := card
	c.ElapsedDays = 0
	if c.LastReview != nil {
		if days := now.Sub(*c.LastReview).Hours() / 24; days > 0 {
			c.ElapsedDays = int(days)
		}
	}

	var reappear bool
	switch c.State {
	case StateNew:
		reappear = sm.scheduleNew(&c, rating, now)
	case StateLearning:
		reappear = sm.scheduleStep(&c, rating, sm.policy.LearningSteps, now)
	case StateRelearning:
		reappear = sm.scheduleStep(&c, rating, sm.policy.RelearningSteps, now)
	case StateReview:
		reappear = sm.scheduleReview(&c, rating, now)
	default:
		return Result{}, fmt.Errorf("scheduler: card %d has invalid state %d", c.CardID, int(c.State))
	}

	c.Reps++
	reviewedAt := now
	c.LastReview = &reviewedAt
	return Result{Card: c, ReappearInSession: reappear}, nil
}

// PreviewInterval returns the interval the given rating would produce,
// without committing anything. It runs the exact scheduling computation on a
// copy, so the previewed interval always matches the real one.
func (sm *StateMachine) PreviewInterval(card CardSchedule, rating fsrs.Rating, now time.Time) (time.Duration, error) {
	res, err := sm.Schedule(card, rating, now)
	if err != nil {
		return 0, err
	}
	return res.Card.Due.Sub(now), nil
}

// PreviewIntervals returns the interval each of the four ratings would produce.
func (sm *StateMachine) PreviewIntervals(card CardSchedule, now time.Time) (map[fsrs.Rating]time.Duration, error) {
	previews := make(map[fsrs.Rating]time.Duration, 4)
	for _, rating := range fsrs.Ratings() {
		interval, err := sm.PreviewInterval(card, rating, now)
		if err != nil {
			return nil, err
		}
		previews[rating] = interval
	}
	return previews, nil
}

// scheduleNew moves a new card into learning, initializing stability and
// difficulty from the first rating, then applies the learning-step rules.
func (sm *StateMachine) scheduleNew(c *CardSchedule, rating fsrs.Rating, now time.Time) bool {
	c.Stability = sm.model.InitStability(rating)
	c.Difficulty = sm.model.InitDifficulty(rating)
	c.State = StateLearning
	c.Step = 0
	return sm.scheduleStep(c, rating, sm.policy.LearningSteps, now)
}

// scheduleStep applies learning/relearning step semantics. Again resets to
// the first step, Hard repeats the current step (interpolated at the first
// step), Good advances and graduates past the last step, Easy graduates
// immediately.
func (sm *StateMachine) scheduleStep(c *CardSchedule, rating fsrs.Rating, steps []int, now time.Time) bool {
	if len(steps) == 0 {
		sm.graduate(c, rating, now)
		return false
	}
	if c.Step >= len(steps) {
		// Policy shrank between sessions.
		c.Step = len(steps) - 1
	}

	switch rating {
	case fsrs.Again:
		c.Step = 0
		sm.dueInMinutes(c, steps[0], now)
		return true

	case fsrs.Hard:
		minutes := steps[c.Step]
		if c.Step == 0 {
			if len(steps) == 1 {
				minutes = steps[0] * 3 / 2
			} else {
				minutes = (steps[0] + steps[1]) / 2
			}
		}
		sm.dueInMinutes(c, minutes, now)
		return true

	case fsrs.Good:
		next := c.Step + 1
		if next >= len(steps) {
			sm.graduate(c, rating, now)
			return false
		}
		c.Step = next
		sm.dueInMinutes(c, steps[next], now)
		return true

	default: // Easy graduates regardless of remaining steps.
		sm.graduate(c, rating, now)
		return false
	}
}

// scheduleReview handles a card in the long-term review cycle.
func (sm *StateMachine) scheduleReview(c *CardSchedule, rating fsrs.Rating, now time.Time) bool {
	var elapsed float64
	if c.LastReview != nil {
		elapsed = now.Sub(*c.LastReview).Hours() / 24
		if elapsed < 0 {
			elapsed = 0
		}
	}
	retrievability := sm.model.Retrievability(c.Stability, elapsed)
	c.Stability = sm.model.NextStability(c.Stability, c.Difficulty, rating, retrievability)
	c.Difficulty = sm.model.NextDifficulty(c.Difficulty, rating)

	if rating == fsrs.Again {
		c.Lapses++

		// The post-graduation interval keeps a fraction of the pre-lapse
		// interval, floored by the policy. Applied once relearning graduates.
		candidate := int(math.Round(float64(c.ScheduledDays) * sm.policy.NewIntervalMultiplier))
		if candidate < sm.policy.MinIntervalAfterLapse {
			candidate = sm.policy.MinIntervalAfterLapse
		}
		c.LapseIntervalDays = fsrs.ClampInterval(candidate, sm.policy.MaxInterval)

		CheckLeech(c, sm.policy)

		steps := sm.policy.RelearningSteps
		if len(steps) == 0 || c.IsSuspended {
			// No relearning steps, or the lapse suspended the card as a
			// leech: apply the candidate immediately instead of entering
			// relearning, so the card never resurfaces this session.
			c.ScheduledDays = c.LapseIntervalDays
			c.LapseIntervalDays = 0
			c.Due = now.Add(time.Duration(c.ScheduledDays) * 24 * time.Hour)
			return false
		}

		c.State = StateRelearning
		c.Step = 0
		sm.dueInMinutes(c, steps[0], now)
		return true
	}

	days := sm.model.IntervalFromStability(c.Stability, sm.policy.IntervalModifier, sm.policy.MaxInterval)
	switch rating {
	case fsrs.Hard:
		days = int(math.Round(float64(days) * sm.policy.HardIntervalMult))
	case fsrs.Easy:
		days = int(math.Round(float64(days) * sm.policy.EasyBonus))
	}
	days = fsrs.ClampInterval(days, sm.policy.MaxInterval)

	c.ScheduledDays = days
	c.Due = now.Add(time.Duration(days) * 24 * time.Hour)
	return false
}

// graduate moves a card out of its step sequence into review. Cards leaving
// relearning get the interval candidate computed at the triggering lapse;
// cards leaving learning get the graduating or easy interval.
func (sm *StateMachine) graduate(c *CardSchedule, rating fsrs.Rating, now time.Time) {
	var days int
	switch {
	case c.State == StateRelearning:
		days = c.LapseIntervalDays
		if days < sm.policy.MinIntervalAfterLapse {
			days = sm.policy.MinIntervalAfterLapse
		}
		c.LapseIntervalDays = 0
	case rating == fsrs.Easy:
		days = sm.policy.EasyInterval
	default:
		days = sm.policy.GraduatingInterval
	}
	days = fsrs.ClampInterval(days, sm.policy.MaxInterval)

	c.State = StateReview
	c.Step = 0
	c.ScheduledDays = days
	c.Due = now.Add(time.Duration(days) * 24 * time.Hour)
}

func (sm *StateMachine) dueInMinutes(c *CardSchedule, minutes int, now time.Time) {
	c.ScheduledDays = 0
	c.Due = now.Add(time.Duration(minutes) * time.Minute)
}
