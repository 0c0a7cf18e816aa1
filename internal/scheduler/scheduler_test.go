package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srs-tools/cardsched/internal/fsrs"
	"github.com/srs-tools/cardsched/internal/policy"
	"github.com/srs-tools/cardsched/internal/scheduler"
	"github.com/srs-tools/cardsched/internal/testutil"
)

func testPolicy() policy.DeckPolicy {
	p := policy.Default()
	p.LearningSteps = []int{1, 10}
	p.RelearningSteps = []int{10}
	p.GraduatingInterval = 1
	p.EasyInterval = 4
	p.NewPerDay = 20
	p.ReviewPerDay = 200
	return p
}

func TestStateMachine_Schedule_LearningFlow(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	machine := scheduler.NewStateMachine(testPolicy(), fsrs.NewModel())

	card := testutil.NewSchedule(t, 1, now)

	// First Good moves past the first step.
	result, err := machine.Schedule(card, fsrs.Good, now)
	require.NoError(t, err)
	assert.Equal(t, scheduler.StateLearning, result.Card.State)
	assert.Equal(t, 1, result.Card.Step)
	assert.Equal(t, now.Add(10*time.Minute), result.Card.Due)
	assert.Equal(t, 1, result.Card.Reps)
	assert.True(t, result.ReappearInSession)
	assert.Greater(t, result.Card.Stability, 0.0)
	assert.GreaterOrEqual(t, result.Card.Difficulty, 1.0)

	// Second Good graduates with the graduating interval.
	later := now.Add(10 * time.Minute)
	result, err = machine.Schedule(result.Card, fsrs.Good, later)
	require.NoError(t, err)
	assert.Equal(t, scheduler.StateReview, result.Card.State)
	assert.Equal(t, 1, result.Card.ScheduledDays)
	assert.Equal(t, later.Add(24*time.Hour), result.Card.Due)
	assert.False(t, result.ReappearInSession)

	// Again the next day lapses into relearning.
	nextDay := later.Add(24 * time.Hour)
	result, err = machine.Schedule(result.Card, fsrs.Again, nextDay)
	require.NoError(t, err)
	assert.Equal(t, scheduler.StateRelearning, result.Card.State)
	assert.Equal(t, 1, result.Card.Lapses)
	assert.Equal(t, nextDay.Add(10*time.Minute), result.Card.Due)
	assert.True(t, result.ReappearInSession)
}

func TestStateMachine_Schedule_LearningSteps(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	machine := scheduler.NewStateMachine(testPolicy(), fsrs.NewModel())

	t.Run("again resets to the first step", func(t *testing.T) {
		card := testutil.NewSchedule(t, 1, now)
		result, err := machine.Schedule(card, fsrs.Good, now)
		require.NoError(t, err)
		require.Equal(t, 1, result.Card.Step)

		result, err = machine.Schedule(result.Card, fsrs.Again, now.Add(10*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, scheduler.StateLearning, result.Card.State)
		assert.Equal(t, 0, result.Card.Step)
		assert.Equal(t, now.Add(11*time.Minute), result.Card.Due)
		assert.True(t, result.ReappearInSession)
	})

	t.Run("hard interpolates without advancing", func(t *testing.T) {
		card := testutil.NewSchedule(t, 1, now)
		result, err := machine.Schedule(card, fsrs.Hard, now)
		require.NoError(t, err)
		assert.Equal(t, scheduler.StateLearning, result.Card.State)
		assert.Equal(t, 0, result.Card.Step)
		// Halfway between the 1m and 10m steps, in whole minutes.
		assert.Equal(t, now.Add(5*time.Minute), result.Card.Due)
		assert.True(t, result.ReappearInSession)
	})

	t.Run("easy graduates immediately with the easy interval", func(t *testing.T) {
		card := testutil.NewSchedule(t, 1, now)
		result, err := machine.Schedule(card, fsrs.Easy, now)
		require.NoError(t, err)
		assert.Equal(t, scheduler.StateReview, result.Card.State)
		assert.Equal(t, 4, result.Card.ScheduledDays)
		assert.False(t, result.ReappearInSession)
	})

	t.Run("empty steps graduate on the first rating", func(t *testing.T) {
		p := testPolicy()
		p.LearningSteps = nil
		noSteps := scheduler.NewStateMachine(p, fsrs.NewModel())

		card := testutil.NewSchedule(t, 1, now)
		result, err := noSteps.Schedule(card, fsrs.Good, now)
		require.NoError(t, err)
		assert.Equal(t, scheduler.StateReview, result.Card.State)
		assert.Equal(t, p.GraduatingInterval, result.Card.ScheduledDays)
		assert.False(t, result.ReappearInSession)
	})
}

func TestStateMachine_Schedule_Review(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("repeated good reviews never decrease stability", func(t *testing.T) {
		machine := scheduler.NewStateMachine(testPolicy(), fsrs.NewModel())
		card := testutil.ReviewSchedule(t, 1, now, 5, 5, 5)

		when := now
		stability := card.Stability
		for i := 0; i < 10; i++ {
			result, err := machine.Schedule(card, fsrs.Good, when)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, result.Card.Stability, stability, "repetition %d", i)

			stability = result.Card.Stability
			card = result.Card
			when = card.Due
		}
	})

	t.Run("easy yields a strictly longer interval than good", func(t *testing.T) {
		p := testPolicy()
		p.EasyBonus = 1.3
		p.IntervalModifier = 1.0
		machine := scheduler.NewStateMachine(p, fsrs.NewModel())
		card := testutil.ReviewSchedule(t, 1, now, 10, 5, 10)

		good, err := machine.Schedule(card, fsrs.Good, now)
		require.NoError(t, err)
		easy, err := machine.Schedule(card, fsrs.Easy, now)
		require.NoError(t, err)

		assert.Greater(t, easy.Card.ScheduledDays, good.Card.ScheduledDays)
	})

	t.Run("lapse carries a reduced interval through relearning", func(t *testing.T) {
		p := testPolicy()
		p.NewIntervalMultiplier = 0.5
		p.MinIntervalAfterLapse = 1
		machine := scheduler.NewStateMachine(p, fsrs.NewModel())
		card := testutil.ReviewSchedule(t, 1, now, 10, 5, 10)

		lapsed, err := machine.Schedule(card, fsrs.Again, now)
		require.NoError(t, err)
		assert.Equal(t, scheduler.StateRelearning, lapsed.Card.State)
		assert.Equal(t, 5, lapsed.Card.LapseIntervalDays)
		assert.True(t, lapsed.ReappearInSession)

		graduated, err := machine.Schedule(lapsed.Card, fsrs.Good, now.Add(10*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, scheduler.StateReview, graduated.Card.State)
		assert.Equal(t, 5, graduated.Card.ScheduledDays)
		assert.Less(t, graduated.Card.ScheduledDays, card.ScheduledDays)
		assert.Zero(t, graduated.Card.LapseIntervalDays)
	})

	t.Run("lapse floor applies when the multiplier is zero", func(t *testing.T) {
		p := testPolicy()
		p.NewIntervalMultiplier = 0
		p.MinIntervalAfterLapse = 2
		machine := scheduler.NewStateMachine(p, fsrs.NewModel())
		card := testutil.ReviewSchedule(t, 1, now, 10, 5, 10)

		lapsed, err := machine.Schedule(card, fsrs.Again, now)
		require.NoError(t, err)
		assert.Equal(t, 2, lapsed.Card.LapseIntervalDays)
	})

	t.Run("empty relearning steps graduate immediately", func(t *testing.T) {
		p := testPolicy()
		p.RelearningSteps = nil
		p.NewIntervalMultiplier = 0.5
		machine := scheduler.NewStateMachine(p, fsrs.NewModel())
		card := testutil.ReviewSchedule(t, 1, now, 10, 5, 10)

		result, err := machine.Schedule(card, fsrs.Again, now)
		require.NoError(t, err)
		assert.Equal(t, scheduler.StateReview, result.Card.State)
		assert.Equal(t, 5, result.Card.ScheduledDays)
		assert.Equal(t, 1, result.Card.Lapses)
		assert.False(t, result.ReappearInSession)
	})

	t.Run("suspending lapse finishes the card instead of relearning", func(t *testing.T) {
		p := testPolicy()
		p.LeechThreshold = 8
		p.LeechAction = policy.LeechSuspend
		p.NewIntervalMultiplier = 0.5
		machine := scheduler.NewStateMachine(p, fsrs.NewModel())

		card := testutil.ReviewSchedule(t, 1, now, 10, 5, 10)
		card.Lapses = 7

		result, err := machine.Schedule(card, fsrs.Again, now)
		require.NoError(t, err)
		assert.Equal(t, 8, result.Card.Lapses)
		assert.True(t, result.Card.IsLeech)
		assert.True(t, result.Card.IsSuspended)
		// The card must not come back this session: a suspended card can
		// never be scheduled again, so re-presenting it would abort the run.
		assert.False(t, result.ReappearInSession)
		assert.Equal(t, scheduler.StateReview, result.Card.State)
		assert.Equal(t, 5, result.Card.ScheduledDays)
		assert.Zero(t, result.Card.LapseIntervalDays)
	})

	t.Run("tagging lapse still enters relearning", func(t *testing.T) {
		p := testPolicy()
		p.LeechThreshold = 8
		p.LeechAction = policy.LeechTag
		machine := scheduler.NewStateMachine(p, fsrs.NewModel())

		card := testutil.ReviewSchedule(t, 1, now, 10, 5, 10)
		card.Lapses = 7

		result, err := machine.Schedule(card, fsrs.Again, now)
		require.NoError(t, err)
		assert.True(t, result.Card.IsLeech)
		assert.False(t, result.Card.IsSuspended)
		assert.Equal(t, scheduler.StateRelearning, result.Card.State)
		assert.True(t, result.ReappearInSession)
	})

	t.Run("intervals respect the maximum", func(t *testing.T) {
		p := testPolicy()
		p.MaxInterval = 3
		machine := scheduler.NewStateMachine(p, fsrs.NewModel())
		card := testutil.ReviewSchedule(t, 1, now, 500, 3, 3)

		result, err := machine.Schedule(card, fsrs.Easy, now)
		require.NoError(t, err)
		assert.Equal(t, 3, result.Card.ScheduledDays)
	})
}

func TestStateMachine_Schedule_Preconditions(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	machine := scheduler.NewStateMachine(testPolicy(), fsrs.NewModel())

	t.Run("invalid rating is rejected without mutation", func(t *testing.T) {
		card := testutil.NewSchedule(t, 1, now)
		_, err := machine.Schedule(card, fsrs.Rating(0), now)
		assert.ErrorIs(t, err, fsrs.ErrInvalidRating)

		_, err = machine.Schedule(card, fsrs.Rating(5), now)
		assert.ErrorIs(t, err, fsrs.ErrInvalidRating)
	})

	t.Run("suspended card is rejected", func(t *testing.T) {
		card := testutil.NewSchedule(t, 1, now, testutil.WithSuspended())
		_, err := machine.Schedule(card, fsrs.Good, now)
		assert.ErrorIs(t, err, scheduler.ErrSuspendedCard)
	})

	t.Run("buried card is rejected until it unburies", func(t *testing.T) {
		card := testutil.NewSchedule(t, 1, now)
		until := now.Add(12 * time.Hour)
		card.IsBuried = true
		card.BuriedUntil = &until

		_, err := machine.Schedule(card, fsrs.Good, now)
		assert.ErrorIs(t, err, scheduler.ErrBuriedCard)

		// Past the bury horizon the card schedules normally.
		_, err = machine.Schedule(card, fsrs.Good, until.Add(time.Minute))
		assert.NoError(t, err)
	})
}

func TestStateMachine_PreviewInterval(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	machine := scheduler.NewStateMachine(testPolicy(), fsrs.NewModel())
	card := testutil.ReviewSchedule(t, 1, now, 10, 5, 10)

	t.Run("matches the committed interval for every rating", func(t *testing.T) {
		for _, rating := range fsrs.Ratings() {
			preview, err := machine.PreviewInterval(card, rating, now)
			require.NoError(t, err)

			result, err := machine.Schedule(card, rating, now)
			require.NoError(t, err)
			assert.Equal(t, result.Card.Due.Sub(now), preview, "rating %s", rating)
		}
	})

	t.Run("does not mutate the card", func(t *testing.T) {
		before := card
		_, err := machine.PreviewIntervals(card, now)
		require.NoError(t, err)
		assert.Equal(t, before, card)
	})
}
