// Package testutil provides shared test helpers for schedules, policies and
// config fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/srs-tools/cardsched/internal/scheduler"
)

// SetupTestConfig creates a minimal config file and the policy directory for
// testing. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	policiesDir := filepath.Join(tmpDir, "policies")
	require.NoError(t, os.MkdirAll(policiesDir, 0755))

	configContent := fmt.Sprintf(`decks:
  policies_directory: %s
database:
  host: localhost
  port: 3306
  database: cardsched_test
`, policiesDir)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// ScheduleOption configures optional fields when creating a schedule fixture.
type ScheduleOption func(*scheduler.CardSchedule)

// WithState sets the schedule state.
func WithState(state scheduler.State) ScheduleOption {
	return func(c *scheduler.CardSchedule) { c.State = state }
}

// WithDue sets the due timestamp.
func WithDue(due time.Time) ScheduleOption {
	return func(c *scheduler.CardSchedule) { c.Due = due }
}

// WithMemory sets stability and difficulty.
func WithMemory(stability, difficulty float64) ScheduleOption {
	return func(c *scheduler.CardSchedule) {
		c.Stability = stability
		c.Difficulty = difficulty
	}
}

// WithScheduledDays sets the last scheduled interval.
func WithScheduledDays(days int) ScheduleOption {
	return func(c *scheduler.CardSchedule) { c.ScheduledDays = days }
}

// WithLastReview sets the last review timestamp.
func WithLastReview(at time.Time) ScheduleOption {
	return func(c *scheduler.CardSchedule) { c.LastReview = &at }
}

// WithSiblingGroup sets the sibling group.
func WithSiblingGroup(group int64) ScheduleOption {
	return func(c *scheduler.CardSchedule) { c.SiblingGroup = group }
}

// WithPosition sets the deck position.
func WithPosition(position int) ScheduleOption {
	return func(c *scheduler.CardSchedule) { c.Position = position }
}

// WithSuspended marks the schedule suspended.
func WithSuspended() ScheduleOption {
	return func(c *scheduler.CardSchedule) { c.IsSuspended = true }
}

// NewSchedule creates a schedule fixture in the new state, due now, with the
// given card id. Deck id defaults to 1.
func NewSchedule(t *testing.T, cardID int64, now time.Time, opts ...ScheduleOption) scheduler.CardSchedule {
	t.Helper()

	c := scheduler.NewCardSchedule(cardID, 1, now)
	c.ID = cardID
	c.Position = int(cardID)
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ReviewSchedule creates a schedule fixture in the review state, due now,
// reviewed scheduledDays ago.
func ReviewSchedule(t *testing.T, cardID int64, now time.Time, stability, difficulty float64, scheduledDays int, opts ...ScheduleOption) scheduler.CardSchedule {
	t.Helper()

	last := now.AddDate(0, 0, -scheduledDays)
	base := []ScheduleOption{
		WithState(scheduler.StateReview),
		WithMemory(stability, difficulty),
		WithScheduledDays(scheduledDays),
		WithLastReview(last),
		WithDue(now),
	}
	c := NewSchedule(t, cardID, now, append(base, opts...)...)
	c.Reps = 1
	return c
}
