package scheduler

import "github.com/srs-tools/cardsched/internal/policy"

// CheckLeech flags a card whose lapse count has reached the policy threshold.
// With the suspend action the card is also excluded from all future queues
// until manually unsuspended; with the tag action it stays schedulable but
// flagged. Re-evaluating an already-leeched card changes nothing.
func CheckLeech(c *CardSchedule, p policy.DeckPolicy) {
	if c.Lapses < p.LeechThreshold {
		return
	}
	c.IsLeech = true
	if p.LeechAction == policy.LeechSuspend {
		c.IsSuspended = true
	}
}
