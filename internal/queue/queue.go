// Package queue builds the ordered, capped card sequence for one study
// session from a deck's schedules and policy.
package queue

import (
	"math/rand"
	"sort"
	"time"

	"github.com/srs-tools/cardsched/internal/policy"
	"github.com/srs-tools/cardsched/internal/scheduler"
)

// Builder constructs session queues under one deck policy.
type Builder struct {
	policy policy.DeckPolicy
}

// NewBuilder creates a Builder for the given policy.
func NewBuilder(p policy.DeckPolicy) *Builder {
	return &Builder{policy: p}
}

// Result is the output of one queue build.
type Result struct {
	// Cards is the ordered session queue. Each eligible card appears
	// exactly once.
	Cards []scheduler.CardSchedule
	// Buried holds sibling cards hidden until the next day. Callers must
	// persist these so they stay excluded across sessions.
	Buried []scheduler.CardSchedule
}

// Build filters, partitions, caps, orders and merges the deck's schedules
// into one session queue. Identical inputs produce identical queues; random
// orders are seeded from now.
func (b *Builder) Build(schedules []scheduler.CardSchedule, newStudiedToday int, now time.Time) Result {
	var newCards, learning, reviews []scheduler.CardSchedule
	for _, s := range schedules {
		if s.IsSuspended || s.BuriedAt(now) {
			continue
		}
		switch s.State {
		case scheduler.StateNew:
			newCards = append(newCards, s)
		case scheduler.StateLearning, scheduler.StateRelearning:
			// Never capped by daily limits: these are short-term
			// commitments already made to the learner.
			if !s.Due.After(now) {
				learning = append(learning, s)
			}
		case scheduler.StateReview:
			if !s.Due.After(now) {
				reviews = append(reviews, s)
			}
		}
	}

	rng := rand.New(rand.NewSource(now.UnixNano()))

	b.orderNew(newCards, rng)
	newCap := b.policy.NewPerDay - newStudiedToday
	if newCap < 0 {
		newCap = 0
	}
	if len(newCards) > newCap {
		newCards = newCards[:newCap]
	}

	b.orderReviews(reviews, now, rng)
	if len(reviews) > b.policy.ReviewPerDay {
		reviews = reviews[:b.policy.ReviewPerDay]
	}

	sortByDue(learning)

	var buried []scheduler.CardSchedule
	if b.policy.BuryNewSiblings {
		newCards, buried = burySiblings(newCards, buried, now)
	}
	if b.policy.BuryReviewSiblings {
		reviews, buried = burySiblings(reviews, buried, now)
	}

	var cards []scheduler.CardSchedule
	switch b.policy.InterleaveMode {
	case policy.InterleaveNewFirst:
		cards = interleave(learning, concat(newCards, reviews))
	case policy.InterleaveReviewsFirst:
		cards = interleave(learning, concat(reviews, newCards))
	default: // mix
		cards = interleave(learning, newCards, reviews)
	}

	return Result{Cards: cards, Buried: buried}
}

// orderNew applies the gather order and then the sort order to new cards.
func (b *Builder) orderNew(cards []scheduler.CardSchedule, rng *rand.Rand) {
	switch b.policy.NewGatherOrder {
	case policy.GatherPositionAsc:
		sort.SliceStable(cards, func(i, j int) bool {
			if cards[i].Position != cards[j].Position {
				return cards[i].Position < cards[j].Position
			}
			return cards[i].CardID < cards[j].CardID
		})
	case policy.GatherPositionDesc:
		sort.SliceStable(cards, func(i, j int) bool {
			if cards[i].Position != cards[j].Position {
				return cards[i].Position > cards[j].Position
			}
			return cards[i].CardID < cards[j].CardID
		})
	case policy.GatherRandom:
		sortByID(cards)
		rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	default: // insertion: creation order
		sortByID(cards)
	}

	switch b.policy.NewSortOrder {
	case policy.NewSortPosition:
		sort.SliceStable(cards, func(i, j int) bool {
			if cards[i].Position != cards[j].Position {
				return cards[i].Position < cards[j].Position
			}
			return cards[i].CardID < cards[j].CardID
		})
	case policy.NewSortRandom:
		rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	default: // gathered: keep the gather order
	}
}

// orderReviews sorts due reviews. Due-date ascending is the fairness
// default; relative overdueness surfaces the most overdue cards first.
func (b *Builder) orderReviews(cards []scheduler.CardSchedule, now time.Time, rng *rand.Rand) {
	switch b.policy.ReviewSortOrder {
	case policy.ReviewSortRandom:
		sortByID(cards)
		rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	case policy.ReviewSortOverdueness:
		sort.SliceStable(cards, func(i, j int) bool {
			oi, oj := overdueness(cards[i], now), overdueness(cards[j], now)
			if oi != oj {
				return oi > oj
			}
			return cards[i].CardID < cards[j].CardID
		})
	default: // due_asc
		sortByDue(cards)
	}
}

// overdueness is (now - due) / scheduled_days.
func overdueness(c scheduler.CardSchedule, now time.Time) float64 {
	scheduled := c.ScheduledDays
	if scheduled < 1 {
		scheduled = 1
	}
	return now.Sub(c.Due).Hours() / 24 / float64(scheduled)
}

// burySiblings keeps the first card of each sibling group after ordering and
// buries the rest until the next calendar day.
func burySiblings(cards, buried []scheduler.CardSchedule, now time.Time) ([]scheduler.CardSchedule, []scheduler.CardSchedule) {
	kept := make([]scheduler.CardSchedule, 0, len(cards))
	seen := make(map[int64]bool)
	until := nextMidnight(now)
	for _, c := range cards {
		if c.SiblingGroup != 0 && seen[c.SiblingGroup] {
			c.IsBuried = true
			buriedUntil := until
			c.BuriedUntil = &buriedUntil
			buried = append(buried, c)
			continue
		}
		seen[c.SiblingGroup] = true
		kept = append(kept, c)
	}
	return kept, buried
}

func nextMidnight(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
}

func sortByID(cards []scheduler.CardSchedule) {
	sort.SliceStable(cards, func(i, j int) bool { return cards[i].CardID < cards[j].CardID })
}

func sortByDue(cards []scheduler.CardSchedule) {
	sort.SliceStable(cards, func(i, j int) bool {
		if !cards[i].Due.Equal(cards[j].Due) {
			return cards[i].Due.Before(cards[j].Due)
		}
		return cards[i].CardID < cards[j].CardID
	})
}

func concat(lists ...[]scheduler.CardSchedule) []scheduler.CardSchedule {
	var out []scheduler.CardSchedule
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// interleave merges lists proportionally: at every position the list that is
// furthest behind its share emits next, with earlier lists winning ties.
func interleave(lists ...[]scheduler.CardSchedule) []scheduler.CardSchedule {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	out := make([]scheduler.CardSchedule, 0, total)
	emitted := make([]int, len(lists))

	for len(out) < total {
		best := -1
		var bestProgress float64
		for i, l := range lists {
			if emitted[i] >= len(l) {
				continue
			}
			progress := float64(emitted[i]) / float64(len(l))
			if best == -1 || progress < bestProgress {
				best = i
				bestProgress = progress
			}
		}
		out = append(out, lists[best][emitted[best]])
		emitted[best]++
	}
	return out
}
