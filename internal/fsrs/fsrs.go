// Package fsrs implements the memory-decay math behind the scheduler:
// retrievability, stability and difficulty updates, and interval computation.
// All functions are pure and deterministic so preview and real scheduling
// calls always agree.
package fsrs

import (
	"errors"
	"math"
)

// ErrInvalidRating is returned when a value outside Again..Easy is used.
var ErrInvalidRating = errors.New("fsrs: invalid rating")

const (
	// MinStability keeps stability strictly positive.
	MinStability = 0.01
	// MinDifficulty and MaxDifficulty bound the difficulty range.
	MinDifficulty = 1.0
	MaxDifficulty = 10.0
)

// DefaultWeights are the published FSRS-4.5 default parameters.
var DefaultWeights = [17]float64{
	0.4872, 1.4003, 3.7145, 13.8206, // w[0..3]  initial stability per rating
	5.1618, 1.2298, // w[4..5]   initial difficulty
	0.8975, 0.031, // w[6..7]   difficulty update and mean reversion
	1.6474, 0.1367, 1.0461, // w[8..10]  recall stability
	2.1072, 0.0793, 0.3246, 1.587, // w[11..14] forget stability
	0.2272, 2.8755, // w[15..16] hard penalty, easy bonus
}

// Model evaluates the memory formulas for one fixed weight set.
type Model struct {
	w [17]float64
}

// NewModel returns a model using the default weights.
func NewModel() *Model {
	return NewModelWithWeights(DefaultWeights)
}

// NewModelWithWeights returns a model using the given weights.
func NewModelWithWeights(w [17]float64) *Model {
	return &Model{w: w}
}

// Retrievability computes the recall probability after elapsedDays,
// R = (1 + t / (9 * S))^-1. The curve yields R = 0.9 at t = S.
// Corrupted stability values are clamped rather than rejected so one bad
// row cannot block a session.
func (m *Model) Retrievability(stability, elapsedDays float64) float64 {
	stability = clampStability(stability)
	if elapsedDays < 0 || math.IsNaN(elapsedDays) {
		elapsedDays = 0
	}
	return math.Pow(1+elapsedDays/(9*stability), -1)
}

// InitStability returns the initial stability for the first rating of a card.
func (m *Model) InitStability(rating Rating) float64 {
	if !rating.IsValid() {
		rating = Good
	}
	return clampStability(m.w[rating-1])
}

// InitDifficulty returns the initial difficulty for the first rating of a card,
// D0(G) = w4 - w5 * (G - 3), clamped to [1, 10].
func (m *Model) InitDifficulty(rating Rating) float64 {
	if !rating.IsValid() {
		rating = Good
	}
	return clampDifficulty(m.w[4] - m.w[5]*(float64(rating)-3))
}

// NextDifficulty nudges difficulty up for Again/Hard and down for Easy,
// with mean reversion toward the initial Good difficulty.
func (m *Model) NextDifficulty(difficulty float64, rating Rating) float64 {
	difficulty = clampDifficulty(difficulty)
	next := difficulty - m.w[6]*(float64(rating)-3)
	reverted := m.w[7]*m.InitDifficulty(Good) + (1-m.w[7])*next
	return clampDifficulty(reverted)
}

// NextStability returns the post-review stability. Again uses the forget
// formula; Hard/Good/Easy use the recall formula with the hard penalty or
// easy bonus applied. The result is never lower than MinStability and never
// non-finite.
func (m *Model) NextStability(stability, difficulty float64, rating Rating, retrievability float64) float64 {
	stability = clampStability(stability)
	difficulty = clampDifficulty(difficulty)
	retrievability = clampUnit(retrievability)

	var next float64
	if rating == Again {
		next = m.forgetStability(stability, difficulty, retrievability)
	} else {
		next = m.recallStability(stability, difficulty, rating, retrievability)
	}
	if math.IsNaN(next) || math.IsInf(next, 0) {
		return stability
	}
	return clampStability(next)
}

// recallStability computes
// S' = S * (1 + e^w8 * (11 - D) * S^-w9 * (e^((1-R)*w10) - 1) * penalty * bonus).
func (m *Model) recallStability(s, d float64, rating Rating, r float64) float64 {
	hardPenalty := 1.0
	if rating == Hard {
		hardPenalty = m.w[15]
	}
	easyBonus := 1.0
	if rating == Easy {
		easyBonus = m.w[16]
	}
	return s * (1 + math.Exp(m.w[8])*
		(11-d)*
		math.Pow(s, -m.w[9])*
		(math.Exp((1-r)*m.w[10])-1)*
		hardPenalty*easyBonus)
}

// forgetStability computes
// S' = w11 * D^-w12 * ((S+1)^w13 - 1) * e^((1-R)*w14), capped at the
// pre-lapse stability so forgetting never increases it.
func (m *Model) forgetStability(s, d, r float64) float64 {
	next := m.w[11] *
		math.Pow(d, -m.w[12]) *
		(math.Pow(s+1, m.w[13]) - 1) *
		math.Exp((1-r)*m.w[14])
	return math.Min(next, s)
}

// IntervalFromStability converts stability into a scheduling interval,
// round(S * modifier) clamped to [1, maxInterval] days.
func (m *Model) IntervalFromStability(stability, modifier float64, maxInterval int) int {
	stability = clampStability(stability)
	if modifier <= 0 || math.IsNaN(modifier) {
		modifier = 1
	}
	days := int(math.Round(stability * modifier))
	return ClampInterval(days, maxInterval)
}

// ClampInterval bounds an interval to [1, maxInterval] days.
func ClampInterval(days, maxInterval int) int {
	if days < 1 {
		days = 1
	}
	if maxInterval >= 1 && days > maxInterval {
		days = maxInterval
	}
	return days
}

func clampStability(s float64) float64 {
	if math.IsNaN(s) || s < MinStability {
		return MinStability
	}
	if math.IsInf(s, 1) {
		return math.MaxFloat64
	}
	return s
}

func clampDifficulty(d float64) float64 {
	if math.IsNaN(d) {
		return MinDifficulty
	}
	return math.Min(math.Max(d, MinDifficulty), MaxDifficulty)
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
