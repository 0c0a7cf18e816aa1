// Package statistics aggregates review logs into per-period reports.
// Read-only: statistics never feed scheduling decisions.
package statistics

import (
	"fmt"
	"sort"

	"github.com/srs-tools/cardsched/internal/fsrs"
	"github.com/srs-tools/cardsched/internal/review"
)

// ReviewStatistics holds statistics for a time period
type ReviewStatistics struct {
	Period      string // "2025-01" for monthly, "2025" for yearly
	Reviews     int    // Total reviews in the period
	NewCards    int    // Cards introduced (first review) in the period
	Lapses      int    // Again ratings on review-state cards
	LapseRate   float64
	AvgAnswerMs int
	UniqueCards int
}

// AggregateStatistics holds totals across all periods
type AggregateStatistics struct {
	Reviews     int
	NewCards    int
	Lapses      int
	LapseRate   float64
	UniqueCards int // Deduplicated across periods
}

// StatisticsResult holds both per-period and aggregate statistics
type StatisticsResult struct {
	Periods   []ReviewStatistics
	Aggregate AggregateStatistics
}

// periodData tracks counts per period
type periodData struct {
	reviews     int
	newCards    int
	lapses      int
	answerMsSum int
	uniqueCards map[int64]struct{}
}

// Calculate aggregates review log entries per month. It accepts optional
// year and month filters (0 means no filter). A lapse is an Again rating on
// a card that was not new.
func Calculate(entries []review.Entry, year, month int) StatisticsResult {
	stats := make(map[string]*periodData)
	globalUnique := make(map[int64]struct{})
	var aggregate AggregateStatistics

	for _, entry := range entries {
		if year != 0 && entry.ReviewedAt.Year() != year {
			continue
		}
		if month != 0 && int(entry.ReviewedAt.Month()) != month {
			continue
		}

		period := fmt.Sprintf("%04d-%02d", entry.ReviewedAt.Year(), int(entry.ReviewedAt.Month()))
		data, ok := stats[period]
		if !ok {
			data = &periodData{uniqueCards: make(map[int64]struct{})}
			stats[period] = data
		}

		data.reviews++
		data.answerMsSum += entry.ResponseTimeMs
		data.uniqueCards[entry.CardID] = struct{}{}
		aggregate.Reviews++
		globalUnique[entry.CardID] = struct{}{}

		if entry.WasNew {
			data.newCards++
			aggregate.NewCards++
		}
		if entry.Rating == fsrs.Again && !entry.WasNew {
			data.lapses++
			aggregate.Lapses++
		}
	}

	periods := make([]ReviewStatistics, 0, len(stats))
	for period, data := range stats {
		s := ReviewStatistics{
			Period:      period,
			Reviews:     data.reviews,
			NewCards:    data.newCards,
			Lapses:      data.lapses,
			UniqueCards: len(data.uniqueCards),
		}
		if data.reviews > 0 {
			s.LapseRate = float64(data.lapses) / float64(data.reviews)
			s.AvgAnswerMs = data.answerMsSum / data.reviews
		}
		periods = append(periods, s)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Period < periods[j].Period })

	aggregate.UniqueCards = len(globalUnique)
	if aggregate.Reviews > 0 {
		aggregate.LapseRate = float64(aggregate.Lapses) / float64(aggregate.Reviews)
	}

	return StatisticsResult{Periods: periods, Aggregate: aggregate}
}
