package session

import (
	"context"

	"github.com/srs-tools/cardsched/internal/review"
	"github.com/srs-tools/cardsched/internal/scheduler"
)

//go:generate mockgen -source=store.go -destination=mock/store_mock.go -package=mock_session

// Store persists the outcome of one rating: the updated schedule and its
// review log entry, atomically. Implementations must not partially apply.
type Store interface {
	SaveReview(ctx context.Context, schedule scheduler.CardSchedule, entry review.Entry) error
}
