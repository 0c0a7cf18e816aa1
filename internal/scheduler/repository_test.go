package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduleColumns() []string {
	return []string{
		"id", "card_id", "deck_id", "sibling_group", "position", "stability",
		"difficulty", "elapsed_days", "scheduled_days", "lapse_interval_days",
		"reps", "lapses", "state", "step", "due", "last_review",
		"is_suspended", "is_leech", "is_buried", "buried_until", "version",
		"created_at", "updated_at",
	}
}

func TestDBScheduleRepository_FindByDeck(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantLen   int
		wantErr   bool
	}{
		{
			name: "returns all schedules including suspended",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(scheduleColumns()).
					AddRow(1, 10, 5, 0, 1, 2.5, 5.0, 0, 3, 0, 4, 0, "review", 0, now, now, false, false, false, nil, 1, now, now).
					AddRow(2, 20, 5, 7, 2, 0.0, 0.0, 0, 0, 0, 0, 0, "new", 0, now, nil, true, false, false, nil, 1, now, now)
				mock.ExpectQuery("SELECT \\* FROM card_schedules WHERE deck_id = \\? ORDER BY id").
					WithArgs(int64(5)).
					WillReturnRows(rows)
			},
			wantLen: 2,
		},
		{
			name: "db error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM card_schedules WHERE deck_id = \\? ORDER BY id").
					WillReturnError(fmt.Errorf("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			sqlxDB := sqlx.NewDb(db, "mysql")
			repo := NewDBScheduleRepository(sqlxDB)
			tt.setupMock(mock)

			got, err := repo.FindByDeck(context.Background(), 5)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, tt.wantLen)

			assert.Equal(t, int64(10), got[0].CardID)
			assert.Equal(t, StateReview, got[0].State)
			assert.Equal(t, 2.5, got[0].Stability)

			assert.Equal(t, StateNew, got[1].State)
			assert.True(t, got[1].IsSuspended)
			assert.Nil(t, got[1].LastReview)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBScheduleRepository_Update(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("increments the version on success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("UPDATE card_schedules SET").
			WillReturnResult(sqlmock.NewResult(0, 1))

		schedule := CardSchedule{ID: 1, CardID: 10, State: StateReview, Due: now, Version: 3}
		repo := NewDBScheduleRepository(sqlx.NewDb(db, "mysql"))
		require.NoError(t, repo.Update(context.Background(), &schedule))
		assert.Equal(t, int64(4), schedule.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version returns ErrStaleSchedule", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("UPDATE card_schedules SET").
			WillReturnResult(sqlmock.NewResult(0, 0))

		schedule := CardSchedule{ID: 1, CardID: 10, State: StateReview, Due: now, Version: 3}
		repo := NewDBScheduleRepository(sqlx.NewDb(db, "mysql"))
		err = repo.Update(context.Background(), &schedule)
		assert.ErrorIs(t, err, ErrStaleSchedule)
		assert.Equal(t, int64(3), schedule.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDBScheduleRepository_Create(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO card_schedules").
		WillReturnResult(sqlmock.NewResult(42, 1))

	schedule := NewCardSchedule(10, 5, now)
	repo := NewDBScheduleRepository(sqlx.NewDb(db, "mysql"))
	require.NoError(t, repo.Create(context.Background(), &schedule))
	assert.Equal(t, int64(42), schedule.ID)
	assert.Equal(t, int64(1), schedule.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}
