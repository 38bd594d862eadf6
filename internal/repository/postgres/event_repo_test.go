package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"eventgate/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func eventRows(e *domain.Event) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "description", "venue", "start_date", "end_date", "is_active", "is_free", "created_by", "created_at", "updated_at"}).
		AddRow(e.ID, e.Name, e.Description, e.Venue, e.StartDate, e.EndDate, e.IsActive, e.IsFree, e.CreatedBy, e.CreatedAt, e.UpdatedAt)
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()

	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success",
			event: &domain.Event{
				Name:      "GopherCon 2026",
				StartDate: start,
				EndDate:   end,
				IsActive:  true,
				CreatedBy: "user-1",
				CreatedAt: start,
				UpdatedAt: start,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WithArgs("GopherCon 2026", nil, nil, start, end, true, false, "user-1", start, start).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-1"))
			},
			wantID:  "ev-1",
			wantErr: false,
		},
		{
			name: "db error",
			event: &domain.Event{
				Name:      "Conf",
				StartDate: start,
				EndDate:   end,
				CreatedBy: "user-1",
				CreatedAt: start,
				UpdatedAt: start,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantID:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Create(ctx, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.event.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		want := &domain.Event{
			ID: "ev-1", Name: "GopherCon 2026",
			StartDate: start, EndDate: start.Add(8 * time.Hour),
			IsActive: true, CreatedBy: "user-1",
			CreatedAt: start, UpdatedAt: start,
		}
		mock.ExpectQuery(`SELECT id, name, description, venue, start_date, end_date`).
			WithArgs("ev-1").
			WillReturnRows(eventRows(want))

		repo := NewEventRepository(db)
		got, err := repo.GetByID(ctx, "ev-1")
		require.NoError(t, err)
		require.Equal(t, want, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, name, description, venue, start_date, end_date`).
			WithArgs("ev-missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.GetByID(ctx, "ev-missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_SetActive(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE events SET is_active`).
			WithArgs("ev-1", false).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewEventRepository(db)
		require.NoError(t, repo.SetActive(ctx, "ev-1", false))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE events SET is_active`).
			WithArgs("ev-missing", true).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewEventRepository(db)
		require.ErrorIs(t, repo.SetActive(ctx, "ev-missing", true), domain.ErrNotFound)
	})
}

func TestEventRepository_Update_NoFieldsFetchesCurrent(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	want := &domain.Event{
		ID: "ev-1", Name: "GopherCon 2026",
		StartDate: start, EndDate: start.Add(8 * time.Hour),
		CreatedBy: "user-1", CreatedAt: start, UpdatedAt: start,
	}
	mock.ExpectQuery(`SELECT id, name, description, venue, start_date, end_date`).
		WithArgs("ev-1").
		WillReturnRows(eventRows(want))

	repo := NewEventRepository(db)
	got, err := repo.Update(ctx, "ev-1", domain.EventUpdate{})
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
