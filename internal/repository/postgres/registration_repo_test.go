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

func TestRegistrationRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	reg := &domain.Registration{
		EventID:       "ev-1",
		Name:          "Ada Lovelace",
		Email:         "ada@example.com",
		Code:          "b2f9d9f2-27b1-4a9e-8f64-1f1f6f0a9a11",
		Status:        domain.RegistrationStatusPending,
		PaymentStatus: domain.PaymentStatusPaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	mock.ExpectQuery(`INSERT INTO registrations`).
		WithArgs("ev-1", nil, "Ada Lovelace", "ada@example.com", nil, reg.Code, "pending", "paid", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("reg-1"))

	repo := NewRegistrationRepository(db)
	require.NoError(t, repo.Create(ctx, reg))
	require.Equal(t, "reg-1", reg.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func registrationRows(reg *domain.Registration) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "event_id", "user_id", "name", "email", "phone", "code", "status", "payment_status", "created_at", "updated_at"}).
		AddRow(reg.ID, reg.EventID, reg.UserID, reg.Name, reg.Email, reg.Phone, reg.Code, reg.Status, reg.PaymentStatus, reg.CreatedAt, reg.UpdatedAt)
}

func TestRegistrationRepository_GetByCode(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success trims input", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		want := &domain.Registration{
			ID: "reg-1", EventID: "ev-1", Name: "Ada Lovelace", Email: "ada@example.com",
			Code: "code-1", Status: "confirmed", PaymentStatus: "paid",
			CreatedAt: now, UpdatedAt: now,
		}
		mock.ExpectQuery(`SELECT id, event_id, user_id, name, email, phone, code`).
			WithArgs("code-1").
			WillReturnRows(registrationRows(want))

		repo := NewRegistrationRepository(db)
		got, err := repo.GetByCode(ctx, "  code-1  ")
		require.NoError(t, err)
		require.Equal(t, want, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, event_id, user_id, name, email, phone, code`).
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		repo := NewRegistrationRepository(db)
		_, err = repo.GetByCode(ctx, "nope")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRegistrationRepository_ListByEventID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM registrations`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectQuery(`SELECT id, event_id, user_id, name, email, phone, code`).
		WithArgs("ev-1", 20, 20).
		WillReturnRows(registrationRows(&domain.Registration{
			ID: "reg-1", EventID: "ev-1", Name: "Ada Lovelace", Email: "ada@example.com",
			Code: "code-1", Status: "pending", PaymentStatus: "unpaid",
			CreatedAt: now, UpdatedAt: now,
		}))

	repo := NewRegistrationRepository(db)
	regs, total, err := repo.ListByEventID(ctx, "ev-1", domain.PaginationParams{Page: 2, PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, 42, total)
	require.Len(t, regs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepository_UpdateStatus_NotFound(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE registrations SET status`).
		WithArgs("reg-missing", "confirmed").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewRegistrationRepository(db)
	require.ErrorIs(t, repo.UpdateStatus(ctx, "reg-missing", "confirmed"), domain.ErrNotFound)
}
