package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"eventgate/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

const registrationColumns = `id, event_id, user_id, name, email, phone, code, status, payment_status, created_at, updated_at`

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (event_id, user_id, name, email, phone, code, status, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		reg.EventID, reg.UserID, reg.Name, reg.Email, reg.Phone, reg.Code,
		reg.Status, reg.PaymentStatus, reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	return scanRegistrationRow(r.DB.QueryRowContext(ctx, query, id))
}

func (r *registrationRepository) GetByCode(ctx context.Context, code string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE code = $1`
	return scanRegistrationRow(r.DB.QueryRowContext(ctx, query, strings.TrimSpace(code)))
}

func (r *registrationRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE event_id = $1 AND email = $2`
	return scanRegistrationRow(r.DB.QueryRowContext(ctx, query, eventID, email))
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string, p domain.PaginationParams) ([]*domain.Registration, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistrationRow(rows)
		if err != nil {
			return nil, 0, err
		}
		regs = append(regs, reg)
	}
	return regs, total, rows.Err()
}

func (r *registrationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE registrations SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanRegistrationRow(row rowScanner) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var userIDNull, phoneNull sql.NullString
	err := row.Scan(
		&reg.ID, &reg.EventID, &userIDNull, &reg.Name, &reg.Email, &phoneNull,
		&reg.Code, &reg.Status, &reg.PaymentStatus, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if userIDNull.Valid {
		reg.UserID = &userIDNull.String
	}
	if phoneNull.Valid {
		reg.Phone = &phoneNull.String
	}
	return reg, nil
}
