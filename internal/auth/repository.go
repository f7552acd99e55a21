package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/condopro/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const accountColumns = `username, password_hash, salt, role, full_name, apartment, email, phone, registered_at, active`

// Create inserts a new account. Unique-constraint violations propagate as
// *pgconn.PgError (code 23505) for the service to map.
func (r *Repository) Create(ctx context.Context, a *models.Account) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO accounts (username, password_hash, salt, role, full_name, apartment, email, phone, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING registered_at
	`, a.Username, a.PasswordHash, a.Salt, a.Role, a.FullName, a.Apartment, a.Email, a.Phone, a.Active).Scan(&a.RegisteredAt)
}

// GetByIdentifier resolves an active account whose username, email or
// apartment matches the identifier. Returns nil if nothing matches.
func (r *Repository) GetByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE (username = $1 OR email = $1 OR apartment = $1) AND active
	`, identifier)
	return scanAccount(row)
}

// GetByUsername returns the account regardless of active flag, or nil.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts WHERE username = $1
	`, username)
	return scanAccount(row)
}

// UpdatePassword stores a new hash and a new salt in one statement.
func (r *Repository) UpdatePassword(ctx context.Context, username, passwordHash string, salt []byte) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET password_hash = $2, salt = $3 WHERE username = $1
	`, username, passwordHash, salt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SetActive(ctx context.Context, username string, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE accounts SET active = $2 WHERE username = $1`, username, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the account row. Tickets keep their recorded submitter
// label, so nothing cascades.
func (r *Repository) Delete(ctx context.Context, username string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE username = $1`, username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) ListResidents(ctx context.Context) ([]*models.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts WHERE role = $1 ORDER BY registered_at DESC
	`, models.RoleResident)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// AdminExists reports whether any admin account is present (bootstrap check).
func (r *Repository) AdminExists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM accounts WHERE role = $1)
	`, models.RoleAdmin).Scan(&exists)
	return exists, err
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.Username, &a.PasswordHash, &a.Salt, &a.Role, &a.FullName, &a.Apartment, &a.Email, &a.Phone, &a.RegisteredAt, &a.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
