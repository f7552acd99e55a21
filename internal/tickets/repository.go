package tickets

import (
	"context"
	"errors"
	"time"

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

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

const ticketColumns = `protocol, kind, category, location_detail, description, evidence_image, status, submitted_at, resolved_at, submitted_by`

// CreateTx inserts the ticket row inside the given transaction so the caller
// can enqueue follow-up work atomically. Protocol collisions surface as
// *pgconn.PgError code 23505.
func (r *Repository) CreateTx(ctx context.Context, tx pgx.Tx, t *models.Ticket) error {
	return tx.QueryRow(ctx, `
		INSERT INTO tickets (protocol, kind, category, location_detail, description, evidence_image, status, submitted_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING submitted_at
	`, t.Protocol, t.Kind, t.Category, t.LocationDetail, t.Description, t.EvidenceImage, t.Status, t.SubmittedBy).Scan(&t.SubmittedAt)
}

// GetByProtocol returns the ticket or nil when no row matches.
func (r *Repository) GetByProtocol(ctx context.Context, protocol string) (*models.Ticket, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets WHERE protocol = $1
	`, protocol)
	return scanTicket(row)
}

func (r *Repository) ListOpen(ctx context.Context) ([]*models.Ticket, error) {
	return r.list(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets WHERE status != $1 ORDER BY submitted_at DESC
	`, models.StatusResolved)
}

func (r *Repository) ListResolved(ctx context.Context) ([]*models.Ticket, error) {
	return r.list(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets WHERE status = $1 ORDER BY submitted_at DESC
	`, models.StatusResolved)
}

func (r *Repository) ListBySubmitter(ctx context.Context, username string) ([]*models.Ticket, error) {
	return r.list(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets WHERE submitted_by = $1 ORDER BY submitted_at DESC
	`, username)
}

// UpdateStatus sets the status and resolution timestamp in one statement.
// resolvedAt is nil for any status other than Resolved, which clears a
// previously recorded timestamp when a ticket is reopened.
func (r *Repository) UpdateStatus(ctx context.Context, protocol, status string, resolvedAt *time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tickets SET status = $2, resolved_at = $3 WHERE protocol = $1
	`, protocol, status, resolvedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete is idempotent-safe: deleting an already-deleted protocol reports
// ErrNotFound rather than failing hard.
func (r *Repository) Delete(ctx context.Context, protocol string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE protocol = $1`, protocol)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]*models.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanTicket(row pgx.Row) (*models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(&t.Protocol, &t.Kind, &t.Category, &t.LocationDetail, &t.Description, &t.EvidenceImage, &t.Status, &t.SubmittedAt, &t.ResolvedAt, &t.SubmittedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
