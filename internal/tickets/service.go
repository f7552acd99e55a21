package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/condopro/backend/internal/models"
	"github.com/condopro/backend/internal/notify"
)

// ErrEmptyDescription is returned when a submission has no description.
var ErrEmptyDescription = errors.New("description is required")

// ErrInvalidKind is returned for a kind outside {ServiceRequest, Complaint}.
var ErrInvalidKind = errors.New("invalid ticket kind")

// ErrInvalidStatus is returned for a status outside the known set.
var ErrInvalidStatus = errors.New("invalid ticket status")

// ErrNotFound is returned when no ticket matches the protocol.
var ErrNotFound = errors.New("ticket not found")

// Protocol codes never take more than a couple of retries in practice; the
// bound only guards against a broken random source.
const maxProtocolAttempts = 5

// SubmitParams carries one submission. Submitter is the authenticated
// username or empty for anonymous visitors.
type SubmitParams struct {
	Kind           string
	Category       string
	LocationDetail string
	Description    string
	Image          []byte
	Submitter      string
}

// Repo is the persistence surface the service needs. CreateTx runs inside a
// transaction so the notification enqueue commits or rolls back with the row.
type Repo interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	CreateTx(ctx context.Context, tx pgx.Tx, t *models.Ticket) error
	GetByProtocol(ctx context.Context, protocol string) (*models.Ticket, error)
	ListOpen(ctx context.Context) ([]*models.Ticket, error)
	ListResolved(ctx context.Context) ([]*models.Ticket, error)
	ListBySubmitter(ctx context.Context, username string) ([]*models.Ticket, error)
	UpdateStatus(ctx context.Context, protocol, status string, resolvedAt *time.Time) error
	Delete(ctx context.Context, protocol string) error
}

// InsertNotifyTxFunc enqueues a submission notification within the given
// transaction. Provided by main as a closure over river.Client.InsertTx; nil
// disables notifications.
type InsertNotifyTxFunc func(ctx context.Context, tx pgx.Tx, args notify.TicketSubmittedArgs) error

type Service interface {
	Submit(ctx context.Context, p SubmitParams) (*models.Ticket, error)
	Lookup(ctx context.Context, protocol string) (*models.Ticket, error)
	ListOpen(ctx context.Context) ([]*models.Ticket, error)
	ListResolved(ctx context.Context) ([]*models.Ticket, error)
	ListBySubmitter(ctx context.Context, username string) ([]*models.Ticket, error)
	UpdateStatus(ctx context.Context, protocol, status string) error
	Delete(ctx context.Context, protocol string) error
}

type service struct {
	repo         Repo
	insertNotify InsertNotifyTxFunc
	now          func() time.Time
}

func NewService(repo Repo, insertNotify InsertNotifyTxFunc) *service {
	return &service{repo: repo, insertNotify: insertNotify, now: time.Now}
}

var _ Service = (*service)(nil)

// NewProtocol derives a public ticket code from a random UUID: the first
// eight hex characters, uppercased.
func NewProtocol() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// NormalizeProtocol uppercases and trims a user-supplied code so lookups are
// case-insensitive.
func NormalizeProtocol(protocol string) string {
	return strings.ToUpper(strings.TrimSpace(protocol))
}

func (s *service) Submit(ctx context.Context, p SubmitParams) (*models.Ticket, error) {
	if strings.TrimSpace(p.Description) == "" {
		return nil, ErrEmptyDescription
	}
	if p.Kind != models.KindServiceRequest && p.Kind != models.KindComplaint {
		return nil, ErrInvalidKind
	}

	submitter := p.Submitter
	// Complaints are anonymous no matter who files them.
	if p.Kind == models.KindComplaint || submitter == "" {
		submitter = models.AnonymousSubmitter
	}

	t := &models.Ticket{
		Kind:           p.Kind,
		Category:       p.Category,
		LocationDetail: p.LocationDetail,
		Description:    p.Description,
		EvidenceImage:  p.Image,
		Status:         models.StatusPending,
		SubmittedBy:    submitter,
	}

	// The store's primary-key constraint is the authority on uniqueness; a
	// collision regenerates the code and retries.
	for attempt := 0; attempt < maxProtocolAttempts; attempt++ {
		t.Protocol = NewProtocol()
		err := s.submitOnce(ctx, t)
		if err == nil {
			return t, nil
		}
		if isUniqueViolation(err) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("could not allocate a unique protocol after %d attempts", maxProtocolAttempts)
}

func (s *service) submitOnce(ctx context.Context, t *models.Ticket) error {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.repo.CreateTx(ctx, tx, t); err != nil {
		return err
	}
	if s.insertNotify != nil {
		err := s.insertNotify(ctx, tx, notify.TicketSubmittedArgs{
			Protocol:       t.Protocol,
			TicketKind:     t.Kind,
			Category:       t.Category,
			LocationDetail: t.LocationDetail,
			Description:    t.Description,
			SubmittedBy:    t.SubmittedBy,
		})
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *service) Lookup(ctx context.Context, protocol string) (*models.Ticket, error) {
	t, err := s.repo.GetByProtocol(ctx, NormalizeProtocol(protocol))
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *service) ListOpen(ctx context.Context) ([]*models.Ticket, error) {
	return s.repo.ListOpen(ctx)
}

func (s *service) ListResolved(ctx context.Context) ([]*models.Ticket, error) {
	return s.repo.ListResolved(ctx)
}

func (s *service) ListBySubmitter(ctx context.Context, username string) ([]*models.Ticket, error) {
	return s.repo.ListBySubmitter(ctx, username)
}

// UpdateStatus moves a ticket through its lifecycle. Entering Resolved
// stamps resolved_at; leaving Resolved clears it, so the timestamp is set
// exactly when the status says so.
func (s *service) UpdateStatus(ctx context.Context, protocol, status string) error {
	switch status {
	case models.StatusPending, models.StatusInProgress, models.StatusResolved:
	default:
		return ErrInvalidStatus
	}
	var resolvedAt *time.Time
	if status == models.StatusResolved {
		now := s.now()
		resolvedAt = &now
	}
	return s.repo.UpdateStatus(ctx, NormalizeProtocol(protocol), status, resolvedAt)
}

func (s *service) Delete(ctx context.Context, protocol string) error {
	return s.repo.Delete(ctx, NormalizeProtocol(protocol))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
