package auth

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/condopro/backend/internal/models"
)

// ErrDuplicate is returned when username, email or apartment is already taken.
var ErrDuplicate = errors.New("username, email or apartment already registered")

// ErrInvalidCredentials is deliberately generic: it never reveals whether
// the identifier, the password or the active flag was the problem.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrSamePassword is returned when a password change reuses the old password.
var ErrSamePassword = errors.New("new password must differ from the current one")

// ErrNotFound is returned for operations on a missing account.
var ErrNotFound = errors.New("account not found")

// Session is the authenticated principal carried through a request. It is
// constructed by Login, serialized into the bearer token, and rebuilt by
// ValidateToken; there is no ambient session state anywhere else.
type Session struct {
	Username    string
	Role        string
	DisplayName string
	Apartment   string

	// MustChangePassword is set once, at login, when the bootstrap admin
	// authenticates with the well-known default password.
	MustChangePassword bool
}

// RegisterParams are the fields for resident self-registration.
type RegisterParams struct {
	Username  string
	Password  string
	FullName  string
	Apartment string
	Email     string
	Phone     string
}

// AccountRepo is the persistence surface the service needs.
type AccountRepo interface {
	Create(ctx context.Context, a *models.Account) error
	GetByIdentifier(ctx context.Context, identifier string) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	UpdatePassword(ctx context.Context, username, passwordHash string, salt []byte) error
	SetActive(ctx context.Context, username string, active bool) error
	Delete(ctx context.Context, username string) error
	ListResidents(ctx context.Context) ([]*models.Account, error)
}

type Service interface {
	Register(ctx context.Context, p RegisterParams) (*models.Account, error)
	RegisterAdmin(ctx context.Context, username, password, fullName string) (*models.Account, error)
	Login(ctx context.Context, identifier, password string) (*Session, string, error)
	ValidateToken(ctx context.Context, token string) (*Session, error)
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error
	SetActive(ctx context.Context, username string, active bool) error
	DeleteAccount(ctx context.Context, username string) error
	ListResidents(ctx context.Context) ([]*models.Account, error)
}

type service struct {
	repo   AccountRepo
	secret []byte
}

func NewService(repo AccountRepo) *service {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "condopro-dev-secret"
	}
	return &service{repo: repo, secret: []byte(secret)}
}

var _ Service = (*service)(nil)

type claims struct {
	jwt.RegisteredClaims
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
	Apartment   string `json:"apartment"`
}

func (s *service) Register(ctx context.Context, p RegisterParams) (*models.Account, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return nil, err
	}
	acc := &models.Account{
		Username:     p.Username,
		PasswordHash: HashPassword(p.Password, salt),
		Salt:         salt,
		Role:         models.RoleResident,
		FullName:     p.FullName,
		Apartment:    p.Apartment,
		Email:        optional(p.Email),
		Phone:        optional(p.Phone),
		Active:       true,
	}
	if err := s.repo.Create(ctx, acc); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return acc, nil
}

func (s *service) RegisterAdmin(ctx context.Context, username, password, fullName string) (*models.Account, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return nil, err
	}
	if fullName == "" {
		fullName = "Administrador"
	}
	acc := &models.Account{
		Username:     username,
		PasswordHash: HashPassword(password, salt),
		Salt:         salt,
		Role:         models.RoleAdmin,
		FullName:     fullName,
		Active:       true,
	}
	if err := s.repo.Create(ctx, acc); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return acc, nil
}

func (s *service) Login(ctx context.Context, identifier, password string) (*Session, string, error) {
	acc, err := s.repo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, "", err
	}
	if acc == nil || !VerifyPassword(password, acc.PasswordHash, acc.Salt) {
		return nil, "", ErrInvalidCredentials
	}
	sess := &Session{
		Username:    acc.Username,
		Role:        acc.Role,
		DisplayName: acc.FullName,
		Apartment:   acc.Apartment,
		MustChangePassword: acc.Username == models.SeedAdminUsername &&
			password == models.SeedAdminPassword,
	}
	token, err := s.issueToken(sess)
	if err != nil {
		return nil, "", err
	}
	return sess, token, nil
}

func (s *service) issueToken(sess *Session) (string, error) {
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.Username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Role:        sess.Role,
		DisplayName: sess.DisplayName,
		Apartment:   sess.Apartment,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.secret)
}

func (s *service) ValidateToken(ctx context.Context, token string) (*Session, error) {
	tok, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	c, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid token")
	}
	return &Session{
		Username:    c.Subject,
		Role:        c.Role,
		DisplayName: c.DisplayName,
		Apartment:   c.Apartment,
	}, nil
}

func (s *service) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	acc, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if acc == nil {
		return ErrNotFound
	}
	if !VerifyPassword(oldPassword, acc.PasswordHash, acc.Salt) {
		return ErrInvalidCredentials
	}
	if newPassword == oldPassword {
		return ErrSamePassword
	}
	salt, err := GenerateSalt()
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, username, HashPassword(newPassword, salt), salt)
}

func (s *service) SetActive(ctx context.Context, username string, active bool) error {
	return s.repo.SetActive(ctx, username, active)
}

func (s *service) DeleteAccount(ctx context.Context, username string) error {
	return s.repo.Delete(ctx, username)
}

func (s *service) ListResidents(ctx context.Context) ([]*models.Account, error) {
	return s.repo.ListResidents(ctx)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
