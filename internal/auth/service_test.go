package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/condopro/backend/internal/models"
)

// ---------------------------------------------------------------------------
// In-memory AccountRepo mock.
// ---------------------------------------------------------------------------

type mockAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
}

func newMockAccountRepo(accs ...*models.Account) *mockAccountRepo {
	m := &mockAccountRepo{accounts: make(map[string]*models.Account)}
	for _, a := range accs {
		cp := *a
		m.accounts[a.Username] = &cp
	}
	return m
}

func duplicateKeyErr() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "accounts_pkey"}
}

func (m *mockAccountRepo) Create(_ context.Context, a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[a.Username]; ok {
		return duplicateKeyErr()
	}
	for _, existing := range m.accounts {
		if a.Email != nil && existing.Email != nil && *a.Email == *existing.Email {
			return duplicateKeyErr()
		}
		if a.Apartment != "" && a.Apartment == existing.Apartment {
			return duplicateKeyErr()
		}
	}
	cp := *a
	m.accounts[a.Username] = &cp
	return nil
}

func (m *mockAccountRepo) GetByIdentifier(_ context.Context, identifier string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if !a.Active {
			continue
		}
		if a.Username == identifier || a.Apartment == identifier || (a.Email != nil && *a.Email == identifier) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockAccountRepo) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[username]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *mockAccountRepo) UpdatePassword(_ context.Context, username, passwordHash string, salt []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[username]
	if !ok {
		return ErrNotFound
	}
	a.PasswordHash = passwordHash
	a.Salt = salt
	return nil
}

func (m *mockAccountRepo) SetActive(_ context.Context, username string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[username]
	if !ok {
		return ErrNotFound
	}
	a.Active = active
	return nil
}

func (m *mockAccountRepo) Delete(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[username]; !ok {
		return ErrNotFound
	}
	delete(m.accounts, username)
	return nil
}

func (m *mockAccountRepo) ListResidents(_ context.Context) ([]*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*models.Account
	for _, a := range m.accounts {
		if a.Role == models.RoleResident {
			cp := *a
			list = append(list, &cp)
		}
	}
	return list, nil
}

// ---

func residentAccount(t *testing.T, username, password, apartment, email string) *models.Account {
	t.Helper()
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt: %v", err)
	}
	return &models.Account{
		Username:     username,
		PasswordHash: HashPassword(password, salt),
		Salt:         salt,
		Role:         models.RoleResident,
		FullName:     "Maria Silva",
		Apartment:    apartment,
		Email:        &email,
		Active:       true,
	}
}

func TestLoginByEachIdentifier(t *testing.T) {
	repo := newMockAccountRepo(residentAccount(t, "maria", "pw123", "101A", "maria@example.com"))
	svc := NewService(repo)

	for _, identifier := range []string{"maria", "maria@example.com", "101A"} {
		t.Run(identifier, func(t *testing.T) {
			sess, token, err := svc.Login(context.Background(), identifier, "pw123")
			if err != nil {
				t.Fatalf("Login(%q): %v", identifier, err)
			}
			if token == "" {
				t.Error("expected a non-empty token")
			}
			if sess.Username != "maria" || sess.Role != models.RoleResident {
				t.Errorf("unexpected session: %+v", sess)
			}
			if sess.Apartment != "101A" {
				t.Errorf("session apartment = %q, want 101A", sess.Apartment)
			}
			if sess.MustChangePassword {
				t.Error("resident login must not raise the password advisory")
			}
		})
	}
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	inactive := residentAccount(t, "joao", "pw123", "202B", "joao@example.com")
	inactive.Active = false
	repo := newMockAccountRepo(
		residentAccount(t, "maria", "pw123", "101A", "maria@example.com"),
		inactive,
	)
	svc := NewService(repo)

	cases := []struct {
		name       string
		identifier string
		password   string
	}{
		{name: "unknown identifier", identifier: "nobody", password: "pw123"},
		{name: "wrong password", identifier: "maria", password: "wrong"},
		{name: "deactivated account with correct password", identifier: "joao", password: "pw123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Login(context.Background(), tc.identifier, tc.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestSeedAdminDefaultPasswordAdvisory(t *testing.T) {
	salt, _ := GenerateSalt()
	admin := &models.Account{
		Username:     models.SeedAdminUsername,
		PasswordHash: HashPassword(models.SeedAdminPassword, salt),
		Salt:         salt,
		Role:         models.RoleAdmin,
		FullName:     "Síndico Principal",
		Apartment:    "Admin",
		Active:       true,
	}
	repo := newMockAccountRepo(admin)
	svc := NewService(repo)

	sess, _, err := svc.Login(context.Background(), models.SeedAdminUsername, models.SeedAdminPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !sess.MustChangePassword {
		t.Error("seed admin with default password must raise the change-password advisory")
	}

	// After changing the password, the advisory is gone.
	if err := svc.ChangePassword(context.Background(), models.SeedAdminUsername, models.SeedAdminPassword, "s3cure-new"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	sess, _, err = svc.Login(context.Background(), models.SeedAdminUsername, "s3cure-new")
	if err != nil {
		t.Fatalf("Login after change: %v", err)
	}
	if sess.MustChangePassword {
		t.Error("advisory must clear once the password differs from the default")
	}
}

func TestValidateTokenRoundtrip(t *testing.T) {
	repo := newMockAccountRepo(residentAccount(t, "maria", "pw123", "101A", "maria@example.com"))
	svc := NewService(repo)

	_, token, err := svc.Login(context.Background(), "maria", "pw123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	sess, err := svc.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if sess.Username != "maria" || sess.Role != models.RoleResident || sess.Apartment != "101A" {
		t.Errorf("unexpected session from token: %+v", sess)
	}

	if _, err := svc.ValidateToken(context.Background(), token+"x"); err == nil {
		t.Error("expected tampered token to fail validation")
	}
}

func TestChangePassword(t *testing.T) {
	repo := newMockAccountRepo(residentAccount(t, "maria", "pw123", "101A", "maria@example.com"))
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, "maria", "wrong", "newpw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong old password: expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(ctx, "maria", "pw123", "pw123"); !errors.Is(err, ErrSamePassword) {
		t.Errorf("unchanged password: expected ErrSamePassword, got %v", err)
	}
	if err := svc.ChangePassword(ctx, "ghost", "pw123", "newpw"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing account: expected ErrNotFound, got %v", err)
	}

	oldSalt := append([]byte(nil), repo.accounts["maria"].Salt...)
	if err := svc.ChangePassword(ctx, "maria", "pw123", "newpw"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if string(repo.accounts["maria"].Salt) == string(oldSalt) {
		t.Error("password change must rotate the salt")
	}
	if _, _, err := svc.Login(ctx, "maria", "newpw"); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
	if _, _, err := svc.Login(ctx, "maria", "pw123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("login with old password must fail, got %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	repo := newMockAccountRepo()
	svc := NewService(repo)
	ctx := context.Background()

	first := RegisterParams{
		Username:  "maria",
		Password:  "pw123",
		FullName:  "Maria Silva",
		Apartment: "101A",
		Email:     "maria@example.com",
	}
	if _, err := svc.Register(ctx, first); err != nil {
		t.Fatalf("Register: %v", err)
	}

	second := RegisterParams{
		Username:  "other",
		Password:  "pw456",
		FullName:  "Other Person",
		Apartment: "202B",
		Email:     "maria@example.com", // same email
	}
	if _, err := svc.Register(ctx, second); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate email: expected ErrDuplicate, got %v", err)
	}

	// The first account is untouched.
	if _, _, err := svc.Login(ctx, "maria", "pw123"); err != nil {
		t.Errorf("original account lost after failed duplicate insert: %v", err)
	}
}

func TestRegisterAdminRole(t *testing.T) {
	repo := newMockAccountRepo()
	svc := NewService(repo)

	acc, err := svc.RegisterAdmin(context.Background(), "sindico2", "pw", "")
	if err != nil {
		t.Fatalf("RegisterAdmin: %v", err)
	}
	if acc.Role != models.RoleAdmin {
		t.Errorf("role = %q, want admin", acc.Role)
	}
	if acc.FullName == "" {
		t.Error("expected a default full name")
	}
}
