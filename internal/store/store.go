// Package store owns the schema and the first-run bootstrap.
package store

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/condopro/backend/internal/auth"
	"github.com/condopro/backend/internal/models"
	"github.com/condopro/backend/internal/settings"
)

// Apartment uniqueness is enforced only for non-empty values: admin accounts
// carry no apartment.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		username      text PRIMARY KEY,
		password_hash text NOT NULL,
		salt          bytea NOT NULL,
		role          text NOT NULL,
		full_name     text NOT NULL DEFAULT '',
		apartment     text NOT NULL DEFAULT '',
		email         text UNIQUE,
		phone         text,
		registered_at timestamptz NOT NULL DEFAULT now(),
		active        boolean NOT NULL DEFAULT true
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS accounts_apartment_key
		ON accounts (apartment) WHERE apartment <> ''`,
	`CREATE TABLE IF NOT EXISTS tickets (
		protocol        text PRIMARY KEY,
		kind            text NOT NULL,
		category        text NOT NULL,
		location_detail text NOT NULL DEFAULT '',
		description     text NOT NULL,
		evidence_image  bytea,
		status          text NOT NULL DEFAULT 'Pending',
		submitted_at    timestamptz NOT NULL DEFAULT now(),
		resolved_at     timestamptz,
		submitted_by    text NOT NULL DEFAULT 'Anonymous'
	)`,
	`CREATE INDEX IF NOT EXISTS tickets_status_idx ON tickets (status)`,
	`CREATE INDEX IF NOT EXISTS tickets_submitted_by_idx ON tickets (submitted_by)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key   text PRIMARY KEY,
		value text NOT NULL DEFAULT ''
	)`,
}

// Migrate applies the schema. Statements are idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Bootstrap seeds the default admin account and default settings on first
// startup. The seeded admin logs in with a well-known password and is
// advised to change it immediately.
func Bootstrap(ctx context.Context, accounts *auth.Repository, settingsRepo *settings.Repository, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	exists, err := accounts.AdminExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		salt, err := auth.GenerateSalt()
		if err != nil {
			return err
		}
		err = accounts.Create(ctx, &models.Account{
			Username:     models.SeedAdminUsername,
			PasswordHash: auth.HashPassword(models.SeedAdminPassword, salt),
			Salt:         salt,
			Role:         models.RoleAdmin,
			FullName:     "Síndico Principal",
			Apartment:    "Admin",
			Active:       true,
		})
		if err != nil {
			return err
		}
		log.Info("seeded default admin account", "username", models.SeedAdminUsername)
	}

	// Upsert-only store: seed the key with an empty default, keep any value
	// an admin already saved.
	link, err := settingsRepo.Get(ctx, models.SettingWhatsAppUrgentLink)
	if err != nil {
		return err
	}
	if link == "" {
		if err := settingsRepo.Set(ctx, models.SettingWhatsAppUrgentLink, ""); err != nil {
			return err
		}
	}
	return nil
}
