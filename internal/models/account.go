package models

import "time"

// Account roles.
const (
	RoleAdmin    = "admin"
	RoleResident = "resident"
)

// Bootstrap admin credentials seeded on first startup. Logging in with this
// password triggers a change-your-password advisory.
const (
	SeedAdminUsername = "admin"
	SeedAdminPassword = "admin123"
)

type Account struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Salt         []byte    `json:"-"`
	Role         string    `json:"role"`
	FullName     string    `json:"full_name"`
	Apartment    string    `json:"apartment"`
	Email        *string   `json:"email,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
	Active       bool      `json:"active"`
}
