package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize        = 16
	pbkdf2Iters     = 100_000
	pbkdf2KeyLength = 32
)

// GenerateSalt returns a fresh random salt. Every account gets its own.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// HashPassword derives a base64-encoded PBKDF2-HMAC-SHA256 key from the
// plaintext password and per-account salt.
func HashPassword(plain string, salt []byte) string {
	dk := pbkdf2.Key([]byte(plain), salt, pbkdf2Iters, pbkdf2KeyLength, sha256.New)
	return base64.StdEncoding.EncodeToString(dk)
}

// VerifyPassword recomputes the hash and compares in constant time.
func VerifyPassword(plain, storedHash string, salt []byte) bool {
	computed := HashPassword(plain, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
