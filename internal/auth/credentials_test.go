package auth

import (
	"encoding/base64"
	"testing"
)

func TestHashVerifyRoundtrip(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt: %v", err)
	}
	hash := HashPassword("correct horse battery staple", salt)

	if !VerifyPassword("correct horse battery staple", hash, salt) {
		t.Error("expected correct password to verify")
	}
	if VerifyPassword("correct horse battery stapl", hash, salt) {
		t.Error("expected wrong password to fail verification")
	}
	if VerifyPassword("", hash, salt) {
		t.Error("expected empty password to fail verification")
	}
}

func TestHashDependsOnSalt(t *testing.T) {
	salt1, _ := GenerateSalt()
	salt2, _ := GenerateSalt()
	if string(salt1) == string(salt2) {
		t.Fatal("two generated salts are identical")
	}
	if HashPassword("pw", salt1) == HashPassword("pw", salt2) {
		t.Error("same password with different salts produced the same hash")
	}
}

func TestHashIsBase64Key(t *testing.T) {
	salt, _ := GenerateSalt()
	hash := HashPassword("pw", salt)
	raw, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		t.Fatalf("hash is not valid base64: %v", err)
	}
	if len(raw) != pbkdf2KeyLength {
		t.Errorf("derived key length = %d, want %d", len(raw), pbkdf2KeyLength)
	}
}

func TestGenerateSaltSize(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt: %v", err)
	}
	if len(salt) != saltSize {
		t.Errorf("salt length = %d, want %d", len(salt), saltSize)
	}
}
