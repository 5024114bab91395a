package utils

import "testing"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "" {
		t.Error("HashPassword() returned empty hash")
	}
	if hash == "s3cret-password" {
		t.Error("hash should not equal the plaintext password")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, _ := HashPassword("correct-horse")

	if !CheckPassword("correct-horse", hash) {
		t.Error("CheckPassword should accept the matching password")
	}
	if CheckPassword("battery-staple", hash) {
		t.Error("CheckPassword should reject a wrong password")
	}
	if CheckPassword("correct-horse", "not-a-bcrypt-hash") {
		t.Error("CheckPassword should reject a malformed hash")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	h1, _ := HashPassword("same-input")
	h2, _ := HashPassword("same-input")

	if h1 == h2 {
		t.Error("two hashes of the same password should differ (random salt)")
	}
}
