package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	digest, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if digest == "correct horse battery staple" {
		t.Fatal("digest must not equal plaintext")
	}
	if err := h.Verify(digest, "correct horse battery staple"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := h.Verify(digest, "wrong password"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestHashSaltsEveryCall(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("same password")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	second, err := h.Hash("same password")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct digests for identical plaintexts")
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	if _, err := h.Hash(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyMalformedDigest(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	for _, digest := range []string{"", "not-a-bcrypt-digest", "$2a$"} {
		if err := h.Verify(digest, "anything"); !errors.Is(err, ErrPasswordMismatch) {
			t.Fatalf("digest %q: expected ErrPasswordMismatch, got %v", digest, err)
		}
	}
}

func TestNewHasherClampsBadCost(t *testing.T) {
	h := NewHasher(99)
	digest, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash with clamped cost: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(digest))
	if err != nil {
		t.Fatalf("Cost: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost %d, got %d", bcrypt.DefaultCost, cost)
	}
}
