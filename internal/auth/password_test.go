package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasherRoundTrip(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("Str0ng!Pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if !hasher.Verify("Str0ng!Pw", hash) {
		t.Fatalf("expected matching password to verify")
	}
	if hasher.Verify("wrong-password", hash) {
		t.Fatalf("expected mismatched password to fail")
	}
}

func TestPasswordHasherSaltedHashesDiffer(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("Str0ng!Pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := hasher.Hash("Str0ng!Pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if string(first) == string(second) {
		t.Fatalf("expected salted hashes to differ")
	}
}

func TestPasswordHasherMalformedHash(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	if hasher.Verify("anything", []byte("not-a-bcrypt-hash")) {
		t.Fatalf("expected malformed stored hash to verify false")
	}
	if hasher.Verify("anything", nil) {
		t.Fatalf("expected nil stored hash to verify false")
	}
}

func TestPasswordHasherCostOutOfRange(t *testing.T) {
	hasher := NewPasswordHasher(99)
	if hasher.cost != bcrypt.DefaultCost {
		t.Fatalf("expected fallback to default cost, got %d", hasher.cost)
	}
}
