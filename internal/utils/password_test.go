package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordClampsInvalidCost(t *testing.T) {
	// Costs outside bcrypt's range must not error out; they fall back to the
	// library default.
	for _, cost := range []int{-1, 0, 99} {
		hash, err := HashPassword("s3cret", cost)
		if err != nil {
			t.Fatalf("HashPassword(cost=%d): %v", cost, err)
		}
		got, err := bcrypt.Cost([]byte(hash))
		if err != nil {
			t.Fatalf("read cost: %v", err)
		}
		if got != bcrypt.DefaultCost {
			t.Errorf("cost %d hashed with %d, want default %d", cost, got, bcrypt.DefaultCost)
		}
	}
}
