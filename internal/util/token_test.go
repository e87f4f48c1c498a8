package util

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenExpiry(t *testing.T) {
	expiry := time.Now().Add(45 * time.Minute).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiry),
	})
	signed, err := token.SignedString([]byte("any-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	got, err := TokenExpiry(signed)
	if err != nil {
		t.Fatalf("TokenExpiry returned error: %v", err)
	}
	if !got.Equal(expiry) {
		t.Fatalf("expected expiry %v, got %v", expiry, got)
	}
}

func TestTokenExpiryMissingClaim(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "device"})
	signed, err := token.SignedString([]byte("any-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := TokenExpiry(signed); err == nil {
		t.Fatal("expected error for token without exp claim")
	}
}

func TestTokenExpiryGarbage(t *testing.T) {
	if _, err := TokenExpiry("not-a-jwt"); err == nil {
		t.Fatal("expected parse error")
	}
}
