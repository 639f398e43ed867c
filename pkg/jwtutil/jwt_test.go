package jwtutil

import (
	"testing"
	"time"

	"gallery-service/pkg/config"
)

func TestTokenRoundTrip(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationTime: time.Hour})

	token, err := GenerateToken(3, "sales@example.com", 9, "ACME Stone")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 3 || claims.Email != "sales@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.CompanyID == nil || *claims.CompanyID != 9 {
		t.Fatalf("expected company 9 in claims, got %+v", claims.CompanyID)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationTime: time.Hour})

	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}
